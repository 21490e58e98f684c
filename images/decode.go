package images

import (
	"bytes"
	"image"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// Decode decodes an encoded still image.
//
// JPEG, PNG and BMP go through imaging with EXIF auto-orientation so phone
// captures come out upright; WebP goes through libwebp.
//
// Arguments:
//   - data: The encoded bytes.
//   - format: The format of data.
//
// Returns:
//   - image.Image: The decoded image.
//   - error: An error if data is empty or cannot be decoded.
func Decode(data []byte, format ImageFormat) (image.Image, error) {
	if len(data) == 0 {
		return nil, errors.New("empty image data")
	}

	switch format {
	case FormatWebP:
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, "failed to decode WebP")
		}
		return img, nil
	case FormatJPEG, FormatPNG, FormatBMP:
		img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to decode %s", format)
		}
		return img, nil
	default:
		return nil, errors.Errorf("unsupported image format: %q", format)
	}
}
