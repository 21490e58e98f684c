package video

import (
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"

	"github.com/nvr-ai/go-roadscan/images"
)

// sequenceFile is one frame image on disk.
type sequenceFile struct {
	path   string
	number int
	format images.ImageFormat
}

// Sequence reads a directory of numbered still frames, e.g. frame-1.jpg,
// frame-2.jpg, in frame number order.
type Sequence struct {
	dir    string
	files  []sequenceFile
	pos    int
	buf    gocv.Mat
	closed bool
}

var _ FrameSource = (*Sequence)(nil)

// OpenSequence lists the frames of dir.
//
// Files named frame-<n>.<ext> with a jpg, jpeg, png, bmp or webp extension are
// picked up; anything else is ignored. Frames are decoded lazily by Next.
//
// Arguments:
//   - dir: Directory path containing the frame files.
//
// Returns:
//   - *Sequence: The opened source.
//   - error: A *SourceError if the directory cannot be read.
func OpenSequence(dir string) (*Sequence, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &SourceError{Op: "open", Path: dir, Err: err}
	}

	var files []sequenceFile
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		format, ok := images.FormatFromPath(name)
		if !ok || !strings.HasPrefix(name, "frame-") {
			continue
		}
		number, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "frame-"), filepath.Ext(name)))
		if err != nil {
			continue
		}
		files = append(files, sequenceFile{
			path:   filepath.Join(dir, name),
			number: number,
			format: format,
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].number < files[j].number
	})

	return &Sequence{dir: dir, files: files, buf: gocv.NewMat()}, nil
}

// Len returns the number of frames in the sequence.
func (s *Sequence) Len() int {
	return len(s.files)
}

// Next decodes the next frame file. The previous frame's Mat is released.
func (s *Sequence) Next() (Frame, error) {
	if s.closed || s.pos >= len(s.files) {
		return Frame{}, io.EOF
	}

	f := s.files[s.pos]
	s.pos++

	data, err := os.ReadFile(f.path)
	if err != nil {
		s.pos = len(s.files)
		return Frame{}, &SourceError{Op: "read", Path: f.path, Err: err}
	}
	img, err := images.Decode(data, f.format)
	if err != nil {
		s.pos = len(s.files)
		return Frame{}, &SourceError{Op: "decode", Path: f.path, Err: err}
	}
	mat, err := images.ImageToMat(img)
	if err != nil {
		s.pos = len(s.files)
		return Frame{}, &SourceError{Op: "decode", Path: f.path, Err: err}
	}

	s.buf.Close()
	s.buf = mat
	return Frame{Index: s.pos, Mat: s.buf}, nil
}

// Close releases the frame buffer.
func (s *Sequence) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return errors.Wrap(s.buf.Close(), "error closing sequence")
}
