package inference

import "github.com/pkg/errors"

// Mask is a row-major binary image. Each value is 0 (background) or 1 (object).
type Mask struct {
	Width  int
	Height int
	Data   []uint8
}

// NewMask allocates an empty mask of the given size.
func NewMask(width, height int) *Mask {
	return &Mask{
		Width:  width,
		Height: height,
		Data:   make([]uint8, width*height),
	}
}

// Validate checks the buffer matches the declared dimensions.
func (m *Mask) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return errors.Errorf("invalid mask dimensions %dx%d", m.Width, m.Height)
	}
	if len(m.Data) != m.Width*m.Height {
		return errors.Errorf("mask buffer holds %d values, needs %d", len(m.Data), m.Width*m.Height)
	}
	return nil
}

// Set marks the pixel at (x, y). Out of range coordinates are ignored.
func (m *Mask) Set(x, y int) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	m.Data[y*m.Width+x] = 1
}

// At reports whether the pixel at (x, y) is set.
func (m *Mask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Data[y*m.Width+x] != 0
}

// FillRect sets every pixel in [x1,x2)x[y1,y2).
func (m *Mask) FillRect(x1, y1, x2, y2 int) {
	for y := y1; y < y2; y++ {
		for x := x1; x < x2; x++ {
			m.Set(x, y)
		}
	}
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Data {
		if v != 0 {
			n++
		}
	}
	return n
}
