package raster

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
)

// Mask is a boolean grid. Bits[y*Width+x] holds the cell at (x, y).
type Mask struct {
	Width  int
	Height int
	Bits   []bool
}

// NewMask allocates an all-false mask.
func NewMask(width, height int) (*Mask, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: mask dimensions %dx%d", ErrInvalidImage, width, height)
	}
	return &Mask{
		Width:  width,
		Height: height,
		Bits:   make([]bool, width*height),
	}, nil
}

// newMaskLike allocates an all-false mask without validating the dimensions.
func newMaskLike(width, height int) *Mask {
	return &Mask{Width: width, Height: height, Bits: make([]bool, width*height)}
}

// EmptyLike returns an all-false mask with the same dimensions as m.
func (m *Mask) EmptyLike() *Mask {
	return newMaskLike(m.Width, m.Height)
}

// Get reports the cell at (x, y). No bounds checking is done.
func (m *Mask) Get(x, y int) bool {
	return m.Bits[y*m.Width+x]
}

// Set writes the cell at (x, y). No bounds checking is done.
func (m *Mask) Set(x, y int, v bool) {
	m.Bits[y*m.Width+x] = v
}

// Count returns the number of true cells.
func (m *Mask) Count() int {
	n := 0
	for _, b := range m.Bits {
		if b {
			n++
		}
	}
	return n
}

// Clone returns a deep copy.
func (m *Mask) Clone() *Mask {
	bits := make([]bool, len(m.Bits))
	copy(bits, m.Bits)
	return &Mask{Width: m.Width, Height: m.Height, Bits: bits}
}

// SameSize reports whether both masks have identical dimensions.
func (m *Mask) SameSize(other *Mask) bool {
	return other != nil && m.Width == other.Width && m.Height == other.Height
}

// Equal reports whether both masks have the same size and cells.
func (m *Mask) Equal(other *Mask) bool {
	if !m.SameSize(other) {
		return false
	}
	for i, b := range m.Bits {
		if b != other.Bits[i] {
			return false
		}
	}
	return true
}

// SubsetOf reports whether every true cell of m is also true in other.
// Masks of different sizes are never subsets of each other.
func (m *Mask) SubsetOf(other *Mask) bool {
	if !m.SameSize(other) {
		return false
	}
	for i, b := range m.Bits {
		if b && !other.Bits[i] {
			return false
		}
	}
	return true
}

// Validate checks the mask's dimensions against its backing slice.
func (m *Mask) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil mask", ErrInvalidImage)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: mask dimensions %dx%d", ErrInvalidImage, m.Width, m.Height)
	}
	if len(m.Bits) != m.Width*m.Height {
		return fmt.Errorf("%w: mask has %d cells, want %d", ErrInvalidImage, len(m.Bits), m.Width*m.Height)
	}
	return nil
}

// ToImage renders the mask as grayscale: true cells are white (255), false
// cells black (0).
func (m *Mask) ToImage() *image.Gray {
	out := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, b := range m.Bits {
		if b {
			out.Pix[i] = 0xff
		}
	}
	return out
}

// MaskFromImage thresholds any image into a mask: a cell is true when the
// pixel's red, green or blue component is non-zero.
func MaskFromImage(src image.Image) (*Mask, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, fmt.Errorf("%w: empty mask image", ErrInvalidImage)
	}
	rgba := clone.AsShallowRGBA(src)
	bounds := rgba.Bounds()
	mask := newMaskLike(bounds.Dx(), bounds.Dy())
	for y := 0; y < mask.Height; y++ {
		row := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < mask.Width; x++ {
			p := row[x*4 : x*4+3]
			mask.Bits[y*mask.Width+x] = p[0] != 0 || p[1] != 0 || p[2] != 0
		}
	}
	return mask, nil
}
