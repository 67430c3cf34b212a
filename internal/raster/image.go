package raster

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrInvalidImage is returned for rasters that cannot be analyzed.
var ErrInvalidImage = errors.New("invalid raster")

// Image is an 8-bit RGB raster.
//
// Pix holds Width*Height*3 bytes in row-major order: the red, green and blue
// components of pixel (x, y) start at index (y*Width+x)*3.
type Image struct {
	Width  int
	Height int
	Pix    []uint8
}

// New allocates a black image of the given size.
func New(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImage, width, height)
	}
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}, nil
}

// FromPixels builds an Image from an interleaved pixel buffer.
//
// Parameters:
//   - width, height: Grid dimensions. Both must be positive.
//   - channels: Samples per pixel in pix. At least 3; the first three are read
//     as R, G, B and any extra channel (typically alpha) is dropped.
//   - pix: Row-major samples, len(pix) must equal width*height*channels.
//
// Returns:
//   - *Image: A copy of the RGB data. pix is not retained.
//   - error: Wraps ErrInvalidImage when any of the constraints above fails.
func FromPixels(width, height, channels int, pix []uint8) (*Image, error) {
	if channels < 3 {
		return nil, fmt.Errorf("%w: need at least 3 channels, got %d", ErrInvalidImage, channels)
	}
	img, err := New(width, height)
	if err != nil {
		return nil, err
	}
	if len(pix) != width*height*channels {
		return nil, fmt.Errorf("%w: pixel buffer has %d samples, want %d",
			ErrInvalidImage, len(pix), width*height*channels)
	}

	for i := 0; i < width*height; i++ {
		copy(img.Pix[i*3:i*3+3], pix[i*channels:i*channels+3])
	}
	return img, nil
}

// FromImage converts any decoded Go image into an RGB raster.
//
// The source is first cloned to non-premultiplied NRGBA, so colors of
// translucent pixels keep their stored RGB values and alpha is discarded.
// The result is rebased so that the source's Bounds().Min maps to (0,0).
func FromImage(src image.Image) (*Image, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("%w: empty bounds %v", ErrInvalidImage, bounds)
	}

	nrgba := imaging.Clone(src)
	return FromPixels(bounds.Dx(), bounds.Dy(), 4, nrgba.Pix)
}

// ToImage returns an opaque NRGBA copy suitable for encoding.
func (m *Image) ToImage() *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))
	for i := 0; i < m.Width*m.Height; i++ {
		copy(out.Pix[i*4:i*4+3], m.Pix[i*3:i*3+3])
		out.Pix[i*4+3] = 0xff
	}
	return out
}

// At returns the RGB components of pixel (x, y). No bounds checking is done.
func (m *Image) At(x, y int) (r, g, b uint8) {
	i := (y*m.Width + x) * 3
	return m.Pix[i], m.Pix[i+1], m.Pix[i+2]
}

// Set writes the RGB components of pixel (x, y). No bounds checking is done.
func (m *Image) Set(x, y int, r, g, b uint8) {
	i := (y*m.Width + x) * 3
	m.Pix[i], m.Pix[i+1], m.Pix[i+2] = r, g, b
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	pix := make([]uint8, len(m.Pix))
	copy(pix, m.Pix)
	return &Image{Width: m.Width, Height: m.Height, Pix: pix}
}

// Validate checks that the raster is usable by the pipeline.
func (m *Image) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidImage)
	}
	if m.Width <= 0 || m.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidImage, m.Width, m.Height)
	}
	if len(m.Pix) != m.Width*m.Height*3 {
		return fmt.Errorf("%w: pixel buffer has %d samples, want %d",
			ErrInvalidImage, len(m.Pix), m.Width*m.Height*3)
	}
	return nil
}
