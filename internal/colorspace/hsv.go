// Package colorspace converts RGB rasters to the HSV color space used by the
// fire detector.
package colorspace

import (
	"math"

	"github.com/ironsheep/firemask-mcp/internal/raster"
)

// HSV is a color in HSV (Hue, Saturation, Value) space.
type HSV struct {
	H float64 `json:"h"` // Hue: [0, 360) degrees (0=red, 120=green, 240=blue)
	S float64 `json:"s"` // Saturation: [0, 1] (0=gray, 1=vivid)
	V float64 `json:"v"` // Value: [0, 1] (0=black, 1=brightest)
}

// FromRGB converts 8-bit RGB values to HSV.
//
// The conversion follows the standard hexcone algorithm on components
// normalized to [0, 1]:
//  1. Cmax, Cmin and delta = Cmax - Cmin
//  2. Hue from whichever component equals Cmax, checked in R, G, B order so
//     that ties resolve to the earliest channel
//  3. Saturation = delta / Cmax (0 for black)
//  4. Value = Cmax
//
// Achromatic colors (delta == 0) have no defined hue and report H = 0.
func FromRGB(r, g, b uint8) HSV {
	rf := float64(r) / 255.0
	gf := float64(g) / 255.0
	bf := float64(b) / 255.0

	cmax := math.Max(math.Max(rf, gf), bf)
	cmin := math.Min(math.Min(rf, gf), bf)
	delta := cmax - cmin

	var h float64
	switch {
	case delta == 0:
		h = 0
	case cmax == rf:
		// Floored modulo so that magenta-ish reds wrap to just below 360.
		h = math.Mod((gf-bf)/delta, 6)
		if h < 0 {
			h += 6
		}
	case cmax == gf:
		h = (bf-rf)/delta + 2
	default:
		h = (rf-gf)/delta + 4
	}
	h *= 60
	if h >= 360 {
		h -= 360
	}

	var s float64
	if cmax != 0 {
		s = delta / cmax
	}

	return HSV{H: h, S: s, V: cmax}
}

// Raster is a grid of HSV triples with the dimensions of its source image.
type Raster struct {
	Width  int
	Height int
	Pix    []HSV // row-major, Pix[y*Width+x]
}

// At returns the HSV value at (x, y). No bounds checking is done.
func (r *Raster) At(x, y int) HSV {
	return r.Pix[y*r.Width+x]
}

// Convert maps every pixel of img to HSV.
//
// Returns an error wrapping raster.ErrInvalidImage if img is not a valid
// raster. The input is never modified.
func Convert(img *raster.Image) (*Raster, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}

	out := &Raster{
		Width:  img.Width,
		Height: img.Height,
		Pix:    make([]HSV, img.Width*img.Height),
	}
	for i := range out.Pix {
		out.Pix[i] = FromRGB(img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2])
	}
	return out, nil
}
