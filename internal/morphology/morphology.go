package morphology

import (
	"errors"
	"fmt"

	"github.com/ironsheep/firemask-mcp/internal/raster"
)

// ErrInvalidRadius is returned for kernel radii below 1.
var ErrInvalidRadius = errors.New("kernel radius must be at least 1")

// IsDegenerate reports whether a width x height mask has no cell at least
// radius away from every edge, so that Erode and Dilate can only produce an
// all-false mask.
func IsDegenerate(width, height, radius int) bool {
	return 2*radius >= min(width, height)
}

// Erode returns a mask where a cell is true iff its whole (2r+1)x(2r+1)
// neighborhood is true in mask. Cells within radius of an edge are false.
func Erode(mask *raster.Mask, radius int) (*raster.Mask, error) {
	return scan(mask, radius, true)
}

// Dilate returns a mask where a cell is true iff any cell of its
// (2r+1)x(2r+1) neighborhood is true in mask. Cells within radius of an edge
// are false.
func Dilate(mask *raster.Mask, radius int) (*raster.Mask, error) {
	return scan(mask, radius, false)
}

// Open applies Erode then Dilate.
func Open(mask *raster.Mask, radius int) (*raster.Mask, error) {
	eroded, err := Erode(mask, radius)
	if err != nil {
		return nil, err
	}
	return Dilate(eroded, radius)
}

// Close applies Dilate then Erode.
func Close(mask *raster.Mask, radius int) (*raster.Mask, error) {
	dilated, err := Dilate(mask, radius)
	if err != nil {
		return nil, err
	}
	return Erode(dilated, radius)
}

// OpenClose applies Open and then Close to the opened mask.
func OpenClose(mask *raster.Mask, radius int) (*raster.Mask, error) {
	opened, err := Open(mask, radius)
	if err != nil {
		return nil, err
	}
	return Close(opened, radius)
}

// scan runs the neighborhood test shared by Erode (all) and Dilate (any).
//
// For erosion the output is true unless a false neighbor is found; for
// dilation it is false unless a true neighbor is found. Either way the scan
// of a neighborhood stops as soon as the outcome is known.
func scan(mask *raster.Mask, radius int, all bool) (*raster.Mask, error) {
	if radius < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRadius, radius)
	}
	if err := mask.Validate(); err != nil {
		return nil, err
	}

	width, height := mask.Width, mask.Height
	out := mask.EmptyLike()

	for y := radius; y < height-radius; y++ {
		for x := radius; x < width-radius; x++ {
			// A false neighbor decides erosion, a true one decides dilation.
			decided := false
			for ny := y - radius; ny <= y+radius && !decided; ny++ {
				row := mask.Bits[ny*width : (ny+1)*width]
				for nx := x - radius; nx <= x+radius; nx++ {
					if row[nx] != all {
						decided = true
						break
					}
				}
			}
			out.Bits[y*width+x] = all != decided
		}
	}

	return out, nil
}
