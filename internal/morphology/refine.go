package morphology

import "github.com/ironsheep/firemask-mcp/internal/raster"

// Refinement holds the five standard variants of one mask.
type Refinement struct {
	Eroded       *raster.Mask
	Dilated      *raster.Mask
	Opened       *raster.Mask
	Closed       *raster.Mask
	OpenedClosed *raster.Mask

	// Radius is the kernel radius every variant was computed with.
	Radius int

	// Degenerate is set when the radius leaves no evaluable cell, in which
	// case every variant is all false.
	Degenerate bool
}

// Refine computes erosion, dilation, opening, closing and opening-then-closing
// of mask with the same radius.
//
// Opening and closing reuse the eroded and dilated masks. Every variant is
// still its own allocation, so callers may modify one without affecting the
// others.
func Refine(mask *raster.Mask, radius int) (*Refinement, error) {
	eroded, err := Erode(mask, radius)
	if err != nil {
		return nil, err
	}
	dilated, err := Dilate(mask, radius)
	if err != nil {
		return nil, err
	}
	opened, err := Dilate(eroded, radius)
	if err != nil {
		return nil, err
	}
	closed, err := Erode(dilated, radius)
	if err != nil {
		return nil, err
	}
	openedClosed, err := Close(opened, radius)
	if err != nil {
		return nil, err
	}

	return &Refinement{
		Eroded:       eroded,
		Dilated:      dilated,
		Opened:       opened,
		Closed:       closed,
		OpenedClosed: openedClosed,
		Radius:       radius,
		Degenerate:   IsDegenerate(mask.Width, mask.Height, radius),
	}, nil
}
