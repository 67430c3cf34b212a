package raster

import "fmt"

// Percentage returns the share of true cells in mask on a 0-100 scale.
//
// A 10x10 all-true mask yields 100.0 and an all-false mask yields 0.0. An
// empty or nil mask yields 0.
func Percentage(mask *Mask) float64 {
	if mask == nil || len(mask.Bits) == 0 {
		return 0
	}
	return float64(mask.Count()) / float64(len(mask.Bits)) * 100
}

// Composite keeps the original color of every pixel whose mask cell is true
// and paints every other pixel black.
//
// Parameters:
//   - img: The original color raster. It is not modified.
//   - mask: A mask with the same dimensions as img.
//
// Returns:
//   - *Image: A new raster owned by the caller.
//   - error: Wraps ErrInvalidImage if either input is invalid or the
//     dimensions differ.
func Composite(img *Image, mask *Mask) (*Image, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if err := mask.Validate(); err != nil {
		return nil, err
	}
	if img.Width != mask.Width || img.Height != mask.Height {
		return nil, fmt.Errorf("%w: mask %dx%d does not match image %dx%d",
			ErrInvalidImage, mask.Width, mask.Height, img.Width, img.Height)
	}

	out := &Image{Width: img.Width, Height: img.Height, Pix: make([]uint8, len(img.Pix))}
	for i, keep := range mask.Bits {
		if keep {
			copy(out.Pix[i*3:i*3+3], img.Pix[i*3:i*3+3])
		}
	}
	return out, nil
}

// Luma converts an RGB triple to 8-bit luminance using the ITU-R 601-2
// weights (0.299, 0.587, 0.114) in 16-bit fixed point with rounding.
func Luma(r, g, b uint8) uint8 {
	return uint8((uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 0x8000) >> 16)
}

// Binarize marks every pixel whose luminance is above zero.
func Binarize(img *Image) (*Mask, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	mask := newMaskLike(img.Width, img.Height)
	for i := range mask.Bits {
		mask.Bits[i] = Luma(img.Pix[i*3], img.Pix[i*3+1], img.Pix[i*3+2]) > 0
	}
	return mask, nil
}
