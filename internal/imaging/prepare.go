package imaging

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/firemask-mcp/internal/raster"
)

// Prepare bounds the size of an input image before analysis.
//
// When maxSide is positive and the longest side of img exceeds it, img is
// downscaled with a Lanczos filter so that it fits in a maxSide x maxSide
// box, keeping its aspect ratio. Otherwise img is returned unchanged.
func Prepare(img image.Image, maxSide int) image.Image {
	return fit(img, maxSide, imaging.Lanczos)
}

// PrepareMask is Prepare for black and white masks. It samples the nearest
// source pixel instead of filtering, so a downscaled mask stays binary and
// keeps its white share.
func PrepareMask(img image.Image, maxSide int) image.Image {
	return fit(img, maxSide, imaging.NearestNeighbor)
}

func fit(img image.Image, maxSide int, filter imaging.ResampleFilter) image.Image {
	if maxSide <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxSide && b.Dy() <= maxSide {
		return img
	}
	size := fitSize(b.Dx(), b.Dy(), maxSide)
	return imaging.Resize(img, size.X, size.Y, filter)
}

// fitSize scales a w x h frame with a side above maxSide down to fit a
// maxSide x maxSide box. Neither side drops below one pixel.
func fitSize(w, h, maxSide int) image.Point {
	if w >= h {
		return image.Pt(maxSide, max(1, int(float64(h)*float64(maxSide)/float64(w))))
	}
	return image.Pt(max(1, int(float64(w)*float64(maxSide)/float64(h))), maxSide)
}

// LoadRaster loads path through cache, applies Prepare and converts the
// result to the RGB raster consumed by the pipeline.
//
// Parameters:
//   - cache: The image cache to use for loading. Must not be nil.
//   - path: Path to the image file.
//   - maxSide: Longest allowed side in pixels; 0 keeps the original size.
//
// Returns:
//   - *raster.Image: A new raster owned by the caller.
//   - error: Non-nil if the image cannot be loaded or converted.
func LoadRaster(cache *ImageCache, path string, maxSide int) (*raster.Image, error) {
	img, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	return raster.FromImage(Prepare(img, maxSide))
}
