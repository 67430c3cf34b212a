package detection

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/firemask-mcp/internal/colorspace"
	"github.com/ironsheep/firemask-mcp/internal/raster"
)

// Rule is a photometric HSV threshold that classifies a pixel as fire.
//
// A pixel matches when its hue lies in the red/orange band that wraps around
// 0°, and it is both saturated and bright:
//
//	(H < MaxRedHue OR H > MinWrapHue) AND S > MinSaturation AND V > MinValue
//
// All comparisons are strict.
type Rule struct {
	MaxRedHue     float64 `json:"max_red_hue"`    // Upper hue bound of the band starting at 0° (exclusive)
	MinWrapHue    float64 `json:"min_wrap_hue"`   // Lower hue bound of the band ending at 360° (exclusive)
	MinSaturation float64 `json:"min_saturation"` // Saturation must exceed this (0-1)
	MinValue      float64 `json:"min_value"`      // Value must exceed this (0-1)
}

// DefaultRule returns the flame color rule: hue below 30° or above 350°,
// saturation above 0.6 and value above 0.5. It targets bright flames rather
// than smoke or embers.
func DefaultRule() Rule {
	return Rule{
		MaxRedHue:     30,
		MinWrapHue:    350,
		MinSaturation: 0.6,
		MinValue:      0.5,
	}
}

// Match reports whether c satisfies the rule.
func (r Rule) Match(c colorspace.HSV) bool {
	return (c.H < r.MaxRedHue || c.H > r.MinWrapHue) && c.S > r.MinSaturation && c.V > r.MinValue
}

// Result is the outcome of fire color segmentation on one image.
type Result struct {
	// Mask marks fire pixels. It has the dimensions of the source image.
	Mask *raster.Mask `json:"-"`

	// Pixels is the source image with every non-fire pixel set to black.
	Pixels *raster.Image `json:"-"`

	// Area is the number of fire pixels.
	Area int `json:"fire_area"`

	// Percentage is Area relative to the total pixel count (0-100).
	Percentage float64 `json:"fire_percentage"`

	// Detected is true when at least one fire pixel was found. It is
	// informational only and does not change what the pipeline computes.
	Detected bool `json:"fire_detected"`

	// MeanColor is the average color of the fire pixels as "#rrggbb".
	// Empty when no fire was found.
	MeanColor string `json:"mean_color,omitempty"`
}

// Detect classifies every pixel with DefaultRule.
func Detect(hsv *colorspace.Raster, img *raster.Image) (*Result, error) {
	return DefaultRule().Detect(hsv, img)
}

// Detect segments fire-colored pixels.
//
// Parameters:
//   - hsv: The HSV conversion of img.
//   - img: The source color raster. It is not modified.
//
// Returns:
//   - *Result: The fire mask, the color-filtered raster and coverage figures.
//   - error: Wraps raster.ErrInvalidImage if img is invalid or hsv does not
//     match its dimensions.
func (r Rule) Detect(hsv *colorspace.Raster, img *raster.Image) (*Result, error) {
	if err := img.Validate(); err != nil {
		return nil, err
	}
	if hsv == nil || hsv.Width != img.Width || hsv.Height != img.Height || len(hsv.Pix) != img.Width*img.Height {
		return nil, fmt.Errorf("%w: hsv raster does not match %dx%d image", raster.ErrInvalidImage, img.Width, img.Height)
	}

	mask, err := raster.NewMask(img.Width, img.Height)
	if err != nil {
		return nil, err
	}
	pixels, err := raster.New(img.Width, img.Height)
	if err != nil {
		return nil, err
	}

	var sumR, sumG, sumB, area int
	for i, c := range hsv.Pix {
		if !r.Match(c) {
			continue
		}
		mask.Bits[i] = true
		copy(pixels.Pix[i*3:i*3+3], img.Pix[i*3:i*3+3])
		sumR += int(img.Pix[i*3])
		sumG += int(img.Pix[i*3+1])
		sumB += int(img.Pix[i*3+2])
		area++
	}

	res := &Result{
		Mask:       mask,
		Pixels:     pixels,
		Area:       area,
		Percentage: float64(area) / float64(len(mask.Bits)) * 100,
		Detected:   area > 0,
	}
	if area > 0 {
		n := float64(area) * 255
		res.MeanColor = colorful.Color{
			R: float64(sumR) / n,
			G: float64(sumG) / n,
			B: float64(sumB) / n,
		}.Hex()
	}
	return res, nil
}

// Analyze converts img to HSV and runs Detect with DefaultRule.
func Analyze(img *raster.Image) (*Result, error) {
	hsv, err := colorspace.Convert(img)
	if err != nil {
		return nil, err
	}
	return Detect(hsv, img)
}
