package pipeline

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/firemask-mcp/internal/colorspace"
	"github.com/ironsheep/firemask-mcp/internal/detection"
	"github.com/ironsheep/firemask-mcp/internal/morphology"
	"github.com/ironsheep/firemask-mcp/internal/raster"
)

// DefaultKernelRadius is the morphology radius used when none is configured.
const DefaultKernelRadius = 2

// Operation names one morphological variant in the result table.
type Operation string

const (
	OpEroded       Operation = "eroded"
	OpDilated      Operation = "dilated"
	OpOpened       Operation = "opened"
	OpClosed       Operation = "closed"
	OpOpenedClosed Operation = "opened_closed"
)

// Operations returns every Operation in table order.
func Operations() []Operation {
	return []Operation{OpEroded, OpDilated, OpOpened, OpClosed, OpOpenedClosed}
}

// Valid reports whether op is one of the five known operations.
func (op Operation) Valid() bool {
	switch op {
	case OpEroded, OpDilated, OpOpened, OpClosed, OpOpenedClosed:
		return true
	}
	return false
}

// VariantMasks keys the masks of ref by Operation.
func VariantMasks(ref *morphology.Refinement) map[Operation]*raster.Mask {
	return map[Operation]*raster.Mask{
		OpEroded:       ref.Eroded,
		OpDilated:      ref.Dilated,
		OpOpened:       ref.Opened,
		OpClosed:       ref.Closed,
		OpOpenedClosed: ref.OpenedClosed,
	}
}

// OperationResult is one row of the result table.
type OperationResult struct {
	Name Operation `json:"name"`

	// Mask is the refined mask for this operation.
	Mask *raster.Mask `json:"-"`

	// Composite is the original image with every pixel outside Mask painted
	// black.
	Composite *raster.Image `json:"-"`

	// WhitePercentage is the share of true cells in Mask (0-100).
	WhitePercentage float64 `json:"white_percentage"`
}

// Result is the outcome of one Analyzer.Run call.
type Result struct {
	// Detection holds the raw fire segmentation before refinement.
	Detection *detection.Result `json:"detection"`

	// Operations holds one entry per Operation.
	Operations map[Operation]OperationResult `json:"operations"`

	// KernelRadius is the radius every morphological variant used.
	KernelRadius int `json:"kernel_radius"`

	// Degenerate is set when the radius is too large for the image, leaving
	// every variant empty.
	Degenerate bool `json:"degenerate"`
}

// FireSuspected reports whether any fire pixels survive the opened_closed
// refinement.
func (r *Result) FireSuspected() bool {
	if r == nil {
		return false
	}
	return r.Operations[OpOpenedClosed].WhitePercentage > 0
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithKernelRadius sets the morphology radius. Values below 1 are reported
// as errors by Run.
func WithKernelRadius(radius int) Option {
	return func(a *Analyzer) {
		a.radius = radius
	}
}

// WithRule replaces the default fire color rule.
func WithRule(rule detection.Rule) Option {
	return func(a *Analyzer) {
		a.rule = rule
	}
}

// WithLogger sets the logger used for detection status and per-operation
// figures. A nil logger is ignored.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// Analyzer runs the fire analysis pipeline with a fixed configuration.
type Analyzer struct {
	radius int
	rule   detection.Rule
	logger logrus.FieldLogger
}

// New creates an Analyzer. Without options it uses DefaultKernelRadius,
// detection.DefaultRule and a logger that discards its output.
func New(opts ...Option) *Analyzer {
	quiet := logrus.New()
	quiet.SetOutput(io.Discard)

	a := &Analyzer{
		radius: DefaultKernelRadius,
		rule:   detection.DefaultRule(),
		logger: quiet,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run analyzes one image.
//
// Parameters:
//   - img: The original color raster. It is read but never modified.
//
// Returns:
//   - *Result: Detection figures and the five-entry operation table.
//   - error: Wraps raster.ErrInvalidImage for an invalid image and
//     morphology.ErrInvalidRadius for a radius below 1.
func (a *Analyzer) Run(img *raster.Image) (*Result, error) {
	if a.radius < 1 {
		return nil, errors.Wrapf(morphology.ErrInvalidRadius, "kernel radius %d", a.radius)
	}

	hsv, err := colorspace.Convert(img)
	if err != nil {
		return nil, errors.Wrap(err, "convert to hsv")
	}

	det, err := a.rule.Detect(hsv, img)
	if err != nil {
		return nil, errors.Wrap(err, "detect fire pixels")
	}

	log := a.logger.WithFields(logrus.Fields{
		"width":  img.Width,
		"height": img.Height,
	})
	if det.Detected {
		log.WithFields(logrus.Fields{
			"fire_area":       det.Area,
			"fire_percentage": det.Percentage,
		}).Info("fire detected")
	} else {
		log.Info("no fire detected")
	}

	binary, err := raster.Binarize(det.Pixels)
	if err != nil {
		return nil, errors.Wrap(err, "binarize fire pixels")
	}

	ref, err := morphology.Refine(binary, a.radius)
	if err != nil {
		return nil, errors.Wrap(err, "refine mask")
	}
	if ref.Degenerate {
		log.WithField("kernel_radius", a.radius).Warn("kernel radius leaves no evaluable pixels, all variants are empty")
	}

	masks := VariantMasks(ref)

	res := &Result{
		Detection:    det,
		Operations:   make(map[Operation]OperationResult, len(masks)),
		KernelRadius: a.radius,
		Degenerate:   ref.Degenerate,
	}
	for _, op := range Operations() {
		mask := masks[op]
		composite, err := raster.Composite(img, mask)
		if err != nil {
			return nil, errors.Wrapf(err, "composite %s", op)
		}
		pct := raster.Percentage(mask)
		res.Operations[op] = OperationResult{
			Name:            op,
			Mask:            mask,
			Composite:       composite,
			WhitePercentage: pct,
		}
		log.WithFields(logrus.Fields{
			"operation":        string(op),
			"white_percentage": pct,
		}).Debug("operation complete")
	}

	return res, nil
}
