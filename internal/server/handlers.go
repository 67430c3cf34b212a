package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/firemask-mcp/internal/detection"
	"github.com/ironsheep/firemask-mcp/internal/imaging"
	"github.com/ironsheep/firemask-mcp/internal/morphology"
	"github.com/ironsheep/firemask-mcp/internal/pipeline"
	"github.com/ironsheep/firemask-mcp/internal/raster"
)

// fire_detect defaults for optional arguments.
const (
	defaultMaxRegions  = 20
	defaultCropPadding = 4
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "fire_analyze").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// argError marks a tool failure caused by the caller's arguments rather than
// by processing. It is reported with code -32602.
type argError struct {
	msg string
}

func (e *argError) Error() string { return e.msg }

func invalidArgs(format string, a ...interface{}) error {
	return &argError{msg: fmt.Sprintf(format, a...)}
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Unknown tools and malformed arguments return code -32602. Failures while
// loading or analyzing the image return code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
	}

	log := s.logger.WithField("tool", params.Name)
	log.Debug("tool call")

	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		log.WithError(err).Warn("tool call failed")
		var ae *argError
		if errors.As(err, &ae) {
			return s.errorResponse(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		}
		return s.errorResponse(req.ID, CodeToolFailed, "Tool execution failed", err.Error())
	}

	log.WithField("cached_images", s.cache.Len()).Debug("tool call complete")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals and validates its arguments
//  2. Applies server defaults for optional parameters
//  3. Loads the image through the cache
//  4. Runs detection or the full pipeline
//  5. Returns the result or error
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Fire Analysis
	case "fire_detect":
		return s.handleFireDetect(args)
	case "fire_analyze":
		return s.handleFireAnalyze(args)
	case "mask_refine":
		return s.handleMaskRefine(args)

	default:
		return nil, invalidArgs("unknown tool: %s", name)
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// decodeArgs unmarshals tool arguments into dst and checks the path.
func decodeArgs(args json.RawMessage, dst interface{}, path *string) error {
	if len(args) == 0 {
		return invalidArgs("missing arguments")
	}
	if err := json.Unmarshal(args, dst); err != nil {
		return invalidArgs("invalid arguments: %v", err)
	}
	if *path == "" {
		return invalidArgs("path is required")
	}
	return nil
}

// checkFormat validates an optional image format argument.
func checkFormat(format string) (string, error) {
	switch format {
	case "":
		return "png", nil
	case "png", "jpeg":
		return format, nil
	}
	return "", invalidArgs("format must be png or jpeg, got %q", format)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path, s.cfg.MaxSide)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Fire Analysis Handlers ===

type fireDetectArgs struct {
	Path          string `json:"path"`
	MinRegionArea *int   `json:"min_region_area"`
	MaxRegions    *int   `json:"max_regions"`
	IncludeImage  bool   `json:"include_image"`
	IncludeCrops  bool   `json:"include_crops"`
	CropPadding   *int   `json:"crop_padding"`
	Format        string `json:"format"`
}

// RegionOutput is a fire region, optionally with a crop of the source image
// around it.
type RegionOutput struct {
	detection.Region
	Crop *imaging.CropResult `json:"crop,omitempty"`
}

// FireDetectResult is the fire_detect tool output.
type FireDetectResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	*detection.Result

	// RegionCount is the number of regions found before MaxRegions applied.
	RegionCount int            `json:"region_count"`
	Regions     []RegionOutput `json:"regions"`

	ImageBase64 string `json:"image_base64,omitempty"`
	MimeType    string `json:"mime_type,omitempty"`
}

func (s *Server) handleFireDetect(args json.RawMessage) (interface{}, error) {
	var a fireDetectArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	format, err := checkFormat(a.Format)
	if err != nil {
		return nil, err
	}
	minArea := s.cfg.MinRegionArea
	if a.MinRegionArea != nil {
		if *a.MinRegionArea < 1 {
			return nil, invalidArgs("min_region_area must be at least 1, got %d", *a.MinRegionArea)
		}
		minArea = *a.MinRegionArea
	}
	maxRegions := defaultMaxRegions
	if a.MaxRegions != nil {
		if *a.MaxRegions < 0 {
			return nil, invalidArgs("max_regions must not be negative, got %d", *a.MaxRegions)
		}
		maxRegions = *a.MaxRegions
	}
	padding := defaultCropPadding
	if a.CropPadding != nil {
		if *a.CropPadding < 0 {
			return nil, invalidArgs("crop_padding must not be negative, got %d", *a.CropPadding)
		}
		padding = *a.CropPadding
	}

	img, err := imaging.LoadRaster(s.cache, a.Path, s.cfg.MaxSide)
	if err != nil {
		return nil, err
	}

	det, err := detection.Analyze(img)
	if err != nil {
		return nil, err
	}
	regions, err := detection.FindRegions(det.Mask, minArea)
	if err != nil {
		return nil, err
	}
	kept := regions
	if maxRegions > 0 && len(kept) > maxRegions {
		kept = kept[:maxRegions]
	}

	res := &FireDetectResult{
		Width:       img.Width,
		Height:      img.Height,
		Result:      det,
		RegionCount: len(regions),
		Regions:     make([]RegionOutput, 0, len(kept)),
	}

	var source image.Image
	if a.IncludeCrops {
		source = img.ToImage()
	}
	for _, r := range kept {
		out := RegionOutput{Region: r}
		if a.IncludeCrops {
			b := r.Bounds
			out.Crop, err = imaging.CropPadded(source, b.X1, b.Y1, b.X2, b.Y2, padding, 1.0, format)
			if err != nil {
				return nil, err
			}
		}
		res.Regions = append(res.Regions, out)
	}

	if a.IncludeImage {
		res.ImageBase64, err = imaging.EncodeBase64(det.Pixels.ToImage(), format)
		if err != nil {
			return nil, err
		}
		res.MimeType = imaging.MIMEType(format)
	}

	s.logger.WithFields(logrus.Fields{
		"path":         a.Path,
		"fire_area":    det.Area,
		"region_count": len(regions),
	}).Debug("fire_detect complete")

	return res, nil
}

type fireAnalyzeArgs struct {
	Path          string               `json:"path"`
	KernelRadius  *int                 `json:"kernel_radius"`
	Operations    []pipeline.Operation `json:"operations"`
	IncludeImages bool                 `json:"include_images"`
	Format        string               `json:"format"`
	OutputDir     string               `json:"output_dir"`
}

// selectOperations validates the optional operations argument. An empty list
// selects every operation; duplicates are dropped.
func selectOperations(names []pipeline.Operation) ([]pipeline.Operation, error) {
	if len(names) == 0 {
		return pipeline.Operations(), nil
	}
	seen := make(map[pipeline.Operation]bool, len(names))
	ops := make([]pipeline.Operation, 0, len(names))
	for _, op := range names {
		if !op.Valid() {
			return nil, invalidArgs("unknown operation %q", op)
		}
		if !seen[op] {
			seen[op] = true
			ops = append(ops, op)
		}
	}
	return ops, nil
}

// ImageSummary identifies the analyzed image.
type ImageSummary struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// OperationOutput is one row of the fire_analyze table.
type OperationOutput struct {
	WhitePercentage float64 `json:"white_percentage"`
	Path            string  `json:"path,omitempty"`
	ImageBase64     string  `json:"image_base64,omitempty"`
	MimeType        string  `json:"mime_type,omitempty"`
}

// FireAnalyzeResult is the fire_analyze tool output.
type FireAnalyzeResult struct {
	ImageInfo    ImageSummary                           `json:"image_info"`
	KernelRadius int                                    `json:"kernel_radius"`
	Degenerate   bool                                   `json:"degenerate"`
	Detection    *detection.Result                      `json:"detection"`
	Results      map[pipeline.Operation]OperationOutput `json:"results"`

	// OutputDir and OriginalPath are set when results were written to disk.
	OutputDir    string `json:"output_dir,omitempty"`
	OriginalPath string `json:"original_path,omitempty"`

	// Fire is true when pixels survive the opened_closed refinement.
	Fire bool `json:"fire"`
}

// kernelRadius returns the requested radius, or the server default when the
// argument is absent.
func (s *Server) kernelRadius(arg *int) (int, error) {
	if arg == nil {
		return s.cfg.KernelRadius, nil
	}
	if *arg < 1 {
		return 0, invalidArgs("kernel_radius must be at least 1, got %d", *arg)
	}
	return *arg, nil
}

func (s *Server) handleFireAnalyze(args json.RawMessage) (interface{}, error) {
	var a fireAnalyzeArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	format, err := checkFormat(a.Format)
	if err != nil {
		return nil, err
	}
	radius, err := s.kernelRadius(a.KernelRadius)
	if err != nil {
		return nil, err
	}
	ops, err := selectOperations(a.Operations)
	if err != nil {
		return nil, err
	}
	outDir := a.OutputDir
	if outDir == "" {
		outDir = s.cfg.ResultsDir
	}

	img, err := imaging.LoadRaster(s.cache, a.Path, s.cfg.MaxSide)
	if err != nil {
		return nil, err
	}

	analyzer := pipeline.New(
		pipeline.WithKernelRadius(radius),
		pipeline.WithLogger(s.logger.WithField("path", a.Path)),
	)
	run, err := analyzer.Run(img)
	if err != nil {
		return nil, err
	}

	res := &FireAnalyzeResult{
		ImageInfo: ImageSummary{
			Name:   filepath.Base(a.Path),
			Path:   a.Path,
			Width:  img.Width,
			Height: img.Height,
		},
		KernelRadius: run.KernelRadius,
		Degenerate:   run.Degenerate,
		Detection:    run.Detection,
		Results:      make(map[pipeline.Operation]OperationOutput, len(ops)),
		Fire:         run.FireSuspected(),
	}

	if outDir != "" {
		res.OutputDir = outDir
		res.OriginalPath, err = imaging.CopyFile(a.Path, outDir)
		if err != nil {
			return nil, err
		}
	}

	for _, op := range ops {
		row := run.Operations[op]
		out := OperationOutput{WhitePercentage: row.WhitePercentage}

		if outDir != "" {
			out.Path = filepath.Join(outDir, imaging.ResultFileName(string(op), a.Path))
			if err := imaging.SaveImage(out.Path, row.Composite.ToImage()); err != nil {
				return nil, err
			}
		}
		if a.IncludeImages {
			out.ImageBase64, err = imaging.EncodeBase64(row.Composite.ToImage(), format)
			if err != nil {
				return nil, err
			}
			out.MimeType = imaging.MIMEType(format)
		}
		res.Results[op] = out
	}

	return res, nil
}

// === Mask Handlers ===

// MaskRefineResult is the mask_refine tool output.
type MaskRefineResult struct {
	Width        int  `json:"width"`
	Height       int  `json:"height"`
	KernelRadius int  `json:"kernel_radius"`
	Degenerate   bool `json:"degenerate"`

	// InputPercentage is the white share of the mask before refinement.
	InputPercentage float64                                `json:"input_percentage"`
	Results         map[pipeline.Operation]OperationOutput `json:"results"`
}

// handleMaskRefine applies the five morphological variants to an existing
// black and white mask image. Any non-black pixel counts as white.
func (s *Server) handleMaskRefine(args json.RawMessage) (interface{}, error) {
	var a fireAnalyzeArgs
	if err := decodeArgs(args, &a, &a.Path); err != nil {
		return nil, err
	}
	format, err := checkFormat(a.Format)
	if err != nil {
		return nil, err
	}
	radius, err := s.kernelRadius(a.KernelRadius)
	if err != nil {
		return nil, err
	}
	ops, err := selectOperations(a.Operations)
	if err != nil {
		return nil, err
	}
	outDir := a.OutputDir
	if outDir == "" {
		outDir = s.cfg.ResultsDir
	}

	src, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	mask, err := raster.MaskFromImage(imaging.PrepareMask(src, s.cfg.MaxSide))
	if err != nil {
		return nil, err
	}
	ref, err := morphology.Refine(mask, radius)
	if err != nil {
		return nil, err
	}

	res := &MaskRefineResult{
		Width:           mask.Width,
		Height:          mask.Height,
		KernelRadius:    radius,
		Degenerate:      ref.Degenerate,
		InputPercentage: raster.Percentage(mask),
		Results:         make(map[pipeline.Operation]OperationOutput, len(ops)),
	}

	masks := pipeline.VariantMasks(ref)
	for _, op := range ops {
		m := masks[op]
		out := OperationOutput{WhitePercentage: raster.Percentage(m)}

		if outDir != "" {
			out.Path = filepath.Join(outDir, imaging.ResultFileName(string(op), a.Path))
			if err := imaging.SaveImage(out.Path, m.ToImage()); err != nil {
				return nil, err
			}
		}
		if a.IncludeImages {
			out.ImageBase64, err = imaging.EncodeBase64(m.ToImage(), format)
			if err != nil {
				return nil, err
			}
			out.MimeType = imaging.MIMEType(format)
		}
		res.Results[op] = out
	}

	s.logger.WithFields(logrus.Fields{
		"path":             a.Path,
		"kernel_radius":    radius,
		"input_percentage": res.InputPercentage,
	}).Debug("mask_refine complete")

	return res, nil
}
