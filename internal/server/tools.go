package server

import "github.com/ironsheep/firemask-mcp/internal/pipeline"

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// pathProperty is the schema of the "path" argument shared by every tool.
func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

// operationsProperty is the schema of the optional "operations" filter.
func operationsProperty() map[string]interface{} {
	names := make([]string, 0, len(pipeline.Operations()))
	for _, op := range pipeline.Operations() {
		names = append(names, string(op))
	}
	return map[string]interface{}{
		"type":        "array",
		"items":       map[string]interface{}{"type": "string", "enum": names},
		"description": "Operations to report. Default all five",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Basic Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, the dimensions it is analyzed at, its format and file size.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Fire Analysis
		{
			Name: "fire_detect",
			Description: "Segment fire-colored pixels (hue below 30° or above 350°, saturation above 0.6, value above 0.5). " +
				"Returns the fire area, fire percentage, mean fire color and the connected fire regions, largest first, " +
				"optionally with a crop of the image around each region.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"min_region_area": map[string]interface{}{
						"type":        "integer",
						"description": "Smallest region to report, in pixels. Defaults to the server setting",
						"minimum":     1,
					},
					"max_regions": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of regions to return. 0 returns all. Default 20",
						"default":     20,
					},
					"include_image": map[string]interface{}{
						"type":        "boolean",
						"description": "Also return the fire pixels (everything else black) as a base64 image",
						"default":     false,
					},
					"include_crops": map[string]interface{}{
						"type":        "boolean",
						"description": "Attach a base64 crop of the original image around each returned region",
						"default":     false,
					},
					"crop_padding": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels of context added on every side of a region crop. Default 4",
						"default":     4,
						"minimum":     0,
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpeg"},
						"description": "Encoding for returned images. Default png",
						"default":     "png",
					},
				},
				"required": []string{"path"},
			},
		},
		{
			Name: "fire_analyze",
			Description: "Run the full fire pipeline: HSV segmentation, binarization, then erosion, dilation, opening, closing " +
				"and opening-then-closing with a square kernel. Returns the white percentage of each refined mask and a fire " +
				"flag that is true when any pixels survive opening-then-closing. Pixels within the kernel radius of an edge " +
				"are always excluded from the refined masks.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"kernel_radius": map[string]interface{}{
						"type":        "integer",
						"description": "Morphology kernel radius (side 2r+1). Defaults to the server setting",
						"minimum":     1,
					},
					"operations": operationsProperty(),
					"include_images": map[string]interface{}{
						"type":        "boolean",
						"description": "Return each composite as a base64 image",
						"default":     false,
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpeg"},
						"description": "Encoding for returned images. Default png",
						"default":     "png",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory to write <operation>_<name> composites and a copy of the original into. Defaults to the server results directory, if any",
					},
				},
				"required": []string{"path"},
			},
		},

		// Mask Refinement
		{
			Name: "mask_refine",
			Description: "Apply erosion, dilation, opening, closing and opening-then-closing to an existing black and white " +
				"mask image. Any non-black pixel counts as white. Returns the white percentage before and after each operation.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"kernel_radius": map[string]interface{}{
						"type":        "integer",
						"description": "Morphology kernel radius (side 2r+1). Defaults to the server setting",
						"minimum":     1,
					},
					"operations": operationsProperty(),
					"include_images": map[string]interface{}{
						"type":        "boolean",
						"description": "Return each refined mask as a base64 image",
						"default":     false,
					},
					"format": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"png", "jpeg"},
						"description": "Encoding for returned images. Default png",
						"default":     "png",
					},
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory to write <operation>_<name> masks into. Defaults to the server results directory, if any",
					},
				},
				"required": []string{"path"},
			},
		},
	}
}
