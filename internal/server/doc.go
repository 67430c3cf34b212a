// Package server implements the MCP (Model Context Protocol) server that
// exposes fire analysis as tools.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//   - Logs: logrus entries on stderr
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Basic Image Information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Fire Analysis:
//   - fire_detect: HSV fire segmentation with connected fire regions
//   - fire_analyze: Segmentation plus the five morphological refinements
//     (eroded, dilated, opened, closed, opened_closed), their white
//     percentages, optional inline composites and optional files written as
//     "<operation>_<name>" next to a copy of the original
//
// Mask Refinement:
//   - mask_refine: The five refinements applied to an existing black and
//     white mask image, returned or written as grayscale masks
//
// fire_analyze and mask_refine take an optional "operations" list that
// restricts the reported variants.
//
// The fire flag of fire_analyze is true when the opened_closed mask keeps
// any pixel.
//
// # Image Caching
//
// The server keeps up to Config.CacheSize decoded frames in an
// imaging.ImageCache keyed by absolute path. Each analysis works on its own
// raster copy, so cached frames are never modified.
//
// # Error Handling
//
// Failures are returned as JSON-RPC error responses:
//   - -32700: the request line is not valid JSON
//   - -32601: unknown method
//   - -32602: unknown tool or invalid tool arguments
//   - -32000: the image could not be loaded, analyzed or written
//
// The data field carries the Go error string.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	srv := server.New(cfg, cfg.NewLogger(os.Stderr))
//	if err := srv.Run(); err != nil {
//	    return err
//	}
package server
