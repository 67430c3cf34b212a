// Package detection segments fire-colored pixels and groups them into regions.
//
// Detection works in HSV space (see package colorspace). A pixel is considered
// fire when its hue falls in the red/orange band around 0° and it is both
// strongly saturated and bright:
//
//	(H < 30 OR H > 350) AND S > 0.6 AND V > 0.5
//
// The rule is tuned to bright flames. Smoke (low saturation) and embers (low
// value) are deliberately excluded, and achromatic pixels never match because
// their saturation is zero.
//
// # Outputs
//
// Detect returns:
//   - Mask: a boolean grid of fire pixels, same size as the source image
//   - Pixels: the source image with non-fire pixels blacked out
//   - Area and Percentage: the fire pixel count and its share of the image
//   - Detected: whether any fire pixel was found
//   - MeanColor: the average fire color in hex form
//
// Detected and Percentage are informational. Callers decide what, if
// anything, to do with them.
//
// # Regions
//
// FindRegions labels 8-connected components of any mask and reports their
// bounding boxes, centroids and areas, largest first. It works on raw fire
// masks as well as on morphologically refined ones.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
package detection
