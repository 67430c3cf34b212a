// Package raster provides the in-memory pixel containers used by the fire
// analysis pipeline.
//
// Two grid types are defined:
//   - Image: an 8-bit RGB raster, stored row-major with 3 bytes per pixel.
//   - Mask: a boolean grid with the same dimensions as the raster it came from.
//
// Both use a coordinate system where (0,0) is the top-left corner, X grows
// rightward and Y grows downward. Indexing is always relative to the grid, so
// images decoded with a non-zero bounds origin are rebased on conversion.
//
// # Ownership
//
// Functions in this package never modify their inputs. Composite, Binarize and
// the conversions return freshly allocated grids that the caller owns.
//
// # Metrics
//
// Percentage reports the share of true cells in a mask on a 0-100 scale. It is
// the coverage metric reported for every morphological variant.
//
// # Error Handling
//
// Invalid inputs (zero dimensions, fewer than 3 channels, mismatched buffer
// lengths or mask sizes) produce errors wrapping ErrInvalidImage.
package raster
