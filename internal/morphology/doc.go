// Package morphology implements binary morphological filters over raster.Mask.
//
// The structuring element is a flat square of side 2r+1 centered on each cell,
// where r is the kernel radius (r >= 1).
//
// # Operations
//
//   - Erode: a cell is true iff every cell of its neighborhood is true.
//   - Dilate: a cell is true iff at least one cell of its neighborhood is true.
//   - Open: Dilate(Erode(m)). Removes specks and thin protrusions.
//   - Close: Erode(Dilate(m)). Fills small gaps and holes.
//   - OpenClose: Close(Open(m)). Two-stage smoothing.
//
// # Border Policy
//
// Erode and Dilate only evaluate cells whose whole neighborhood lies inside
// the mask. Every cell within r of any edge is false in the output, whatever
// the input holds there. No padding of any kind is applied.
//
// This dead band shapes the algebra of the compositions:
//   - Erode(m) ⊆ m, and Open(m) ⊆ m, everywhere.
//   - m ⊆ Dilate(m) on cells at least r from every edge.
//   - m ⊆ Close(m) on cells at least 2r from every edge.
//   - Open is idempotent on masks that are already false within r of the
//     edges, which includes every output of this package.
//
// When 2r >= min(width, height) no cell survives the band and both Erode and
// Dilate return an all-false mask. IsDegenerate detects this up front and
// Refine reports it on its result.
//
// # Performance
//
// Each call scans the (2r+1)² neighborhood of every interior cell, for a cost
// of O(width × height × r²). Erode stops at the first false neighbor and
// Dilate at the first true one.
package morphology
