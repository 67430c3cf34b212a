// Package pipeline runs the complete fire analysis of one image.
//
// An Analyzer sequences the core packages:
//
//  1. colorspace.Convert turns the RGB raster into HSV.
//  2. detection segments fire-colored pixels and reports the fire area.
//  3. raster.Binarize thresholds the luminance of the fire-colored raster.
//  4. morphology.Refine computes the five named variants of that mask.
//  5. Each variant is composited against the original image and its white
//     percentage is measured.
//
// The result is a table keyed by Operation, in the fixed order returned by
// Operations:
//
//	eroded, dilated, opened, closed, opened_closed
//
// # Concurrency
//
// An Analyzer holds only its configuration. Run allocates every intermediate
// array per call, so one Analyzer may serve concurrent callers without
// locking.
//
// # Errors
//
// Errors from the core packages are wrapped with the stage that produced them.
// The sentinels raster.ErrInvalidImage and morphology.ErrInvalidRadius remain
// reachable through errors.Is.
package pipeline
