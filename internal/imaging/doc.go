// Package imaging handles image files on behalf of the fire analysis server.
//
// It sits between the file system and the in-memory pipeline:
//   - ImageCache decodes PNG, JPEG, GIF, TIFF and BMP files with EXIF
//     auto-orientation and keeps a bounded number for repeated tool calls.
//   - LoadImageInfo and GetDimensions report frame and analysis sizes.
//   - Prepare and LoadRaster bound the input size and produce the RGB raster
//     the pipeline consumes. PrepareMask bounds mask images without blurring
//     them.
//   - EncodeBase64 renders masks and composites for inline MCP image content.
//   - SaveImage, ResultFileName and CopyFile persist results as
//     "<operation>_<basename>" files next to a copy of the original. The
//     copy is skipped when the original already sits in that directory.
//
// # Coordinate System
//
// All pixel coordinates are 0-based with (0,0) at the top-left corner, X
// increasing rightward and Y increasing downward.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. The other functions are
// stateless. Cached images are shared between callers and must be treated as
// read-only.
package imaging
