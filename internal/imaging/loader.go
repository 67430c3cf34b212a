package imaging

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

// ImageCache keeps decoded source frames between tool calls. A client
// usually runs fire_detect, fire_analyze and mask_refine on the same frame in
// turn, and the cache lets those calls share one decode.
//
// Frames are keyed by absolute path, so "frame.jpg" and "./frame.jpg" share
// an entry. Decoding applies the EXIF orientation, so a camera frame is
// analyzed upright. Once the cache holds capacity frames, loading a new one
// drops the frame that was loaded first.
//
// ImageCache is safe for concurrent use.
type ImageCache struct {
	mu       sync.RWMutex
	capacity int
	frames   map[string]image.Image
	order    []string
}

// NewImageCache creates an empty cache holding at most capacity frames. A
// capacity of 0 or less keeps every frame.
func NewImageCache(capacity int) *ImageCache {
	return &ImageCache{
		capacity: capacity,
		frames:   make(map[string]image.Image),
	}
}

// frameKey normalizes path into the cache key.
func frameKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Load returns the frame at path, decoding it on first use.
//
// Parameters:
//   - path: Image file path. PNG, JPEG, GIF, TIFF and BMP decode.
//
// Returns:
//   - image.Image: The upright frame. Callers must not modify it; the
//     analysis copies it into a raster first.
//   - error: Non-nil if the file cannot be opened or decoded.
func (c *ImageCache) Load(path string) (image.Image, error) {
	key := frameKey(path)

	c.mu.RLock()
	frame, ok := c.frames[key]
	c.mu.RUnlock()
	if ok {
		return frame, nil
	}

	frame, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to load image %s: %w", path, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.frames[key]; ok {
		return cached, nil
	}
	c.frames[key] = frame
	c.order = append(c.order, key)
	for c.capacity > 0 && len(c.order) > c.capacity {
		delete(c.frames, c.order[0])
		c.order = c.order[1:]
	}
	return frame, nil
}

// Len returns the number of cached frames.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.frames)
}

// ImageInfo describes a source frame and the size the fire tools will
// analyze it at.
type ImageInfo struct {
	// Width and Height are the upright frame size in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// AnalysisWidth and AnalysisHeight are the size after the MaxSide bound.
	// Region bounds and crops returned by fire_detect use these coordinates.
	AnalysisWidth  int  `json:"analysis_width"`
	AnalysisHeight int  `json:"analysis_height"`
	Downscaled     bool `json:"downscaled"`

	// Format comes from the file extension: "png", "jpeg", "gif", "tiff",
	// "bmp" or "unknown".
	Format string `json:"format"`

	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadImageInfo loads the frame at path through cache and describes it.
//
// Parameters:
//   - cache: The frame cache. Must not be nil.
//   - path: Image file path.
//   - maxSide: The MaxSide bound analysis applies; 0 for none.
//
// Returns:
//   - *ImageInfo: Frame size, analysis size, format and file size.
//   - error: Non-nil if the frame cannot be decoded or the file stat'd.
func LoadImageInfo(cache *ImageCache, path string, maxSide int) (*ImageInfo, error) {
	frame, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	format := "unknown"
	if f, err := imaging.FormatFromFilename(path); err == nil {
		format = strings.ToLower(f.String())
	}

	w, h := frame.Bounds().Dx(), frame.Bounds().Dy()
	aw, ah := analysisSize(w, h, maxSide)
	return &ImageInfo{
		Width:          w,
		Height:         h,
		AnalysisWidth:  aw,
		AnalysisHeight: ah,
		Downscaled:     aw != w || ah != h,
		Format:         format,
		FileSizeBytes:  stat.Size(),
	}, nil
}

// analysisSize is the size Prepare produces for a w x h frame.
func analysisSize(w, h, maxSide int) (int, int) {
	if maxSide <= 0 || (w <= maxSide && h <= maxSide) {
		return w, h
	}
	size := fitSize(w, h, maxSide)
	return size.X, size.Y
}

// DimensionsResult contains the width and height of an image.
type DimensionsResult struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions returns the upright size of the frame at path.
func GetDimensions(cache *ImageCache, path string) (*DimensionsResult, error) {
	frame, err := cache.Load(path)
	if err != nil {
		return nil, err
	}
	size := frame.Bounds().Size()
	return &DimensionsResult{Width: size.X, Height: size.Y}, nil
}
