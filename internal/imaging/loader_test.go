package imaging

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestImage writes a solid-color PNG under t.TempDir and returns its path.
func createTestImage(t *testing.T, name string, width, height int, c color.Color) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	switch filepath.Ext(name) {
	case ".jpg", ".jpeg":
		require.NoError(t, jpeg.Encode(f, img, &jpeg.Options{Quality: 100}))
	default:
		require.NoError(t, png.Encode(f, img))
	}
	return path
}

func TestNewImageCache(t *testing.T) {
	cache := NewImageCache(0)
	require.NotNil(t, cache)
	assert.Zero(t, cache.Len())
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache(0)
	path := createTestImage(t, "red.png", 100, 80, color.RGBA{255, 0, 0, 255})

	img1, err := cache.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 100, img1.Bounds().Dx())
	assert.Equal(t, 80, img1.Bounds().Dy())

	img2, err := cache.Load(path)
	require.NoError(t, err)
	assert.Same(t, img1, img2, "second Load should return the cached image")
	assert.Equal(t, 1, cache.Len())
}

func TestImageCache_Load_NonExistent(t *testing.T) {
	_, err := NewImageCache(0).Load("/nonexistent/path/to/image.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load image")
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	_, err := NewImageCache(0).Load(path)
	require.Error(t, err)
}

func TestImageCache_Capacity(t *testing.T) {
	cache := NewImageCache(2)
	a := createTestImage(t, "a.png", 4, 4, color.White)
	b := createTestImage(t, "b.png", 4, 4, color.Black)
	c := createTestImage(t, "c.png", 4, 4, color.RGBA{255, 0, 0, 255})

	first, err := cache.Load(a)
	require.NoError(t, err)
	_, err = cache.Load(b)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	_, err = cache.Load(c)
	require.NoError(t, err)
	assert.Equal(t, 2, cache.Len())

	// a was dropped, so loading it again decodes a new frame.
	again, err := cache.Load(a)
	require.NoError(t, err)
	assert.NotSame(t, first, again)
	assert.Equal(t, 2, cache.Len())
}

func TestImageCache_RelativePathSharesEntry(t *testing.T) {
	path := createTestImage(t, "frame.png", 6, 6, color.White)
	wd, err := os.Getwd()
	require.NoError(t, err)
	rel, err := filepath.Rel(wd, path)
	require.NoError(t, err)

	cache := NewImageCache(0)
	abs, err := cache.Load(path)
	require.NoError(t, err)
	viaRel, err := cache.Load(rel)
	require.NoError(t, err)

	assert.Same(t, abs, viaRel)
	assert.Equal(t, 1, cache.Len())
}

func TestImageCache_Concurrent(t *testing.T) {
	cache := NewImageCache(0)
	path := createTestImage(t, "shared.png", 32, 32, color.RGBA{200, 60, 0, 255})

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Load(path); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, cache.Len())
}

func TestLoadImageInfo(t *testing.T) {
	tests := []struct {
		name       string
		file       string
		wantFormat string
	}{
		{"png", "photo.png", "png"},
		{"jpeg", "photo.jpg", "jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := createTestImage(t, tt.file, 64, 48, color.RGBA{255, 120, 0, 255})

			info, err := LoadImageInfo(NewImageCache(0), path, 0)
			require.NoError(t, err)
			assert.Equal(t, 64, info.Width)
			assert.Equal(t, 48, info.Height)
			assert.Equal(t, 64, info.AnalysisWidth)
			assert.Equal(t, 48, info.AnalysisHeight)
			assert.False(t, info.Downscaled)
			assert.Equal(t, tt.wantFormat, info.Format)
			assert.Positive(t, info.FileSizeBytes)
		})
	}
}

func TestLoadImageInfo_UnknownExtension(t *testing.T) {
	src := createTestImage(t, "frame.png", 8, 8, color.White)
	path := filepath.Join(t.TempDir(), "frame.img")
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	info, err := LoadImageInfo(NewImageCache(0), path, 0)
	require.NoError(t, err)
	assert.Equal(t, "unknown", info.Format)
}

func TestLoadImageInfo_AnalysisSize(t *testing.T) {
	cache := NewImageCache(0)
	path := createTestImage(t, "wide.png", 300, 120, color.RGBA{255, 60, 0, 255})

	info, err := LoadImageInfo(cache, path, 100)
	require.NoError(t, err)
	assert.Equal(t, 300, info.Width)
	assert.Equal(t, 100, info.AnalysisWidth)
	assert.Equal(t, 40, info.AnalysisHeight)
	assert.True(t, info.Downscaled)

	// The reported size is the size the analysis raster gets.
	img, err := LoadRaster(cache, path, 100)
	require.NoError(t, err)
	assert.Equal(t, [2]int{info.AnalysisWidth, info.AnalysisHeight}, [2]int{img.Width, img.Height})
}

func TestGetDimensions(t *testing.T) {
	path := createTestImage(t, "dims.png", 17, 9, color.White)

	dims, err := GetDimensions(NewImageCache(0), path)
	require.NoError(t, err)
	assert.Equal(t, &DimensionsResult{Width: 17, Height: 9}, dims)

	_, err = GetDimensions(NewImageCache(0), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
