package imaging

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ironsheep/framematch/internal/imaging/imagingtest"
)

// writeTestImage writes a PNG test image into a temp dir and returns its path.
func writeTestImage(t *testing.T, img image.Image) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test-image.png")
	if err := os.WriteFile(path, imagingtest.PNG(img), 0o644); err != nil {
		t.Fatalf("failed to write image: %v", err)
	}
	return path
}

func TestDecode_PNG(t *testing.T) {
	data := imagingtest.PNG(imagingtest.Uniform(100, 80, color.RGBA{255, 128, 64, 255}))

	r, err := Decode(data, DefaultDecodeOptions())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if r.Width != 100 || r.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", r.Width, r.Height)
	}
	if r.Format != "png" {
		t.Errorf("Format: got %s, want png", r.Format)
	}
	if r.Exif != nil {
		t.Errorf("Exif: got %+v, want nil", r.Exif)
	}
	if cr, cg, cb := r.RGB(10, 10); cr != 255 || cg != 128 || cb != 64 {
		t.Errorf("RGB: got (%d,%d,%d), want (255,128,64)", cr, cg, cb)
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrDecodeFailure},
		{"zero length", []byte{}, ErrDecodeFailure},
		{"not an image", []byte("not an image at all"), ErrUnsupportedFormat},
		{"truncated png", imagingtest.PNG(imagingtest.Uniform(64, 64, color.White))[:60], ErrDecodeFailure},
		{"too small", imagingtest.PNG(imagingtest.Uniform(15, 100, color.White)), ErrDimensionTooSmall},
		{"too short", imagingtest.PNG(imagingtest.Uniform(100, 8, color.White)), ErrDimensionTooSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, DefaultDecodeOptions())
			if !errors.Is(err, tt.want) {
				t.Errorf("error: got %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecode_MinimumSizeAccepted(t *testing.T) {
	data := imagingtest.PNG(imagingtest.Uniform(16, 16, color.White))
	if _, err := Decode(data, DefaultDecodeOptions()); err != nil {
		t.Errorf("16x16 image should be accepted: %v", err)
	}
}

func TestDecode_Downscale(t *testing.T) {
	data := imagingtest.PNG(imagingtest.Uniform(400, 100, color.White))

	r, err := Decode(data, DecodeOptions{MinDimension: 16, MaxDimension: 200})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if r.Width != 200 || r.Height != 50 {
		t.Errorf("dimensions: got %dx%d, want 200x50", r.Width, r.Height)
	}
	info := r.Info()
	if !info.Downscaled || info.SourceWidth != 400 || info.SourceHeight != 100 {
		t.Errorf("info: got %+v", info)
	}
}

func TestWorkingSize_KeepsMinimum(t *testing.T) {
	w, h, ok := workingSize(2000, 20, 16, 1000)
	if !ok {
		t.Fatal("expected downscale")
	}
	if w != 1000 || h != 16 {
		t.Errorf("got %dx%d, want 1000x16", w, h)
	}

	if _, _, ok := workingSize(500, 500, 16, 1000); ok {
		t.Error("image within bounds should not be downscaled")
	}
	if _, _, ok := workingSize(5000, 5000, 16, 0); ok {
		t.Error("zero max should disable downscaling")
	}
}

func TestNewRaster_NonZeroOrigin(t *testing.T) {
	src := imagingtest.Uniform(60, 60, color.RGBA{0, 0, 255, 255})
	sub := src.SubImage(image.Rect(10, 10, 50, 40))

	r, err := NewRaster(sub, DefaultDecodeOptions())
	if err != nil {
		t.Fatalf("NewRaster failed: %v", err)
	}
	if r.Pixels.Bounds().Min != (image.Point{}) {
		t.Errorf("raster should start at origin, got %v", r.Pixels.Bounds())
	}
	if r.Width != 40 || r.Height != 30 {
		t.Errorf("dimensions: got %dx%d, want 40x30", r.Width, r.Height)
	}
	if r.Format != "memory" {
		t.Errorf("Format: got %s, want memory", r.Format)
	}
}

func TestNewRaster_Nil(t *testing.T) {
	if _, err := NewRaster(nil, DefaultDecodeOptions()); !errors.Is(err, ErrDecodeFailure) {
		t.Errorf("got %v, want ErrDecodeFailure", err)
	}
}

func TestLoadFile_NonExistent(t *testing.T) {
	_, err := LoadFile("/nonexistent/path/to/image.png", DefaultDecodeOptions())
	if err == nil {
		t.Error("LoadFile should fail for non-existent file")
	}
}

func TestImageCache_Load(t *testing.T) {
	cache := NewImageCache(DefaultDecodeOptions())
	path := writeTestImage(t, imagingtest.Uniform(100, 100, color.RGBA{255, 0, 0, 255}))

	r1, err := cache.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	r2, err := cache.Load(path)
	if err != nil {
		t.Fatalf("second Load failed: %v", err)
	}
	if r1 != r2 {
		t.Error("second Load did not return cached raster")
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestImageCache_Load_InvalidImage(t *testing.T) {
	cache := NewImageCache(DefaultDecodeOptions())
	path := filepath.Join(t.TempDir(), "invalid.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := cache.Load(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("got %v, want ErrUnsupportedFormat", err)
	}
	if cache.Len() != 0 {
		t.Error("failed load should not be cached")
	}
}

func TestImageCache_EvictAndClear(t *testing.T) {
	cache := NewImageCache(DefaultDecodeOptions())
	path := writeTestImage(t, imagingtest.Uniform(50, 50, color.RGBA{0, 255, 0, 255}))

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cache.Evict(path)
	if cache.Len() != 0 {
		t.Error("Evict did not remove raster from cache")
	}

	// Should not panic
	cache.Evict("/nonexistent/path")

	if _, err := cache.Load(path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cache.Clear()
	if cache.Len() != 0 {
		t.Error("Clear did not empty cache")
	}
}

func TestImageCache_ConcurrentAccess(t *testing.T) {
	cache := NewImageCache(DefaultDecodeOptions())
	path := writeTestImage(t, imagingtest.Uniform(50, 50, color.RGBA{128, 128, 128, 255}))

	var wg sync.WaitGroup
	errs := make(chan error, 100)

	for i := 0; i < 100; i++ {
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
		t.Errorf("concurrent Load error: %v", err)
	}
}
