package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"math"
	"os"
	"sync"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// Decoding errors. They are fatal to an analysis.
var (
	ErrDecodeFailure     = errors.New("decode failure")
	ErrDimensionTooSmall = errors.New("dimension too small")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

const (
	// DefaultMinDimension is the smallest accepted width or height.
	DefaultMinDimension = 16

	// DefaultMaxDimension caps the working resolution. Larger images are
	// downscaled before analysis.
	DefaultMaxDimension = 1024
)

// DecodeOptions bounds the size of images accepted for analysis.
type DecodeOptions struct {
	// MinDimension is the smallest accepted width or height in pixels.
	MinDimension int `yaml:"min_dimension" json:"minDimension"`

	// MaxDimension is the largest working width or height. Zero disables
	// downscaling.
	MaxDimension int `yaml:"max_dimension" json:"maxDimension"`
}

// DefaultDecodeOptions returns the default size bounds.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		MinDimension: DefaultMinDimension,
		MaxDimension: DefaultMaxDimension,
	}
}

func (o DecodeOptions) minDimension() int {
	if o.MinDimension <= 0 {
		return DefaultMinDimension
	}
	return o.MinDimension
}

// Raster is a decoded image ready for analysis.
//
// Pixels always starts at (0,0). The alpha channel is ignored by every
// analysis. A Raster must not be modified after construction.
type Raster struct {
	Pixels *image.NRGBA
	Width  int
	Height int

	// Format is the name of the decoder that read the data ("png", "jpeg",
	// ...), or "memory" for rasters built with NewRaster.
	Format string

	// Exif holds the camera fields found in the data, or nil.
	Exif *ExifData

	// SourceWidth and SourceHeight are the dimensions before downscaling.
	SourceWidth  int
	SourceHeight int
}

// RGB returns the 8-bit color components at (x, y).
func (r *Raster) RGB(x, y int) (uint8, uint8, uint8) {
	i := r.Pixels.PixOffset(x, y)
	p := r.Pixels.Pix[i : i+3 : i+3]
	return p[0], p[1], p[2]
}

// ImageInfo describes a raster.
type ImageInfo struct {
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	SourceWidth  int    `json:"sourceWidth"`
	SourceHeight int    `json:"sourceHeight"`
	Format       string `json:"format"`
	Downscaled   bool   `json:"downscaled"`
	HasExif      bool   `json:"hasExif"`
}

// Info returns a summary of the raster dimensions and origin.
func (r *Raster) Info() ImageInfo {
	return ImageInfo{
		Width:        r.Width,
		Height:       r.Height,
		SourceWidth:  r.SourceWidth,
		SourceHeight: r.SourceHeight,
		Format:       r.Format,
		Downscaled:   r.Width != r.SourceWidth || r.Height != r.SourceHeight,
		HasExif:      r.Exif != nil,
	}
}

// Decode decodes encoded image bytes into a Raster.
//
// PNG, JPEG, GIF, BMP, TIFF and WebP are recognised. EXIF orientation is
// applied, and EXIF camera fields are attached when present. Missing or
// unreadable EXIF is not an error.
//
// # Errors
//
//   - ErrDecodeFailure if data is empty or cannot be decoded
//   - ErrUnsupportedFormat if no decoder recognises data
//   - ErrDimensionTooSmall if either side is below opts.MinDimension
func Decode(data []byte, opts DecodeOptions) (*Raster, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrDecodeFailure)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}
	// Reject before paying for a full decode.
	if lo := opts.minDimension(); cfg.Width < lo || cfg.Height < lo {
		return nil, fmt.Errorf("%w: %dx%d, minimum is %dx%d", ErrDimensionTooSmall, cfg.Width, cfg.Height, lo, lo)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailure, err)
	}

	r, err := NewRaster(img, opts)
	if err != nil {
		return nil, err
	}
	r.Format = format
	r.Exif = ReadExif(data)
	return r, nil
}

// NewRaster wraps an in-memory image, applying the same dimension checks and
// downscaling as Decode.
func NewRaster(img image.Image, opts DecodeOptions) (*Raster, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrDecodeFailure)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	lo := opts.minDimension()
	if w < lo || h < lo {
		return nil, fmt.Errorf("%w: %dx%d, minimum is %dx%d", ErrDimensionTooSmall, w, h, lo, lo)
	}

	var pixels *image.NRGBA
	if nw, nh, ok := workingSize(w, h, lo, opts.MaxDimension); ok {
		pixels = imaging.Resize(img, nw, nh, imaging.Box)
	} else {
		pixels = imaging.Clone(img)
	}

	return &Raster{
		Pixels:       pixels,
		Width:        pixels.Bounds().Dx(),
		Height:       pixels.Bounds().Dy(),
		Format:       "memory",
		SourceWidth:  w,
		SourceHeight: h,
	}, nil
}

// workingSize returns the downscaled size for a w x h image, and false when
// no downscaling is needed. Neither side drops below lo or, apart from that
// floor, exceeds hi.
func workingSize(w, h, lo, hi int) (int, int, bool) {
	if hi <= 0 || (w <= hi && h <= hi) {
		return w, h, false
	}
	scale := float64(hi) / float64(w)
	if h > w {
		scale = float64(hi) / float64(h)
	}
	nw := max(lo, int(math.Round(float64(w)*scale)))
	nh := max(lo, int(math.Round(float64(h)*scale)))
	return nw, nh, true
}

// LoadFile reads and decodes the image at path.
func LoadFile(path string, opts DecodeOptions) (*Raster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	r, err := Decode(data, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// ImageCache provides thread-safe caching of decoded rasters to avoid
// redundant disk reads.
//
// The cache stores rasters keyed by their file path. Once an image is loaded,
// subsequent Load() calls for the same path return the cached copy without
// disk I/O. Rasters are immutable, so sharing them between callers is safe.
//
// Cached rasters remain in memory until explicitly removed via Evict() or
// Clear().
type ImageCache struct {
	mu      sync.RWMutex
	opts    DecodeOptions
	rasters map[string]*Raster
}

// NewImageCache creates an empty cache that decodes with opts.
func NewImageCache(opts DecodeOptions) *ImageCache {
	return &ImageCache{
		opts:    opts,
		rasters: make(map[string]*Raster),
	}
}

// Load retrieves a raster from the cache or loads it from disk if not cached.
//
// The raster is cached using the exact path string provided. Different paths
// to the same file (e.g., relative vs absolute) result in separate entries.
// Failed loads are not cached.
func (c *ImageCache) Load(path string) (*Raster, error) {
	c.mu.RLock()
	if r, ok := c.rasters[path]; ok {
		c.mu.RUnlock()
		return r, nil
	}
	c.mu.RUnlock()

	r, err := LoadFile(path, c.opts)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.rasters[path] = r
	c.mu.Unlock()

	return r, nil
}

// Len returns the number of cached rasters.
func (c *ImageCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.rasters)
}

// Clear removes all rasters from the cache.
func (c *ImageCache) Clear() {
	c.mu.Lock()
	c.rasters = make(map[string]*Raster)
	c.mu.Unlock()
}

// Evict removes a specific raster from the cache by its path.
//
// If the path is not in the cache, this method does nothing.
func (c *ImageCache) Evict(path string) {
	c.mu.Lock()
	delete(c.rasters, path)
	c.mu.Unlock()
}
