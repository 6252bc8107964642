package imaging

import (
	"fmt"
	"image"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Colorful converts c to a go-colorful color with components in [0, 1].
func (c RGBColor) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Hex returns the color as "#rrggbb".
func (c RGBColor) Hex() string {
	return c.Colorful().Hex()
}

// Region represents a rectangular region within an image.
//
// Coordinates follow the standard image convention:
//   - (X1, Y1) is the top-left corner (inclusive)
//   - (X2, Y2) is the bottom-right corner (exclusive)
//   - Width = X2 - X1, Height = Y2 - Y1
type Region struct {
	X1 int `json:"x1"` // Left edge X coordinate (inclusive)
	Y1 int `json:"y1"` // Top edge Y coordinate (inclusive)
	X2 int `json:"x2"` // Right edge X coordinate (exclusive)
	Y2 int `json:"y2"` // Bottom edge Y coordinate (exclusive)
}

// Dx returns the region width.
func (r Region) Dx() int { return r.X2 - r.X1 }

// Dy returns the region height.
func (r Region) Dy() int { return r.Y2 - r.Y1 }

// Empty reports whether the region contains no pixels.
func (r Region) Empty() bool { return r.X1 >= r.X2 || r.Y1 >= r.Y2 }

// Contains reports whether (x, y) lies inside the region.
func (r Region) Contains(x, y int) bool {
	return x >= r.X1 && x < r.X2 && y >= r.Y1 && y < r.Y2
}

// ColorFrequency represents a color and its occurrence frequency in an image.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#rrggbb" of the representative color
	Percentage float64  `json:"percentage"` // Percentage of pixels in this bucket (0-100)
	Pixels     int      `json:"pixels"`     // Number of pixels in this bucket
	RGB        RGBColor `json:"rgb"`        // Representative (mean) color of the bucket
}

// DominantColorsResult contains the most frequently occurring colors in an image.
//
// Colors are sorted by frequency in descending order (most common first).
type DominantColorsResult struct {
	Colors []ColorFrequency `json:"colors"`
}

// quantShift groups each 8-bit component into 16 levels.
const quantShift = 4

// DominantColors extracts the N most common colors from an image or region.
//
// Parameters:
//   - img: The source image to analyze.
//   - count: Maximum number of colors to return, at least 1. If the image has
//     fewer distinct colors (after quantization), fewer results are returned.
//   - region: Optional rectangular region to analyze. If nil, the entire
//     image is analyzed.
//
// # Color Quantization
//
// Each component is divided by 16, so every pixel falls into one of 4096
// buckets. The color reported for a bucket is the mean of its pixels rather
// than the bucket corner, so a uniform image reports its exact color.
//
// # Ordering
//
// Buckets are sorted by pixel count, descending. Buckets with equal counts
// keep the order in which they were first seen in a row-major scan, so the
// result is deterministic.
func DominantColors(img image.Image, count int, region *Region) (*DominantColorsResult, error) {
	if count < 1 {
		return nil, fmt.Errorf("color count must be at least 1, got %d", count)
	}

	bounds := img.Bounds()
	if region != nil {
		r := image.Rect(region.X1, region.Y1, region.X2, region.Y2)
		if !r.In(bounds) || r.Empty() {
			return nil, fmt.Errorf("region (%d,%d)-(%d,%d) outside image bounds", region.X1, region.Y1, region.X2, region.Y2)
		}
		bounds = r
	}
	if bounds.Empty() {
		return nil, fmt.Errorf("image has no pixels")
	}

	type bucket struct {
		count   int
		r, g, b uint64
	}
	index := make(map[uint16]int)
	var buckets []bucket

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r8, g8, b8 := rgbAt(img, x, y)
			key := uint16(r8>>quantShift)<<8 | uint16(g8>>quantShift)<<4 | uint16(b8>>quantShift)
			i, ok := index[key]
			if !ok {
				i = len(buckets)
				index[key] = i
				buckets = append(buckets, bucket{})
			}
			bk := &buckets[i]
			bk.count++
			bk.r += uint64(r8)
			bk.g += uint64(g8)
			bk.b += uint64(b8)
		}
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].count > buckets[j].count
	})
	if len(buckets) > count {
		buckets = buckets[:count]
	}

	total := float64(bounds.Dx() * bounds.Dy())
	colors := make([]ColorFrequency, len(buckets))
	for i, bk := range buckets {
		n := uint64(bk.count)
		c := RGBColor{
			R: uint8((bk.r + n/2) / n),
			G: uint8((bk.g + n/2) / n),
			B: uint8((bk.b + n/2) / n),
		}
		colors[i] = ColorFrequency{
			Hex:        c.Hex(),
			Percentage: float64(bk.count) / total * 100,
			Pixels:     bk.count,
			RGB:        c,
		}
	}

	return &DominantColorsResult{Colors: colors}, nil
}

// rgbAt returns the 8-bit color at (x, y), reading NRGBA pixel memory
// directly when possible.
func rgbAt(img image.Image, x, y int) (uint8, uint8, uint8) {
	if n, ok := img.(*image.NRGBA); ok {
		i := n.PixOffset(x, y)
		return n.Pix[i], n.Pix[i+1], n.Pix[i+2]
	}
	r, g, b, _ := img.At(x, y).RGBA()
	return uint8(r >> 8), uint8(g >> 8), uint8(b >> 8)
}
