package imaging

import (
	"fmt"
	"sort"
)

// BT.601 luma weights.
const (
	LumaR = 0.299
	LumaG = 0.587
	LumaB = 0.114
)

// Luminance returns the BT.601 luma of an RGB triple, in the same unit as
// the components.
func Luminance(r, g, b float64) float64 {
	return LumaR*r + LumaG*g + LumaB*b
}

// GrayField is a row-major grid of luminance values in [0, 255].
type GrayField struct {
	Width  int
	Height int
	Pix    []float64
}

// NewGrayField computes the luminance of every pixel of r.
func NewGrayField(r *Raster) *GrayField {
	g := &GrayField{
		Width:  r.Width,
		Height: r.Height,
		Pix:    make([]float64, r.Width*r.Height),
	}
	for y := 0; y < r.Height; y++ {
		row := y * r.Width
		for x := 0; x < r.Width; x++ {
			cr, cg, cb := r.RGB(x, y)
			g.Pix[row+x] = Luminance(float64(cr), float64(cg), float64(cb))
		}
	}
	return g
}

// At returns the luminance at (x, y). Coordinates are clamped to the field.
func (g *GrayField) At(x, y int) float64 {
	return g.Pix[clamp(y, 0, g.Height-1)*g.Width+clamp(x, 0, g.Width-1)]
}

// Bounds returns the region covering the whole field.
func (g *GrayField) Bounds() Region {
	return Region{X1: 0, Y1: 0, X2: g.Width, Y2: g.Height}
}

// RegionMean returns the mean luminance inside r.
//
// It fails when r is empty or extends outside the field.
func (g *GrayField) RegionMean(r Region) (float64, error) {
	if r.Empty() {
		return 0, fmt.Errorf("empty region (%d,%d)-(%d,%d)", r.X1, r.Y1, r.X2, r.Y2)
	}
	if r.X1 < 0 || r.Y1 < 0 || r.X2 > g.Width || r.Y2 > g.Height {
		return 0, fmt.Errorf("region (%d,%d)-(%d,%d) outside field %dx%d", r.X1, r.Y1, r.X2, r.Y2, g.Width, g.Height)
	}

	var sum float64
	for y := r.Y1; y < r.Y2; y++ {
		row := g.Pix[y*g.Width+r.X1 : y*g.Width+r.X2]
		for _, v := range row {
			sum += v
		}
	}
	return sum / float64(r.Dx()*r.Dy()), nil
}

// Sorted returns a sorted copy of the luminance values, for quantile lookups.
func (g *GrayField) Sorted() []float64 {
	s := make([]float64, len(g.Pix))
	copy(s, g.Pix)
	sort.Float64s(s)
	return s
}
