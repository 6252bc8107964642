// Package lut synthesizes 3D color lookup tables from a color grade and
// serializes them in the .cube text format.
//
// Output is deterministic: the same grade and options always produce the
// same bytes. Arithmetic that would otherwise be eligible for fused
// multiply-add is written with explicit float64 conversions, and numbers are
// formatted with strconv rather than through fmt verbs.
package lut

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ironsheep/framematch/internal/grade"
	"github.com/ironsheep/framematch/internal/imaging"
)

// ErrInvalidSize is returned for grid sizes outside 2..MaxSize.
var ErrInvalidSize = errors.New("invalid LUT size")

// DefaultTitle is used when Options.Title is empty.
const DefaultTitle = "FrameMatch LUT"

// Options controls LUT synthesis.
type Options struct {
	// Size is the number of grid points per axis.
	Size int `yaml:"size" json:"size"`

	// MaxSize bounds Size.
	MaxSize int `yaml:"max_size" json:"maxSize"`

	Title string `yaml:"title" json:"title"`

	// TemperatureShift scales red and blue in opposite directions for warm
	// and cool grades.
	TemperatureShift float64 `yaml:"temperature_shift" json:"temperatureShift"`

	// Shadow tints apply below ShadowThreshold luminance, highlight tints
	// above HighlightThreshold, both fading to zero at the threshold.
	ShadowThreshold    float64 `yaml:"shadow_threshold" json:"shadowThreshold"`
	HighlightThreshold float64 `yaml:"highlight_threshold" json:"highlightThreshold"`

	// TintStrength scales tint offsets at the far end of each band.
	TintStrength float64 `yaml:"tint_strength" json:"tintStrength"`
}

// DefaultOptions returns a 17-point grid with the standard adjustments.
func DefaultOptions() Options {
	return Options{
		Size:               17,
		MaxSize:            256,
		Title:              DefaultTitle,
		TemperatureShift:   0.05,
		ShadowThreshold:    0.4,
		HighlightThreshold: 0.6,
		TintStrength:       0.5,
	}
}

// Validate checks the size bounds and the band thresholds.
func (o Options) Validate() error {
	if o.MaxSize < 2 {
		return fmt.Errorf("%w: max_size %d below 2", ErrInvalidSize, o.MaxSize)
	}
	if o.Size <= 1 || o.Size > o.MaxSize {
		return fmt.Errorf("%w: %d not in [2, %d]", ErrInvalidSize, o.Size, o.MaxSize)
	}
	if !(o.ShadowThreshold > 0 && o.ShadowThreshold < 1) || !(o.HighlightThreshold > 0 && o.HighlightThreshold < 1) {
		return fmt.Errorf("lut thresholds must be in (0, 1), got shadow %g highlight %g", o.ShadowThreshold, o.HighlightThreshold)
	}
	if o.TemperatureShift < 0 || o.TemperatureShift >= 1 || o.TintStrength < 0 {
		return fmt.Errorf("lut temperature_shift must be in [0, 1) and tint_strength non-negative")
	}
	return nil
}

// Cube is a synthesized lookup table.
type Cube struct {
	Title   string
	Comment string
	Size    int

	// Data holds Size³ output colors, blue varying slowest and red fastest.
	Data [][3]float64
}

// At returns the output color at grid coordinate (r, g, b).
func (c *Cube) At(r, g, b int) [3]float64 {
	return c.Data[(b*c.Size+g)*c.Size+r]
}

// Synthesize builds a cube reproducing est.
//
// Every grid color goes through the tone curve (as a luminance scale), the
// white balance shift, and the shadow and highlight tints, clamping to
// [0, 1] after each step.
func Synthesize(est grade.Estimate, opts Options) (*Cube, error) {
	if opts.Size <= 1 || opts.Size > opts.MaxSize {
		return nil, fmt.Errorf("%w: %d not in [2, %d]", ErrInvalidSize, opts.Size, opts.MaxSize)
	}

	n := opts.Size
	cube := &Cube{
		Title:   cleanTitle(opts.Title),
		Comment: describe(est),
		Size:    n,
		Data:    make([][3]float64, 0, n*n*n),
	}
	step := 1 / float64(n-1)
	for b := 0; b < n; b++ {
		for g := 0; g < n; g++ {
			for r := 0; r < n; r++ {
				in := [3]float64{float64(float64(r) * step), float64(float64(g) * step), float64(float64(b) * step)}
				cube.Data = append(cube.Data, transform(in, est, opts))
			}
		}
	}
	return cube, nil
}

// transform maps one input color through the grade.
func transform(c [3]float64, est grade.Estimate, opts Options) [3]float64 {
	lum := luminance(c)

	mapped := est.ToneCurve.Eval(float64(lum*100)) / 100
	scale := mapped / math.Max(lum, imaging.Epsilon)
	for i := range c {
		c[i] = clampUnit(float64(c[i] * scale))
	}

	switch est.Temperature {
	case grade.Warm:
		c[0] = clampUnit(float64(c[0] * (1 + opts.TemperatureShift)))
		c[2] = clampUnit(float64(c[2] * (1 - opts.TemperatureShift)))
	case grade.Cool:
		c[0] = clampUnit(float64(c[0] * (1 - opts.TemperatureShift)))
		c[2] = clampUnit(float64(c[2] * (1 + opts.TemperatureShift)))
	}

	// Band weights use the luminance of the input color.
	if lum < opts.ShadowThreshold {
		w := float64(opts.TintStrength*(opts.ShadowThreshold-lum)) / opts.ShadowThreshold
		c = addOffset(c, est.ShadowTint.Offset, w)
	}
	if lum > opts.HighlightThreshold {
		w := float64(opts.TintStrength*(lum-opts.HighlightThreshold)) / (1 - opts.HighlightThreshold)
		c = addOffset(c, est.HighlightTint.Offset, w)
	}
	return c
}

func addOffset(c [3]float64, off grade.Offset, w float64) [3]float64 {
	c[0] = clampUnit(c[0] + float64(off.R*w))
	c[1] = clampUnit(c[1] + float64(off.G*w))
	c[2] = clampUnit(c[2] + float64(off.B*w))
	return c
}

func luminance(c [3]float64) float64 {
	return float64(0.299*c[0]) + float64(0.587*c[1]) + float64(0.114*c[2])
}

// clampUnit clamps v to [0, 1]. NaN and negative zero become zero.
func clampUnit(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// cleanTitle keeps the title on one line and free of quotes.
func cleanTitle(title string) string {
	title = strings.Join(strings.Fields(strings.NewReplacer(`"`, "'", "\\", "/").Replace(title)), " ")
	if title == "" {
		return DefaultTitle
	}
	return title
}

func describe(est grade.Estimate) string {
	return fmt.Sprintf("temperature %s, shadows %s, highlights %s, %d curve points",
		est.Temperature, strings.ToLower(est.ShadowTint.Label), strings.ToLower(est.HighlightTint.Label), len(est.ToneCurve))
}
