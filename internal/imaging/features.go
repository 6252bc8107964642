package imaging

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Epsilon is the floor applied to every ratio denominator.
const Epsilon = 1e-6

// ErrDegenerateInput reports features or fields that no estimator can use.
var ErrDegenerateInput = errors.New("degenerate input")

// DefaultRadialBands is the number of concentric rings sampled from the
// center outward.
const DefaultRadialBands = 5

// FeatureOptions controls feature extraction.
type FeatureOptions struct {
	// RadialBands is the number of concentric rings. Values below 2 use 2.
	RadialBands int `yaml:"radial_bands" json:"radialBands"`
}

// DefaultFeatureOptions returns the default extraction settings.
func DefaultFeatureOptions() FeatureOptions {
	return FeatureOptions{RadialBands: DefaultRadialBands}
}

// FeatureVector summarises the grayscale, gradient and radial statistics of
// an image. All values are finite.
type FeatureVector struct {
	Width  int `json:"width"`
	Height int `json:"height"`

	// EdgeSharpnessProfile is the mean gradient magnitude per ring, from the
	// center ring outward. It always has at least two entries.
	EdgeSharpnessProfile []float64 `json:"edgeSharpnessProfile"`

	// RingBrightness is the mean luminance per ring, same rings as above.
	RingBrightness []float64 `json:"ringBrightness"`

	// VignetteScore is the relative brightness drop from the center ring to
	// the corner ring, in [0, 1].
	VignetteScore float64 `json:"vignetteScore"`

	// GradientVarianceGlobal is the variance of gradient magnitudes.
	GradientVarianceGlobal float64 `json:"gradientVarianceGlobal"`

	// CenterGradientVariance covers the middle third of the frame,
	// OuterGradientVariance the border band.
	CenterGradientVariance float64 `json:"centerGradientVariance"`
	OuterGradientVariance  float64 `json:"outerGradientVariance"`

	BrightnessMean   float64 `json:"brightnessMean"`
	BrightnessStdDev float64 `json:"brightnessStdDev"`

	// HighFrequencyEnergy is the mean squared high-pass response, a noise
	// proxy.
	HighFrequencyEnergy float64 `json:"highFrequencyEnergy"`

	// LaplacianVariance is the variance of the absolute Laplacian, a
	// sharpness proxy.
	LaplacianVariance float64 `json:"laplacianVariance"`
}

// Extract computes the feature vector of a gray field.
//
// # Algorithm
//
//  1. Rings: every pixel is assigned to one of RadialBands equal-width rings
//     of normalized distance from the center (0) to the corner (1).
//  2. Gradients: Sobel magnitudes are averaged per ring into the sharpness
//     profile, and their variance is taken globally, over the middle third,
//     and over the outer band (width min(w,h)/6).
//  3. Vignette: (center ring - corner ring) / center ring, clamped to [0,1].
//  4. Noise: mean squared difference between the field and its 5x5 Gaussian
//     blur.
//  5. Sharpness: variance of the absolute 4-neighbour Laplacian.
//
// A uniform field yields zero for every gradient statistic and a zero
// vignette; no division by zero can occur.
func Extract(g *GrayField, opts FeatureOptions) (*FeatureVector, error) {
	if g == nil || g.Width < 3 || g.Height < 3 || len(g.Pix) != g.Width*g.Height {
		return nil, fmt.Errorf("%w: gray field too small for feature extraction", ErrDimensionTooSmall)
	}
	bands := opts.RadialBands
	if bands < 2 {
		bands = 2
	}

	w, h := g.Width, g.Height
	mag := g.SobelMagnitude()

	// Ring brightness accumulates offsets from the first pixel, so a
	// uniform field gives identical ring means.
	ref := g.Pix[0]
	cx, cy := float64(w)/2, float64(h)/2
	maxRadius := math.Hypot(cx, cy)

	ringLum := make([]float64, bands)
	ringMag := make([]float64, bands)
	ringCount := make([]int, bands)

	border := max(1, min(w, h)/6)
	center := Region{X1: w / 3, Y1: h / 3, X2: 2 * w / 3, Y2: 2 * h / 3}
	var centerMag, outerMag []float64

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			r := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) / maxRadius
			b := min(int(r*float64(bands)), bands-1)
			ringLum[b] += g.Pix[i] - ref
			ringMag[b] += mag[i]
			ringCount[b]++

			if center.Contains(x, y) {
				centerMag = append(centerMag, mag[i])
			}
			if x < border || y < border || x >= w-border || y >= h-border {
				outerMag = append(outerMag, mag[i])
			}
		}
	}

	for b := 0; b < bands; b++ {
		if ringCount[b] == 0 {
			// Only possible for very thin images; reuse the inner ring.
			ringLum[b] = ref
			if b > 0 {
				ringLum[b], ringMag[b] = ringLum[b-1], ringMag[b-1]
			}
			continue
		}
		ringLum[b] = ref + ringLum[b]/float64(ringCount[b])
		ringMag[b] /= float64(ringCount[b])
	}

	vignette := (ringLum[0] - ringLum[bands-1]) / math.Max(ringLum[0], Epsilon)

	blurred := g.gaussianBlur()
	var hf float64
	for i, v := range g.Pix {
		d := v - blurred[i]
		hf += d * d
	}
	hf /= float64(len(g.Pix))

	mean, std := stat.MeanStdDev(g.Pix, nil)

	return &FeatureVector{
		Width:                  w,
		Height:                 h,
		EdgeSharpnessProfile:   ringMag,
		RingBrightness:         ringLum,
		VignetteScore:          clampUnit(vignette),
		GradientVarianceGlobal: variance(mag),
		CenterGradientVariance: variance(centerMag),
		OuterGradientVariance:  variance(outerMag),
		BrightnessMean:         finite(mean),
		BrightnessStdDev:       finite(std),
		HighFrequencyEnergy:    finite(hf),
		LaplacianVariance:      variance(g.Laplacian()),
	}, nil
}

// Validate reports whether every statistic is finite and inside its range.
// Failures wrap ErrDegenerateInput.
func (f *FeatureVector) Validate() error {
	if len(f.EdgeSharpnessProfile) < 2 {
		return fmt.Errorf("%w: sharpness profile has %d bands, need at least 2", ErrDegenerateInput, len(f.EdgeSharpnessProfile))
	}
	if len(f.RingBrightness) != len(f.EdgeSharpnessProfile) {
		return fmt.Errorf("%w: %d brightness rings for %d sharpness bands", ErrDegenerateInput, len(f.RingBrightness), len(f.EdgeSharpnessProfile))
	}
	for i, v := range f.EdgeSharpnessProfile {
		if !isFinite(v) || v < 0 {
			return fmt.Errorf("%w: sharpness band %d is %v", ErrDegenerateInput, i, v)
		}
	}
	scalars := []struct {
		name string
		v    float64
	}{
		{"gradientVarianceGlobal", f.GradientVarianceGlobal},
		{"centerGradientVariance", f.CenterGradientVariance},
		{"outerGradientVariance", f.OuterGradientVariance},
		{"brightnessMean", f.BrightnessMean},
		{"brightnessStdDev", f.BrightnessStdDev},
		{"highFrequencyEnergy", f.HighFrequencyEnergy},
		{"laplacianVariance", f.LaplacianVariance},
	}
	for _, s := range scalars {
		if !isFinite(s.v) || s.v < 0 {
			return fmt.Errorf("%w: %s is %v", ErrDegenerateInput, s.name, s.v)
		}
	}
	if !isFinite(f.VignetteScore) || f.VignetteScore < 0 || f.VignetteScore > 1 {
		return fmt.Errorf("%w: vignetteScore is %v", ErrDegenerateInput, f.VignetteScore)
	}
	return nil
}

func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	_, v := stat.MeanVariance(xs, nil)
	return math.Max(0, finite(v))
}

func clampUnit(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func finite(v float64) float64 {
	if !isFinite(v) {
		return 0
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
