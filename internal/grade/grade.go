// Package grade analyzes the color grade of an image: palette, white
// balance, saturation, contrast, shadow and highlight tints, and a tone
// curve.
package grade

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/framematch/internal/imaging"
)

// Estimate describes a color grade.
type Estimate struct {
	// Palette holds 1..PaletteSize swatches, most frequent first.
	Palette []imaging.ColorFrequency `json:"palette"`

	Temperature      Temperature `json:"temperature"`
	TemperatureLabel string      `json:"temperatureLabel"`
	ToneFamily       string      `json:"toneFamily"`

	// ColorBalance is (meanR - meanB) / max(meanR, meanB), in [-1, 1].
	ColorBalance float64 `json:"colorBalance"`

	Saturation     Saturation `json:"saturation"`
	MeanSaturation float64    `json:"meanSaturation"`

	Contrast        Contrast `json:"contrast"`
	LuminanceStdDev float64  `json:"luminanceStdDev"`

	ShadowTint    Tint `json:"shadowTint"`
	HighlightTint Tint `json:"highlightTint"`

	ToneCurve         ToneCurve `json:"toneCurve"`
	ShadowsLifted     bool      `json:"shadowsLifted"`
	HighlightsCrushed bool      `json:"highlightsCrushed"`
}

// Fallback is reported when analysis fails: a single mid-gray swatch, a
// neutral balance, normal saturation, medium contrast, no tints and the
// identity curve.
func Fallback() Estimate {
	gray := imaging.RGBColor{R: 128, G: 128, B: 128}
	return Estimate{
		Palette:          []imaging.ColorFrequency{{Hex: gray.Hex(), Percentage: 100, RGB: gray}},
		Temperature:      Neutral,
		TemperatureLabel: temperatureLabels[Neutral],
		ToneFamily:       "neutral",
		Saturation:       NormalSaturation,
		Contrast:         MediumContrast,
		ShadowTint:       NeutralTint(),
		HighlightTint:    NeutralTint(),
		ToneCurve:        IdentityCurve(),
	}
}

var (
	// Indexed by the temperature scale bucket, cool to warm.
	temperatures = []Temperature{Cool, Neutral, Warm}

	temperatureLabels = map[Temperature]string{
		Warm:    "Warm (3200K - 4500K)",
		Neutral: "Neutral (5000K - 5600K)",
		Cool:    "Cool (5600K - 7000K)",
	}
)

// Analyze measures the color grade of r. g must be the gray field of r.
//
// It fails with imaging.ErrDegenerateInput when r or g is missing or their
// sizes disagree.
func Analyze(r *imaging.Raster, g *imaging.GrayField, th Thresholds) (Estimate, error) {
	if r == nil || g == nil || r.Pixels == nil {
		return Estimate{}, fmt.Errorf("%w: missing raster or gray field", imaging.ErrDegenerateInput)
	}
	if g.Width != r.Width || g.Height != r.Height || len(g.Pix) != r.Width*r.Height || len(g.Pix) == 0 {
		return Estimate{}, fmt.Errorf("%w: gray field %dx%d does not match raster %dx%d",
			imaging.ErrDegenerateInput, g.Width, g.Height, r.Width, r.Height)
	}

	palette, err := imaging.DominantColors(r.Pixels, th.PaletteSize, nil)
	if err != nil {
		return Estimate{}, fmt.Errorf("palette: %w", err)
	}

	sorted := g.Sorted()
	shadowCut := stat.Quantile(th.TintPercentile, stat.Empirical, sorted, nil)
	highlightCut := stat.Quantile(1-th.TintPercentile, stat.Empirical, sorted, nil)

	var sumR, sumG, sumB, sumSat float64
	var shadows, highlights bandSum
	for y := 0; y < r.Height; y++ {
		for x := 0; x < r.Width; x++ {
			cr, cg, cb := r.RGB(x, y)
			sumR += float64(cr)
			sumG += float64(cg)
			sumB += float64(cb)

			_, s, _ := colorful.Color{R: float64(cr) / 255, G: float64(cg) / 255, B: float64(cb) / 255}.Hsv()
			sumSat += s

			lum := g.Pix[y*g.Width+x]
			if lum <= shadowCut {
				shadows.add(cr, cg, cb, lum)
			}
			if lum >= highlightCut {
				highlights.add(cr, cg, cb, lum)
			}
		}
	}
	n := float64(len(g.Pix))
	meanR, meanG, meanB := sumR/n, sumG/n, sumB/n
	balance := (meanR - meanB) / math.Max(math.Max(meanR, meanB), imaging.Epsilon)
	meanSat := sumSat / n
	_, std := stat.MeanStdDev(g.Pix, nil)

	curve, lifted, crushed := buildToneCurve(sorted, th)
	temp := temperatures[th.temperatureScale().Bucket(balance)]
	mean := imaging.RGBColor{
		R: uint8(math.Round(meanR)),
		G: uint8(math.Round(meanG)),
		B: uint8(math.Round(meanB)),
	}

	return Estimate{
		Palette:           palette.Colors,
		Temperature:       temp,
		TemperatureLabel:  temperatureLabels[temp],
		ToneFamily:        toneFamily(mean),
		ColorBalance:      balance,
		Saturation:        Saturation(th.saturationScale().Bucket(meanSat)),
		MeanSaturation:    meanSat,
		Contrast:          Contrast(th.contrastScale().Bucket(std)),
		LuminanceStdDev:   std,
		ShadowTint:        shadows.tint(th),
		HighlightTint:     highlights.tint(th),
		ToneCurve:         curve,
		ShadowsLifted:     lifted,
		HighlightsCrushed: crushed,
	}, nil
}
