package grade

import (
	"errors"
	"fmt"

	"github.com/ironsheep/framematch/internal/classify"
)

// Thresholds holds the calibration constants of the color analysis.
type Thresholds struct {
	// PaletteSize is the maximum number of palette swatches.
	PaletteSize int `yaml:"palette_size" json:"paletteSize"`

	// Red/blue balance below -CoolBalance is cool, above WarmBalance warm.
	CoolBalance float64 `yaml:"cool_balance" json:"coolBalance"`
	WarmBalance float64 `yaml:"warm_balance" json:"warmBalance"`

	// Mean HSV saturation bounds for normal and saturated.
	NormalSaturation float64 `yaml:"normal_saturation" json:"normalSaturation"`
	HighSaturation   float64 `yaml:"high_saturation" json:"highSaturation"`

	// Luminance standard deviation bounds for medium and high contrast.
	MediumContrast float64 `yaml:"medium_contrast" json:"mediumContrast"`
	HighContrast   float64 `yaml:"high_contrast" json:"highContrast"`

	// TintPercentile is the fraction of darkest and brightest pixels
	// sampled for the shadow and highlight tints.
	TintPercentile float64 `yaml:"tint_percentile" json:"tintPercentile"`

	// NeutralChroma is the normalized chroma below which a tint is neutral.
	NeutralChroma float64 `yaml:"neutral_chroma" json:"neutralChroma"`

	// StrongChroma is the chroma from which a tint is described as strong.
	StrongChroma float64 `yaml:"strong_chroma" json:"strongChroma"`

	// ToneCurveSamples is the number of control points, anchors included.
	ToneCurveSamples int `yaml:"tone_curve_samples" json:"toneCurveSamples"`

	// A 2nd percentile luminance above LiftedBlackPoint lifts the shadow
	// end of the curve; a 98th percentile below CrushedWhitePoint pulls the
	// highlight end down.
	LiftedBlackPoint  float64 `yaml:"lifted_black_point" json:"liftedBlackPoint"`
	CrushedWhitePoint float64 `yaml:"crushed_white_point" json:"crushedWhitePoint"`
}

// DefaultThresholds returns the calibrated defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PaletteSize:       5,
		CoolBalance:       0.1,
		WarmBalance:       0.13,
		NormalSaturation:  0.25,
		HighSaturation:    0.5,
		MediumContrast:    40,
		HighContrast:      65,
		TintPercentile:    0.1,
		NeutralChroma:     0.02,
		StrongChroma:      0.08,
		ToneCurveSamples:  9,
		LiftedBlackPoint:  20,
		CrushedWhitePoint: 235,
	}
}

func (t Thresholds) temperatureScale() classify.Scale {
	return classify.NewScale(-1, 1, -t.CoolBalance, t.WarmBalance)
}

func (t Thresholds) saturationScale() classify.Scale {
	return classify.NewScale(0, 1, t.NormalSaturation, t.HighSaturation)
}

func (t Thresholds) contrastScale() classify.Scale {
	return classify.NewScale(0, 128, t.MediumContrast, t.HighContrast)
}

// chromaScale buckets a tint strength into neutral, subtle and strong.
func (t Thresholds) chromaScale() classify.Scale {
	return classify.NewScale(0, 1, t.NeutralChroma, t.StrongChroma)
}

// Bucket 1 of the black point scale is a lifted black, bucket 0 of the white
// point scale a crushed white.
func (t Thresholds) blackPointScale() classify.Scale {
	return classify.NewScale(0, 255, t.LiftedBlackPoint)
}

func (t Thresholds) whitePointScale() classify.Scale {
	return classify.NewScale(0, 255, t.CrushedWhitePoint)
}

// Validate checks bucket bounds and the sampling parameters.
func (t Thresholds) Validate() error {
	scales := []struct {
		name  string
		scale classify.Scale
	}{
		{"temperature", t.temperatureScale()},
		{"saturation", t.saturationScale()},
		{"contrast", t.contrastScale()},
		{"chroma", t.chromaScale()},
		{"black point", t.blackPointScale()},
		{"white point", t.whitePointScale()},
	}
	var errs []error
	for _, s := range scales {
		if err := s.scale.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("grade %s thresholds: %w", s.name, err))
		}
	}
	if t.PaletteSize < 1 {
		errs = append(errs, fmt.Errorf("grade palette_size must be at least 1, got %d", t.PaletteSize))
	}
	if !(t.TintPercentile > 0 && t.TintPercentile < 0.5) {
		errs = append(errs, fmt.Errorf("grade tint_percentile must be in (0, 0.5), got %g", t.TintPercentile))
	}
	if t.ToneCurveSamples < 2 {
		errs = append(errs, fmt.Errorf("grade tone_curve_samples must be at least 2, got %d", t.ToneCurveSamples))
	}
	if !(t.LiftedBlackPoint < t.CrushedWhitePoint) {
		errs = append(errs, fmt.Errorf("grade lifted_black_point must be below crushed_white_point, got %g >= %g", t.LiftedBlackPoint, t.CrushedWhitePoint))
	}
	return errors.Join(errs...)
}
