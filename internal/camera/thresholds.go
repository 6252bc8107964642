package camera

import (
	"errors"
	"fmt"

	"github.com/ironsheep/framematch/internal/classify"
)

// Thresholds holds the calibration constants of every camera heuristic.
//
// Pairs of bounds split a metric into three buckets; see package classify for
// how values landing exactly on a bound are assigned.
type Thresholds struct {
	// Focal length in 35mm-equivalent millimetres separating wide, normal,
	// tele and telephoto.
	WideMaxMM   float64 `yaml:"wide_max_mm" json:"wideMaxMm"`
	NormalMaxMM float64 `yaml:"normal_max_mm" json:"normalMaxMm"`
	TeleMaxMM   float64 `yaml:"tele_max_mm" json:"teleMaxMm"`

	// Weights of sharpness falloff and vignetting in the wide score.
	ProfileWeight  float64 `yaml:"profile_weight" json:"profileWeight"`
	VignetteWeight float64 `yaml:"vignette_weight" json:"vignetteWeight"`

	// Wide score bounds, ascending: below TeleScore is telephoto, then tele,
	// normal, and wide from WideScore up.
	TeleScore   float64 `yaml:"tele_score" json:"teleScore"`
	NormalScore float64 `yaml:"normal_score" json:"normalScore"`
	WideScore   float64 `yaml:"wide_score" json:"wideScore"`

	// F-numbers separating shallow, medium and deep depth of field.
	ShallowMaxFNumber float64 `yaml:"shallow_max_f_number" json:"shallowMaxFNumber"`
	MediumMaxFNumber  float64 `yaml:"medium_max_f_number" json:"mediumMaxFNumber"`

	// ShallowRatio is the center/outer gradient variance ratio above which
	// the background is taken as defocused.
	ShallowRatio float64 `yaml:"shallow_ratio" json:"shallowRatio"`

	// Global gradient variance bounds for medium and deep focus.
	MediumGradientVariance float64 `yaml:"medium_gradient_variance" json:"mediumGradientVariance"`
	DeepGradientVariance   float64 `yaml:"deep_gradient_variance" json:"deepGradientVariance"`

	// ISO values separating low, medium and high sensitivity.
	LowMaxISO    float64 `yaml:"low_max_iso" json:"lowMaxIso"`
	MediumMaxISO float64 `yaml:"medium_max_iso" json:"mediumMaxIso"`

	// Mean luminance bounds: darker than DarkBrightness suggests high ISO,
	// brighter than BrightBrightness low ISO.
	DarkBrightness   float64 `yaml:"dark_brightness" json:"darkBrightness"`
	BrightBrightness float64 `yaml:"bright_brightness" json:"brightBrightness"`

	// NoisyEnergy is the high-frequency energy that moves the ISO hint one
	// step up.
	NoisyEnergy float64 `yaml:"noisy_energy" json:"noisyEnergy"`

	// Exposure times in seconds separating fast, moderate and slow.
	FastMaxSeconds     float64 `yaml:"fast_max_seconds" json:"fastMaxSeconds"`
	ModerateMaxSeconds float64 `yaml:"moderate_max_seconds" json:"moderateMaxSeconds"`

	// LaplacianSharpVariance is the Laplacian variance treated as fully
	// sharp when computing the blur score.
	LaplacianSharpVariance float64 `yaml:"laplacian_sharp_variance" json:"laplacianSharpVariance"`

	// Motion blur: Laplacian variance below MotionBlurVariance while some
	// ring still has mean gradient of at least SharpProfileFloor.
	MotionBlurVariance float64 `yaml:"motion_blur_variance" json:"motionBlurVariance"`
	SharpProfileFloor  float64 `yaml:"sharp_profile_floor" json:"sharpProfileFloor"`

	// Blur score bounds for moderate and slow shutter.
	ModerateBlur float64 `yaml:"moderate_blur" json:"moderateBlur"`
	SlowBlur     float64 `yaml:"slow_blur" json:"slowBlur"`
}

// DefaultThresholds returns the calibrated defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		WideMaxMM:   35,
		NormalMaxMM: 70,
		TeleMaxMM:   135,

		ProfileWeight:  0.6,
		VignetteWeight: 0.4,
		TeleScore:      0.1,
		NormalScore:    0.25,
		WideScore:      0.45,

		ShallowMaxFNumber: 2.0,
		MediumMaxFNumber:  5.6,

		ShallowRatio:           4,
		MediumGradientVariance: 500,
		DeepGradientVariance:   2000,

		LowMaxISO:    200,
		MediumMaxISO: 800,

		DarkBrightness:   80,
		BrightBrightness: 150,
		NoisyEnergy:      150,

		FastMaxSeconds:     1.0 / 250,
		ModerateMaxSeconds: 1.0 / 30,

		LaplacianSharpVariance: 500,
		MotionBlurVariance:     50,
		SharpProfileFloor:      20,
		ModerateBlur:           0.4,
		SlowBlur:               0.7,
	}
}

// Domains of the bucketed metrics.
const (
	maxFocalMM             = 2000
	maxFNumber             = 128
	maxGradientVariance    = 1 << 17
	maxVarianceRatio       = 1 << 10
	maxISO                 = 1 << 22
	maxHighFrequencyEnergy = 1 << 16
	maxExposureSeconds     = 3600
	maxLaplacianVariance   = 1 << 20
	maxProfileGradient     = 512
)

func (t Thresholds) focalScale() classify.Scale {
	return classify.NewScale(0, maxFocalMM, t.WideMaxMM, t.NormalMaxMM, t.TeleMaxMM)
}

func (t Thresholds) wideScoreScale() classify.Scale {
	return classify.NewScale(0, 1, t.TeleScore, t.NormalScore, t.WideScore)
}

func (t Thresholds) fNumberScale() classify.Scale {
	return classify.NewScale(0, maxFNumber, t.ShallowMaxFNumber, t.MediumMaxFNumber)
}

func (t Thresholds) gradientScale() classify.Scale {
	return classify.NewScale(0, maxGradientVariance, t.MediumGradientVariance, t.DeepGradientVariance)
}

// shallowScale splits the center/outer gradient variance ratio into a
// focused background (0) and a defocused one (1).
func (t Thresholds) shallowScale() classify.Scale {
	return classify.NewScale(0, maxVarianceRatio, t.ShallowRatio)
}

func (t Thresholds) isoScale() classify.Scale {
	return classify.NewScale(0, maxISO, t.LowMaxISO, t.MediumMaxISO)
}

func (t Thresholds) brightnessScale() classify.Scale {
	return classify.NewScale(0, 255, t.DarkBrightness, t.BrightBrightness)
}

func (t Thresholds) noiseScale() classify.Scale {
	return classify.NewScale(0, maxHighFrequencyEnergy, t.NoisyEnergy)
}

func (t Thresholds) exposureScale() classify.Scale {
	return classify.NewScale(0, maxExposureSeconds, t.FastMaxSeconds, t.ModerateMaxSeconds)
}

func (t Thresholds) blurScale() classify.Scale {
	return classify.NewScale(0, 1, t.ModerateBlur, t.SlowBlur)
}

// Motion blur reads bucket 0 of the Laplacian scale and bucket 1 of the
// profile scale.
func (t Thresholds) laplacianScale() classify.Scale {
	return classify.NewScale(0, maxLaplacianVariance, t.MotionBlurVariance)
}

func (t Thresholds) profileScale() classify.Scale {
	return classify.NewScale(0, maxProfileGradient, t.SharpProfileFloor)
}

// Validate checks that every bucket boundary is ascending and inside its
// domain, and that the blur normalizer and wide score weights are usable.
func (t Thresholds) Validate() error {
	scales := []struct {
		name  string
		scale classify.Scale
	}{
		{"focal length", t.focalScale()},
		{"wide score", t.wideScoreScale()},
		{"f-number", t.fNumberScale()},
		{"gradient variance", t.gradientScale()},
		{"shallow ratio", t.shallowScale()},
		{"iso", t.isoScale()},
		{"brightness", t.brightnessScale()},
		{"noise", t.noiseScale()},
		{"exposure", t.exposureScale()},
		{"blur", t.blurScale()},
		{"motion laplacian", t.laplacianScale()},
		{"motion profile", t.profileScale()},
	}
	var errs []error
	for _, s := range scales {
		if err := s.scale.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("camera %s thresholds: %w", s.name, err))
		}
	}
	if !(t.LaplacianSharpVariance > 0) {
		errs = append(errs, fmt.Errorf("camera laplacian_sharp_variance must be positive, got %g", t.LaplacianSharpVariance))
	}
	if t.ProfileWeight < 0 || t.VignetteWeight < 0 || t.ProfileWeight+t.VignetteWeight <= 0 {
		errs = append(errs, fmt.Errorf("camera wide score weights must be non-negative and not both zero"))
	}
	return errors.Join(errs...)
}
