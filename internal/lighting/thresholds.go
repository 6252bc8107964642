package lighting

import (
	"errors"
	"fmt"

	"github.com/ironsheep/framematch/internal/classify"
)

// Thresholds holds the calibration constants of the lighting heuristics.
type Thresholds struct {
	// DeadBand is the largest left/right asymmetry still read as frontal.
	DeadBand float64 `yaml:"dead_band" json:"deadBand"`

	// VerticalScaleDegrees maps a full top/bottom asymmetry to an angle.
	VerticalScaleDegrees float64 `yaml:"vertical_scale_degrees" json:"verticalScaleDegrees"`

	// EyeLevelDegrees is the half-width of the band of vertical angles
	// described as eye level.
	EyeLevelDegrees float64 `yaml:"eye_level_degrees" json:"eyeLevelDegrees"`

	// HardSteepness is the shadow edge steepness above which light is hard.
	HardSteepness float64 `yaml:"hard_steepness" json:"hardSteepness"`

	SplitAsymmetry       float64 `yaml:"split_asymmetry" json:"splitAsymmetry"`
	RembrandtAsymmetry   float64 `yaml:"rembrandt_asymmetry" json:"rembrandtAsymmetry"`
	RembrandtMinVertical float64 `yaml:"rembrandt_min_vertical" json:"rembrandtMinVertical"`
	ButterflyMinVertical float64 `yaml:"butterfly_min_vertical" json:"butterflyMinVertical"`
	ButterflyCenterBoost float64 `yaml:"butterfly_center_boost" json:"butterflyCenterBoost"`

	// Luminance standard deviations separating 2:1, 3:1 and 4:1 ratios.
	MediumRatioStdDev float64 `yaml:"medium_ratio_std_dev" json:"mediumRatioStdDev"`
	HighRatioStdDev   float64 `yaml:"high_ratio_std_dev" json:"highRatioStdDev"`

	// FillLightMaxStdDev is the luminance spread below which a fill light
	// is assumed.
	FillLightMaxStdDev float64 `yaml:"fill_light_max_std_dev" json:"fillLightMaxStdDev"`

	// BackLightRatio is how much brighter than average the top half must be
	// to suggest a back or rim light.
	BackLightRatio float64 `yaml:"back_light_ratio" json:"backLightRatio"`

	// Light sources are connected regions brighter than the SourceQuantile
	// luminance covering at least MinSourceFraction of the frame.
	SourceQuantile    float64 `yaml:"source_quantile" json:"sourceQuantile"`
	MinSourceFraction float64 `yaml:"min_source_fraction" json:"minSourceFraction"`
	MaxSources        int     `yaml:"max_sources" json:"maxSources"`
}

// DefaultThresholds returns the calibrated defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		DeadBand:             0.1,
		VerticalScaleDegrees: 60,
		EyeLevelDegrees:      10,
		HardSteepness:        0.25,

		SplitAsymmetry:       0.35,
		RembrandtAsymmetry:   0.15,
		RembrandtMinVertical: 10,
		ButterflyMinVertical: 15,
		ButterflyCenterBoost: 0.1,

		MediumRatioStdDev:  45,
		HighRatioStdDev:    70,
		FillLightMaxStdDev: 60,
		BackLightRatio:     1.1,

		SourceQuantile:    0.95,
		MinSourceFraction: 0.002,
		MaxSources:        4,
	}
}

// Domain ceilings of the open-ended signals. A clean step edge reads a
// steepness of 1; the top half of a frame is at most about twice as bright
// as the whole.
const (
	maxSteepness      = 8
	maxCenterBoost    = 4
	maxBackLightRatio = 2
)

func (t Thresholds) directionScale() classify.Scale {
	return classify.NewScale(-1, 1, -t.DeadBand, t.DeadBand)
}

func (t Thresholds) steepnessScale() classify.Scale {
	return classify.NewScale(0, maxSteepness, t.HardSteepness)
}

func (t Thresholds) ratioScale() classify.Scale {
	return classify.NewScale(0, 128, t.MediumRatioStdDev, t.HighRatioStdDev)
}

// eyeLevelScale buckets the vertical angle into below, at and above eye level.
func (t Thresholds) eyeLevelScale() classify.Scale {
	return classify.NewScale(-90, 90, -t.EyeLevelDegrees, t.EyeLevelDegrees)
}

// asymmetryScale buckets |asymmetry| into none, Rembrandt and Split strength.
func (t Thresholds) asymmetryScale() classify.Scale {
	return classify.NewScale(0, 1, t.RembrandtAsymmetry, t.SplitAsymmetry)
}

// raisedScale reports whether a vertical angle reaches the given degrees above
// the subject.
func raisedScale(degrees float64) classify.Scale {
	return classify.NewScale(-90, 90, degrees)
}

func (t Thresholds) centerBoostScale() classify.Scale {
	return classify.NewScale(-1, maxCenterBoost, t.ButterflyCenterBoost)
}

func (t Thresholds) fillLightScale() classify.Scale {
	return classify.NewScale(0, 128, t.FillLightMaxStdDev)
}

func (t Thresholds) backLightScale() classify.Scale {
	return classify.NewScale(0, maxBackLightRatio, t.BackLightRatio)
}

// Validate checks the bucket bounds and the ordering of the pattern rules.
func (t Thresholds) Validate() error {
	scales := []struct {
		name  string
		scale classify.Scale
	}{
		{"direction", t.directionScale()},
		{"steepness", t.steepnessScale()},
		{"ratio", t.ratioScale()},
		{"eye level", t.eyeLevelScale()},
		{"asymmetry", t.asymmetryScale()},
		{"rembrandt vertical", raisedScale(t.RembrandtMinVertical)},
		{"butterfly vertical", raisedScale(t.ButterflyMinVertical)},
		{"center boost", t.centerBoostScale()},
		{"fill light", t.fillLightScale()},
		{"back light", t.backLightScale()},
	}
	var errs []error
	for _, s := range scales {
		if err := s.scale.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("lighting %s thresholds: %w", s.name, err))
		}
	}
	if !(t.RembrandtAsymmetry > t.DeadBand) {
		errs = append(errs, fmt.Errorf("lighting rembrandt_asymmetry must exceed dead_band, got %g <= %g", t.RembrandtAsymmetry, t.DeadBand))
	}
	if !(t.VerticalScaleDegrees > 0 && t.VerticalScaleDegrees <= 90) {
		errs = append(errs, fmt.Errorf("lighting vertical_scale_degrees must be in (0, 90], got %g", t.VerticalScaleDegrees))
	}
	if !(t.SourceQuantile > 0 && t.SourceQuantile < 1) {
		errs = append(errs, fmt.Errorf("lighting source_quantile must be in (0, 1), got %g", t.SourceQuantile))
	}
	if t.MinSourceFraction < 0 || t.MinSourceFraction >= 1 {
		errs = append(errs, fmt.Errorf("lighting min_source_fraction must be in [0, 1), got %g", t.MinSourceFraction))
	}
	if t.MaxSources < 1 {
		errs = append(errs, fmt.Errorf("lighting max_sources must be at least 1, got %d", t.MaxSources))
	}
	return errors.Join(errs...)
}
