// Package lighting infers the key light setup from regional luminance.
//
// The estimator compares mean luminance across frame halves and thirds to
// find where the key light sits, measures how steep the transitions are at
// shadow boundaries, and names the portrait pattern through an ordered rule
// table.
package lighting

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/framematch/internal/imaging"
)

// Estimate describes the inferred lighting.
type Estimate struct {
	Direction Direction `json:"direction"`

	// Asymmetry is (left - right) / max(left, right), in [-1, 1].
	Asymmetry float64 `json:"asymmetry"`

	// VerticalAngleDegrees is positive for light from above.
	VerticalAngleDegrees float64 `json:"verticalAngleDegrees"`
	VerticalPosition     string  `json:"verticalPosition"`

	Quality       Quality `json:"quality"`
	EdgeSteepness float64 `json:"edgeSteepness"`

	Pattern Pattern `json:"pattern"`

	KeyLightAngle string `json:"keyLightAngle"`
	Ratio         string `json:"ratio"`
	Sources       int    `json:"sources"`
	FillLight     bool   `json:"fillLight"`
	BackLight     bool   `json:"backLight"`
}

// Fallback is reported when estimation fails.
func Fallback() Estimate {
	return Estimate{
		Direction:        Frontal,
		VerticalPosition: verticalPositions[1],
		Quality:          Soft,
		Pattern:          Loop,
		KeyLightAngle:    keyLightAngle(Frontal),
		Ratio:            ratioLabels[0],
		Sources:          1,
	}
}

var (
	// Indexed by the direction scale bucket: negative asymmetry is a light
	// from the right.
	directions        = []Direction{Right, Frontal, Left}
	verticalPositions = []string{"below eye level", "eye level", "above eye level"}
	ratioLabels       = []string{"2:1", "3:1", "4:1 or higher"}
)

// Analyze estimates the lighting of the gray field.
//
// A uniform field is frontal, level, soft and Loop with a single source. The
// only error is imaging.ErrDegenerateInput, for fields too small to
// partition.
func Analyze(g *imaging.GrayField, th Thresholds) (Estimate, error) {
	if g == nil || g.Width < 3 || g.Height < 3 || len(g.Pix) != g.Width*g.Height {
		return Estimate{}, fmt.Errorf("%w: gray field too small to partition", imaging.ErrDegenerateInput)
	}

	m, err := measureRegions(g)
	if err != nil {
		return Estimate{}, err
	}

	sorted := g.Sorted()
	p5 := stat.Quantile(0.05, stat.Empirical, sorted, nil)
	p95 := stat.Quantile(0.95, stat.Empirical, sorted, nil)
	_, std := stat.MeanStdDev(g.Pix, nil)

	d := relativeDifference(m.left, m.right)
	vertical := roundTenth(relativeDifference(m.top, m.bottom) * th.VerticalScaleDegrees)
	sides := (m.bandLeft + m.bandRight) / 2

	s := signals{
		direction:   directions[th.directionScale().Bucket(d)],
		asymmetry:   math.Abs(d),
		vertical:    vertical,
		centerBoost: (m.bandCenter - sides) / math.Max(sides, imaging.Epsilon),
	}
	steepness := edgeSteepness(g, p5, p95)
	s.quality = Soft
	if th.steepnessScale().Bucket(steepness) == 1 {
		s.quality = Hard
	}

	return Estimate{
		Direction:            s.direction,
		Asymmetry:            d,
		VerticalAngleDegrees: vertical,
		VerticalPosition:     verticalPositions[th.eyeLevelScale().Bucket(vertical)],
		Quality:              s.quality,
		EdgeSteepness:        steepness,
		Pattern:              classifyPattern(s, th),
		KeyLightAngle:        keyLightAngle(s.direction),
		Ratio:                ratioLabels[th.ratioScale().Bucket(std)],
		Sources:              countSources(g, sorted, th),
		FillLight:            th.fillLightScale().Bucket(std) == 0,
		BackLight:            th.backLightScale().Bucket(m.top/math.Max(m.global, imaging.Epsilon)) == 1,
	}, nil
}

// regions holds the mean luminance of the frame partitions.
type regions struct {
	left, right, top, bottom float64

	// Thirds of the middle horizontal band.
	bandLeft, bandCenter, bandRight float64

	global float64
}

func measureRegions(g *imaging.GrayField) (regions, error) {
	w, h := g.Width, g.Height
	var m regions
	parts := []struct {
		dst *float64
		r   imaging.Region
	}{
		{&m.left, imaging.Region{X1: 0, Y1: 0, X2: w / 2, Y2: h}},
		{&m.right, imaging.Region{X1: w / 2, Y1: 0, X2: w, Y2: h}},
		{&m.top, imaging.Region{X1: 0, Y1: 0, X2: w, Y2: h / 2}},
		{&m.bottom, imaging.Region{X1: 0, Y1: h / 2, X2: w, Y2: h}},
		{&m.bandLeft, imaging.Region{X1: 0, Y1: h / 3, X2: w / 3, Y2: 2 * h / 3}},
		{&m.bandCenter, imaging.Region{X1: w / 3, Y1: h / 3, X2: 2 * w / 3, Y2: 2 * h / 3}},
		{&m.bandRight, imaging.Region{X1: 2 * w / 3, Y1: h / 3, X2: w, Y2: 2 * h / 3}},
		{&m.global, g.Bounds()},
	}
	for _, p := range parts {
		v, err := g.RegionMean(p.r)
		if err != nil {
			return regions{}, fmt.Errorf("%w: %v", imaging.ErrDegenerateInput, err)
		}
		*p.dst = v
	}
	return m, nil
}

// relativeDifference returns (a - b) / max(a, b), or 0 for two black regions.
func relativeDifference(a, b float64) float64 {
	return (a - b) / math.Max(math.Max(a, b), imaging.Epsilon)
}

// edgeSteepness measures how abruptly light gives way to shadow.
//
// Shadow boundary pixels are those with a 4-neighbour on the other side of
// the midpoint between the 5th and 95th luminance percentiles. The result is
// their mean gradient magnitude relative to that percentile spread, so a
// clean step edge reads about 1 and a smooth ramp close to 0. A field without
// boundaries reads 0.
func edgeSteepness(g *imaging.GrayField, p5, p95 float64) float64 {
	spread := p95 - p5
	if spread < imaging.Epsilon {
		return 0
	}
	mid := (p5 + p95) / 2
	mag := g.SobelMagnitude()

	w, h := g.Width, g.Height
	var sum float64
	var n int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			lit := g.Pix[i] > mid
			if (x > 0 && (g.Pix[i-1] > mid) != lit) ||
				(x < w-1 && (g.Pix[i+1] > mid) != lit) ||
				(y > 0 && (g.Pix[i-w] > mid) != lit) ||
				(y < h-1 && (g.Pix[i+w] > mid) != lit) {
				sum += mag[i]
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) / spread
}

// signals are the inputs of the pattern rules.
type signals struct {
	direction   Direction
	asymmetry   float64
	vertical    float64
	centerBoost float64
	quality     Quality
}

type patternRule struct {
	pattern Pattern
	matches func(s signals, th Thresholds) bool
}

// patternRules run most specific first; the first match wins. The last rule
// matches everything, so every input gets a pattern.
//
// Split and Rembrandt need a hard shadow edge; Butterfly and Loop accept
// either quality.
var patternRules = []patternRule{
	{Split, func(s signals, th Thresholds) bool {
		return s.direction != Frontal && s.quality == Hard &&
			th.asymmetryScale().Bucket(s.asymmetry) == 2
	}},
	{Rembrandt, func(s signals, th Thresholds) bool {
		return s.direction != Frontal && s.quality == Hard &&
			th.asymmetryScale().Bucket(s.asymmetry) >= 1 &&
			raisedScale(th.RembrandtMinVertical).Bucket(s.vertical) == 1
	}},
	{Butterfly, func(s signals, th Thresholds) bool {
		return s.direction == Frontal &&
			raisedScale(th.ButterflyMinVertical).Bucket(s.vertical) == 1 &&
			th.centerBoostScale().Bucket(s.centerBoost) == 1
	}},
	{Loop, func(signals, Thresholds) bool { return true }},
}

func classifyPattern(s signals, th Thresholds) Pattern {
	for _, r := range patternRules {
		if r.matches(s, th) {
			return r.pattern
		}
	}
	return Loop
}

func keyLightAngle(d Direction) string {
	if d == Frontal {
		return "0° (frontal)"
	}
	return "45°"
}

// roundTenth rounds to one decimal, never returning negative zero.
func roundTenth(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		return 0
	}
	return r
}
