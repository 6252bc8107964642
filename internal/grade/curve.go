package grade

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// CurvePoint is a tone curve control point; both axes run 0..100.
type CurvePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ToneCurve is a piecewise-linear mapping from input to output luminance,
// ordered by X.
type ToneCurve []CurvePoint

// IdentityCurve returns the curve that leaves luminance unchanged.
func IdentityCurve() ToneCurve {
	return ToneCurve{{0, 0}, {100, 100}}
}

// Validate checks the curve invariants: at least the two anchors (0,0) and
// (100,100), X strictly increasing, Y non-decreasing and inside [0, 100].
func (c ToneCurve) Validate() error {
	if len(c) < 2 {
		return fmt.Errorf("tone curve has %d points, need at least 2", len(c))
	}
	if c[0] != (CurvePoint{0, 0}) || c[len(c)-1] != (CurvePoint{100, 100}) {
		return fmt.Errorf("tone curve must run from (0,0) to (100,100)")
	}
	for i := 1; i < len(c); i++ {
		if c[i].X <= c[i-1].X {
			return fmt.Errorf("tone curve x not increasing at point %d", i)
		}
		if c[i].Y < c[i-1].Y {
			return fmt.Errorf("tone curve y decreasing at point %d", i)
		}
		if c[i].Y < 0 || c[i].Y > 100 {
			return fmt.Errorf("tone curve y out of range at point %d", i)
		}
	}
	return nil
}

// Eval interpolates the curve linearly at x.
//
// Inputs outside the curve's X range take the nearest endpoint's Y. A curve
// with fewer than two points is degenerate and returns x unchanged; so does a
// zero-width segment, which returns its upper Y. Products go through explicit
// float64 conversions so that no fused multiply-add changes the result
// between architectures.
func (c ToneCurve) Eval(x float64) float64 {
	if len(c) < 2 {
		return x
	}
	if x <= c[0].X {
		return c[0].Y
	}
	last := c[len(c)-1]
	if x >= last.X {
		return last.Y
	}
	for i := 1; i < len(c); i++ {
		hi := c[i]
		if x > hi.X {
			continue
		}
		lo := c[i-1]
		span := hi.X - lo.X
		if span <= 0 {
			return hi.Y
		}
		t := (x - lo.X) / span
		return lo.Y + float64((hi.Y-lo.Y)*t)
	}
	return last.Y
}

// buildToneCurve summarises the luminance distribution as a tone curve.
//
// The n control points sit at evenly spaced x. Interior y values are the
// luminance quantile at x/100 rescaled to 0..100, so a bright image yields a
// raised curve. A lifted black point (2nd percentile above
// LiftedBlackPoint) raises the points below x=25 further, tapering to zero at
// 25; a crushed white point (98th percentile below CrushedWhitePoint) lowers
// the points above x=75, growing toward 100. The result is clamped, made
// non-decreasing, anchored at (0,0) and (100,100) and rounded to 0.1.
//
// sorted must be the ascending luminance values.
func buildToneCurve(sorted []float64, th Thresholds) (curve ToneCurve, lifted, crushed bool) {
	n := th.ToneCurveSamples
	curve = make(ToneCurve, n)

	black := stat.Quantile(0.02, stat.Empirical, sorted, nil)
	white := stat.Quantile(0.98, stat.Empirical, sorted, nil)
	lifted = th.blackPointScale().Bucket(black) == 1
	crushed = th.whitePointScale().Bucket(white) == 0
	lift := black / 255 * 100 * 0.5
	crush := (255 - white) / 255 * 100 * 0.5

	for i := range curve {
		x := 100 * float64(i) / float64(n-1)
		y := stat.Quantile(x/100, stat.Empirical, sorted, nil) / 255 * 100
		if lifted && x < 25 {
			y += lift * (1 - x/25)
		}
		if crushed && x > 75 {
			y -= crush * ((x - 75) / 25)
		}
		curve[i] = CurvePoint{X: x, Y: math.Max(0, math.Min(100, y))}
	}

	curve[0] = CurvePoint{0, 0}
	curve[n-1] = CurvePoint{100, 100}
	for i := range curve {
		if i > 0 && curve[i].Y < curve[i-1].Y {
			curve[i].Y = curve[i-1].Y
		}
		curve[i].X = roundTenth(curve[i].X)
		curve[i].Y = roundTenth(curve[i].Y)
	}
	return curve, lifted, crushed
}

func roundTenth(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		return 0
	}
	return r
}
