// Package classify maps scalar metrics onto ordered buckets.
//
// A Scale splits the closed domain [Min, Max] at ascending Bounds into
// len(Bounds)+1 buckets. Bucket i covers [Bounds[i-1], Bounds[i]), with Min
// and Max closing the outermost buckets.
//
// # Tie-break
//
// A value that falls exactly on a boundary belongs to the adjacent bucket
// whose midpoint is numerically closer to it. When both midpoints are equally
// far away the lower bucket wins. Every calibrated threshold decision of the
// camera, lighting and grade estimators buckets through Scale, so this is
// the only tie-break rule in use.
//
// Naming tables are not thresholds: the lens class of a focal length, hue
// names and tone families are fixed lookups. The LUT tint ramps are
// continuous weights that reach zero at their threshold.
package classify

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidScale is returned by Validate for malformed scales.
var ErrInvalidScale = errors.New("invalid scale")

// Scale is an ordered partition of [Min, Max].
type Scale struct {
	Min    float64   `yaml:"min" json:"min"`
	Max    float64   `yaml:"max" json:"max"`
	Bounds []float64 `yaml:"bounds" json:"bounds"`
}

// NewScale builds a Scale from its domain and boundaries.
func NewScale(min, max float64, bounds ...float64) Scale {
	return Scale{Min: min, Max: max, Bounds: bounds}
}

// Buckets returns the number of buckets the scale defines.
func (s Scale) Buckets() int {
	return len(s.Bounds) + 1
}

// Validate checks that the domain is non-empty and the bounds are strictly
// ascending and inside the domain.
func (s Scale) Validate() error {
	if math.IsNaN(s.Min) || math.IsNaN(s.Max) || s.Min >= s.Max {
		return fmt.Errorf("%w: domain [%g, %g]", ErrInvalidScale, s.Min, s.Max)
	}
	prev := s.Min
	for i, b := range s.Bounds {
		if math.IsNaN(b) || b <= prev || b >= s.Max {
			return fmt.Errorf("%w: bound %d (%g) not inside (%g, %g)", ErrInvalidScale, i, b, prev, s.Max)
		}
		prev = b
	}
	return nil
}

// Bucket returns the index of the bucket containing v, in [0, len(Bounds)].
//
// Values outside the domain are clamped to it. NaN lands in bucket 0.
func (s Scale) Bucket(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(s.Min, math.Min(s.Max, v))

	for i, b := range s.Bounds {
		if v < b {
			return i
		}
		if v == b {
			lower := math.Abs(v - s.midpoint(i))
			upper := math.Abs(s.midpoint(i+1) - v)
			if upper < lower {
				return i + 1
			}
			return i
		}
	}
	return len(s.Bounds)
}

// midpoint returns the center of bucket i.
func (s Scale) midpoint(i int) float64 {
	lo, hi := s.Min, s.Max
	if i > 0 {
		lo = s.Bounds[i-1]
	}
	if i < len(s.Bounds) {
		hi = s.Bounds[i]
	}
	return (lo + hi) / 2
}
