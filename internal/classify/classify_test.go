package classify

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScale_Bucket(t *testing.T) {
	s := NewScale(0, 100, 10, 50)

	tests := []struct {
		name string
		v    float64
		want int
	}{
		{"below min", -5, 0},
		{"min", 0, 0},
		{"inside first", 9.99, 0},
		{"inside middle", 30, 1},
		{"inside last", 75, 2},
		{"max", 100, 2},
		{"above max", 1e9, 2},
		{"nan", math.NaN(), 0},
		// first bucket [0,10) midpoint 5, second [10,50) midpoint 30.
		{"boundary closer to narrow lower bucket", 10, 0},
		// second midpoint 30, third [50,100] midpoint 75.
		{"boundary closer to narrow lower bucket again", 50, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, s.Bucket(tt.v))
		})
	}
}

func TestScale_Bucket_TieBreakPrefersCloserMidpoint(t *testing.T) {
	// [0,40) midpoint 20, [40,50) midpoint 45: the upper bucket is closer.
	s := NewScale(0, 100, 40, 50)
	require.Equal(t, 1, s.Bucket(40))

	// Equal widths: midpoints 5 and 15 are equally far from 10.
	even := NewScale(0, 30, 10, 20)
	require.Equal(t, 0, even.Bucket(10))
	require.Equal(t, 1, even.Bucket(20))

	// Midpoints 0.25 and 0.675: 0.35 stays in the middle bucket.
	asym := NewScale(0, 1, 0.15, 0.35)
	require.Equal(t, 1, asym.Bucket(0.35))
	require.Equal(t, 0, asym.Bucket(0.15))
}

func TestScale_Validate(t *testing.T) {
	require.NoError(t, NewScale(0, 1, 0.25, 0.5).Validate())
	require.NoError(t, NewScale(0, 1).Validate())

	bad := []Scale{
		NewScale(1, 1),
		NewScale(2, 1),
		NewScale(0, 1, 0.5, 0.5),
		NewScale(0, 1, 0.6, 0.4),
		NewScale(0, 1, 0),
		NewScale(0, 1, 1),
		NewScale(0, 1, math.NaN()),
	}
	for _, s := range bad {
		require.ErrorIs(t, s.Validate(), ErrInvalidScale, "scale %+v", s)
	}
}

func TestScale_Buckets(t *testing.T) {
	require.Equal(t, 1, NewScale(0, 1).Buckets())
	require.Equal(t, 4, NewScale(0, 1, 0.1, 0.2, 0.3).Buckets())
}
