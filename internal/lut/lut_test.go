package lut

import (
	"bufio"
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ironsheep/framematch/internal/grade"
)

func neutralGrade() grade.Estimate {
	return grade.Estimate{
		Temperature:   grade.Neutral,
		ShadowTint:    grade.NeutralTint(),
		HighlightTint: grade.NeutralTint(),
		ToneCurve:     grade.IdentityCurve(),
	}
}

func gradedEstimate() grade.Estimate {
	est := neutralGrade()
	est.Temperature = grade.Warm
	est.ShadowTint = grade.Tint{Hue: 192, Strength: 0.11, Label: "Strong teal tint", Offset: grade.Offset{R: -0.11, G: 0.04, B: 0.08}}
	est.HighlightTint = grade.Tint{Hue: 34, Strength: 0.17, Label: "Strong orange tint", Offset: grade.Offset{R: 0.1, G: -0.02, B: -0.17}}
	est.ToneCurve = grade.ToneCurve{{X: 0, Y: 0}, {X: 25, Y: 31.4}, {X: 50, Y: 52}, {X: 75, Y: 70.3}, {X: 100, Y: 100}}
	return est
}

func TestSynthesize_IdentityGrade(t *testing.T) {
	opts := DefaultOptions()
	cube, err := Synthesize(neutralGrade(), opts)
	require.NoError(t, err)
	require.Len(t, cube.Data, opts.Size*opts.Size*opts.Size)

	step := 1 / float64(opts.Size-1)
	for b := 0; b < opts.Size; b++ {
		for g := 0; g < opts.Size; g++ {
			for r := 0; r < opts.Size; r++ {
				got := cube.At(r, g, b)
				require.InDelta(t, float64(r)*step, got[0], 1e-9)
				require.InDelta(t, float64(g)*step, got[1], 1e-9)
				require.InDelta(t, float64(b)*step, got[2], 1e-9)
			}
		}
	}
}

func TestSynthesize_Golden(t *testing.T) {
	opts := DefaultOptions()
	opts.Size = 2
	opts.Title = "identity"
	cube, err := Synthesize(neutralGrade(), opts)
	require.NoError(t, err)

	want := `TITLE "identity"
# temperature neutral, shadows neutral, highlights neutral, 2 curve points
LUT_3D_SIZE 2

0.000000 0.000000 0.000000
1.000000 0.000000 0.000000
0.000000 1.000000 0.000000
1.000000 1.000000 0.000000
0.000000 0.000000 1.000000
1.000000 0.000000 1.000000
0.000000 1.000000 1.000000
1.000000 1.000000 1.000000
`
	require.Equal(t, want, string(cube.Bytes()))
}

func TestSynthesize_Deterministic(t *testing.T) {
	est := gradedEstimate()
	opts := DefaultOptions()
	opts.Size = 33

	first, err := Synthesize(est, opts)
	require.NoError(t, err)
	second, err := Synthesize(est, opts)
	require.NoError(t, err)
	require.Equal(t, first.Bytes(), second.Bytes())

	var streamed bytes.Buffer
	n, err := first.WriteTo(&streamed)
	require.NoError(t, err)
	require.Equal(t, int64(streamed.Len()), n)
	require.Equal(t, first.Bytes(), streamed.Bytes())
}

func TestSynthesize_Structure(t *testing.T) {
	for _, size := range []int{2, 5, 17} {
		opts := DefaultOptions()
		opts.Size = size
		cube, err := Synthesize(gradedEstimate(), opts)
		require.NoError(t, err)

		sc := bufio.NewScanner(bytes.NewReader(cube.Bytes()))
		var lines []string
		for sc.Scan() {
			lines = append(lines, sc.Text())
		}
		require.NoError(t, sc.Err())

		require.True(t, strings.HasPrefix(lines[0], `TITLE "`))
		require.True(t, strings.HasPrefix(lines[1], "# "))
		require.Equal(t, "LUT_3D_SIZE "+strconv.Itoa(size), lines[2])
		require.Equal(t, "", lines[3])

		data := lines[4:]
		require.Len(t, data, size*size*size)
		for _, line := range data {
			fields := strings.Fields(line)
			require.Len(t, fields, 3, line)
			for _, f := range fields {
				require.False(t, strings.HasPrefix(f, "-"), line)
				require.Len(t, f[strings.IndexByte(f, '.')+1:], 6, line)
				v, err := strconv.ParseFloat(f, 64)
				require.NoError(t, err)
				require.GreaterOrEqual(t, v, 0.0)
				require.LessOrEqual(t, v, 1.0)
			}
		}
	}
}

func TestSynthesize_Temperature(t *testing.T) {
	opts := DefaultOptions()
	mid := opts.Size / 2

	warm := neutralGrade()
	warm.Temperature = grade.Warm
	cube, err := Synthesize(warm, opts)
	require.NoError(t, err)
	c := cube.At(mid, mid, mid)
	require.Greater(t, c[0], c[2])

	cool := neutralGrade()
	cool.Temperature = grade.Cool
	cube, err = Synthesize(cool, opts)
	require.NoError(t, err)
	c = cube.At(mid, mid, mid)
	require.Less(t, c[0], c[2])
	require.InDelta(t, 0.5, c[1], 1e-9)
}

func TestSynthesize_Tints(t *testing.T) {
	est := neutralGrade()
	est.ShadowTint = grade.Tint{Label: "Strong blue tint", Offset: grade.Offset{B: 0.2}}
	est.HighlightTint = grade.Tint{Label: "Strong red tint", Offset: grade.Offset{R: 0.2}}
	opts := DefaultOptions()
	opts.Size = 11
	cube, err := Synthesize(est, opts)
	require.NoError(t, err)

	// Dark gray picks up blue, bright gray picks up red, mid gray is untouched.
	dark := cube.At(1, 1, 1)
	require.Greater(t, dark[2], dark[0])
	require.InDelta(t, dark[0], dark[1], 1e-9)

	bright := cube.At(9, 9, 9)
	require.Greater(t, bright[0], bright[2])

	mid := cube.At(5, 5, 5)
	require.InDelta(t, 0.5, mid[0], 1e-9)
	require.InDelta(t, 0.5, mid[2], 1e-9)

	// Black gets the full shadow offset.
	black := cube.At(0, 0, 0)
	require.InDelta(t, 0.2*opts.TintStrength, black[2], 1e-9)
}

func TestSynthesize_ToneCurveDarkens(t *testing.T) {
	est := neutralGrade()
	est.ToneCurve = grade.ToneCurve{{X: 0, Y: 0}, {X: 50, Y: 25}, {X: 100, Y: 100}}
	opts := DefaultOptions()
	opts.Size = 3
	cube, err := Synthesize(est, opts)
	require.NoError(t, err)

	got := cube.At(1, 1, 1)
	for _, v := range got {
		require.InDelta(t, 0.25, v, 1e-9)
	}
}

func TestSynthesize_InvalidSize(t *testing.T) {
	for _, size := range []int{-1, 0, 1, 257} {
		opts := DefaultOptions()
		opts.Size = size
		_, err := Synthesize(neutralGrade(), opts)
		require.ErrorIs(t, err, ErrInvalidSize, "size %d", size)
		require.ErrorIs(t, opts.Validate(), ErrInvalidSize)
	}
}

func TestOptions_Validate(t *testing.T) {
	require.NoError(t, DefaultOptions().Validate())

	opts := DefaultOptions()
	opts.ShadowThreshold = 0
	require.Error(t, opts.Validate())

	opts = DefaultOptions()
	opts.TemperatureShift = -0.1
	require.Error(t, opts.Validate())
}

func TestCleanTitle(t *testing.T) {
	tests := map[string]string{
		"":                       DefaultTitle,
		"   ":                    DefaultTitle,
		"Teal & Orange":          "Teal & Orange",
		"line\nbreak":            "line break",
		`say "cheese"`:           "say 'cheese'",
		"  padded   with space ": "padded with space",
	}
	for in, want := range tests {
		require.Equal(t, want, cleanTitle(in))
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteTo_PropagatesErrors(t *testing.T) {
	cube, err := Synthesize(neutralGrade(), DefaultOptions())
	require.NoError(t, err)
	_, err = cube.WriteTo(failingWriter{})
	require.EqualError(t, err, "disk full")
}
