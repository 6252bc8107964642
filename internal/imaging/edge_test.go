package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/ironsheep/framematch/internal/imaging/imagingtest"
)

// grayOf builds the gray field of an in-memory image.
func grayOf(t *testing.T, img image.Image) *GrayField {
	t.Helper()
	r, err := NewRaster(img, DefaultDecodeOptions())
	if err != nil {
		t.Fatalf("NewRaster failed: %v", err)
	}
	return NewGrayField(r)
}

// fieldOf builds a gray field directly from values.
func fieldOf(width, height int, v float64) *GrayField {
	g := &GrayField{Width: width, Height: height, Pix: make([]float64, width*height)}
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func TestSobelMagnitude_UniformImage(t *testing.T) {
	g := grayOf(t, imagingtest.Uniform(32, 32, color.RGBA{128, 128, 128, 255}))

	for i, m := range g.SobelMagnitude() {
		if m != 0 {
			t.Fatalf("pixel %d: got magnitude %v, want 0", i, m)
		}
	}
}

func TestKernels_InexactUniformValue(t *testing.T) {
	// Gray pixels can land a rounding error below their integer value.
	v := 127.99999999999999
	g := fieldOf(64, 64, v)

	for i, m := range g.SobelMagnitude() {
		if m != 0 {
			t.Fatalf("sobel[%d]: got %v, want exactly 0", i, m)
		}
	}
	for i, l := range g.Laplacian() {
		if l != 0 {
			t.Fatalf("laplacian[%d]: got %v, want exactly 0", i, l)
		}
	}
	for i, b := range g.gaussianBlur() {
		if b != v {
			t.Fatalf("blur[%d]: got %v, want %v", i, b, v)
		}
	}

	fv, err := Extract(g, DefaultFeatureOptions())
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if fv.GradientVarianceGlobal != 0 || fv.LaplacianVariance != 0 || fv.HighFrequencyEnergy != 0 || fv.VignetteScore != 0 {
		t.Errorf("uniform features not zero: %+v", fv)
	}
	for i, m := range fv.EdgeSharpnessProfile {
		if m != 0 {
			t.Errorf("profile[%d]: got %v, want 0", i, m)
		}
	}
}

func TestSobelMagnitude_StrongEdge(t *testing.T) {
	g := grayOf(t, imagingtest.SplitHalves(32, 32, color.Black, color.White))
	mag := g.SobelMagnitude()

	// Both columns next to the edge see a full step.
	for _, x := range []int{15, 16} {
		if got := mag[10*32+x]; math.Abs(got-255) > 0.5 {
			t.Errorf("edge column %d: got %.2f, want 255", x, got)
		}
	}
	for _, x := range []int{0, 5, 13, 18, 31} {
		if got := mag[10*32+x]; got != 0 {
			t.Errorf("flat column %d: got %.2f, want 0", x, got)
		}
	}
}

func TestSobelMagnitude_BordersClamped(t *testing.T) {
	g := grayOf(t, imagingtest.HorizontalGradient(20, 20, 0, 190))
	mag := g.SobelMagnitude()

	// Replicated borders halve the horizontal response but never produce a
	// vertical one.
	if mag[0] <= 0 || mag[0] >= mag[10*20+10] {
		t.Errorf("corner magnitude %.2f should be positive and below interior %.2f", mag[0], mag[10*20+10])
	}
}

func TestLaplacian(t *testing.T) {
	g := fieldOf(10, 8, 100)
	lap := g.Laplacian()
	if len(lap) != 8*6 {
		t.Fatalf("length: got %d, want %d", len(lap), 8*6)
	}
	for i, v := range lap {
		if v != 0 {
			t.Fatalf("uniform field: lap[%d] = %v", i, v)
		}
	}

	g.Pix[4*10+5] = 200
	lap = g.Laplacian()
	if got := lap[3*8+4]; got != 400 {
		t.Errorf("spot response: got %v, want 400", got)
	}
	if got := lap[3*8+3]; got != 100 {
		t.Errorf("neighbour response: got %v, want 100", got)
	}

	if fieldOf(2, 10, 0).Laplacian() != nil {
		t.Error("field without interior should have no Laplacian")
	}
}

func TestGaussianBlur(t *testing.T) {
	g := fieldOf(10, 10, 0.5)

	blurred := g.gaussianBlur()

	// Uniform field stays uniform, borders included.
	for i, v := range blurred {
		if math.Abs(v-0.5) > 1e-9 {
			t.Errorf("blurred[%d]: got %.3f, want 0.5", i, v)
		}
	}
}

func TestGaussianBlur_WithSpot(t *testing.T) {
	g := fieldOf(11, 11, 0)
	g.Pix[5*11+5] = 1.0 // bright spot in center

	blurred := g.gaussianBlur()

	// Center should be reduced (spread to neighbors)
	if got := blurred[5*11+5]; math.Abs(got-41.0/273) > 1e-12 {
		t.Errorf("center: got %v, want 41/273", got)
	}

	// Neighbors should receive some of the brightness
	for _, i := range []int{5*11 + 4, 5*11 + 6, 4*11 + 5, 6*11 + 5} {
		if blurred[i] == 0 {
			t.Errorf("neighbour %d received nothing", i)
		}
	}
	if blurred[0] != 0 {
		t.Error("far corner should be untouched")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, want int
	}{
		{5, 0, 10, 5},   // within range
		{-1, 0, 10, 0},  // below min
		{15, 0, 10, 10}, // above max
		{0, 0, 10, 0},   // at min
		{10, 0, 10, 10}, // at max
	}

	for _, tt := range tests {
		got := clamp(tt.val, tt.min, tt.max)
		if got != tt.want {
			t.Errorf("clamp(%d, %d, %d): got %d, want %d",
				tt.val, tt.min, tt.max, got, tt.want)
		}
	}
}
