package imaging

import "math"

// sobelNorm scales Sobel responses so that a full 0->255 step edge reads
// about 255, the same unit as a plain pixel difference.
const sobelNorm = 4.0

// SobelMagnitude returns the gradient magnitude of every pixel, row-major.
//
// The Sobel operator runs on the unblurred field, since blur would hide the
// sharpness differences the estimators measure. Border pixels use clamped
// (replicated) edge values.
//
// Both axes are summed as differences of opposite taps:
//
//	gx = (p02-p00) + 2(p12-p10) + (p22-p20)
//	gy = (p20-p00) + 2(p21-p01) + (p22-p02)
//
// so equal neighbours cancel exactly and a uniform field reads 0.
func (g *GrayField) SobelMagnitude() []float64 {
	mag := make([]float64, g.Width*g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			p00, p01, p02 := g.At(x-1, y-1), g.At(x, y-1), g.At(x+1, y-1)
			p10, p12 := g.At(x-1, y), g.At(x+1, y)
			p20, p21, p22 := g.At(x-1, y+1), g.At(x, y+1), g.At(x+1, y+1)

			gx := (p02 - p00) + 2*(p12-p10) + (p22 - p20)
			gy := (p20 - p00) + 2*(p21-p01) + (p22 - p02)
			mag[y*g.Width+x] = math.Sqrt(gx*gx+gy*gy) / sobelNorm
		}
	}
	return mag
}

// Laplacian returns |4-neighbour Laplacian| for interior pixels, row-major
// over the (Width-2) x (Height-2) interior.
func (g *GrayField) Laplacian() []float64 {
	if g.Width < 3 || g.Height < 3 {
		return nil
	}
	out := make([]float64, 0, (g.Width-2)*(g.Height-2))
	for y := 1; y < g.Height-1; y++ {
		for x := 1; x < g.Width-1; x++ {
			c := g.Pix[y*g.Width+x]
			l := (g.Pix[(y-1)*g.Width+x] - c) + (g.Pix[(y+1)*g.Width+x] - c) +
				(g.Pix[y*g.Width+x-1] - c) + (g.Pix[y*g.Width+x+1] - c)
			out = append(out, math.Abs(l))
		}
	}
	return out
}

// gaussianBlur applies a 5x5 Gaussian blur (sigma about 1.4):
//
//	1  4  7  4  1
//	4 16 26 16  4
//	7 26 41 26  7
//	4 16 26 16  4
//	1  4  7  4  1
//
// Total kernel sum = 273, used for normalization.
// Border pixels use clamped (replicated) edge values. Taps are weighted as
// differences from the center pixel, so a uniform neighbourhood returns the
// center value unchanged.
func (g *GrayField) gaussianBlur() []float64 {
	kernel := [5][5]float64{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}
	kernelSum := 273.0

	result := make([]float64, g.Width*g.Height)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.Pix[y*g.Width+x]
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					sum += (g.At(x+kx, y+ky) - c) * kernel[ky+2][kx+2]
				}
			}
			result[y*g.Width+x] = c + sum/kernelSum
		}
	}
	return result
}

// clamp constrains an integer value to the range [min, max].
// Used for boundary handling in convolution operations.
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
