package lighting

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ironsheep/framematch/internal/imaging"
)

// countSources counts the distinct bright regions of the frame, each taken
// as one light source or its reflection.
//
// Pixels brighter than the SourceQuantile luminance are grouped into
// 8-connected regions; regions smaller than MinSourceFraction of the frame
// are ignored as specular noise. The count is clamped to [1, MaxSources].
func countSources(g *imaging.GrayField, sorted []float64, th Thresholds) int {
	cut := stat.Quantile(th.SourceQuantile, stat.Empirical, sorted, nil)
	minArea := max(1, int(math.Ceil(th.MinSourceFraction*float64(len(g.Pix)))))

	bright := make([]bool, len(g.Pix))
	for i, v := range g.Pix {
		bright[i] = v > cut
	}

	visited := make([]bool, len(g.Pix))
	n := 0
	for i := range bright {
		if bright[i] && !visited[i] {
			if floodFill(bright, visited, i, g.Width, g.Height) >= minArea {
				n++
			}
		}
	}
	return max(1, min(n, th.MaxSources))
}

// floodFill marks the 8-connected bright region containing start as visited
// and returns its area.
//
// Uses a stack-based approach (not recursive) to avoid stack overflow on
// large regions.
func floodFill(bright, visited []bool, start, width, height int) int {
	stack := []int{start}
	visited[start] = true
	area := 0

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		area++

		x, y := i%width, i/width
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				j := ny*width + nx
				if bright[j] && !visited[j] {
					visited[j] = true
					stack = append(stack, j)
				}
			}
		}
	}
	return area
}
