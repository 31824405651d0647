// Package palette assigns a distinct colour to each degree of separation for
// visualisation.
package palette

import (
	"fmt"
	"math/rand/v2"

	"github.com/persistorai/degrees/internal/graph"
	"github.com/persistorai/degrees/internal/models"
)

// Colors returns levelCount+1 distinct "#rrggbb" codes, one per degree
// 0..levelCount. The codes are drawn without replacement from an evenly
// spaced RGB grid with pure black and pure white removed. The same rng seed
// yields the same sequence.
func Colors(levelCount int, rng *rand.Rand) ([]string, error) {
	if levelCount < 0 {
		return nil, &models.ConfigError{Field: "levels", Reason: "must be zero or greater"}
	}

	if rng == nil {
		return nil, &models.ConfigError{Field: "rng", Reason: "random source is required"}
	}

	n := levelCount + 1
	k := gridSize(n)
	candidates := grid(k)

	out := make([]string, n)
	for i := range out {
		j := i + rng.IntN(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
		out[i] = candidates[i]
	}

	return out, nil
}

// gridSize is the smallest k >= 2 with k^3 - 2 >= n.
func gridSize(n int) int {
	k := 2
	for k*k*k-2 < n {
		k++
	}

	return k
}

// grid enumerates the k×k×k channel grid in r, g, b order without its
// black and white corners.
func grid(k int) []string {
	step := make([]int, k)
	for i := range step {
		step[i] = i * 255 / (k - 1)
	}

	out := make([]string, 0, k*k*k-2)

	for _, r := range step {
		for _, g := range step {
			for _, b := range step {
				if (r == 0 && g == 0 && b == 0) || (r == 255 && g == 255 && b == 255) {
					continue
				}

				out = append(out, fmt.Sprintf("#%02x%02x%02x", r, g, b))
			}
		}
	}

	return out
}

// Legend maps every node of g to the colour of its degree. Nodes whose degree
// falls outside colors are omitted.
func Legend(g *graph.Graph, colors []string) map[string]string {
	out := make(map[string]string, g.NodeCount())

	for _, n := range g.Nodes() {
		d := n.Degree()
		if d < 0 || d >= len(colors) {
			continue
		}

		out[n.ID] = colors[d]
	}

	return out
}
