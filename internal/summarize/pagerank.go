package summarize

import (
	"errors"
	"math"
)

const (
	damping       = 0.85
	convergeTol   = 1e-6
	maxIterations = 100
)

var errNoConvergence = errors.New("pagerank did not converge")

// pagerank runs weighted PageRank over the sentence graph and returns one
// score per sentence. It returns errNoConvergence when the score vector is
// still moving after the iteration cap.
func pagerank(g *sentenceGraph) ([]float64, error) {
	n := len(g.weights)
	if n == 0 {
		return nil, nil
	}

	outWeight := make([]float64, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			outWeight[i] += g.weights[i][j]
		}
	}

	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}

	next := make([]float64, n)
	base := (1 - damping) / float64(n)
	for iter := 0; iter < maxIterations; iter++ {
		for i := 0; i < n; i++ {
			sum := 0.0
			for j := 0; j < n; j++ {
				if g.weights[j][i] > 0 && outWeight[j] > 0 {
					sum += scores[j] * g.weights[j][i] / outWeight[j]
				}
			}
			next[i] = base + damping*sum
		}

		delta := 0.0
		for i := 0; i < n; i++ {
			delta += math.Abs(next[i] - scores[i])
		}
		copy(scores, next)
		if delta < convergeTol {
			return scores, nil
		}
	}
	return nil, errNoConvergence
}
