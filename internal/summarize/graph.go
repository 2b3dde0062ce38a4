package summarize

import (
	"math"
	"strings"
)

// sentenceGraph is a dense symmetric similarity graph over sentences.
// weights[i][j] is the length-normalized word overlap of sentences i and j.
type sentenceGraph struct {
	weights [][]float64
}

// buildGraph computes pairwise sentence similarity as the number of shared
// lowercase words divided by the sum of log sentence lengths. The log
// normalization keeps long sentences from dominating purely by size.
func buildGraph(sentences []string) *sentenceGraph {
	n := len(sentences)
	wordSets := make([]map[string]struct{}, n)
	for i, s := range sentences {
		wordSets[i] = wordSet(s)
	}

	weights := make([][]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := overlapSimilarity(wordSets[i], wordSets[j])
			weights[i][j] = w
			weights[j][i] = w
		}
	}
	return &sentenceGraph{weights: weights}
}

func wordSet(sentence string) map[string]struct{} {
	words := strings.Fields(strings.ToLower(sentence))
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func overlapSimilarity(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	overlap := 0
	for w := range small {
		if _, ok := large[w]; ok {
			overlap++
		}
	}
	if overlap == 0 {
		return 0
	}
	return float64(overlap) / (math.Log(float64(len(a))+1) + math.Log(float64(len(b))+1))
}
