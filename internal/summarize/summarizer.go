// Package summarize produces extractive summaries of clinical documents by
// ranking sentences with PageRank over a word-overlap similarity graph.
package summarize

import (
	"errors"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/karte-health/karte/internal/nlp"
)

// ErrNoSegmenter is returned when summarization is requested without a
// sentence segmenter configured.
var ErrNoSegmenter = errors.New("summarize: no sentence segmenter configured")

// Summarizer ranks and selects sentences. Safe for concurrent use.
type Summarizer struct {
	segmenter    nlp.Segmenter
	maxSentences int
	logger       *zap.Logger
}

// NewSummarizer creates a summarizer over the given segmenter. maxSentences
// caps summary length regardless of ratio; zero or negative disables the cap.
func NewSummarizer(segmenter nlp.Segmenter, maxSentences int, logger *zap.Logger) *Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{segmenter: segmenter, maxSentences: maxSentences, logger: logger}
}

// Summarize returns an extractive summary covering roughly ratio of the
// document's sentences, never fewer than one. Documents of fewer than three
// sentences are returned unchanged. Selected sentences keep document order.
func (s *Summarizer) Summarize(text string, ratio float64) (string, error) {
	if s.segmenter == nil {
		return "", ErrNoSegmenter
	}

	sentences := s.segmenter.Segment(text)
	if len(sentences) < 3 {
		return text, nil
	}

	want := s.targetCount(len(sentences), ratio)

	scores, err := pagerank(buildGraph(sentences))
	if err != nil {
		// Degenerate similarity structure: fall back to the leading
		// sentences, which front-load clinical documents anyway.
		s.logger.Warn("sentence ranking did not converge, using leading sentences",
			zap.Int("sentences", len(sentences)), zap.Error(err))
		return strings.Join(sentences[:want], " "), nil
	}

	type ranked struct {
		index int
		score float64
	}
	order := make([]ranked, len(sentences))
	for i, sc := range scores {
		order[i] = ranked{index: i, score: sc}
	}
	sort.SliceStable(order, func(i, j int) bool { return order[i].score > order[j].score })

	selected := make([]int, want)
	for i := 0; i < want; i++ {
		selected[i] = order[i].index
	}
	sort.Ints(selected)

	parts := make([]string, want)
	for i, idx := range selected {
		parts[i] = sentences[idx]
	}
	return strings.Join(parts, " "), nil
}

func (s *Summarizer) targetCount(total int, ratio float64) int {
	want := int(math.Ceil(float64(total) * ratio))
	if want < 1 {
		want = 1
	}
	if s.maxSentences > 0 && want > s.maxSentences {
		want = s.maxSentences
	}
	if want > total {
		want = total
	}
	return want
}
