// Package nlp defines the sentence segmentation and clinical entity tagging
// capabilities the analysis engine depends on, plus deterministic built-in
// implementations. External model-backed implementations can be injected
// behind the same interfaces.
package nlp

import (
	"regexp"
	"strings"
)

// Segmenter splits text into an ordered list of sentences.
type Segmenter interface {
	Segment(text string) []string
}

// RegexSegmenter is a deterministic rule-based sentence segmenter. It splits
// on terminal punctuation and treats a trailing unterminated fragment as a
// final sentence.
type RegexSegmenter struct {
	splitter *regexp.Regexp
}

// NewRegexSegmenter creates a regex-based sentence segmenter.
func NewRegexSegmenter() *RegexSegmenter {
	return &RegexSegmenter{
		splitter: regexp.MustCompile(`(?s)[^.!?]+[.!?]+`),
	}
}

// Segment splits text into trimmed, non-empty sentences in document order.
func (s *RegexSegmenter) Segment(text string) []string {
	matches := s.splitter.FindAllStringIndex(text, -1)
	var sentences []string
	last := 0
	for _, m := range matches {
		if sent := strings.TrimSpace(text[m[0]:m[1]]); sent != "" {
			sentences = append(sentences, sent)
		}
		last = m[1]
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

// capitalizedRun matches runs of capitalized words, used for coarse person
// guesses when no entity tagger is available.
var capitalizedRun = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)

// CoarseEntities exposes the segmenter's own rough entity tagging: lexicon
// hits for conditions and medications plus capitalized-run person guesses.
// This is a strictly degraded substitute for a real entity tagger, used only
// as a fallback when the tagger capability is unavailable.
func (s *RegexSegmenter) CoarseEntities(text string) []Entity {
	var entities []Entity
	textLower := strings.ToLower(text)

	for _, term := range conditionLexicon {
		if loc := wholeWordIndex(textLower, strings.ToLower(term)); loc != nil {
			entities = append(entities, Entity{
				Text:       text[loc[0]:loc[1]],
				Label:      "CONDITION",
				Confidence: coarseConfidence,
			})
		}
	}
	for _, term := range medicationLexicon {
		if loc := wholeWordIndex(textLower, strings.ToLower(term)); loc != nil {
			entities = append(entities, Entity{
				Text:       text[loc[0]:loc[1]],
				Label:      "DRUG",
				Confidence: coarseConfidence,
			})
		}
	}
	for _, run := range capitalizedRun.FindAllString(text, -1) {
		entities = append(entities, Entity{
			Text:       run,
			Label:      "PERSON",
			Confidence: coarseConfidence,
		})
	}
	return entities
}

// coarseConfidence is assigned to fallback entities: above the condition and
// medication acceptance thresholds, below the patient-info threshold, so the
// degraded path never fabricates high-confidence demographics.
const coarseConfidence = 0.75
