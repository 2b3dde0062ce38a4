// Package classify provides rule-based clinical document type classification.
package classify

import (
	"strings"

	"github.com/karte-health/karte/internal/models"
)

// Classifier scores documents against a static rule table.
// It is stateless after construction and safe for concurrent use.
type Classifier struct {
	rules []*Rule
}

// NewClassifier creates a classifier using the given rules, or the default
// rule table when rules is nil.
func NewClassifier(rules []*Rule) *Classifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify returns the best-matching document type and its confidence in
// [0, 1]. A rule's score is the fraction of its keywords found in the text
// (case-insensitive substring match); when a required pattern is configured
// and absent, a non-zero score is halved. Only scores at or above the rule's
// threshold qualify; the strictly highest qualifying score wins, with ties
// resolved in rule-table order. When nothing qualifies the result is
// (unknown, 0.0). Classify never fails.
func (c *Classifier) Classify(text string) (models.DocumentType, float64) {
	textLower := strings.ToLower(text)

	best := models.DocTypeUnknown
	highest := 0.0

	for _, rule := range c.rules {
		if len(rule.Keywords) == 0 {
			continue
		}
		matched := 0
		for _, kw := range rule.Keywords {
			if strings.Contains(textLower, strings.ToLower(kw)) {
				matched++
			}
		}
		score := float64(matched) / float64(len(rule.Keywords))

		if rule.RequiredPattern != nil && score > 0 && !rule.RequiredPattern.MatchString(text) {
			score *= 0.5
		}

		if score >= rule.ScoreThreshold && score > highest {
			highest = score
			best = rule.Type
		}
	}

	return best, highest
}
