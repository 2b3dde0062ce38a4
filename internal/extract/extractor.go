// Package extract pulls medical terms, dates, and numeric measurements out
// of raw clinical document text via pattern matching.
package extract

import (
	"go.uber.org/zap"
)

// Extractor performs structured extraction over document text. It is
// stateless after construction and safe for concurrent use across documents.
type Extractor struct {
	terms  TermDictionary
	logger *zap.Logger
}

// ExtractorOption customizes an Extractor.
type ExtractorOption func(*Extractor)

// WithTerms replaces the default terminology dictionary.
func WithTerms(terms TermDictionary) ExtractorOption {
	return func(e *Extractor) { e.terms = terms }
}

// WithLogger sets the logger used for per-match parse warnings.
func WithLogger(logger *zap.Logger) ExtractorOption {
	return func(e *Extractor) { e.logger = logger }
}

// NewExtractor creates an extractor with the default terminology dictionary
// and a no-op logger.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		terms:  DefaultTerms(),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
