// Package engine wires the analysis components into a single facade: core
// document analysis on ingest, and on-demand enhancements over stored text.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/karte-health/karte/internal/classify"
	"github.com/karte-health/karte/internal/config"
	"github.com/karte-health/karte/internal/crossref"
	"github.com/karte-health/karte/internal/dedup"
	"github.com/karte-health/karte/internal/extract"
	"github.com/karte-health/karte/internal/findings"
	"github.com/karte-health/karte/internal/models"
	"github.com/karte-health/karte/internal/nlp"
	"github.com/karte-health/karte/internal/summarize"
	"github.com/karte-health/karte/internal/trends"
)

// Enhancement names accepted by Enhance. An empty include list runs all of
// them except trends and cross-reference, which need extra inputs.
const (
	EnhanceSummary        = "summary"
	EnhanceKeyFindings    = "key_findings"
	EnhanceTrends         = "trends"
	EnhanceCrossReference = "cross_reference"
)

// EnhanceRequest selects enhancements and carries their inputs.
type EnhanceRequest struct {
	Text    string
	Include []string
	// History feeds trend analysis; Records feed cross-referencing.
	History []*models.DatedFindings
	Records []crossref.Record
}

// EnhanceResult aggregates enhancement outputs. Trends insufficiency is
// reported in TrendsNote rather than failing the whole request.
type EnhanceResult struct {
	Summary        string                       `json:"summary,omitempty"`
	KeyFindings    *models.FindingsRecord       `json:"key_findings,omitempty"`
	Trends         *models.TrendReport          `json:"trends,omitempty"`
	TrendsNote     string                       `json:"trends_note,omitempty"`
	CrossReference *models.CrossReferenceResult `json:"cross_reference,omitempty"`
}

// Engine orchestrates classification, extraction, duplicate detection, and
// the enhancement suite. Safe for concurrent use.
type Engine struct {
	cfg        *config.Config
	classifier *classify.Classifier
	extractor  *extract.Extractor
	dupIndex   *dedup.Index
	summarizer *summarize.Summarizer
	findings   *findings.Extractor
	trends     *trends.Analyzer
	crossref   *crossref.CrossReferencer
	logger     *zap.Logger
}

// New builds an engine from configuration and the injected language
// capabilities. segmenter and tagger may be nil; affected enhancements then
// degrade or fail per their own contracts.
func New(cfg *config.Config, segmenter nlp.Segmenter, tagger nlp.EntityTagger, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	var coarse findings.CoarseTagger
	if rs, ok := segmenter.(findings.CoarseTagger); ok {
		coarse = rs
	}
	return &Engine{
		cfg:        cfg,
		classifier: classify.NewClassifier(nil),
		extractor:  extract.NewExtractor(extract.WithLogger(logger)),
		dupIndex:   dedup.NewIndex(logger),
		summarizer: summarize.NewSummarizer(segmenter, cfg.Engine.MaxSummarySentences, logger),
		findings:   findings.NewExtractor(tagger, coarse, logger),
		trends:     trends.NewAnalyzer(cfg.Engine.ChangePercentThreshold, cfg.Engine.AdherenceGapDays, logger),
		crossref:   crossref.NewCrossReferencer(tagger, logger),
		logger:     logger,
	}
}

// IndexedDocuments returns the similarity index size.
func (e *Engine) IndexedDocuments() int { return e.dupIndex.Len() }

// Analyze runs the core pipeline over one document: classification,
// structured extraction, and a duplicate check against previously analyzed
// documents. The document is added to the similarity index afterwards, so a
// document is never compared against itself.
func (e *Engine) Analyze(ctx context.Context, id, text string) (*models.Analysis, error) {
	if max := e.cfg.Engine.MaxDocumentBytes; max > 0 && len(text) > max {
		return nil, fmt.Errorf("document of %d bytes exceeds limit of %d", len(text), max)
	}

	docType, confidence := e.classifier.Classify(text)
	analysis := &models.Analysis{
		DocumentType:             docType,
		ClassificationConfidence: confidence,
		MedicalTerms:             e.extractor.MedicalTerms(text),
		Dates:                    e.extractor.Dates(text),
		Values:                   e.extractor.NumericValues(text),
	}

	dup, err := e.dupIndex.CheckDuplicate(text, e.cfg.Engine.DuplicateThreshold)
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	analysis.DuplicateDetection = dup

	if err := e.dupIndex.Add(id, text); err != nil {
		return nil, fmt.Errorf("index document: %w", err)
	}

	e.logger.Info("document analyzed",
		zap.String("document_id", id),
		zap.String("document_type", string(docType)),
		zap.Float64("confidence", confidence),
		zap.Bool("duplicate", dup.IsDuplicate))
	return analysis, nil
}

// Enhance runs the requested enhancements over req.Text.
func (e *Engine) Enhance(ctx context.Context, req EnhanceRequest) (*EnhanceResult, error) {
	include := req.Include
	if len(include) == 0 {
		include = []string{EnhanceSummary, EnhanceKeyFindings}
	}

	result := &EnhanceResult{}
	for _, name := range include {
		switch name {
		case EnhanceSummary:
			summary, err := e.summarizer.Summarize(req.Text, e.cfg.Engine.SummaryRatio)
			if err != nil {
				return nil, fmt.Errorf("summarize: %w", err)
			}
			result.Summary = summary
		case EnhanceKeyFindings:
			result.KeyFindings = e.findings.Extract(ctx, req.Text)
		case EnhanceTrends:
			report, err := e.trends.Analyze(req.History)
			switch {
			case err == trends.ErrInsufficientHistory:
				result.TrendsNote = "at least two dated documents are required for trend analysis"
			case err != nil:
				return nil, fmt.Errorf("analyze trends: %w", err)
			default:
				result.Trends = report
			}
		case EnhanceCrossReference:
			xref, err := e.crossref.Relate(ctx, req.Text, req.Records)
			if err != nil {
				return nil, fmt.Errorf("cross-reference: %w", err)
			}
			result.CrossReference = xref
		default:
			return nil, fmt.Errorf("unknown enhancement %q", name)
		}
	}
	return result, nil
}

// KeyFindings extracts the findings record for one document. Exposed
// separately because trend analysis needs per-document findings up front.
func (e *Engine) KeyFindings(ctx context.Context, text string) *models.FindingsRecord {
	return e.findings.Extract(ctx, text)
}
