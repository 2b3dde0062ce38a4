package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/karte-health/karte/internal/config"
	"github.com/karte-health/karte/internal/models"
	"github.com/karte-health/karte/internal/nlp"
)

const labReport = "Laboratory test result. Lipid Panel ordered. Lab results attached. " +
	"Specimen collected on 01/05/2024. Glucose: 105 mg/dL (reference range: 70-99). " +
	"WBC within range. Patient has Hypertension and takes lisinopril daily."

func newTestEngine() *Engine {
	return New(config.Default(), nlp.NewRegexSegmenter(), nlp.NewLexiconTagger(), nil)
}

func TestAnalyzeLabReport(t *testing.T) {
	e := newTestEngine()

	analysis, err := e.Analyze(context.Background(), "doc-1", labReport)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if analysis.DocumentType != models.DocTypeLabResult {
		t.Errorf("DocumentType = %v, want lab_result (confidence %v)",
			analysis.DocumentType, analysis.ClassificationConfidence)
	}
	if analysis.ClassificationConfidence <= 0 {
		t.Errorf("ClassificationConfidence = %v, want > 0", analysis.ClassificationConfidence)
	}
	if len(analysis.MedicalTerms) == 0 {
		t.Error("MedicalTerms is empty")
	}
	if len(analysis.Dates) == 0 {
		t.Error("Dates is empty")
	}
	if len(analysis.Values) == 0 {
		t.Error("Values is empty")
	}
	if analysis.DuplicateDetection == nil || analysis.DuplicateDetection.IsDuplicate {
		t.Errorf("DuplicateDetection = %+v, want non-duplicate on first document",
			analysis.DuplicateDetection)
	}
}

func TestAnalyzeDetectsResubmittedDocument(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	if _, err := e.Analyze(ctx, "doc-1", labReport); err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	second, err := e.Analyze(ctx, "doc-2", labReport)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if !second.DuplicateDetection.IsDuplicate {
		t.Fatalf("resubmitted document not flagged, score %v",
			second.DuplicateDetection.SimilarityScore)
	}
	if second.DuplicateDetection.SimilarDocumentID != "doc-1" {
		t.Errorf("SimilarDocumentID = %q, want doc-1",
			second.DuplicateDetection.SimilarDocumentID)
	}
	if e.IndexedDocuments() != 2 {
		t.Errorf("IndexedDocuments() = %d, want 2", e.IndexedDocuments())
	}
}

func TestAnalyzeRejectsOversizedDocument(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.MaxDocumentBytes = 10
	e := New(cfg, nlp.NewRegexSegmenter(), nlp.NewLexiconTagger(), nil)

	if _, err := e.Analyze(context.Background(), "doc-1", strings.Repeat("x", 11)); err == nil {
		t.Error("Analyze() error = nil for oversized document")
	}
}

func TestEnhanceSummaryAndFindings(t *testing.T) {
	e := newTestEngine()

	result, err := e.Enhance(context.Background(), EnhanceRequest{
		Text:    labReport,
		Include: []string{EnhanceSummary, EnhanceKeyFindings},
	})
	if err != nil {
		t.Fatalf("Enhance() error = %v", err)
	}
	if result.Summary == "" {
		t.Error("Summary is empty")
	}
	if result.KeyFindings == nil {
		t.Fatal("KeyFindings is nil")
	}
	if len(result.KeyFindings.Conditions) == 0 {
		t.Errorf("KeyFindings.Conditions = %v, want hypertension found", result.KeyFindings.Conditions)
	}
}

func TestEnhanceTrendsInsufficientHistory(t *testing.T) {
	e := newTestEngine()

	result, err := e.Enhance(context.Background(), EnhanceRequest{
		Text:    labReport,
		Include: []string{EnhanceTrends},
	})
	if err != nil {
		t.Fatalf("Enhance() error = %v", err)
	}
	if result.Trends != nil {
		t.Errorf("Trends = %+v, want nil without history", result.Trends)
	}
	if result.TrendsNote == "" {
		t.Error("TrendsNote is empty, want insufficiency note")
	}
}

func TestEnhanceUnknownName(t *testing.T) {
	e := newTestEngine()

	if _, err := e.Enhance(context.Background(), EnhanceRequest{
		Text:    labReport,
		Include: []string{"sentiment"},
	}); err == nil {
		t.Error("Enhance() error = nil for unknown enhancement")
	}
}

func TestEnhanceDefaultsToSummaryAndFindings(t *testing.T) {
	e := newTestEngine()

	result, err := e.Enhance(context.Background(), EnhanceRequest{Text: labReport})
	if err != nil {
		t.Fatalf("Enhance() error = %v", err)
	}
	if result.Summary == "" || result.KeyFindings == nil {
		t.Errorf("default Enhance missing outputs: summary=%q findings=%v",
			result.Summary, result.KeyFindings)
	}
}
