// Package models defines core data structures for documents, analysis results,
// findings records, and trend reports.
package models

import "time"

// DocumentType is the closed set of clinical document classifications.
type DocumentType string

const (
	DocTypeUnknown           DocumentType = "unknown"
	DocTypeLabResult         DocumentType = "lab_result"
	DocTypePrescription      DocumentType = "prescription"
	DocTypeMedicalReport     DocumentType = "medical_report"
	DocTypeDischargeSummary  DocumentType = "discharge_summary"
	DocTypeReferral          DocumentType = "referral"
	DocTypeImagingReport     DocumentType = "imaging_report"
	DocTypeVaccinationRecord DocumentType = "vaccination_record"
	DocTypeInsurance         DocumentType = "insurance"
	DocTypeBilling           DocumentType = "billing"
	DocTypeConsentForm       DocumentType = "consent_form"
)

// Document represents a stored clinical document with metadata.
type Document struct {
	ID           string       `json:"id" db:"id"`
	Title        string       `json:"title" db:"title"`
	Content      string       `json:"content" db:"content"`
	DocumentType DocumentType `json:"document_type" db:"document_type"`
	// Date is the document's clinical date (ISO 8601 day), used to order a
	// patient's history for trend analysis. Empty when unknown.
	Date      string    `json:"date,omitempty" db:"date"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentInput is the input for submitting a document for analysis.
type DocumentInput struct {
	ID      string `json:"id,omitempty"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	Date    string `json:"date,omitempty"`
}

// SourceText is the output of the text acquisition collaborator.
type SourceText struct {
	Text      string `json:"text"`
	PageCount int    `json:"page_count"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// Span marks a half-open [Start, End) byte range in the source text.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// DateMention is a single date found in a document, normalized to ISO form.
type DateMention struct {
	Date    string `json:"date"`
	RawText string `json:"raw_text"`
	Span    Span   `json:"span"`
	Context string `json:"context"`
	// Type is the semantic date type inferred from the surrounding context:
	// collection_date, report_date, birth_date, admission_date, discharge_date,
	// service_date, or unknown.
	Type string `json:"type"`
}

// MeasurementMention is a numeric value with an optional unit found in a document.
type MeasurementMention struct {
	Value          *float64 `json:"value"`
	HighValue      *float64 `json:"high_value,omitempty"`
	Unit           string   `json:"unit"`
	RawText        string   `json:"raw_text"`
	Span           Span     `json:"span"`
	Context        string   `json:"context"`
	Type           string   `json:"type"`
	ReferenceRange string   `json:"reference_range,omitempty"`
}

// DuplicateResult is the outcome of a duplicate check against the similarity index.
type DuplicateResult struct {
	IsDuplicate       bool    `json:"is_duplicate"`
	SimilarityScore   float64 `json:"similarity_score"`
	SimilarDocumentID string  `json:"similar_document_id,omitempty"`
}

// Analysis is the combined output of classifying and extracting one document.
type Analysis struct {
	DocumentType             DocumentType          `json:"document_type"`
	ClassificationConfidence float64               `json:"classification_confidence"`
	MedicalTerms             map[string][]string   `json:"medical_terms"`
	Dates                    []*DateMention        `json:"dates"`
	Values                   []*MeasurementMention `json:"values"`
	DuplicateDetection       *DuplicateResult      `json:"duplicate_detection,omitempty"`
}
