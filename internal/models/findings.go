package models

// MeasurementEntry is one measurement captured by key-findings extraction:
// the raw matched value plus the surrounding context window.
type MeasurementEntry struct {
	Value   string `json:"value"`
	Context string `json:"context"`
}

// FindingDate is a date captured by key-findings extraction: the normalized
// YYYY-MM-DD form, the raw matched text, and its surrounding context.
type FindingDate struct {
	Date     string `json:"date"`
	Original string `json:"original"`
	Context  string `json:"context"`
}

// FindingsRecord is the normalized structured output of key-findings
// extraction for one document. Conditions and Medications carry set
// semantics: no entry appears twice.
type FindingsRecord struct {
	Conditions   []string                       `json:"conditions"`
	Medications  []string                       `json:"medications"`
	Measurements map[string][]*MeasurementEntry `json:"measurements"`
	Dates        map[string][]*FindingDate      `json:"dates"`
	PatientInfo  map[string]float64             `json:"patient_info"`
}

// NewFindingsRecord returns an empty findings record with all maps initialized.
func NewFindingsRecord() *FindingsRecord {
	return &FindingsRecord{
		Conditions:   []string{},
		Medications:  []string{},
		Measurements: make(map[string][]*MeasurementEntry),
		Dates:        make(map[string][]*FindingDate),
		PatientInfo:  make(map[string]float64),
	}
}

// DatedFindings pairs a document date with its findings record; the trend
// analyzer consumes an ordered list of these.
type DatedFindings struct {
	DocumentID string          `json:"document_id,omitempty"`
	Date       string          `json:"date"`
	Findings   *FindingsRecord `json:"findings"`
}
