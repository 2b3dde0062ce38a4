package models

// TrendPoint is one observation in a measurement time series.
type TrendPoint struct {
	Date     string  `json:"date"`
	Value    float64 `json:"value"`
	Original string  `json:"original"`
}

// TrendStats are the derived statistics for a measurement category with more
// than one observation. TrendDirection compares only the first and last
// values: increasing, decreasing, or stable.
type TrendStats struct {
	Min            float64 `json:"min"`
	Max            float64 `json:"max"`
	Mean           float64 `json:"mean"`
	Median         float64 `json:"median"`
	StdDev         float64 `json:"std_dev"`
	TrendDirection string  `json:"trend_direction"`
	DataPoints     int     `json:"data_points"`
}

// MeasurementTrend is the time series plus derived stats for one category.
// Stats is nil until the category has at least two observations.
type MeasurementTrend struct {
	Series []*TrendPoint `json:"series"`
	Stats  *TrendStats   `json:"stats,omitempty"`
}

// ChangeEvent records a significant change in a measurement between two
// consecutive documents.
type ChangeEvent struct {
	Type          string  `json:"type"`
	Name          string  `json:"name"`
	FromDate      string  `json:"from_date"`
	ToDate        string  `json:"to_date"`
	FromValue     float64 `json:"from_value"`
	ToValue       float64 `json:"to_value"`
	ChangePercent float64 `json:"change_percent"`
	Direction     string  `json:"direction"`
}

// MedicationPattern flags a medication whose observation gaps suggest
// non-adherence or intermittent use.
type MedicationPattern struct {
	Medication     string  `json:"medication"`
	AverageGapDays float64 `json:"average_gap_days"`
	PotentialIssue string  `json:"potential_issue"`
}

// TrendReport is the aggregated result of trend analysis across a patient's
// document history. A report is recomputed fresh on every call.
type TrendReport struct {
	Measurements       map[string]*MeasurementTrend `json:"measurements"`
	Conditions         map[string][]string          `json:"conditions"`
	Medications        map[string][]string          `json:"medications"`
	Changes            []*ChangeEvent               `json:"changes"`
	MedicationPatterns []*MedicationPattern         `json:"medication_patterns"`
}

// CrossRefRelevance holds the secondary relevance metrics for one related record.
type CrossRefRelevance struct {
	SharedMedicalTerms []string `json:"shared_medical_terms"`
	TermOverlapScore   float64  `json:"term_overlap_score"`
	SharedDates        []string `json:"shared_dates"`
	DateOverlapScore   float64  `json:"date_overlap_score"`
}

// RelatedDocument is one existing record judged relevant to the target document.
type RelatedDocument struct {
	RecordIndex            int                `json:"record_index"`
	DocumentID             string             `json:"document_id,omitempty"`
	SimilarityScore        float64            `json:"similarity_score"`
	CombinedRelevanceScore float64            `json:"combined_relevance_score"`
	RelevanceData          *CrossRefRelevance `json:"relevance_data"`
}

// CrossReferenceResult lists related records sorted descending by combined
// relevance score.
type CrossReferenceResult struct {
	RelatedDocuments []*RelatedDocument `json:"related_documents"`
	TotalAnalyzed    int                `json:"total_analyzed"`
}
