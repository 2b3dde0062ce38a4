package classify

import (
	"regexp"

	"github.com/karte-health/karte/internal/models"
)

// Rule holds the classification configuration for one document type: the
// keywords counted toward the score, an optional pattern that must appear
// (its absence halves the score), and the minimum qualifying score.
type Rule struct {
	Type            models.DocumentType
	Keywords        []string
	RequiredPattern *regexp.Regexp
	ScoreThreshold  float64
}

// DefaultRules returns the built-in classification rule table. The slice is
// ordered lexicographically by document type name; the classifier resolves
// equal top scores in favor of the earlier entry, so classification is
// deterministic regardless of input.
func DefaultRules() []*Rule {
	return []*Rule{
		{
			Type: models.DocTypeBilling,
			Keywords: []string{"bill", "invoice", "payment", "amount", "due", "charge",
				"procedure code", "CPT", "service date", "balance"},
			ScoreThreshold: 0.65,
		},
		{
			Type: models.DocTypeConsentForm,
			Keywords: []string{"consent", "agreement", "authorization", "permission",
				"procedure", "risks", "benefits", "alternatives", "signature"},
			RequiredPattern: regexp.MustCompile(`(?i)\b(?:consent|signature|authorize|agree)\b`),
			ScoreThreshold:  0.7,
		},
		{
			Type: models.DocTypeDischargeSummary,
			Keywords: []string{"discharge", "summary", "admission", "hospital", "follow-up",
				"discharged", "hospitalization", "inpatient"},
			RequiredPattern: regexp.MustCompile(`(?i)\b(?:discharge|admitted|admission date|discharge date)\b`),
			ScoreThreshold:  0.7,
		},
		{
			Type: models.DocTypeImagingReport,
			Keywords: []string{"radiology", "imaging", "x-ray", "MRI", "CT", "ultrasound",
				"scan", "impression", "technique", "contrast"},
			RequiredPattern: regexp.MustCompile(`(?i)\b(?:impression|technique|findings|radiologist|CT|MRI|X-ray)\b`),
			ScoreThreshold:  0.65,
		},
		{
			Type: models.DocTypeInsurance,
			Keywords: []string{"insurance", "policy", "coverage", "premium", "deductible",
				"copay", "claim", "benefits", "insured", "group number"},
			ScoreThreshold: 0.65,
		},
		{
			Type: models.DocTypeLabResult,
			Keywords: []string{"laboratory", "lab result", "test result", "panel", "reference range",
				"specimen", "collected", "methodology"},
			RequiredPattern: regexp.MustCompile(`(?i)\b(?:normal range|reference range|abnormal|WBC|RBC|HGB|HCT)\b`),
			ScoreThreshold:  0.6,
		},
		{
			Type: models.DocTypeMedicalReport,
			Keywords: []string{"assessment", "plan", "history", "examination", "chief complaint",
				"diagnosis", "treatment", "recommendation", "follow-up"},
			ScoreThreshold: 0.55,
		},
		{
			Type: models.DocTypePrescription,
			Keywords: []string{"prescription", "Rx", "refill", "dispense", "pharmacy",
				"sig:", "take", "tablet", "capsule", "daily", "dose", "route"},
			RequiredPattern: regexp.MustCompile(`(?i)\b(?:mg|mL|mcg|tablet|capsule|take|daily)\b`),
			ScoreThreshold:  0.6,
		},
		{
			Type: models.DocTypeReferral,
			Keywords: []string{"referral", "referred", "consult", "consultation", "specialist",
				"opinion", "second opinion"},
			ScoreThreshold: 0.6,
		},
		{
			Type: models.DocTypeVaccinationRecord,
			Keywords: []string{"vaccine", "vaccination", "immunization", "booster",
				"dose", "administered", "injection site"},
			ScoreThreshold: 0.7,
		},
	}
}
