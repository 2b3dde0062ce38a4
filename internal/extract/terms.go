package extract

import (
	"regexp"
	"strings"
)

// TermDictionary maps a terminology category to its canonical terms.
type TermDictionary map[string][]string

// DefaultTerms returns the built-in clinical terminology dictionary.
func DefaultTerms() TermDictionary {
	return TermDictionary{
		"lab_tests": {
			"CBC", "Complete Blood Count", "Lipid Panel", "Metabolic Panel",
			"A1C", "Hemoglobin", "Glucose", "Cholesterol", "Triglycerides", "HDL", "LDL",
			"Creatinine", "BUN", "ALT", "AST", "TSH", "T3", "T4", "Vitamin D", "PSA",
		},
		"medications": {
			"mg", "tablet", "capsule", "injection", "daily", "twice daily", "take with food",
			"amoxicillin", "lisinopril", "metformin", "atorvastatin", "levothyroxine",
			"amlodipine", "omeprazole", "albuterol", "gabapentin", "hydrochlorothiazide",
		},
		"imaging": {
			"X-ray", "MRI", "CT", "Ultrasound", "Scan", "Radiology", "Imaging",
			"Contrast", "PET", "Mammogram", "DEXA", "Bone Density",
		},
		"vital_signs": {
			"Blood Pressure", "Pulse", "Temperature", "Respiratory Rate",
			"Oxygen Saturation", "Height", "Weight", "BMI",
		},
		"common_diagnoses": {
			"Hypertension", "Diabetes", "Hyperlipidemia", "Hypothyroidism",
			"COPD", "Asthma", "Depression", "Anxiety", "Arthritis", "Obesity",
		},
	}
}

// MedicalTerms returns the dictionary terms found in text, grouped by
// category. Matching is whole-word and case-insensitive; the returned term
// preserves the casing of its first occurrence in the text. Categories with
// no hits are omitted.
func (e *Extractor) MedicalTerms(text string) map[string][]string {
	result := make(map[string][]string)
	textLower := strings.ToLower(text)

	for category, terms := range e.terms {
		var found []string
		for _, term := range terms {
			termLower := strings.ToLower(term)
			pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(termLower) + `\b`)
			loc := pattern.FindStringIndex(textLower)
			if loc == nil {
				continue
			}
			found = append(found, text[loc[0]:loc[1]])
		}
		if len(found) > 0 {
			result[category] = found
		}
	}
	return result
}
