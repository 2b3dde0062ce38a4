package nlp

import (
	"context"
	"regexp"
	"strings"
)

// Entity is a tagged span of text with a type label and confidence in [0, 1].
type Entity struct {
	Text       string  `json:"text"`
	Label      string  `json:"type_label"`
	Confidence float64 `json:"confidence"`
}

// EntityTagger identifies clinical entity mentions in text. Implementations
// may be backed by external models; callers must tolerate errors and degrade.
type EntityTagger interface {
	Tag(ctx context.Context, text string) ([]Entity, error)
}

// conditionLexicon and medicationLexicon back the built-in tagger and the
// segmenter's coarse fallback tagging.
var (
	conditionLexicon = []string{
		"hypertension", "diabetes", "type 2 diabetes", "type 1 diabetes",
		"hyperlipidemia", "hypothyroidism", "copd", "asthma", "depression",
		"anxiety", "arthritis", "obesity", "anemia", "pneumonia",
		"atrial fibrillation", "heart disease", "chronic kidney disease",
	}
	medicationLexicon = []string{
		"amoxicillin", "lisinopril", "metformin", "atorvastatin",
		"levothyroxine", "amlodipine", "omeprazole", "albuterol",
		"gabapentin", "hydrochlorothiazide", "aspirin", "insulin",
		"warfarin", "prednisone", "ibuprofen",
	}
	patientNamePattern = regexp.MustCompile(`(?i:patient(?:\s+name)?)\s*[:\-]\s*([A-Z][a-z]+(?:\s+[A-Z][a-z]+)+)`)
)

// LexiconTagger is a deterministic dictionary-driven entity tagger. It serves
// as the default tagger when no model-backed implementation is configured,
// and as the deterministic stub in tests.
type LexiconTagger struct {
	conditions  []string
	medications []string
}

// NewLexiconTagger creates a tagger over the built-in clinical lexicons.
func NewLexiconTagger() *LexiconTagger {
	return &LexiconTagger{
		conditions:  conditionLexicon,
		medications: medicationLexicon,
	}
}

// Tag returns lexicon hits labeled CONDITION/DRUG at fixed high confidence,
// plus PATIENT entities for explicit "Patient: Name" phrasings. Tag never
// fails; the error return satisfies the capability contract.
func (t *LexiconTagger) Tag(_ context.Context, text string) ([]Entity, error) {
	var entities []Entity
	textLower := strings.ToLower(text)

	// Longer lexicon phrases win over their prefixes ("type 2 diabetes"
	// suppresses the bare "diabetes" hit at the same location).
	claimed := make([][2]int, 0)
	appendHits := func(terms []string, label string) {
		for _, term := range terms {
			loc := wholeWordIndex(textLower, strings.ToLower(term))
			if loc == nil || overlapsAny(claimed, loc[0], loc[1]) {
				continue
			}
			claimed = append(claimed, [2]int{loc[0], loc[1]})
			entities = append(entities, Entity{
				Text:       text[loc[0]:loc[1]],
				Label:      label,
				Confidence: 0.9,
			})
		}
	}
	appendHits(longestFirst(t.conditions), "CONDITION")
	appendHits(longestFirst(t.medications), "DRUG")

	for _, m := range patientNamePattern.FindAllStringSubmatch(text, -1) {
		entities = append(entities, Entity{
			Text:       m[1],
			Label:      "PATIENT",
			Confidence: 0.85,
		})
	}
	return entities, nil
}

// wholeWordIndex returns the [start, end) of the first whole-word occurrence
// of term in textLower, or nil.
func wholeWordIndex(textLower, term string) []int {
	pattern := regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
	return pattern.FindStringIndex(textLower)
}

func overlapsAny(spans [][2]int, start, end int) bool {
	for _, s := range spans {
		if start < s[1] && end > s[0] {
			return true
		}
	}
	return false
}

func longestFirst(terms []string) []string {
	out := make([]string, len(terms))
	copy(out, terms)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(out[j]) > len(out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
