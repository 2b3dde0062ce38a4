package findings

import (
	"context"
	"errors"
	"testing"

	"github.com/karte-health/karte/internal/nlp"
)

const visitNote = "Patient: John Smith seen today. History of hypertension, " +
	"currently on lisinopril. Blood pressure 130/85 mmHg. Weight 82 kg. " +
	"Fasting glucose 105 mg/dL. Follow-up appointment on 03/15/2024. " +
	"Prescription refill issued on 03/01/2024."

type failingTagger struct{}

func (failingTagger) Tag(context.Context, string) ([]nlp.Entity, error) {
	return nil, errors.New("model unavailable")
}

func TestExtractWithLexiconTagger(t *testing.T) {
	e := NewExtractor(nlp.NewLexiconTagger(), nlp.NewRegexSegmenter(), nil)

	record := e.Extract(context.Background(), visitNote)

	if len(record.Conditions) != 1 || record.Conditions[0] != "hypertension" {
		t.Errorf("Conditions = %v, want [hypertension]", record.Conditions)
	}
	if len(record.Medications) != 1 || record.Medications[0] != "lisinopril" {
		t.Errorf("Medications = %v, want [lisinopril]", record.Medications)
	}
	if _, ok := record.PatientInfo["John Smith"]; !ok {
		t.Errorf("PatientInfo = %v, want John Smith present", record.PatientInfo)
	}

	if got := record.Measurements["blood_pressure"]; len(got) == 0 {
		t.Error("no blood_pressure measurement captured")
	}
	if got := record.Measurements["glucose"]; len(got) == 0 {
		t.Error("no glucose measurement captured")
	}
	if got := record.Measurements["weight"]; len(got) == 0 {
		t.Error("no weight measurement captured")
	}

	if got := record.Dates["appointment"]; len(got) != 1 || got[0].Date != "2024-03-15" {
		t.Errorf("appointment dates = %+v, want one 2024-03-15", got)
	} else if got[0].Original != "03/15/2024" {
		t.Errorf("appointment Original = %q, want 03/15/2024", got[0].Original)
	}
	if got := record.Dates["prescription"]; len(got) != 1 || got[0].Date != "2024-03-01" {
		t.Errorf("prescription dates = %+v, want one 2024-03-01", got)
	}
}

func TestExtractNormalizesDateForms(t *testing.T) {
	e := NewExtractor(nil, nil, nil)

	record := e.Extract(context.Background(),
		"Follow-up visit scheduled for July 3, 2025. Prescribed refill on 1-5-24.")

	if got := record.Dates["appointment"]; len(got) != 1 || got[0].Date != "2025-07-03" {
		t.Errorf("appointment dates = %+v, want one 2025-07-03", got)
	}
	if got := record.Dates["prescription"]; len(got) != 1 || got[0].Date != "2024-01-05" {
		t.Errorf("prescription dates = %+v, want one 2024-01-05", got)
	}
}

func TestExtractDropsInvalidDates(t *testing.T) {
	e := NewExtractor(nil, nil, nil)

	record := e.Extract(context.Background(), "Appointment noted for 02/30/2024.")
	if got := record.Dates["appointment"]; len(got) != 0 {
		t.Errorf("appointment dates = %+v, want calendar-invalid hit dropped", got)
	}
}

func TestExtractConditionsAreDeduplicated(t *testing.T) {
	e := NewExtractor(nlp.NewLexiconTagger(), nil, nil)

	record := e.Extract(context.Background(), "hypertension noted. hypertension stable.")
	if len(record.Conditions) != 1 {
		t.Errorf("Conditions = %v, want a single deduplicated entry", record.Conditions)
	}
}

func TestExtractFallsBackWhenTaggerFails(t *testing.T) {
	e := NewExtractor(failingTagger{}, nlp.NewRegexSegmenter(), nil)

	record := e.Extract(context.Background(), visitNote)

	if len(record.Conditions) == 0 {
		t.Error("fallback produced no conditions")
	}
	if len(record.Medications) == 0 {
		t.Error("fallback produced no medications")
	}
	// Coarse person guesses sit below the patient-info confidence threshold.
	if len(record.PatientInfo) != 0 {
		t.Errorf("PatientInfo = %v, want empty from coarse fallback", record.PatientInfo)
	}
}

func TestExtractWithoutTaggerOrFallback(t *testing.T) {
	e := NewExtractor(nil, nil, nil)

	record := e.Extract(context.Background(), visitNote)
	if len(record.Conditions) != 0 || len(record.Medications) != 0 {
		t.Errorf("got entities %v / %v with no tagger available", record.Conditions, record.Medications)
	}
	if len(record.Measurements) == 0 {
		t.Error("pattern measurements missing without tagger")
	}
}

func TestExtractMeasurementContextWindow(t *testing.T) {
	e := NewExtractor(nil, nil, nil)

	record := e.Extract(context.Background(), "Fasting glucose 105 mg/dL this morning.")
	got := record.Measurements["glucose"]
	if len(got) != 1 {
		t.Fatalf("glucose measurements = %+v, want 1", got)
	}
	if got[0].Context == "" {
		t.Error("measurement context is empty")
	}
}
