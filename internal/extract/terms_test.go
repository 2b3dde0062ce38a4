package extract

import (
	"testing"
)

func TestMedicalTermsGrouping(t *testing.T) {
	e := NewExtractor()
	text := "Patient has Hypertension. CBC ordered today. Blood Pressure was checked."

	terms := e.MedicalTerms(text)

	if got := terms["common_diagnoses"]; len(got) != 1 || got[0] != "Hypertension" {
		t.Errorf("common_diagnoses = %v, want [Hypertension]", got)
	}
	if got := terms["lab_tests"]; len(got) != 1 || got[0] != "CBC" {
		t.Errorf("lab_tests = %v, want [CBC]", got)
	}
	if got := terms["vital_signs"]; len(got) != 1 || got[0] != "Blood Pressure" {
		t.Errorf("vital_signs = %v, want [Blood Pressure]", got)
	}
	if _, ok := terms["imaging"]; ok {
		t.Errorf("imaging category present with no hits: %v", terms["imaging"])
	}
}

func TestMedicalTermsPreservesSourceCasing(t *testing.T) {
	e := NewExtractor()

	terms := e.MedicalTerms("history of HYPERTENSION and diabetes")
	got := terms["common_diagnoses"]
	if len(got) != 2 {
		t.Fatalf("common_diagnoses = %v, want two entries", got)
	}
	found := map[string]bool{}
	for _, term := range got {
		found[term] = true
	}
	if !found["HYPERTENSION"] || !found["diabetes"] {
		t.Errorf("common_diagnoses = %v, want source casing preserved", got)
	}
}

func TestMedicalTermsWholeWordOnly(t *testing.T) {
	e := NewExtractor()

	// "CT" inside "ACTH" must not match.
	terms := e.MedicalTerms("ACTH stimulation discussed")
	if got := terms["imaging"]; len(got) != 0 {
		t.Errorf("imaging = %v, want no whole-word matches inside ACTH", got)
	}
}

func TestMedicalTermsCustomDictionary(t *testing.T) {
	e := NewExtractor(WithTerms(TermDictionary{"custom": {"troponin"}}))

	terms := e.MedicalTerms("Troponin elevated.")
	if got := terms["custom"]; len(got) != 1 || got[0] != "Troponin" {
		t.Errorf("custom = %v, want [Troponin]", got)
	}
}
