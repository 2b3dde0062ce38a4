package extract

import (
	"testing"

	"github.com/karte-health/karte/internal/models"
)

func findByUnit(mentions []*models.MeasurementMention, unit string) *models.MeasurementMention {
	for _, m := range mentions {
		if m.Unit == unit {
			return m
		}
	}
	return nil
}

func TestNumericValuesBloodPressure(t *testing.T) {
	e := NewExtractor()

	values := e.NumericValues("Blood pressure 130/85 mmHg recorded at rest.")
	m := findByUnit(values, "mmHg")
	if m == nil {
		t.Fatalf("NumericValues() found no mmHg mention: %+v", values)
	}
	if m.Value == nil || *m.Value != 130 {
		t.Errorf("Value = %v, want 130", m.Value)
	}
	if m.HighValue == nil || *m.HighValue != 85 {
		t.Errorf("HighValue = %v, want 85", m.HighValue)
	}
	if m.Type != "blood_pressure" {
		t.Errorf("Type = %q, want blood_pressure", m.Type)
	}
}

func TestNumericValuesCompoundUnit(t *testing.T) {
	e := NewExtractor()

	values := e.NumericValues("Fasting glucose 105 mg/dL this morning.")
	m := findByUnit(values, "mg/dL")
	if m == nil {
		t.Fatalf("NumericValues() found no mg/dL mention, units: %+v", values)
	}
	if m.Value == nil || *m.Value != 105 {
		t.Errorf("Value = %v, want 105", m.Value)
	}
	if m.Type != "glucose" {
		t.Errorf("Type = %q, want glucose", m.Type)
	}
}

func TestNumericValuesRangeForms(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name     string
		text     string
		wantLow  float64
		wantHigh float64
	}{
		{"hyphen range", "Target 120-140 mg/dL maintained.", 120, 140},
		{"to range", "Target 120 to 140 mg/dL maintained.", 120, 140},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values := e.NumericValues(tt.text)
			m := findByUnit(values, "mg/dL")
			if m == nil {
				t.Fatalf("NumericValues() found no mg/dL mention")
			}
			if m.Value == nil || *m.Value != tt.wantLow {
				t.Errorf("Value = %v, want %v", m.Value, tt.wantLow)
			}
			if m.HighValue == nil || *m.HighValue != tt.wantHigh {
				t.Errorf("HighValue = %v, want %v", m.HighValue, tt.wantHigh)
			}
		})
	}
}

func TestNumericValuesPercentUnit(t *testing.T) {
	e := NewExtractor()

	values := e.NumericValues("HbA1c 6.5% at last draw.")
	m := findByUnit(values, "%")
	if m == nil {
		t.Fatalf("NumericValues() found no %% mention: %+v", values)
	}
	if m.Value == nil || *m.Value != 6.5 {
		t.Errorf("Value = %v, want 6.5", m.Value)
	}
	if m.Type != "hba1c" {
		t.Errorf("Type = %q, want hba1c", m.Type)
	}
}

func TestNumericValuesReferenceRange(t *testing.T) {
	e := NewExtractor()

	values := e.NumericValues("Glucose: 105 mg/dL (reference range: 70-99)")
	m := findByUnit(values, "mg/dL")
	if m == nil {
		t.Fatalf("NumericValues() found no mg/dL mention")
	}
	if m.ReferenceRange != "70-99" {
		t.Errorf("ReferenceRange = %q, want %q", m.ReferenceRange, "70-99")
	}
}

func TestNumericValuesUnitlessNumber(t *testing.T) {
	e := NewExtractor()

	values := e.NumericValues("Heart rate 72 this visit.")
	if len(values) == 0 {
		t.Fatal("NumericValues() found nothing for unitless number")
	}
	m := values[0]
	if m.Value == nil || *m.Value != 72 {
		t.Errorf("Value = %v, want 72", m.Value)
	}
	if m.Unit != "" {
		t.Errorf("Unit = %q, want empty", m.Unit)
	}
	if m.Type != "heart_rate" {
		t.Errorf("Type = %q, want heart_rate", m.Type)
	}
}
