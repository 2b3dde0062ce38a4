package extract

import (
	"testing"
)

func TestDatesFormats(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name     string
		text     string
		wantDate string
		wantRaw  string
	}{
		{"month first slashes", "Seen on 01/05/2024 for follow-up.", "2024-01-05", "01/05/2024"},
		{"month first dashes", "Seen on 1-5-2024 for follow-up.", "2024-01-05", "1-5-2024"},
		{"two digit year", "Seen on 1/2/21 briefly.", "2021-01-02", "1/2/21"},
		{"year first", "Dated 2024-01-05 at the clinic.", "2024-01-05", "2024-01-05"},
		{"month name", "Visit on March 5, 2019 went well.", "2019-03-05", "March 5, 2019"},
		{"month name ordinal", "Visit on March 5th, 2019 went well.", "2019-03-05", "March 5th, 2019"},
		{"abbreviated month", "Visit on Mar 5 2019 went well.", "2019-03-05", "Mar 5 2019"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := e.Dates(tt.text)
			if len(dates) != 1 {
				t.Fatalf("Dates() returned %d mentions, want 1: %+v", len(dates), dates)
			}
			if dates[0].Date != tt.wantDate {
				t.Errorf("Date = %q, want %q", dates[0].Date, tt.wantDate)
			}
			if dates[0].RawText != tt.wantRaw {
				t.Errorf("RawText = %q, want %q", dates[0].RawText, tt.wantRaw)
			}
		})
	}
}

func TestDatesSkipInvalidCalendarDates(t *testing.T) {
	e := NewExtractor()

	dates := e.Dates("Logged 2024-02-30 in error, corrected to 2024-02-28.")
	if len(dates) != 1 {
		t.Fatalf("Dates() returned %d mentions, want 1: %+v", len(dates), dates)
	}
	if dates[0].Date != "2024-02-28" {
		t.Errorf("Date = %q, want %q", dates[0].Date, "2024-02-28")
	}
}

func TestDatesSemanticTypes(t *testing.T) {
	e := NewExtractor()

	tests := []struct {
		name     string
		text     string
		wantType string
	}{
		{"collection", "Specimen collected: 01/05/2024", "collection_date"},
		{"report", "Report date: 01/05/2024", "report_date"},
		{"birth", "DOB: 01/05/1980", "birth_date"},
		{"admission", "Admission date: 01/05/2024", "admission_date"},
		{"discharge", "Discharge date: 01/05/2024", "discharge_date"},
		{"no keywords", "Noted 01/05/2024 in the margin.", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dates := e.Dates(tt.text)
			if len(dates) != 1 {
				t.Fatalf("Dates() returned %d mentions, want 1", len(dates))
			}
			if dates[0].Type != tt.wantType {
				t.Errorf("Type = %q, want %q (context %q)", dates[0].Type, tt.wantType, dates[0].Context)
			}
		})
	}
}

func TestDatesSpanMatchesSource(t *testing.T) {
	e := NewExtractor()
	text := "Specimen collected on 01/05/2024 at the lab."

	dates := e.Dates(text)
	if len(dates) != 1 {
		t.Fatalf("Dates() returned %d mentions, want 1", len(dates))
	}
	span := dates[0].Span
	if got := text[span.Start:span.End]; got != dates[0].RawText {
		t.Errorf("text[span] = %q, want %q", got, dates[0].RawText)
	}
}
