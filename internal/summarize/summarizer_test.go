package summarize

import (
	"strings"
	"testing"

	"github.com/karte-health/karte/internal/nlp"
)

const clinicalNote = "Patient presented with elevated blood glucose readings. " +
	"The glucose readings have been elevated for three consecutive months. " +
	"Blood pressure remains within normal limits at this visit. " +
	"Patient reports good adherence to the prescribed metformin regimen. " +
	"The care team recommends continued glucose monitoring at home. " +
	"A follow-up appointment was scheduled to review glucose monitoring results. " +
	"Patient was counseled on diet and exercise at length. " +
	"No medication changes were made during this visit. " +
	"Laboratory work will be repeated before the next appointment. " +
	"Overall the patient is stable and engaged with the care plan."

func TestSummarizeRequiresSegmenter(t *testing.T) {
	s := NewSummarizer(nil, 0, nil)
	if _, err := s.Summarize(clinicalNote, 0.2); err != ErrNoSegmenter {
		t.Errorf("Summarize() error = %v, want ErrNoSegmenter", err)
	}
}

func TestSummarizeShortDocumentUnchanged(t *testing.T) {
	s := NewSummarizer(nlp.NewRegexSegmenter(), 0, nil)

	text := "Patient is stable. Continue treatment."
	got, err := s.Summarize(text, 0.2)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got != text {
		t.Errorf("Summarize() = %q, want input unchanged", got)
	}
}

func TestSummarizeSelectsSubsetInDocumentOrder(t *testing.T) {
	segmenter := nlp.NewRegexSegmenter()
	s := NewSummarizer(segmenter, 0, nil)

	got, err := s.Summarize(clinicalNote, 0.3)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got == "" {
		t.Fatal("Summarize() returned empty summary")
	}
	if len(got) >= len(clinicalNote) {
		t.Errorf("summary length %d not shorter than input %d", len(got), len(clinicalNote))
	}

	// Every selected sentence must come from the input, in document order.
	sentences := segmenter.Segment(got)
	if want := 3; len(sentences) != want {
		t.Errorf("summary has %d sentences, want %d", len(sentences), want)
	}
	lastIdx := -1
	for _, sent := range sentences {
		idx := strings.Index(clinicalNote, sent)
		if idx < 0 {
			t.Errorf("summary sentence %q not found in input", sent)
			continue
		}
		if idx < lastIdx {
			t.Errorf("summary sentence %q out of document order", sent)
		}
		lastIdx = idx
	}
}

func TestSummarizeRatioNeverBelowOneSentence(t *testing.T) {
	s := NewSummarizer(nlp.NewRegexSegmenter(), 0, nil)

	got, err := s.Summarize(clinicalNote, 0.01)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if got == "" {
		t.Error("Summarize() with tiny ratio returned empty summary")
	}
}

func TestSummarizeMaxSentencesCap(t *testing.T) {
	segmenter := nlp.NewRegexSegmenter()
	s := NewSummarizer(segmenter, 2, nil)

	got, err := s.Summarize(clinicalNote, 0.9)
	if err != nil {
		t.Fatalf("Summarize() error = %v", err)
	}
	if n := len(segmenter.Segment(got)); n > 2 {
		t.Errorf("summary has %d sentences, cap is 2", n)
	}
}
