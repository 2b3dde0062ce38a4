package vectorize

import (
	"math"
	"testing"
)

func TestFitRejectsEmptyCorpus(t *testing.T) {
	v := NewVectorizer(Options{})
	if err := v.Fit(nil); err == nil {
		t.Error("Fit(nil) error = nil, want error")
	}
	if v.Fitted() {
		t.Error("Fitted() = true after failed fit")
	}
}

func TestTransformRequiresFit(t *testing.T) {
	v := NewVectorizer(Options{})
	if _, err := v.Transform("anything"); err == nil {
		t.Error("Transform() before Fit returned nil error")
	}
}

func TestTransformIsNormalized(t *testing.T) {
	v := NewVectorizer(Options{NGramMax: 2})
	corpus := []string{
		"glucose elevated in the morning sample",
		"glucose stable in the evening sample",
		"blood pressure elevated at rest",
	}
	if err := v.Fit(corpus); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	vec, err := v.Transform(corpus[0])
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	var norm float64
	for _, w := range vec {
		norm += w * w
	}
	if math.Abs(math.Sqrt(norm)-1.0) > 1e-9 {
		t.Errorf("vector norm = %v, want 1.0", math.Sqrt(norm))
	}
}

func TestCosineIdenticalAndDisjoint(t *testing.T) {
	v := NewVectorizer(Options{NGramMax: 2})
	corpus := []string{
		"metformin dose increased today",
		"lisinopril dose unchanged today",
	}
	if err := v.Fit(corpus); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	a, _ := v.Transform(corpus[0])
	b, _ := v.Transform(corpus[0])
	if sim := Cosine(a, b); math.Abs(sim-1.0) > 1e-9 {
		t.Errorf("Cosine(identical) = %v, want 1.0", sim)
	}

	c, _ := v.Transform("completely unrelated words here")
	if sim := Cosine(a, c); sim != 0 {
		t.Errorf("Cosine(disjoint) = %v, want 0", sim)
	}
}

func TestMinDFDropsRareTerms(t *testing.T) {
	v := NewVectorizer(Options{MinDF: 2})
	corpus := []string{
		"glucose elevated",
		"glucose stable",
	}
	if err := v.Fit(corpus); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// "elevated" and "stable" each appear once and fall below MinDF.
	vec, err := v.Transform("elevated stable")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if len(vec) != 0 {
		t.Errorf("Transform() = %v, want empty vector for below-MinDF terms", vec)
	}
}

func TestMaxDFDropsUbiquitousTerms(t *testing.T) {
	v := NewVectorizer(Options{MaxDF: 0.5})
	corpus := []string{
		"patient glucose",
		"patient pressure",
		"patient weight",
		"final reading",
	}
	if err := v.Fit(corpus); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	// "patient" appears in 3 of 4 documents, above the 0.5 cap.
	vec, err := v.Transform("patient")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if len(vec) != 0 {
		t.Errorf("Transform() = %v, want empty vector for above-MaxDF term", vec)
	}
}

func TestStopWordsExcluded(t *testing.T) {
	v := NewVectorizer(Options{StopWords: EnglishStopWords()})
	corpus := []string{
		"the glucose is elevated",
		"the pressure is stable",
	}
	if err := v.Fit(corpus); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}

	vec, err := v.Transform("the is")
	if err != nil {
		t.Fatalf("Transform() error = %v", err)
	}
	if len(vec) != 0 {
		t.Errorf("Transform() = %v, want empty vector for stop words", vec)
	}
}

func TestBigramsInVocabulary(t *testing.T) {
	v := NewVectorizer(Options{NGramMax: 2})
	corpus := []string{
		"blood pressure elevated",
		"blood pressure stable",
	}
	if err := v.Fit(corpus); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	a, _ := v.Transform("blood pressure")
	b, _ := v.Transform("blood pressure")
	if sim := Cosine(a, b); math.Abs(sim-1.0) > 1e-9 {
		t.Errorf("Cosine = %v, want 1.0 for identical bigram texts", sim)
	}
}
