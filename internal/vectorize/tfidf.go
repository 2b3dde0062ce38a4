// Package vectorize provides a TF-IDF vector space over text corpora with
// cosine similarity, used by duplicate detection and cross-referencing.
package vectorize

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Options configures a Vectorizer.
type Options struct {
	// NGramMax is the largest n-gram size; 1 means unigrams only, 2 adds
	// bigrams. Zero defaults to 1.
	NGramMax int
	// MinDF drops terms appearing in fewer than MinDF corpus documents.
	// Zero defaults to 1.
	MinDF int
	// MaxDF drops terms appearing in more than MaxDF·N corpus documents
	// (near-universal terms). Zero or >= 1 disables the cap.
	MaxDF float64
	// StopWords are excluded from the vocabulary.
	StopWords map[string]struct{}
}

// Vector is a sparse TF-IDF document vector keyed by vocabulary index,
// L2-normalized at construction.
type Vector map[int]float64

// Vectorizer builds a fixed vocabulary from a corpus and transforms texts
// into sparse TF-IDF vectors against it. A Vectorizer is immutable after
// Fit and safe for concurrent Transform calls.
type Vectorizer struct {
	opts       Options
	vocabulary map[string]int
	idf        []float64
	fitted     bool
}

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)

// NewVectorizer creates an unfitted vectorizer.
func NewVectorizer(opts Options) *Vectorizer {
	if opts.NGramMax <= 0 {
		opts.NGramMax = 1
	}
	if opts.MinDF <= 0 {
		opts.MinDF = 1
	}
	return &Vectorizer{opts: opts, vocabulary: make(map[string]int)}
}

// Fitted reports whether the vocabulary has been built.
func (v *Vectorizer) Fitted() bool { return v.fitted }

// Fit builds the vocabulary and smoothed IDF weights from the corpus.
// Terms outside [MinDF, MaxDF·N] document frequency are dropped.
func (v *Vectorizer) Fit(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, term := range v.terms(text) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			df[term]++
		}
	}

	n := float64(len(corpus))
	maxCount := len(corpus)
	if v.opts.MaxDF > 0 && v.opts.MaxDF < 1 {
		maxCount = int(v.opts.MaxDF * n)
		if maxCount < 1 {
			maxCount = 1
		}
	}

	terms := make([]string, 0, len(df))
	for term, count := range df {
		if count < v.opts.MinDF || count > maxCount {
			continue
		}
		terms = append(terms, term)
	}
	sort.Strings(terms)

	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	v.fitted = true
	return nil
}

// Transform computes the L2-normalized TF-IDF vector of text against the
// fitted vocabulary. Text containing no vocabulary terms yields an empty
// (zero) vector.
func (v *Vectorizer) Transform(text string) (Vector, error) {
	if !v.fitted {
		return nil, errors.New("vectorizer not fitted")
	}
	tf := make(map[int]int)
	total := 0
	for _, term := range v.terms(text) {
		if idx, ok := v.vocabulary[term]; ok {
			tf[idx]++
			total++
		}
	}
	vec := make(Vector, len(tf))
	if total == 0 {
		return vec, nil
	}
	var norm float64
	for idx, count := range tf {
		w := (float64(count) / float64(total)) * v.idf[idx]
		vec[idx] = w
		norm += w * w
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for idx := range vec {
			vec[idx] /= norm
		}
	}
	return vec, nil
}

// terms tokenizes text and expands tokens into 1..NGramMax grams, applying
// stop-word removal to unigrams and to n-gram constituents.
func (v *Vectorizer) terms(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := raw[:0]
	for _, t := range raw {
		if _, stop := v.opts.StopWords[t]; stop {
			continue
		}
		tokens = append(tokens, t)
	}
	if v.opts.NGramMax == 1 {
		return tokens
	}
	terms := make([]string, 0, len(tokens)*v.opts.NGramMax)
	terms = append(terms, tokens...)
	for n := 2; n <= v.opts.NGramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}

// Cosine returns the cosine similarity of two normalized sparse vectors,
// clamped to [0, 1]. Iterates the smaller map.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for idx, av := range a {
		if bv, ok := b[idx]; ok {
			dot += av * bv
		}
	}
	return math.Max(0, math.Min(1, dot))
}
