// Package dedup maintains an in-memory TF-IDF similarity index over analyzed
// documents and answers near-duplicate queries against it.
package dedup

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/karte-health/karte/internal/models"
	"github.com/karte-health/karte/internal/vectorize"
)

type entry struct {
	id     string
	text   string
	vector vectorize.Vector
}

// Index is a concurrency-safe similarity index. The TF-IDF vocabulary is
// fitted exactly once, on the first duplicate check that sees a non-empty
// corpus; documents indexed afterwards are vectorized against that fixed
// vocabulary rather than refitting. Terms first seen after the fit therefore
// do not contribute to similarity.
type Index struct {
	mu         sync.RWMutex
	vectorizer *vectorize.Vectorizer
	entries    []entry
	logger     *zap.Logger
}

// NewIndex creates an empty similarity index. The vocabulary keeps unigrams
// and bigrams occurring in at least two corpus documents.
func NewIndex(logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Index{
		vectorizer: vectorize.NewVectorizer(vectorize.Options{NGramMax: 2, MinDF: 2}),
		logger:     logger,
	}
}

// Len returns the number of indexed documents.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// Add registers a document's text under id. If the vocabulary is already
// fitted the document is vectorized immediately; otherwise vectorization is
// deferred until the first duplicate check.
func (ix *Index) Add(id, text string) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	e := entry{id: id, text: text}
	if ix.vectorizer.Fitted() {
		vec, err := ix.vectorizer.Transform(text)
		if err != nil {
			return fmt.Errorf("vectorize document %s: %w", id, err)
		}
		e.vector = vec
	}
	ix.entries = append(ix.entries, e)
	return nil
}

// CheckDuplicate compares text against every indexed document and reports the
// best match when its cosine similarity reaches threshold. An empty index
// yields a non-duplicate result with zero similarity.
func (ix *Index) CheckDuplicate(text string, threshold float64) (*models.DuplicateResult, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	result := &models.DuplicateResult{}
	if len(ix.entries) == 0 {
		return result, nil
	}

	if !ix.vectorizer.Fitted() {
		if err := ix.fitLocked(text); err != nil {
			return nil, err
		}
	}

	query, err := ix.vectorizer.Transform(text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	best := -1.0
	bestID := ""
	for _, e := range ix.entries {
		if sim := vectorize.Cosine(query, e.vector); sim > best {
			best = sim
			bestID = e.id
		}
	}

	result.SimilarityScore = best
	if best >= threshold {
		result.IsDuplicate = true
		result.SimilarDocumentID = bestID
		ix.logger.Info("near-duplicate detected",
			zap.String("similar_document_id", bestID),
			zap.Float64("similarity", best))
	}
	return result, nil
}

// fitLocked builds the vocabulary from the query text plus the indexed corpus
// and vectorizes every pending entry. Caller holds the write lock.
func (ix *Index) fitLocked(queryText string) error {
	corpus := make([]string, 0, len(ix.entries)+1)
	corpus = append(corpus, queryText)
	for _, e := range ix.entries {
		corpus = append(corpus, e.text)
	}
	if err := ix.vectorizer.Fit(corpus); err != nil {
		return fmt.Errorf("fit similarity vocabulary: %w", err)
	}
	for i := range ix.entries {
		vec, err := ix.vectorizer.Transform(ix.entries[i].text)
		if err != nil {
			return fmt.Errorf("vectorize document %s: %w", ix.entries[i].id, err)
		}
		ix.entries[i].vector = vec
	}
	ix.logger.Debug("similarity vocabulary fitted", zap.Int("documents", len(ix.entries)))
	return nil
}
