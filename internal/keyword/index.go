// Package keyword provides full-text search over stored documents backed by
// a persistent bleve index.
package keyword

import (
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"go.uber.org/zap"

	"github.com/karte-health/karte/internal/models"
)

// indexedDocument is the shape stored in the bleve index.
type indexedDocument struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	DocumentType string `json:"document_type"`
	Date         string `json:"date"`
}

// Hit is one search result.
type Hit struct {
	DocumentID string  `json:"document_id"`
	Score      float64 `json:"score"`
	Fragment   string  `json:"fragment,omitempty"`
}

// Index is a full-text index over document titles and content.
type Index struct {
	idx    bleve.Index
	logger *zap.Logger
}

// NewIndex opens the bleve index at path, creating it on first use. If the
// field mapping changes, remove the index directory to force a rebuild.
func NewIndex(path string, logger *zap.Logger) (*Index, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := os.Stat(path); err == nil {
		idx, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open search index: %w", openErr)
		}
		logger.Info("search index opened", zap.String("path", path))
		return &Index{idx: idx, logger: logger}, nil
	}

	docMapping := bleve.NewDocumentMapping()
	textField := bleve.NewTextFieldMapping()
	// Standard analyzer: lowercase + tokenize without stemming, so clinical
	// abbreviations are matched verbatim.
	textField.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("title", textField)
	docMapping.AddFieldMappingsAt("content", textField)
	keywordField := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("document_type", keywordField)
	docMapping.AddFieldMappingsAt("date", keywordField)

	im := bleve.NewIndexMapping()
	im.DefaultMapping = docMapping

	idx, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create search index: %w", err)
	}
	logger.Info("search index created", zap.String("path", path))
	return &Index{idx: idx, logger: logger}, nil
}

// IndexDocument adds or updates a document in the index.
func (i *Index) IndexDocument(doc *models.Document) error {
	err := i.idx.Index(doc.ID, indexedDocument{
		Title:        doc.Title,
		Content:      doc.Content,
		DocumentType: string(doc.DocumentType),
		Date:         doc.Date,
	})
	if err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}
	return nil
}

// Delete removes a document from the index.
func (i *Index) Delete(id string) error {
	if err := i.idx.Delete(id); err != nil {
		return fmt.Errorf("delete document %s from index: %w", id, err)
	}
	return nil
}

// Search runs a full-text query, optionally filtered by document type.
func (i *Index) Search(queryString string, docType string, limit int) ([]*Hit, error) {
	if limit <= 0 {
		limit = 10
	}

	match := bleve.NewMatchQuery(queryString)
	q := bleve.NewBooleanQuery()
	q.AddMust(match)
	if docType != "" {
		typeQuery := bleve.NewTermQuery(docType)
		typeQuery.SetField("document_type")
		q.AddMust(typeQuery)
	}

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Highlight = bleve.NewHighlightWithStyle("html")
	req.Highlight.AddField("content")

	res, err := i.idx.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	hits := make([]*Hit, 0, len(res.Hits))
	for _, h := range res.Hits {
		hit := &Hit{DocumentID: h.ID, Score: h.Score}
		if frags, ok := h.Fragments["content"]; ok && len(frags) > 0 {
			hit.Fragment = frags[0]
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Count returns the number of indexed documents.
func (i *Index) Count() (uint64, error) {
	return i.idx.DocCount()
}

// Close closes the underlying index.
func (i *Index) Close() error {
	return i.idx.Close()
}
