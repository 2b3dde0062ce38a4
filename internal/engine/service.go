package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/karte-health/karte/internal/crossref"
	"github.com/karte-health/karte/internal/keyword"
	"github.com/karte-health/karte/internal/models"
	"github.com/karte-health/karte/internal/storage"
	"github.com/karte-health/karte/pkg/utils"
)

// historyLimit caps how many stored documents feed trend analysis and
// cross-referencing per enhancement request.
const historyLimit = 200

// Service couples the analysis engine with persistence and full-text search.
type Service struct {
	engine  *Engine
	storage storage.Storage
	search  *keyword.Index
	logger  *zap.Logger
}

// NewService wires the service. search may be nil to run without full-text
// indexing.
func NewService(engine *Engine, store storage.Storage, search *keyword.Index, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: engine, storage: store, search: search, logger: logger}
}

// Ingest analyzes the input, persists the document with its classified type,
// stores the analysis, and indexes the document for search.
func (s *Service) Ingest(ctx context.Context, input models.DocumentInput) (*models.Document, *models.Analysis, error) {
	if strings.TrimSpace(input.Content) == "" {
		return nil, nil, fmt.Errorf("document content is empty")
	}

	id := input.ID
	if id == "" {
		id = uuid.New().String()
	}

	analysis, err := s.engine.Analyze(ctx, id, input.Content)
	if err != nil {
		return nil, nil, err
	}

	title := input.Title
	if title == "" {
		title = firstLine(input.Content)
	}
	date := input.Date
	if date == "" && len(analysis.Dates) > 0 {
		date = analysis.Dates[0].Date
	}

	doc := &models.Document{
		ID:           id,
		Title:        title,
		Content:      input.Content,
		DocumentType: analysis.DocumentType,
		Date:         date,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.storage.SaveDocument(ctx, doc); err != nil {
		return nil, nil, err
	}
	if err := s.storage.SaveAnalysis(ctx, id, analysis); err != nil {
		return nil, nil, err
	}
	if s.search != nil {
		if err := s.search.IndexDocument(doc); err != nil {
			s.logger.Warn("search indexing failed", zap.String("document_id", id), zap.Error(err))
		}
	}
	return doc, analysis, nil
}

// IngestText submits raw text under a title, generating the document id.
func (s *Service) IngestText(ctx context.Context, title, text string) error {
	_, _, err := s.Ingest(ctx, models.DocumentInput{Title: title, Content: text})
	return err
}

// Document fetches a stored document.
func (s *Service) Document(ctx context.Context, id string) (*models.Document, error) {
	return s.storage.GetDocument(ctx, id)
}

// Analysis fetches the stored analysis for a document.
func (s *Service) Analysis(ctx context.Context, id string) (*models.Analysis, error) {
	return s.storage.GetAnalysis(ctx, id)
}

// Delete removes a document from storage and the search index.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.storage.DeleteDocument(ctx, id); err != nil {
		return err
	}
	if s.search != nil {
		if err := s.search.Delete(id); err != nil {
			s.logger.Warn("search delete failed", zap.String("document_id", id), zap.Error(err))
		}
	}
	return nil
}

// Enhance runs the requested enhancements for a stored document, assembling
// the history and candidate records from the rest of the store.
func (s *Service) Enhance(ctx context.Context, documentID string, include []string) (*EnhanceResult, error) {
	doc, err := s.storage.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	req := EnhanceRequest{Text: doc.Content, Include: include}
	if wants(include, EnhanceTrends) || wants(include, EnhanceCrossReference) {
		others, err := s.otherDocuments(ctx, documentID)
		if err != nil {
			return nil, err
		}
		if wants(include, EnhanceTrends) {
			req.History = s.buildHistory(ctx, doc, others)
		}
		if wants(include, EnhanceCrossReference) {
			for _, other := range others {
				req.Records = append(req.Records, crossref.Record{
					DocumentID: other.ID,
					Text:       other.Content,
				})
			}
		}
	}
	return s.engine.Enhance(ctx, req)
}

// Search runs a full-text query over stored documents.
func (s *Service) Search(query, docType string, limit int) ([]*keyword.Hit, error) {
	if s.search == nil {
		return nil, fmt.Errorf("full-text search is not enabled")
	}
	return s.search.Search(query, docType, limit)
}

// Status summarizes the service's state.
type Status struct {
	StoredDocuments  int    `json:"stored_documents"`
	IndexedDocuments int    `json:"indexed_documents"`
	SearchDocuments  uint64 `json:"search_documents"`
}

// Status reports document counts across storage and indexes.
func (s *Service) Status(ctx context.Context) (*Status, error) {
	stored, err := s.storage.CountDocuments(ctx)
	if err != nil {
		return nil, err
	}
	st := &Status{
		StoredDocuments:  stored,
		IndexedDocuments: s.engine.IndexedDocuments(),
	}
	if s.search != nil {
		if n, err := s.search.Count(); err == nil {
			st.SearchDocuments = n
		}
	}
	return st, nil
}

func (s *Service) otherDocuments(ctx context.Context, excludeID string) ([]*models.Document, error) {
	docs, err := s.storage.ListDocuments(ctx, historyLimit, 0)
	if err != nil {
		return nil, err
	}
	others := docs[:0]
	for _, d := range docs {
		if d.ID != excludeID {
			others = append(others, d)
		}
	}
	return others, nil
}

// buildHistory extracts per-document findings for the target and its peers,
// dated by each document's clinical date.
func (s *Service) buildHistory(ctx context.Context, target *models.Document, others []*models.Document) []*models.DatedFindings {
	all := append([]*models.Document{target}, others...)
	history := make([]*models.DatedFindings, 0, len(all))
	for _, d := range all {
		date := d.Date
		if date == "" {
			date = d.CreatedAt.Format("2006-01-02")
		}
		history = append(history, &models.DatedFindings{
			DocumentID: d.ID,
			Date:       date,
			Findings:   s.engine.KeyFindings(ctx, d.Content),
		})
	}
	return history
}

func wants(include []string, name string) bool {
	for _, n := range include {
		if n == name {
			return true
		}
	}
	return false
}

func firstLine(text string) string {
	line := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}
	line = utils.Truncate(strings.TrimSpace(line), 80)
	if line == "" {
		line = "Untitled document"
	}
	return line
}
