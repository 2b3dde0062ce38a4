package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/karte-health/karte/internal/models"
)

// SQLiteStorage implements Storage on a local SQLite database.
type SQLiteStorage struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteStorage opens (creating if needed) the database at dbPath and
// ensures the schema exists.
func NewSQLiteStorage(dbPath string, logger *zap.Logger) (*SQLiteStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStorage{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	logger.Info("storage initialized", zap.String("path", dbPath))
	return s, nil
}

func (s *SQLiteStorage) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		document_type TEXT NOT NULL DEFAULT 'unknown',
		date TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS analyses (
		document_id TEXT PRIMARY KEY REFERENCES documents(id) ON DELETE CASCADE,
		payload TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_type ON documents(document_type);
	CREATE INDEX IF NOT EXISTS idx_documents_date ON documents(date);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveDocument inserts or replaces a document.
func (s *SQLiteStorage) SaveDocument(ctx context.Context, doc *models.Document) error {
	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, title, content, document_type, date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			document_type = excluded.document_type,
			date = excluded.date,
			updated_at = excluded.updated_at`,
		doc.ID, doc.Title, doc.Content, string(doc.DocumentType), doc.Date,
		doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save document %s: %w", doc.ID, err)
	}
	return nil
}

// GetDocument fetches one document by id.
func (s *SQLiteStorage) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, content, document_type, date, created_at, updated_at
		FROM documents WHERE id = ?`, id)

	doc := &models.Document{}
	var docType string
	err := row.Scan(&doc.ID, &doc.Title, &doc.Content, &docType, &doc.Date,
		&doc.CreatedAt, &doc.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	doc.DocumentType = models.DocumentType(docType)
	return doc, nil
}

// ListDocuments returns documents newest-first.
func (s *SQLiteStorage) ListDocuments(ctx context.Context, limit, offset int) ([]*models.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, content, document_type, date, created_at, updated_at
		FROM documents ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		var docType string
		if err := rows.Scan(&doc.ID, &doc.Title, &doc.Content, &docType, &doc.Date,
			&doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		doc.DocumentType = models.DocumentType(docType)
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// DeleteDocument removes a document and its analysis.
func (s *SQLiteStorage) DeleteDocument(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM analyses WHERE document_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete analysis %s: %w", id, err)
	}
	return nil
}

// CountDocuments returns the total number of stored documents.
func (s *SQLiteStorage) CountDocuments(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return count, nil
}

// SaveAnalysis stores the JSON-encoded analysis for a document.
func (s *SQLiteStorage) SaveAnalysis(ctx context.Context, documentID string, analysis *models.Analysis) error {
	payload, err := json.Marshal(analysis)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analyses (document_id, payload, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			payload = excluded.payload,
			created_at = excluded.created_at`,
		documentID, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("save analysis %s: %w", documentID, err)
	}
	return nil
}

// GetAnalysis fetches the stored analysis for a document.
func (s *SQLiteStorage) GetAnalysis(ctx context.Context, documentID string) (*models.Analysis, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM analyses WHERE document_id = ?`, documentID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get analysis %s: %w", documentID, err)
	}
	analysis := &models.Analysis{}
	if err := json.Unmarshal([]byte(payload), analysis); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", documentID, err)
	}
	return analysis, nil
}

// Close closes the underlying database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
