// Package storage persists documents and their analysis results.
package storage

import (
	"context"
	"errors"

	"github.com/karte-health/karte/internal/models"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

// Storage is the persistence contract for documents and analyses.
type Storage interface {
	SaveDocument(ctx context.Context, doc *models.Document) error
	GetDocument(ctx context.Context, id string) (*models.Document, error)
	ListDocuments(ctx context.Context, limit, offset int) ([]*models.Document, error)
	DeleteDocument(ctx context.Context, id string) error
	CountDocuments(ctx context.Context) (int, error)

	SaveAnalysis(ctx context.Context, documentID string, analysis *models.Analysis) error
	GetAnalysis(ctx context.Context, documentID string) (*models.Analysis, error)

	Close() error
}
