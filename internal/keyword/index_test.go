package keyword

import (
	"path/filepath"
	"testing"

	"github.com/karte-health/karte/internal/models"
)

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := NewIndex(filepath.Join(t.TempDir(), "bleve"), nil)
	if err != nil {
		t.Fatalf("NewIndex() error = %v", err)
	}
	t.Cleanup(func() { idx.Close() })
	return idx
}

func labDoc(id string) *models.Document {
	return &models.Document{
		ID:           id,
		Title:        "Lab report",
		Content:      "Fasting glucose elevated at 140. Recheck scheduled.",
		DocumentType: models.DocTypeLabResult,
		Date:         "2024-01-05",
	}
}

func TestIndexAndSearch(t *testing.T) {
	idx := newTestIndex(t)

	if err := idx.IndexDocument(labDoc("doc-1")); err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}
	if err := idx.IndexDocument(&models.Document{
		ID:           "doc-2",
		Title:        "Imaging report",
		Content:      "Chest X-ray clear. No acute findings.",
		DocumentType: models.DocTypeImagingReport,
	}); err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}

	hits, err := idx.Search("glucose", "", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].DocumentID != "doc-1" {
		t.Errorf("Search(glucose) = %+v, want only doc-1", hits)
	}
}

func TestSearchDocumentTypeFilter(t *testing.T) {
	idx := newTestIndex(t)

	if err := idx.IndexDocument(labDoc("doc-1")); err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}
	if err := idx.IndexDocument(&models.Document{
		ID:           "doc-2",
		Title:        "Referral",
		Content:      "Referred for glucose management consultation.",
		DocumentType: models.DocTypeReferral,
	}); err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}

	hits, err := idx.Search("glucose", string(models.DocTypeReferral), 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 1 || hits[0].DocumentID != "doc-2" {
		t.Errorf("filtered search = %+v, want only doc-2", hits)
	}
}

func TestDeleteRemovesFromResults(t *testing.T) {
	idx := newTestIndex(t)

	if err := idx.IndexDocument(labDoc("doc-1")); err != nil {
		t.Fatalf("IndexDocument() error = %v", err)
	}
	if err := idx.Delete("doc-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	hits, err := idx.Search("glucose", "", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("Search() after delete = %+v, want empty", hits)
	}
	count, err := idx.Count()
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count() = %d, want 0", count)
	}
}
