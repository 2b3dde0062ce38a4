package intake

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadPlainText(t *testing.T) {
	r := NewReader(nil, nil)
	path := filepath.Join(t.TempDir(), "note.txt")
	if err := os.WriteFile(path, []byte("Glucose 105 mg/dL"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got := r.Read(path)
	if !got.Success {
		t.Fatalf("Read() failed: %s", got.Error)
	}
	if got.Text != "Glucose 105 mg/dL" {
		t.Errorf("Text = %q", got.Text)
	}
	if got.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1", got.PageCount)
	}
}

func TestReadUnsupportedExtension(t *testing.T) {
	r := NewReader(nil, nil)

	got := r.Read("document.docx")
	if got.Success {
		t.Error("Read() succeeded for unsupported extension")
	}
	if got.Error == "" {
		t.Error("Error is empty for unsupported extension")
	}
}

func TestReadMissingFile(t *testing.T) {
	r := NewReader(nil, nil)

	got := r.Read(filepath.Join(t.TempDir(), "absent.txt"))
	if got.Success {
		t.Error("Read() succeeded for missing file")
	}
}

func TestSupported(t *testing.T) {
	r := NewReader([]string{".txt"}, nil)

	tests := []struct {
		path string
		want bool
	}{
		{"a.txt", true},
		{"a.TXT", true},
		{"a.pdf", false},
		{"a", false},
	}
	for _, tt := range tests {
		if got := r.Supported(tt.path); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestReadCorruptPDF(t *testing.T) {
	r := NewReader(nil, nil)
	path := filepath.Join(t.TempDir(), "broken.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got := r.Read(path)
	if got.Success {
		t.Error("Read() succeeded for corrupt pdf")
	}
}
