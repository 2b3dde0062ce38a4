// Package intake acquires plain text from source files for analysis. PDF
// text extraction reads the embedded text layer only; scanned documents
// without one yield an unsuccessful result rather than an error.
package intake

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/karte-health/karte/internal/models"
)

// Reader turns supported source files into SourceText results.
type Reader struct {
	extensions map[string]struct{}
	logger     *zap.Logger
}

// NewReader creates a reader accepting the given extensions (".txt", ".md",
// ".pdf"). An empty list accepts all three.
func NewReader(extensions []string, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(extensions) == 0 {
		extensions = []string{".txt", ".md", ".pdf"}
	}
	set := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return &Reader{extensions: set, logger: logger}
}

// Supported reports whether path has an accepted extension.
func (r *Reader) Supported(path string) bool {
	_, ok := r.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Read extracts text from the file at path. Failures are reported inside the
// result rather than as an error so batch intake can continue past bad files.
func (r *Reader) Read(path string) *models.SourceText {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := r.extensions[ext]; !ok {
		return failure(fmt.Sprintf("unsupported file extension %q", ext))
	}

	switch ext {
	case ".pdf":
		return r.readPDF(path)
	default:
		return r.readPlain(path)
	}
}

func (r *Reader) readPlain(path string) *models.SourceText {
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("failed to read source file", zap.String("path", path), zap.Error(err))
		return failure(err.Error())
	}
	return &models.SourceText{
		Text:      string(data),
		PageCount: 1,
		Success:   true,
	}
}

func (r *Reader) readPDF(path string) *models.SourceText {
	f, reader, err := pdf.Open(path)
	if err != nil {
		r.logger.Warn("failed to open pdf", zap.String("path", path), zap.Error(err))
		return failure(err.Error())
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		r.logger.Warn("failed to extract pdf text", zap.String("path", path), zap.Error(err))
		return failure(err.Error())
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return failure(err.Error())
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return failure("pdf has no extractable text layer")
	}
	return &models.SourceText{
		Text:      text,
		PageCount: reader.NumPage(),
		Success:   true,
	}
}

func failure(msg string) *models.SourceText {
	return &models.SourceText{Success: false, Error: msg}
}
