// Package watcher monitors intake directories and submits newly written
// files for analysis.
package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/karte-health/karte/internal/models"
)

// settleDelay is how long a file must sit unchanged before intake; writers
// commonly produce several write events for one file.
const settleDelay = 500 * time.Millisecond

// SourceReader acquires text from a file path.
type SourceReader interface {
	Supported(path string) bool
	Read(path string) *models.SourceText
}

// Ingestor receives acquired text for analysis and storage.
type Ingestor interface {
	IngestText(ctx context.Context, title, text string) error
}

// Watcher watches intake directories with fsnotify and feeds new files
// through the reader into the ingestor.
type Watcher struct {
	dirs     []string
	reader   SourceReader
	ingestor Ingestor
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a directory watcher.
func New(dirs []string, reader SourceReader, ingestor Ingestor, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		dirs:     dirs,
		reader:   reader,
		ingestor: ingestor,
		logger:   logger,
		pending:  make(map[string]*time.Timer),
	}
}

// Run watches until ctx is cancelled. Directories that cannot be watched are
// logged and skipped; Run fails only when no directory can be watched.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	watched := 0
	for _, dir := range w.dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			w.logger.Warn("cannot create intake directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		if err := fsw.Add(dir); err != nil {
			w.logger.Warn("cannot watch intake directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		w.logger.Info("watching intake directory", zap.String("dir", dir))
		watched++
	}
	if watched == 0 && len(w.dirs) > 0 {
		return errors.New("no intake directory could be watched")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !w.reader.Supported(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		}
	}
}

// schedule (re)arms the settle timer for a path so a burst of write events
// produces one intake.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(settleDelay)
		return
	}
	w.pending[path] = time.AfterFunc(settleDelay, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()
		w.ingest(ctx, path)
	})
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	source := w.reader.Read(path)
	if !source.Success {
		w.logger.Warn("intake failed",
			zap.String("path", path), zap.String("reason", source.Error))
		return
	}
	title := filepath.Base(path)
	if err := w.ingestor.IngestText(ctx, title, source.Text); err != nil {
		w.logger.Error("ingest failed", zap.String("path", path), zap.Error(err))
		return
	}
	w.logger.Info("document ingested from intake directory",
		zap.String("path", path), zap.Int("bytes", len(source.Text)))
}

