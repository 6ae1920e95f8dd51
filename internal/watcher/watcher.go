// Package watcher keeps a directory indexed: files are ingested once when they appear and their documents are
// deleted when they disappear. Edits to an already indexed file are not re-indexed.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/domain"
	domdoc "github.com/kailas-cloud/docdex/internal/domain/document"
	"github.com/kailas-cloud/docdex/internal/extract"
	ingestuc "github.com/kailas-cloud/docdex/internal/usecase/ingest"
)

// DefaultDebounce is how long a path must stay quiet before its change is applied.
const DefaultDebounce = 500 * time.Millisecond

// Ingester indexes one upload.
type Ingester interface {
	Ingest(ctx context.Context, up ingestuc.Upload) (domdoc.Document, error)
}

// Remover deletes a document and its chunks.
type Remover interface {
	Delete(ctx context.Context, id string) error
}

// Action is what the watcher did for a path.
type Action string

// Actions.
const (
	ActionIngested Action = "ingested"
	ActionDeleted  Action = "deleted"
)

// Result reports one applied change.
type Result struct {
	Path       string
	Action     Action
	DocumentID string
	Status     domdoc.Status
	ChunkCount int
	Err        error
}

type change int

const (
	changeNone change = iota
	changeAdd
	changeRemove
)

type pendingChange struct {
	change change
	at     time.Time
}

// Watcher maps files of one directory (non-recursive) to documents.
type Watcher struct {
	dir      string
	ingester Ingester
	remover  Remover
	logger   *zap.Logger
	owner    string
	debounce time.Duration
	onResult func(Result)

	mu      sync.Mutex
	tracked map[string]string // path -> document id
}

// New creates a watcher for dir.
func New(dir string, ingester Ingester, remover Remover, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		dir:      filepath.Clean(dir),
		ingester: ingester,
		remover:  remover,
		logger:   logger,
		debounce: DefaultDebounce,
		onResult: func(Result) {},
		tracked:  make(map[string]string),
	}
}

// WithOwner records owner on every ingested document.
func (w *Watcher) WithOwner(owner string) *Watcher {
	w.owner = owner
	return w
}

// WithDebounce sets how long a path must stay quiet before its change is applied.
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// OnResult registers a callback invoked after every applied change.
func (w *Watcher) OnResult(fn func(Result)) *Watcher {
	if fn != nil {
		w.onResult = fn
	}
	return w
}

// Tracked returns the document id currently indexed for path.
func (w *Watcher) Tracked(path string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	id, ok := w.tracked[filepath.Clean(path)]
	return id, ok
}

// Scan ingests every supported file already present in the directory.
func (w *Watcher) Scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", w.dir, err)
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		if e.IsDir() || hidden(e.Name()) {
			continue
		}
		w.add(ctx, filepath.Join(w.dir, e.Name()))
	}
	return nil
}

// Run watches the directory until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("Watching directory", zap.String("dir", w.dir), zap.Duration("debounce", w.debounce))

	ticker := time.NewTicker(max(w.debounce/2, time.Millisecond))
	defer ticker.Stop()

	pending := make(map[string]pendingChange)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if c := classify(ev); c != changeNone {
				pending[filepath.Clean(ev.Name)] = pendingChange{change: c, at: time.Now()}
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", zap.Error(err))
		case now := <-ticker.C:
			for path, p := range pending {
				if now.Sub(p.at) < w.debounce {
					continue
				}
				w.apply(ctx, path, p.change)
				delete(pending, path)
			}
		}
	}
}

func (w *Watcher) apply(ctx context.Context, path string, c change) {
	switch c {
	case changeAdd:
		w.add(ctx, path)
	case changeRemove:
		w.remove(ctx, path)
	case changeNone:
	}
}

func (w *Watcher) add(ctx context.Context, path string) {
	if _, ok := w.Tracked(path); ok {
		w.logger.Debug("Ignoring change to indexed file", zap.String("path", path))
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return
	}
	name := filepath.Base(path)
	contentType := extract.ContentTypeFor(name)
	if !extract.Supported(contentType, name) {
		w.logger.Debug("Skipping unsupported file", zap.String("path", path))
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		w.onResult(Result{Path: path, Action: ActionIngested, Err: fmt.Errorf("read: %w", err)})
		return
	}

	doc, err := w.ingester.Ingest(ctx, ingestuc.Upload{
		Filename:    name,
		ContentType: contentType,
		Owner:       w.owner,
		Data:        data,
	})
	res := Result{Path: path, Action: ActionIngested, Err: err}
	if doc.ID() != "" {
		res.DocumentID, res.Status, res.ChunkCount = doc.ID(), doc.Status(), doc.ChunkCount()
		w.mu.Lock()
		w.tracked[path] = doc.ID()
		w.mu.Unlock()
	}
	if err != nil {
		w.logger.Warn("Watched file ingestion failed", zap.String("path", path), zap.Error(err))
	}
	w.onResult(res)
}

func (w *Watcher) remove(ctx context.Context, path string) {
	w.mu.Lock()
	id, ok := w.tracked[path]
	delete(w.tracked, path)
	w.mu.Unlock()
	if !ok {
		return
	}

	err := w.remover.Delete(ctx, id)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		err = nil
	}
	w.onResult(Result{Path: path, Action: ActionDeleted, DocumentID: id, Err: err})
}

func classify(ev fsnotify.Event) change {
	if hidden(filepath.Base(ev.Name)) {
		return changeNone
	}
	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		return changeRemove
	case ev.Has(fsnotify.Create), ev.Has(fsnotify.Write):
		return changeAdd
	default:
		return changeNone
	}
}

func hidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
