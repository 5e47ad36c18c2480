package watcher

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher observes a directory and reports newly created or rewritten
// files whose base name matches one of the accept patterns.
type Watcher struct {
	dir     string
	accept  []string
	log     *zap.Logger
	watcher *fsnotify.Watcher
}

// New creates a watcher over dir. Events are filtered through the accept
// glob patterns, matched against the file base name.
func New(dir string, accept []string, log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &Watcher{
		dir:     dir,
		accept:  accept,
		log:     log,
		watcher: fsw,
	}, nil
}

// Run blocks until the context is cancelled, invoking handle for each
// accepted file event. Handler errors are logged and do not stop the
// watch loop.
func (w *Watcher) Run(ctx context.Context, handle func(path string) error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.accepts(event.Name) {
				continue
			}
			w.log.Info("detected document", zap.String("path", event.Name))
			if err := handle(event.Name); err != nil {
				w.log.Warn("failed to process document",
					zap.String("path", event.Name),
					zap.Error(err))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// Close releases the underlying file system watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) accepts(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.accept {
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}
