// Package watcher re-dispatches images that appear in the input folder after
// the first pass.
package watcher

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"

	"github.com/nvr-ai/imgpad/images"
)

// DefaultDebounce is how long a path must stay quiet before it is handled.
const DefaultDebounce = 500 * time.Millisecond

// Handler is called once per settled image path.
type Handler func(ctx context.Context, path string)

// Watcher monitors one folder for new or rewritten images.
type Watcher struct {
	dir      string
	debounce time.Duration
	logger   *slog.Logger
}

// New returns a Watcher for dir. A zero debounce uses DefaultDebounce and a
// nil logger discards output.
func New(dir string, debounce time.Duration, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Watcher{dir: dir, debounce: debounce, logger: logger}
}

// Run watches the folder until ctx is cancelled and calls handle for every
// supported image that is created or written. Bursts of events on the same
// path are collapsed into one call.
//
// Arguments:
//   - ctx: Stops the watch when cancelled.
//   - handle: Processes one image path.
//
// Returns:
//   - error: nil on cancellation, or the reason the watch could not start.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return errors.Wrapf(err, "failed to watch folder %s", w.dir)
	}
	w.logger.Info("watching folder", "path", w.dir)

	var (
		mu      sync.Mutex
		pending = make(map[string]*time.Timer)
		wg      sync.WaitGroup
	)

	defer func() {
		mu.Lock()
		for path, timer := range pending {
			if timer.Stop() {
				wg.Done()
			}
			delete(pending, path)
		}
		mu.Unlock()
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}

			path := event.Name
			mu.Lock()
			if timer, exists := pending[path]; exists && timer.Stop() {
				wg.Done()
			}
			wg.Add(1)
			var timer *time.Timer
			timer = time.AfterFunc(w.debounce, func() {
				defer wg.Done()

				mu.Lock()
				if pending[path] == timer {
					delete(pending, path)
				}
				mu.Unlock()

				if ctx.Err() != nil {
					return
				}
				w.logger.Debug("image changed", "path", path)
				handle(ctx, path)
			})
			pending[path] = timer
			mu.Unlock()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// relevant keeps create and write events on supported, non-hidden images.
func relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return false
	}
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	return images.IsSupported(base)
}
