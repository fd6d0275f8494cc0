package graphview

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StyleHolder is an atomically swappable style value. It satisfies
// StyleSource and is the hand-off point between the config reloader and the
// coordinator: reads are pass-through, no parsing or validation.
type StyleHolder struct {
	v atomic.Value
}

type styleBox struct{ style any }

// NewStyleHolder seeds the holder with the style loaded at startup.
func NewStyleHolder(style any) *StyleHolder {
	h := &StyleHolder{}
	h.Set(style)
	return h
}

// Set replaces the current style value.
func (h *StyleHolder) Set(style any) {
	h.v.Store(styleBox{style: style})
}

// Style returns the current style value.
func (h *StyleHolder) Style() any {
	return h.v.Load().(styleBox).style
}

// WatchConfigFile watches the configuration file and invokes onChange after
// each write, debounced so editor save sequences (write + rename) collapse
// into one reload. It blocks until ctx is cancelled.
func WatchConfigFile(ctx context.Context, path string, logger *slog.Logger, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory: editors commonly replace the file, which would
	// drop a watch on the file itself.
	dir := filepath.Dir(path)
	if err := w.Add(dir); err != nil {
		return err
	}
	base := filepath.Base(path)

	logger.Info("config watcher: started", slog.String("path", path))

	var debounce *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			logger.Info("config watcher: stopped")
			return nil

		case <-fire:
			onChange()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(200 * time.Millisecond)
				fire = debounce.C
			} else {
				debounce.Reset(200 * time.Millisecond)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("config watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
