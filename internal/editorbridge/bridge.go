// Package editorbridge relays navigation requests from the graph surface to
// editor integrations. The bridge records the most recent target and fans it
// out to registered listeners; editors either listen or poll.
package editorbridge

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Target is one navigation request.
type Target struct {
	Path string    `json:"path"`
	At   time.Time `json:"at"`
}

// Bridge holds the current navigation target.
type Bridge struct {
	logger *slog.Logger

	mu        sync.Mutex
	current   *Target
	listeners []func(Target)
}

// New creates an empty bridge.
func New(logger *slog.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OpenNote records path as the note the editor should open and notifies
// listeners. It satisfies the coordinator's Navigator dependency.
func (b *Bridge) OpenNote(_ context.Context, path string) error {
	t := Target{Path: path, At: time.Now()}

	b.mu.Lock()
	b.current = &t
	fns := make([]func(Target), len(b.listeners))
	copy(fns, b.listeners)
	b.mu.Unlock()

	b.logger.Info("editor: navigate", slog.String("path", path))
	for _, fn := range fns {
		fn(t)
	}
	return nil
}

// Current returns the most recent navigation target, or nil when none has
// been requested yet.
func (b *Bridge) Current() *Target {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.current == nil {
		return nil
	}
	t := *b.current
	return &t
}

// Listen registers fn to be called on every navigation request.
func (b *Bridge) Listen(fn func(Target)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners = append(b.listeners, fn)
}
