package graphview

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/starford/othala/internal/graph"
	"github.com/starford/othala/internal/index"
)

// ErrSurfaceOpen is returned when a second surface tries to attach while one
// is already live.
var ErrSurfaceOpen = errors.New("graphview: a surface is already attached")

// GraphSource produces snapshots and node lookups from the live index.
type GraphSource interface {
	// GraphSnapshot rebuilds the full graph.
	GraphSnapshot(ctx context.Context) (*graph.Snapshot, error)
	// ResolveNode maps a vault path to its node id; ok is false when the
	// path is not indexed.
	ResolveNode(path string) (id string, ok bool)
}

// StyleSource yields the current style configuration. The value is opaque
// here; only the rendering surface interprets its shape.
type StyleSource interface {
	Style() any
}

// Navigator opens a note in the editor when the surface selects it.
type Navigator interface {
	OpenNote(ctx context.Context, path string) error
}

// Coordinator owns the lifecycle of at most one rendering surface:
// Closed → Open on attach, Open → Closed when the surface goes away. While
// open it holds the single live subscription to index change notifications
// and pushes a fresh full snapshot on every change.
type Coordinator struct {
	src      GraphSource
	style    StyleSource
	navigate Navigator
	notifier *index.Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	surface Surface
	sub     *index.Subscription
}

// NewCoordinator creates a coordinator in the Closed state.
func NewCoordinator(src GraphSource, style StyleSource, nav Navigator, notifier *index.Notifier, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		src:      src,
		style:    style,
		navigate: nav,
		notifier: notifier,
		logger:   logger,
	}
}

// Open reports whether a surface is currently attached. A "show graph"
// request while open is a focus, not a second instance.
func (c *Coordinator) Open() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.surface != nil && c.surface.Alive()
}

// Attach transitions Closed → Open with the given surface and subscribes to
// index change notifications. Attaching while already open is rejected; the
// existing instance keeps its one subscription.
func (c *Coordinator) Attach(s Surface) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.surface != nil && c.surface.Alive() {
		return ErrSurfaceOpen
	}
	c.dropSubscriptionLocked()

	c.surface = s
	c.sub = c.notifier.Subscribe(func(kind, path string) {
		c.onIndexChange(kind, path)
	})
	c.logger.Info("coordinator: surface attached")
	return nil
}

// Detach transitions Open → Closed for the given surface: the change
// subscription is disposed and no further pushes happen. Detaching a
// surface that is not the current one (or detaching twice) is a no-op.
func (c *Coordinator) Detach(s Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.surface != s {
		return
	}
	c.dropSubscriptionLocked()
	c.surface = nil
	s.Close()
	c.logger.Info("coordinator: surface detached")
}

func (c *Coordinator) dropSubscriptionLocked() {
	if c.sub != nil {
		c.sub.Dispose()
		c.sub = nil
	}
}

// HandleInbound dispatches one surface frame. Unknown message types are
// ignored; error reports are logged and never tear the channel down.
func (c *Coordinator) HandleInbound(ctx context.Context, s Surface, raw []byte) {
	msg, err := DecodeInbound(raw)
	if err != nil {
		c.logger.Warn("coordinator: bad inbound frame", slog.String("error", err.Error()))
		return
	}

	switch msg.Type {
	case MsgWebviewDidLoad:
		// Style first, so the first graph paint is already styled.
		c.PushStyle()
		c.PushGraph(ctx)

	case MsgWebviewDidSelectNode:
		var id string
		if err := json.Unmarshal(msg.Payload, &id); err != nil {
			c.logger.Warn("coordinator: bad select payload", slog.String("error", err.Error()))
			return
		}
		c.openNode(ctx, id)

	case MsgError:
		c.logger.Error("coordinator: surface reported error", slog.String("payload", string(msg.Payload)))

	default:
		c.logger.Debug("coordinator: ignoring unknown inbound message", slog.String("type", msg.Type))
	}
}

// openNode navigates the editor to a selected node. Ids that no longer
// resolve (deleted files, placeholders) are dropped silently.
func (c *Coordinator) openNode(ctx context.Context, id string) {
	path, ok := c.src.ResolveNode(id)
	if !ok {
		c.logger.Debug("coordinator: selected node not resolvable", slog.String("id", id))
		return
	}
	if err := c.navigate.OpenNote(ctx, path); err != nil {
		c.logger.Warn("coordinator: navigation failed",
			slog.String("path", path), slog.String("error", err.Error()))
	}
}

// onIndexChange rebuilds and pushes the full snapshot. Runs on the
// notifier's goroutine; the subscription is disposed before detach
// completes, so a closed coordinator never pushes.
func (c *Coordinator) onIndexChange(kind, path string) {
	c.logger.Debug("coordinator: index changed", slog.String("kind", kind), slog.String("path", path))
	c.PushGraph(context.Background())
}

// PushGraph builds a fresh snapshot and ships it. No-op when closed.
func (c *Coordinator) PushGraph(ctx context.Context) {
	c.mu.Lock()
	s := c.surface
	c.mu.Unlock()
	if s == nil || !s.Alive() {
		return
	}

	snap, err := c.src.GraphSnapshot(ctx)
	if err != nil {
		c.logger.Error("coordinator: snapshot build failed", slog.String("error", err.Error()))
		return
	}
	s.Post(GraphMessage(snap))
}

// PushStyle ships the current style configuration unconditionally (no
// diffing against the previous value). No-op when closed.
func (c *Coordinator) PushStyle() {
	c.mu.Lock()
	s := c.surface
	c.mu.Unlock()
	if s == nil || !s.Alive() {
		return
	}
	s.Post(StyleMessage(c.style.Style()))
}

// PostSelect ships a select-node instruction and reports whether a live
// surface accepted it.
func (c *Coordinator) PostSelect(id string) bool {
	c.mu.Lock()
	s := c.surface
	c.mu.Unlock()
	if s == nil || !s.Alive() {
		return false
	}
	s.Post(SelectMessage(id))
	return true
}
