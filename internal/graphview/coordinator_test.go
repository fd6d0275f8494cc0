package graphview

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/starford/othala/internal/graph"
	"github.com/starford/othala/internal/index"
)

// fakeSurface records posted messages in order.
type fakeSurface struct {
	mu     sync.Mutex
	posts  []OutboundMessage
	closed bool
}

func (f *fakeSurface) Post(msg OutboundMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.posts = append(f.posts, msg)
	}
}

func (f *fakeSurface) Alive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.closed
}

func (f *fakeSurface) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSurface) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.posts))
	for i, m := range f.posts {
		out[i] = m.Type
	}
	return out
}

type fakeSource struct {
	nodes map[string]string // path -> id
}

func (f *fakeSource) GraphSnapshot(context.Context) (*graph.Snapshot, error) {
	return &graph.Snapshot{
		NodeInfo: map[string]graph.Node{"a.md": {ID: "a.md"}},
		Edges:    map[graph.Edge]struct{}{},
	}, nil
}

func (f *fakeSource) ResolveNode(path string) (string, bool) {
	id, ok := f.nodes[path]
	return id, ok
}

type fakeStyle struct{ v any }

func (f fakeStyle) Style() any { return f.v }

type fakeNavigator struct {
	mu     sync.Mutex
	opened []string
}

func (f *fakeNavigator) OpenNote(_ context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, path)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCoordinator(src GraphSource) (*Coordinator, *index.Notifier, *fakeNavigator) {
	n := index.NewNotifier()
	nav := &fakeNavigator{}
	co := NewCoordinator(src, fakeStyle{v: map[string]any{"background": "#111"}}, nav, n, testLogger())
	return co, n, nav
}

func TestHandshake_StyleBeforeGraph(t *testing.T) {
	co, _, _ := newTestCoordinator(&fakeSource{})
	s := &fakeSurface{}
	if err := co.Attach(s); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	co.HandleInbound(context.Background(), s, []byte(`{"type":"webviewDidLoad"}`))

	got := s.types()
	want := []string{MsgDidUpdateStyle, MsgDidUpdateGraphData}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("posts = %v, want %v", got, want)
	}
}

func TestAttach_SecondSurfaceRejected(t *testing.T) {
	co, _, _ := newTestCoordinator(&fakeSource{})
	first := &fakeSurface{}
	if err := co.Attach(first); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if err := co.Attach(&fakeSurface{}); err != ErrSurfaceOpen {
		t.Errorf("second Attach err = %v, want ErrSurfaceOpen", err)
	}
	if !co.Open() {
		t.Error("first surface should still be open")
	}
}

func TestDetach_StopsPushes(t *testing.T) {
	co, notifier, _ := newTestCoordinator(&fakeSource{})
	s := &fakeSurface{}
	if err := co.Attach(s); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	if notifier.Len() != 1 {
		t.Fatalf("subscriptions = %d, want 1", notifier.Len())
	}

	co.Detach(s)

	if notifier.Len() != 0 {
		t.Errorf("subscriptions = %d after detach, want 0", notifier.Len())
	}
	if co.Open() {
		t.Error("coordinator should be closed")
	}

	// A change after detach must not reach the old surface.
	notifier.Notify("update", "a.md")
	if n := len(s.types()); n != 0 {
		t.Errorf("posts after detach = %d, want 0", n)
	}
}

func TestDetach_WrongSurfaceNoOp(t *testing.T) {
	co, notifier, _ := newTestCoordinator(&fakeSource{})
	current := &fakeSurface{}
	if err := co.Attach(current); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	co.Detach(&fakeSurface{})

	if !co.Open() {
		t.Error("current surface should survive a stranger's detach")
	}
	if notifier.Len() != 1 {
		t.Errorf("subscriptions = %d, want 1", notifier.Len())
	}
}

func TestIndexChange_PushesFreshSnapshot(t *testing.T) {
	co, notifier, _ := newTestCoordinator(&fakeSource{})
	s := &fakeSurface{}
	if err := co.Attach(s); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	notifier.Notify("update", "a.md")

	got := s.types()
	if len(got) != 1 || got[0] != MsgDidUpdateGraphData {
		t.Errorf("posts = %v, want one graph update", got)
	}
}

func TestHandleInbound_SelectNavigates(t *testing.T) {
	src := &fakeSource{nodes: map[string]string{"a.md": "a.md"}}
	co, _, nav := newTestCoordinator(src)
	s := &fakeSurface{}
	if err := co.Attach(s); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	co.HandleInbound(context.Background(), s, []byte(`{"type":"webviewDidSelectNode","payload":"a.md"}`))

	if len(nav.opened) != 1 || nav.opened[0] != "a.md" {
		t.Errorf("opened = %v, want [a.md]", nav.opened)
	}
}

func TestHandleInbound_UnresolvableSelectDropped(t *testing.T) {
	co, _, nav := newTestCoordinator(&fakeSource{})
	s := &fakeSurface{}
	if err := co.Attach(s); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	co.HandleInbound(context.Background(), s, []byte(`{"type":"webviewDidSelectNode","payload":"ghost"}`))

	if len(nav.opened) != 0 {
		t.Errorf("opened = %v, want none", nav.opened)
	}
}

func TestHandleInbound_UnknownTypeIgnored(t *testing.T) {
	co, _, _ := newTestCoordinator(&fakeSource{})
	s := &fakeSurface{}
	if err := co.Attach(s); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	co.HandleInbound(context.Background(), s, []byte(`{"type":"somethingNew","payload":1}`))
	co.HandleInbound(context.Background(), s, []byte(`{"type":"error","payload":"boom"}`))

	if n := len(s.types()); n != 0 {
		t.Errorf("posts = %d, want 0 (unknown and error frames are inert)", n)
	}
	if !co.Open() {
		t.Error("error frame must not tear the surface down")
	}
}

func TestPostSelect_ClosedSurface(t *testing.T) {
	co, _, _ := newTestCoordinator(&fakeSource{})
	if co.PostSelect("a.md") {
		t.Error("PostSelect with no surface should report false")
	}

	s := &fakeSurface{}
	if err := co.Attach(s); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	co.Detach(s)
	if co.PostSelect("a.md") {
		t.Error("PostSelect after detach should report false")
	}
}
