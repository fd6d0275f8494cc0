package graphview

import (
	"sync"
	"time"
)

// SelectionSync maps editor activity to select-node instructions. Lookups
// always go against the live index, not the last shipped snapshot.
type SelectionSync struct {
	co    *Coordinator
	src   GraphSource
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewSelectionSync creates a selection bridge. delay is how long a save
// event waits before the highlight is posted, giving the surface time to
// incorporate the changed content first.
func NewSelectionSync(co *Coordinator, src GraphSource, delay time.Duration) *SelectionSync {
	return &SelectionSync{co: co, src: src, delay: delay}
}

// ActiveDocumentChanged posts a select instruction for the document's node.
// Documents outside the workspace resolve to nothing and are dropped.
func (s *SelectionSync) ActiveDocumentChanged(path string) {
	if id, ok := s.src.ResolveNode(path); ok {
		s.co.PostSelect(id)
	}
}

// DocumentSaved schedules a deferred select instruction. Only the most
// recently scheduled save fires; earlier pending timers are stopped so a
// stale highlight never lands. The node is resolved when the timer fires,
// and the post silently no-ops if the surface has closed by then.
func (s *SelectionSync) DocumentSaved(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() {
		if id, ok := s.src.ResolveNode(path); ok {
			s.co.PostSelect(id)
		}
	})
}

// Stop cancels any pending deferred selection.
func (s *SelectionSync) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
