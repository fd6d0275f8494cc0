package index

import (
	"sync"
)

// Notifier fans index change events out to subscribers. Unlike ad-hoc
// callback wiring, every registration returns an explicit *Subscription
// handle; the subscriber releases it with Dispose, which is idempotent.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func(kind, path string)
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]func(kind, path string))}
}

// Subscription is a handle for one registered listener.
type Subscription struct {
	once sync.Once
	drop func()
}

// Dispose removes the listener. Safe to call more than once.
func (s *Subscription) Dispose() {
	s.once.Do(s.drop)
}

// Subscribe registers fn to be called on every index change.
func (n *Notifier) Subscribe(fn func(kind, path string)) *Subscription {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	n.subs[id] = fn
	return &Subscription{drop: func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}}
}

// Notify invokes every live subscriber with the change event.
func (n *Notifier) Notify(kind, path string) {
	n.mu.Lock()
	fns := make([]func(kind, path string), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(kind, path)
	}
}

// Len returns the number of live subscriptions.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
