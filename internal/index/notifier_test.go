package index

import "testing"

func TestNotifier_SubscribeAndNotify(t *testing.T) {
	n := NewNotifier()
	var got []string
	sub := n.Subscribe(func(kind, path string) {
		got = append(got, kind+":"+path)
	})
	defer sub.Dispose()

	n.Notify("update", "a.md")
	n.Notify("delete", "b.md")

	if len(got) != 2 || got[0] != "update:a.md" || got[1] != "delete:b.md" {
		t.Errorf("events = %v", got)
	}
}

func TestNotifier_DisposeStopsDelivery(t *testing.T) {
	n := NewNotifier()
	calls := 0
	sub := n.Subscribe(func(string, string) { calls++ })

	n.Notify("update", "a.md")
	sub.Dispose()
	n.Notify("update", "a.md")

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if n.Len() != 0 {
		t.Errorf("Len = %d, want 0", n.Len())
	}
}

func TestNotifier_DisposeIdempotent(t *testing.T) {
	n := NewNotifier()
	sub := n.Subscribe(func(string, string) {})
	other := n.Subscribe(func(string, string) {})
	defer other.Dispose()

	sub.Dispose()
	sub.Dispose()
	sub.Dispose()

	if n.Len() != 1 {
		t.Errorf("Len = %d, want 1 (double dispose must not touch others)", n.Len())
	}
}

func TestNotifier_MultipleSubscribers(t *testing.T) {
	n := NewNotifier()
	a, b := 0, 0
	subA := n.Subscribe(func(string, string) { a++ })
	subB := n.Subscribe(func(string, string) { b++ })
	defer subA.Dispose()
	defer subB.Dispose()

	n.Notify("update", "x.md")
	if a != 1 || b != 1 {
		t.Errorf("a = %d, b = %d, want both 1", a, b)
	}
	if n.Len() != 2 {
		t.Errorf("Len = %d, want 2", n.Len())
	}
}
