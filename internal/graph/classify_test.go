package graph

import "testing"

func TestNearestMarkedAncestor_DirectParent(t *testing.T) {
	fsq := fakeFS{"projects/.type": true}
	dir, ok := NearestMarkedAncestor(fsq, "projects/alpha.md", ".type")
	if !ok || dir != "projects" {
		t.Errorf("got (%q, %v), want (projects, true)", dir, ok)
	}
}

func TestNearestMarkedAncestor_NearestWins(t *testing.T) {
	fsq := fakeFS{
		"work/.type":          true,
		"work/meetings/.type": true,
	}
	dir, ok := NearestMarkedAncestor(fsq, "work/meetings/standup.md", ".type")
	if !ok || dir != "meetings" {
		t.Errorf("got (%q, %v), want innermost marked directory", dir, ok)
	}
}

func TestNearestMarkedAncestor_SkipsUnmarked(t *testing.T) {
	fsq := fakeFS{"work/.type": true}
	dir, ok := NearestMarkedAncestor(fsq, "work/meetings/standup.md", ".type")
	if !ok || dir != "work" {
		t.Errorf("got (%q, %v), want (work, true)", dir, ok)
	}
}

func TestNearestMarkedAncestor_RootNeverMatches(t *testing.T) {
	// A marker at the vault root does not name a type.
	fsq := fakeFS{".type": true}
	if _, ok := NearestMarkedAncestor(fsq, "note.md", ".type"); ok {
		t.Error("root-level marker should not classify")
	}
}

func TestNearestMarkedAncestor_EmptyMarker(t *testing.T) {
	fsq := fakeFS{"projects/": true}
	if _, ok := NearestMarkedAncestor(fsq, "projects/a.md", ""); ok {
		t.Error("empty marker should disable the scan")
	}
}
