package noteservice

import (
	"context"
	"testing"

	"github.com/starford/othala/internal/graph"
	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/testutil"
)

func testService(t *testing.T) *Service {
	t.Helper()
	_, store := testutil.TestVault(t)
	db := testutil.TestDB(t)
	return NewService(store, db, &graph.Builder{TitleMaxLength: 24})
}

func TestResolveNode_FreshLookup(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, ok := svc.ResolveNode("a.md"); ok {
		t.Fatal("unindexed path should not resolve")
	}

	if _, err := svc.CreateNote(ctx, "a.md", []byte("---\ntitle: A\n---\nbody")); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	id, ok := svc.ResolveNode("a.md")
	if !ok || id != "a.md" {
		t.Errorf("ResolveNode = (%q, %v)", id, ok)
	}

	// Deletion must be visible on the next lookup.
	if err := svc.DeleteNote(ctx, "a.md"); err != nil {
		t.Fatalf("DeleteNote: %v", err)
	}
	if _, ok := svc.ResolveNode("a.md"); ok {
		t.Error("deleted path should no longer resolve")
	}
}

func TestIndexFile_Attachment(t *testing.T) {
	svc := testService(t)

	if err := svc.IndexFile("attachments/pic.png", []byte{0x89, 'P', 'N', 'G'}); err != nil {
		t.Fatalf("IndexFile: %v", err)
	}

	snap, err := svc.GraphSnapshot(context.Background())
	if err != nil {
		t.Fatalf("GraphSnapshot: %v", err)
	}
	n, ok := snap.NodeInfo["attachments/pic.png"]
	if !ok {
		t.Fatal("attachment missing from snapshot")
	}
	if n.Title != "pic" {
		t.Errorf("title = %q, want extensionless basename", n.Title)
	}
}

func TestGraphSnapshot_CarriesTypeAndLinks(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	if _, err := svc.CreateNote(ctx, "alice.md", []byte("---\ntitle: Alice\ntype: person\n---\nworks on [[roadmap]]")); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}

	snap, err := svc.GraphSnapshot(ctx)
	if err != nil {
		t.Fatalf("GraphSnapshot: %v", err)
	}
	n := snap.NodeInfo["alice.md"]
	if n.Type != "person" {
		t.Errorf("type = %q, want person", n.Type)
	}
	if _, ok := snap.Edges[graph.Edge{Source: "alice.md", Target: "roadmap"}]; !ok {
		t.Errorf("edges = %v, want link to roadmap placeholder", snap.Links())
	}
	if ph := snap.NodeInfo["roadmap"]; !ph.IsPlaceholder {
		t.Error("unresolved target should become a placeholder")
	}
}

func TestCreateNote_NormalizesPath(t *testing.T) {
	svc := testService(t)
	note, err := svc.CreateNote(context.Background(), "./sub/../sub/n.md", []byte("x"))
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if note.Path != models.NormalizePath("./sub/../sub/n.md") {
		t.Errorf("path = %q", note.Path)
	}
}
