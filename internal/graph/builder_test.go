package graph

import (
	"strings"
	"testing"

	"github.com/starford/othala/internal/models"
)

type fakeFS map[string]bool

func (f fakeFS) Exists(p string) bool { return f[p] }

func note(path, title string) models.Resource {
	return models.Resource{Path: path, Kind: models.KindNote, Title: title}
}

func TestBuild_NodesAndEdges(t *testing.T) {
	b := &Builder{}
	resources := []models.Resource{
		note("a.md", "A"),
		note("b.md", "B"),
	}
	conns := []models.Connection{
		{Source: "a.md", Target: "b.md"},
	}

	snap := b.Build(resources, conns)
	if len(snap.NodeInfo) != 2 {
		t.Fatalf("len(NodeInfo) = %d, want 2", len(snap.NodeInfo))
	}
	if len(snap.Edges) != 1 {
		t.Fatalf("len(Edges) = %d, want 1", len(snap.Edges))
	}
	if _, ok := snap.Edges[Edge{Source: "a.md", Target: "b.md"}]; !ok {
		t.Errorf("missing edge a.md -> b.md: %v", snap.Links())
	}
}

func TestBuild_DuplicateEdgesCollapse(t *testing.T) {
	b := &Builder{}
	resources := []models.Resource{note("a.md", "A"), note("b.md", "B")}
	conns := make([]models.Connection, 0, 5)
	for i := 0; i < 5; i++ {
		conns = append(conns, models.Connection{Source: "a.md", Target: "b.md"})
	}

	snap := b.Build(resources, conns)
	if len(snap.Edges) != 1 {
		t.Errorf("len(Edges) = %d, want 1 after dedup", len(snap.Edges))
	}
}

func TestBuild_PlaceholderSynthesizedOnce(t *testing.T) {
	b := &Builder{}
	resources := []models.Resource{
		note("a.md", "A"),
		note("b.md", "B"),
		note("c.md", "C"),
	}
	// Three notes all reference the same missing target.
	conns := []models.Connection{
		{Source: "a.md", Target: "ghost"},
		{Source: "b.md", Target: "ghost"},
		{Source: "c.md", Target: "ghost"},
	}

	snap := b.Build(resources, conns)
	if len(snap.NodeInfo) != 4 {
		t.Fatalf("len(NodeInfo) = %d, want 4 (3 notes + 1 placeholder)", len(snap.NodeInfo))
	}
	ph, ok := snap.NodeInfo["ghost"]
	if !ok {
		t.Fatal("placeholder node missing")
	}
	if !ph.IsPlaceholder || ph.Type != TypePlaceholder {
		t.Errorf("placeholder flags wrong: %+v", ph)
	}
	if ph.Title != "ghost" {
		t.Errorf("placeholder title = %q, want the raw target", ph.Title)
	}
	if len(snap.Edges) != 3 {
		t.Errorf("len(Edges) = %d, want 3", len(snap.Edges))
	}
}

func TestBuild_WikilinkResolution(t *testing.T) {
	b := &Builder{}
	resources := []models.Resource{
		note("projects/Roadmap.md", "Roadmap"),
		note("a.md", "A"),
	}
	conns := []models.Connection{
		{Source: "a.md", Target: "projects/Roadmap"}, // path without .md
		{Source: "a.md", Target: "roadmap"},          // bare name, case folded
	}

	snap := b.Build(resources, conns)
	if len(snap.NodeInfo) != 2 {
		t.Fatalf("len(NodeInfo) = %d, want 2 (no placeholders)", len(snap.NodeInfo))
	}
	want := Edge{Source: "a.md", Target: "projects/Roadmap.md"}
	if _, ok := snap.Edges[want]; !ok {
		t.Errorf("edges = %v, want both targets resolved to %s", snap.Links(), want.Target)
	}
	if len(snap.Edges) != 1 {
		t.Errorf("len(Edges) = %d, want 1 (both resolutions collapse)", len(snap.Edges))
	}
}

func TestClassify_ExplicitTypeWins(t *testing.T) {
	fsq := fakeFS{"projects/.type": true}
	b := &Builder{Marker: ".type", FS: fsq}
	r := note("projects/alpha.md", "Alpha")
	r.Type = "project"

	snap := b.Build([]models.Resource{r}, nil)
	if got := snap.NodeInfo["projects/alpha.md"].Type; got != "project" {
		t.Errorf("type = %q, want explicit %q", got, "project")
	}
}

func TestClassify_MarkedDirectory(t *testing.T) {
	fsq := fakeFS{"people/.type": true}
	b := &Builder{Marker: ".type", FS: fsq}

	snap := b.Build([]models.Resource{note("people/alice.md", "Alice")}, nil)
	if got := snap.NodeInfo["people/alice.md"].Type; got != "people" {
		t.Errorf("type = %q, want %q from marked directory", got, "people")
	}
}

func TestClassify_DefaultNote(t *testing.T) {
	b := &Builder{Marker: ".type", FS: fakeFS{}}
	snap := b.Build([]models.Resource{note("plain.md", "Plain")}, nil)
	if got := snap.NodeInfo["plain.md"].Type; got != TypeNote {
		t.Errorf("type = %q, want %q", got, TypeNote)
	}
}

func TestClassify_AttachmentLabeledNote(t *testing.T) {
	b := &Builder{}
	r := models.Resource{Path: "attachments/img.png", Kind: models.KindAttachment}
	snap := b.Build([]models.Resource{r}, nil)
	n := snap.NodeInfo["attachments/img.png"]
	if n.Type != TypeNote {
		t.Errorf("type = %q, want %q", n.Type, TypeNote)
	}
	if n.Title != "img" {
		t.Errorf("title = %q, want extensionless basename", n.Title)
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 30)
	got := Truncate(long, 24)
	if len([]rune(got)) != 27 {
		t.Errorf("len = %d, want 27 (24 runes + ellipsis)", len([]rune(got)))
	}
	if !strings.HasSuffix(got, Ellipsis) {
		t.Errorf("truncated title missing ellipsis: %q", got)
	}

	short := strings.Repeat("y", 20)
	if Truncate(short, 24) != short {
		t.Error("short title should pass through unchanged")
	}
	if Truncate(long, 0) != long {
		t.Error("max 0 should disable truncation")
	}

	// Rune-based, not byte-based.
	cyr := strings.Repeat("ж", 30)
	got = Truncate(cyr, 24)
	if len([]rune(got)) != 27 {
		t.Errorf("rune len = %d, want 27 for multibyte title", len([]rune(got)))
	}
}

func TestLabel_TitleFallback(t *testing.T) {
	b := &Builder{}
	snap := b.Build([]models.Resource{note("sub/untitled.md", "")}, nil)
	if got := snap.NodeInfo["sub/untitled.md"].Title; got != "untitled" {
		t.Errorf("title = %q, want basename fallback", got)
	}
}
