// Package graph transforms an indexed vault into a renderable node/edge
// snapshot. Build is a pure function of its inputs; every trigger produces a
// fresh snapshot that fully replaces the previous one.
package graph

import (
	"strings"

	"github.com/starford/othala/internal/models"
)

// Node display types that are not taken verbatim from a resource.
const (
	TypeNote        = "note"
	TypePlaceholder = "placeholder"
)

// Ellipsis is appended to truncated node titles.
const Ellipsis = "..."

// Node is one graph vertex. ID is the resource's normalized path and is the
// only identity the rendering surface knows.
type Node struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	Properties    map[string]any `json:"properties"`
	Tags          []string       `json:"tags"`
	IsPlaceholder bool           `json:"isPlaceholder"`
}

// Edge is a directed (source, target) pair. Edges compare by value, so the
// edge set collapses duplicate connections between the same two ids.
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Snapshot is the full graph at one point in time. It is immutable once
// built; consumers must not rely on any iteration order.
type Snapshot struct {
	NodeInfo map[string]Node
	Edges    map[Edge]struct{}
}

// Links returns the edge set as a slice for transmission. Order is
// unspecified.
func (s *Snapshot) Links() []Edge {
	out := make([]Edge, 0, len(s.Edges))
	for e := range s.Edges {
		out = append(out, e)
	}
	return out
}

// Builder holds the classification and labeling knobs for Build.
type Builder struct {
	// TitleMaxLength caps node titles; zero or negative disables truncation.
	TitleMaxLength int
	// Marker is the file name whose presence marks an ancestor directory as
	// a type directory.
	Marker string
	// FS answers existence queries for the ancestor scan.
	FS FSQuery
}

// Build transforms the workspace resources and their extracted connections
// into a snapshot: one node per resource, one node per distinct unresolved
// target, and a value-deduplicated edge set whose endpoints all exist in
// NodeInfo.
func (b *Builder) Build(resources []models.Resource, conns []models.Connection) *Snapshot {
	snap := &Snapshot{
		NodeInfo: make(map[string]Node, len(resources)),
		Edges:    make(map[Edge]struct{}, len(conns)),
	}

	// Secondary lookup for wikilink-style targets written as a bare name.
	byName := make(map[string]string, len(resources))

	for _, r := range resources {
		id := models.NormalizePath(r.Path)
		snap.NodeInfo[id] = Node{
			ID:         id,
			Type:       b.classify(r),
			Title:      b.label(r),
			Properties: r.Properties,
			Tags:       r.Tags,
		}
		name := strings.ToLower(models.Basename(id))
		if _, taken := byName[name]; !taken {
			byName[name] = id
		}
	}

	synthesized := make(map[string]struct{})
	for _, c := range conns {
		source := models.NormalizePath(c.Source)
		target := resolveTarget(c.Target, snap.NodeInfo, byName)

		for _, id := range []string{source, target} {
			if _, ok := snap.NodeInfo[id]; ok {
				continue
			}
			if _, done := synthesized[id]; done {
				continue
			}
			synthesized[id] = struct{}{}
			snap.NodeInfo[id] = Node{
				ID:            id,
				Type:          TypePlaceholder,
				Title:         id,
				Properties:    map[string]any{},
				IsPlaceholder: true,
			}
		}

		snap.Edges[Edge{Source: source, Target: target}] = struct{}{}
	}

	return snap
}

// resolveTarget maps a raw connection target to a node id: an exact path
// match, the path with ".md" appended, or a bare-name match. Anything else
// keeps the normalized raw target as a placeholder id.
func resolveTarget(target string, nodes map[string]Node, byName map[string]string) string {
	t := models.NormalizePath(target)
	if _, ok := nodes[t]; ok {
		return t
	}
	if _, ok := nodes[t+".md"]; ok {
		return t + ".md"
	}
	if id, ok := byName[strings.ToLower(models.Basename(t))]; ok {
		return id
	}
	return t
}

// classify resolves a resource's display type. Precedence is fixed: non-note
// resources are labeled "note" (historical behavior, preserved as-is), an
// explicit front-matter type wins for notes, then the nearest marked
// ancestor directory, then the default.
func (b *Builder) classify(r models.Resource) string {
	if r.Kind != models.KindNote {
		return TypeNote
	}
	if r.Type != "" {
		return r.Type
	}
	if b.FS != nil {
		if dir, ok := NearestMarkedAncestor(b.FS, models.NormalizePath(r.Path), b.Marker); ok {
			return dir
		}
	}
	return TypeNote
}

// label derives a node title: the extracted title for notes (falling back to
// the basename when extraction yields nothing), the basename for anything
// else, then truncation.
func (b *Builder) label(r models.Resource) string {
	title := r.Title
	if r.Kind != models.KindNote || title == "" {
		title = models.Basename(r.Path)
	}
	return Truncate(title, b.TitleMaxLength)
}

// Truncate cuts title to max runes and appends the ellipsis marker. A max of
// zero or below passes the title through unchanged.
func Truncate(title string, max int) string {
	if max <= 0 {
		return title
	}
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}
	return string(runes[:max]) + Ellipsis
}
