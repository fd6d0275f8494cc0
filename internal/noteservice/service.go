// Package noteservice coordinates storage and index operations for the API,
// the MCP server, and the graph view.
package noteservice

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/checksum"
	"github.com/starford/othala/internal/graph"
	"github.com/starford/othala/internal/index"
	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/parser"
	"github.com/starford/othala/internal/storage"
)

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	Path        string         `json:"path"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	Checksum    string         `json:"checksum"`
	Tags        []string       `json:"tags"`
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Backlinks   []string       `json:"backlinks"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	Path      string    `json:"path"`
	Kind      string    `json:"kind"`
	Title     string    `json:"title"`
	Checksum  string    `json:"checksum"`
	Tags      []string  `json:"tags"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Service coordinates storage and index operations.
type Service struct {
	store   storage.Provider
	db      *index.DB
	builder *graph.Builder
}

// NewService creates a new note service. builder carries the graph
// classification and labeling configuration.
func NewService(store storage.Provider, db *index.DB, builder *graph.Builder) *Service {
	return &Service{store: store, db: db, builder: builder}
}

// GetNote reads a note from storage, parses it, and enriches with backlinks.
func (s *Service) GetNote(_ context.Context, path string) (*NoteDetail, error) {
	data, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	return s.buildNoteDetail(path, data)
}

// CreateNote writes a new note and indexes it.
func (s *Service) CreateNote(_ context.Context, path string, content []byte) (*NoteDetail, error) {
	if _, err := s.store.Read(path); err == nil {
		return nil, apperr.ErrAlreadyExists
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildNoteDetail(path, content)
}

// UpdateNote writes updated content with optimistic concurrency.
func (s *Service) UpdateNote(_ context.Context, path string, content []byte, ifMatch string) (*NoteDetail, error) {
	existing, err := s.store.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, err
	}
	if ifMatch != "" && ifMatch != checksum.Sum(existing) {
		return nil, apperr.ErrConflict
	}
	if err := s.store.Write(path, content); err != nil {
		return nil, err
	}
	if err := s.IndexFile(path, content); err != nil {
		return nil, err
	}
	return s.buildNoteDetail(path, content)
}

// DeleteNote removes a note from storage and index.
func (s *Service) DeleteNote(_ context.Context, path string) error {
	if err := s.store.Delete(path); err != nil {
		return err
	}
	return s.db.DeleteResource(models.NormalizePath(path))
}

// ListNotes returns paginated resources with optional tag filter.
func (s *Service) ListNotes(_ context.Context, limit, offset int, tag, sort string) ([]NoteListItem, int, error) {
	rows, total, err := s.db.ListResources(limit, offset, tag, sort)
	if err != nil {
		return nil, 0, err
	}
	items := make([]NoteListItem, len(rows))
	for i, r := range rows {
		items[i] = NoteListItem{
			Path:      r.Path,
			Kind:      r.Kind,
			Title:     r.Title,
			Checksum:  r.Checksum,
			Tags:      nonNilSlice(r.Tags),
			UpdatedAt: r.UpdatedAt,
		}
	}
	return items, total, nil
}

// Search delegates full-text search to the index.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	return s.db.Search(query, limit)
}

// Backlinks returns all resource paths that link to the given target.
func (s *Service) Backlinks(_ context.Context, target string) ([]string, error) {
	return s.db.Backlinks(target)
}

// GraphSnapshot rebuilds the full graph from the live index.
func (s *Service) GraphSnapshot(_ context.Context) (*graph.Snapshot, error) {
	rows, err := s.db.Resources()
	if err != nil {
		return nil, err
	}
	conns, err := s.db.Connections()
	if err != nil {
		return nil, err
	}

	resources := make([]models.Resource, len(rows))
	for i, r := range rows {
		resources[i] = models.Resource{
			Path:       r.Path,
			Kind:       r.Kind,
			Title:      r.Title,
			Type:       r.Type,
			Tags:       r.Tags,
			Properties: r.Props,
			Checksum:   r.Checksum,
			UpdatedAt:  r.UpdatedAt,
		}
	}
	return s.builder.Build(resources, conns), nil
}

// ResolveNode maps a vault path to its graph node id with a fresh lookup
// against the live index. ok is false when the path is not indexed.
func (s *Service) ResolveNode(path string) (string, bool) {
	row, err := s.db.GetResource(models.NormalizePath(path))
	if err != nil || row == nil {
		return "", false
	}
	return row.Path, true
}

// IndexFile parses data and upserts it into the index.
// Exported so that sync and watcher can reuse it.
func (s *Service) IndexFile(path string, data []byte) error {
	path = models.NormalizePath(path)
	cs := checksum.Sum(data)

	if storage.KindOf(path) != models.KindNote {
		return s.db.UpsertResource(index.ResourceRow{
			Path:      path,
			Kind:      models.KindAttachment,
			Title:     models.Basename(path),
			Checksum:  cs,
			UpdatedAt: time.Now(),
		}, "", nil)
	}

	res, err := parser.Parse(data)
	if err != nil {
		return err
	}
	return s.db.UpsertResource(index.ResourceRow{
		Path:      path,
		Kind:      models.KindNote,
		Title:     res.Title,
		Type:      res.Type,
		Checksum:  cs,
		Tags:      nonNilSlice(res.Tags),
		Props:     res.Frontmatter,
		UpdatedAt: time.Now(),
	}, res.Body, res.Links)
}

// buildNoteDetail constructs a NoteDetail from raw data without re-reading the file.
func (s *Service) buildNoteDetail(path string, data []byte) (*NoteDetail, error) {
	res, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}
	bl, err := s.db.Backlinks(models.NormalizePath(path))
	if err != nil {
		return nil, err
	}
	return &NoteDetail{
		Path:        models.NormalizePath(path),
		Title:       res.Title,
		Content:     string(data),
		Checksum:    checksum.Sum(data),
		Tags:        nonNilSlice(res.Tags),
		Frontmatter: res.Frontmatter,
		Backlinks:   nonNilSlice(bl),
		UpdatedAt:   time.Now(),
	}, nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
