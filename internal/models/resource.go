// Package models defines the domain types for Othala.
package models

import (
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Resource kinds. Anything in the vault that is not a Markdown note is
// indexed as an attachment.
const (
	KindNote       = "note"
	KindAttachment = "attachment"
)

// Resource represents an indexed vault item: a parsed Markdown note or a
// binary attachment. Its Path (normalized, vault-relative) is the primary
// key everywhere, including the graph.
type Resource struct {
	Path       string         `json:"path"`
	Kind       string         `json:"kind"`
	Title      string         `json:"title,omitempty"`
	Type       string         `json:"type,omitempty"` // explicit front-matter type property
	Tags       []string       `json:"tags,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	Checksum   string         `json:"checksum"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// ResourceMetadata is a lightweight representation returned by list operations.
type ResourceMetadata struct {
	Path      string    `json:"path"`
	Kind      string    `json:"kind"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Connection represents a directed reference from one resource to another,
// as extracted from the source document. Target is the raw link target and
// may not correspond to an existing resource.
type Connection struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// NormalizePath canonicalizes a vault-relative path so it can serve as a
// stable identity: forward slashes, no leading "./", cleaned.
func NormalizePath(p string) string {
	p = filepath.ToSlash(p)
	p = path.Clean(p)
	p = strings.TrimPrefix(p, "./")
	if p == "." {
		return ""
	}
	return p
}

// Basename returns the file name of p without its extension, used as the
// display title for attachments.
func Basename(p string) string {
	base := path.Base(filepath.ToSlash(p))
	return strings.TrimSuffix(base, path.Ext(base))
}
