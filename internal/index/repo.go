package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/othala/internal/models"
)

// ResourceRow represents a row in the resources table.
type ResourceRow struct {
	Path      string
	Kind      string
	Title     string
	Type      string
	Checksum  string
	Tags      []string
	Props     map[string]any
	UpdatedAt time.Time
}

// SearchResult represents one search hit.
type SearchResult struct {
	Path    string
	Title   string
	Snippet string
}

// UpsertResource inserts or replaces a resource, its FTS entry, and its
// outgoing links within a transaction.
func (db *DB) UpsertResource(r ResourceRow, body string, links []string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	tagsJSON, _ := json.Marshal(r.Tags)
	propsJSON, _ := json.Marshal(r.Props)

	_, err = tx.Exec(`
		INSERT INTO resources (path, kind, title, type, checksum, tags, props, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			kind       = excluded.kind,
			title      = excluded.title,
			type       = excluded.type,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			props      = excluded.props,
			body       = excluded.body,
			updated_at = excluded.updated_at
	`, r.Path, r.Kind, r.Title, r.Type, r.Checksum, string(tagsJSON), string(propsJSON), body, r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert resource: %w", err)
	}

	// FTS upsert (no-op when FTS5 tag is absent).
	if err := ftsUpsert(tx, r.Path, r.Title, body, r.Tags); err != nil {
		return err
	}

	// Replace links: delete old then bulk insert.
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, r.Path)
	if len(links) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO links (source, target) VALUES (?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare link insert: %w", err)
		}
		defer stmt.Close()
		for _, target := range links {
			if _, err := stmt.Exec(r.Path, target); err != nil {
				return fmt.Errorf("index: insert link: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteResource removes a resource, its FTS entry, and its outgoing links.
func (db *DB) DeleteResource(path string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, path)
	_, _ = tx.Exec(`DELETE FROM links WHERE source = ?`, path)
	_, _ = tx.Exec(`DELETE FROM resources WHERE path = ?`, path)

	return tx.Commit()
}

// GetResource returns one resource by its normalized path, or nil when the
// path is not indexed.
func (db *DB) GetResource(path string) (*ResourceRow, error) {
	row := db.conn.QueryRow(`
		SELECT path, kind, title, type, checksum, tags, props, updated_at
		FROM resources WHERE path = ?
	`, path)
	r, err := scanResource(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get resource: %w", err)
	}
	return r, nil
}

// Resources returns every indexed resource.
func (db *DB) Resources() ([]ResourceRow, error) {
	rows, err := db.conn.Query(`
		SELECT path, kind, title, type, checksum, tags, props, updated_at
		FROM resources
	`)
	if err != nil {
		return nil, fmt.Errorf("index: resources: %w", err)
	}
	defer rows.Close()

	var out []ResourceRow
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// ListResources returns a paginated resource listing with an optional tag
// filter. sort is one of "updated_at" (default), "title", "path".
func (db *DB) ListResources(limit, offset int, tag, sort string) ([]ResourceRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	order := "updated_at DESC"
	switch sort {
	case "title":
		order = "title ASC"
	case "path":
		order = "path ASC"
	}

	where := ""
	args := []any{}
	if tag != "" {
		// Tags are stored as a JSON array; a quoted-substring match is enough
		// for exact tag values.
		where = `WHERE tags LIKE ?`
		args = append(args, `%"`+tag+`"%`)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM resources `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count resources: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := db.conn.Query(`
		SELECT path, kind, title, type, checksum, tags, props, updated_at
		FROM resources `+where+` ORDER BY `+order+` LIMIT ? OFFSET ?
	`, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list resources: %w", err)
	}
	defer rows.Close()

	var out []ResourceRow
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *r)
	}
	return out, total, rows.Err()
}

// Connections returns every extracted link as raw (source, target) pairs.
// Targets are as-written in the source document and may not resolve to an
// indexed resource.
func (db *DB) Connections() ([]models.Connection, error) {
	rows, err := db.conn.Query(`SELECT source, target FROM links`)
	if err != nil {
		return nil, fmt.Errorf("index: connections: %w", err)
	}
	defer rows.Close()

	var out []models.Connection
	for rows.Next() {
		var c models.Connection
		if err := rows.Scan(&c.Source, &c.Target); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetChecksum returns the stored checksum for a resource, or empty string if not found.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM resources WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllPaths returns every indexed resource path.
func (db *DB) AllPaths() (map[string]struct{}, error) {
	rows, err := db.conn.Query(`SELECT path FROM resources`)
	if err != nil {
		return nil, fmt.Errorf("index: all paths: %w", err)
	}
	defer rows.Close()
	out := make(map[string]struct{})
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out[p] = struct{}{}
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every indexed resource.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM resources`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// Backlinks returns all resource paths that link to the given target.
func (db *DB) Backlinks(target string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT source FROM links WHERE target = ?`, target)
	if err != nil {
		return nil, fmt.Errorf("index: backlinks: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResource(s rowScanner) (*ResourceRow, error) {
	var r ResourceRow
	var tagsJSON, propsJSON string
	if err := s.Scan(&r.Path, &r.Kind, &r.Title, &r.Type, &r.Checksum, &tagsJSON, &propsJSON, &r.UpdatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(tagsJSON), &r.Tags)
	_ = json.Unmarshal([]byte(propsJSON), &r.Props)
	return &r, nil
}
