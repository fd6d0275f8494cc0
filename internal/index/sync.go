package index

import (
	"log/slog"
	"time"

	"github.com/starford/othala/internal/checksum"
	"github.com/starford/othala/internal/models"
	"github.com/starford/othala/internal/parser"
	"github.com/starford/othala/internal/storage"
)

// Sync walks the vault and brings the index up to date:
//   - new/changed resources are indexed (notes parsed, attachments as-is)
//   - resources removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteResource(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile indexes one vault file. Markdown notes are parsed for
// front-matter, links, and tags; any other file becomes an attachment row
// titled after its basename.
func indexFile(db *DB, path string, data []byte) error {
	path = models.NormalizePath(path)
	cs := checksum.Sum(data)

	if storage.KindOf(path) != models.KindNote {
		return db.UpsertResource(ResourceRow{
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
	return db.UpsertResource(ResourceRow{
		Path:      path,
		Kind:      models.KindNote,
		Title:     res.Title,
		Type:      res.Type,
		Checksum:  cs,
		Tags:      res.Tags,
		Props:     res.Frontmatter,
		UpdatedAt: time.Now(),
	}, res.Body, res.Links)
}
