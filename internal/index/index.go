package index

import "github.com/starford/othala/internal/models"

// ResourceIndex defines the interface for resource indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type ResourceIndex interface {
	UpsertResource(r ResourceRow, body string, links []string) error
	DeleteResource(path string) error
	GetResource(path string) (*ResourceRow, error)
	GetChecksum(path string) (string, error)
	Resources() ([]ResourceRow, error)
	ListResources(limit, offset int, tag, sort string) ([]ResourceRow, int, error)
	Connections() ([]models.Connection, error)
	Search(query string, limit int) ([]SearchResult, error)
	Backlinks(target string) ([]string, error)
	AllPaths() (map[string]struct{}, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies ResourceIndex at compile time.
var _ ResourceIndex = (*DB)(nil)
