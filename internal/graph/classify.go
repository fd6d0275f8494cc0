package graph

import (
	"os"
	"path"
	"path/filepath"
)

// FSQuery is the filesystem capability classification needs. It is injected
// so the ancestor scan can be tested against an in-memory fake.
type FSQuery interface {
	// Exists reports whether a vault-relative path exists.
	Exists(path string) bool
}

// DirFS implements FSQuery against a real directory root.
type DirFS struct {
	Root string
}

// Exists reports whether the vault-relative path exists under Root.
func (d DirFS) Exists(p string) bool {
	_, err := os.Stat(filepath.Join(d.Root, filepath.FromSlash(p)))
	return err == nil
}

// NearestMarkedAncestor walks upward from the directory containing p,
// directory by directory, looking for one that contains the marker file.
// It returns that directory's name, or ok=false when the scan reaches the
// vault root without a match. The vault root itself never names a type.
func NearestMarkedAncestor(fsq FSQuery, p, marker string) (string, bool) {
	if marker == "" {
		return "", false
	}
	dir := path.Dir(p)
	for dir != "." && dir != "/" && dir != "" {
		if fsq.Exists(path.Join(dir, marker)) {
			return path.Base(dir), true
		}
		dir = path.Dir(dir)
	}
	return "", false
}
