// Package content resolves content-relative paths across an ordered set
// of content packs. A pack added later overrides files of the same
// relative path in earlier packs.
package content

import (
	"errors"
	"io"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotExist is returned by packs for paths they do not hold.
var ErrNotExist = errors.New("content: file does not exist")

// Pack is one source of content files. Paths are slash separated and
// relative to the pack root.
type Pack interface {
	Name() string
	Open(rel string) (io.ReadCloser, error)
	Stat(rel string) bool
	List(dir string) ([]string, error)
}

// Clean normalizes a content-relative path. The root is "".
// Paths can not climb out of the root.
func Clean(rel string) string {
	return strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(rel)), "/")
}

// children returns the names of the immediate children of dir found in
// a flat list of file paths, directories included.
func children(files []string, dir string) []string {
	dir = Clean(dir)
	prefix := dir + "/"
	if dir == "" {
		prefix = ""
	}

	seen := make(map[string]struct{})
	for _, f := range files {
		if !strings.HasPrefix(f, prefix) {
			continue
		}
		rest := f[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i]
		}
		if rest != "" {
			seen[rest] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
