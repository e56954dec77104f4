package content

import (
	"fmt"
	"io"
	"io/ioutil"

	"golang.org/x/exp/mmap"

	"github.com/devblok/koruasset/utility/kar"
)

// ArchivePack serves content from a memory mapped kar archive.
type ArchivePack struct {
	name    string
	mapped  *mmap.ReaderAt
	archive *kar.Archive
	files   []string
}

// OpenArchivePack maps the archive at path. Close releases the mapping.
func OpenArchivePack(path string) (*ArchivePack, error) {
	r, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	ar, err := kar.Open(r)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("content: %s: %w", path, err)
	}
	return &ArchivePack{
		name:    path,
		mapped:  r,
		archive: ar,
		files:   ar.Names(),
	}, nil
}

// Name implements Pack.
func (a *ArchivePack) Name() string {
	return a.name
}

// Open implements Pack.
func (a *ArchivePack) Open(rel string) (io.ReadCloser, error) {
	f, err := a.archive.Open(Clean(rel))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, rel)
	}
	return ioutil.NopCloser(f), nil
}

// Stat implements Pack.
func (a *ArchivePack) Stat(rel string) bool {
	_, ok := a.archive.Stat(Clean(rel))
	return ok
}

// List implements Pack.
func (a *ArchivePack) List(dir string) ([]string, error) {
	return children(a.files, dir), nil
}

// Close unmaps the archive.
func (a *ArchivePack) Close() error {
	return a.mapped.Close()
}
