package content

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
)

// DirPack serves content from a directory on disk.
type DirPack struct {
	root string
}

// NewDirPack returns a pack rooted at root, which must be a directory.
func NewDirPack(root string) (*DirPack, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content: %s is not a directory", root)
	}
	return &DirPack{root: abs}, nil
}

// Root returns the absolute pack directory.
func (d *DirPack) Root() string {
	return d.root
}

// Name implements Pack.
func (d *DirPack) Name() string {
	return d.root
}

func (d *DirPack) path(rel string) string {
	return filepath.Join(d.root, filepath.FromSlash(Clean(rel)))
}

// Open implements Pack.
func (d *DirPack) Open(rel string) (io.ReadCloser, error) {
	f, err := os.Open(d.path(rel))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, rel)
	}
	return f, err
}

// Stat implements Pack. Only regular files count.
func (d *DirPack) Stat(rel string) bool {
	info, err := os.Stat(d.path(rel))
	return err == nil && !info.IsDir()
}

// List implements Pack.
func (d *DirPack) List(dir string) ([]string, error) {
	f, err := os.Open(d.path(dir))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
