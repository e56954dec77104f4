package content

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/gobuffalo/packd"
	"github.com/gobuffalo/packr"
)

// BoxPack serves content compiled into the binary with packr. In
// development the box reads straight from its directory.
type BoxPack struct {
	name  string
	box   packr.Box
	files []string
}

// NewBoxPack wraps box. packr.NewBox has to be called by the package
// that owns the directory, so the box is passed in ready made.
func NewBoxPack(name string, box packr.Box) (*BoxPack, error) {
	b := &BoxPack{name: name, box: box}
	err := box.Walk(func(p string, f packd.File) error {
		b.files = append(b.files, Clean(p))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Name implements Pack.
func (b *BoxPack) Name() string {
	return b.name
}

// Open implements Pack.
func (b *BoxPack) Open(rel string) (io.ReadCloser, error) {
	data, err := b.box.Find(Clean(rel))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotExist, rel)
	}
	return ioutil.NopCloser(bytes.NewReader(data)), nil
}

// Stat implements Pack.
func (b *BoxPack) Stat(rel string) bool {
	return b.box.Has(Clean(rel))
}

// List implements Pack.
func (b *BoxPack) List(dir string) ([]string, error) {
	return children(b.files, dir), nil
}
