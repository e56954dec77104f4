package content

import (
	"fmt"
	"io"
	"io/ioutil"
	"sort"
	"sync"

	"github.com/devblok/koruasset/asset"
)

// Resolver stacks packs in the order they were added. It satisfies
// asset.Resolver and is safe for concurrent use.
type Resolver struct {
	mutex sync.RWMutex
	packs []Pack
}

// NewResolver returns a resolver over packs, the last one winning.
func NewResolver(packs ...Pack) *Resolver {
	return &Resolver{packs: packs}
}

// Add puts p on top of the stack.
func (r *Resolver) Add(p Pack) {
	r.mutex.Lock()
	r.packs = append(r.packs, p)
	r.mutex.Unlock()
}

// Packs returns the packs, lowest priority first.
func (r *Resolver) Packs() []Pack {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return append([]Pack(nil), r.packs...)
}

func (r *Resolver) owner(rel string) (Pack, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	for i := len(r.packs) - 1; i >= 0; i-- {
		if r.packs[i].Stat(rel) {
			return r.packs[i], true
		}
	}
	return nil, false
}

// Find returns "<pack>:<path>" for the pack that serves rel.
func (r *Resolver) Find(rel string) (string, error) {
	rel = Clean(rel)
	p, ok := r.owner(rel)
	if !ok {
		return "", fmt.Errorf("%w: %s", asset.ErrResourceNotFound, rel)
	}
	return p.Name() + ":" + rel, nil
}

// Open opens rel from the pack that serves it.
func (r *Resolver) Open(rel string) (io.ReadCloser, error) {
	rel = Clean(rel)
	p, ok := r.owner(rel)
	if !ok {
		return nil, fmt.Errorf("%w: %s", asset.ErrResourceNotFound, rel)
	}
	return p.Open(rel)
}

// ReadFile reads rel from the pack that serves it.
func (r *Resolver) ReadFile(rel string) ([]byte, error) {
	f, err := r.Open(rel)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ioutil.ReadAll(f)
}

// ListDirectory merges the entries of dir across packs. A directory no
// pack holds is an error.
func (r *Resolver) ListDirectory(dir string) ([]string, error) {
	dir = Clean(dir)
	seen := make(map[string]struct{})
	found := false

	for _, p := range r.Packs() {
		names, err := p.List(dir)
		if err != nil {
			return nil, fmt.Errorf("content: listing %s in %s: %w", dir, p.Name(), err)
		}
		if names == nil {
			continue
		}
		found = true
		for _, name := range names {
			seen[name] = struct{}{}
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: directory %s", asset.ErrResourceNotFound, dir)
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
