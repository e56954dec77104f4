package asset

import (
	"sort"
	"strings"

	"github.com/devblok/koruasset/gfx"
)

// Separator namespaces atlas entries under their atlas alias.
const Separator = "/"

// Join builds the alias of an entry inside the atlas stored as parent.
func Join(parent, entry string) string {
	return parent + Separator + entry
}

// Split is the inverse of Join. The entry is taken after the last separator.
func Split(alias string) (parent, entry string, ok bool) {
	i := strings.LastIndex(alias, Separator)
	if i < 0 {
		return "", alias, false
	}
	return alias[:i], alias[i+1:], true
}

type key struct {
	kind  Kind
	alias string
}

// Store holds committed assets by kind and alias. It belongs to the
// goroutine applying commits and is not safe for concurrent use.
type Store struct {
	values map[key]interface{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{values: make(map[key]interface{})}
}

// Put stores value, replacing what was there.
func (s *Store) Put(kind Kind, alias string, value interface{}) {
	s.values[key{kind, alias}] = value
}

// Get returns the value stored under kind and alias.
func (s *Store) Get(kind Kind, alias string) (interface{}, bool) {
	v, ok := s.values[key{kind, alias}]
	return v, ok
}

// Delete removes a value.
func (s *Store) Delete(kind Kind, alias string) {
	delete(s.values, key{kind, alias})
}

// Len returns the number of stored values.
func (s *Store) Len() int {
	return len(s.values)
}

// Aliases lists the aliases stored under kind, sorted.
func (s *Store) Aliases(kind Kind) []string {
	var aliases []string
	for k := range s.values {
		if k.kind == kind {
			aliases = append(aliases, k.alias)
		}
	}
	sort.Strings(aliases)
	return aliases
}

// Lookup returns the value under kind and alias if it has type T.
func Lookup[T any](s *Store, kind Kind, alias string) (T, bool) {
	v, ok := s.Get(kind, alias)
	if !ok {
		var zero T
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}

type undo struct {
	key  key
	prev interface{}
	had  bool
}

// Batch records what a load pass changed so it can be rolled back.
type Batch struct {
	store    *Store
	uploader gfx.Uploader
	undo     []undo
	textures []gfx.TextureHandle
	prepared []Preparable
	closed   bool
}

// Begin starts recording changes. up releases GPU resources on Discard
// and may be nil for batches that never upload.
func (s *Store) Begin(up gfx.Uploader) *Batch {
	return &Batch{store: s, uploader: up}
}

// Put stores value and remembers what it replaced.
func (b *Batch) Put(kind Kind, alias string, value interface{}) error {
	if b.closed {
		return ErrBatchClosed
	}
	k := key{kind, alias}
	prev, had := b.store.values[k]
	b.undo = append(b.undo, undo{key: k, prev: prev, had: had})
	b.store.values[k] = value
	return nil
}

func (b *Batch) texture(h gfx.TextureHandle) {
	b.textures = append(b.textures, h)
}

func (b *Batch) prepare(p Preparable) {
	b.prepared = append(b.prepared, p)
}

// Len returns the number of puts recorded.
func (b *Batch) Len() int {
	return len(b.undo)
}

// Discard restores every value the batch replaced, removes what it added
// and releases the GPU resources it created.
func (b *Batch) Discard() {
	if b.closed {
		return
	}
	b.closed = true
	for i := len(b.undo) - 1; i >= 0; i-- {
		u := b.undo[i]
		if u.had {
			b.store.values[u.key] = u.prev
		} else {
			delete(b.store.values, u.key)
		}
	}
	if b.uploader != nil {
		for i := len(b.prepared) - 1; i >= 0; i-- {
			b.prepared[i].Release(b.uploader)
		}
		for i := len(b.textures) - 1; i >= 0; i-- {
			b.uploader.Release(b.textures[i])
		}
	}
	b.undo, b.prepared, b.textures = nil, nil, nil
}

// Done keeps the batch changes and stops recording.
func (b *Batch) Done() {
	b.closed = true
	b.undo, b.prepared, b.textures = nil, nil, nil
}
