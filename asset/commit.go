package asset

import (
	"github.com/devblok/koruasset/gfx"
	"github.com/devblok/koruasset/raw"
)

// Op says what applying a Commit does.
type Op uint8

// Commit operations
const (
	// OpNone stores nothing, the loader only enqueued work
	OpNone Op = iota

	// OpStore puts Value into the store as-is
	OpStore

	// OpTexture uploads Image and stores a *Texture
	OpTexture

	// OpPrepare calls Prepare on a Preparable Value, then stores it
	OpPrepare

	// OpModel binds a Binder Value to a stored texture, then stores it
	OpModel
)

func (o Op) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpStore:
		return "store"
	case OpTexture:
		return "texture"
	case OpPrepare:
		return "prepare"
	case OpModel:
		return "model"
	}
	return "unknown"
}

// Preparable is a value that owns GPU resources created at commit time.
type Preparable interface {
	Prepare(up gfx.Uploader, opts gfx.TextureOptions) error
	Release(up gfx.Uploader)
}

// Binder is a value that references a texture by alias.
type Binder interface {
	TextureRef() string
	Bind(handle gfx.TextureHandle)
}

// Texture is the stored form of a committed texture.
type Texture struct {
	Handle gfx.TextureHandle
	Width  int
	Height int
	Format raw.Format
}

// Commit is the deferred, store-mutating half of a load. It is plain data
// and can be handed between goroutines; only Apply acts on it.
type Commit struct {
	Op    Op
	Kind  Kind
	Alias string

	// Value is stored for OpStore, OpPrepare and OpModel
	Value interface{}

	// Image is uploaded for OpTexture and owned by the commit
	Image *raw.Image

	// Texture options for OpTexture and OpPrepare
	Texture gfx.TextureOptions

	// Children are applied after this commit, in order
	Children []Commit

	// Request is the request that produced the commit
	Request Request
}

// With appends children and returns the commit.
func (c Commit) With(children ...Commit) Commit {
	c.Children = append(c.Children, children...)
	return c
}

func (c *Commit) origin(req Request) {
	if c.Request.Alias == "" && c.Request.Path == "" {
		c.Request = req
	}
	for i := range c.Children {
		c.Children[i].origin(c.Request)
	}
}

// Nothing is a commit that stores nothing.
func Nothing() Commit {
	return Commit{Op: OpNone}
}

// Keep returns a commit storing value under kind and alias.
func Keep(kind Kind, alias string, value interface{}) Commit {
	return Commit{Op: OpStore, Kind: kind, Alias: alias, Value: value}
}

// Upload returns a commit uploading img and storing it as a texture.
func Upload(alias string, img *raw.Image, opts gfx.TextureOptions) Commit {
	return Commit{Op: OpTexture, Kind: KindTexture, Alias: alias, Image: img, Texture: opts}
}

// Prepare returns a commit preparing value and storing it.
func Prepare(kind Kind, alias string, value Preparable, opts gfx.TextureOptions) Commit {
	return Commit{Op: OpPrepare, Kind: kind, Alias: alias, Value: value, Texture: opts}
}

// Bind returns a commit binding value to its texture and storing it.
func Bind(kind Kind, alias string, value Binder) Commit {
	return Commit{Op: OpModel, Kind: kind, Alias: alias, Value: value}
}
