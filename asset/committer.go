package asset

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/devblok/koruasset/gfx"
)

// Committer applies commits to a store on the goroutine that owns it.
type Committer struct {
	Store    *Store
	Uploader gfx.Uploader
	Log      logrus.FieldLogger
}

// NewCommitter returns a committer for s and up.
func NewCommitter(s *Store, up gfx.Uploader) *Committer {
	return &Committer{Store: s, Uploader: up, Log: logrus.StandardLogger()}
}

func (c *Committer) log() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

// Begin starts a batch on the store.
func (c *Committer) Begin() *Batch {
	return c.Store.Begin(c.Uploader)
}

// Apply performs cm and then its children. Everything it changes is
// recorded in b.
func (c *Committer) Apply(b *Batch, cm Commit) error {
	if err := c.apply(b, cm); err != nil {
		return wrap(cm.Request, err)
	}
	for _, child := range cm.Children {
		if err := c.Apply(b, child); err != nil {
			return err
		}
	}
	return nil
}

func (c *Committer) apply(b *Batch, cm Commit) error {
	switch cm.Op {
	case OpNone:
		return nil

	case OpStore:
		return b.Put(cm.Kind, cm.Alias, cm.Value)

	case OpTexture:
		if cm.Image == nil {
			return fmt.Errorf("%w: texture %q has no image", ErrInvalidCommit, cm.Alias)
		}
		opts := cm.Texture
		if opts.Label == "" {
			opts.Label = cm.Alias
		}
		handle, err := c.Uploader.UploadTexture(cm.Image, opts)
		if err != nil {
			return err
		}
		b.texture(handle)
		return b.Put(cm.Kind, cm.Alias, &Texture{
			Handle: handle,
			Width:  cm.Image.Width,
			Height: cm.Image.Height,
			Format: cm.Image.Format,
		})

	case OpPrepare:
		p, ok := cm.Value.(Preparable)
		if !ok {
			return fmt.Errorf("%w: %T cannot be prepared", ErrInvalidCommit, cm.Value)
		}
		opts := cm.Texture
		if opts.Label == "" {
			opts.Label = cm.Alias
		}
		if err := p.Prepare(c.Uploader, opts); err != nil {
			return err
		}
		b.prepare(p)
		return b.Put(cm.Kind, cm.Alias, cm.Value)

	case OpModel:
		m, ok := cm.Value.(Binder)
		if !ok {
			return fmt.Errorf("%w: %T has no texture binding", ErrInvalidCommit, cm.Value)
		}
		if ref := m.TextureRef(); ref != "" {
			tex, ok := Lookup[*Texture](c.Store, KindTexture, ref)
			if !ok {
				return fmt.Errorf("%w: texture %q", ErrAssetMissing, ref)
			}
			m.Bind(tex.Handle)
		}
		return b.Put(cm.Kind, cm.Alias, cm.Value)
	}
	return fmt.Errorf("%w: unknown op %d", ErrInvalidCommit, cm.Op)
}
