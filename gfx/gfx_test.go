package gfx_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/koruasset/gfx"
	"github.com/devblok/koruasset/raw"
)

func TestHeadlessLifecycle(t *testing.T) {
	c := qt.New(t)
	up := gfx.NewHeadless()
	img, _ := raw.New(4, 4, raw.RGBA8)

	first, err := up.UploadTexture(img, gfx.TextureOptions{Label: "a", Mipmaps: true})
	c.Assert(err, qt.IsNil)
	second, err := up.UploadTexture(img, gfx.TextureOptions{Label: "b"})
	c.Assert(err, qt.IsNil)
	c.Assert(first, qt.Not(qt.Equals), second)
	c.Assert(up.Live(), qt.Equals, 2)

	tex, err := up.Lookup(first)
	c.Assert(err, qt.IsNil)
	c.Assert(tex.Options.Mipmaps, qt.IsTrue)
	c.Assert(tex.Image, qt.Equals, img)

	up.Release(first)
	up.Release(first)
	c.Assert(up.Live(), qt.Equals, 1)
	c.Assert(up.Uploads(), qt.Equals, 2)

	_, err = up.Lookup(first)
	c.Assert(err, qt.Equals, gfx.ErrUnknownTexture)
}

func TestHeadlessRejectsNil(t *testing.T) {
	_, err := gfx.NewHeadless().UploadTexture(nil, gfx.TextureOptions{})
	qt.Assert(t, err, qt.Not(qt.IsNil))
}
