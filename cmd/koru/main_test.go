package main

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/koruasset/asset"
	"github.com/devblok/koruasset/atlas"
	"github.com/devblok/koruasset/core"
	"github.com/devblok/koruasset/loaders"
	"github.com/devblok/koruasset/raw"
)

const manifestTOML = `
[[asset]]
kind = "atlas"
path = "atlases/ui"
alias = "ui"

[[asset]]
kind = "Texture"
path = "textures/crate.png"
alias = "crate"
nearest = true

[[asset]]
kind = "atlas"
path = "atlases/ui"
alias = "ui-loose"
separate = true
`

func TestParseManifest(t *testing.T) {
	c := qt.New(t)

	m, err := ParseManifest([]byte(manifestTOML))
	c.Assert(err, qt.IsNil)
	c.Assert(m.Assets, qt.HasLen, 3)
	c.Assert(m.Assets[0].Kind, qt.Equals, asset.KindAtlas)
	c.Assert(m.Assets[1].Kind, qt.Equals, asset.KindTexture)

	c.Assert(m.Assets[0].Config(), qt.Equals, loaders.AtlasConfig{})
	c.Assert(m.Assets[1].Config(), qt.Equals, loaders.TextureConfig{Nearest: true})
	c.Assert(m.Assets[2].Config(), qt.Equals, loaders.AtlasConfig{Mode: loaders.Separate})

	req := m.Assets[1].Request()
	c.Assert(req.Path, qt.Equals, "textures/crate.png")
	c.Assert(req.Alias, qt.Equals, "crate")
}

func TestParseManifestErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		err  string
	}{
		{"unknown kind", "[[asset]]\nkind = \"video\"\npath = \"a\"\nalias = \"a\"\n", ""},
		{"unknown key", "[[asset]]\nkind = \"sound\"\npath = \"a\"\nalias = \"a\"\nloop = true\n", ""},
		{"no alias", "[[asset]]\nkind = \"sound\"\npath = \"a\"\n", `manifest: asset 0 needs a path and an alias`},
		{"twice", "[[asset]]\nkind = \"sound\"\npath = \"a\"\nalias = \"a\"\n[[asset]]\nkind = \"sound\"\npath = \"b\"\nalias = \"a\"\n", `manifest: sound "a" is listed twice`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(test.data))
			if test.err == "" {
				qt.Assert(t, err, qt.Not(qt.IsNil))
				return
			}
			qt.Assert(t, err, qt.ErrorMatches, test.err)
		})
	}
}

func TestEntryUses(t *testing.T) {
	c := qt.New(t)

	sheet := Entry{Kind: asset.KindAtlas, Path: "atlases/ui"}
	c.Assert(sheet.Uses("atlases/ui/a.png"), qt.IsTrue)
	c.Assert(sheet.Uses("atlases/animation/a/f0.png"), qt.IsTrue)
	c.Assert(sheet.Uses("fonts/mono_0.png"), qt.IsFalse)

	font := Entry{Kind: asset.KindFont, Path: "fonts/mono"}
	c.Assert(font.Uses("fonts/mono_1.png"), qt.IsTrue)
	c.Assert(font.Uses("fonts/other_0.png"), qt.IsFalse)
}

func solid(c *qt.C, w, h int) []byte {
	img, err := raw.New(w, h, raw.RGBA8)
	c.Assert(err, qt.IsNil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, [4]byte{0xff, 0x80, 0, 0xff})
		}
	}
	var buf bytes.Buffer
	c.Assert(raw.Encode(&buf, img), qt.IsNil)
	return buf.Bytes()
}

func TestPipelineBuild(t *testing.T) {
	c := qt.New(t)

	root := c.TempDir()
	for name, data := range map[string][]byte{
		"atlases/ui/a.png":                   solid(c, 4, 4),
		"atlases/ui/b.png":                   solid(c, 6, 3),
		"atlases/animation/a/animation.json": []byte(`[["f0", 10], ["f1", 10]]`),
		"atlases/animation/a/f0.png":         solid(c, 4, 4),
		"atlases/animation/a/f1.png":         solid(c, 4, 4),
		"textures/crate.png":                 solid(c, 2, 2),
	} {
		p := filepath.Join(root, filepath.FromSlash(name))
		c.Assert(os.MkdirAll(filepath.Dir(p), 0755), qt.IsNil)
		c.Assert(ioutil.WriteFile(p, data, 0644), qt.IsNil)
	}

	out := c.TempDir()
	prev := *outDir
	*outDir = out
	c.Cleanup(func() { *outDir = prev })

	cfg := core.DefaultConfiguration()
	cfg.Content.Packs = []string{root}
	m, err := ParseManifest([]byte(manifestTOML))
	c.Assert(err, qt.IsNil)

	p, err := newPipeline(cfg, m)
	c.Assert(err, qt.IsNil)
	defer p.close()

	c.Assert(p.build(context.Background(), nil), qt.IsNil)
	c.Assert(p.store.Aliases(asset.KindTexture), qt.DeepEquals, []string{"crate", "ui-loose/a", "ui-loose/b"})

	f, err := os.Open(filepath.Join(out, "ui.json"))
	c.Assert(err, qt.IsNil)
	defer f.Close()
	regions, size, err := atlas.ReadRegions(f)
	c.Assert(err, qt.IsNil)
	c.Assert(regions, qt.HasLen, 2)

	data, err := ioutil.ReadFile(filepath.Join(out, "ui.png"))
	c.Assert(err, qt.IsNil)
	img, err := raw.Decode(data)
	c.Assert(err, qt.IsNil)
	c.Assert(img.Width, qt.Equals, size.X)
	c.Assert(img.Height, qt.Equals, size.Y)

	c.Assert(p.play(context.Background(), 50*time.Millisecond), qt.IsNil)

	// a rebuild limited to unrelated entries loads nothing
	c.Assert(p.build(context.Background(), func(e Entry) bool { return e.Uses("fonts/x_0.png") }), qt.IsNil)
}

func TestPipelineMissingPack(t *testing.T) {
	cfg := core.DefaultConfiguration()
	cfg.Content.Packs = []string{filepath.Join(t.TempDir(), "missing.kar")}
	_, err := newPipeline(cfg, &Manifest{})
	qt.Assert(t, err, qt.Not(qt.IsNil))
}
