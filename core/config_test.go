package core_test

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/devblok/koruasset/atlas"
	"github.com/devblok/koruasset/core"
)

func writeFile(c *qt.C, name, contents string) string {
	p := filepath.Join(c.TempDir(), name)
	c.Assert(ioutil.WriteFile(p, []byte(contents), 0644), qt.IsNil)
	return p
}

func TestDefaultConfigurationIsValid(t *testing.T) {
	c := qt.New(t)

	cfg := core.DefaultConfiguration()
	c.Assert(cfg.Validate(), qt.IsNil)
	c.Assert(cfg.Atlas.Packer(), qt.Equals, atlas.DefaultPacker())
	c.Assert(cfg.Animation.FrameDuration(), qt.Equals, atlas.DefaultFrameDuration)
}

func TestLoadConfiguration(t *testing.T) {
	c := qt.New(t)

	path := writeFile(c, "koru.toml", `
[content]
packs = ["base", "mods/extra.kar"]
watch = true

[atlas]
max_size = 1024
fast = true

[animation]
frame_millis = 40
`)
	cfg, err := core.LoadConfiguration(path)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Content.Packs, qt.DeepEquals, []string{"base", "mods/extra.kar"})
	c.Assert(cfg.Content.Watch, qt.IsTrue)
	c.Assert(cfg.Atlas.MaxSize, qt.Equals, 1024)
	c.Assert(cfg.Atlas.Fast, qt.IsTrue)
	c.Assert(cfg.Atlas.Extrusion, qt.Equals, atlas.DefaultExtrusion)
	c.Assert(cfg.Animation.FrameDuration(), qt.Equals, 40*time.Millisecond)
	c.Assert(cfg.Animation.Directory, qt.Equals, "animation")
}

func TestLoadConfigurationUnknownField(t *testing.T) {
	c := qt.New(t)

	path := writeFile(c, "koru.toml", "[atlas]\nmax_sise = 1024\n")
	_, err := core.LoadConfiguration(path)
	c.Assert(err, qt.ErrorMatches, `config: .*koru.toml: .*`)
}

func TestLoadConfigurationMissingFile(t *testing.T) {
	_, err := core.LoadConfiguration(filepath.Join(t.TempDir(), "nope.toml"))
	qt.Assert(t, err, qt.Not(qt.IsNil))
}

func TestLoadConfigurationEnvironment(t *testing.T) {
	c := qt.New(t)

	c.Cleanup(func() {
		os.Unsetenv("KORU_ATLAS_EXTRUSION")
		os.Unsetenv("KORU_ATLAS_FAST")
	})
	env := writeFile(c, "koru.env", "KORU_ATLAS_EXTRUSION=4\nKORU_ATLAS_FAST=true\n")
	c.Setenv("KORU_CONTENT_PACKS", "one,two")

	cfg, err := core.LoadConfiguration("", env)
	c.Assert(err, qt.IsNil)
	c.Assert(cfg.Content.Packs, qt.DeepEquals, []string{"one", "two"})
	c.Assert(cfg.Atlas.Extrusion, qt.Equals, 4)
	c.Assert(cfg.Atlas.Fast, qt.IsTrue)
}

func TestLoadConfigurationBadEnvironment(t *testing.T) {
	c := qt.New(t)

	c.Setenv("KORU_ATLAS_MAX_SIZE", "huge")
	_, err := core.LoadConfiguration("")

	var cerr *core.ConfigError
	c.Assert(errors.As(err, &cerr), qt.IsTrue)
	c.Assert(cerr.Field, qt.Equals, "KORU_ATLAS_MAX_SIZE")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		field  string
		modify func(*core.Configuration)
	}{
		{"content.packs", func(cfg *core.Configuration) { cfg.Content.Packs = nil }},
		{"atlas.extrusion", func(cfg *core.Configuration) { cfg.Atlas.Extrusion = -1 }},
		{"atlas.alignment", func(cfg *core.Configuration) { cfg.Atlas.Alignment = 0 }},
		{"atlas.start_size", func(cfg *core.Configuration) { cfg.Atlas.StartSize = 48 }},
		{"atlas.max_size", func(cfg *core.Configuration) { cfg.Atlas.MaxSize = 3000 }},
		{"atlas.max_size", func(cfg *core.Configuration) { cfg.Atlas.MaxSize = 16 }},
		{"animation.frame_millis", func(cfg *core.Configuration) { cfg.Animation.FrameMillis = -5 }},
		{"animation.directory", func(cfg *core.Configuration) { cfg.Animation.Directory = "a/b" }},
	}

	for _, test := range tests {
		t.Run(test.field, func(t *testing.T) {
			cfg := core.DefaultConfiguration()
			test.modify(&cfg)

			var cerr *core.ConfigError
			err := cfg.Validate()
			qt.Assert(t, errors.As(err, &cerr), qt.IsTrue)
			qt.Assert(t, cerr.Field, qt.Equals, test.field)
		})
	}
}
