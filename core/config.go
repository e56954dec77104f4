package core

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/devblok/koruasset/atlas"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "KORU_"

// Configuration defines the asset pipeline configuration
type Configuration struct {
	Content   ContentConfiguration   `toml:"content"`
	Atlas     AtlasConfiguration     `toml:"atlas"`
	Animation AnimationConfiguration `toml:"animation"`
}

// ContentConfiguration lists where content comes from
type ContentConfiguration struct {
	// Packs are directories or .kar archives, lowest priority first
	Packs []string `toml:"packs"`

	// Watch reports changes to directory packs
	Watch bool `toml:"watch"`
}

// AtlasConfiguration is used to configure atlas packing
type AtlasConfiguration struct {
	Extrusion int  `toml:"extrusion"`
	Alignment int  `toml:"alignment"`
	StartSize int  `toml:"start_size"`
	MaxSize   int  `toml:"max_size"`
	Fast      bool `toml:"fast"`
	Align     bool `toml:"align"`
	Mipmaps   bool `toml:"mipmaps"`
}

// AnimationConfiguration is used to configure atlas animations
type AnimationConfiguration struct {
	// FrameMillis is the duration of frames the descriptor gives none for
	FrameMillis int `toml:"frame_millis"`

	// Directory is the name of the directory, next to an atlas source
	// directory, that holds per-entry animations
	Directory string `toml:"directory"`
}

// ConfigError reports an invalid configuration value.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// DefaultConfiguration returns the built in settings.
func DefaultConfiguration() Configuration {
	return Configuration{
		Content: ContentConfiguration{
			Packs: []string{"assets"},
		},
		Atlas: AtlasConfiguration{
			Extrusion: atlas.DefaultExtrusion,
			Alignment: atlas.DefaultAlignment,
			StartSize: atlas.DefaultStartSize,
			MaxSize:   atlas.DefaultMaxSize,
			Mipmaps:   true,
		},
		Animation: AnimationConfiguration{
			FrameMillis: int(atlas.DefaultFrameDuration / time.Millisecond),
			Directory:   "animation",
		},
	}
}

// LoadConfiguration reads the TOML file at path over the defaults, then
// applies KORU_* overrides from the environment. envFiles are loaded into
// the environment first; variables already set are not overwritten.
// An empty path skips the file.
func LoadConfiguration(path string, envFiles ...string) (Configuration, error) {
	cfg := DefaultConfiguration()

	if path != "" {
		data, err := ioutil.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("config: %s: %w", path, err)
		}
	}

	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return cfg, fmt.Errorf("config: loading env: %w", err)
		}
	}
	envy.Reload()

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Configuration) applyEnv() error {
	if v := envy.Get(EnvPrefix+"CONTENT_PACKS", ""); v != "" {
		c.Content.Packs = splitList(v)
	}
	for key, dst := range map[string]*int{
		"ATLAS_EXTRUSION":        &c.Atlas.Extrusion,
		"ATLAS_ALIGNMENT":        &c.Atlas.Alignment,
		"ATLAS_START_SIZE":       &c.Atlas.StartSize,
		"ATLAS_MAX_SIZE":         &c.Atlas.MaxSize,
		"ANIMATION_FRAME_MILLIS": &c.Animation.FrameMillis,
	} {
		v := envy.Get(EnvPrefix+key, "")
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigError{Field: EnvPrefix + key, Reason: fmt.Sprintf("%q is not a number", v)}
		}
		*dst = n
	}
	for key, dst := range map[string]*bool{
		"CONTENT_WATCH": &c.Content.Watch,
		"ATLAS_FAST":    &c.Atlas.Fast,
		"ATLAS_ALIGN":   &c.Atlas.Align,
		"ATLAS_MIPMAPS": &c.Atlas.Mipmaps,
	} {
		v := envy.Get(EnvPrefix+key, "")
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &ConfigError{Field: EnvPrefix + key, Reason: fmt.Sprintf("%q is not a boolean", v)}
		}
		*dst = b
	}
	if v := envy.Get(EnvPrefix+"ANIMATION_DIRECTORY", ""); v != "" {
		c.Animation.Directory = v
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.FieldsFunc(v, func(r rune) bool {
		return r == ',' || r == os.PathListSeparator
	}) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func powerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Validate checks the configuration for values the pipeline cannot use.
func (c Configuration) Validate() error {
	switch {
	case len(c.Content.Packs) == 0:
		return &ConfigError{Field: "content.packs", Reason: "at least one pack is required"}
	case c.Atlas.Extrusion < 0:
		return &ConfigError{Field: "atlas.extrusion", Reason: "must not be negative"}
	case c.Atlas.Alignment < 1:
		return &ConfigError{Field: "atlas.alignment", Reason: "must be at least 1"}
	case !powerOfTwo(c.Atlas.StartSize):
		return &ConfigError{Field: "atlas.start_size", Reason: "must be a power of two"}
	case !powerOfTwo(c.Atlas.MaxSize):
		return &ConfigError{Field: "atlas.max_size", Reason: "must be a power of two"}
	case c.Atlas.MaxSize < c.Atlas.StartSize:
		return &ConfigError{Field: "atlas.max_size", Reason: "must not be below start_size"}
	case c.Animation.FrameMillis < 0:
		return &ConfigError{Field: "animation.frame_millis", Reason: "must not be negative"}
	case c.Animation.Directory == "" || strings.ContainsAny(c.Animation.Directory, `/\`):
		return &ConfigError{Field: "animation.directory", Reason: "must be a plain directory name"}
	}
	return nil
}

// Packer returns the atlas packer the configuration describes.
func (a AtlasConfiguration) Packer() atlas.Packer {
	return atlas.Packer{
		Extrusion: a.Extrusion,
		Alignment: a.Alignment,
		StartSize: a.StartSize,
		MaxSize:   a.MaxSize,
		Fast:      a.Fast,
	}
}

// FrameDuration returns the default frame duration.
func (a AnimationConfiguration) FrameDuration() time.Duration {
	return time.Duration(a.FrameMillis) * time.Millisecond
}
