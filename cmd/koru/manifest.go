package main

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"path"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/devblok/koruasset/asset"
	"github.com/devblok/koruasset/loaders"
)

// Manifest lists the assets to load, in order.
type Manifest struct {
	Assets []Entry `toml:"asset"`
}

// Entry is one load request of a manifest.
type Entry struct {
	Kind  asset.Kind `toml:"kind"`
	Path  string     `toml:"path"`
	Alias string     `toml:"alias"`

	// Separate loads the images of an atlas directory one by one
	Separate bool `toml:"separate"`
	Nearest  bool `toml:"nearest"`

	// Texture is the texture alias a model samples
	Texture string `toml:"texture"`
}

// Config returns the loader config for the entry.
func (e Entry) Config() interface{} {
	switch e.Kind {
	case asset.KindAtlas:
		cfg := loaders.AtlasConfig{Nearest: e.Nearest}
		if e.Separate {
			cfg.Mode = loaders.Separate
		}
		return cfg
	case asset.KindTexture:
		return loaders.TextureConfig{Mipmaps: !e.Nearest, Nearest: e.Nearest}
	case asset.KindFont:
		return loaders.FontConfig{Nearest: e.Nearest}
	case asset.KindModel:
		return loaders.ModelConfig{Texture: e.Texture}
	}
	return nil
}

// Request returns the load request of the entry.
func (e Entry) Request() asset.Request {
	return asset.Request{Kind: e.Kind, Path: e.Path, Alias: e.Alias, Config: e.Config()}
}

// Uses reports whether a change to the content path rel can affect the
// entry. Atlases also depend on the animations next to their directory.
func (e Entry) Uses(rel string) bool {
	p := strings.TrimSuffix(e.Path, "/")
	if strings.HasPrefix(rel, p) {
		return true
	}
	return e.Kind == asset.KindAtlas && strings.HasPrefix(rel, path.Dir(p)+"/")
}

// ParseManifest decodes a manifest. Every entry needs a path and an alias,
// and aliases must be unique per kind.
func ParseManifest(data []byte) (*Manifest, error) {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for i, e := range m.Assets {
		if e.Path == "" || e.Alias == "" {
			return nil, fmt.Errorf("manifest: asset %d needs a path and an alias", i)
		}
		key := e.Kind.String() + ":" + e.Alias
		if seen[key] {
			return nil, fmt.Errorf("manifest: %s %q is listed twice", e.Kind, e.Alias)
		}
		seen[key] = true
	}
	return &m, nil
}

// ReadManifest reads and decodes the manifest at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Enqueue pushes the entries accepted by keep, all of them when keep is nil.
func (m *Manifest) Enqueue(q *asset.Queue, keep func(Entry) bool) int {
	n := 0
	for _, e := range m.Assets {
		if keep == nil || keep(e) {
			q.Push(e.Request())
			n++
		}
	}
	return n
}
