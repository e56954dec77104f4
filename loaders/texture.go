package loaders

import (
	"github.com/devblok/koruasset/asset"
	"github.com/devblok/koruasset/gfx"
	"github.com/devblok/koruasset/raw"
)

// TextureConfig sets how a texture is sampled.
type TextureConfig struct {
	Mipmaps bool
	Nearest bool
}

// TextureLoader decodes a single image file.
type TextureLoader struct {
	// Mipmaps is used for requests without a config
	Mipmaps bool

	// Decoder defaults to raw.DefaultDecoder
	Decoder raw.Decoder
}

// Load implements asset.Loader.
func (l *TextureLoader) Load(q *asset.Queue, r asset.Resolver, req asset.Request) (asset.Commit, error) {
	cfg, err := configOf(req, TextureConfig{Mipmaps: l.Mipmaps})
	if err != nil {
		return asset.Commit{}, err
	}
	img, err := readImage(r, l.Decoder, req.Path)
	if err != nil {
		return asset.Commit{}, err
	}
	return asset.Upload(req.Alias, img, gfx.TextureOptions{
		Mipmaps: cfg.Mipmaps,
		Nearest: cfg.Nearest,
	}), nil
}
