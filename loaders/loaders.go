// Package loaders holds the default loader of every asset kind. Loaders
// only read through an asset.Resolver and decode; everything touching the
// store or the GPU is returned as a Commit.
package loaders

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/devblok/koruasset/asset"
	"github.com/devblok/koruasset/core"
	"github.com/devblok/koruasset/raw"
)

var (
	// ErrBadConfig is returned for a request config of the wrong type
	ErrBadConfig = errors.New("loaders: config does not fit the asset kind")

	// ErrMalformed is returned for files that decode but make no sense
	ErrMalformed = errors.New("loaders: malformed asset")
)

// Register installs the default loaders on q.
func Register(q *asset.Queue, cfg core.Configuration, log logrus.FieldLogger) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	packer := cfg.Atlas.Packer()

	q.Register(asset.KindTexture, &TextureLoader{Mipmaps: cfg.Atlas.Mipmaps})
	q.Register(asset.KindShader, &ShaderLoader{})
	q.Register(asset.KindFont, &FontLoader{Packer: packer, Log: log})
	q.Register(asset.KindAtlas, &AtlasLoader{
		Packer:          packer,
		Align:           cfg.Atlas.Align,
		Mipmaps:         cfg.Atlas.Mipmaps,
		AnimationDir:    cfg.Animation.Directory,
		DefaultDuration: cfg.Animation.FrameDuration(),
		Log:             log,
	})
	q.Register(asset.KindLayout, &LayoutLoader{})
	q.Register(asset.KindSound, &SoundLoader{Log: log})
	q.Register(asset.KindModel, &ModelLoader{})
}

// configOf returns the request config as T. A nil config yields def.
func configOf[T any](req asset.Request, def T) (T, error) {
	switch c := req.Config.(type) {
	case nil:
		return def, nil
	case T:
		return c, nil
	case *T:
		if c == nil {
			return def, nil
		}
		return *c, nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %T for %s", ErrBadConfig, req.Config, req.Kind)
}

// exists reports whether rel resolves. Errors other than a missing
// resource are passed on.
func exists(r asset.Resolver, rel string) (bool, error) {
	if _, err := r.Find(rel); err != nil {
		if errors.Is(err, asset.ErrResourceNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// page returns the name of the i-th page of a multi page asset.
func page(base string, i int, ext string) string {
	return fmt.Sprintf("%s_%d%s", base, i, ext)
}

// probePages finds the pages of base, trying each extension in turn for
// every index. The first missing index ends the list, a missing first page
// is an error.
func probePages(r asset.Resolver, base string, exts ...string) ([]string, error) {
	var pages []string
	for i := 0; ; i++ {
		found := ""
		for _, ext := range exts {
			name := page(base, i, ext)
			ok, err := exists(r, name)
			if err != nil {
				return nil, err
			}
			if ok {
				found = name
				break
			}
		}
		if found == "" {
			break
		}
		pages = append(pages, found)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %s", asset.ErrResourceNotFound, page(base, 0, strings.Join(exts, "|")))
	}
	return pages, nil
}

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// imageName splits a directory entry into its entry name if it is an image.
func imageName(file string) (string, bool) {
	ext := path.Ext(file)
	if !imageExts[strings.ToLower(ext)] {
		return "", false
	}
	name := strings.TrimSuffix(file, ext)
	return name, name != ""
}

// readImage reads rel and decodes it with dec, raw.DefaultDecoder when nil.
func readImage(r asset.Resolver, dec raw.Decoder, rel string) (*raw.Image, error) {
	data, err := r.ReadFile(rel)
	if err != nil {
		return nil, err
	}
	if dec == nil {
		dec = raw.DefaultDecoder
	}
	img, err := dec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", rel, err)
	}
	return img, nil
}
