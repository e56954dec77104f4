package loaders

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/devblok/koruasset/asset"
	"github.com/devblok/koruasset/atlas"
	"github.com/devblok/koruasset/gfx"
	"github.com/devblok/koruasset/raw"
)

// AtlasMode selects how an atlas directory is loaded.
type AtlasMode int

// Atlas modes
const (
	// Packed composites every image of the directory into one atlas
	Packed AtlasMode = iota

	// Separate loads every image as its own texture
	Separate
)

// DescriptorName is the file describing the frames of an animation.
const DescriptorName = "animation.json"

// AtlasConfig overrides the configured packing of a single atlas.
// Zero values keep the loader's settings.
type AtlasConfig struct {
	Mode      AtlasMode
	Extrusion int
	MaxSize   int
	Fast      bool
	Align     bool
	Nearest   bool
}

// AtlasLoader loads a directory of images as an atlas. Entries are named
// after their file without extension and stored as sprites under
// "<alias>/<entry>". An entry with a directory "<dir>/../animation/<entry>"
// gets a texture animation under the same alias, its frames listed by an
// animation.json or else taken from the images of that directory.
type AtlasLoader struct {
	Packer  atlas.Packer
	Align   bool
	Mipmaps bool

	// AnimationDir is the directory next to the atlas directory that
	// holds animations, usually "animation"
	AnimationDir    string
	DefaultDuration time.Duration

	Decoder raw.Decoder
	Log     logrus.FieldLogger
}

func (l *AtlasLoader) log() logrus.FieldLogger {
	if l.Log == nil {
		return logrus.StandardLogger()
	}
	return l.Log
}

func (l *AtlasLoader) packer(cfg AtlasConfig) atlas.Packer {
	p := l.Packer
	if cfg.Extrusion > 0 {
		p.Extrusion = cfg.Extrusion
	}
	if cfg.MaxSize > 0 {
		p.MaxSize = cfg.MaxSize
	}
	if cfg.Fast {
		p.Fast = true
	}
	return p
}

// entries lists the image files of dir by entry name. Of files sharing an
// entry name the first in directory order wins.
func (l *AtlasLoader) entries(r asset.Resolver, dir string) ([]string, map[string]string, error) {
	files, err := r.ListDirectory(dir)
	if err != nil {
		return nil, nil, err
	}
	var names []string
	byName := make(map[string]string, len(files))
	for _, file := range files {
		name, ok := imageName(file)
		if !ok {
			continue
		}
		if prev, dup := byName[name]; dup {
			l.log().WithFields(logrus.Fields{
				"entry": name,
				"file":  path.Join(dir, file),
				"kept":  path.Join(dir, prev),
			}).Debug("duplicate atlas entry, skipping")
			continue
		}
		byName[name] = file
		names = append(names, name)
	}
	return names, byName, nil
}

// Load implements asset.Loader.
func (l *AtlasLoader) Load(q *asset.Queue, r asset.Resolver, req asset.Request) (asset.Commit, error) {
	cfg, err := configOf(req, AtlasConfig{})
	if err != nil {
		return asset.Commit{}, err
	}
	dir := strings.TrimSuffix(req.Path, "/")
	names, files, err := l.entries(r, dir)
	if err != nil {
		return asset.Commit{}, err
	}

	if cfg.Mode == Separate {
		for _, name := range names {
			q.Enqueue(asset.KindTexture, path.Join(dir, files[name]), asset.Join(req.Alias, name), TextureConfig{
				Mipmaps: l.Mipmaps,
				Nearest: cfg.Nearest,
			})
		}
		return asset.Nothing(), nil
	}

	builder := atlas.NewBuilder(l.packer(cfg))
	builder.Align = l.Align || cfg.Align
	builder.Log = l.log()
	for _, name := range names {
		img, err := readImage(r, l.Decoder, path.Join(dir, files[name]))
		if err != nil {
			return asset.Commit{}, err
		}
		builder.Add(name, img)
	}
	bases := make(map[string]*raw.Image, len(names))
	for _, name := range names {
		bases[name] = builder.Image(name)
	}

	sheet, err := builder.Build()
	if err != nil {
		return asset.Commit{}, err
	}

	opts := gfx.TextureOptions{Mipmaps: l.Mipmaps, Nearest: cfg.Nearest}
	commit := asset.Prepare(asset.KindAtlas, req.Alias, sheet, opts)
	for _, sprite := range sheet.Sprites() {
		sprite := sprite
		commit = commit.With(asset.Keep(asset.KindSprite, asset.Join(req.Alias, sprite.Name), &sprite))
	}

	if l.AnimationDir == "" {
		return commit, nil
	}
	animDir := path.Join(path.Dir(dir), l.AnimationDir)
	for _, name := range names {
		anim, err := l.animation(r, path.Join(animDir, name), name, sheet, bases[name], l.packer(cfg))
		if err != nil {
			return asset.Commit{}, err
		}
		if anim != nil {
			commit = commit.With(asset.Prepare(asset.KindAnimation, asset.Join(req.Alias, name), anim, opts))
		}
	}
	return commit, nil
}

// animation extracts the animation of entry from dir. Without a
// descriptor every image of dir is a frame, in name order, and an empty
// dir animates the entry image alone. It returns nil when the entry is not
// animated or its animation has to be dropped.
func (l *AtlasLoader) animation(r asset.Resolver, dir, entry string, sheet *atlas.Atlas, base *raw.Image, p atlas.Packer) (*atlas.TextureAnimation, error) {
	descriptor := path.Join(dir, DescriptorName)
	described, err := exists(r, descriptor)
	if err != nil {
		return nil, err
	}
	log := l.log().WithFields(logrus.Fields{"entry": entry, "dir": dir})

	var specs []atlas.FrameSpec
	files := make(map[string]string)
	if described {
		data, err := r.ReadFile(descriptor)
		if err != nil {
			return nil, err
		}
		specs, err = atlas.ParseDescriptor(data)
		if err != nil {
			log.WithError(err).Warn("animation descriptor is malformed, using the entry image only")
			specs = nil
		}
		for _, spec := range specs {
			files[spec.Name] = spec.Name + ".png"
		}
	} else {
		listed, err := r.ListDirectory(dir)
		if errors.Is(err, asset.ErrResourceNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		for _, file := range listed {
			name, ok := imageName(file)
			if !ok {
				continue
			}
			if _, dup := files[name]; dup {
				continue
			}
			files[name] = file
			specs = append(specs, atlas.FrameSpec{Name: name})
		}
	}

	frames := make(map[string]*raw.Image, len(specs))
	for _, spec := range specs {
		if _, seen := frames[spec.Name]; seen {
			continue
		}
		file := path.Join(dir, files[spec.Name])
		found, err := exists(r, file)
		if err != nil {
			return nil, err
		}
		if !found {
			continue
		}
		img, err := readImage(r, l.Decoder, file)
		if err != nil {
			log.WithError(err).WithField("frame", spec.Name).Warn("animation frame can not be decoded, skipping")
			continue
		}
		frames[spec.Name] = img
	}

	x := atlas.Extractor{Packer: p, DefaultDuration: l.DefaultDuration, Log: log}
	anim, err := x.Extract(entry, sheet, base, frames, specs)
	switch {
	case errors.Is(err, atlas.ErrNoFrames), errors.Is(err, atlas.ErrAtlasResolutionExceeded):
		log.WithError(err).Warn("dropping animation")
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("animation %s: %w", entry, err)
	}
	return anim, nil
}
