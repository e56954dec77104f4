package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/koruasset/asset"
	"github.com/devblok/koruasset/atlas"
	"github.com/devblok/koruasset/content"
	"github.com/devblok/koruasset/core"
	"github.com/devblok/koruasset/gfx"
	"github.com/devblok/koruasset/loaders"
)

var (
	configFile   = flag.String("config", "", "Configuration file (TOML)")
	envFiles     = flag.String("env", "", "Comma separated .env files to load")
	manifestFile = flag.String("manifest", "assets.toml", "Manifest listing the assets to load")
	outDir       = flag.String("out", "build", "Directory atlases are written to")
	watch        = flag.Bool("watch", false, "Reload assets when directory packs change")
	preview      = flag.Duration("preview", 0, "Play texture animations for the given time")
	verbose      = flag.Bool("v", false, "Verbose logging")
)

// pipeline is everything a load pass needs.
type pipeline struct {
	cfg       core.Configuration
	manifest  *Manifest
	resolver  *content.Resolver
	queue     *asset.Queue
	store     *asset.Store
	committer *asset.Committer
	closers   []func() error
}

func main() {
	flag.Parse()
	if *verbose {
		log.SetLevel(log.DebugLevel)
	}

	var envs []string
	if *envFiles != "" {
		envs = strings.Split(*envFiles, ",")
	}
	cfg, err := core.LoadConfiguration(*configFile, envs...)
	if err != nil {
		log.Fatal(err)
	}
	manifest, err := ReadManifest(*manifestFile)
	if err != nil {
		log.Fatal(err)
	}

	p, err := newPipeline(cfg, manifest)
	if err != nil {
		log.Fatal(err)
	}
	defer p.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := p.build(ctx, nil); err != nil {
		log.Fatal(err)
	}
	if *preview > 0 {
		if err := p.play(ctx, *preview); err != nil {
			log.Fatal(err)
		}
	}
	if *watch || cfg.Content.Watch {
		if err := p.watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Fatal(err)
		}
	}
}

func newPipeline(cfg core.Configuration, manifest *Manifest) (*pipeline, error) {
	p := &pipeline{
		cfg:      cfg,
		manifest: manifest,
		resolver: content.NewResolver(),
		store:    asset.NewStore(),
	}
	for _, pack := range cfg.Content.Packs {
		if strings.HasSuffix(pack, ".kar") {
			ar, err := content.OpenArchivePack(pack)
			if err != nil {
				p.close()
				return nil, err
			}
			p.closers = append(p.closers, ar.Close)
			p.resolver.Add(ar)
			continue
		}
		dir, err := content.NewDirPack(pack)
		if err != nil {
			p.close()
			return nil, err
		}
		p.resolver.Add(dir)
	}

	p.queue = asset.NewQueue(p.resolver)
	loaders.Register(p.queue, cfg, log.StandardLogger())
	p.committer = asset.NewCommitter(p.store, gfx.NewHeadless())
	return p, nil
}

func (p *pipeline) close() {
	for _, c := range p.closers {
		if err := c(); err != nil {
			log.WithError(err).Warn("closing content pack")
		}
	}
	p.closers = nil
}

// build loads the manifest entries accepted by keep and exports atlases.
func (p *pipeline) build(ctx context.Context, keep func(Entry) bool) error {
	n := p.manifest.Enqueue(p.queue, keep)
	if n == 0 {
		return nil
	}

	start := time.Now()
	if err := asset.Load(ctx, p.queue, p.committer); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"requests": n,
		"stored":   p.store.Len(),
		"took":     time.Since(start).Round(time.Millisecond),
	}).Info("assets loaded")

	_, err := export(p.store, *outDir)
	return err
}

// play advances every stored texture animation for the given time.
func (p *pipeline) play(ctx context.Context, d time.Duration) error {
	var anims []*atlas.TextureAnimation
	for _, alias := range p.store.Aliases(asset.KindAnimation) {
		if a, ok := asset.Lookup[*atlas.TextureAnimation](p.store, asset.KindAnimation, alias); ok {
			anims = append(anims, a)
		}
	}
	if len(anims) == 0 {
		log.Info("no animations to play")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	frames := 0
	err := core.NewTime(60).Run(ctx, func(dt time.Duration) bool {
		for _, a := range anims {
			if a.Advance(dt) {
				frames++
				log.WithFields(log.Fields{
					"entry": a.Entry,
					"frame": a.CurrentFrame().Name,
				}).Debug("animation frame")
			}
		}
		return true
	})
	if errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	log.WithFields(log.Fields{
		"animations": len(anims),
		"frames":     frames,
	}).Info("animations played")
	return err
}

// watch reloads the entries a content change affects until ctx is done.
func (p *pipeline) watch(ctx context.Context) error {
	changes, err := p.resolver.Watch(ctx, log.StandardLogger())
	if err != nil {
		return err
	}
	log.Info("watching content packs")
	for change := range changes {
		log.WithFields(log.Fields{
			"pack": change.Pack,
			"path": change.Path,
		}).Debug("content changed")
		if err := p.build(ctx, func(e Entry) bool { return e.Uses(change.Path) }); err != nil {
			log.WithError(err).Error("reload failed, keeping the previous assets")
		}
	}
	return ctx.Err()
}
