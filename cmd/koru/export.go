package main

import (
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/koruasset/asset"
	"github.com/devblok/koruasset/atlas"
	"github.com/devblok/koruasset/loaders"
	"github.com/devblok/koruasset/raw"
)

// export writes every stored atlas, and the atlas of every stored font,
// to outDir as a PNG with a JSON region sidecar. It returns the number
// of atlases written.
func export(store *asset.Store, outDir string) (int, error) {
	written := 0
	for _, alias := range store.Aliases(asset.KindAtlas) {
		sheet, ok := asset.Lookup[*atlas.Atlas](store, asset.KindAtlas, alias)
		if !ok {
			continue
		}
		if err := writeAtlas(sheet, filepath.Join(outDir, filepath.FromSlash(alias))); err != nil {
			return written, err
		}
		written++
	}
	for _, alias := range store.Aliases(asset.KindFont) {
		font, ok := asset.Lookup[*loaders.Font](store, asset.KindFont, alias)
		if !ok {
			continue
		}
		if err := writeAtlas(font.Atlas, filepath.Join(outDir, filepath.FromSlash(alias))+".font"); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}

func writeAtlas(sheet *atlas.Atlas, base string) error {
	if err := os.MkdirAll(filepath.Dir(base), 0755); err != nil {
		return err
	}

	img, err := os.Create(base + ".png")
	if err != nil {
		return err
	}
	if err := raw.Encode(img, sheet.Canvas); err != nil {
		img.Close()
		return err
	}
	if err := img.Close(); err != nil {
		return err
	}

	regions, err := os.Create(base + ".json")
	if err != nil {
		return err
	}
	if err := sheet.WriteRegions(regions, filepath.Base(base)+".png"); err != nil {
		regions.Close()
		return err
	}

	w, h := sheet.Size()
	log.WithFields(log.Fields{
		"atlas":   base,
		"entries": len(sheet.Regions),
		"size":    [2]int{w, h},
	}).Info("atlas written")
	return regions.Close()
}
