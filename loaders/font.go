package loaders

import (
	"fmt"
	"image"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/devblok/koruasset/asset"
	"github.com/devblok/koruasset/atlas"
	"github.com/devblok/koruasset/gfx"
	"github.com/devblok/koruasset/raw"
)

// GlyphsPerRow is the width and height of the glyph grid on a font page.
const GlyphsPerRow = 16

// GlyphsPerPage is the number of code points one page covers.
const GlyphsPerPage = GlyphsPerRow * GlyphsPerRow

// FontConfig sets how the font atlas is sampled.
type FontConfig struct {
	Nearest bool
}

// Glyph is one character of a bitmap font.
type Glyph struct {
	Rune    rune
	Advance int

	// Region is zero for glyphs without pixels
	Region atlas.UVRegion
	Empty  bool
}

// Font is a bitmap font composited into a single atlas.
type Font struct {
	Atlas      *atlas.Atlas
	Glyphs     map[rune]Glyph
	CellWidth  int
	CellHeight int
	Pages      int
}

// Glyph returns the glyph of r.
func (f *Font) Glyph(r rune) (Glyph, bool) {
	g, ok := f.Glyphs[r]
	return g, ok
}

// Measure returns the advance of s in pixels. Runes without a glyph
// count as empty cells.
func (f *Font) Measure(s string) int {
	w := 0
	for _, r := range s {
		if g, ok := f.Glyphs[r]; ok {
			w += g.Advance
		} else {
			w += f.CellWidth / 2
		}
	}
	return w
}

// Prepare uploads the font atlas.
func (f *Font) Prepare(up gfx.Uploader, opts gfx.TextureOptions) error {
	return f.Atlas.Prepare(up, opts)
}

// Release frees the font atlas texture.
func (f *Font) Release(up gfx.Uploader) {
	f.Atlas.Release(up)
}

// FontLoader reads the pages "<path>_<i>.png" of a bitmap font. Every page
// is a 16 by 16 grid of glyphs, page i holding code points i*256 onwards.
type FontLoader struct {
	Packer  atlas.Packer
	Decoder raw.Decoder
	Log     logrus.FieldLogger
}

func glyphEntry(pageIndex, index int) string {
	return strconv.Itoa(pageIndex) + "/" + strconv.Itoa(index)
}

// Load implements asset.Loader.
func (l *FontLoader) Load(q *asset.Queue, r asset.Resolver, req asset.Request) (asset.Commit, error) {
	cfg, err := configOf(req, FontConfig{})
	if err != nil {
		return asset.Commit{}, err
	}
	pages, err := probePages(r, req.Path, ".png")
	if err != nil {
		return asset.Commit{}, err
	}

	font := &Font{Glyphs: make(map[rune]Glyph), Pages: len(pages)}
	builder := atlas.NewBuilder(l.Packer)
	builder.Log = l.Log

	for i, name := range pages {
		img, err := readImage(r, l.Decoder, name)
		if err != nil {
			return asset.Commit{}, err
		}
		if img.Width%GlyphsPerRow != 0 || img.Height%GlyphsPerRow != 0 || img.Width == 0 {
			return asset.Commit{}, fmt.Errorf("%w: font page %s is %dx%d, not a %d by %d grid",
				ErrMalformed, name, img.Width, img.Height, GlyphsPerRow, GlyphsPerRow)
		}
		cw, ch := img.Width/GlyphsPerRow, img.Height/GlyphsPerRow
		if i == 0 {
			font.CellWidth, font.CellHeight = cw, ch
		} else if cw != font.CellWidth || ch != font.CellHeight {
			return asset.Commit{}, fmt.Errorf("%w: font page %s has %dx%d cells, page 0 has %dx%d",
				ErrMalformed, name, cw, ch, font.CellWidth, font.CellHeight)
		}

		for index := 0; index < GlyphsPerPage; index++ {
			x, y := (index%GlyphsPerRow)*cw, (index/GlyphsPerRow)*ch
			cell := img.Crop(image.Rect(x, y, x+cw, y+ch))
			advance := inkWidth(cell)

			g := Glyph{Rune: rune(i*GlyphsPerPage + index), Advance: advance}
			if advance == 0 {
				g.Empty = true
				g.Advance = cw / 2
			} else {
				builder.Add(glyphEntry(i, index), cell.Crop(image.Rect(0, 0, advance, ch)))
			}
			font.Glyphs[g.Rune] = g
		}
	}

	font.Atlas, err = builder.Build()
	if err != nil {
		return asset.Commit{}, fmt.Errorf("font atlas: %w", err)
	}
	for cp, g := range font.Glyphs {
		if g.Empty {
			continue
		}
		g.Region, _ = font.Atlas.Region(glyphEntry(int(cp)/GlyphsPerPage, int(cp)%GlyphsPerPage))
		font.Glyphs[cp] = g
	}

	return asset.Prepare(asset.KindFont, req.Alias, font, gfx.TextureOptions{Nearest: cfg.Nearest}), nil
}

// inkWidth returns one past the right-most column holding a visible pixel.
func inkWidth(cell *raw.Image) int {
	for x := cell.Width - 1; x >= 0; x-- {
		for y := 0; y < cell.Height; y++ {
			if cell.At(x, y)[3] != 0 {
				return x + 1
			}
		}
	}
	return 0
}
