package atlas

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/devblok/koruasset/raw"
)

type entry struct {
	name  string
	image *raw.Image
}

// Builder accumulates named images and composites them into an Atlas.
type Builder struct {
	Packer Packer

	// Align rounds every footprint up to the packer alignment.
	Align bool

	// Log receives duplicate-name notices. Defaults to the standard logger.
	Log logrus.FieldLogger

	entries []entry
	names   map[string]int
}

// NewBuilder returns an empty builder using p.
func NewBuilder(p Packer) *Builder {
	return &Builder{
		Packer: p,
		names:  make(map[string]int),
	}
}

func (b *Builder) log() logrus.FieldLogger {
	if b.Log == nil {
		return logrus.StandardLogger()
	}
	return b.Log
}

// Add takes ownership of img under name. A name that was already added is
// skipped and Add reports false; the first image stays.
func (b *Builder) Add(name string, img *raw.Image) bool {
	if b.names == nil {
		b.names = make(map[string]int)
	}
	if _, ok := b.names[name]; ok {
		b.log().WithField("entry", name).Debug("skipping duplicate atlas entry")
		return false
	}
	b.names[name] = len(b.entries)
	b.entries = append(b.entries, entry{name: name, image: img})
	return true
}

// Has reports whether name was added.
func (b *Builder) Has(name string) bool {
	_, ok := b.names[name]
	return ok
}

// Len returns the number of accumulated entries.
func (b *Builder) Len() int {
	return len(b.entries)
}

// Names returns the accumulated names in sorted order.
func (b *Builder) Names() []string {
	names := make([]string, 0, len(b.entries))
	for _, e := range b.entries {
		names = append(names, e.name)
	}
	sort.Strings(names)
	return names
}

// Image returns the accumulated image for name, or nil.
func (b *Builder) Image(name string) *raw.Image {
	if i, ok := b.names[name]; ok {
		return b.entries[i].image
	}
	return nil
}

// Build packs and composites every accumulated image. The canvas moves
// into the returned Atlas and the builder is left empty. On error the
// builder keeps its entries.
func (b *Builder) Build() (*Atlas, error) {
	items := make([]Item, len(b.entries))
	for i, e := range b.entries {
		items[i] = Item{Width: e.image.Width, Height: e.image.Height, Align: b.Align}
	}

	width, height, placements, err := b.Packer.Pack(items)
	if err != nil {
		return nil, err
	}

	canvas, err := raw.New(width, height, raw.RGBA8)
	if err != nil {
		return nil, err
	}

	regions := make(map[string]UVRegion, len(b.entries))
	for i, e := range b.entries {
		rect := placements[i].Rect
		raw.Blit(canvas, e.image, rect.Min.X, rect.Min.Y)
		extrude(canvas, rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy(), b.Packer.extrusion())
		regions[e.name] = RegionOf(rect, width, height)
	}

	b.entries = nil
	b.names = make(map[string]int)

	return &Atlas{Canvas: canvas, Regions: regions}, nil
}

// extrude replicates the border of the w×h block at (x, y) outward by e
// pixels. Side columns are written first so that the top and bottom rows
// copied afterwards carry the corners with them.
func extrude(canvas *raw.Image, x, y, w, h, e int) {
	if e <= 0 || w <= 0 || h <= 0 {
		return
	}
	const bpp = 4
	stride := canvas.Stride()

	for row := y; row < y+h; row++ {
		base := row * stride
		left := canvas.Pix[base+x*bpp : base+(x+1)*bpp]
		right := canvas.Pix[base+(x+w-1)*bpp : base+(x+w)*bpp]
		for i := 1; i <= e; i++ {
			copy(canvas.Pix[base+(x-i)*bpp:], left)
			copy(canvas.Pix[base+(x+w-1+i)*bpp:], right)
		}
	}

	from, to := (x-e)*bpp, (x+w+e)*bpp
	top := canvas.Pix[y*stride+from : y*stride+to]
	bottom := canvas.Pix[(y+h-1)*stride+from : (y+h-1)*stride+to]
	for i := 1; i <= e; i++ {
		copy(canvas.Pix[(y-i)*stride+from:(y-i)*stride+to], top)
		copy(canvas.Pix[(y+h-1+i)*stride+from:(y+h-1+i)*stride+to], bottom)
	}
}
