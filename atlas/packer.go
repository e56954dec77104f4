package atlas

import (
	"fmt"
	"image"
	"sort"
)

// Packer defaults
const (
	DefaultExtrusion = 2
	DefaultAlignment = 4
	DefaultStartSize = 32
	DefaultMaxSize   = 8192
)

// Packer places rectangles into a power-of-two canvas, growing the
// canvas until everything fits. It is a greedy heuristic: items are
// sorted largest first and each one takes the top-most, left-most free
// spot found by a row scan.
type Packer struct {
	// Extrusion is the border, in pixels, reserved around every item
	// so the compositor can replicate edge pixels into it.
	Extrusion int

	// Alignment rounds aligned footprints up to a multiple of itself.
	Alignment int

	// Fast advances the row scan by the item's footprint height instead
	// of visiting every row where a placed footprint ends.
	Fast bool

	// StartSize is the side of the first canvas tried.
	StartSize int

	// MaxSize bounds both canvas dimensions.
	MaxSize int
}

// DefaultPacker returns a packer with the default settings.
func DefaultPacker() Packer {
	return Packer{
		Extrusion: DefaultExtrusion,
		Alignment: DefaultAlignment,
		StartSize: DefaultStartSize,
		MaxSize:   DefaultMaxSize,
	}
}

// Item is a rectangle to be placed.
type Item struct {
	Width  int
	Height int

	// Align requests the footprint to be rounded up to the Alignment.
	Align bool
}

// Placement is where an item ended up.
type Placement struct {
	// Index of the item in the slice given to Pack
	Index int

	// Footprint is the inflated area reserved for the item
	Footprint image.Rectangle

	// Rect is the area the item's own pixels occupy, inset
	// from the footprint by the extrusion
	Rect image.Rectangle
}

func (p Packer) startSize() int {
	start := p.StartSize
	if start <= 0 {
		start = DefaultStartSize
	}
	if max := p.maxSize(); start > max {
		start = max
	}
	return start
}

func (p Packer) maxSize() int {
	if p.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return p.MaxSize
}

func (p Packer) extrusion() int {
	if p.Extrusion < 0 {
		return 0
	}
	return p.Extrusion
}

// Footprint returns the inflated size an item occupies in the canvas.
func (p Packer) Footprint(it Item) image.Point {
	e := p.extrusion()
	w, h := it.Width+2*e, it.Height+2*e
	if it.Align && p.Alignment > 1 {
		w = roundUp(w, p.Alignment)
		h = roundUp(h, p.Alignment)
	}
	return image.Pt(w, h)
}

func roundUp(v, to int) int {
	return (v + to - 1) / to * to
}

// Pack places all items and returns the canvas size together with one
// placement per item, indexed like items. An empty input yields the
// starting canvas. When the items cannot fit under MaxSize the error
// wraps ErrAtlasResolutionExceeded and no placements are returned.
func (p Packer) Pack(items []Item) (width, height int, placements []Placement, err error) {
	max := p.maxSize()
	sizes := make([]image.Point, len(items))
	order := make([]int, len(items))
	for i, it := range items {
		if it.Width <= 0 || it.Height <= 0 {
			return 0, 0, nil, fmt.Errorf("%w: item %d is %dx%d", ErrInvalidItem, i, it.Width, it.Height)
		}
		sizes[i] = p.Footprint(it)
		if sizes[i].X > max || sizes[i].Y > max {
			return 0, 0, nil, fmt.Errorf("%w: item %d needs %dx%d, maximum is %d",
				ErrAtlasResolutionExceeded, i, sizes[i].X, sizes[i].Y, max)
		}
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return better(sizes[order[a]], sizes[order[b]])
	})

	width, height = p.startSize(), p.startSize()
	for {
		if placements, ok := p.place(width, height, order, sizes); ok {
			e := p.extrusion()
			for i := range placements {
				min := placements[i].Footprint.Min.Add(image.Pt(e, e))
				placements[i].Rect = image.Rectangle{
					Min: min,
					Max: min.Add(image.Pt(items[i].Width, items[i].Height)),
				}
			}
			return width, height, placements, nil
		}

		if width <= height {
			width *= 2
		} else {
			height *= 2
		}
		if width > max || height > max {
			return 0, 0, nil, fmt.Errorf("%w: %d items need more than %dx%d",
				ErrAtlasResolutionExceeded, len(items), max, max)
		}
	}
}

// better orders footprints for placement: longest side first, then area.
func better(a, b image.Point) bool {
	la, lb := longest(a), longest(b)
	if la != lb {
		return la > lb
	}
	return a.X*a.Y > b.X*b.Y
}

func longest(p image.Point) int {
	if p.X > p.Y {
		return p.X
	}
	return p.Y
}

// place tries to fit every item into a width×height canvas.
func (p Packer) place(width, height int, order []int, sizes []image.Point) ([]Placement, bool) {
	var (
		placed     = make([]image.Rectangle, 0, len(order))
		placements = make([]Placement, len(sizes))
		rows       = []int{0}
	)

	for _, idx := range order {
		size := sizes[idx]
		pos, ok := p.find(width, height, size, placed, rows)
		if !ok {
			return nil, false
		}

		r := image.Rectangle{Min: pos, Max: pos.Add(size)}
		placed = append(placed, r)
		placements[idx] = Placement{Index: idx, Footprint: r}
		rows = insertRow(rows, r.Max.Y)
	}
	return placements, true
}

func (p Packer) find(width, height int, size image.Point, placed []image.Rectangle, rows []int) (image.Point, bool) {
	if p.Fast {
		for y := 0; y+size.Y <= height; y += size.Y {
			if x, ok := scanRow(y, width, size, placed); ok {
				return image.Pt(x, y), true
			}
		}
		return image.Point{}, false
	}

	// A free spot can always slide up until its top touches y = 0 or the
	// bottom edge of a placed footprint, so only those rows are scanned.
	for _, y := range rows {
		if y+size.Y > height {
			break
		}
		if x, ok := scanRow(y, width, size, placed); ok {
			return image.Pt(x, y), true
		}
	}
	return image.Point{}, false
}

// scanRow walks a row left to right, jumping past the right edge of
// whatever footprint blocks the probe.
func scanRow(y, width int, size image.Point, placed []image.Rectangle) (int, bool) {
	x := 0
	for x+size.X <= width {
		probe := image.Rect(x, y, x+size.X, y+size.Y)
		hit := collision(probe, placed)
		if hit < 0 {
			return x, true
		}
		x = placed[hit].Max.X
	}
	return 0, false
}

func collision(probe image.Rectangle, placed []image.Rectangle) int {
	for i, r := range placed {
		if probe.Overlaps(r) {
			return i
		}
	}
	return -1
}

func insertRow(rows []int, y int) []int {
	i := sort.SearchInts(rows, y)
	if i < len(rows) && rows[i] == y {
		return rows
	}
	rows = append(rows, 0)
	copy(rows[i+1:], rows[i:])
	rows[i] = y
	return rows
}
