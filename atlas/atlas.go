// Package atlas packs many named images into one texture and keeps the
// normalized sub-region of each of them. It also carves frame-by-frame
// animations out of packed entries.
package atlas

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/koruasset/gfx"
	"github.com/devblok/koruasset/raw"
)

// UVRegion is a normalized texture-space rectangle. V grows downward,
// row 0 of the canvas is v = 0.
type UVRegion struct {
	U1, V1 float32
	U2, V2 float32
}

// RegionOf converts a pixel rectangle in a width×height canvas.
func RegionOf(r image.Rectangle, width, height int) UVRegion {
	w, h := float32(width), float32(height)
	return UVRegion{
		U1: float32(r.Min.X) / w,
		V1: float32(r.Min.Y) / h,
		U2: float32(r.Max.X) / w,
		V2: float32(r.Max.Y) / h,
	}
}

// Pixels converts the region back to pixels in a width×height canvas.
func (r UVRegion) Pixels(width, height int) image.Rectangle {
	return image.Rect(
		round(r.U1*float32(width)),
		round(r.V1*float32(height)),
		round(r.U2*float32(width)),
		round(r.V2*float32(height)),
	)
}

// Vec4 packs the region as (u1, v1, u2, v2) for shader uniforms.
func (r UVRegion) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{r.U1, r.V1, r.U2, r.V2}
}

// Size returns the width and height of the region in UV units.
func (r UVRegion) Size() mgl32.Vec2 {
	return mgl32.Vec2{r.U2 - r.U1, r.V2 - r.V1}
}

func round(v float32) int {
	return int(math.Round(float64(v)))
}

// Atlas owns a composited canvas and the regions packed into it.
// The GPU texture is created on the first Prepare, so the same value
// serves headless tools and the renderer.
type Atlas struct {
	Canvas  *raw.Image
	Regions map[string]UVRegion

	texture gfx.TextureHandle
}

// Region returns the UV region of a named entry.
func (a *Atlas) Region(name string) (UVRegion, bool) {
	r, ok := a.Regions[name]
	return r, ok
}

// Pixels returns the pixel rectangle of a named entry.
func (a *Atlas) Pixels(name string) (image.Rectangle, bool) {
	r, ok := a.Regions[name]
	if !ok {
		return image.Rectangle{}, false
	}
	return r.Pixels(a.Canvas.Width, a.Canvas.Height), true
}

// Names returns the entry names in sorted order.
func (a *Atlas) Names() []string {
	names := make([]string, 0, len(a.Regions))
	for name := range a.Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the canvas dimensions.
func (a *Atlas) Size() (int, int) {
	return a.Canvas.Width, a.Canvas.Height
}

// Prepare uploads the canvas unless that already happened.
func (a *Atlas) Prepare(up gfx.Uploader, opts gfx.TextureOptions) error {
	if a.texture != 0 {
		return nil
	}
	handle, err := up.UploadTexture(a.Canvas, opts)
	if err != nil {
		return fmt.Errorf("atlas: upload: %w", err)
	}
	a.texture = handle
	return nil
}

// Texture returns the GPU handle, zero before Prepare.
func (a *Atlas) Texture() gfx.TextureHandle {
	return a.texture
}

// Release frees the GPU texture. The canvas stays usable.
func (a *Atlas) Release(up gfx.Uploader) {
	if a.texture == 0 {
		return
	}
	up.Release(a.texture)
	a.texture = 0
}

// Sprite is a single atlas entry, stored under "<atlas>/<entry>".
type Sprite struct {
	Atlas  *Atlas
	Name   string
	Region UVRegion
}

// Sprites lists one Sprite per entry, ordered by name.
func (a *Atlas) Sprites() []Sprite {
	names := a.Names()
	sprites := make([]Sprite, len(names))
	for i, name := range names {
		sprites[i] = Sprite{Atlas: a, Name: name, Region: a.Regions[name]}
	}
	return sprites
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame jsonRect   `json:"frame"`
	UV    [4]float32 `json:"uv"`
}

type jsonRegions struct {
	Meta struct {
		Image string   `json:"image,omitempty"`
		Size  jsonSize `json:"size"`
	} `json:"meta"`
	Frames map[string]jsonFrame `json:"frames"`
}

// WriteRegions writes the region map as JSON in the hash layout most
// sprite packers emit. image names the canvas file, it may be empty.
func (a *Atlas) WriteRegions(w io.Writer, image string) error {
	var doc jsonRegions
	doc.Meta.Image = image
	doc.Meta.Size = jsonSize{W: a.Canvas.Width, H: a.Canvas.Height}
	doc.Frames = make(map[string]jsonFrame, len(a.Regions))
	for name, r := range a.Regions {
		px := r.Pixels(a.Canvas.Width, a.Canvas.Height)
		doc.Frames[name] = jsonFrame{
			Frame: jsonRect{X: px.Min.X, Y: px.Min.Y, W: px.Dx(), H: px.Dy()},
			UV:    [4]float32{r.U1, r.V1, r.U2, r.V2},
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// ReadRegions parses a region map written by WriteRegions. Regions are
// recomputed from pixel rectangles, so hand-edited files stay consistent.
func ReadRegions(r io.Reader) (map[string]UVRegion, image.Point, error) {
	var doc jsonRegions
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, image.Point{}, fmt.Errorf("atlas: failed to parse regions: %w", err)
	}
	size := image.Pt(doc.Meta.Size.W, doc.Meta.Size.H)
	if size.X <= 0 || size.Y <= 0 {
		return nil, image.Point{}, fmt.Errorf("atlas: regions have invalid size %v", size)
	}
	regions := make(map[string]UVRegion, len(doc.Frames))
	for name, f := range doc.Frames {
		rect := image.Rect(f.Frame.X, f.Frame.Y, f.Frame.X+f.Frame.W, f.Frame.Y+f.Frame.H)
		regions[name] = RegionOf(rect, size.X, size.Y)
	}
	return regions, size, nil
}
