// Package raw holds the owned pixel buffers that move between the asset
// loaders, the atlas compositor and the GPU upload boundary.
//
// An Image is owned by exactly one stage at a time. Stages hand images
// over by pointer and stop touching them afterwards, nothing in this
// module mutates an image it does not own.
package raw

import (
	"errors"
	"image"
	"image/color"
)

// package errors
var (
	ErrInvalidDimensions = errors.New("raw: invalid dimensions")
	ErrInvalidFormat     = errors.New("raw: invalid pixel format")
	ErrNotAnImage        = errors.New("raw: data is not a known image format")
)

// Format is the pixel layout of an Image.
type Format uint8

// Supported pixel formats
const (
	RGB8 Format = iota
	RGBA8
)

// BytesPerPixel returns the size of one pixel, 0 for unknown formats.
func (f Format) BytesPerPixel() int {
	switch f {
	case RGB8:
		return 3
	case RGBA8:
		return 4
	}
	return 0
}

func (f Format) String() string {
	switch f {
	case RGB8:
		return "RGB8"
	case RGBA8:
		return "RGBA8"
	}
	return "Unknown"
}

// Image is a tightly packed 2D pixel buffer. Row 0 is the top row.
type Image struct {
	Format Format
	Width  int
	Height int
	Pix    []byte
}

// New allocates a zeroed image.
func New(width, height int, format Format) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return nil, ErrInvalidFormat
	}
	return &Image{
		Format: format,
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*bpp),
	}, nil
}

// Stride is the number of bytes in one row.
func (m *Image) Stride() int {
	return m.Width * m.Format.BytesPerPixel()
}

// Bounds returns the image rectangle anchored at the origin.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

func (m *Image) offset(x, y int) int {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return -1
	}
	return y*m.Stride() + x*m.Format.BytesPerPixel()
}

// At returns the pixel at (x, y) as RGBA. RGB8 pixels read as opaque,
// coordinates outside the image read as transparent black.
func (m *Image) At(x, y int) [4]byte {
	o := m.offset(x, y)
	if o < 0 {
		return [4]byte{}
	}
	if m.Format == RGB8 {
		return [4]byte{m.Pix[o], m.Pix[o+1], m.Pix[o+2], 0xff}
	}
	return [4]byte{m.Pix[o], m.Pix[o+1], m.Pix[o+2], m.Pix[o+3]}
}

// Set writes an RGBA pixel, dropping alpha for RGB8 images.
// Writes outside the image are ignored.
func (m *Image) Set(x, y int, c [4]byte) {
	o := m.offset(x, y)
	if o < 0 {
		return
	}
	copy(m.Pix[o:o+m.Format.BytesPerPixel()], c[:])
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	pix := make([]byte, len(m.Pix))
	copy(pix, m.Pix)
	return &Image{
		Format: m.Format,
		Width:  m.Width,
		Height: m.Height,
		Pix:    pix,
	}
}

// ToRGBA returns an RGBA8 copy of the image.
func (m *Image) ToRGBA() *Image {
	if m.Format == RGBA8 {
		return m.Clone()
	}
	out, _ := New(m.Width, m.Height, RGBA8)
	Blit(out, m, 0, 0)
	return out
}

// Crop copies the part of m inside r into a new image of the same format.
// The rectangle is clipped to the image, an empty intersection returns nil.
func (m *Image) Crop(r image.Rectangle) *Image {
	r = r.Intersect(m.Bounds())
	if r.Empty() {
		return nil
	}
	out, _ := New(r.Dx(), r.Dy(), m.Format)
	bpp := m.Format.BytesPerPixel()
	for y := 0; y < r.Dy(); y++ {
		src := m.offset(r.Min.X, r.Min.Y+y)
		copy(out.Pix[y*out.Stride():(y+1)*out.Stride()], m.Pix[src:src+r.Dx()*bpp])
	}
	return out
}

// Opaque reports whether every pixel has full alpha.
func (m *Image) Opaque() bool {
	if m.Format == RGB8 {
		return true
	}
	for i := 3; i < len(m.Pix); i += 4 {
		if m.Pix[i] != 0xff {
			return false
		}
	}
	return true
}

// Blit copies src into dst with its top-left corner at (x, y), converting
// between formats. Pixels falling outside dst are clipped.
func Blit(dst, src *Image, x, y int) {
	r := image.Rect(x, y, x+src.Width, y+src.Height).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	if dst.Format == src.Format {
		bpp := dst.Format.BytesPerPixel()
		for row := r.Min.Y; row < r.Max.Y; row++ {
			so := src.offset(r.Min.X-x, row-y)
			do := dst.offset(r.Min.X, row)
			copy(dst.Pix[do:do+r.Dx()*bpp], src.Pix[so:so+r.Dx()*bpp])
		}
		return
	}
	for row := r.Min.Y; row < r.Max.Y; row++ {
		for col := r.Min.X; col < r.Max.X; col++ {
			dst.Set(col, row, src.At(col-x, row-y))
		}
	}
}

// ToImage wraps a copy of the pixels in a standard library image.
func (m *Image) ToImage() image.Image {
	out := image.NewNRGBA(m.Bounds())
	if m.Format == RGBA8 {
		copy(out.Pix, m.Pix)
		return out
	}
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := m.At(x, y)
			out.SetNRGBA(x, y, color.NRGBA{R: c[0], G: c[1], B: c[2], A: c[3]})
		}
	}
	return out
}
