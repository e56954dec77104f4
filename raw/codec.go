package raw

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"

	// stdlib decoders
	_ "image/gif"
	_ "image/jpeg"

	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decoder turns encoded file contents into an Image.
type Decoder interface {
	Decode(data []byte) (*Image, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(data []byte) (*Image, error)

// Decode implements Decoder.
func (f DecoderFunc) Decode(data []byte) (*Image, error) {
	return f(data)
}

// DefaultDecoder decodes every format registered with the image package.
var DefaultDecoder Decoder = DecoderFunc(Decode)

// Decode sniffs data and decodes it. Opaque images come back as RGB8,
// everything else as RGBA8.
func Decode(data []byte) (*Image, error) {
	if !filetype.IsImage(data) {
		return nil, ErrNotAnImage
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("raw: decode: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, ErrInvalidDimensions
	}
	return FromImage(img), nil
}

// Encode writes m as PNG.
func Encode(w io.Writer, m *Image) error {
	if err := png.Encode(w, m.ToImage()); err != nil {
		return fmt.Errorf("raw: encode PNG: %w", err)
	}
	return nil
}

// FromImage converts a standard library image by drawing it onto a
// controlled non-premultiplied canvas.
func FromImage(img image.Image) *Image {
	b := img.Bounds()
	nrgba, ok := img.(*image.NRGBA)
	if !ok || b.Min != (image.Point{}) || nrgba.Stride != 4*b.Dx() {
		nrgba = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	}

	out := &Image{
		Format: RGBA8,
		Width:  b.Dx(),
		Height: b.Dy(),
		Pix:    make([]byte, len(nrgba.Pix)),
	}
	copy(out.Pix, nrgba.Pix)
	if !nrgba.Opaque() {
		return out
	}

	rgb := &Image{
		Format: RGB8,
		Width:  out.Width,
		Height: out.Height,
		Pix:    make([]byte, 0, out.Width*out.Height*3),
	}
	for i := 0; i < len(out.Pix); i += 4 {
		rgb.Pix = append(rgb.Pix, out.Pix[i], out.Pix[i+1], out.Pix[i+2])
	}
	return rgb
}
