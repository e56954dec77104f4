// Package gfx defines the boundary between the asset pipeline and
// whatever owns the GPU context. Loaders never touch it directly, only
// the commit step running on the owning thread does.
package gfx

import (
	"errors"
	"sync"

	"github.com/devblok/koruasset/raw"
)

// ErrUnknownTexture is returned when a handle was never issued or is already released.
var ErrUnknownTexture = errors.New("gfx: unknown texture handle")

// TextureHandle identifies an uploaded texture. The zero value means none.
type TextureHandle uint32

// TextureOptions describes how a texture is created on the device.
type TextureOptions struct {
	// Mipmaps requests a full mip chain to be generated
	Mipmaps bool

	// Nearest selects nearest filtering instead of linear
	Nearest bool

	// Label is a debug name, usually the asset alias
	Label string
}

// Uploader creates and frees GPU textures.
type Uploader interface {

	// UploadTexture creates a texture from img. The image is
	// only read, the uploader must not keep a mutable reference.
	UploadTexture(img *raw.Image, opts TextureOptions) (TextureHandle, error)

	// Release frees the texture. Releasing twice is a no-op.
	Release(TextureHandle)
}

// Texture is what the Headless uploader remembers about an upload.
type Texture struct {
	Image   *raw.Image
	Options TextureOptions
}

// NewHeadless creates an Uploader that keeps textures in memory.
// It backs tools and tests that run without a device.
func NewHeadless() *Headless {
	return &Headless{
		textures: make(map[TextureHandle]Texture),
	}
}

// Headless hands out sequential handles and tracks live textures.
type Headless struct {
	mutex    sync.Mutex
	next     TextureHandle
	uploads  int
	textures map[TextureHandle]Texture
}

// UploadTexture implements Uploader.
func (h *Headless) UploadTexture(img *raw.Image, opts TextureOptions) (TextureHandle, error) {
	if img == nil {
		return 0, raw.ErrInvalidDimensions
	}
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.next++
	h.uploads++
	h.textures[h.next] = Texture{Image: img, Options: opts}
	return h.next, nil
}

// Release implements Uploader.
func (h *Headless) Release(handle TextureHandle) {
	h.mutex.Lock()
	delete(h.textures, handle)
	h.mutex.Unlock()
}

// Lookup returns the texture behind a live handle.
func (h *Headless) Lookup(handle TextureHandle) (Texture, error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	t, ok := h.textures[handle]
	if !ok {
		return Texture{}, ErrUnknownTexture
	}
	return t, nil
}

// Live returns the number of textures not yet released.
func (h *Headless) Live() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.textures)
}

// Uploads returns the total number of uploads performed.
func (h *Headless) Uploads() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return h.uploads
}
