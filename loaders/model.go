package loaders

import (
	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/koruasset/asset"
	"github.com/devblok/koruasset/model"
)

// ModelConfig names the texture a model samples.
type ModelConfig struct {
	// Texture is the alias of a texture loaded earlier in the batch
	Texture string

	// Transform is applied to the mesh when set
	Transform glm.Mat4
}

// ModelLoader imports Collada files.
type ModelLoader struct{}

// Load implements asset.Loader.
func (l *ModelLoader) Load(q *asset.Queue, r asset.Resolver, req asset.Request) (asset.Commit, error) {
	cfg, err := configOf(req, ModelConfig{})
	if err != nil {
		return asset.Commit{}, err
	}
	data, err := r.ReadFile(req.Path)
	if err != nil {
		return asset.Commit{}, err
	}
	mesh, err := model.ImportCollada(data)
	if err != nil {
		return asset.Commit{}, err
	}
	if cfg.Transform != (glm.Mat4{}) {
		mesh.Transform(cfg.Transform)
	}
	mesh.TextureAlias = cfg.Texture
	return asset.Bind(asset.KindModel, req.Alias, mesh), nil
}
