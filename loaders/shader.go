package loaders

import (
	"fmt"

	"github.com/devblok/koruasset/asset"
	"github.com/devblok/koruasset/core"
)

// Program holds the two stages of a shader.
type Program struct {
	Name     string
	Vertex   core.Shader
	Fragment core.Shader
}

// ShaderLoader reads "<path>.vert" and "<path>.frag". Compiled variants
// named "<path>.vert.spv" and "<path>.frag.spv" are preferred.
type ShaderLoader struct{}

// Load implements asset.Loader.
func (l *ShaderLoader) Load(q *asset.Queue, r asset.Resolver, req asset.Request) (asset.Commit, error) {
	vert, err := readStage(r, req.Path, core.VertexShaderType)
	if err != nil {
		return asset.Commit{}, err
	}
	frag, err := readStage(r, req.Path, core.FragmentShaderType)
	if err != nil {
		return asset.Commit{}, err
	}
	return asset.Keep(asset.KindShader, req.Alias, &Program{
		Name:     vert.Name,
		Vertex:   vert,
		Fragment: frag,
	}), nil
}

func readStage(r asset.Resolver, base string, typ core.ShaderType) (core.Shader, error) {
	file := base + "." + typ.String()

	compiled := file + ".spv"
	ok, err := exists(r, compiled)
	if err != nil {
		return core.Shader{}, err
	}
	if ok {
		name, parsed, valid := core.ParseShaderName(compiled)
		if !valid || parsed != typ {
			return core.Shader{}, fmt.Errorf("%w: shader file name %s", ErrMalformed, compiled)
		}
		code, err := r.ReadFile(compiled)
		if err != nil {
			return core.Shader{}, err
		}
		if _, err := core.Words(code); err != nil {
			return core.Shader{}, fmt.Errorf("%s: %w", compiled, err)
		}
		return core.Shader{Name: name, Type: typ, Code: code, Compiled: true}, nil
	}

	code, err := r.ReadFile(file)
	if err != nil {
		return core.Shader{}, err
	}
	name, _, _ := core.ParseShaderName(compiled)
	return core.Shader{Name: name, Type: typ, Code: code}, nil
}
