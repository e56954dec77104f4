// Package core holds the configuration and the shared definitions of the
// asset pipeline.
package core

// ShaderType represents the type of shader thats loaded
type ShaderType int

// Identifies shader objects with their types
const (
	VertexShaderType ShaderType = iota
	FragmentShaderType
	UnknownShaderType
)

func (t ShaderType) String() string {
	switch t {
	case VertexShaderType:
		return "vert"
	case FragmentShaderType:
		return "frag"
	}
	return "unknown"
}

// Shader is the code of one shader stage. Compiled code is SPIR-V,
// anything else is handed to the shader compiler as source.
type Shader struct {
	Name     string
	Type     ShaderType
	Code     []byte
	Compiled bool
}

// Words returns compiled code as the words it is submitted with.
func (s Shader) Words() ([]uint32, error) {
	if !s.Compiled {
		return nil, ErrNotSpirv
	}
	return Words(s.Code)
}
