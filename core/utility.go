package core

import (
	"encoding/binary"
	"errors"
	"path"
	"sort"
	"strings"
)

const shaderSuffix = ".spv"

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// ErrNotSpirv is returned for code that is not a SPIR-V module.
var ErrNotSpirv = errors.New("core: not a SPIR-V module")

// ParseShaderName splits a shader file name. It is important that the file
// name does not contain more than two dots, the first is always the name of
// the shader, second is type, and the third one ensures that the shader is
// compiled (only compiled shaders have an .spv extension).
func ParseShaderName(file string) (string, ShaderType, bool) {
	base := path.Base(file)
	if !strings.HasSuffix(base, shaderSuffix) {
		return "", UnknownShaderType, false
	}
	nodes := strings.Split(strings.TrimSuffix(base, shaderSuffix), ".")
	if len(nodes) != 2 || nodes[0] == "" {
		return "", UnknownShaderType, false
	}

	switch nodes[1] {
	case "frag":
		return nodes[0], FragmentShaderType, true
	case "vert":
		return nodes[0], VertexShaderType, true
	}
	return "", UnknownShaderType, false
}

// ShaderFiles picks the compiled shaders out of a directory listing,
// sorted by name.
func ShaderFiles(names []string) []string {
	var shaders []string
	for _, name := range names {
		if _, _, ok := ParseShaderName(name); ok {
			shaders = append(shaders, name)
		}
	}
	sort.Strings(shaders)
	return shaders
}

// Words reslices bytes into the uint32 words that are used
// to submit shaders for processing. The byte order is taken
// from the SPIR-V magic number.
func Words(data []byte) ([]uint32, error) {
	if len(data) < 4 || len(data)%4 != 0 {
		return nil, ErrNotSpirv
	}

	var order binary.ByteOrder = binary.LittleEndian
	if order.Uint32(data) != spirvMagic {
		order = binary.BigEndian
		if order.Uint32(data) != spirvMagic {
			return nil, ErrNotSpirv
		}
	}

	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = order.Uint32(data[4*i:])
	}
	return words, nil
}
