// Package model holds meshes imported from model files.
package model

import (
	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/koruasset/gfx"
)

// Vertex is a model vertex
type Vertex struct {
	Pos    glm.Vec3
	Normal glm.Vec3
	UV     glm.Vec2
	Color  glm.Vec4
}

// FloatsPerVertex is the length of one interleaved vertex.
const FloatsPerVertex = 3 + 3 + 2 + 4

// DefaultColor is given to vertices the file has no color for.
var DefaultColor = glm.Vec4{1.0, 1.0, 1.0, 1.0}

// Mesh is a triangle list with an optional texture. The texture is
// referenced by alias at load time and bound when the mesh is committed.
type Mesh struct {
	Name     string
	Vertices []Vertex

	// TextureAlias names a texture that must be stored before the mesh
	TextureAlias string

	// Texture is set once the mesh is committed
	Texture gfx.TextureHandle
}

// TextureRef returns the alias of the texture the mesh samples.
func (m *Mesh) TextureRef() string {
	return m.TextureAlias
}

// Bind attaches the committed texture.
func (m *Mesh) Bind(handle gfx.TextureHandle) {
	m.Texture = handle
}

// Triangles returns the number of triangles.
func (m *Mesh) Triangles() int {
	return len(m.Vertices) / 3
}

// Bounds returns the axis aligned box around every vertex.
func (m *Mesh) Bounds() (min, max glm.Vec3) {
	if len(m.Vertices) == 0 {
		return
	}
	min, max = m.Vertices[0].Pos, m.Vertices[0].Pos
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v.Pos[i] < min[i] {
				min[i] = v.Pos[i]
			}
			if v.Pos[i] > max[i] {
				max[i] = v.Pos[i]
			}
		}
	}
	return
}

// Transform applies mat to every position and its normal matrix to
// every normal.
func (m *Mesh) Transform(mat glm.Mat4) {
	normal := mat.Mat3().Inv().Transpose()
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Pos = mat.Mul4x1(v.Pos.Vec4(1)).Vec3()
		if n := normal.Mul3x1(v.Normal); n.Len() > 0 {
			v.Normal = n.Normalize()
		}
	}
}

// Interleave flattens the vertices in Pos, Normal, UV, Color order.
func (m *Mesh) Interleave() []float32 {
	out := make([]float32, 0, len(m.Vertices)*FloatsPerVertex)
	for _, v := range m.Vertices {
		out = append(out, v.Pos[:]...)
		out = append(out, v.Normal[:]...)
		out = append(out, v.UV[:]...)
		out = append(out, v.Color[:]...)
	}
	return out
}
