package model

import (
	"errors"
	"fmt"

	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/koruasset/util/collada"
)

// ErrNoGeometry is returned for files without triangle geometry.
var ErrNoGeometry = errors.New("model: no triangle geometry")

// ImportCollada reads given file and converts the first Collada
// geometry holding triangles to a Mesh.
func ImportCollada(fileContents []byte) (*Mesh, error) {
	doc, err := collada.Decode(fileContents)
	if err != nil {
		return nil, err
	}

	for _, geometry := range doc.Geometries {
		mesh := geometry.Mesh
		if len(mesh.Triangles.Index) == 0 {
			continue
		}
		vertices, err := triangles(&mesh)
		if err != nil {
			return nil, fmt.Errorf("model: geometry %s: %w", geometry.ID, err)
		}
		name := geometry.Name
		if name == "" {
			name = geometry.ID
		}
		return &Mesh{Name: name, Vertices: vertices}, nil
	}
	return nil, ErrNoGeometry
}

type channel struct {
	offset int
	source *collada.Source
}

func triangles(mesh *collada.Mesh) ([]Vertex, error) {
	tris := &mesh.Triangles

	vertexInput, ok := tris.Input("VERTEX")
	if !ok {
		return nil, errors.New("triangles have no VERTEX input")
	}
	position, ok := mesh.Vertices.Input("POSITION")
	if !ok {
		return nil, errors.New("vertices have no POSITION input")
	}
	posSource, err := mesh.Find(position.Source)
	if err != nil {
		return nil, err
	}
	pos := channel{offset: int(vertexInput.Offset), source: posSource}

	var normal, uv *channel
	for _, semantic := range []string{"NORMAL", "TEXCOORD"} {
		var (
			in  collada.Input
			off int
		)
		if in, ok = tris.Input(semantic); ok {
			off = int(in.Offset)
		} else if in, ok = mesh.Vertices.Input(semantic); ok {
			off = pos.offset
		} else {
			continue
		}
		source, err := mesh.Find(in.Source)
		if err != nil {
			return nil, err
		}
		ch := &channel{offset: off, source: source}
		if semantic == "NORMAL" {
			normal = ch
		} else {
			uv = ch
		}
	}

	stride := tris.Stride()
	if len(tris.Index)%(stride*3) != 0 {
		return nil, fmt.Errorf("index list of %d is not made of triangles", len(tris.Index))
	}

	vertices := make([]Vertex, 0, len(tris.Index)/stride)
	for idx := 0; idx < len(tris.Index)/stride; idx++ {
		indices := tris.Index[stride*idx : stride*idx+stride]
		vert := Vertex{Color: DefaultColor}

		p, err := pos.source.Element(indices[pos.offset])
		if err != nil {
			return nil, err
		}
		if len(p) < 3 {
			return nil, fmt.Errorf("position stride %d", len(p))
		}
		vert.Pos = glm.Vec3{p[0], p[1], p[2]}

		if normal != nil {
			n, err := normal.source.Element(indices[normal.offset])
			if err != nil {
				return nil, err
			}
			if len(n) >= 3 {
				vert.Normal = glm.Vec3{n[0], n[1], n[2]}
			}
		}
		if uv != nil {
			t, err := uv.source.Element(indices[uv.offset])
			if err != nil {
				return nil, err
			}
			if len(t) >= 2 {
				// Collada's t axis points up, textures are stored top row first
				vert.UV = glm.Vec2{t[0], 1 - t[1]}
			}
		}
		vertices = append(vertices, vert)
	}
	return vertices, nil
}
