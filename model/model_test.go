package model_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	glm "github.com/go-gl/mathgl/mgl32"

	"github.com/devblok/koruasset/model"
)

const triangleDAE = `<?xml version="1.0" encoding="utf-8"?>
<COLLADA xmlns="http://www.collada.org/2005/11/COLLADASchema" version="1.4.1">
  <library_geometries>
    <geometry id="Tri-mesh" name="Tri">
      <mesh>
        <source id="Tri-mesh-positions">
          <float_array id="Tri-mesh-positions-array" count="9">0 0 0 2 0 0 0 4 0</float_array>
          <technique_common>
            <accessor source="#Tri-mesh-positions-array" count="3" stride="3"/>
          </technique_common>
        </source>
        <source id="Tri-mesh-normals">
          <float_array id="Tri-mesh-normals-array" count="3">0 0 1</float_array>
          <technique_common>
            <accessor source="#Tri-mesh-normals-array" count="1" stride="3"/>
          </technique_common>
        </source>
        <source id="Tri-mesh-map-0">
          <float_array id="Tri-mesh-map-0-array" count="6">0 0 1 0 0 1</float_array>
          <technique_common>
            <accessor source="#Tri-mesh-map-0-array" count="3" stride="2"/>
          </technique_common>
        </source>
        <vertices id="Tri-mesh-vertices">
          <input semantic="POSITION" source="#Tri-mesh-positions"/>
        </vertices>
        <triangles material="Material-material" count="1">
          <input semantic="VERTEX" source="#Tri-mesh-vertices" offset="0"/>
          <input semantic="NORMAL" source="#Tri-mesh-normals" offset="1"/>
          <input semantic="TEXCOORD" source="#Tri-mesh-map-0" offset="2" set="0"/>
          <p>0 0 0 1 0 1 2 0 2</p>
        </triangles>
      </mesh>
    </geometry>
  </library_geometries>
</COLLADA>`

func TestImportCollada(t *testing.T) {
	c := qt.New(t)

	mesh, err := model.ImportCollada([]byte(triangleDAE))
	c.Assert(err, qt.IsNil)
	c.Assert(mesh.Name, qt.Equals, "Tri")
	c.Assert(mesh.Triangles(), qt.Equals, 1)

	c.Assert(mesh.Vertices[1].Pos, qt.Equals, glm.Vec3{2, 0, 0})
	c.Assert(mesh.Vertices[2].Normal, qt.Equals, glm.Vec3{0, 0, 1})
	c.Assert(mesh.Vertices[0].UV, qt.Equals, glm.Vec2{0, 1})
	c.Assert(mesh.Vertices[2].UV, qt.Equals, glm.Vec2{0, 0})
	c.Assert(mesh.Vertices[0].Color, qt.Equals, model.DefaultColor)

	min, max := mesh.Bounds()
	c.Assert(min, qt.Equals, glm.Vec3{0, 0, 0})
	c.Assert(max, qt.Equals, glm.Vec3{2, 4, 0})

	c.Assert(mesh.Interleave(), qt.HasLen, 3*model.FloatsPerVertex)
}

func TestImportColladaNoGeometry(t *testing.T) {
	_, err := model.ImportCollada([]byte(`<COLLADA><library_geometries/></COLLADA>`))
	qt.Assert(t, err, qt.Equals, model.ErrNoGeometry)
}

func TestImportColladaBadIndex(t *testing.T) {
	doc := []byte(`<COLLADA><library_geometries><geometry id="g"><mesh>
		<source id="p"><float_array id="pa">0 0 0</float_array>
		<technique_common><accessor stride="3"/></technique_common></source>
		<vertices id="v"><input semantic="POSITION" source="#p"/></vertices>
		<triangles count="1"><input semantic="VERTEX" source="#v" offset="0"/><p>0 0 5</p></triangles>
	</mesh></geometry></library_geometries></COLLADA>`)
	_, err := model.ImportCollada(doc)
	qt.Assert(t, err, qt.ErrorMatches, `model: geometry g: .*out of range.*`)
}

func TestTransformAndBind(t *testing.T) {
	c := qt.New(t)

	mesh, err := model.ImportCollada([]byte(triangleDAE))
	c.Assert(err, qt.IsNil)
	mesh.Transform(glm.Translate3D(1, 2, 3))
	c.Assert(mesh.Vertices[0].Pos, qt.Equals, glm.Vec3{1, 2, 3})
	c.Assert(mesh.Vertices[0].Normal, qt.Equals, glm.Vec3{0, 0, 1})

	mesh.TextureAlias = "crate"
	c.Assert(mesh.TextureRef(), qt.Equals, "crate")
	mesh.Bind(7)
	c.Assert(int(mesh.Texture), qt.Equals, 7)
}
