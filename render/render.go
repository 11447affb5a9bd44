// Package render converts skeletonization inputs and results to and
// from interchange formats: binary STL for triangle geometry and
// Wavefront OBJ polylines for extracted skeletons.
package render

import (
	"github.com/soypat/mcfskel/trimesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle3 is a 3D triangle with corners ordered counterclockwise when
// seen from the outside of the surface.
type Triangle3 struct {
	V [3]r3.Vec
}

// Normal returns the unit normal of the triangle plane.
func (t Triangle3) Normal() r3.Vec {
	e1 := r3.Sub(t.V[1], t.V[0])
	e2 := r3.Sub(t.V[2], t.V[0])
	return r3.Unit(r3.Cross(e1, e2))
}

// FromMesh returns the faces of a mesh as render triangles.
func FromMesh(m *trimesh.Mesh) []Triangle3 {
	model := make([]Triangle3, m.NumFaces())
	for f := range model {
		face := m.Face(f)
		model[f] = Triangle3{V: [3]r3.Vec{
			m.Vertex(face[0]),
			m.Vertex(face[1]),
			m.Vertex(face[2]),
		}}
	}
	return model
}

// R3Triangles converts render triangles to gonum triangles, the input
// format of trimesh.FromTriangles.
func R3Triangles(model []Triangle3) []r3.Triangle {
	tris := make([]r3.Triangle, len(model))
	for i, t := range model {
		tris[i] = r3.Triangle(t.V)
	}
	return tris
}
