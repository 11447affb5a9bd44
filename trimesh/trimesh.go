// Package trimesh implements an indexed triangle mesh for closed
// 2-manifold surfaces. Vertices and edges carry dense integer ids in
// [0,N) and [0,M) which are re-derived after every topology mutation so
// that they can be used directly as linear system indices.
package trimesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/soypat/mcfskel/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	// ErrNonManifold is returned when an edge borders more than two faces.
	ErrNonManifold = errors.New("trimesh: edge borders more than two faces")
	// ErrOpenSurface is returned when an edge borders less than two faces.
	ErrOpenSurface = errors.New("trimesh: surface has boundary edges")
	// ErrIsolatedVertex is returned when a vertex has no incident edges.
	ErrIsolatedVertex = errors.New("trimesh: isolated vertex")
	// ErrCollapsePinch is returned by CollapseEdge when merging the edge
	// endpoints would create a non-manifold vertex or a duplicate edge.
	ErrCollapsePinch = errors.New("trimesh: collapse would pinch surface")
)

// Mesh is a triangle mesh with dense vertex, edge and face ids and
// derived adjacency tables. The zero value is not usable, use New or
// FromTriangles.
type Mesh struct {
	vertices []r3.Vec
	faces    [][3]int
	// Derived connectivity below. Rebuilt by rebuild after any
	// change to faces. edges stores endpoints lower id first.
	edges     [][2]int
	edgeFaces [][2]int
	vertEdges [][]int
}

// New creates a mesh from vertex positions and counterclockwise-wound
// triangle faces. The face slice is copied. New fails if face indices are
// out of range or if an edge borders more than two faces. It does not
// require the surface to be closed; use Validate for that.
func New(vertices []r3.Vec, faces [][3]int) (*Mesh, error) {
	m := &Mesh{
		vertices: append([]r3.Vec{}, vertices...),
		faces:    make([][3]int, len(faces)),
	}
	for i, f := range faces {
		for _, v := range f {
			if v < 0 || v >= len(vertices) {
				return nil, fmt.Errorf("trimesh: face %d references vertex %d out of range [0,%d)", i, v, len(vertices))
			}
		}
		if f[0] == f[1] || f[1] == f[2] || f[2] == f[0] {
			return nil, fmt.Errorf("trimesh: face %d has repeated vertex", i)
		}
		m.faces[i] = f
	}
	if err := m.rebuild(); err != nil {
		return nil, err
	}
	return m, nil
}

// FromTriangles creates a mesh from a triangle soup, welding vertices
// closer than tol. tol should be of the order of 1/1000th of the size
// of the smallest triangle in the model. If set to 0 then it is
// inferred automatically.
func FromTriangles(triangles []r3.Triangle, tol float64) (*Mesh, error) {
	if len(triangles) == 0 {
		return nil, errors.New("trimesh: empty triangle slice")
	}
	minSide := math.MaxFloat64
	maxSide := -math.MaxFloat64
	for i := range triangles {
		for j, vert := range triangles[i] {
			side := r3.Norm(r3.Sub(triangles[i][(j+1)%3], vert))
			minSide = math.Min(minSide, side)
			maxSide = math.Max(maxSide, side)
		}
	}
	if tol > maxSide/2 {
		return nil, fmt.Errorf("trimesh: weld tolerance too large, suggested tolerance: %g", minSide/256)
	}
	if tol == 0 {
		tol = minSide / 256
	}
	if tol <= 0 {
		return nil, errors.New("trimesh: model contains zero-length triangle side")
	}
	lookup := make(map[[3]int64]int)
	var vertices []r3.Vec
	faces := make([][3]int, len(triangles))
	for i := range triangles {
		for j, vert := range triangles[i] {
			key := [3]int64{
				int64(math.Round(vert.X / tol)),
				int64(math.Round(vert.Y / tol)),
				int64(math.Round(vert.Z / tol)),
			}
			idx, ok := lookup[key]
			if !ok {
				idx = len(vertices)
				vertices = append(vertices, vert)
				lookup[key] = idx
			}
			faces[i][j] = idx
		}
	}
	return New(vertices, faces)
}

// rebuild re-derives the edge table and adjacency from the face list.
// All edge ids are invalidated.
func (m *Mesh) rebuild() error {
	lookup := make(map[[2]int]int, 3*len(m.faces)/2)
	m.edges = m.edges[:0]
	m.edgeFaces = m.edgeFaces[:0]
	for f, face := range m.faces {
		for k := 0; k < 3; k++ {
			u, v := face[k], face[(k+1)%3]
			if u > v {
				u, v = v, u
			}
			e, ok := lookup[[2]int{u, v}]
			if !ok {
				e = len(m.edges)
				lookup[[2]int{u, v}] = e
				m.edges = append(m.edges, [2]int{u, v})
				m.edgeFaces = append(m.edgeFaces, [2]int{f, -1})
				continue
			}
			if m.edgeFaces[e][1] >= 0 {
				return fmt.Errorf("%w: edge %d-%d", ErrNonManifold, u, v)
			}
			m.edgeFaces[e][1] = f
		}
	}
	m.vertEdges = make([][]int, len(m.vertices))
	for e, uv := range m.edges {
		m.vertEdges[uv[0]] = append(m.vertEdges[uv[0]], e)
		m.vertEdges[uv[1]] = append(m.vertEdges[uv[1]], e)
	}
	return nil
}

// Validate checks that the mesh is a closed 2-manifold surface with no
// isolated vertices. A nil result means the mesh satisfies the input
// invariants of the contraction engine.
func (m *Mesh) Validate() error {
	for e, ef := range m.edgeFaces {
		if ef[1] < 0 {
			uv := m.edges[e]
			return fmt.Errorf("%w: edge %d-%d has one face", ErrOpenSurface, uv[0], uv[1])
		}
	}
	for v, incident := range m.vertEdges {
		if len(incident) == 0 {
			return fmt.Errorf("%w: vertex %d", ErrIsolatedVertex, v)
		}
	}
	return nil
}

// NumVertices returns the number of vertices N. Vertex ids are dense in [0,N).
func (m *Mesh) NumVertices() int { return len(m.vertices) }

// NumEdges returns the number of unique edges M. Edge ids are dense in [0,M).
func (m *Mesh) NumEdges() int { return len(m.edges) }

// NumFaces returns the number of triangle faces.
func (m *Mesh) NumFaces() int { return len(m.faces) }

// Vertex returns the position of vertex i.
func (m *Mesh) Vertex(i int) r3.Vec { return m.vertices[i] }

// SetVertex overwrites the position of vertex i. It does not change topology.
func (m *Mesh) SetVertex(i int, p r3.Vec) { m.vertices[i] = p }

// Face returns the three vertex ids of face f.
func (m *Mesh) Face(f int) [3]int { return m.faces[f] }

// Edge returns the endpoint vertex ids of edge e, lower id first.
func (m *Mesh) Edge(e int) (u, v int) {
	uv := m.edges[e]
	return uv[0], uv[1]
}

// EdgeFaces returns the ids of the two faces bordering edge e.
// The second id is negative for a boundary edge.
func (m *Mesh) EdgeFaces(e int) (f0, f1 int) {
	ef := m.edgeFaces[e]
	return ef[0], ef[1]
}

// VertexEdges returns the ids of edges incident to vertex i. The returned
// slice is owned by the mesh and valid until the next topology mutation.
func (m *Mesh) VertexEdges(i int) []int { return m.vertEdges[i] }

// Neighbors appends the ids of vertices sharing an edge with vertex i to
// dst and returns the result.
func (m *Mesh) Neighbors(i int, dst []int) []int {
	for _, e := range m.vertEdges[i] {
		uv := m.edges[e]
		if uv[0] == i {
			dst = append(dst, uv[1])
		} else {
			dst = append(dst, uv[0])
		}
	}
	return dst
}

// EdgeLength returns the length of edge e.
func (m *Mesh) EdgeLength(e int) float64 {
	uv := m.edges[e]
	return r3.Norm(r3.Sub(m.vertices[uv[1]], m.vertices[uv[0]]))
}

// MeanEdgeLength returns the average edge length over the whole mesh.
func (m *Mesh) MeanEdgeLength() float64 {
	if len(m.edges) == 0 {
		return 0
	}
	var sum float64
	for e := range m.edges {
		sum += m.EdgeLength(e)
	}
	return sum / float64(len(m.edges))
}

// FaceArea returns the area of face f.
func (m *Mesh) FaceArea(f int) float64 {
	face := m.faces[f]
	return d3.TriArea(m.vertices[face[0]], m.vertices[face[1]], m.vertices[face[2]])
}

// VertexRingArea returns the total area of the faces incident to vertex i.
func (m *Mesh) VertexRingArea(i int) float64 {
	var area float64
	for _, f := range m.vertexFaces(i, nil) {
		area += m.FaceArea(f)
	}
	return area
}

// vertexFaces appends the deduplicated ids of faces incident to vertex i.
func (m *Mesh) vertexFaces(i int, dst []int) []int {
	for _, e := range m.vertEdges[i] {
		for _, f := range m.edgeFaces[e] {
			if f < 0 {
				continue
			}
			seen := false
			for _, have := range dst {
				if have == f {
					seen = true
					break
				}
			}
			if !seen {
				dst = append(dst, f)
			}
		}
	}
	return dst
}

// Opposite returns the vertex of face f not on edge e. Face f must
// border edge e.
func (m *Mesh) Opposite(f, e int) int {
	uv := m.edges[e]
	return m.opposite(f, uv[0], uv[1])
}

// opposite returns the vertex of face f not on edge u-v.
func (m *Mesh) opposite(f, u, v int) int {
	for _, w := range m.faces[f] {
		if w != u && w != v {
			return w
		}
	}
	panic("trimesh: face does not border edge")
}

// Bounds returns the bounding box of the mesh.
func (m *Mesh) Bounds() d3.Box {
	bb := d3.Box{Min: d3.Elem(math.MaxFloat64), Max: d3.Elem(-math.MaxFloat64)}
	for _, v := range m.vertices {
		bb = bb.Include(v)
	}
	return bb
}

// Triangles returns a copy of the mesh geometry as a triangle soup.
func (m *Mesh) Triangles() []r3.Triangle {
	tris := make([]r3.Triangle, len(m.faces))
	for i, face := range m.faces {
		tris[i] = r3.Triangle{m.vertices[face[0]], m.vertices[face[1]], m.vertices[face[2]]}
	}
	return tris
}

// Vertices returns a copy of the vertex positions in id order.
func (m *Mesh) Vertices() []r3.Vec {
	return append([]r3.Vec{}, m.vertices...)
}

// Edges returns a copy of the edge endpoint table in id order.
func (m *Mesh) Edges() [][2]int {
	return append([][2]int{}, m.edges...)
}
