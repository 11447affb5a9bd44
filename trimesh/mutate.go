package trimesh

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// Manifold-preserving topology mutations. Both mutations re-derive the
// edge table and adjacency before returning, so all vertex and edge ids
// obtained before the call are invalidated on success.

// CollapseEdge merges the endpoints of edge e into the lower-id endpoint
// and places the merged vertex at position at. The two faces bordering e
// are removed. Returns the pre-collapse id of the removed (higher-id)
// endpoint; ids greater than it shift down by one so that vertex ids
// stay dense. CollapseEdge returns ErrCollapsePinch without mutating the
// mesh if merging the endpoints would create a non-manifold vertex or a
// duplicate edge.
func CollapseEdge(m *Mesh, e int, at r3.Vec) (removed int, err error) {
	u, v := m.Edge(e)
	fa, fb := m.EdgeFaces(e)
	if fb < 0 {
		return -1, fmt.Errorf("%w: cannot collapse boundary edge %d", ErrOpenSurface, e)
	}
	wa := m.opposite(fa, u, v)
	wb := m.opposite(fb, u, v)
	if wa == wb {
		return -1, ErrCollapsePinch
	}
	// Link condition: the only vertices adjacent to both endpoints must
	// be the two vertices opposite the collapsing edge. Any third common
	// neighbor would yield a duplicate edge after the merge.
	var unbrs []int
	unbrs = m.Neighbors(u, unbrs)
	for _, n := range m.Neighbors(v, nil) {
		if n == u || n == wa || n == wb {
			continue
		}
		for _, un := range unbrs {
			if un == n {
				return -1, ErrCollapsePinch
			}
		}
	}

	m.vertices[u] = at
	// Drop the two faces bordering e and remap v to u everywhere else.
	keep := m.faces[:0]
	for f := range m.faces {
		if f == fa || f == fb {
			continue
		}
		face := m.faces[f]
		for k := 0; k < 3; k++ {
			if face[k] == v {
				face[k] = u
			}
			if face[k] > v {
				face[k]--
			}
		}
		keep = append(keep, face)
	}
	m.faces = keep
	m.vertices = append(m.vertices[:v], m.vertices[v+1:]...)
	if err := m.rebuild(); err != nil {
		// The link condition rules this out. A failure here means the
		// mesh was already corrupt.
		return -1, err
	}
	return v, nil
}

// SplitEdge subdivides edge e at position at, replacing each of its two
// bordering faces with two faces. The new vertex id is the previous
// vertex count, so existing vertex ids are preserved; edge and face ids
// are re-derived.
func SplitEdge(m *Mesh, e int, at r3.Vec) (newVertex int, err error) {
	u, v := m.Edge(e)
	fa, fb := m.EdgeFaces(e)
	if fb < 0 {
		return -1, fmt.Errorf("%w: cannot split boundary edge %d", ErrOpenSurface, e)
	}
	n := len(m.vertices)
	m.vertices = append(m.vertices, at)
	for _, f := range [2]int{fa, fb} {
		face := m.faces[f]
		// Find the oriented occurrence p->q of edge u-v in this face so
		// both halves keep the face winding.
		var p, q, w int
		for k := 0; k < 3; k++ {
			a, b := face[k], face[(k+1)%3]
			if (a == u && b == v) || (a == v && b == u) {
				p, q, w = a, b, face[(k+2)%3]
				break
			}
		}
		m.faces[f] = [3]int{p, n, w}
		m.faces = append(m.faces, [3]int{n, q, w})
	}
	if err := m.rebuild(); err != nil {
		return -1, err
	}
	return n, nil
}
