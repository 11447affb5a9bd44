package mcfskel

import (
	"math"

	"github.com/soypat/mcfskel/internal/d3"
	"github.com/soypat/mcfskel/trimesh"
)

// Weighter computes a per-edge scalar weight from current mesh geometry.
// Weight is a pure function of mesh state; the engine caches results in a
// per-iteration table and never reuses them across contraction steps.
// degenerate reports that one or both triangles bordering the edge were
// too degenerate to contribute and their contribution was clamped to zero.
type Weighter interface {
	Weight(m *trimesh.Mesh, e int) (w float64, degenerate bool)
}

// CotanWeighter is the default Weighter. It implements the discrete
// Laplace-Beltrami cotangent formula: half the sum of the cotangents of
// the two angles opposite the edge in its bordering triangles. Negative
// sums (very obtuse opposite angles) clamp to zero so weights stay
// non-negative, and degenerate triangles are skipped so the weight table
// never holds NaN or Inf.
type CotanWeighter struct{}

func (CotanWeighter) Weight(m *trimesh.Mesh, e int) (w float64, degenerate bool) {
	u, v := m.Edge(e)
	pu, pv := m.Vertex(u), m.Vertex(v)
	fa, fb := m.EdgeFaces(e)
	for _, f := range [2]int{fa, fb} {
		if f < 0 {
			continue
		}
		apex := m.Vertex(m.Opposite(f, e))
		cot, ok := d3.Cot(apex, pu, pv)
		if !ok || math.IsInf(cot, 0) {
			degenerate = true
			continue
		}
		w += 0.5 * cot
	}
	if w < 0 {
		w = 0
	}
	return w, degenerate
}

// computeEdgeWeights recomputes the whole edge weight table. Stale
// weights from a previous iteration are never reused since both geometry
// and edge ids change between contraction steps.
func (s *Skeletonizer) computeEdgeWeights() {
	M := s.mesh.NumEdges()
	if cap(s.weights) < M {
		s.weights = make([]float64, M)
	}
	s.weights = s.weights[:M]
	for e := 0; e < M; e++ {
		w, degenerate := s.cfg.Weighter.Weight(s.mesh, e)
		if degenerate {
			s.stats.DegenerateWeights++
		}
		s.weights[e] = w
	}
}
