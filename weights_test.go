package mcfskel_test

import (
	"math"
	"testing"

	"github.com/soypat/mcfskel"
	"github.com/soypat/mcfskel/trimesh"
)

func TestCotanWeightOctahedron(t *testing.T) {
	// All octahedron faces are equilateral so every opposite angle is 60
	// degrees and every edge weight is cot(60) = 1/sqrt(3).
	m := trimesh.Octahedron(1)
	want := 1 / math.Sqrt(3)
	var w mcfskel.CotanWeighter
	for e := 0; e < m.NumEdges(); e++ {
		got, degenerate := w.Weight(m, e)
		if degenerate {
			t.Errorf("edge %d reported degenerate", e)
		}
		if math.Abs(got-want) > 1e-12 {
			t.Errorf("edge %d weight %g, want %g", e, got, want)
		}
	}
}

func TestCotanWeightDegenerateTriangles(t *testing.T) {
	// Squash a vertex onto a neighbor: the faces sharing both become
	// zero-area. Weights must stay finite, clamped contributions are
	// reported.
	m := trimesh.Octahedron(1)
	m.SetVertex(4, m.Vertex(2))
	var w mcfskel.CotanWeighter
	sawDegenerate := false
	for e := 0; e < m.NumEdges(); e++ {
		got, degenerate := w.Weight(m, e)
		if math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("edge %d weight is %g", e, got)
		}
		if got < 0 {
			t.Fatalf("edge %d weight %g is negative", e, got)
		}
		sawDegenerate = sawDegenerate || degenerate
	}
	if !sawDegenerate {
		t.Error("no degenerate contribution reported for zero-area faces")
	}
}

func TestCotanWeightNonNegative(t *testing.T) {
	// A long thin cylinder has very obtuse opposite angles on its axial
	// edges; the formula clamps their negative cotangent sums to zero.
	m := trimesh.Cylinder(0.05, 2, 6, 2)
	var w mcfskel.CotanWeighter
	for e := 0; e < m.NumEdges(); e++ {
		got, _ := w.Weight(m, e)
		if got < 0 || math.IsNaN(got) || math.IsInf(got, 0) {
			t.Fatalf("edge %d weight %g", e, got)
		}
	}
}
