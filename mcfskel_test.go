package mcfskel_test

import (
	"errors"
	"math"
	"os"
	"testing"

	"github.com/deadsy/sdfx/sdf"
	sdfxrender "github.com/deadsy/sdfx/render"
	"github.com/soypat/mcfskel"
	"github.com/soypat/mcfskel/render"
	"github.com/soypat/mcfskel/trimesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// octConfig is the reference parameterization of the octahedron tests:
// unit contraction pull, a tenth of attraction, collapse threshold at a
// tenth of the mean edge length.
func octConfig(m *trimesh.Mesh) mcfskel.Config {
	mean := m.MeanEdgeLength()
	return mcfskel.Config{
		OmegaL:            1,
		OmegaH:            0.1,
		CollapseThreshold: 0.1 * mean,
		SplitThreshold:    10 * mean,
		ZeroThreshold:     1e-7,
		MaxIterations:     100,
		MaxSweeps:         8,
		FixedFraction:     0.9,
	}
}

func TestContractGeometryShrinksOctahedron(t *testing.T) {
	m := trimesh.Octahedron(1)
	s, err := mcfskel.New(m, octConfig(m))
	if err != nil {
		t.Fatal(err)
	}
	if err := s.ContractGeometry(); err != nil {
		t.Fatal(err)
	}
	// The octahedron centroid is the origin. One contraction step must
	// leave every vertex strictly closer to it.
	for i := 0; i < m.NumVertices(); i++ {
		d := r3.Norm(m.Vertex(i))
		if d <= 0 || d >= 1 {
			t.Errorf("vertex %d at distance %g from centroid, want in (0,1)", i, d)
		}
	}
}

func TestSimplifyIdempotent(t *testing.T) {
	// No edge below the collapse threshold and none above the split
	// threshold: both passes must report zero mutations.
	m := trimesh.Octahedron(1)
	s, err := mcfskel.New(m, octConfig(m))
	if err != nil {
		t.Fatal(err)
	}
	collapses, err := s.CollapseShortEdges()
	if err != nil {
		t.Fatal(err)
	}
	splits, err := s.SplitLongTriangles()
	if err != nil {
		t.Fatal(err)
	}
	if collapses != 0 || splits != 0 {
		t.Fatalf("already-simplified mesh mutated: %d collapses, %d splits", collapses, splits)
	}
}

func TestIsolatedVertexRejected(t *testing.T) {
	oct := trimesh.Octahedron(1)
	vertices := append(oct.Vertices(), r3.Vec{X: 3})
	faces := make([][3]int, oct.NumFaces())
	for f := range faces {
		faces[f] = oct.Face(f)
	}
	m, err := trimesh.New(vertices, faces)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mcfskel.New(m, mcfskel.DefaultConfig(m)); !errors.Is(err, mcfskel.ErrInputInvariant) {
		t.Fatalf("got %v, want ErrInputInvariant", err)
	}
}

func TestOpenSurfaceRejected(t *testing.T) {
	oct := trimesh.Octahedron(1)
	faces := make([][3]int, 0, 7)
	for f := 0; f < 7; f++ {
		faces = append(faces, oct.Face(f))
	}
	m, err := trimesh.New(oct.Vertices(), faces)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := mcfskel.New(m, mcfskel.DefaultConfig(m)); !errors.Is(err, mcfskel.ErrInputInvariant) {
		t.Fatalf("got %v, want ErrInputInvariant", err)
	}
}

func TestCylinderSkeleton(t *testing.T) {
	if testing.Short() {
		t.Skip("long contraction run")
	}
	// A long thin cylinder must contract to a polyline of fixed points
	// hugging its axis.
	const radius, height = 0.1, 2.0
	m := trimesh.Cylinder(radius, height, 12, 16)
	cfg := mcfskel.DefaultConfig(m)
	cfg.CollapseThreshold = 0.5 * m.MeanEdgeLength()
	cfg.ZeroThreshold = 1e-4
	s, err := mcfskel.New(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	prevFixed := 0
	for cycle := 0; cycle < cfg.MaxIterations; cycle++ {
		if err := s.ContractGeometry(); err != nil {
			t.Fatal(err)
		}
		if _, err := s.CollapseShortEdges(); err != nil {
			t.Fatal(err)
		}
		if _, err := s.SplitLongTriangles(); err != nil {
			t.Fatal(err)
		}
		s.DetectDegeneracies()
		if s.NumFixed() < prevFixed {
			t.Fatal("fixed vertex set shrank")
		}
		prevFixed = s.NumFixed()
		if float64(s.NumFixed()) >= 0.8*float64(s.Mesh().NumVertices()) {
			break
		}
	}
	pts := s.FixedPoints()
	if len(pts) == 0 {
		t.Fatal("contraction produced no fixed skeleton points")
	}
	minZ, maxZ := math.MaxFloat64, -math.MaxFloat64
	for _, p := range pts {
		if r := math.Hypot(p.X, p.Y); r > radius/2 {
			t.Fatalf("fixed point %v at radial distance %g, want near axis", p, r)
		}
		minZ = math.Min(minZ, p.Z)
		maxZ = math.Max(maxZ, p.Z)
	}
	if maxZ-minZ < height/4 {
		t.Fatalf("fixed points span %g along the axis, want a line segment", maxZ-minZ)
	}
}

func TestRunConvergesAndTerminates(t *testing.T) {
	m := trimesh.Sphere(1, 8, 4)
	cfg := mcfskel.DefaultConfig(m)
	cfg.MaxIterations = 20
	s, err := mcfskel.New(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if s.State() != mcfskel.StateConverged {
		t.Fatalf("state %v after Run, want converged", s.State())
	}
	if got := s.Stats().Iterations; got > cfg.MaxIterations {
		t.Fatalf("ran %d cycles, cap is %d", got, cfg.MaxIterations)
	}
	if err := s.Mesh().Validate(); err != nil {
		t.Fatal("run corrupted mesh:", err)
	}
}

func TestRequestStop(t *testing.T) {
	m := trimesh.Sphere(1, 8, 4)
	s, err := mcfskel.New(m, mcfskel.DefaultConfig(m))
	if err != nil {
		t.Fatal(err)
	}
	s.RequestStop()
	if err := s.Run(); err != nil {
		t.Fatal(err)
	}
	if s.Stats().Iterations != 0 {
		t.Fatalf("stop before run still performed %d cycles", s.Stats().Iterations)
	}
	if s.State() != mcfskel.StateConverged {
		t.Fatal("stopped run did not reach terminal state")
	}
}

func TestFixedPointMonotonic(t *testing.T) {
	m := trimesh.Cylinder(0.05, 1, 8, 6)
	cfg := mcfskel.DefaultConfig(m)
	cfg.ZeroThreshold = 1e-3
	s, err := mcfskel.New(m, cfg)
	if err != nil {
		t.Fatal(err)
	}
	prev := 0
	for i := 0; i < 10; i++ {
		if err := s.ContractGeometry(); err != nil {
			t.Fatal(err)
		}
		if _, err := s.CollapseShortEdges(); err != nil {
			t.Fatal(err)
		}
		s.DetectDegeneracies()
		if s.NumFixed() < prev {
			t.Fatalf("fixed count dropped from %d to %d", prev, s.NumFixed())
		}
		prev = s.NumFixed()
	}
}

func BenchmarkSkeletonizeMarchedSphere(b *testing.B) {
	// Feed the engine a marching-cubes surface produced by sdfx.
	const output = "sdfx_sphere.stl"
	stdout := os.Stdout
	defer func() {
		os.Stdout = stdout // pesky sdfx prints out stuff
	}()
	os.Stdout, _ = os.Open(os.DevNull)
	object, _ := sdf.Sphere3D(1)
	sdfxrender.ToSTL(object, 30, output, &sdfxrender.MarchingCubesOctree{})
	defer os.Remove(output)
	fp, err := os.Open(output)
	if err != nil {
		b.Fatal(err)
	}
	model, err := render.ReadSTL(fp)
	fp.Close()
	if err != nil {
		b.Fatal(err)
	}
	tris := render.R3Triangles(model)
	if _, err := weldedMesh(tris); err != nil {
		b.Skip("marched surface not closed after welding:", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		m, _ := weldedMesh(tris)
		cfg := mcfskel.DefaultConfig(m)
		cfg.MaxIterations = 3
		s, err := mcfskel.New(m, cfg)
		if err != nil {
			b.Fatal(err)
		}
		if err := s.Run(); err != nil {
			b.Fatal(err)
		}
	}
}

func weldedMesh(tris []r3.Triangle) (*trimesh.Mesh, error) {
	m, err := trimesh.FromTriangles(tris, 0)
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}
