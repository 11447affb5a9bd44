package render_test

import (
	"bufio"
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/soypat/mcfskel/render"
	"github.com/soypat/mcfskel/trimesh"
)

func TestSTLRoundTrip(t *testing.T) {
	m := trimesh.Octahedron(1.5)
	model := render.FromMesh(m)
	var b bytes.Buffer
	if err := render.WriteSTL(&b, model); err != nil {
		t.Fatal(err)
	}
	got, err := render.ReadSTL(&b)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(model) {
		t.Fatalf("read %d triangles, wrote %d", len(got), len(model))
	}
	const tol = 1e-6 // STL stores float32
	for i, tri := range got {
		for j := range tri.V {
			want := model[i].V[j]
			v := tri.V[j]
			if math.Abs(v.X-want.X) > tol || math.Abs(v.Y-want.Y) > tol || math.Abs(v.Z-want.Z) > tol {
				t.Errorf("triangle %d vertex %d: got %v, want %v", i, j, v, want)
			}
		}
	}
}

func TestWriteSTLEmptyModel(t *testing.T) {
	var b bytes.Buffer
	if err := render.WriteSTL(&b, nil); err == nil {
		t.Error("expected error writing empty model")
	}
}

func TestWriteSkeletonOBJ(t *testing.T) {
	m := trimesh.Octahedron(1)
	fixed := func(v int) bool { return v == 0 || v == 5 }
	var b bytes.Buffer
	if err := render.WriteSkeletonOBJ(&b, m, fixed); err != nil {
		t.Fatal(err)
	}
	var nv, nl, np int
	sc := bufio.NewScanner(&b)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "v "):
			nv++
		case strings.HasPrefix(line, "l "):
			nl++
		case strings.HasPrefix(line, "p "):
			np++
		}
	}
	if nv != m.NumVertices() {
		t.Errorf("wrote %d vertices, want %d", nv, m.NumVertices())
	}
	if nl != m.NumEdges() {
		t.Errorf("wrote %d line records, want %d", nl, m.NumEdges())
	}
	if np != 2 {
		t.Errorf("wrote %d point records, want 2", np)
	}
}

func TestFromMeshNormals(t *testing.T) {
	// Octahedron faces wind outward so each normal must point away
	// from the origin.
	m := trimesh.Octahedron(1)
	for i, tri := range render.FromMesh(m) {
		n := tri.Normal()
		c := tri.V[0]
		c = c.Add(tri.V[1]).Add(tri.V[2]).Scale(1. / 3)
		if n.X*c.X+n.Y*c.Y+n.Z*c.Z <= 0 {
			t.Errorf("triangle %d normal %v points inward", i, n)
		}
	}
}
