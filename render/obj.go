package render

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/soypat/mcfskel/trimesh"
)

// WriteSkeletonOBJ writes the skeletal geometry of a contracted mesh as
// a Wavefront OBJ polyline network: every vertex becomes a v record,
// every surviving mesh edge an l record, and vertices reported fixed by
// isFixed become additional p (point) records. isFixed may be nil.
// OBJ element indices are 1-based.
func WriteSkeletonOBJ(w io.Writer, m *trimesh.Mesh, isFixed func(vertex int) bool) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < m.NumVertices(); i++ {
		p := m.Vertex(i)
		if _, err := fmt.Fprintf(bw, "v %g %g %g\n", p.X, p.Y, p.Z); err != nil {
			return err
		}
	}
	for e := 0; e < m.NumEdges(); e++ {
		u, v := m.Edge(e)
		if _, err := fmt.Fprintf(bw, "l %d %d\n", u+1, v+1); err != nil {
			return err
		}
	}
	if isFixed != nil {
		for i := 0; i < m.NumVertices(); i++ {
			if !isFixed(i) {
				continue
			}
			if _, err := fmt.Fprintf(bw, "p %d\n", i+1); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// CreateSkeletonOBJ writes the skeleton of a contracted mesh to a new
// OBJ file.
func CreateSkeletonOBJ(path string, m *trimesh.Mesh, isFixed func(vertex int) bool) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteSkeletonOBJ(file, m, isFixed)
}
