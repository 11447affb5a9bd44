package mcfskel

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"
)

// SparseMatrix is a sparse matrix in append-only triplet form, the
// interchange format between system assembly and the Solver collaborator.
// Each coordinate pair must be appended at most once.
type SparseMatrix struct {
	NumRows, NumCols int
	rows             []int32
	cols             []int32
	vals             []float64
}

// NewSparseMatrix returns an empty rows x cols matrix with storage for
// nnzHint entries preallocated.
func NewSparseMatrix(rows, cols, nnzHint int) *SparseMatrix {
	return &SparseMatrix{
		NumRows: rows,
		NumCols: cols,
		rows:    make([]int32, 0, nnzHint),
		cols:    make([]int32, 0, nnzHint),
		vals:    make([]float64, 0, nnzHint),
	}
}

// Append stores v at entry (i, j).
func (a *SparseMatrix) Append(i, j int, v float64) {
	if i < 0 || i >= a.NumRows || j < 0 || j >= a.NumCols {
		panic("mcfskel: sparse matrix entry out of bounds")
	}
	a.rows = append(a.rows, int32(i))
	a.cols = append(a.cols, int32(j))
	a.vals = append(a.vals, v)
}

// NNZ returns the number of stored entries, counting duplicates.
func (a *SparseMatrix) NNZ() int { return len(a.vals) }

// Do calls f for every stored entry in insertion order.
func (a *SparseMatrix) Do(f func(i, j int, v float64)) {
	for k := range a.vals {
		f(int(a.rows[k]), int(a.cols[k]), a.vals[k])
	}
}

// linearSystem is the transient per-iteration contraction system.
// Rows [0,N) of A encode the weighted discrete Laplacian scaled by
// omegaL, rows [N,2N) an identity block scaled by omegaH. It is meant to
// be solved in the least-squares sense, one solve per coordinate channel.
type linearSystem struct {
	A          *SparseMatrix
	Bx, By, Bz []float64
}

// assembleSystem builds the contraction system for the current mesh
// state. Fixed vertices receive a unit constraint row holding their
// current position in place of Laplacian smoothing terms, so their
// solved position equals their current position.
func (s *Skeletonizer) assembleSystem() (*linearSystem, error) {
	var (
		m      = s.mesh
		n      = m.NumVertices()
		omegaL = s.cfg.OmegaL
		omegaH = s.cfg.OmegaH
	)
	sys := &linearSystem{
		A:  NewSparseMatrix(2*n, n, 2*n+2*m.NumEdges()+n),
		Bx: make([]float64, 2*n),
		By: make([]float64, 2*n),
		Bz: make([]float64, 2*n),
	}
	for i := 0; i < n; i++ {
		p := m.Vertex(i)
		sys.A.Append(i+n, i, omegaH)
		sys.Bx[i+n] = p.X * omegaH
		sys.By[i+n] = p.Y * omegaH
		sys.Bz[i+n] = p.Z * omegaH
	}
	for i := 0; i < n; i++ {
		incident := m.VertexEdges(i)
		if len(incident) == 0 {
			return nil, fmt.Errorf("%w: vertex %d has no incident edges", ErrInputInvariant, i)
		}
		if s.fixed[i] {
			p := m.Vertex(i)
			sys.A.Append(i, i, 1)
			sys.Bx[i] = p.X
			sys.By[i] = p.Y
			sys.Bz[i] = p.Z
			continue
		}
		// Laplacian row: off-diagonal neighbor weights with a diagonal
		// equal to their negative sum, so the row sums to zero and the
		// contraction direction carries no net translation.
		var diagonal float64
		for _, e := range incident {
			u, v := m.Edge(e)
			j := u
			if j == i {
				j = v
			}
			wij := 2 * s.weights[e]
			sys.A.Append(i, j, wij*omegaL)
			diagonal -= wij
		}
		sys.A.Append(i, i, diagonal*omegaL)
		// Bx, By, Bz rows [0,n) stay zero: the Laplacian block targets
		// zero curvature.
	}
	return sys, nil
}

// positionsFromChannels writes solved coordinate channels back to the
// mesh in vertex id order, skipping fixed vertices.
func (s *Skeletonizer) positionsFromChannels(x, y, z []float64) {
	for i := 0; i < s.mesh.NumVertices(); i++ {
		if s.fixed[i] {
			continue
		}
		s.mesh.SetVertex(i, r3.Vec{X: x[i], Y: y[i], Z: z[i]})
	}
}
