package mcfskel

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Solver is the external linear solver collaborator. Factorize prepares
// a rectangular 2NxN system for least-squares solving; the returned
// Factorization is reused across the three coordinate channels of one
// contraction step so all channels observe the same factorization.
// Implementations must report a fault on singular or ill-conditioned
// input instead of returning NaN solutions.
type Solver interface {
	Factorize(a *SparseMatrix) (Factorization, error)
}

// Factorization solves the factorized system for one right-hand side of
// length equal to the matrix row count, returning a solution of length
// equal to the column count. Free releases factorization resources; the
// engine calls it unconditionally at the end of the contraction step,
// even when a channel solve fails.
type Factorization interface {
	Solve(b []float64) ([]float64, error)
	Free()
}

// NormalCholesky is the default Solver. It forms the normal equations
// AᵀA x = AᵀB and factorizes AᵀA once with a Cholesky decomposition.
// AᵀA is symmetric positive definite whenever A has full column rank,
// which the attraction block guarantees for omegaH > 0.
type NormalCholesky struct{}

type normalCholeskyFact struct {
	a    *SparseMatrix
	chol *mat.Cholesky
}

func (NormalCholesky) Factorize(a *SparseMatrix) (Factorization, error) {
	n := a.NumCols
	ata := mat.NewSymDense(n, nil)
	// Accumulate AᵀA row by row of A: every pair of entries sharing a row
	// of A contributes to one entry of AᵀA.
	rowStart := make([]int32, a.NumRows+1)
	for _, i := range a.rows {
		rowStart[i+1]++
	}
	for i := 0; i < a.NumRows; i++ {
		rowStart[i+1] += rowStart[i]
	}
	order := make([]int32, len(a.rows))
	fill := append([]int32{}, rowStart[:a.NumRows]...)
	for k, i := range a.rows {
		order[fill[i]] = int32(k)
		fill[i]++
	}
	for i := 0; i < a.NumRows; i++ {
		entries := order[rowStart[i]:rowStart[i+1]]
		for ii, k1 := range entries {
			c1, v1 := a.cols[k1], a.vals[k1]
			for _, k2 := range entries[ii:] {
				c2, v2 := a.cols[k2], a.vals[k2]
				if c1 <= c2 {
					ata.SetSym(int(c1), int(c2), ata.At(int(c1), int(c2))+v1*v2)
				} else {
					ata.SetSym(int(c2), int(c1), ata.At(int(c2), int(c1))+v1*v2)
				}
			}
		}
	}
	chol := new(mat.Cholesky)
	if ok := chol.Factorize(ata); !ok {
		return nil, fmt.Errorf("%w: normal equations not positive definite", ErrSolverFault)
	}
	return &normalCholeskyFact{a: a, chol: chol}, nil
}

func (f *normalCholeskyFact) Solve(b []float64) ([]float64, error) {
	if f.chol == nil {
		return nil, fmt.Errorf("%w: use of freed factorization", ErrSolverFault)
	}
	if len(b) != f.a.NumRows {
		return nil, fmt.Errorf("mcfskel: right-hand side length %d, want %d", len(b), f.a.NumRows)
	}
	atb := make([]float64, f.a.NumCols)
	for k := range f.a.vals {
		atb[f.a.cols[k]] += f.a.vals[k] * b[f.a.rows[k]]
	}
	var x mat.VecDense
	if err := f.chol.SolveVecTo(&x, mat.NewVecDense(len(atb), atb)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverFault, err)
	}
	out := make([]float64, f.a.NumCols)
	for i := range out {
		out[i] = x.AtVec(i)
		if math.IsNaN(out[i]) || math.IsInf(out[i], 0) {
			return nil, fmt.Errorf("%w: non-finite solution component %d", ErrSolverFault, i)
		}
	}
	return out, nil
}

func (f *normalCholeskyFact) Free() {
	f.a = nil
	f.chol = nil
}
