// Package mcfskel extracts a 1-dimensional curve skeleton from a closed
// triangulated surface by mean curvature flow: the surface is iteratively
// contracted towards its medial structure by solving a sparse linear
// system built from cotangent Laplacian weights, while short edges are
// collapsed, long triangles split and pinched neighborhoods frozen as
// fixed skeleton points, until the mesh degenerates into a skeletal
// approximation.
package mcfskel

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/soypat/mcfskel/trimesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Placement selects where a collapsed edge's merged vertex is placed.
// When exactly one endpoint is fixed the merged vertex always takes the
// fixed endpoint's position regardless of policy, since fixed skeleton
// points never move.
type Placement uint8

const (
	// PlacementMidpoint places the merged vertex at the edge midpoint.
	PlacementMidpoint Placement = iota
	// PlacementEndpoint keeps the surviving (lower id) endpoint in place.
	PlacementEndpoint
)

// State is the driving loop state. Terminal state is StateConverged.
type State uint8

const (
	StateInitialized State = iota
	StateContracting
	StateSimplifying
	StateDetecting
	StateConverged
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateContracting:
		return "contracting"
	case StateSimplifying:
		return "simplifying"
	case StateDetecting:
		return "detecting degeneracies"
	case StateConverged:
		return "converged"
	}
	return "unknown state"
}

// Config are the skeletonization parameters. All scalar fields must be
// positive. The zero value is not usable, start from DefaultConfig.
type Config struct {
	// OmegaL scales the Laplacian contraction pull.
	OmegaL float64
	// OmegaH scales the attraction to current vertex positions which
	// keeps the contraction system well conditioned.
	OmegaH float64
	// CollapseThreshold is the edge length below which edges collapse.
	CollapseThreshold float64
	// SplitThreshold is the edge length above which triangles split.
	SplitThreshold float64
	// ZeroThreshold is the numeric degeneracy threshold of the
	// degeneracy detector.
	ZeroThreshold float64
	// MaxIterations caps the number of outer contract-simplify-detect
	// cycles.
	MaxIterations int
	// MaxSweeps caps collapse/split re-invocations within one cycle.
	MaxSweeps int
	// FixedFraction stops the run once this fraction of vertices is
	// fixed. Must be in (0, 1].
	FixedFraction float64
	// Placement is the collapse placement policy.
	Placement Placement
	// Weighter overrides the edge weighting policy. Defaults to
	// CotanWeighter.
	Weighter Weighter
	// Solver overrides the sparse least-squares solver. Defaults to
	// NormalCholesky.
	Solver Solver
}

// DefaultConfig returns the reference parameters for a mesh: unit
// contraction pull, a tenth of attraction, and an edge collapse
// threshold of 0.002 times the bounding box diagonal.
func DefaultConfig(m *trimesh.Mesh) Config {
	diag := m.Bounds().Diagonal()
	return Config{
		OmegaL:            1,
		OmegaH:            0.1,
		CollapseThreshold: 0.002 * diag,
		SplitThreshold:    0.2 * diag,
		ZeroThreshold:     1e-7,
		MaxIterations:     100,
		MaxSweeps:         8,
		FixedFraction:     0.9,
	}
}

func (cfg *Config) validate() error {
	switch {
	case cfg.OmegaL <= 0 || cfg.OmegaH <= 0:
		return errors.New("mcfskel: contraction and attraction coefficients must be positive")
	case cfg.CollapseThreshold <= 0 || cfg.SplitThreshold <= 0:
		return errors.New("mcfskel: collapse and split thresholds must be positive")
	case cfg.CollapseThreshold >= cfg.SplitThreshold:
		return errors.New("mcfskel: collapse threshold must be below split threshold")
	case cfg.ZeroThreshold <= 0:
		return errors.New("mcfskel: zero threshold must be positive")
	case cfg.MaxIterations <= 0 || cfg.MaxSweeps <= 0:
		return errors.New("mcfskel: iteration and sweep caps must be positive")
	case cfg.FixedFraction <= 0 || cfg.FixedFraction > 1:
		return errors.New("mcfskel: fixed fraction must be in (0,1]")
	}
	return nil
}

// Stats are counters accumulated over a run.
type Stats struct {
	Iterations        int
	Collapses         int
	Splits            int
	SkippedMutations  int
	DegenerateWeights int
}

// Skeletonizer owns one skeletonization run over a mesh. It is not safe
// for concurrent use; the only method that may be called from another
// goroutine during Run is RequestStop.
type Skeletonizer struct {
	mesh *trimesh.Mesh
	cfg  Config
	// fixed marks vertices frozen as skeleton points. Grows/shrinks in
	// lockstep with mesh vertex ids, never reverts to movable.
	fixed  []bool
	nfixed int
	// weights is the per-edge cotangent weight table of the current
	// contraction step.
	weights []float64
	state   State
	stats   Stats
	stop    int32
}

// New prepares a skeletonization run. The mesh must be a single closed
// 2-manifold triangle mesh with no isolated vertices; otherwise New
// fails with an error wrapping ErrInputInvariant and no contraction can
// take place. The skeletonizer owns the mesh until the run terminates.
func New(m *trimesh.Mesh, cfg Config) (*Skeletonizer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputInvariant, err)
	}
	if cfg.Weighter == nil {
		cfg.Weighter = CotanWeighter{}
	}
	if cfg.Solver == nil {
		cfg.Solver = NormalCholesky{}
	}
	return &Skeletonizer{
		mesh:  m,
		cfg:   cfg,
		fixed: make([]bool, m.NumVertices()),
	}, nil
}

// ContractGeometry performs one geometric contraction over the whole
// mesh: recompute all edge weights, assemble and factorize the
// contraction system, solve the three coordinate channels against the
// shared factorization and write the solution back to movable vertices.
// On error no vertex position has been modified.
func (s *Skeletonizer) ContractGeometry() error {
	s.computeEdgeWeights()
	sys, err := s.assembleSystem()
	if err != nil {
		return err
	}
	fact, err := s.cfg.Solver.Factorize(sys.A)
	if err != nil {
		return err
	}
	defer fact.Free()
	x, err := fact.Solve(sys.Bx)
	if err != nil {
		return err
	}
	y, err := fact.Solve(sys.By)
	if err != nil {
		return err
	}
	z, err := fact.Solve(sys.Bz)
	if err != nil {
		return err
	}
	s.positionsFromChannels(x, y, z)
	return nil
}

// Run drives the contraction loop until convergence, a fault, or a
// cooperative stop request. Convergence is reached when the fixed vertex
// fraction exceeds Config.FixedFraction, the iteration cap is hit, or a
// full cycle produces no collapses, no splits and no new fixed vertices.
// On a fault the mesh is left at the state of the last fully completed
// cycle.
func (s *Skeletonizer) Run() error {
	if s.state == StateConverged {
		return errors.New("mcfskel: run already converged")
	}
	for s.stats.Iterations < s.cfg.MaxIterations {
		if atomic.LoadInt32(&s.stop) != 0 {
			break
		}
		s.state = StateContracting
		if err := s.ContractGeometry(); err != nil {
			return err
		}
		s.state = StateSimplifying
		collapses, splits, err := s.simplify()
		if err != nil {
			return err
		}
		s.state = StateDetecting
		newFixed := s.DetectDegeneracies()
		s.stats.Iterations++
		if float64(s.nfixed) >= s.cfg.FixedFraction*float64(s.mesh.NumVertices()) {
			break
		}
		if collapses == 0 && splits == 0 && newFixed == 0 {
			break // geometric fixpoint
		}
	}
	s.state = StateConverged
	return nil
}

// RequestStop asks the driving loop to stop after the current full
// cycle. It is the only Skeletonizer method safe to call concurrently
// with Run.
func (s *Skeletonizer) RequestStop() { atomic.StoreInt32(&s.stop, 1) }

// Mesh returns the mesh being skeletonized. External mutation during a
// run is not permitted.
func (s *Skeletonizer) Mesh() *trimesh.Mesh { return s.mesh }

// State returns the current driving loop state.
func (s *Skeletonizer) State() State { return s.state }

// Stats returns the counters accumulated so far.
func (s *Skeletonizer) Stats() Stats { return s.stats }

// NumFixed returns the number of fixed skeleton vertices.
func (s *Skeletonizer) NumFixed() int { return s.nfixed }

// IsFixed reports whether vertex i is a fixed skeleton point.
func (s *Skeletonizer) IsFixed(i int) bool { return s.fixed[i] }

// FixedPoints returns the positions of fixed skeleton vertices in
// vertex id order.
func (s *Skeletonizer) FixedPoints() []r3.Vec {
	pts := make([]r3.Vec, 0, s.nfixed)
	for i, isFixed := range s.fixed {
		if isFixed {
			pts = append(pts, s.mesh.Vertex(i))
		}
	}
	return pts
}
