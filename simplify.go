package mcfskel

import (
	"errors"

	"github.com/soypat/mcfskel/trimesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// Topology simplification passes. Both passes re-derive their worklist
// from current mesh state after every successful mutation, since a
// collapse or split may create new short or long edges.

// CollapseShortEdges repeatedly collapses edges shorter than the
// collapse threshold until none remain, skipping collapses that would
// break manifoldness and edges whose both endpoints are fixed. It
// returns the number of successful collapses.
func (s *Skeletonizer) CollapseShortEdges() (collapses int, err error) {
	for {
		collapsed := false
		for e := 0; e < s.mesh.NumEdges(); e++ {
			if s.mesh.EdgeLength(e) >= s.cfg.CollapseThreshold {
				continue
			}
			u, v := s.mesh.Edge(e)
			if s.fixed[u] && s.fixed[v] {
				continue
			}
			var at r3.Vec
			switch {
			case s.fixed[u]:
				at = s.mesh.Vertex(u)
			case s.fixed[v]:
				at = s.mesh.Vertex(v)
			case s.cfg.Placement == PlacementEndpoint:
				at = s.mesh.Vertex(u)
			default:
				at = r3.Scale(0.5, r3.Add(s.mesh.Vertex(u), s.mesh.Vertex(v)))
			}
			removed, cerr := trimesh.CollapseEdge(s.mesh, e, at)
			if errors.Is(cerr, trimesh.ErrCollapsePinch) {
				// Topology invariant violation: skip this mutation.
				s.stats.SkippedMutations++
				continue
			}
			if cerr != nil {
				return collapses, cerr
			}
			// The lower id endpoint survived; vertex ids above the
			// removed one shifted down. Mirror that in the fixed table.
			s.fixed[u] = s.fixed[u] || s.fixed[removed]
			s.fixed = append(s.fixed[:removed], s.fixed[removed+1:]...)
			collapses++
			s.stats.Collapses++
			collapsed = true
			break // edge ids invalidated, re-derive worklist
		}
		if !collapsed {
			return collapses, nil
		}
	}
}

// SplitLongTriangles repeatedly bisects the longest edge above the split
// threshold at its midpoint, re-triangulating the two bordering faces.
// Longest-edge bisection guarantees the pass terminates. New vertices
// start movable. It returns the number of splits.
func (s *Skeletonizer) SplitLongTriangles() (splits int, err error) {
	for {
		longest, length := -1, s.cfg.SplitThreshold
		for e := 0; e < s.mesh.NumEdges(); e++ {
			if l := s.mesh.EdgeLength(e); l > length {
				longest, length = e, l
			}
		}
		if longest < 0 {
			return splits, nil
		}
		u, v := s.mesh.Edge(longest)
		mid := r3.Scale(0.5, r3.Add(s.mesh.Vertex(u), s.mesh.Vertex(v)))
		if _, serr := trimesh.SplitEdge(s.mesh, longest, mid); serr != nil {
			return splits, serr
		}
		s.fixed = append(s.fixed, false)
		splits++
		s.stats.Splits++
		// edge ids invalidated, re-derive worklist
	}
}

// simplify runs the collapse and split passes until a sweep changes
// nothing or the sweep cap is hit.
func (s *Skeletonizer) simplify() (collapses, splits int, err error) {
	for sweep := 0; sweep < s.cfg.MaxSweeps; sweep++ {
		nc, err := s.CollapseShortEdges()
		if err != nil {
			return collapses, splits, err
		}
		ns, err := s.SplitLongTriangles()
		if err != nil {
			return collapses, splits, err
		}
		collapses += nc
		splits += ns
		if nc == 0 && ns == 0 {
			break
		}
	}
	return collapses, splits, nil
}
