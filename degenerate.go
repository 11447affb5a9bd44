package mcfskel

// DetectDegeneracies scans movable vertices and fixes those whose local
// neighborhood has collapsed to a skeletal point: a one-ring with
// near-zero total area, or all neighbors within the zero-length
// threshold (the surface pinched to near-duplicate positions). Fixing is
// monotonic; a fixed vertex is never unfixed. Returns the number of
// newly fixed vertices.
func (s *Skeletonizer) DetectDegeneracies() (newFixed int) {
	zero := s.cfg.ZeroThreshold
	for i := 0; i < s.mesh.NumVertices(); i++ {
		if s.fixed[i] || !s.vertexDegenerate(i, zero) {
			continue
		}
		s.fixed[i] = true
		s.nfixed++
		newFixed++
	}
	return newFixed
}

func (s *Skeletonizer) vertexDegenerate(i int, zero float64) bool {
	pinched := true
	for _, e := range s.mesh.VertexEdges(i) {
		if s.mesh.EdgeLength(e) >= zero {
			pinched = false
			break
		}
	}
	if pinched {
		return true
	}
	return s.mesh.VertexRingArea(i) < zero
}
