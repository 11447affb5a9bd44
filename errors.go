package mcfskel

import "errors"

// Fault classification for a skeletonization run. Topology-invariant
// violations (a collapse or split that would break manifoldness) are not
// errors: the offending mutation is skipped and counted in Stats.
var (
	// ErrInputInvariant reports an input mesh that is not a closed
	// 2-manifold or contains isolated vertices. Detected at construction,
	// before any contraction takes place.
	ErrInputInvariant = errors.New("mcfskel: input mesh violates closed 2-manifold invariants")
	// ErrNumericDegenerate reports a degenerate geometric configuration
	// that could not be recovered by clamping.
	ErrNumericDegenerate = errors.New("mcfskel: numerically degenerate configuration")
	// ErrSolverFault reports a singular or ill-conditioned linear system.
	// The contraction step that encountered it leaves no partial updates.
	ErrSolverFault = errors.New("mcfskel: linear solver fault")
)
