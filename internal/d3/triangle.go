package d3

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Triangle helpers for discrete differential geometry quantities.

// TriArea returns the area of the triangle spanned by a, b and c.
func TriArea(a, b, c r3.Vec) float64 {
	return 0.5 * r3.Norm(r3.Cross(r3.Sub(b, a), r3.Sub(c, a)))
}

// TriDegenerate returns true if the triangle spanned by a, b and c has
// near-zero area with respect to tol.
func TriDegenerate(a, b, c r3.Vec, tol float64) bool {
	return TriArea(a, b, c) <= tol
}

// Cot returns the cotangent of the interior angle at apex with rays
// towards p and q. Returns false if the angle is degenerate (apex and
// ray endpoints near-collinear or coincident), in which case the
// cotangent is unbounded and must not be used.
func Cot(apex, p, q r3.Vec) (float64, bool) {
	u := r3.Sub(p, apex)
	v := r3.Sub(q, apex)
	sin := r3.Norm(r3.Cross(u, v))
	if sin == 0 || math.IsNaN(sin) {
		return 0, false
	}
	return r3.Dot(u, v) / sin, true
}
