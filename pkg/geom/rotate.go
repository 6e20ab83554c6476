package geom

import "math"

// Rotate rotates v about axis by angle radians using Rodrigues' formula:
//
//	v·cos(θ) + (axis × v)·sin(θ) + axis·(axis · v)·(1 − cos(θ))
//
// axis must be unit length. It is not normalized here; a non-unit axis
// silently distorts the result.
func Rotate(v, axis Vec3, angle float64) Vec3 {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return v.Scale(cos).
		Add(axis.Cross(v).Scale(sin)).
		Add(axis.Scale(axis.Dot(v) * (1 - cos)))
}

// AngleBetween returns the unsigned angle between a and b in radians.
// Zero is returned if either vector has zero length.
func AngleBetween(a, b Vec3) float64 {
	la, lb := a.Length(), b.Length()
	if la == 0 || lb == 0 {
		return 0
	}
	c := a.Dot(b) / (la * lb)
	// acos is undefined just outside [-1, 1]
	c = math.Max(-1, math.Min(1, c))
	return math.Acos(c)
}
