package pipe

import (
	"iter"
	"math"
	"slices"

	"github.com/chazu/conduit/pkg/geom"
)

// Tau is a full turn in radians.
const Tau = 2 * math.Pi

// RingVertex is one boundary point of a cross-section, relative to the
// ring center, with its outward normal.
type RingVertex struct {
	Position geom.Vec3
	Normal   geom.Vec3
}

// RingPoint returns the point at angle on the circle of the given radius
// that lies in the plane perpendicular to direction, centered at the
// origin. The zero-angle point lies along geom.ReferenceAxis(direction).
func RingPoint(direction geom.Vec3, radius, angle float64) geom.Vec3 {
	spoke := geom.ReferenceAxis(direction).Scale(radius)
	return geom.Rotate(spoke, direction, angle)
}

// Ring yields the sides points of one cross-section at angles
// 2π·i/sides. The sequence is lazy and can be ranged over repeatedly.
func Ring(direction geom.Vec3, radius float64, sides int) iter.Seq[RingVertex] {
	return func(yield func(RingVertex) bool) {
		for i := 0; i < sides; i++ {
			p := RingPoint(direction, radius, Tau*float64(i)/float64(sides))
			if !yield(RingVertex{Position: p, Normal: p.Normalize()}) {
				return
			}
		}
	}
}

// ringSlice collects a ring for indexed access.
func ringSlice(direction geom.Vec3, radius float64, sides int) []RingVertex {
	return slices.Collect(Ring(direction, radius, sides))
}
