// Package kernel defines the abstract geometry kernel used to build an
// ideal, implicit reference solid for a pipe. The faceted pipe mesh is
// measured against that solid to report how far its vertices stray from
// the smooth surface. Implementations (sdfx) provide the solid modeling
// behind this interface.
package kernel

import "github.com/chazu/conduit/pkg/geom"

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Frustum creates a cylinder (r0 == r1) or truncated cone whose base
	// circle of radius r0 is centered at start and whose top circle of
	// radius r1 is centered at start + dir*length. dir must be unit length.
	Frustum(start, dir geom.Vec3, length, r0, r1 float64) (Solid, error)

	// Union returns the union of two solids.
	Union(a, b Solid) Solid

	// Distance returns the signed distance from p to the surface of s:
	// negative inside, positive outside.
	Distance(s Solid, p geom.Vec3) float64

	// ToMesh tessellates a solid using the given grid resolution.
	ToMesh(s Solid, cells int) (*Mesh, error)
}
