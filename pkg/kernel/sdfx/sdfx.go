// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/conduit/pkg/geom"
	"github.com/chazu/conduit/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 200

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap extracts the underlying sdf.SDF3 from a kernel.Solid.
func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// wrap creates a kernel.Solid from an sdf.SDF3.
func wrap(s sdf.SDF3) kernel.Solid {
	return &sdfxSolid{s: s}
}

func vec(p geom.Vec3) v3.Vec {
	return v3.Vec{X: p.X, Y: p.Y, Z: p.Z}
}

// Frustum creates a cylinder or truncated cone running from start along
// dir. sdfx builds both centered on the origin along +Z with r0 at the
// bottom, so the solid is rotated onto dir and moved to the segment's
// midpoint.
func (k *SdfxKernel) Frustum(start, dir geom.Vec3, length, r0, r1 float64) (kernel.Solid, error) {
	if length <= 0 {
		return nil, fmt.Errorf("sdfx: frustum length %g must be positive", length)
	}
	if r0 <= 0 || r1 <= 0 {
		return nil, fmt.Errorf("sdfx: frustum radii %g, %g must be positive", r0, r1)
	}
	if dir.IsZero() {
		return nil, errors.New("sdfx: frustum direction is zero")
	}

	var s sdf.SDF3
	var err error
	if r0 == r1 {
		s, err = sdf.Cylinder3D(length, r0, 0)
	} else {
		s, err = sdf.Cone3D(length, r0, r1, 0)
	}
	if err != nil {
		return nil, fmt.Errorf("sdfx: frustum: %w", err)
	}

	// Spherical angles of dir: RotateY(theta) tips +Z towards +X, then
	// RotateZ(phi) swings it around the Z axis.
	d := dir.Normalize()
	theta := math.Acos(math.Max(-1, math.Min(1, d.Z)))
	phi := math.Atan2(d.Y, d.X)

	mid := start.Add(d.Scale(length / 2))
	m := sdf.Translate3d(vec(mid)).Mul(sdf.RotateZ(phi)).Mul(sdf.RotateY(theta))
	return wrap(sdf.Transform3D(s, m)), nil
}

// Union returns the union of two solids.
func (k *SdfxKernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Distance evaluates the signed distance field of s at p.
func (k *SdfxKernel) Distance(s kernel.Solid, p geom.Vec3) float64 {
	return unwrap(s).Evaluate(vec(p))
}

// ToMesh converts a solid to a triangle mesh using marching cubes. A
// non-positive cells value selects DefaultMeshCells.
func (k *SdfxKernel) ToMesh(s kernel.Solid, cells int) (*kernel.Mesh, error) {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(sdf3, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
		PartName: "reference",
	}, nil
}
