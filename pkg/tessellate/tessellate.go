// Package tessellate replays a route through a pipe.Engine to produce the
// pipe mesh, and builds the matching reference solid with a geometry
// kernel so the mesh can be checked against an exact surface.
package tessellate

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/conduit/pkg/geom"
	"github.com/chazu/conduit/pkg/kernel"
	"github.com/chazu/conduit/pkg/mesh"
	"github.com/chazu/conduit/pkg/pipe"
	"github.com/chazu/conduit/pkg/route"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'tessellate'
func tracer() tracing.Trace {
	return tracing.Select("tessellate")
}

// Result is the output of one replay.
type Result struct {
	Mesh     mesh.Snapshot             `json:"mesh"`
	Stats    mesh.Stats                `json:"stats"`
	Segments []pipe.Segment            `json:"segments"`
	Outcomes []pipe.Outcome            `json:"outcomes"`
	Warnings []route.ValidationWarning `json:"warnings"`
	Cursor   geom.Vec3                 `json:"cursor"`
}

// Tessellate validates r and replays it into a fresh engine built from
// cfg. Each step first applies its parameters through the engine setters,
// then steers. Validation errors abort before anything is built; warnings,
// including clearance warnings for runs that pass through each other, are
// returned with the result. The route is never mutated.
func Tessellate(r *route.Route, cfg pipe.Config) (*Result, error) {
	if r == nil {
		return nil, nil
	}
	check := route.ValidateAll(r, cfg)
	if !check.OK() {
		errs := make([]error, len(check.Errors))
		for i, e := range check.Errors {
			errs[i] = e
		}
		return nil, fmt.Errorf("tessellate: invalid route: %w", errors.Join(errs...))
	}

	e, err := pipe.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}

	res := &Result{Warnings: check.Warnings}
	// Engine updates count only the steps that were not dropped.
	stepOfUpdate := map[int]int{}
	for i, s := range r.Steps {
		e.SetSizeIndex(s.SizeIndex)
		e.SetDetail(s.Detail)
		e.SetLength(s.Length)
		e.SetIterations(s.Iterations)
		out := e.Steer(s.Direction)
		if out.Dropped == pipe.NotDropped {
			stepOfUpdate[len(stepOfUpdate)+1] = i
		}
		res.Outcomes = append(res.Outcomes, out)
	}
	if err := e.Check(); err != nil {
		return nil, fmt.Errorf("tessellate: %w", err)
	}

	res.Segments = e.Segments()
	for _, w := range route.ValidateClearance(res.Segments) {
		if i, ok := stepOfUpdate[w.Step]; ok {
			w.Step, w.Line = i+1, r.Steps[i].Line
		}
		res.Warnings = append(res.Warnings, w)
	}
	res.Mesh = e.Snapshot()
	res.Stats = e.Stats()
	res.Cursor = e.Cursor()
	tracer().Infof("tessellated %d steps into %d segments, %d vertices, %d triangles",
		r.Len(), len(res.Segments), res.Stats.Vertices, res.Stats.Triangles)
	return res, nil
}

// Reference builds the exact solid the segments approximate: the union of
// one frustum per segment.
func Reference(k kernel.Kernel, segments []pipe.Segment) (kernel.Solid, error) {
	var solid kernel.Solid
	for i, s := range segments {
		f, err := k.Frustum(s.Start, s.Direction, s.Length, s.StartRadius, s.EndRadius)
		if err != nil {
			return nil, fmt.Errorf("tessellate: reference segment %d: %w", i, err)
		}
		if solid == nil {
			solid = f
		} else {
			solid = k.Union(solid, f)
		}
	}
	if solid == nil {
		return nil, errors.New("tessellate: reference of an empty pipe")
	}
	return solid, nil
}

// ReferenceMesh tessellates the reference solid with the kernel's own
// mesher at the given resolution.
func ReferenceMesh(k kernel.Kernel, segments []pipe.Segment, cells int) (*kernel.Mesh, error) {
	solid, err := Reference(k, segments)
	if err != nil {
		return nil, err
	}
	m, err := k.ToMesh(solid, cells)
	if err != nil {
		return nil, fmt.Errorf("tessellate: reference mesh: %w", err)
	}
	return m, nil
}

// Deviation returns the largest distance between any of the positions and
// the surface of solid.
func Deviation(k kernel.Kernel, solid kernel.Solid, positions []geom.Vec3) float64 {
	var worst float64
	for _, p := range positions {
		worst = math.Max(worst, math.Abs(k.Distance(solid, p)))
	}
	return worst
}
