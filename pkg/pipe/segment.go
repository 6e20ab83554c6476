package pipe

import (
	"fmt"
	"math"

	"github.com/chazu/conduit/pkg/geom"
	"github.com/chazu/conduit/pkg/mesh"
)

// SegmentKind tells why a segment was extruded.
type SegmentKind int

const (
	// Straight is a constant-radius run along a travel direction.
	Straight SegmentKind = iota
	// Cone is a radius transition between two sizes.
	Cone
	// Elbow is one facet of a turn.
	Elbow
)

func (k SegmentKind) String() string {
	switch k {
	case Straight:
		return "straight"
	case Cone:
		return "cone"
	case Elbow:
		return "elbow"
	default:
		return fmt.Sprintf("SegmentKind(%d)", int(k))
	}
}

// MarshalText lets segment logs serialize kinds by name.
func (k SegmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Segment records one extruded frustum.
type Segment struct {
	Kind        SegmentKind `json:"kind"`
	Update      int         `json:"update"` // sequence number of the Steer call that built it, 0 for direct builds
	Start       geom.Vec3   `json:"start"`
	Direction   geom.Vec3   `json:"direction"`
	Length      float64     `json:"length"`
	StartRadius float64     `json:"startRadius"`
	EndRadius   float64     `json:"endRadius"`
	Detail      int         `json:"detail"`
}

// End returns the center of the segment's end ring.
func (s Segment) End() geom.Vec3 {
	return s.Start.Add(s.Direction.Scale(s.Length))
}

// BuildSegment extrudes one frustum from the cursor along direction and
// moves the cursor to its end. The start ring has radius r0 and the end
// ring radius r1. A zero direction, a non-positive or infinite length or
// radius is ignored and reports false.
func (e *Engine) BuildSegment(direction geom.Vec3, r0, r1, length float64) bool {
	kind := Straight
	if r0 != r1 {
		kind = Cone
	}
	return e.buildSegment(kind, direction, r0, r1, length)
}

func (e *Engine) buildSegment(kind SegmentKind, direction geom.Vec3, r0, r1, length float64) bool {
	if direction.IsZero() || !finitePositive(length) || !finitePositive(r0) || !finitePositive(r1) {
		tracer().Debugf("ignoring degenerate segment dir=%v length=%g radii=%g,%g", direction, length, r0, r1)
		return false
	}
	dir := direction.Normalize()
	n := e.detail
	start := ringSlice(dir, r0, n)
	end := ringSlice(dir, r1, n)

	base := e.cursor
	top := base.Add(dir.Scale(length))
	for i := range n {
		// Index n wraps to 0 so the seam quad reuses the first ring point.
		j := (i + 1) % n
		from1 := base.Add(start[i].Position)
		from2 := base.Add(start[j].Position)
		to1 := top.Add(end[i].Position)
		to2 := top.Add(end[j].Position)
		corners := [4]geom.Vec3{to1, to2, from1, from2}

		var q mesh.Quad
		if e.shading == Flat {
			q = mesh.FlatQuad(corners, FaceNormal(from1, from2, to1))
		} else {
			q = mesh.Quad{
				Corners: corners,
				Normals: [4]geom.Vec3{end[i].Normal, end[j].Normal, start[i].Normal, start[j].Normal},
			}
		}
		e.buf.CommitQuad(q)
	}

	seg := Segment{
		Kind:        kind,
		Update:      e.update,
		Start:       base,
		Direction:   dir,
		Length:      length,
		StartRadius: r0,
		EndRadius:   r1,
		Detail:      n,
	}
	e.segments = append(e.segments, seg)
	if e.state == Idle {
		e.state = Extruding
	}
	e.cursor = top
	e.lastDirection = dir
	e.lastRadius = r1
	if e.observer != nil {
		e.observer(seg)
	}
	return true
}

func finitePositive(x float64) bool {
	return x > 0 && !math.IsInf(x, 1)
}

// FaceNormal returns the outward unit normal of the quad spanned by two
// adjacent start-ring points and the end-ring point above the first.
func FaceNormal(from1, from2, to1 geom.Vec3) geom.Vec3 {
	return from2.Sub(from1).Cross(to1.Sub(from1)).Normalize()
}

// coneLength is the length of a cone between radii r0 and r1.
func (e *Engine) coneLength(r0, r1 float64) float64 {
	return e.cfg.ConeFactor * math.Max(r0, r1)
}
