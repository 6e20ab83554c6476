// Package pipe builds a continuous tube mesh one steering step at a time.
//
// An Engine owns a cursor, the last travel direction and the last radius.
// Every Steer call extends the tube from the cursor: a faceted elbow when
// the direction changes, a cone when the radius changed since the last
// segment, then a straight run of the configured length. Geometry is only
// ever appended to the engine's mesh.Buffer.
package pipe

import (
	"fmt"

	"github.com/chazu/conduit/pkg/geom"
	"github.com/chazu/conduit/pkg/mesh"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'pipe'
func tracer() tracing.Trace {
	return tracing.Select("pipe")
}

// State is the phase of the engine's update cycle.
type State int

const (
	// Idle means nothing has been extruded yet.
	Idle State = iota
	// Extruding means a segment is being or has last been extruded.
	Extruding
	// Turning means elbow facets are being extruded.
	Turning
	// ConeTransition means a radius-change cone is being extruded.
	ConeTransition
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Extruding:
		return "extruding"
	case Turning:
		return "turning"
	case ConeTransition:
		return "cone"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// DropReason tells why a Steer call added no geometry.
type DropReason int

const (
	// NotDropped means the call extended the pipe.
	NotDropped DropReason = iota
	// DropInvalidDirection means the direction was not one of the six axes.
	DropInvalidDirection
	// DropReversal means the direction was the exact opposite of the last one.
	DropReversal
)

func (d DropReason) String() string {
	switch d {
	case NotDropped:
		return "none"
	case DropInvalidDirection:
		return "invalid direction"
	case DropReversal:
		return "reversal"
	default:
		return fmt.Sprintf("DropReason(%d)", int(d))
	}
}

// Outcome describes what one Steer call did.
type Outcome struct {
	Direction geom.Vec3  `json:"direction"`
	Dropped   DropReason `json:"dropped"`
	Turned    bool       `json:"turned"`
	Coned     bool       `json:"coned"`
	Segments  int        `json:"segments"` // segments extruded, elbow facets included
	Skipped   int        `json:"skipped"`  // degenerate elbow facets left out
}

// Option configures an Engine.
type Option func(*Engine)

// WithObserver registers fn to be called with every segment right after it
// has been committed to the buffer.
func WithObserver(fn func(Segment)) Option {
	return func(e *Engine) {
		e.observer = fn
	}
}

// Engine is the pipe generator. It is not safe for concurrent use; hosts
// serialize calls.
type Engine struct {
	cfg     Config
	buf     *mesh.Buffer
	shading Shading

	sizeIndex  int
	detail     int
	length     float64
	iterations int

	cursor        geom.Vec3
	lastDirection geom.Vec3
	lastRadius    float64
	state         State

	update   int
	segments []Segment
	observer func(Segment)
}

// New creates an idle engine at the origin. The starting parameters are
// taken from cfg and clamped like the setters clamp them.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	shading, _ := ParseShading(cfg.Shading)
	winding, _ := mesh.ParseWinding(cfg.Winding)

	e := &Engine{cfg: cfg, shading: shading}
	for _, opt := range opts {
		opt(e)
	}
	e.buf = mesh.NewBuffer(cfg.WeldTolerance, winding)
	e.buf.SetHardEdges(shading == Flat)
	e.SetSizeIndex(cfg.SizeIndex)
	e.SetDetail(cfg.Detail)
	e.SetLength(cfg.Length)
	e.SetIterations(cfg.AngleIterations)
	e.lastRadius = e.Radius()
	return e, nil
}

// Steer extends the pipe one step in direction. Directions other than the
// six unit axes and exact reversals of the last direction are dropped
// without changing any state.
func (e *Engine) Steer(direction geom.Vec3) Outcome {
	out := Outcome{Direction: direction}
	if !geom.IsAxis(direction) {
		tracer().Infof("dropping non-axis direction %v", direction)
		out.Dropped = DropInvalidDirection
		return out
	}
	if e.state != Idle && direction.Equal(e.lastDirection.Neg()) {
		tracer().Infof("dropping reversal to %s", geom.AxisName(direction))
		out.Dropped = DropReversal
		return out
	}

	e.update++
	radius := e.Radius()
	before := len(e.segments)

	// The first segment starts at the current radius with no turn or cone.
	if e.state != Idle {
		if !direction.Equal(e.lastDirection) {
			e.state = Turning
			r := e.lastRadius
			turn := PlanTurn(e.lastDirection, direction, e.cfg.ElbowFactor*r, e.iterations)
			tracer().Debugf("turn %s -> %s about %v, %d steps of %.4f rad",
				geom.AxisName(e.lastDirection), geom.AxisName(direction), turn.Axis, len(turn.Steps), turn.Angle)
			for _, step := range turn.Steps {
				e.buildSegment(Elbow, step.Direction, r, r, step.Length)
			}
			out.Turned = true
			out.Skipped = turn.Skipped
		}
		if radius != e.lastRadius {
			e.state = ConeTransition
			e.buildSegment(Cone, direction, e.lastRadius, radius, e.coneLength(e.lastRadius, radius))
			out.Coned = true
		}
	}

	e.state = Extruding
	e.buildSegment(Straight, direction, radius, radius, e.length)
	out.Segments = len(e.segments) - before
	tracer().Debugf("steer %s: %d segments, cursor %v", geom.AxisName(direction), out.Segments, e.cursor)
	return out
}

// SteerName steers by direction name, see geom.AxisByName.
func (e *Engine) SteerName(name string) (Outcome, error) {
	dir, err := geom.AxisByName(name)
	if err != nil {
		return Outcome{Dropped: DropInvalidDirection}, err
	}
	return e.Steer(dir), nil
}

// SetSizeIndex selects the radius for the next segments, clamped into the
// size table.
func (e *Engine) SetSizeIndex(i int) {
	e.sizeIndex = e.cfg.ClampSizeIndex(i)
}

// SetDetail sets the number of sides of the next segments, at least MinDetail.
func (e *Engine) SetDetail(n int) {
	e.detail = ClampDetail(n)
}

// SetLength sets the length of the next straight runs, at least MinLength.
func (e *Engine) SetLength(l float64) {
	e.length = ClampLength(l)
}

// SetIterations sets the number of facets per elbow, clamped into
// [MinIterations, MaxIterations].
func (e *Engine) SetIterations(n int) {
	e.iterations = ClampIterations(n)
}

// SizeIndex returns the selected size index.
func (e *Engine) SizeIndex() int { return e.sizeIndex }

// Radius returns the radius selected by the size index.
func (e *Engine) Radius() float64 { return e.cfg.Sizes[e.sizeIndex] }

// Detail returns the number of sides of the next segments.
func (e *Engine) Detail() int { return e.detail }

// Length returns the length of the next straight runs.
func (e *Engine) Length() float64 { return e.length }

// Iterations returns the number of facets per elbow.
func (e *Engine) Iterations() int { return e.iterations }

// Cursor returns the point the next segment starts from.
func (e *Engine) Cursor() geom.Vec3 { return e.cursor }

// LastDirection returns the direction of the last segment, zero while idle.
func (e *Engine) LastDirection() geom.Vec3 { return e.lastDirection }

// LastRadius returns the end radius of the last segment.
func (e *Engine) LastRadius() float64 { return e.lastRadius }

// State returns the current update phase.
func (e *Engine) State() State { return e.state }

// Config returns the configuration the engine was created with.
func (e *Engine) Config() Config { return e.cfg }

// Segments returns a copy of the segment log.
func (e *Engine) Segments() []Segment {
	out := make([]Segment, len(e.segments))
	copy(out, e.segments)
	return out
}

// Snapshot copies the mesh built so far.
func (e *Engine) Snapshot() mesh.Snapshot { return e.buf.Snapshot() }

// Stats returns the mesh counters.
func (e *Engine) Stats() mesh.Stats { return e.buf.Stats() }

// Check verifies the mesh invariants.
func (e *Engine) Check() error { return e.buf.Check() }
