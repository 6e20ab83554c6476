// Package route defines the steering program a script evaluates to.
// A Route is an ordered list of steps; each step carries one travel
// direction plus the pipe parameters in effect when it was issued. Routes
// are plain data: a new evaluation produces a new route, and replaying one
// into a pipe.Engine reproduces the same mesh.
package route

import (
	"strings"

	"github.com/chazu/conduit/pkg/geom"
)

// Step is one steering command.
type Step struct {
	Direction  geom.Vec3 `json:"direction"`
	SizeIndex  int       `json:"size_index"`
	Detail     int       `json:"detail"`
	Length     float64   `json:"length"`
	Iterations int       `json:"iterations"`
	Line       int       `json:"line,omitempty"`   // 1-based source line, 0 if unknown
	Source     string    `json:"source,omitempty"` // expression that produced the step
}

// Route is the top-level data structure produced by script evaluation.
type Route struct {
	Steps   []Step `json:"steps"`
	Version uint64 `json:"version"`
}

// New creates an empty route.
func New() *Route {
	return &Route{}
}

// Add appends a step.
func (r *Route) Add(s Step) {
	r.Steps = append(r.Steps, s)
}

// Len returns the number of steps.
func (r *Route) Len() int {
	return len(r.Steps)
}

// Directions returns the direction of every step in order.
func (r *Route) Directions() []geom.Vec3 {
	out := make([]geom.Vec3, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Direction
	}
	return out
}

// String renders the route as a space-separated list of direction names.
// Directions that are not axes are shown as vectors.
func (r *Route) String() string {
	names := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		if n := geom.AxisName(s.Direction); n != "" {
			names[i] = n
		} else {
			names[i] = s.Direction.String()
		}
	}
	return strings.Join(names, " ")
}
