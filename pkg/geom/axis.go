package geom

import (
	"fmt"
	"math"
	"strings"
)

// The six travel directions. Y is up, matching the host renderers.
var (
	Right   = Vec3{1, 0, 0}
	Left    = Vec3{-1, 0, 0}
	Up      = Vec3{0, 1, 0}
	Down    = Vec3{0, -1, 0}
	Forward = Vec3{0, 0, 1}
	Back    = Vec3{0, 0, -1}
)

// Axes lists the six unit axis directions.
var Axes = []Vec3{Right, Left, Up, Down, Forward, Back}

// Diagonal is the (1,1,1) vector used to pick a canonical sign for
// rotation axes.
var Diagonal = Vec3{1, 1, 1}

var axisNames = map[string]Vec3{
	"right":   Right,
	"left":    Left,
	"up":      Up,
	"down":    Down,
	"forward": Forward,
	"back":    Back,
	"+x":      Right,
	"-x":      Left,
	"+y":      Up,
	"-y":      Down,
	"+z":      Forward,
	"-z":      Back,
}

// AxisByName maps a direction name ("up", "left", "+z", ...) to its unit
// axis vector.
func AxisByName(name string) (Vec3, error) {
	v, ok := axisNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Vec3{}, fmt.Errorf("unknown direction %q, expected up/down/left/right/forward/back", name)
	}
	return v, nil
}

// AxisName returns the canonical name of an axis direction, or "" if v is
// not one of the six axes.
func AxisName(v Vec3) string {
	switch {
	case v.Equal(Right):
		return "right"
	case v.Equal(Left):
		return "left"
	case v.Equal(Up):
		return "up"
	case v.Equal(Down):
		return "down"
	case v.Equal(Forward):
		return "forward"
	case v.Equal(Back):
		return "back"
	}
	return ""
}

// IsAxis reports whether v is exactly one of the six unit axis vectors.
func IsAxis(v Vec3) bool {
	return AxisName(v) != ""
}

// ReferenceAxis returns a unit vector perpendicular to direction that is
// used as the zero-angle spoke of a cross-section. It is the unit axis of
// the first zero component of direction (X, then Y, then Z). A direction
// without zero components gets a Gram-Schmidt perpendicular built from the
// axis of its smallest component instead.
func ReferenceAxis(direction Vec3) Vec3 {
	switch {
	case direction.X == 0:
		return Right
	case direction.Y == 0:
		return Up
	case direction.Z == 0:
		return Forward
	}
	return Perpendicular(direction)
}

// Perpendicular returns a unit vector perpendicular to v. v must be non-zero.
func Perpendicular(v Vec3) Vec3 {
	n := v.Normalize()
	seed := Right
	ax, ay, az := math.Abs(n.X), math.Abs(n.Y), math.Abs(n.Z)
	switch {
	case ay <= ax && ay <= az:
		seed = Up
	case az <= ax && az <= ay:
		seed = Forward
	}
	return seed.Sub(n.Scale(n.Dot(seed))).Normalize()
}
