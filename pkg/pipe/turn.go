package pipe

import (
	"math"

	"github.com/chazu/conduit/pkg/geom"
)

// degenerateStep is the chord length below which an elbow facet is
// skipped instead of extruded.
const degenerateStep = 1e-9

// TurnStep is one straight facet of an elbow.
type TurnStep struct {
	Direction geom.Vec3 `json:"direction"`
	Length    float64   `json:"length"`
}

// Turn is the plan for one elbow between two travel directions.
type Turn struct {
	// Axis is the rotation axis prev × next, flipped onto the side of the
	// (1,1,1) diagonal. It is always one of the positive unit axes for two
	// orthogonal axis directions.
	Axis geom.Vec3
	// Sign is +1 if prev × next already pointed to the diagonal's side,
	// -1 otherwise.
	Sign float64
	// Angle is the signed rotation per step about Axis.
	Angle float64
	// Steps are the facets to extrude, in order.
	Steps []TurnStep
	// Skipped counts facets dropped for having a near-zero length.
	Skipped int
}

// Sweep returns the total rotation the plan covers.
func (t Turn) Sweep() float64 {
	return math.Abs(t.Angle) * float64(len(t.Steps)+t.Skipped)
}

// TurnAxis returns the unit rotation axis prev × next and the sign of its
// projection onto the (1,1,1) diagonal. The axis is zero if prev and next
// are parallel.
func TurnAxis(prev, next geom.Vec3) (axis geom.Vec3, sign float64) {
	axis = prev.Cross(next).Normalize()
	sign = 1
	if axis.Dot(geom.Diagonal) < 0 {
		sign = -1
	}
	return axis, sign
}

// PlanTurn discretizes a quarter-circle elbow of radius bendRadius from
// prev to next into steps straight facets.
//
// A lever of length bendRadius pointing from the bend center back to the
// cursor (−next·bendRadius) is rotated about the turn axis in steps of
// (π/2)/steps. Consecutive rotated levers differ by one chord of the arc;
// each chord becomes a facet with the chord's direction and length. The
// first facet leaves close to prev and the last arrives close to next, and
// the chords sum to bendRadius·(prev + next).
func PlanTurn(prev, next geom.Vec3, bendRadius float64, steps int) Turn {
	if steps < 1 {
		steps = 1
	}
	axis, sign := TurnAxis(prev, next)
	t := Turn{
		Axis:  axis.Scale(sign),
		Sign:  sign,
		Angle: math.Pi / 2 / float64(steps) * sign,
	}
	if axis.IsZero() || bendRadius <= 0 {
		return t
	}

	lever := next.Neg().Scale(bendRadius)
	last := lever
	for i := 1; i <= steps; i++ {
		offset := geom.Rotate(lever, t.Axis, t.Angle*float64(i))
		chord := offset.Sub(last)
		last = offset

		l := chord.Length()
		if l <= degenerateStep {
			t.Skipped++
			continue
		}
		t.Steps = append(t.Steps, TurnStep{Direction: chord.Scale(1 / l), Length: l})
	}
	return t
}
