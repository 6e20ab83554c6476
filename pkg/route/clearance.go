package route

import (
	"fmt"
	"math"

	polyclip "github.com/akavel/polyclip-go"

	"github.com/chazu/conduit/pkg/geom"
	"github.com/chazu/conduit/pkg/pipe"
)

// clearanceSlack shrinks segment boxes so pipes that merely touch are not
// reported.
const clearanceSlack = 1e-9

// box is the axis-aligned bounds of a straight or cone segment.
type box struct {
	min, max geom.Vec3
}

// segmentBox returns the exact bounds of an axis-aligned segment. ok is
// false for elbow facets and other off-axis segments.
func segmentBox(s pipe.Segment) (b box, ok bool) {
	if s.Kind == pipe.Elbow || !geom.IsAxis(s.Direction) {
		return box{}, false
	}
	r := math.Max(s.StartRadius, s.EndRadius)
	end := s.End()
	b.min = s.Start.Min(end)
	b.max = s.Start.Max(end)
	pad := geom.Vec3{X: r, Y: r, Z: r}
	// Only the two axes across the pipe get the radius.
	switch {
	case s.Direction.X != 0:
		pad.X = 0
	case s.Direction.Y != 0:
		pad.Y = 0
	default:
		pad.Z = 0
	}
	slack := geom.Vec3{X: clearanceSlack, Y: clearanceSlack, Z: clearanceSlack}
	b.min = b.min.Sub(pad).Add(slack)
	b.max = b.max.Add(pad).Sub(slack)
	return b, true
}

// rect projects the box onto the plane of components i and j.
func (b box) rect(i, j int) polyclip.Polygon {
	x0, y0 := b.min.Component(i), b.min.Component(j)
	x1, y1 := b.max.Component(i), b.max.Component(j)
	return polyclip.Polygon{{
		{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
	}}
}

// area returns the total absolute area of a polygon's contours.
func area(p polyclip.Polygon) float64 {
	var total float64
	for _, c := range p {
		var a float64
		for i := range c {
			j := (i + 1) % len(c)
			a += c[i].X*c[j].Y - c[j].X*c[i].Y
		}
		total += math.Abs(a) / 2
	}
	return total
}

// overlaps reports whether two boxes share volume. Two axis-aligned boxes
// intersect exactly when their XY and XZ projections both intersect.
func (b box) overlaps(o box) bool {
	for _, plane := range [][2]int{{0, 1}, {0, 2}} {
		clip := b.rect(plane[0], plane[1]).Construct(polyclip.INTERSECTION, o.rect(plane[0], plane[1]))
		if area(clip) <= 0 {
			return false
		}
	}
	return true
}

// ValidateClearance warns about straight and cone segments that pass
// through each other. Segments built by the same or by adjacent steering
// updates share joints and are not compared. Elbow facets are skipped.
func ValidateClearance(segments []pipe.Segment) []ValidationWarning {
	type indexed struct {
		seg pipe.Segment
		box box
	}
	var runs []indexed
	for _, s := range segments {
		if b, ok := segmentBox(s); ok {
			runs = append(runs, indexed{s, b})
		}
	}

	var warnings []ValidationWarning
	for i := range runs {
		for j := i + 1; j < len(runs); j++ {
			a, b := runs[i], runs[j]
			if abs(a.seg.Update-b.seg.Update) <= 1 {
				continue
			}
			if a.box.overlaps(b.box) {
				warnings = append(warnings, ValidationWarning{
					Step: b.seg.Update,
					Message: fmt.Sprintf("%s run from %v collides with the %s run of step %d",
						geom.AxisName(b.seg.Direction), b.seg.Start, geom.AxisName(a.seg.Direction), a.seg.Update),
				})
			}
		}
	}
	return warnings
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
