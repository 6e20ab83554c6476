// Package mesh holds the incremental triangle buffer a pipe is built into.
// The buffer only ever grows: quads are committed one at a time, corners
// that land on an already stored position are welded to that vertex, and
// stored entries are never rewritten or removed.
package mesh

import (
	"fmt"
	"math"

	"github.com/chazu/conduit/pkg/geom"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'mesh'
func tracer() tracing.Trace {
	return tracing.Select("mesh")
}

// DefaultWeldTolerance is the distance below which two submitted corner
// positions are treated as the same vertex.
const DefaultWeldTolerance = 1e-6

// normalTolerance is how far apart two unit normals may be and still count
// as the same normal when hard edges are kept.
const normalTolerance = 1e-9

// UV is a texture coordinate.
type UV struct {
	U float64 `json:"u"`
	V float64 `json:"v"`
}

// quadUVs is the fixed UV square assigned to the four quad corners in
// order to1, to2, from1, from2.
var quadUVs = [4]UV{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

// Winding selects the index order used to split a quad into triangles.
type Winding int

const (
	// Clockwise emits (to1, to2, from1) and (from1, to2, from2), which faces
	// outward for clockwise-front (left-handed) renderers.
	Clockwise Winding = iota
	// CounterClockwise emits (to1, from1, to2) and (from1, from2, to2), which
	// faces outward for counter-clockwise-front renderers.
	CounterClockwise
)

func (w Winding) String() string {
	switch w {
	case Clockwise:
		return "cw"
	case CounterClockwise:
		return "ccw"
	default:
		return fmt.Sprintf("Winding(%d)", int(w))
	}
}

// ParseWinding parses "cw" or "ccw".
func ParseWinding(s string) (Winding, error) {
	switch s {
	case "", "cw", "clockwise":
		return Clockwise, nil
	case "ccw", "counterclockwise", "counter-clockwise":
		return CounterClockwise, nil
	}
	return Clockwise, fmt.Errorf("unknown winding %q, expected cw or ccw", s)
}

// triangle corner order into the four committed corners, per winding.
var splits = map[Winding][6]int{
	Clockwise:        {0, 1, 2, 2, 1, 3},
	CounterClockwise: {0, 2, 1, 2, 3, 1},
}

// Quad is one side face of a pipe segment. Corners are ordered to1, to2,
// from1, from2: the two end-ring points followed by the two start-ring
// points at the same pair of angles.
type Quad struct {
	Corners [4]geom.Vec3
	Normals [4]geom.Vec3
}

// FlatQuad builds a quad whose four corners share one surface normal.
func FlatQuad(corners [4]geom.Vec3, normal geom.Vec3) Quad {
	return Quad{Corners: corners, Normals: [4]geom.Vec3{normal, normal, normal, normal}}
}

// Buffer is the accumulated pipe mesh: parallel position, normal and UV
// sequences plus a flat triangle index list with stride 3.
//
// Invariants: len(positions) == len(normals) == len(uvs), and every index
// is < len(positions).
type Buffer struct {
	positions []geom.Vec3
	normals   []geom.Vec3
	uvs       []UV
	indices   []uint32

	winding   Winding
	tolerance float64
	hardEdges bool
	exact     map[geom.Vec3][]uint32
	grid      map[cell][]uint32

	quads       int
	submissions int
	welds       int
}

// cell is a quantized position used as the weld hash key.
type cell [3]int64

// NewBuffer creates an empty buffer. A weld tolerance of 0 welds only
// bit-identical positions; a positive tolerance welds positions closer
// than tolerance to each other (best-effort welding).
func NewBuffer(tolerance float64, winding Winding) *Buffer {
	if tolerance < 0 {
		tolerance = 0
	}
	b := &Buffer{winding: winding, tolerance: tolerance}
	if tolerance == 0 {
		b.exact = make(map[geom.Vec3][]uint32)
	} else {
		b.grid = make(map[cell][]uint32)
	}
	return b
}

// Tolerance returns the weld tolerance.
func (b *Buffer) Tolerance() float64 {
	return b.tolerance
}

// SetHardEdges makes corners weld only to stored vertices that also carry
// the same normal, so faces with different normals never share a vertex.
// It affects quads committed afterwards.
func (b *Buffer) SetHardEdges(on bool) {
	b.hardEdges = on
}

// HardEdges reports whether welding also requires matching normals.
func (b *Buffer) HardEdges() bool {
	return b.hardEdges
}

// Winding returns the triangle winding used for new quads.
func (b *Buffer) Winding() Winding {
	return b.winding
}

// CommitQuad appends one quad. Each corner either reuses an existing vertex
// within the weld tolerance (and, with hard edges, with the same normal) or
// appends a new position, normal and UV. Six
// triangle-corner indices are appended using the buffer's winding.
func (b *Buffer) CommitQuad(q Quad) {
	var idx [4]uint32
	for i, p := range q.Corners {
		idx[i] = b.vertex(p, q.Normals[i], quadUVs[i])
	}
	for _, c := range splits[b.winding] {
		b.indices = append(b.indices, idx[c])
	}
	b.quads++
}

// vertex returns the index for position p, appending a new vertex if no
// stored position is close enough.
func (b *Buffer) vertex(p, n geom.Vec3, uv UV) uint32 {
	b.submissions++
	if i, ok := b.lookup(p, n); ok {
		b.welds++
		return i
	}
	i := uint32(len(b.positions))
	b.positions = append(b.positions, p)
	b.normals = append(b.normals, n)
	b.uvs = append(b.uvs, uv)
	if b.exact != nil {
		b.exact[p] = append(b.exact[p], i)
	} else {
		k := b.cellOf(p)
		b.grid[k] = append(b.grid[k], i)
	}
	return i
}

func (b *Buffer) lookup(p, n geom.Vec3) (uint32, bool) {
	if b.exact != nil {
		for _, i := range b.exact[p] {
			if b.normalMatches(i, n) {
				return i, true
			}
		}
		return 0, false
	}
	// A point within tolerance can sit in any neighbouring cell.
	k := b.cellOf(p)
	best, found, bestDist := uint32(0), false, math.Inf(1)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				for _, i := range b.grid[cell{k[0] + dx, k[1] + dy, k[2] + dz}] {
					d := b.positions[i].Distance(p)
					if d <= b.tolerance && d < bestDist && b.normalMatches(i, n) {
						best, found, bestDist = i, true, d
					}
				}
			}
		}
	}
	return best, found
}

func (b *Buffer) normalMatches(i uint32, n geom.Vec3) bool {
	return !b.hardEdges || b.normals[i].Distance(n) <= normalTolerance
}

func (b *Buffer) cellOf(p geom.Vec3) cell {
	return cell{
		int64(math.Floor(p.X / b.tolerance)),
		int64(math.Floor(p.Y / b.tolerance)),
		int64(math.Floor(p.Z / b.tolerance)),
	}
}

// Len returns the number of stored vertices.
func (b *Buffer) Len() int {
	return len(b.positions)
}

// Stats summarizes the buffer contents.
type Stats struct {
	Vertices    int `json:"vertices"`
	Triangles   int `json:"triangles"`
	Quads       int `json:"quads"`
	Submissions int `json:"submissions"` // corner positions submitted
	Welds       int `json:"welds"`       // submissions that reused a vertex
}

// Stats returns counts describing the buffer.
func (b *Buffer) Stats() Stats {
	return Stats{
		Vertices:    len(b.positions),
		Triangles:   len(b.indices) / 3,
		Quads:       b.quads,
		Submissions: b.submissions,
		Welds:       b.welds,
	}
}

// Check verifies the buffer invariants. It is cheap enough to call from
// tests after every mutation.
func (b *Buffer) Check() error {
	n := len(b.positions)
	if len(b.normals) != n || len(b.uvs) != n {
		return fmt.Errorf("mesh: parallel arrays diverged: %d positions, %d normals, %d uvs",
			n, len(b.normals), len(b.uvs))
	}
	if len(b.indices)%3 != 0 {
		return fmt.Errorf("mesh: %d indices is not a multiple of 3", len(b.indices))
	}
	for i, idx := range b.indices {
		if int(idx) >= n {
			tracer().Errorf("index %d at %d out of range", idx, i)
			return fmt.Errorf("mesh: index %d at position %d out of range (%d vertices)", idx, i, n)
		}
	}
	return nil
}
