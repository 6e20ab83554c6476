package mesh

import (
	"slices"

	"github.com/chazu/conduit/pkg/geom"
	"github.com/chazu/conduit/pkg/kernel"
)

// Snapshot is a read-only copy of the buffer handed to renderers. Mutating
// a snapshot never affects the buffer it was taken from.
type Snapshot struct {
	Positions []geom.Vec3 `json:"positions"`
	Normals   []geom.Vec3 `json:"normals"`
	UVs       []UV        `json:"uvs"`
	Indices   []uint32    `json:"indices"`
}

// Snapshot copies the current buffer contents.
func (b *Buffer) Snapshot() Snapshot {
	return Snapshot{
		Positions: slices.Clone(b.positions),
		Normals:   slices.Clone(b.normals),
		UVs:       slices.Clone(b.uvs),
		Indices:   slices.Clone(b.indices),
	}
}

// VertexCount returns the number of vertices.
func (s Snapshot) VertexCount() int {
	return len(s.Positions)
}

// TriangleCount returns the number of triangles.
func (s Snapshot) TriangleCount() int {
	return len(s.Indices) / 3
}

// Triangle returns the three corner positions of triangle i.
func (s Snapshot) Triangle(i int) [3]geom.Vec3 {
	return [3]geom.Vec3{
		s.Positions[s.Indices[3*i]],
		s.Positions[s.Indices[3*i+1]],
		s.Positions[s.Indices[3*i+2]],
	}
}

// Bounds returns the axis-aligned bounding box of all positions. Both
// corners are zero for an empty snapshot.
func (s Snapshot) Bounds() (min, max geom.Vec3) {
	if len(s.Positions) == 0 {
		return geom.Vec3{}, geom.Vec3{}
	}
	min, max = s.Positions[0], s.Positions[0]
	for _, p := range s.Positions[1:] {
		min = min.Min(p)
		max = max.Max(p)
	}
	return min, max
}

// Flatten converts the snapshot into the flat float32 layout renderers
// consume.
func (s Snapshot) Flatten(name string) *kernel.Mesh {
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, 3*len(s.Positions)),
		Normals:  make([]float32, 0, 3*len(s.Normals)),
		UVs:      make([]float32, 0, 2*len(s.UVs)),
		Indices:  slices.Clone(s.Indices),
		PartName: name,
	}
	for _, p := range s.Positions {
		m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
	}
	for _, n := range s.Normals {
		m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	for _, uv := range s.UVs {
		m.UVs = append(m.UVs, float32(uv.U), float32(uv.V))
	}
	return m
}
