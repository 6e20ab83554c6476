package mesh

import (
	"testing"

	"github.com/chazu/conduit/pkg/geom"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var up = geom.V(0, 1, 0)

func square(x float64) Quad {
	return FlatQuad([4]geom.Vec3{
		geom.V(x, 1, 0), geom.V(x+1, 1, 0),
		geom.V(x, 0, 0), geom.V(x+1, 0, 0),
	}, up)
}

func TestCommitQuadAppendsVertices(t *testing.T) {
	teardown := gotestingadapter.RedirectTracing(t)
	defer teardown()

	b := NewBuffer(0, Clockwise)
	b.CommitQuad(square(0))
	snap := b.Snapshot()
	assert.Equal(t, 4, snap.VertexCount())
	assert.Equal(t, []uint32{0, 1, 2, 2, 1, 3}, snap.Indices)
	assert.Equal(t, []UV{{0, 1}, {1, 1}, {1, 0}, {0, 0}}, snap.UVs)
	require.NoError(t, b.Check())
}

func TestCounterClockwiseSplit(t *testing.T) {
	b := NewBuffer(0, CounterClockwise)
	b.CommitQuad(square(0))
	assert.Equal(t, []uint32{0, 2, 1, 2, 3, 1}, b.Snapshot().Indices)
}

func TestAdjacentQuadsWeldExactly(t *testing.T) {
	b := NewBuffer(0, Clockwise)
	b.CommitQuad(square(0))
	b.CommitQuad(square(1))

	st := b.Stats()
	assert.Equal(t, 6, st.Vertices)
	assert.Equal(t, 8, st.Submissions)
	assert.Equal(t, 2, st.Welds)
	assert.Equal(t, 4, st.Triangles)
	assert.Equal(t, 2, st.Quads)

	// The second quad's left edge reuses the first quad's right edge.
	snap := b.Snapshot()
	assert.Equal(t, []uint32{1, 4, 3, 3, 4, 5}, snap.Indices[6:])
	require.NoError(t, b.Check())
}

func TestWeldTolerance(t *testing.T) {
	nudged := square(1)
	nudged.Corners[0].X += 1e-9
	nudged.Corners[2].Y -= 1e-9

	exact := NewBuffer(0, Clockwise)
	exact.CommitQuad(square(0))
	exact.CommitQuad(nudged)
	assert.Equal(t, 8, exact.Len(), "exact welding must not merge nudged corners")

	loose := NewBuffer(DefaultWeldTolerance, Clockwise)
	loose.CommitQuad(square(0))
	loose.CommitQuad(nudged)
	assert.Equal(t, 6, loose.Len())
	require.NoError(t, loose.Check())
}

func TestWeldAcrossCellBoundary(t *testing.T) {
	// Positions straddling a grid line still weld.
	b := NewBuffer(0.1, Clockwise)
	q := FlatQuad([4]geom.Vec3{
		geom.V(0.0999, 0, 0), geom.V(5, 0, 0), geom.V(5, 5, 0), geom.V(0, 5, 0),
	}, up)
	b.CommitQuad(q)
	q.Corners[0] = geom.V(0.1001, 0, 0)
	b.CommitQuad(q)
	assert.Equal(t, 4, b.Len())
}

func TestWeldKeepsFirstNormal(t *testing.T) {
	b := NewBuffer(0, Clockwise)
	b.CommitQuad(square(0))
	other := square(1)
	other.Normals = [4]geom.Vec3{geom.V(1, 0, 0), geom.V(1, 0, 0), geom.V(1, 0, 0), geom.V(1, 0, 0)}
	b.CommitQuad(other)

	snap := b.Snapshot()
	assert.True(t, snap.Normals[1].Equal(up), "welded vertex keeps the first normal")
	assert.True(t, snap.Normals[4].Equal(geom.V(1, 0, 0)))
	assert.Len(t, snap.UVs, snap.VertexCount())
}

func TestHardEdgesSplitDifferentNormals(t *testing.T) {
	for _, tol := range []float64{0, DefaultWeldTolerance} {
		b := NewBuffer(tol, Clockwise)
		b.SetHardEdges(true)
		assert.True(t, b.HardEdges())

		b.CommitQuad(square(0))
		other := square(1)
		side := geom.V(1, 0, 0)
		other.Normals = [4]geom.Vec3{side, side, side, side}
		b.CommitQuad(other)

		st := b.Stats()
		assert.Equal(t, 8, st.Vertices, "tolerance %g", tol)
		assert.Zero(t, st.Welds, "tolerance %g", tol)
		snap := b.Snapshot()
		for i := 4; i < 8; i++ {
			assert.True(t, snap.Normals[i].Equal(side), "tolerance %g: vertex %d keeps its own normal", tol, i)
		}
		require.NoError(t, b.Check())

		// Same normal on a shared edge still welds.
		b.CommitQuad(square(2))
		b.CommitQuad(square(3))
		assert.Equal(t, 14, b.Len(), "tolerance %g", tol)
	}
}

func TestNegativeToleranceMeansExact(t *testing.T) {
	b := NewBuffer(-1, Clockwise)
	assert.Zero(t, b.Tolerance())
	assert.Equal(t, Clockwise, b.Winding())
}

func TestSnapshotIsIndependent(t *testing.T) {
	b := NewBuffer(0, Clockwise)
	b.CommitQuad(square(0))
	snap := b.Snapshot()
	snap.Positions[0] = geom.V(99, 99, 99)
	snap.Indices[0] = 42

	again := b.Snapshot()
	assert.True(t, again.Positions[0].Equal(geom.V(0, 1, 0)))
	assert.Equal(t, uint32(0), again.Indices[0])

	b.CommitQuad(square(1))
	assert.Equal(t, 4, snap.VertexCount(), "older snapshot must not grow")
}

func TestSnapshotGeometry(t *testing.T) {
	b := NewBuffer(0, Clockwise)
	b.CommitQuad(square(0))
	b.CommitQuad(square(1))
	snap := b.Snapshot()

	min, max := snap.Bounds()
	assert.True(t, min.Equal(geom.V(0, 0, 0)))
	assert.True(t, max.Equal(geom.V(2, 1, 0)))
	assert.Equal(t, 4, snap.TriangleCount())
	assert.Equal(t, [3]geom.Vec3{geom.V(0, 1, 0), geom.V(1, 1, 0), geom.V(0, 0, 0)}, snap.Triangle(0))

	empty := Snapshot{}
	min, max = empty.Bounds()
	assert.True(t, min.IsZero() && max.IsZero())
}

func TestFlatten(t *testing.T) {
	b := NewBuffer(0, Clockwise)
	b.CommitQuad(square(0))
	m := b.Snapshot().Flatten("pipe")

	assert.Equal(t, "pipe", m.PartName)
	assert.Len(t, m.Vertices, 12)
	assert.Len(t, m.Normals, 12)
	assert.Len(t, m.UVs, 8)
	assert.Equal(t, 2, m.TriangleCount())
	assert.Equal(t, []float32{0, 1, 0}, m.Vertices[:3])
	assert.Equal(t, []float32{0, 1}, m.UVs[:2])
}

func TestParseWinding(t *testing.T) {
	for in, want := range map[string]Winding{"": Clockwise, "cw": Clockwise, "ccw": CounterClockwise, "counter-clockwise": CounterClockwise} {
		got, err := ParseWinding(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseWinding("both")
	assert.Error(t, err)
	assert.Equal(t, "Winding(7)", Winding(7).String())
}
