package renderer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/scene"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quadAt(centre mgl64.Vec3, half float64) *Batch {
	b := &Batch{Topology: TopologyQuads}
	for _, o := range [][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
		b.Append(Vertex{Position: centre.Add(mgl64.Vec3{o[0] * half, o[1] * half, 0})})
	}
	return b
}

func TestHeadlessSelectRecordsNearest(t *testing.T) {
	b := NewHeadlessBackend()
	proj := mgl64.Perspective(mgl64.DegToRad(60), 1, 0.1, 100)
	view := mgl64.LookAtV(mgl64.Vec3{0, 0, 5}, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0})
	b.SetMatrices(proj, view)

	b.BeginSelect(16)
	b.LoadName(1)
	b.DrawBatch(quadAt(mgl64.Vec3{0, 0, -2}, 0.1))
	b.LoadName(2)
	b.DrawBatch(quadAt(mgl64.Vec3{0, 0, 1}, 0.1))
	b.LoadName(3)
	b.DrawBatch(quadAt(mgl64.Vec3{50, 0, 0}, 0.1))
	hits := b.EndSelect()

	require.Len(t, hits, 2)
	best, ok := Nearest(hits)
	require.True(t, ok)
	assert.Equal(t, uint32(2), best.Name)
	assert.Empty(t, b.Draws())
}

func TestHeadlessRecordsState(t *testing.T) {
	b := NewHeadlessBackend(WithWindowSize(800, 600))
	b.BeginFrame(common.Colour{})
	b.SetDrawBuffer(BufferBackRight)
	b.SetViewport(common.Viewport{X: 400, Width: 400, Height: 600})
	b.SetBlend(common.BlendAdditive)
	b.SetDepthWrite(false)
	b.SetColorMask(false, true, true, true)
	b.DrawBatch(quadAt(mgl64.Vec3{}, 1))
	b.DrawBatch(&Batch{})
	b.DrawOverlay(common.Colour{0, 0, 0, 0.5})
	b.EndFrame()

	draws := b.Draws()
	require.Len(t, draws, 1)
	d := draws[0]
	assert.Equal(t, BufferBackRight, d.Buffer)
	assert.Equal(t, 400, d.Viewport.X)
	assert.Equal(t, common.BlendAdditive, d.Blend)
	assert.False(t, d.DepthWrite)
	assert.Equal(t, [4]bool{false, true, true, true}, d.ColorMask)
	assert.Len(t, b.Overlays(), 1)
	assert.Equal(t, 1, b.Frames())

	b.BeginFrame(common.Colour{})
	assert.Empty(t, b.Draws())
}

func TestNearestEmpty(t *testing.T) {
	_, ok := Nearest(nil)
	assert.False(t, ok)
}

func TestBuildOpaqueGroups(t *testing.T) {
	s := scene.NewStore()
	red := common.Colour{1, 0, 0, 1}
	s.AddPoint(scene.World(), scene.Point{Position: mgl64.Vec3{1, 0, 0}, Colour: red, Size: 2})
	s.AddPoint(scene.World(), scene.Point{Position: mgl64.Vec3{2, 0, 0}, Colour: red, Size: 2})
	s.AddPoint(scene.Screen(0), scene.Point{Position: mgl64.Vec3{0.5, 0.5, 0.5}, Colour: red})
	s.AddLine(scene.World(), scene.Line{Ends: [2]mgl64.Vec3{{0, 0, 0}, {1, 1, 1}}, Colours: [2]common.Colour{red, red}})
	require.NoError(t, s.AddPolygon(scene.World(), scene.Polygon{
		Vertices: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Colours:  []common.Colour{red},
	}))
	require.NoError(t, s.AddPolygon(scene.World(), scene.Polygon{
		Vertices: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Colours:  []common.Colour{{1, 1, 1, 0.5}},
		Blend:    common.BlendAlpha,
	}))

	batches := BuildOpaque(s.Snapshot(), WorldOnly, IdentityPlacer)
	require.Len(t, batches, 3)
	assert.Equal(t, TopologyPoints, batches[0].Topology)
	assert.Equal(t, 2, batches[0].Len())
	assert.Equal(t, 2.0, batches[0].PointSize)
	assert.Equal(t, TopologyLines, batches[1].Topology)
	assert.Equal(t, 1, batches[1].Len())
	assert.Equal(t, TopologyTriangles, batches[2].Topology)
	assert.Equal(t, 1, batches[2].Len())

	shift := func(_ scene.Anchor, p mgl64.Vec3) mgl64.Vec3 { return p.Add(mgl64.Vec3{10, 0, 0}) }
	screen := BuildOpaque(s.Snapshot(), ScreenOf(0), shift)
	require.Len(t, screen, 1)
	assert.Equal(t, mgl64.Vec3{10.5, 0.5, 0.5}, screen[0].Vertices[0].Position)
	assert.Empty(t, BuildOpaque(s.Snapshot(), ScreenOf(1), shift))
}

func TestBatchCacheStamps(t *testing.T) {
	c := NewBatchCache()
	k := CacheKey{Panel: 0, Pass: PassStatic}
	_, ok := c.Lookup(k, 1)
	assert.False(t, ok)

	c.Store(k, 1, []*Batch{{}})
	got, ok := c.Lookup(k, 1)
	assert.True(t, ok)
	assert.Len(t, got, 1)

	_, ok = c.Lookup(k, 2)
	assert.False(t, ok)

	c.Store(CacheKey{Panel: 1, Pass: PassDynamic}, 1, nil)
	assert.Equal(t, 2, c.Len())
	c.InvalidatePanel(0)
	assert.Equal(t, 1, c.Len())
	c.Invalidate()
	assert.Equal(t, 0, c.Len())
}
