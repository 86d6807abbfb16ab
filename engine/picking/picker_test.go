package picking

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/compositor"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vis/engine/scene"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const winW, winH = 800, 600

func setup(t *testing.T, mode compositor.StereoMode) (scene.Store, Picker) {
	t.Helper()
	cam := camera.NewCamera()
	comp := compositor.NewCompositor(compositor.WithStereoMode(mode))
	require.NotEmpty(t, comp.Compose(0, cam, winW, winH))
	comp.EndPanel()
	store := scene.NewStore()
	return store, NewPicker(store, comp, renderer.NewHeadlessBackend())
}

func TestPickEmpty(t *testing.T) {
	_, p := setup(t, compositor.Mono)
	_, ok := p.Pick(400, 300, winW, winH)
	assert.False(t, ok)
}

func TestPickSingleHandle(t *testing.T) {
	store, p := setup(t, compositor.Mono)
	id := store.AddHandle(scene.World(), scene.Handle{Size: 0.5})

	got, ok := p.Pick(400, 300, winW, winH)
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = p.Pick(5, 5, winW, winH)
	assert.False(t, ok)
}

func TestPickNearest(t *testing.T) {
	store, p := setup(t, compositor.Mono)
	store.AddHandle(scene.World(), scene.Handle{Size: 0.5})
	near := store.AddHandle(scene.World(), scene.Handle{Position: mgl64.Vec3{0, 0, 2}, Size: 0.5})

	got, ok := p.Pick(400, 300, winW, winH)
	require.True(t, ok)
	assert.Equal(t, near, got)
}

func TestPickScreenHandle(t *testing.T) {
	store, p := setup(t, compositor.Mono)
	id := store.AddHandle(scene.Screen(0), scene.Handle{Position: mgl64.Vec3{0.25, 0.75, 0.5}, Size: 0.05})

	got, ok := p.Pick(200, 450, winW, winH)
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = p.Pick(600, 150, winW, winH)
	assert.False(t, ok)
}

func TestPickDualFoldsIntoSubViewport(t *testing.T) {
	store, p := setup(t, compositor.DualStereo)
	id := store.AddHandle(scene.World(), scene.Handle{Size: 0.5})

	for _, x := range []float64{200, 600} {
		got, ok := p.Pick(x, 300, winW, winH)
		require.True(t, ok, "x=%v", x)
		assert.Equal(t, id, got)
	}
}

func TestDragRoundTripWorld(t *testing.T) {
	store, p := setup(t, compositor.Mono)
	start := mgl64.Vec3{1, -0.5, 2}
	id := store.AddHandle(scene.World(), scene.Handle{Position: start, Size: 0.5})

	require.True(t, p.BeginDrag(id, 0))
	p.UpdateDrag(0, 0)

	h, ok := store.Handle(id)
	require.True(t, ok)
	for k := range 3 {
		assert.InDelta(t, start[k], h.Position[k], 1e-6)
	}
	assert.True(t, h.Selected)

	p.EndDrag()
	h, _ = store.Handle(id)
	assert.False(t, h.Selected)
	_, active := p.Dragging()
	assert.False(t, active)
}

func TestDragRoundTripScreen(t *testing.T) {
	store, p := setup(t, compositor.Mono)
	start := mgl64.Vec3{0.25, 0.75, 0.5}
	id := store.AddHandle(scene.Screen(0), scene.Handle{Position: start, Size: 0.05})

	var calls int
	var last mgl64.Vec3
	p.SetDragCallback(func(got uint32, pos mgl64.Vec3) {
		assert.Equal(t, id, got)
		calls++
		last = pos
	})

	require.True(t, p.BeginDrag(id, 0))
	p.UpdateDrag(0, 0)
	assert.Equal(t, 1, calls)
	assert.InDelta(t, start[0], last[0], 1e-12)
	assert.InDelta(t, start[1], last[1], 1e-12)

	p.UpdateDrag(80, -60)
	h, _ := store.Handle(id)
	assert.InDelta(t, 0.35, h.Position[0], 1e-12)
	assert.InDelta(t, 0.65, h.Position[1], 1e-12)
	assert.InDelta(t, 0.5, h.Position[2], 1e-12)
}

func TestDragWorldMovesWithCursor(t *testing.T) {
	store, p := setup(t, compositor.Mono)
	id := store.AddHandle(scene.World(), scene.Handle{Size: 0.5})

	require.True(t, p.BeginDrag(id, 0))
	p.UpdateDrag(50, 0)
	h, _ := store.Handle(id)
	assert.Greater(t, h.Position[0], 0.0)
	assert.InDelta(t, 0, h.Position[1], 1e-6)
	assert.InDelta(t, 0, h.Position[2], 1e-6)
}

func TestBeginDragWhileActiveIsNoop(t *testing.T) {
	store, p := setup(t, compositor.Mono)
	a := store.AddHandle(scene.World(), scene.Handle{Size: 0.5})
	b := store.AddHandle(scene.World(), scene.Handle{Position: mgl64.Vec3{1, 0, 0}, Size: 0.5})

	require.True(t, p.BeginDrag(a, 0))
	assert.False(t, p.BeginDrag(b, 0))
	d, ok := p.Dragging()
	require.True(t, ok)
	assert.Equal(t, a, d.Handle)

	p.EndDrag()
	assert.True(t, p.BeginDrag(b, 0))
}

func TestBeginDragMissingHandle(t *testing.T) {
	_, p := setup(t, compositor.Mono)
	assert.False(t, p.BeginDrag(42, 0))
}

func TestDragVanishedHandleIgnored(t *testing.T) {
	store, p := setup(t, compositor.Mono)
	id := store.AddHandle(scene.World(), scene.Handle{Size: 0.5})
	called := false
	p.SetDragCallback(func(uint32, mgl64.Vec3) { called = true })

	require.True(t, p.BeginDrag(id, 0))
	require.True(t, store.RemoveHandle(id))
	assert.NotPanics(t, func() {
		p.UpdateDrag(5, 5)
		p.AdjustDepth(true)
		p.EndDrag()
	})
	assert.False(t, called)
}

func TestAdjustDepthMonotonicAndClamped(t *testing.T) {
	store, p := setup(t, compositor.Mono)
	id := store.AddHandle(scene.World(), scene.Handle{Size: 0.5})
	require.True(t, p.BeginDrag(id, 0))

	d, _ := p.Dragging()
	prev := d.Depth
	for range 2000 {
		p.AdjustDepth(true)
		d, _ = p.Dragging()
		require.LessOrEqual(t, d.Depth, prev)
		require.GreaterOrEqual(t, d.Depth, 0.01)
		prev = d.Depth
	}
	assert.Equal(t, 0.01, prev)

	for range 2000 {
		p.AdjustDepth(false)
		d, _ = p.Dragging()
		require.GreaterOrEqual(t, d.Depth, prev)
		require.LessOrEqual(t, d.Depth, 0.9999)
		prev = d.Depth
	}
	assert.Equal(t, 0.9999, prev)
}

func TestAdjustDepthIgnoresScreenHandles(t *testing.T) {
	store, p := setup(t, compositor.Mono)
	id := store.AddHandle(scene.Screen(0), scene.Handle{Position: mgl64.Vec3{0.5, 0.5, 0.3}, Size: 0.05})
	require.True(t, p.BeginDrag(id, 0))
	p.AdjustDepth(true)
	d, _ := p.Dragging()
	assert.Equal(t, 0.3, d.Depth)
}
