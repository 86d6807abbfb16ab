package device

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/engine/camera"
	"github.com/Carmen-Shannon/oxy-vis/engine/compositor"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record is one DrawScene call with the backend state it ran under.
type record struct {
	view   compositor.View
	parity renderer.RowParity
	mask   [4]bool
}

// frame composes panel 0 in a mode and returns a frame whose DrawScene issues one draw on
// the headless backend so its state is captured.
func frame(t *testing.T, mode compositor.StereoMode, b renderer.Headless, calls *[]compositor.View) Frame {
	t.Helper()
	comp := compositor.NewCompositor(compositor.WithStereoMode(mode))
	views := comp.Compose(0, camera.NewCamera(), 800, 600)
	require.NotEmpty(t, views)
	return Frame{
		Backend: b,
		Views:   views,
		Width:   800,
		Height:  600,
		DrawScene: func(v compositor.View) {
			*calls = append(*calls, v)
			b.SetViewport(v.Viewport)
			b.SetMatrices(v.Projection, v.View)
			b.DrawBatch(&renderer.Batch{Topology: renderer.TopologyPoints, Vertices: []renderer.Vertex{{}}})
		},
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"anaglyph", "interleaved", "warped", "fisheye"} {
		d, err := Lookup(name)
		require.NoError(t, err, name)
		assert.NotNil(t, d)
	}
	_, err := Lookup("hologram")
	assert.ErrorIs(t, err, ErrUnknownDevice)

	Register("custom", func() Driver { return &warped{} })
	assert.Contains(t, Names(), "custom")
}

func TestDelegatedModesResolve(t *testing.T) {
	for _, m := range []compositor.StereoMode{
		compositor.AnaglyphStereo, compositor.InterleavedStereo, compositor.WarpedDualStereo, compositor.Fisheye,
	} {
		_, err := Lookup(m.Driver())
		assert.NoError(t, err, m.String())
	}
}

func TestAnaglyphMasksAndClearsDepth(t *testing.T) {
	b := renderer.NewHeadlessBackend()
	var calls []compositor.View
	d, err := Lookup("anaglyph")
	require.NoError(t, err)
	require.NoError(t, d.Prepare(Options{}))

	b.BeginFrame([4]float32{})
	d.Draw(frame(t, compositor.AnaglyphStereo, b, &calls))

	draws := b.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, [4]bool{true, false, false, true}, draws[0].ColorMask)
	assert.Equal(t, [4]bool{false, true, true, true}, draws[1].ColorMask)
	assert.Equal(t, 1, b.DepthClears())
	assert.Equal(t, compositor.EyeLeft, calls[0].Eye)
	assert.Equal(t, compositor.EyeRight, calls[1].Eye)
}

func TestAnaglyphUnknownGlasses(t *testing.T) {
	d := &anaglyph{}
	assert.Error(t, d.Prepare(Options{Params: map[string]string{"glasses": "blue-yellow"}}))
	assert.NoError(t, d.Prepare(Options{Params: map[string]string{"glasses": "green-magenta"}}))
}

func TestInterleavedRowParityAndSwap(t *testing.T) {
	b := renderer.NewHeadlessBackend()
	var calls []compositor.View
	d := &interleaved{}
	require.NoError(t, d.Prepare(Options{Width: 640, Height: 480}))

	b.BeginFrame([4]float32{})
	d.Draw(frame(t, compositor.InterleavedStereo, b, &calls))
	draws := b.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, renderer.RowsEven, draws[0].RowParity)
	assert.Equal(t, renderer.RowsOdd, draws[1].RowParity)
	w, h := b.RowMaskSize()
	assert.Equal(t, []int{800, 600}, []int{w, h})

	assert.False(t, d.Key('x'))
	assert.True(t, d.Key('i'))
	b.BeginFrame([4]float32{})
	d.Draw(frame(t, compositor.InterleavedStereo, b, &calls))
	draws = b.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, renderer.RowsOdd, draws[0].RowParity)
	assert.Equal(t, renderer.RowsEven, draws[1].RowParity)

	d.Resize(1024, 768)
	b.SetRowMask(1, 1)
	d.Draw(frame(t, compositor.InterleavedStereo, b, &calls))
	w, h = b.RowMaskSize()
	assert.Equal(t, []int{800, 600}, []int{w, h})
}

func TestWarpedKeystoneMirrored(t *testing.T) {
	b := renderer.NewHeadlessBackend()
	var calls []compositor.View
	d := &warped{}
	require.NoError(t, d.Prepare(Options{Params: map[string]string{"keystone": "0.2"}}))

	f := frame(t, compositor.WarpedDualStereo, b, &calls)
	d.Draw(f)
	require.Len(t, calls, 2)
	for i, v := range calls {
		want := Keystone(0.2)
		if v.Eye == compositor.EyeRight {
			want = Keystone(-0.2)
		}
		assert.True(t, want.Mul4(f.Views[i].Projection).ApproxEqual(v.Projection), "view %d", i)
	}
	assert.NotEqual(t, calls[0].Viewport, calls[1].Viewport)
}

func TestKeystoneZeroIsIdentity(t *testing.T) {
	assert.Equal(t, mgl64.Ident4(), Keystone(0))
}

func TestFisheyeFaces(t *testing.T) {
	b := renderer.NewHeadlessBackend()
	var calls []compositor.View
	d := &fisheye{}
	require.NoError(t, d.Prepare(Options{}))
	f := frame(t, compositor.Fisheye, b, &calls)
	require.Len(t, f.Views, 1)

	d.Draw(f)
	require.Len(t, calls, 5)

	front := calls[FaceFront]
	assert.Equal(t, f.Views[0].Pose.VD, front.Pose.VD)
	assert.Equal(t, 90.0, front.Pose.Aperture)
	// 600 / 3 = 200 px cells, centred horizontally in 800
	assert.Equal(t, 200, front.Viewport.Width)
	assert.Equal(t, 300, front.Viewport.X)
	assert.Equal(t, 200, front.Viewport.Y)
	assert.Equal(t, 100, calls[FaceLeft].Viewport.X)
	assert.Equal(t, 400, calls[FaceUp].Viewport.Y)

	for _, v := range calls {
		assert.InDelta(t, 0, v.Pose.VD.Dot(v.Pose.VU), 1e-12)
	}
	assert.InDelta(t, -1, calls[FaceLeft].Pose.VD.Dot(calls[FaceRight].Pose.VD), 1e-12)
	assert.InDelta(t, -1, calls[FaceUp].Pose.VD.Dot(calls[FaceDown].Pose.VD), 1e-12)
}

func TestOptionsFloat(t *testing.T) {
	o := Options{Params: map[string]string{"a": "1.5", "b": "x"}}
	assert.Equal(t, 1.5, o.Float("a", 0))
	assert.Equal(t, 2.0, o.Float("b", 2))
	assert.Equal(t, 3.0, o.Float("c", 3))
}
