package scene

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAnchor(t *testing.T) {
	tests := []struct {
		in      string
		want    Anchor
		wantErr bool
	}{
		{in: "world", want: World()},
		{in: "", want: World()},
		{in: "screen:0", want: Screen(0)},
		{in: "screen:12", want: Screen(12)},
		{in: "screen:", wantErr: true},
		{in: "screen:-1", wantErr: true},
		{in: "screen:x", wantErr: true},
		{in: "panel:1", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAnchor(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAnchor)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Anchor {
	t.Helper()
	a, err := ParseAnchor(s)
	require.NoError(t, err)
	return a
}

func TestAnchorVisibility(t *testing.T) {
	assert.True(t, World().VisibleIn(3))
	assert.Equal(t, -1, World().Panel())
	assert.True(t, Screen(2).VisibleIn(2))
	assert.False(t, Screen(2).VisibleIn(1))
}

func TestAddPolygonValidation(t *testing.T) {
	s := NewStore()
	red := common.Colour{1, 0, 0, 1}
	tri := []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}

	require.NoError(t, s.AddPolygon(World(), Polygon{Vertices: tri, Colours: []common.Colour{red}}))
	assert.ErrorIs(t, s.AddPolygon(World(), Polygon{Vertices: tri[:2], Colours: []common.Colour{red}}), ErrInvalidPolygon)
	assert.ErrorIs(t, s.AddPolygon(World(), Polygon{Vertices: tri, Colours: []common.Colour{red, red}}), ErrInvalidPolygon)
	assert.ErrorIs(t, s.AddPolygon(World(), Polygon{Vertices: tri, Colours: []common.Colour{red}, Texture: 3}), ErrInvalidPolygon)

	s.AddTexturedQuad(Screen(1), [4]mgl64.Vec3{{0, 0, 0.5}, {1, 0, 0.5}, {1, 1, 0.5}, {0, 1, 0.5}}, red, 7, common.BlendAlpha)
	snap := s.Snapshot()
	require.Len(t, snap.Polygons, 2)
	assert.Equal(t, Screen(1), snap.Polygons[1].Anchor())
	assert.True(t, snap.Polygons[1].Translucent())
	assert.False(t, snap.Polygons[0].Translucent())
}

func TestAnchorFixedAtInsertion(t *testing.T) {
	s := NewStore()
	p := Point{Position: mgl64.Vec3{1, 2, 3}}
	s.AddPoint(Screen(4), p)
	assert.Equal(t, World(), p.Anchor())
	assert.Equal(t, Screen(4), s.Snapshot().Points[0].Anchor())
}

func TestHandleLifecycle(t *testing.T) {
	s := NewStore()
	a := s.AddHandle(World(), Handle{Position: mgl64.Vec3{1, 0, 0}})
	b := s.AddHandle(Screen(0), Handle{Position: mgl64.Vec3{0.5, 0.5, 0.5}})
	assert.NotEqual(t, a, b)

	gen := s.Generation()
	assert.True(t, s.MoveHandle(a, mgl64.Vec3{2, 0, 0}))
	assert.Greater(t, s.Generation(), gen)

	h, ok := s.Handle(a)
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{2, 0, 0}, h.Position)

	assert.True(t, s.SetHandleSelected(b, true))
	h, _ = s.Handle(b)
	assert.True(t, h.Selected)

	assert.True(t, s.RemoveHandle(a))
	assert.False(t, s.RemoveHandle(a))
	assert.False(t, s.MoveHandle(a, mgl64.Vec3{}))

	hs := s.Handles()
	require.Len(t, hs, 1)
	assert.Equal(t, b, hs[0].ID)
	h, ok = s.Handle(b)
	require.True(t, ok)
	assert.Equal(t, b, h.ID)
}

func TestExplicitHandleIDReplaces(t *testing.T) {
	s := NewStore()
	s.AddHandle(World(), Handle{ID: 5, Size: 1})
	s.AddHandle(World(), Handle{ID: 5, Size: 2})
	hs := s.Handles()
	require.Len(t, hs, 1)
	assert.Equal(t, 2.0, hs[0].Size)
}

func TestBoundsIgnoreScreenAnchored(t *testing.T) {
	s := NewStore()
	_, _, ok := s.Bounds()
	assert.False(t, ok)
	assert.Equal(t, 1.0, s.Diagonal())

	s.AddPoint(World(), Point{Position: mgl64.Vec3{-1, -2, -2}})
	s.AddLine(World(), Line{Ends: [2]mgl64.Vec3{{1, 0, 0}, {2, 2, 2}}})
	s.AddBillboard(Screen(0), Billboard{Position: mgl64.Vec3{100, 100, 100}})

	lo, hi, ok := s.Bounds()
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{-1, -2, -2}, lo)
	assert.Equal(t, mgl64.Vec3{2, 2, 2}, hi)
	assert.InDelta(t, math.Sqrt(41), s.Diagonal(), 1e-9)
}

func TestBoundsIgnoreHandles(t *testing.T) {
	s := NewStore()
	s.AddPoint(World(), Point{Position: mgl64.Vec3{0, 0, 0}})
	s.AddPoint(World(), Point{Position: mgl64.Vec3{3, 4, 0}})
	id := s.AddHandle(World(), Handle{Position: mgl64.Vec3{50, 50, 50}})

	lo, hi, ok := s.Bounds()
	require.True(t, ok)
	assert.Equal(t, mgl64.Vec3{0, 0, 0}, lo)
	assert.Equal(t, mgl64.Vec3{3, 4, 0}, hi)

	gen := s.Generation()
	require.True(t, s.MoveHandle(id, mgl64.Vec3{-500, 0, 0}))
	assert.Greater(t, s.Generation(), gen)
	assert.InDelta(t, 5.0, s.Diagonal(), 1e-9)

	handlesOnly := NewStore(WithHandles(World(), Handle{Position: mgl64.Vec3{1, 1, 1}}))
	_, _, ok = handlesOnly.Bounds()
	assert.False(t, ok)
	assert.Equal(t, 1.0, handlesOnly.Diagonal())
}

func TestWithBounds(t *testing.T) {
	s := NewStore(WithBounds(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{3, 4, 0}))
	s.AddPoint(World(), Point{Position: mgl64.Vec3{100, 0, 0}})
	assert.InDelta(t, 5.0, s.Diagonal(), 1e-9)
}

func TestClear(t *testing.T) {
	s := NewStore(WithHandles(World(), Handle{}, Handle{}))
	require.Len(t, s.Handles(), 2)
	s.Clear()
	assert.Empty(t, s.Handles())
	assert.Equal(t, uint32(1), s.AddHandle(World(), Handle{}))
}
