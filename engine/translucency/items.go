package translucency

import (
	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/renderer"
	"github.com/Carmen-Shannon/oxy-vis/engine/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// Collect gathers the translucent primitives of a snapshot: billboards, handles and polygons
// with a blending mode. Positions are mapped to world space with place. Billboards without a
// blend mode and all handles blend with alpha.
//
// Parameters:
//   - snap: the scene snapshot
//   - sel: which anchors to include
//   - place: maps positions to world space
//   - dst: a slice to append to, reused across frames
//
// Returns:
//   - []Item: the collected items
func Collect(snap scene.Snapshot, sel renderer.Selector, place renderer.Placer, dst []Item) []Item {
	for i, b := range snap.Billboards {
		if !sel(b.Anchor()) {
			continue
		}
		dst = append(dst, Item{
			Kind:     KindBillboard,
			Index:    i,
			Position: place(b.Anchor(), b.Position),
			Radius:   b.Size * max(b.Aspect, 1),
			Blend:    common.Coalesce(b.Blend, common.BlendAlpha),
			Texture:  b.Texture,
		})
	}
	for i, h := range snap.Handles {
		if !sel(h.Anchor()) {
			continue
		}
		dst = append(dst, Item{
			Kind:     KindHandle,
			Index:    i,
			Position: place(h.Anchor(), h.Position),
			Radius:   h.Size,
			Blend:    common.BlendAlpha,
			Texture:  h.Texture,
		})
	}
	for i, p := range snap.Polygons {
		if !sel(p.Anchor()) || !p.Translucent() {
			continue
		}
		var centre mgl64.Vec3
		world := make([]mgl64.Vec3, len(p.Vertices))
		for k, v := range p.Vertices {
			world[k] = place(p.Anchor(), v)
			centre = centre.Add(world[k])
		}
		centre = centre.Mul(1 / float64(len(world)))
		radius := 0.0
		for _, w := range world {
			radius = max(radius, w.Sub(centre).Len())
		}
		dst = append(dst, Item{
			Kind:     KindPolygon,
			Index:    i,
			Position: centre,
			Radius:   radius,
			Blend:    p.Blend,
			Texture:  p.Texture,
		})
	}
	return dst
}

// DrawRun is one blended draw call of the translucent pass.
type DrawRun struct {
	Blend common.BlendMode
	Batch *renderer.Batch
}

// sprite returns the four corners of a camera-facing quad, counter-clockwise from the
// bottom-left, with matching texture coordinates.
func sprite(centre, right, up mgl64.Vec3, halfW, halfH float64, colour common.Colour) []renderer.Vertex {
	r := right.Mul(halfW)
	u := up.Mul(halfH)
	return []renderer.Vertex{
		{Position: centre.Sub(r).Sub(u), Colour: colour, TexCoord: mgl64.Vec2{0, 0}},
		{Position: centre.Add(r).Sub(u), Colour: colour, TexCoord: mgl64.Vec2{1, 0}},
		{Position: centre.Add(r).Add(u), Colour: colour, TexCoord: mgl64.Vec2{1, 1}},
		{Position: centre.Sub(r).Add(u), Colour: colour, TexCoord: mgl64.Vec2{0, 1}},
	}
}

// HandleSprite returns the camera-facing quad a handle is drawn and picked with.
//
// Parameters:
//   - h: the handle
//   - centre: the handle position in world space
//   - right, up: the camera's unit right and up vectors
//
// Returns:
//   - *renderer.Batch: a single-quad batch
func HandleSprite(h scene.Handle, centre, right, up mgl64.Vec3) *renderer.Batch {
	return &renderer.Batch{
		Topology: renderer.TopologyQuads,
		Texture:  h.Texture,
		Vertices: sprite(centre, right, up, h.Size, h.Size, h.DrawColour()),
	}
}

// Batches turns runs into draw calls. Billboards and handles become camera-facing quads built
// from right and up; polygons keep their own vertices. A run is split further only where the
// primitive topology changes, so drawing order is preserved.
//
// Parameters:
//   - runs: the runs in drawing order
//   - snap: the snapshot the items were collected from
//   - place: maps positions to world space
//   - right, up: the camera's unit right and up vectors
//
// Returns:
//   - []DrawRun: the draw calls in order
func Batches(runs []Run, snap scene.Snapshot, place renderer.Placer, right, up mgl64.Vec3) []DrawRun {
	var out []DrawRun
	for _, run := range runs {
		var cur *renderer.Batch
		for _, it := range run.Items {
			var topo renderer.Topology
			var verts []renderer.Vertex
			switch it.Kind {
			case KindBillboard:
				b := snap.Billboards[it.Index]
				topo = renderer.TopologyQuads
				verts = sprite(it.Position, right, up, b.Size, b.Size*b.Aspect, b.Colour)
			case KindHandle:
				h := snap.Handles[it.Index]
				topo = renderer.TopologyQuads
				verts = sprite(it.Position, right, up, h.Size, h.Size, h.DrawColour())
			case KindPolygon:
				p := snap.Polygons[it.Index]
				topo = renderer.TopologyTriangles
				if len(p.Vertices) == 4 {
					topo = renderer.TopologyQuads
				}
				verts = renderer.PolygonVertices(p, place)
			}
			if cur == nil || cur.Topology != topo {
				cur = &renderer.Batch{Topology: topo, Texture: run.Texture}
				out = append(out, DrawRun{Blend: run.Blend, Batch: cur})
			}
			cur.Append(verts...)
		}
	}
	return out
}
