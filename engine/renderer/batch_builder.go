package renderer

import (
	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/Carmen-Shannon/oxy-vis/engine/scene"
	"github.com/go-gl/mathgl/mgl64"
)

// Placer maps a primitive position in its anchor's frame to world space. World-anchored
// positions are returned unchanged.
type Placer func(a scene.Anchor, p mgl64.Vec3) mgl64.Vec3

// IdentityPlacer leaves every position unchanged.
func IdentityPlacer(_ scene.Anchor, p mgl64.Vec3) mgl64.Vec3 { return p }

// Selector reports whether a primitive with the given anchor belongs in the batches being built.
type Selector func(a scene.Anchor) bool

// WorldOnly selects world-anchored primitives.
func WorldOnly(a scene.Anchor) bool { return !a.IsScreen() }

// ScreenOf returns a Selector for the primitives pinned to one panel.
func ScreenOf(panel int) Selector {
	return func(a scene.Anchor) bool { return a.IsScreen() && a.Panel() == panel }
}

type batchKey struct {
	topology   Topology
	texture    uint32
	hasNormals bool
	size       float64
}

// BuildOpaque groups the opaque points, lines and polygons of a snapshot into batches, one per
// distinct (topology, texture, lighting, size). Translucent polygons are skipped; they go
// through depth sorting instead.
//
// Parameters:
//   - snap: the scene snapshot
//   - sel: which anchors to include
//   - place: maps positions to world space
//
// Returns:
//   - []*Batch: the batches in first-seen order
func BuildOpaque(snap scene.Snapshot, sel Selector, place Placer) []*Batch {
	var order []batchKey
	groups := make(map[batchKey]*Batch)
	get := func(k batchKey) *Batch {
		b, ok := groups[k]
		if !ok {
			b = &Batch{Topology: k.topology, Texture: k.texture, HasNormals: k.hasNormals}
			switch k.topology {
			case TopologyPoints:
				b.PointSize = k.size
			case TopologyLines:
				b.LineWidth = k.size
			}
			groups[k] = b
			order = append(order, k)
		}
		return b
	}

	for _, p := range snap.Points {
		if !sel(p.Anchor()) {
			continue
		}
		get(batchKey{topology: TopologyPoints, size: common.Coalesce(p.Size, 1)}).Append(Vertex{
			Position: place(p.Anchor(), p.Position),
			Colour:   p.Colour,
		})
	}
	for _, l := range snap.Lines {
		if !sel(l.Anchor()) {
			continue
		}
		b := get(batchKey{topology: TopologyLines, size: common.Coalesce(l.Width, 1)})
		for i := range 2 {
			b.Append(Vertex{Position: place(l.Anchor(), l.Ends[i]), Colour: l.Colours[i]})
		}
	}
	for _, p := range snap.Polygons {
		if !sel(p.Anchor()) || p.Translucent() {
			continue
		}
		topo := TopologyTriangles
		if len(p.Vertices) == 4 {
			topo = TopologyQuads
		}
		get(batchKey{topology: topo, texture: p.Texture, hasNormals: len(p.Normals) > 0}).Append(PolygonVertices(p, place)...)
	}

	out := make([]*Batch, 0, len(order))
	for _, k := range order {
		out = append(out, groups[k])
	}
	return out
}

// PolygonVertices expands a polygon's per-polygon or per-vertex attributes into vertices.
//
// Parameters:
//   - p: the polygon
//   - place: maps positions to world space
//
// Returns:
//   - []Vertex: one vertex per polygon corner
func PolygonVertices(p scene.Polygon, place Placer) []Vertex {
	out := make([]Vertex, len(p.Vertices))
	for i, v := range p.Vertices {
		out[i] = Vertex{Position: place(p.Anchor(), v), Colour: pick(p.Colours, i)}
		if len(p.Normals) > 0 {
			out[i].Normal = pick(p.Normals, i)
		}
		if p.Texture != 0 {
			out[i].TexCoord = p.TexCoords[i]
		}
	}
	return out
}

// pick returns s[i], or s[0] when s holds a single shared value.
func pick[T any](s []T, i int) T {
	if len(s) == 1 {
		return s[0]
	}
	return s[i]
}
