package renderer

import (
	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/go-gl/mathgl/mgl64"
)

// RendererBackendType identifies the implementation behind a Backend.
type RendererBackendType int

const (
	// BackendTypeGL selects the OpenGL 2.1 immediate-mode backend. Requires a current GL context.
	BackendTypeGL RendererBackendType = iota

	// BackendTypeHeadless selects the software backend that records calls and hit-tests in NDC.
	BackendTypeHeadless
)

func (t RendererBackendType) String() string {
	if t == BackendTypeHeadless {
		return "headless"
	}
	return "gl"
}

// Buffer selects the colour buffer subsequent draws land in.
type Buffer int

const (
	// BufferBack is the mono back buffer (both eyes of a stereo context).
	BufferBack Buffer = iota
	// BufferBackLeft is the left-eye back buffer of a quad-buffered stereo context.
	BufferBackLeft
	// BufferBackRight is the right-eye back buffer of a quad-buffered stereo context.
	BufferBackRight
)

// RowParity restricts drawing to a subset of window rows once a row mask has been built.
type RowParity int

const (
	// RowsAll draws to every row.
	RowsAll RowParity = iota
	// RowsEven draws to even rows (counted from the bottom of the window).
	RowsEven
	// RowsOdd draws to odd rows.
	RowsOdd
)

// Topology is the primitive assembly of a Batch.
type Topology int

const (
	TopologyPoints Topology = iota
	TopologyLines
	TopologyTriangles
	TopologyQuads
)

// vertsPerPrimitive returns the vertex count of one primitive of the topology.
func (t Topology) vertsPerPrimitive() int {
	switch t {
	case TopologyLines:
		return 2
	case TopologyTriangles:
		return 3
	case TopologyQuads:
		return 4
	default:
		return 1
	}
}

// Vertex is one vertex of a Batch.
type Vertex struct {
	Position mgl64.Vec3
	Colour   common.Colour
	Normal   mgl64.Vec3
	TexCoord mgl64.Vec2
}

// Batch is a run of primitives sharing topology, texture and raster state.
// Vertices are laid out primitive after primitive.
type Batch struct {
	Topology   Topology
	Vertices   []Vertex
	Texture    uint32
	HasNormals bool
	PointSize  float64
	LineWidth  float64
}

// Len returns the number of complete primitives in the batch.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Vertices) / b.Topology.vertsPerPrimitive()
}

// Append adds vertices to the batch.
func (b *Batch) Append(v ...Vertex) {
	b.Vertices = append(b.Vertices, v...)
}

// Hit is one record of a selection pass: the name loaded while the hit primitive was drawn and
// the window-depth range of the hit, in [0, 1].
type Hit struct {
	Name uint32
	ZMin float64
	ZMax float64
}

// Nearest returns the hit with the smallest ZMin.
//
// Parameters:
//   - hits: the hit records of a selection pass
//
// Returns:
//   - Hit: the nearest hit
//   - bool: false if hits is empty
func Nearest(hits []Hit) (Hit, bool) {
	if len(hits) == 0 {
		return Hit{}, false
	}
	best := hits[0]
	for _, h := range hits[1:] {
		if h.ZMin < best.ZMin {
			best = h
		}
	}
	return best, true
}
