package renderer

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/go-gl/gl/v2.1/gl"
	"github.com/go-gl/mathgl/mgl64"
)

// glRendererBackend draws through the OpenGL 2.1 fixed-function pipeline in immediate mode.
// It is confined to the goroutine that owns the GL context, so it carries no lock.
type glRendererBackend struct {
	cfg backendConfig

	selectBuf []uint32
	selecting bool

	rowMaskBuilt bool
}

// Ensure glRendererBackend implements Backend interface.
var _ Backend = &glRendererBackend{}

// NewGLBackend initializes the GL function pointers for the current context and returns a
// backend drawing into it. The caller's goroutine must own the context (runtime.LockOSThread).
//
// Parameters:
//   - options: functional options to configure the backend
//
// Returns:
//   - Backend: the created backend
//   - error: an error if the GL bindings could not be loaded
func NewGLBackend(options ...BackendBuilderOption) (Backend, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("renderer: gl init: %w", err)
	}
	b := &glRendererBackend{cfg: newBackendConfig(options)}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.Disable(gl.CULL_FACE)
	gl.Viewport(0, 0, int32(b.cfg.windowWidth), int32(b.cfg.windowHeight))
	if b.cfg.smoothLines {
		gl.Enable(gl.LINE_SMOOTH)
		gl.Hint(gl.LINE_SMOOTH_HINT, gl.NICEST)
	}
	common.Logger().Info("gl backend ready",
		"version", gl.GoStr(gl.GetString(gl.VERSION)),
		"renderer", gl.GoStr(gl.GetString(gl.RENDERER)))
	return b, nil
}

func (b *glRendererBackend) Type() RendererBackendType {
	return BackendTypeGL
}

func (b *glRendererBackend) BeginFrame(clear common.Colour) {
	gl.DrawBuffer(gl.BACK)
	gl.ColorMask(true, true, true, true)
	gl.DepthMask(true)
	gl.ClearColor(clear[0], clear[1], clear[2], clear[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (b *glRendererBackend) ClearDepth() {
	gl.DepthMask(true)
	gl.Clear(gl.DEPTH_BUFFER_BIT)
}

func (b *glRendererBackend) SetDrawBuffer(buf Buffer) {
	switch buf {
	case BufferBackLeft:
		gl.DrawBuffer(gl.BACK_LEFT)
	case BufferBackRight:
		gl.DrawBuffer(gl.BACK_RIGHT)
	default:
		gl.DrawBuffer(gl.BACK)
	}
}

func (b *glRendererBackend) SetViewport(vp common.Viewport) {
	gl.Viewport(int32(vp.X), int32(vp.Y), int32(vp.Width), int32(vp.Height))
}

func (b *glRendererBackend) SetMatrices(projection, view mgl64.Mat4) {
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadMatrixd(&projection[0])
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadMatrixd(&view[0])
}

func (b *glRendererBackend) SetBlend(mode common.BlendMode) {
	switch mode {
	case common.BlendAlpha:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	case common.BlendAdditive:
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE)
	default:
		gl.Disable(gl.BLEND)
	}
}

func (b *glRendererBackend) SetDepthWrite(enabled bool) {
	gl.DepthMask(enabled)
}

func (b *glRendererBackend) SetColorMask(r, g, bl, a bool) {
	gl.ColorMask(r, g, bl, a)
}

// SetRowMask writes 1 into the stencil buffer on every even window row.
func (b *glRendererBackend) SetRowMask(width, height int) {
	b.cfg.windowWidth, b.cfg.windowHeight = width, height

	gl.PushAttrib(gl.ALL_ATTRIB_BITS)
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.MatrixMode(gl.PROJECTION)
	gl.PushMatrix()
	gl.LoadIdentity()
	gl.Ortho(0, float64(width), 0, float64(height), -1, 1)
	gl.MatrixMode(gl.MODELVIEW)
	gl.PushMatrix()
	gl.LoadIdentity()

	gl.ClearStencil(0)
	gl.Clear(gl.STENCIL_BUFFER_BIT)
	gl.Enable(gl.STENCIL_TEST)
	gl.StencilFunc(gl.ALWAYS, 1, 1)
	gl.StencilOp(gl.REPLACE, gl.REPLACE, gl.REPLACE)
	gl.ColorMask(false, false, false, false)
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.LINE_SMOOTH)
	gl.LineWidth(1)

	gl.Begin(gl.LINES)
	for y := 0; y < height; y += 2 {
		gl.Vertex2d(0, float64(y)+0.5)
		gl.Vertex2d(float64(width), float64(y)+0.5)
	}
	gl.End()

	gl.MatrixMode(gl.MODELVIEW)
	gl.PopMatrix()
	gl.MatrixMode(gl.PROJECTION)
	gl.PopMatrix()
	gl.PopAttrib()
	b.rowMaskBuilt = true
}

func (b *glRendererBackend) SetRowParity(parity RowParity) {
	if parity == RowsAll || !b.rowMaskBuilt {
		gl.Disable(gl.STENCIL_TEST)
		return
	}
	gl.Enable(gl.STENCIL_TEST)
	gl.StencilOp(gl.KEEP, gl.KEEP, gl.KEEP)
	if parity == RowsEven {
		gl.StencilFunc(gl.EQUAL, 1, 1)
	} else {
		gl.StencilFunc(gl.NOTEQUAL, 1, 1)
	}
}

func glTopology(t Topology) uint32 {
	switch t {
	case TopologyLines:
		return gl.LINES
	case TopologyTriangles:
		return gl.TRIANGLES
	case TopologyQuads:
		return gl.QUADS
	default:
		return gl.POINTS
	}
}

func (b *glRendererBackend) DrawBatch(batch *Batch) {
	if batch == nil || len(batch.Vertices) == 0 {
		return
	}
	if batch.Texture != 0 {
		gl.Enable(gl.TEXTURE_2D)
		gl.BindTexture(gl.TEXTURE_2D, batch.Texture)
	} else {
		gl.Disable(gl.TEXTURE_2D)
	}
	if batch.HasNormals {
		gl.Enable(gl.LIGHTING)
		gl.Enable(gl.COLOR_MATERIAL)
	} else {
		gl.Disable(gl.LIGHTING)
	}
	if batch.PointSize > 0 {
		gl.PointSize(float32(batch.PointSize))
	}
	if batch.LineWidth > 0 {
		gl.LineWidth(float32(batch.LineWidth))
	}

	gl.Begin(glTopology(batch.Topology))
	for _, v := range batch.Vertices {
		gl.Color4f(v.Colour[0], v.Colour[1], v.Colour[2], v.Colour[3])
		if batch.HasNormals {
			gl.Normal3d(v.Normal[0], v.Normal[1], v.Normal[2])
		}
		if batch.Texture != 0 {
			gl.TexCoord2d(v.TexCoord[0], v.TexCoord[1])
		}
		gl.Vertex3d(v.Position[0], v.Position[1], v.Position[2])
	}
	gl.End()
}

func (b *glRendererBackend) BeginSelect(capacity int) {
	// each record holds the name count, zmin, zmax and one name
	size := max(capacity, 1) * 4
	if cap(b.selectBuf) < size {
		b.selectBuf = make([]uint32, size)
	}
	b.selectBuf = b.selectBuf[:size]
	gl.SelectBuffer(int32(size), &b.selectBuf[0])
	gl.RenderMode(gl.SELECT)
	gl.InitNames()
	gl.PushName(0)
	b.selecting = true
}

func (b *glRendererBackend) LoadName(name uint32) {
	gl.LoadName(name)
}

func (b *glRendererBackend) EndSelect() []Hit {
	if !b.selecting {
		return nil
	}
	b.selecting = false
	n := gl.RenderMode(gl.RENDER)
	if n < 0 {
		common.Logger().Warn("selection buffer overflow")
		n = int32(len(b.selectBuf) / 4)
	}

	hits := make([]Hit, 0, n)
	for i, off := int32(0), 0; i < n && off+3 <= len(b.selectBuf); i++ {
		count := int(b.selectBuf[off])
		zmin := float64(b.selectBuf[off+1]) / math.MaxUint32
		zmax := float64(b.selectBuf[off+2]) / math.MaxUint32
		if count > 0 && off+3+count <= len(b.selectBuf) {
			hits = append(hits, Hit{Name: b.selectBuf[off+3+count-1], ZMin: zmin, ZMax: zmax})
		}
		off += 3 + count
	}
	return hits
}

func (b *glRendererBackend) DrawOverlay(colour common.Colour) {
	gl.PushAttrib(gl.ALL_ATTRIB_BITS)
	gl.DrawBuffer(gl.BACK)
	gl.MatrixMode(gl.PROJECTION)
	gl.LoadIdentity()
	gl.MatrixMode(gl.MODELVIEW)
	gl.LoadIdentity()
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.TEXTURE_2D)
	gl.Disable(gl.LIGHTING)
	gl.Disable(gl.STENCIL_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.Color4f(colour[0], colour[1], colour[2], colour[3])
	gl.Begin(gl.QUADS)
	gl.Vertex2d(-1, -1)
	gl.Vertex2d(1, -1)
	gl.Vertex2d(1, 1)
	gl.Vertex2d(-1, 1)
	gl.End()
	gl.PopAttrib()
}

func (b *glRendererBackend) EndFrame() {
	gl.Flush()
	if code := gl.GetError(); code == gl.OUT_OF_MEMORY {
		panic("renderer: GL out of memory")
	} else if code != gl.NO_ERROR {
		common.Logger().Warn("gl error", "code", code)
	}
}
