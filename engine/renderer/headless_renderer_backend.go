package renderer

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/go-gl/mathgl/mgl64"
)

// DrawRecord captures one DrawBatch call of the headless backend together with the state it
// was issued under.
type DrawRecord struct {
	Buffer     Buffer
	Viewport   common.Viewport
	Projection mgl64.Mat4
	View       mgl64.Mat4
	Blend      common.BlendMode
	DepthWrite bool
	ColorMask  [4]bool
	RowParity  RowParity
	Batch      Batch
}

// Headless is a Backend that rasterizes nothing. It records every draw and implements the
// selection pass in software by transforming vertices into normalized device coordinates.
type Headless interface {
	Backend

	// Draws returns the draws recorded since the last BeginFrame.
	//
	// Returns:
	//   - []DrawRecord: the recorded draws in call order
	Draws() []DrawRecord

	// Frames returns the number of completed frames.
	//
	// Returns:
	//   - int: the EndFrame count
	Frames() int

	// Overlays returns the overlay colours drawn since the last BeginFrame.
	//
	// Returns:
	//   - []common.Colour: the overlay colours
	Overlays() []common.Colour

	// OverlayViewports returns the viewport each overlay since the last BeginFrame covered.
	//
	// Returns:
	//   - []common.Viewport: one viewport per overlay
	OverlayViewports() []common.Viewport

	// DepthClears returns the number of ClearDepth calls since the last BeginFrame.
	//
	// Returns:
	//   - int: the count
	DepthClears() int

	// RowMaskSize returns the size the row mask was last built for.
	//
	// Returns:
	//   - int: the mask width
	//   - int: the mask height
	RowMaskSize() (int, int)
}

type headlessRendererBackend struct {
	mu *sync.Mutex

	cfg backendConfig

	buffer     Buffer
	viewport   common.Viewport
	projection mgl64.Mat4
	view       mgl64.Mat4
	blend      common.BlendMode
	depthWrite bool
	colorMask  [4]bool
	rowParity  RowParity
	maskW      int
	maskH      int

	draws    []DrawRecord
	overlays []common.Colour
	overlayV []common.Viewport
	frames   int
	clears   int

	selecting bool
	capacity  int
	name      uint32
	hits      []Hit
	hitIdx    map[uint32]int
}

// Ensure headlessRendererBackend implements Headless interface.
var _ Headless = &headlessRendererBackend{}

// NewHeadlessBackend creates a backend that needs no GL context.
//
// Parameters:
//   - options: functional options to configure the backend
//
// Returns:
//   - Headless: the created backend
func NewHeadlessBackend(options ...BackendBuilderOption) Headless {
	return &headlessRendererBackend{
		mu:         &sync.Mutex{},
		cfg:        newBackendConfig(options),
		projection: mgl64.Ident4(),
		view:       mgl64.Ident4(),
		depthWrite: true,
		colorMask:  [4]bool{true, true, true, true},
	}
}

func (b *headlessRendererBackend) Type() RendererBackendType {
	return BackendTypeHeadless
}

func (b *headlessRendererBackend) BeginFrame(common.Colour) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draws = b.draws[:0]
	b.overlays = b.overlays[:0]
	b.overlayV = b.overlayV[:0]
	b.clears = 0
	b.buffer = BufferBack
}

func (b *headlessRendererBackend) ClearDepth() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clears++
}

func (b *headlessRendererBackend) DepthClears() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clears
}

func (b *headlessRendererBackend) SetDrawBuffer(buf Buffer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buffer = buf
}

func (b *headlessRendererBackend) SetViewport(vp common.Viewport) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.viewport = vp
}

func (b *headlessRendererBackend) SetMatrices(projection, view mgl64.Mat4) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.projection = projection
	b.view = view
}

func (b *headlessRendererBackend) SetBlend(mode common.BlendMode) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blend = mode
}

func (b *headlessRendererBackend) SetDepthWrite(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.depthWrite = enabled
}

func (b *headlessRendererBackend) SetColorMask(r, g, bl, a bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.colorMask = [4]bool{r, g, bl, a}
}

func (b *headlessRendererBackend) SetRowMask(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.maskW, b.maskH = width, height
	b.cfg.windowWidth, b.cfg.windowHeight = width, height
}

func (b *headlessRendererBackend) SetRowParity(parity RowParity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rowParity = parity
}

func (b *headlessRendererBackend) DrawBatch(batch *Batch) {
	if batch == nil || len(batch.Vertices) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.selecting {
		b.selectBatch(batch)
		return
	}
	rec := DrawRecord{
		Buffer:     b.buffer,
		Viewport:   b.viewport,
		Projection: b.projection,
		View:       b.view,
		Blend:      b.blend,
		DepthWrite: b.depthWrite,
		ColorMask:  b.colorMask,
		RowParity:  b.rowParity,
		Batch:      *batch,
	}
	rec.Batch.Vertices = append([]Vertex(nil), batch.Vertices...)
	b.draws = append(b.draws, rec)
}

// selectBatch records a hit for the loaded name when any primitive of the batch overlaps the
// clip volume. A primitive overlaps when the NDC bounding box of its vertices intersects
// [-1, 1] on every axis.
func (b *headlessRendererBackend) selectBatch(batch *Batch) {
	mvp := b.projection.Mul4(b.view)
	per := batch.Topology.vertsPerPrimitive()
	for start := 0; start+per <= len(batch.Vertices); start += per {
		lo := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
		hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
		behind := false
		for _, v := range batch.Vertices[start : start+per] {
			clip := mvp.Mul4x1(v.Position.Vec4(1))
			if clip[3] <= 0 {
				behind = true
				break
			}
			ndc := clip.Vec3().Mul(1 / clip[3])
			for k := range 3 {
				lo[k] = math.Min(lo[k], ndc[k])
				hi[k] = math.Max(hi[k], ndc[k])
			}
		}
		if behind {
			continue
		}
		if hi[0] < -1 || lo[0] > 1 || hi[1] < -1 || lo[1] > 1 || hi[2] < -1 || lo[2] > 1 {
			continue
		}
		zmin := (common.Clamp(lo[2], -1, 1) + 1) / 2
		zmax := (common.Clamp(hi[2], -1, 1) + 1) / 2
		b.recordHit(zmin, zmax)
	}
}

func (b *headlessRendererBackend) recordHit(zmin, zmax float64) {
	if i, ok := b.hitIdx[b.name]; ok {
		b.hits[i].ZMin = math.Min(b.hits[i].ZMin, zmin)
		b.hits[i].ZMax = math.Max(b.hits[i].ZMax, zmax)
		return
	}
	if len(b.hits) >= b.capacity {
		return
	}
	b.hitIdx[b.name] = len(b.hits)
	b.hits = append(b.hits, Hit{Name: b.name, ZMin: zmin, ZMax: zmax})
}

func (b *headlessRendererBackend) BeginSelect(capacity int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selecting = true
	b.capacity = capacity
	b.name = 0
	b.hits = nil
	b.hitIdx = make(map[uint32]int)
}

func (b *headlessRendererBackend) LoadName(name uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.name = name
}

func (b *headlessRendererBackend) EndSelect() []Hit {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selecting = false
	hits := b.hits
	b.hits = nil
	return hits
}

func (b *headlessRendererBackend) DrawOverlay(colour common.Colour) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.overlays = append(b.overlays, colour)
	b.overlayV = append(b.overlayV, b.viewport)
}

func (b *headlessRendererBackend) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames++
}

func (b *headlessRendererBackend) Draws() []DrawRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]DrawRecord(nil), b.draws...)
}

func (b *headlessRendererBackend) Frames() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frames
}

func (b *headlessRendererBackend) Overlays() []common.Colour {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]common.Colour(nil), b.overlays...)
}

func (b *headlessRendererBackend) OverlayViewports() []common.Viewport {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]common.Viewport(nil), b.overlayV...)
}

func (b *headlessRendererBackend) RowMaskSize() (int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maskW, b.maskH
}
