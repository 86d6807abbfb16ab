package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/go-gl/mathgl/mgl64"
)

// Backend is the immediate-mode drawing capability the engine renders through.
//
// All calls happen on the render goroutine, between BeginFrame and EndFrame. Matrices are
// column-major; the view matrix carries the camera transform and batches are given in the
// coordinate frame that view expects.
type Backend interface {
	// Type returns the backend implementation type.
	Type() RendererBackendType

	// BeginFrame clears colour and depth of every back buffer.
	//
	// Parameters:
	//   - clear: the clear colour
	BeginFrame(clear common.Colour)

	// ClearDepth clears the depth buffer only, leaving colour intact.
	ClearDepth()

	// SetDrawBuffer selects the colour buffer subsequent draws land in.
	//
	// Parameters:
	//   - buf: the target buffer
	SetDrawBuffer(buf Buffer)

	// SetViewport sets the window region subsequent draws map onto.
	//
	// Parameters:
	//   - vp: the viewport in window pixels
	SetViewport(vp common.Viewport)

	// SetMatrices loads the projection and view (model) matrices.
	//
	// Parameters:
	//   - projection: the projection matrix
	//   - view: the view matrix
	SetMatrices(projection, view mgl64.Mat4)

	// SetBlend sets the blend function. BlendOpaque disables blending.
	//
	// Parameters:
	//   - mode: the blend mode
	SetBlend(mode common.BlendMode)

	// SetDepthWrite enables or disables depth buffer writes. Depth testing stays enabled.
	//
	// Parameters:
	//   - enabled: whether fragments write depth
	SetDepthWrite(enabled bool)

	// SetColorMask enables or disables writes per colour channel.
	//
	// Parameters:
	//   - r, g, b, a: channel write enables
	SetColorMask(r, g, b, a bool)

	// SetRowMask rebuilds the row-interleave mask for a window of the given size.
	// The mask has no effect until SetRowParity selects a parity other than RowsAll.
	//
	// Parameters:
	//   - width: the window width in pixels
	//   - height: the window height in pixels
	SetRowMask(width, height int)

	// SetRowParity restricts subsequent draws to even or odd rows, or lifts the restriction.
	//
	// Parameters:
	//   - parity: the rows to draw to
	SetRowParity(parity RowParity)

	// DrawBatch draws a batch with the current state.
	//
	// Parameters:
	//   - b: the batch to draw
	DrawBatch(b *Batch)

	// BeginSelect switches to selection mode. Until EndSelect nothing is rasterized; every
	// primitive intersecting the clip volume records a hit for the most recently loaded name.
	//
	// Parameters:
	//   - capacity: the maximum number of hit records kept
	BeginSelect(capacity int)

	// LoadName sets the name recorded by hits of subsequent draws in selection mode.
	//
	// Parameters:
	//   - name: the name to load
	LoadName(name uint32)

	// EndSelect leaves selection mode and returns the hit records.
	//
	// Returns:
	//   - []Hit: one record per name that was hit, in the order the names were first hit
	EndSelect() []Hit

	// DrawOverlay covers the current viewport with a blended colour, used for fades. Callers
	// set a full-window viewport first.
	//
	// Parameters:
	//   - colour: the overlay colour; alpha sets its opacity
	DrawOverlay(colour common.Colour)

	// EndFrame flushes pending commands. Presenting is left to the window.
	EndFrame()
}

// NewBackend creates a backend of the given type.
//
// Parameters:
//   - backendType: the implementation to create
//   - options: functional options to configure the backend
//
// Returns:
//   - Backend: the created backend
//   - error: an error if the backend could not be initialized
func NewBackend(backendType RendererBackendType, options ...BackendBuilderOption) (Backend, error) {
	switch backendType {
	case BackendTypeHeadless:
		return NewHeadlessBackend(options...), nil
	case BackendTypeGL:
		return NewGLBackend(options...)
	default:
		return nil, fmt.Errorf("renderer: unknown backend type %d", backendType)
	}
}
