// package common contains plain value types and math helpers shared by the engine packages.
// They are not interface-wrapped; every type here is a simple struct or array.
package common

import "fmt"

// Colour is an RGBA colour with components in [0, 1].
type Colour [4]float32

// Opaque returns c with its alpha forced to 1.
func (c Colour) Opaque() Colour {
	c[3] = 1
	return c
}

// Viewport is a pixel rectangle with its origin at the bottom-left of the window.
type Viewport struct {
	X, Y          int
	Width, Height int
}

// Aspect returns Width / Height, or 1 for a degenerate viewport.
func (v Viewport) Aspect() float64 {
	if v.Height <= 0 {
		return 1
	}
	return float64(v.Width) / float64(v.Height)
}

// Contains reports whether the pixel (x, y) lies inside the viewport.
func (v Viewport) Contains(x, y float64) bool {
	return x >= float64(v.X) && x < float64(v.X+v.Width) &&
		y >= float64(v.Y) && y < float64(v.Y+v.Height)
}

func (v Viewport) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", v.Width, v.Height, v.X, v.Y)
}

// Rect is a normalized rectangle within the unit square. (X1, Y1) is the lower-left corner.
type Rect struct {
	X1, Y1, X2, Y2 float64
}

// FullRect covers the whole window.
var FullRect = Rect{0, 0, 1, 1}

// Valid reports whether r is non-empty and inside [0,1]².
func (r Rect) Valid() bool {
	return r.X1 >= 0 && r.Y1 >= 0 && r.X2 <= 1 && r.Y2 <= 1 && r.X1 < r.X2 && r.Y1 < r.Y2
}

// Within maps r into the pixel viewport v.
//
// Parameters:
//   - v: the enclosing viewport
//
// Returns:
//   - Viewport: the sub-viewport covered by r
func (r Rect) Within(v Viewport) Viewport {
	x1 := v.X + int(r.X1*float64(v.Width)+0.5)
	y1 := v.Y + int(r.Y1*float64(v.Height)+0.5)
	x2 := v.X + int(r.X2*float64(v.Width)+0.5)
	y2 := v.Y + int(r.Y2*float64(v.Height)+0.5)
	return Viewport{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// BlendMode selects how a translucent primitive is combined with the frame buffer.
type BlendMode int

const (
	// BlendOpaque disables blending.
	BlendOpaque BlendMode = iota
	// BlendAlpha uses source-alpha / one-minus-source-alpha blending.
	BlendAlpha
	// BlendAdditive adds the source colour scaled by its alpha.
	BlendAdditive
)

func (b BlendMode) String() string {
	switch b {
	case BlendAlpha:
		return "alpha"
	case BlendAdditive:
		return "additive"
	default:
		return "opaque"
	}
}
