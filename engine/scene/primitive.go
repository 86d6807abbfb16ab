package scene

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidAnchor is returned by ParseAnchor for a malformed anchor tag.
var ErrInvalidAnchor = errors.New("scene: invalid anchor tag")

// Anchor classifies a primitive as drawn in world space ("world") or pinned to a display
// panel ("screen:<panel-id>"). Screen-anchored coordinates are normalized panel coordinates:
// x and y in [0, 1] from the panel's lower-left corner, z a normalized depth in (0, 1).
// An anchor is a value; primitives receive theirs when added to a Store and never change it.
type Anchor struct {
	screen bool
	panel  int
}

// World is the anchor of ordinary 3D primitives transformed by the camera.
func World() Anchor { return Anchor{} }

// Screen returns the anchor pinning a primitive to the given panel.
func Screen(panel int) Anchor { return Anchor{screen: true, panel: panel} }

// IsScreen reports whether the anchor pins to a panel.
func (a Anchor) IsScreen() bool { return a.screen }

// Panel returns the panel id of a screen anchor, or -1 for world anchors.
func (a Anchor) Panel() int {
	if !a.screen {
		return -1
	}
	return a.panel
}

// VisibleIn reports whether a primitive with this anchor is drawn in the given panel.
func (a Anchor) VisibleIn(panel int) bool {
	return !a.screen || a.panel == panel
}

func (a Anchor) String() string {
	if !a.screen {
		return "world"
	}
	return "screen:" + strconv.Itoa(a.panel)
}

// ParseAnchor parses "world" or "screen:<panel-id>".
//
// Parameters:
//   - s: the anchor tag
//
// Returns:
//   - Anchor: the parsed anchor
//   - error: ErrInvalidAnchor if the tag is malformed
func ParseAnchor(s string) (Anchor, error) {
	if s == "world" || s == "" {
		return World(), nil
	}
	rest, ok := strings.CutPrefix(s, "screen:")
	if !ok {
		return Anchor{}, fmt.Errorf("%w: %q", ErrInvalidAnchor, s)
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id < 0 {
		return Anchor{}, fmt.Errorf("%w: %q", ErrInvalidAnchor, s)
	}
	return Screen(id), nil
}

// Point is a single dot of the given pixel size.
type Point struct {
	Position mgl64.Vec3
	Colour   common.Colour
	Size     float64

	anchor Anchor
}

// Anchor returns the point's anchor.
func (p Point) Anchor() Anchor { return p.anchor }

// Line is a segment with a colour per end.
type Line struct {
	Ends    [2]mgl64.Vec3
	Colours [2]common.Colour
	Width   float64

	anchor Anchor
}

// Anchor returns the line's anchor.
func (l Line) Anchor() Anchor { return l.anchor }

// Polygon is a triangle or quad. Colours holds one colour or one per vertex; Normals holds
// none, one, or one per vertex. A non-zero Texture selects a textured polygon, in which case
// TexCoords must hold one coordinate per vertex.
type Polygon struct {
	Vertices  []mgl64.Vec3
	Colours   []common.Colour
	Normals   []mgl64.Vec3
	Texture   uint32
	TexCoords []mgl64.Vec2
	Blend     common.BlendMode

	anchor Anchor
}

// Anchor returns the polygon's anchor.
func (p Polygon) Anchor() Anchor { return p.anchor }

// Translucent reports whether the polygon must be depth sorted.
func (p Polygon) Translucent() bool { return p.Blend != common.BlendOpaque }

// ErrInvalidPolygon is returned when a polygon does not have 3 or 4 vertices, or its
// per-vertex attribute counts do not match.
var ErrInvalidPolygon = errors.New("scene: invalid polygon")

func (p Polygon) validate() error {
	n := len(p.Vertices)
	if n != 3 && n != 4 {
		return fmt.Errorf("%w: %d vertices", ErrInvalidPolygon, n)
	}
	if c := len(p.Colours); c != 1 && c != n {
		return fmt.Errorf("%w: %d colours for %d vertices", ErrInvalidPolygon, c, n)
	}
	if k := len(p.Normals); k != 0 && k != 1 && k != n {
		return fmt.Errorf("%w: %d normals for %d vertices", ErrInvalidPolygon, k, n)
	}
	if p.Texture != 0 && len(p.TexCoords) != n {
		return fmt.Errorf("%w: %d texture coordinates for %d vertices", ErrInvalidPolygon, len(p.TexCoords), n)
	}
	return nil
}

// Billboard is a camera-facing textured sprite. Size is the half-width in world units;
// Aspect scales the half-height (height = Size * Aspect).
type Billboard struct {
	Position mgl64.Vec3
	Size     float64
	Aspect   float64
	Colour   common.Colour
	Texture  uint32
	Blend    common.BlendMode

	anchor Anchor
}

// Anchor returns the billboard's anchor.
func (b Billboard) Anchor() Anchor { return b.anchor }

// Handle is an interactive, pickable marker drawn as a camera-facing sprite.
// Selected is set while the handle is being dragged.
type Handle struct {
	ID             uint32
	Position       mgl64.Vec3
	Size           float64
	Colour         common.Colour
	SelectedColour common.Colour
	Texture        uint32
	Selected       bool

	anchor Anchor
}

// Anchor returns the handle's anchor.
func (h Handle) Anchor() Anchor { return h.anchor }

// DrawColour returns the colour the handle is drawn with in its current state.
func (h Handle) DrawColour() common.Colour {
	if h.Selected {
		return h.SelectedColour
	}
	return h.Colour
}
