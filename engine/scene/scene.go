package scene

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/go-gl/mathgl/mgl64"
)

// Store holds the typed, growable primitive collections drawn each frame. Every primitive
// carries an Anchor fixed at insertion. Every mutation advances the store generation, which
// retained render caches compare against to decide when to rebuild.
// Thread-safe for concurrent access.
type Store interface {
	// AddPoint appends a point.
	//
	// Parameters:
	//   - anchor: the point's anchor
	//   - p: the point
	AddPoint(anchor Anchor, p Point)

	// AddLine appends a line segment.
	//
	// Parameters:
	//   - anchor: the line's anchor
	//   - l: the line
	AddLine(anchor Anchor, l Line)

	// AddPolygon appends a triangle or quad after validating its vertex and attribute counts.
	//
	// Parameters:
	//   - anchor: the polygon's anchor
	//   - p: the polygon
	//
	// Returns:
	//   - error: ErrInvalidPolygon if the polygon is malformed
	AddPolygon(anchor Anchor, p Polygon) error

	// AddTexturedQuad appends a textured quad with a single colour. The corners are given
	// counter-clockwise starting at texture coordinate (0, 0).
	//
	// Parameters:
	//   - anchor: the quad's anchor
	//   - corners: the four corners
	//   - colour: the modulating colour
	//   - texture: the texture id (non-zero)
	//   - blend: the blend mode
	AddTexturedQuad(anchor Anchor, corners [4]mgl64.Vec3, colour common.Colour, texture uint32, blend common.BlendMode)

	// AddBillboard appends a camera-facing sprite.
	//
	// Parameters:
	//   - anchor: the billboard's anchor
	//   - b: the billboard
	AddBillboard(anchor Anchor, b Billboard)

	// AddHandle appends an interactive handle. A zero ID is replaced by the next free ID.
	// Adding a handle with an ID already present replaces that handle.
	//
	// Parameters:
	//   - anchor: the handle's anchor
	//   - h: the handle
	//
	// Returns:
	//   - uint32: the handle's ID
	AddHandle(anchor Anchor, h Handle) uint32

	// Handle looks up a handle by ID.
	//
	// Parameters:
	//   - id: the handle ID
	//
	// Returns:
	//   - Handle: a copy of the handle
	//   - bool: false if no handle has that ID
	Handle(id uint32) (Handle, bool)

	// MoveHandle sets the position of a handle, in its anchor's coordinate frame.
	//
	// Parameters:
	//   - id: the handle ID
	//   - pos: the new position
	//
	// Returns:
	//   - bool: false if no handle has that ID
	MoveHandle(id uint32, pos mgl64.Vec3) bool

	// SetHandleSelected marks a handle as selected (being dragged) or not.
	//
	// Parameters:
	//   - id: the handle ID
	//   - selected: the selection state
	//
	// Returns:
	//   - bool: false if no handle has that ID
	SetHandleSelected(id uint32, selected bool) bool

	// RemoveHandle deletes a handle.
	//
	// Parameters:
	//   - id: the handle ID
	//
	// Returns:
	//   - bool: false if no handle had that ID
	RemoveHandle(id uint32) bool

	// Handles returns a copy of all handles in insertion order.
	//
	// Returns:
	//   - []Handle: the handles
	Handles() []Handle

	// Snapshot returns a copy of every collection, taken under a single read lock.
	//
	// Returns:
	//   - Snapshot: the copied collections and the generation they were taken at
	Snapshot() Snapshot

	// Clear removes every primitive.
	Clear()

	// Generation returns a counter advanced by every mutation.
	//
	// Returns:
	//   - uint64: the current generation
	Generation() uint64

	// Bounds returns the axis-aligned bounds of all world-anchored geometry, or the fixed
	// bounds configured with WithBounds. Handles never contribute.
	//
	// Returns:
	//   - mgl64.Vec3: the minimum corner
	//   - mgl64.Vec3: the maximum corner
	//   - bool: false if the store holds no world-anchored geometry and no fixed bounds
	Bounds() (mgl64.Vec3, mgl64.Vec3, bool)

	// Diagonal returns the length of the bounds diagonal, or 1 for an empty store.
	//
	// Returns:
	//   - float64: the scene diagonal
	Diagonal() float64
}

// Snapshot is a point-in-time copy of a Store's collections.
type Snapshot struct {
	Generation uint64
	Points     []Point
	Lines      []Line
	Polygons   []Polygon
	Billboards []Billboard
	Handles    []Handle
}

type store struct {
	mu *sync.RWMutex

	points     []Point
	lines      []Line
	polygons   []Polygon
	billboards []Billboard
	handles    []Handle
	handleIdx  map[uint32]int
	nextID     uint32

	fixedBounds bool
	boundsMin   mgl64.Vec3
	boundsMax   mgl64.Vec3

	generation atomic.Uint64
}

// Ensure store implements Store interface.
var _ Store = &store{}

// NewStore creates an empty primitive store.
//
// Parameters:
//   - options: functional options to configure the store
//
// Returns:
//   - Store: the new store
func NewStore(options ...StoreBuilderOption) Store {
	s := &store{
		mu:        &sync.RWMutex{},
		handleIdx: make(map[uint32]int),
		nextID:    1,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *store) bump() {
	s.generation.Add(1)
}

func (s *store) AddPoint(anchor Anchor, p Point) {
	p.anchor = anchor
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append(s.points, p)
	s.bump()
}

func (s *store) AddLine(anchor Anchor, l Line) {
	l.anchor = anchor
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, l)
	s.bump()
}

func (s *store) AddPolygon(anchor Anchor, p Polygon) error {
	if err := p.validate(); err != nil {
		return err
	}
	p.anchor = anchor
	p.Vertices = append([]mgl64.Vec3(nil), p.Vertices...)
	p.Colours = append([]common.Colour(nil), p.Colours...)
	p.Normals = append([]mgl64.Vec3(nil), p.Normals...)
	p.TexCoords = append([]mgl64.Vec2(nil), p.TexCoords...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.polygons = append(s.polygons, p)
	s.bump()
	return nil
}

func (s *store) AddTexturedQuad(anchor Anchor, corners [4]mgl64.Vec3, colour common.Colour, texture uint32, blend common.BlendMode) {
	// a four-corner polygon with one colour and matching texture coordinates always validates
	_ = s.AddPolygon(anchor, Polygon{
		Vertices:  corners[:],
		Colours:   []common.Colour{colour},
		Texture:   texture,
		TexCoords: []mgl64.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Blend:     blend,
	})
}

func (s *store) AddBillboard(anchor Anchor, b Billboard) {
	b.anchor = anchor
	if b.Aspect == 0 {
		b.Aspect = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.billboards = append(s.billboards, b)
	s.bump()
}

func (s *store) AddHandle(anchor Anchor, h Handle) uint32 {
	h.anchor = anchor
	s.mu.Lock()
	defer s.mu.Unlock()

	if h.ID == 0 {
		for {
			if _, taken := s.handleIdx[s.nextID]; !taken {
				break
			}
			s.nextID++
		}
		h.ID = s.nextID
		s.nextID++
	}
	if i, ok := s.handleIdx[h.ID]; ok {
		s.handles[i] = h
	} else {
		s.handleIdx[h.ID] = len(s.handles)
		s.handles = append(s.handles, h)
	}
	s.bump()
	return h.ID
}

func (s *store) Handle(id uint32) (Handle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.handleIdx[id]
	if !ok {
		return Handle{}, false
	}
	return s.handles[i], true
}

func (s *store) MoveHandle(id uint32, pos mgl64.Vec3) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.handleIdx[id]
	if !ok {
		return false
	}
	s.handles[i].Position = pos
	s.bump()
	return true
}

func (s *store) SetHandleSelected(id uint32, selected bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.handleIdx[id]
	if !ok {
		return false
	}
	if s.handles[i].Selected != selected {
		s.handles[i].Selected = selected
		s.bump()
	}
	return true
}

func (s *store) RemoveHandle(id uint32) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.handleIdx[id]
	if !ok {
		return false
	}
	s.handles = append(s.handles[:i], s.handles[i+1:]...)
	delete(s.handleIdx, id)
	for j := i; j < len(s.handles); j++ {
		s.handleIdx[s.handles[j].ID] = j
	}
	s.bump()
	return true
}

func (s *store) Handles() []Handle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Handle(nil), s.handles...)
}

func (s *store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Generation: s.generation.Load(),
		Points:     append([]Point(nil), s.points...),
		Lines:      append([]Line(nil), s.lines...),
		Polygons:   append([]Polygon(nil), s.polygons...),
		Billboards: append([]Billboard(nil), s.billboards...),
		Handles:    append([]Handle(nil), s.handles...),
	}
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = nil
	s.lines = nil
	s.polygons = nil
	s.billboards = nil
	s.handles = nil
	s.handleIdx = make(map[uint32]int)
	s.nextID = 1
	s.bump()
}

func (s *store) Generation() uint64 {
	return s.generation.Load()
}

func (s *store) Bounds() (mgl64.Vec3, mgl64.Vec3, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fixedBounds {
		return s.boundsMin, s.boundsMax, true
	}

	inf := math.Inf(1)
	lo := mgl64.Vec3{inf, inf, inf}
	hi := mgl64.Vec3{-inf, -inf, -inf}
	found := false
	grow := func(a Anchor, v mgl64.Vec3) {
		if a.IsScreen() {
			return
		}
		found = true
		for k := range 3 {
			lo[k] = math.Min(lo[k], v[k])
			hi[k] = math.Max(hi[k], v[k])
		}
	}
	for _, p := range s.points {
		grow(p.anchor, p.Position)
	}
	for _, l := range s.lines {
		grow(l.anchor, l.Ends[0])
		grow(l.anchor, l.Ends[1])
	}
	for _, p := range s.polygons {
		for _, v := range p.Vertices {
			grow(p.anchor, v)
		}
	}
	for _, b := range s.billboards {
		grow(b.anchor, b.Position)
	}
	if !found {
		return mgl64.Vec3{}, mgl64.Vec3{}, false
	}
	return lo, hi, true
}

func (s *store) Diagonal() float64 {
	lo, hi, ok := s.Bounds()
	if !ok {
		return 1
	}
	d := hi.Sub(lo).Len()
	if d == 0 {
		return 1
	}
	return d
}
