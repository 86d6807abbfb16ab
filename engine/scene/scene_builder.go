package scene

import "github.com/go-gl/mathgl/mgl64"

// StoreBuilderOption is a functional option for configuring a Store.
// Use the With* functions to create options.
type StoreBuilderOption func(s *store)

// WithBounds fixes the scene bounds instead of deriving them from the stored geometry.
// Navigation distances and clip planes are scaled from these bounds.
//
// Parameters:
//   - lo: the minimum corner
//   - hi: the maximum corner
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithBounds(lo, hi mgl64.Vec3) StoreBuilderOption {
	return func(s *store) {
		s.fixedBounds = true
		s.boundsMin = lo
		s.boundsMax = hi
	}
}

// WithCapacity pre-allocates room for n primitives of each kind.
//
// Parameters:
//   - n: the expected primitive count per collection
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithCapacity(n int) StoreBuilderOption {
	return func(s *store) {
		if n < 0 {
			return
		}
		s.points = make([]Point, 0, n)
		s.lines = make([]Line, 0, n)
		s.polygons = make([]Polygon, 0, n)
		s.billboards = make([]Billboard, 0, n)
		s.handles = make([]Handle, 0, n)
	}
}

// WithHandles adds initial handles, all with the same anchor.
//
// Parameters:
//   - anchor: the anchor given to every handle
//   - handles: the handles to add
//
// Returns:
//   - StoreBuilderOption: option function to apply
func WithHandles(anchor Anchor, handles ...Handle) StoreBuilderOption {
	return func(s *store) {
		for _, h := range handles {
			s.AddHandle(anchor, h)
		}
	}
}
