package translucency

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-vis/common"
	"github.com/go-gl/mathgl/mgl64"
)

// Kind is the primitive collection an Item refers to.
type Kind int

const (
	KindBillboard Kind = iota
	KindHandle
	KindPolygon
)

// Item is one translucent primitive to be depth sorted. Index refers into the collection of
// Kind the item was collected from; Dist is filled by Distances.
type Item struct {
	Kind     Kind
	Index    int
	Position mgl64.Vec3
	Radius   float64
	Blend    common.BlendMode
	Texture  uint32
	Dist     float64
}

// Run is a maximal sequence of consecutive items, in drawing order, sharing a blend mode and
// texture.
type Run struct {
	Blend   common.BlendMode
	Texture uint32
	Items   []Item
}

// Sorter orders translucent items back to front. Distance computation and sorting fan out
// across a persistent worker pool for large inputs.
type Sorter interface {
	// Distances fills the squared distance from eye of every item.
	//
	// Parameters:
	//   - items: the items, updated in place
	//   - eye: the camera position
	Distances(items []Item, eye mgl64.Vec3)

	// Sort orders items ascending by Dist. Items with equal Dist keep their relative order.
	//
	// Parameters:
	//   - items: the items, sorted in place
	Sort(items []Item)

	// Order drops items outside the frustum (when one is given), computes distances from eye
	// and sorts ascending.
	//
	// Parameters:
	//   - items: the items; the slice is reused for the result
	//   - eye: the camera position
	//   - frustum: the view frustum, or nil to keep every item
	//
	// Returns:
	//   - []Item: the kept items in ascending distance
	Order(items []Item, eye mgl64.Vec3, frustum *common.Frustum) []Item

	// Close stops the worker pool.
	Close()
}

type sorter struct {
	mu *sync.Mutex

	pool      worker.DynamicWorkerPool
	workers   int
	threshold int
	scratch   []Item
}

// Ensure sorter implements Sorter interface.
var _ Sorter = &sorter{}

// NewSorter creates a sorter with its own worker pool.
//
// Parameters:
//   - options: functional options to configure the sorter
//
// Returns:
//   - Sorter: the newly created sorter
func NewSorter(options ...SorterBuilderOption) Sorter {
	s := &sorter{
		mu:        &sync.Mutex{},
		workers:   max(runtime.NumCPU()-1, 1),
		threshold: 2048,
	}
	for _, option := range options {
		option(s)
	}
	// Queue size of 256 covers one task per worker with headroom.
	s.pool = worker.NewDynamicWorkerPool(s.workers, 256, 1*time.Second)
	return s
}

func (s *sorter) Close() {
	s.pool.Stop()
}

// parallel reports whether n items are worth fanning out.
func (s *sorter) parallel(n int) bool {
	return s.workers > 1 && n >= s.threshold
}

// chunks splits [0, n) into at most parts contiguous ranges.
func chunks(n, parts int) [][2]int {
	parts = max(min(parts, n), 1)
	out := make([][2]int, 0, parts)
	size := n / parts
	rem := n % parts
	lo := 0
	for i := range parts {
		hi := lo + size
		if i < rem {
			hi++
		}
		out = append(out, [2]int{lo, hi})
		lo = hi
	}
	return out
}

// fanOut runs fn over each range on the pool and waits for all of them.
func (s *sorter) fanOut(ranges [][2]int, fn func(lo, hi int)) {
	var wg sync.WaitGroup
	for i, r := range ranges {
		wg.Add(1)
		lo, hi := r[0], r[1]
		s.pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				fn(lo, hi)
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func distances(items []Item, eye mgl64.Vec3) {
	for i := range items {
		d := items[i].Position.Sub(eye)
		items[i].Dist = d.Dot(d)
	}
}

func (s *sorter) Distances(items []Item, eye mgl64.Vec3) {
	if !s.parallel(len(items)) {
		distances(items, eye)
		return
	}
	s.fanOut(chunks(len(items), s.workers), func(lo, hi int) {
		distances(items[lo:hi], eye)
	})
}

func (s *sorter) Sort(items []Item) {
	n := len(items)
	if n < 2 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cap(s.scratch) < n {
		s.scratch = make([]Item, n)
	}
	tmp := s.scratch[:n]

	if !s.parallel(n) {
		mergeSort(items, tmp)
		return
	}

	runs := chunks(n, s.workers)
	s.fanOut(runs, func(lo, hi int) {
		mergeSort(items[lo:hi], tmp[lo:hi])
	})

	// merge adjacent runs pairwise, level by level, alternating between the two buffers
	src, dst := items, tmp
	for len(runs) > 1 {
		next := make([][2]int, 0, (len(runs)+1)/2)
		var pairs [][2]int
		for i := 0; i < len(runs); i += 2 {
			if i+1 == len(runs) {
				next = append(next, runs[i])
				pairs = append(pairs, [2]int{i, i})
				continue
			}
			next = append(next, [2]int{runs[i][0], runs[i+1][1]})
			pairs = append(pairs, [2]int{i, i + 1})
		}
		level := runs
		s.fanOut(pairs, func(a, b int) {
			if a == b {
				r := level[a]
				copy(dst[r[0]:r[1]], src[r[0]:r[1]])
				return
			}
			lo, mid, hi := level[a][0], level[a][1], level[b][1]
			merge(dst[lo:hi], src[lo:mid], src[mid:hi])
		})
		runs = next
		src, dst = dst, src
	}
	if &src[0] != &items[0] {
		copy(items, src)
	}
}

func (s *sorter) Order(items []Item, eye mgl64.Vec3, frustum *common.Frustum) []Item {
	if frustum != nil {
		kept := items[:0]
		for _, it := range items {
			if frustum.ContainsSphere(it.Position, it.Radius) {
				kept = append(kept, it)
			}
		}
		items = kept
	}
	s.Distances(items, eye)
	s.Sort(items)
	return items
}

// insertionCutoff is the run length below which mergeSort switches to insertion sort.
const insertionCutoff = 12

// mergeSort sorts a ascending by Dist using tmp (same length) as scratch. Stable.
func mergeSort(a, tmp []Item) {
	n := len(a)
	if n <= insertionCutoff {
		insertionSort(a)
		return
	}
	mid := n / 2
	mergeSort(a[:mid], tmp[:mid])
	mergeSort(a[mid:], tmp[mid:])
	if a[mid-1].Dist <= a[mid].Dist {
		return
	}
	copy(tmp, a)
	merge(a, tmp[:mid], tmp[mid:])
}

// merge fills dst with the ascending merge of the sorted runs lo and hi. It fills from the
// top, taking the larger tail each step; on equal distances the element of hi is taken first,
// so it lands above its equal from lo and input order is kept.
func merge(dst, lo, hi []Item) {
	i, j := len(lo)-1, len(hi)-1
	for k := len(dst) - 1; k >= 0; k-- {
		switch {
		case j < 0:
			dst[k] = lo[i]
			i--
		case i < 0:
			dst[k] = hi[j]
			j--
		case lo[i].Dist > hi[j].Dist:
			dst[k] = lo[i]
			i--
		default:
			dst[k] = hi[j]
			j--
		}
	}
}

func insertionSort(a []Item) {
	for i := 1; i < len(a); i++ {
		v := a[i]
		j := i - 1
		for j >= 0 && a[j].Dist > v.Dist {
			a[j+1] = a[j]
			j--
		}
		a[j+1] = v
	}
}

// Runs walks sorted items from farthest to nearest and groups consecutive items sharing a
// blend mode and texture.
//
// Parameters:
//   - sorted: items in ascending distance
//
// Returns:
//   - []Run: the runs in drawing order
func Runs(sorted []Item) []Run {
	var out []Run
	for i := len(sorted) - 1; i >= 0; i-- {
		it := sorted[i]
		if n := len(out); n > 0 && out[n-1].Blend == it.Blend && out[n-1].Texture == it.Texture {
			out[n-1].Items = append(out[n-1].Items, it)
			continue
		}
		out = append(out, Run{Blend: it.Blend, Texture: it.Texture, Items: []Item{it}})
	}
	return out
}
