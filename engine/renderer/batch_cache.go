package renderer

import "sync"

// Pass distinguishes the retained geometry of a panel.
type Pass int

const (
	// PassStatic holds world-anchored opaque geometry; it only changes with the scene.
	PassStatic Pass = iota
	// PassDynamic holds geometry that follows the camera, such as screen-anchored primitives.
	PassDynamic
)

// CacheKey identifies one retained batch list.
type CacheKey struct {
	Panel int
	Pass  Pass
}

// BatchCache retains built batches per (panel, pass). Each entry carries the stamp it was
// built for, normally the scene generation; a lookup with any other stamp misses.
// Thread-safe for concurrent access.
type BatchCache interface {
	// Lookup returns the batches stored under key if they were built for stamp.
	//
	// Parameters:
	//   - key: the panel and pass
	//   - stamp: the generation the caller needs
	//
	// Returns:
	//   - []*Batch: the cached batches
	//   - bool: false on a miss
	Lookup(key CacheKey, stamp uint64) ([]*Batch, bool)

	// Store replaces the batches under key.
	//
	// Parameters:
	//   - key: the panel and pass
	//   - stamp: the generation the batches were built for
	//   - batches: the batches
	Store(key CacheKey, stamp uint64, batches []*Batch)

	// Invalidate drops every entry.
	Invalidate()

	// InvalidatePanel drops every entry of one panel.
	//
	// Parameters:
	//   - panel: the panel index
	InvalidatePanel(panel int)

	// Len returns the number of entries.
	//
	// Returns:
	//   - int: the entry count
	Len() int
}

type cacheEntry struct {
	stamp   uint64
	batches []*Batch
}

type batchCache struct {
	mu      *sync.Mutex
	entries map[CacheKey]cacheEntry
}

// Ensure batchCache implements BatchCache interface.
var _ BatchCache = &batchCache{}

// NewBatchCache creates an empty cache.
//
// Returns:
//   - BatchCache: the created cache
func NewBatchCache() BatchCache {
	return &batchCache{
		mu:      &sync.Mutex{},
		entries: make(map[CacheKey]cacheEntry),
	}
}

func (c *batchCache) Lookup(key CacheKey, stamp uint64) ([]*Batch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || e.stamp != stamp {
		return nil, false
	}
	return e.batches, true
}

func (c *batchCache) Store(key CacheKey, stamp uint64, batches []*Batch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{stamp: stamp, batches: batches}
}

func (c *batchCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

func (c *batchCache) InvalidatePanel(panel int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if k.Panel == panel {
			delete(c.entries, k)
		}
	}
}

func (c *batchCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
