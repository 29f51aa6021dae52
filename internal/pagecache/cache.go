// Package pagecache provides a bounded LRU store for rendered page images.
//
// The cache is keyed by stable page identity, so reordering pages never
// invalidates entries. It is the dominant memory-control mechanism of the
// render pipeline: after every viewport recomputation the caller prunes it
// down to the visible set with KeepOnly, and the LRU capacity acts as a
// backstop against transient overshoot during fast scrolling.
//
// The cache is not safe for concurrent use. All mutation happens on the
// control goroutine that owns the render pipeline; workers never touch it.
package pagecache

import (
	"container/list"
	"image"
	"log/slog"

	"github.com/scopogger/healthypdf/internal/types"
)

// DefaultMaxSize is the default entry capacity. Six pages comfortably cover
// a visible window of three pages plus buffer on both sides.
const DefaultMaxSize = 6

type entry struct {
	id  types.PageID
	img *image.RGBA
}

// Cache is a bounded-capacity LRU store mapping page identity to its
// rendered image. Insertion order defines recency; Get and Put both move
// the entry to most-recently-used.
type Cache struct {
	maxSize int
	order   *list.List // front = least recently used
	items   map[types.PageID]*list.Element
	logger  *slog.Logger

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache holding at most maxSize entries. A maxSize <= 0 falls
// back to DefaultMaxSize.
func New(maxSize int, logger *slog.Logger) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		maxSize: maxSize,
		order:   list.New(),
		items:   make(map[types.PageID]*list.Element),
		logger:  logger.With("component", "pagecache"),
	}
}

// Get returns the cached image for id and refreshes its recency.
// A miss has no side effect beyond the counter.
func (c *Cache) Get(id types.PageID) (*image.RGBA, bool) {
	el, ok := c.items[id]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.order.MoveToBack(el)
	return el.Value.(*entry).img, true
}

// Contains reports whether id is cached without refreshing its recency.
// Used for membership probes that must not disturb eviction order.
func (c *Cache) Contains(id types.PageID) bool {
	_, ok := c.items[id]
	return ok
}

// Put inserts the image for id, or refreshes recency if id is already
// present (the existing image is kept; a zoom or rotation change must evict
// the stale entry explicitly before re-rendering, never shadow it).
// After insertion the least-recently-used entries are evicted until the
// cache is back within capacity.
func (c *Cache) Put(id types.PageID, img *image.RGBA) {
	if el, ok := c.items[id]; ok {
		c.order.MoveToBack(el)
		return
	}
	c.items[id] = c.order.PushBack(&entry{id: id, img: img})
	for c.order.Len() > c.maxSize {
		c.removeElement(c.order.Front())
		c.evictions++
	}
}

// Evict removes the entry for id if present. Used for single-page
// invalidation on rotation changes.
func (c *Cache) Evict(id types.PageID) bool {
	el, ok := c.items[id]
	if !ok {
		return false
	}
	c.removeElement(el)
	c.evictions++
	return true
}

// KeepOnly evicts every entry whose identity is not in keep, regardless of
// recency. Survivors retain their relative recency order. Returns the number
// of evicted entries.
func (c *Cache) KeepOnly(keep map[types.PageID]struct{}) int {
	evicted := 0
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*entry)
		if _, ok := keep[e.id]; !ok {
			c.removeElement(el)
			evicted++
		}
		el = next
	}
	if evicted > 0 {
		c.evictions += uint64(evicted)
		c.logger.Debug("pruned cache to visible set", "evicted", evicted, "size", c.order.Len())
	}
	return evicted
}

// Clear evicts everything. Used on zoom change and document close.
func (c *Cache) Clear() {
	n := c.order.Len()
	c.order.Init()
	clear(c.items)
	if n > 0 {
		c.evictions += uint64(n)
	}
}

// Len returns the number of cached entries.
func (c *Cache) Len() int {
	return c.order.Len()
}

// MaxSize returns the configured capacity.
func (c *Cache) MaxSize() int {
	return c.maxSize
}

// Status describes cache occupancy and counters.
type Status struct {
	Size      int
	MaxSize   int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// Status returns current occupancy and lifetime counters.
func (c *Cache) Status() Status {
	return Status{
		Size:      c.order.Len(),
		MaxSize:   c.maxSize,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

func (c *Cache) removeElement(el *list.Element) {
	e := el.Value.(*entry)
	c.order.Remove(el)
	delete(c.items, e.id)
	// Drop the pixel buffer reference so the GC can reclaim it even if the
	// list element lingers.
	e.img = nil
}
