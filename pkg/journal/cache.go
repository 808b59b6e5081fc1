package journal

import (
	"container/list"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/unowned-ai/innervoice/pkg/notes"
)

// DefaultCacheSize is the note cache capacity used by WithCache(0).
const DefaultCacheSize = 150

type cacheEntry struct {
	id   uuid.UUID
	note notes.Note
}

// noteCache is a least-recently-used cache of notes read by id.
// epoch advances on every Set and Invalidate. A read-through fill only
// lands if no write happened since the caller sampled the epoch.
type noteCache struct {
	mu      sync.Mutex
	items   map[uuid.UUID]*list.Element
	order   *list.List
	maxSize int
	epoch   uint64
}

func newNoteCache(size int) *noteCache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	return &noteCache{
		items:   make(map[uuid.UUID]*list.Element),
		order:   list.New(),
		maxSize: size,
	}
}

func (c *noteCache) Get(id uuid.UUID) (notes.Note, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[id]; ok {
		c.order.MoveToFront(elem)
		return cloneNote(elem.Value.(*cacheEntry).note), true
	}
	return notes.Note{}, false
}

// Set stores n after a mutation.
func (c *noteCache) Set(n notes.Note) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	c.put(n)
}

// Epoch returns the value to pass to Fill.
func (c *noteCache) Epoch() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.epoch
}

// Fill stores n read from the store, unless a Set or Invalidate happened
// after epoch was sampled.
func (c *noteCache) Fill(n notes.Note, epoch uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.epoch != epoch {
		return false
	}
	c.put(n)
	return true
}

func (c *noteCache) put(n notes.Note) {
	if elem, ok := c.items[n.ID]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).note = cloneNote(n)
		return
	}

	if c.order.Len() >= c.maxSize {
		if oldest := c.order.Back(); oldest != nil {
			delete(c.items, oldest.Value.(*cacheEntry).id)
			c.order.Remove(oldest)
		}
	}

	c.items[n.ID] = c.order.PushFront(&cacheEntry{id: n.ID, note: cloneNote(n)})
}

func (c *noteCache) Invalidate(id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.epoch++
	if elem, ok := c.items[id]; ok {
		delete(c.items, id)
		c.order.Remove(elem)
	}
}

func (c *noteCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// cloneNote copies the slices and analysis so callers cannot mutate cached state.
func cloneNote(n notes.Note) notes.Note {
	n.Tags = slices.Clone(n.Tags)
	if n.AIAnalysis != nil {
		a := *n.AIAnalysis
		a.MainEmotions = slices.Clone(a.MainEmotions)
		n.AIAnalysis = &a
	}
	return n
}
