package cache

import (
	"container/list"
	"encoding/binary"
	"slices"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/canisaugustinus/latin-leven/internal/resource"
	"github.com/canisaugustinus/latin-leven/internal/topk"
	"github.com/canisaugustinus/latin-leven/model"
)

// Key identifies a cached result list.
type Key struct {
	K     int
	Query string // packed little-endian symbols
}

// NewKey builds the cache key for a query and a clamped k.
func NewKey(query model.Sequence, k int) Key {
	buf := make([]byte, 4*len(query))
	for i, s := range query {
		binary.LittleEndian.PutUint32(buf[4*i:], uint32(s))
	}
	return Key{K: k, Query: string(buf)}
}

const entrySize = int64(unsafe.Sizeof(topk.Entry{}))

func sizeOf(key Key, value []topk.Entry) int64 {
	return int64(len(key.Query)) + int64(len(value))*entrySize
}

// LRUResultCache implements a byte-bounded LRU of result lists.
type LRUResultCache struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[Key]*list.Element
	evictList *list.List
	rc        *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key   Key
	value []topk.Entry
}

// NewLRUResultCache creates a new LRU cache with the given capacity in bytes.
// If rc is provided, it will be used to track memory usage.
func NewLRUResultCache(capacity int64, rc *resource.Controller) *LRUResultCache {
	return &LRUResultCache{
		capacity:  capacity,
		items:     make(map[Key]*list.Element),
		evictList: list.New(),
		rc:        rc,
	}
}

// Get returns a copy of the cached results.
func (c *LRUResultCache) Get(key Key) ([]topk.Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return slices.Clone(ent.Value.(*entry).value), true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches a copy of value.
func (c *LRUResultCache) Set(key Key, value []topk.Entry) {
	value = slices.Clone(value)
	itemSize := sizeOf(key, value)

	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		// same key means same results; refresh recency only
		c.evictList.MoveToFront(ent)
		return
	}

	// If item is larger than capacity, don't cache
	if itemSize > c.capacity {
		return
	}

	for c.size+itemSize > c.capacity {
		ent := c.evictList.Back()
		if ent == nil {
			break
		}
		c.removeElement(ent)
	}

	// If the controller says no, don't cache.
	if !c.rc.TryAcquireMemory(itemSize) {
		return
	}

	element := c.evictList.PushFront(&entry{key: key, value: value})
	c.items[key] = element
	c.size += itemSize
}

// Purge removes every entry.
func (c *LRUResultCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.evictList.Len() > 0 {
		c.removeElement(c.evictList.Back())
	}
}

// Stats returns hit and miss counts.
func (c *LRUResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached result lists.
func (c *LRUResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// Size returns the current size of the cache in bytes.
func (c *LRUResultCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func (c *LRUResultCache) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*entry)
	delete(c.items, kv.key)
	itemSize := sizeOf(kv.key, kv.value)
	c.size -= itemSize
	c.rc.ReleaseMemory(itemSize)
}
