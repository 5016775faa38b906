package cache

import (
	"container/list"
	"sync"
	"time"

	"viral-clips/domain/model"
)

// HotCache is the process-local tier: TTL'd entries with an LRU cap. All
// lookup/promote/evict sequences run under one mutex so racing readers
// cannot lose updates.
type HotCache struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List // front = most recently used
	maxEntries int
	now        func() time.Time
}

type hotItem struct {
	fingerprint string
	entry       *model.CacheEntry
}

// NewHotCache creates a hot tier holding at most maxEntries entries.
func NewHotCache(maxEntries int) *HotCache {
	if maxEntries <= 0 {
		maxEntries = 512
	}
	return &HotCache{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// Get returns the entry for the fingerprint when present and unexpired.
// Expired entries are removed on the way out (lazy expiry).
func (c *HotCache) Get(fingerprint string) (*model.CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[fingerprint]
	if !ok {
		return nil, false
	}
	item := el.Value.(*hotItem)
	if item.entry.Expired(c.now()) {
		c.removeLocked(el)
		return nil, false
	}
	c.order.MoveToFront(el)
	return item.entry, true
}

// Set stores or replaces an entry, evicting the least recently used entry
// once the cap is exceeded.
func (c *HotCache) Set(entry *model.CacheEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[entry.Fingerprint]; ok {
		el.Value.(*hotItem).entry = entry
		c.order.MoveToFront(el)
		return
	}
	el := c.order.PushFront(&hotItem{fingerprint: entry.Fingerprint, entry: entry})
	c.entries[entry.Fingerprint] = el
	for c.order.Len() > c.maxEntries {
		c.removeLocked(c.order.Back())
	}
}

// Delete removes the fingerprint's entry if present.
func (c *HotCache) Delete(fingerprint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.entries[fingerprint]; ok {
		c.removeLocked(el)
	}
}

// Clear empties the tier and returns how many entries were dropped.
func (c *HotCache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	return n
}

// Len returns the current entry count, expired entries included until the
// next read or sweep touches them.
func (c *HotCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// PurgeExpired removes every entry past its TTL. Called by the periodic
// sweep for memory hygiene; correctness never depends on it.
func (c *HotCache) PurgeExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	purged := 0
	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*hotItem).entry.Expired(now) {
			c.removeLocked(el)
			purged++
		}
		el = prev
	}
	return purged
}

func (c *HotCache) removeLocked(el *list.Element) {
	item := c.order.Remove(el).(*hotItem)
	delete(c.entries, item.fingerprint)
}
