package inject

import (
	"sync"

	"github.com/notaspat/notaspat/pkg/core"
)

// lookupCache remembers note lookups per protocol so a rescan does not hit
// storage for every visible row. A stored nil marks a protocol known to have
// no note, which is as cacheable as a hit.
//
// Entries go stale only through Invalidate/Clear, driven by storage change
// events; the cache itself has no expiry.
type lookupCache struct {
	mu      sync.RWMutex
	entries map[string]*core.Note
}

func newLookupCache() *lookupCache {
	return &lookupCache{entries: make(map[string]*core.Note)}
}

// Get returns the cached note (possibly nil) and whether the protocol is
// cached at all.
func (c *lookupCache) Get(protocol string) (*core.Note, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	note, ok := c.entries[protocol]
	return note, ok
}

func (c *lookupCache) Put(protocol string, note *core.Note) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[protocol] = note
}

func (c *lookupCache) Invalidate(protocol string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, protocol)
}

func (c *lookupCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*core.Note)
}
