package solver

import (
	"sync"

	"tyco/internal/types"
)

type cacheKey struct {
	source types.TypeID
	target types.TypeID
	flags  uint16
}

// Cache memoizes definitive subtype decisions across checks. CycleDetected
// and DepthExceeded are never stored: they depend on the active walk, not
// on the pair. Safe for concurrent readers/writers so parallel per-file
// checkers can share one instance.
type Cache struct {
	mu sync.RWMutex
	m  map[cacheKey]bool
}

// NewCache creates an empty decision cache.
func NewCache() *Cache {
	return &Cache{m: make(map[cacheKey]bool, 256)}
}

// Lookup returns a previously stored decision.
func (c *Cache) Lookup(source, target types.TypeID, flags uint16) (bool, bool) {
	if c == nil {
		return false, false
	}
	c.mu.RLock()
	v, ok := c.m[cacheKey{source, target, flags}]
	c.mu.RUnlock()
	return v, ok
}

// Store records a definitive decision.
func (c *Cache) Store(source, target types.TypeID, flags uint16, value bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.m[cacheKey{source, target, flags}] = value
	c.mu.Unlock()
}

// Len reports the number of cached decisions.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
