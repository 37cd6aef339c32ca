package guard

import "sync"

// ProgramCache stores compiled expression programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type mapCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewMapCache returns an unbounded ProgramCache safe for concurrent use.
func NewMapCache() ProgramCache {
	return &mapCache{programs: make(map[string]any)}
}

func (c *mapCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.programs[key]
	return value, ok
}

func (c *mapCache) Set(key string, value any) {
	c.mu.Lock()
	c.programs[key] = value
	c.mu.Unlock()
}
