package settings

import "sync"

// ProgramCache stores compiled builder-expression programs keyed by the
// expression text.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// WithProgramCache registers a program cache on the node.
func WithProgramCache(cache ProgramCache) NodeOption {
	return func(cfg *nodeConfig) {
		cfg.programCache = cache
	}
}

// MemoryProgramCache is an unbounded in-process ProgramCache safe for
// concurrent use.
type MemoryProgramCache struct {
	mu       sync.RWMutex
	programs map[string]any
}

// NewMemoryProgramCache constructs an empty cache.
func NewMemoryProgramCache() *MemoryProgramCache {
	return &MemoryProgramCache{
		programs: make(map[string]any),
	}
}

// Get implements ProgramCache.
func (c *MemoryProgramCache) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.programs[key]
	return value, ok
}

// Set implements ProgramCache.
func (c *MemoryProgramCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.programs == nil {
		c.programs = make(map[string]any)
	}
	c.programs[key] = value
}
