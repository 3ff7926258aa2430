package cache

import (
	"sync"

	"github.com/example/presta-export-service/internal/domain"
)

// MemorySupplierCache caches product id -> supplier name lookups for
// the duration of one aggregation run.
type MemorySupplierCache struct {
	mu    sync.RWMutex
	store map[string]string
}

func NewMemorySupplierCache() *MemorySupplierCache {
	return &MemorySupplierCache{store: make(map[string]string)}
}

func (c *MemorySupplierCache) Get(productID string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.store[productID]
	return name, ok
}

func (c *MemorySupplierCache) Set(productID, name string) {
	c.mu.Lock()
	c.store[productID] = name
	c.mu.Unlock()
}

var _ domain.SupplierCache = (*MemorySupplierCache)(nil)
