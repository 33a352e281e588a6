package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/custodia-labs/galaxy-cli/internal/core/ports/driven"
)

// Ensure EmbeddingCache implements the interface.
var _ driven.EmbeddingCache = (*EmbeddingCache)(nil)

// EmbeddingCache is an in-memory implementation of driven.EmbeddingCache.
// It lives for one process and is used when the on-disk cache is unavailable.
type EmbeddingCache struct {
	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewEmbeddingCache creates a new in-memory embedding cache.
func NewEmbeddingCache() *EmbeddingCache {
	return &EmbeddingCache{
		vectors: make(map[string][]float32),
	}
}

// GetEmbeddings returns copies of the cached vectors for the keys present.
func (c *EmbeddingCache) GetEmbeddings(_ context.Context, keys []string) (map[string][]float32, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	found := make(map[string][]float32, len(keys))
	for _, k := range keys {
		if v, ok := c.vectors[k]; ok {
			found[k] = slices.Clone(v)
		}
	}
	return found, nil
}

// SaveEmbeddings stores copies of the vectors. The model is not recorded
// since keys already depend on it.
func (c *EmbeddingCache) SaveEmbeddings(_ context.Context, _ string, entries map[string][]float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, v := range entries {
		c.vectors[k] = slices.Clone(v)
	}
	return nil
}

// Len returns the number of cached vectors.
func (c *EmbeddingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.vectors)
}

// Close is a no-op for in-memory storage.
func (c *EmbeddingCache) Close() error {
	return nil
}
