package provider

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachingEmbedder wraps an Embedder with an LRU cache keyed by text.
// Repeated ingestion of identical content and repeated questions skip the
// provider round trip. Cached vectors are stored as-is; callers must not
// mutate returned slices.
type CachingEmbedder struct {
	inner Embedder
	cache *lru.Cache[string, []float32]
}

// NewCachingEmbedder wraps inner with a cache of the given capacity.
// A capacity below 1 falls back to 1024.
func NewCachingEmbedder(inner Embedder, capacity int) (*CachingEmbedder, error) {
	if capacity < 1 {
		capacity = 1024
	}
	cache, err := lru.New[string, []float32](capacity)
	if err != nil {
		return nil, err
	}
	return &CachingEmbedder{inner: inner, cache: cache}, nil
}

// Embed returns the cached vector for text, or calls the wrapped embedder and
// caches the result. Provider failures are never cached.
func (c *CachingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.cache.Get(text); ok {
		return vec, nil
	}
	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, vec)
	return vec, nil
}

// Dimensions delegates to the wrapped embedder.
func (c *CachingEmbedder) Dimensions() int { return c.inner.Dimensions() }

// Close purges the cache and closes the wrapped embedder.
func (c *CachingEmbedder) Close() error {
	c.cache.Purge()
	return c.inner.Close()
}
