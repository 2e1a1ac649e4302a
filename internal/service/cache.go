package service

import (
	"sync"

	"github.com/oxhq/typecore/internal/types"
)

// shardCount is the number of resolution-cache shards. A key's shard is
// chosen by an FNV-1a hash of the whole key, not by its first character.
const shardCount = 16

// ResolutionCache is the sharded read-through resolution cache: each shard
// is a read-write lock with writers rare (cache misses). Generalized from
// the teacher's single mutex-guarded map (internal/provider/contract.go's
// BaseProvider.cache) into a fixed ring of shardCount shards keyed by a hash
// of the query key; there is no one-shard-per-first-character layout.
type ResolutionCache struct {
	shards [shardCount]*cacheShard
}

type cacheShard struct {
	mu      sync.RWMutex
	entries map[string]types.TypeResolution
}

// NewResolutionCache builds an empty, ready-to-use cache.
func NewResolutionCache() *ResolutionCache {
	c := &ResolutionCache{}
	for i := range c.shards {
		c.shards[i] = &cacheShard{entries: make(map[string]types.TypeResolution)}
	}
	return c
}

func (c *ResolutionCache) shardFor(key string) *cacheShard {
	return c.shards[fnv1aByte(key)%shardCount]
}

// Get returns the cached resolution for key, if present (spec §8.1
// property 6: "for any two queries with equal (expression, context hash)
// and no intervening invalidation, resolve returns the same result").
func (c *ResolutionCache) Get(key string) (types.TypeResolution, bool) {
	shard := c.shardFor(key)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	r, ok := shard.entries[key]
	return r, ok
}

// Put records a freshly computed resolution.
func (c *ResolutionCache) Put(key string, r types.TypeResolution) {
	shard := c.shardFor(key)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	shard.entries[key] = r
}

// Invalidate drops every cached entry. Source-change events invalidate the
// whole cache rather than tracking fine-grained dependency sets, matching
// the teacher's BaseProvider.cache reset-on-change behavior.
func (c *ResolutionCache) Invalidate() {
	for _, shard := range c.shards {
		shard.mu.Lock()
		shard.entries = make(map[string]types.TypeResolution)
		shard.mu.Unlock()
	}
}

// fnv1aByte hashes key down to a single byte using FNV-1a, cheap and
// stable across runs (no map-iteration-order dependence), used only to
// pick a shard.
func fnv1aByte(key string) byte {
	const (
		offset = 2166136261
		prime  = 16777619
	)
	var h uint32 = offset
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= prime
	}
	return byte(h ^ (h >> 24))
}
