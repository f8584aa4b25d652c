package provenance

import (
	"sync"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/teranos/tally/config"
)

// Node-hash cache. Hashing the same (op, parents, policy, meta) shape is the
// hot path under repeated bulk calculations; the cache is bounded by
// config.MaxHashCacheSize and evicts least-recently-used entries.

var (
	cacheMu   sync.Mutex
	hashCache *lru.Cache[string, string]
	cacheSize int

	cacheHits   atomic.Uint64
	cacheMisses atomic.Uint64
)

// CacheStats reports hash-cache effectiveness for diagnostics.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
	MaxSize int
}

func getCache() *lru.Cache[string, string] {
	cacheMu.Lock()
	defer cacheMu.Unlock()

	size := config.Active().MaxHashCacheSize
	if size <= 0 {
		size = 1
	}
	if hashCache == nil || cacheSize != size {
		// Config changed since last use: rebuild at the new bound.
		c, err := lru.New[string, string](size)
		if err != nil {
			return nil
		}
		hashCache = c
		cacheSize = size
	}
	return hashCache
}

func cacheGet(key string) (string, bool) {
	c := getCache()
	if c == nil {
		return "", false
	}
	id, ok := c.Get(key)
	if ok {
		cacheHits.Add(1)
	} else {
		cacheMisses.Add(1)
	}
	return id, ok
}

func cacheAdd(key, id string) {
	if c := getCache(); c != nil {
		c.Add(key, id)
	}
}

// GetCacheStats returns a snapshot of hash-cache counters.
func GetCacheStats() CacheStats {
	cacheMu.Lock()
	entries := 0
	size := cacheSize
	if hashCache != nil {
		entries = hashCache.Len()
	}
	cacheMu.Unlock()

	return CacheStats{
		Hits:    cacheHits.Load(),
		Misses:  cacheMisses.Load(),
		Entries: entries,
		MaxSize: size,
	}
}

// ResetCache drops all cached hashes and zeroes the counters (test helper).
func ResetCache() {
	cacheMu.Lock()
	hashCache = nil
	cacheSize = 0
	cacheMu.Unlock()
	cacheHits.Store(0)
	cacheMisses.Store(0)
	resetInternTable()
}
