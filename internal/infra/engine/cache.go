package engine

import (
	"sync"
	"time"

	"github.com/dotrep-network/dotrep/internal/domain"
	"github.com/dotrep-network/dotrep/internal/infra/signals"
)

// globalsCache holds the graph-wide metric set for one graph epoch. A cached
// entry is valid while the epoch matches and the TTL has not elapsed; any
// graph mutation bumps the epoch and implicitly drops it.
type globalsCache struct {
	mu      sync.Mutex
	entry   *signals.Globals
	epoch   int64
	prior   map[string]float64 // previous round's PageRank, feeds trust
	builtAt time.Time
	ttl     time.Duration
}

func newGlobalsCache(ttl time.Duration) *globalsCache {
	return &globalsCache{ttl: ttl}
}

// get returns the cached globals for the epoch, or calls build and caches
// the result. build runs under the cache lock so concurrent callers share
// one rebuild.
func (c *globalsCache) get(epoch int64, now time.Time, build func(prior map[string]float64) *signals.Globals) (*signals.Globals, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entry != nil && c.epoch == epoch && now.Sub(c.builtAt) < c.ttl {
		return c.entry, true
	}

	gl := build(c.prior)
	c.entry = gl
	c.epoch = epoch
	c.builtAt = now
	c.prior = gl.PageRank
	return gl, false
}

// resultCache memoizes per-actor results keyed by (actor, graph epoch,
// stake signature). Epoch keying means any mutation invalidates wholesale.
type resultCache struct {
	mu      sync.RWMutex
	entries map[resultKey]cachedResult
	ttl     time.Duration
}

type resultKey struct {
	actor    string
	epoch    int64
	stakeSig string
}

type cachedResult struct {
	result domain.ReputationResult
	at     time.Time
}

func newResultCache(ttl time.Duration) *resultCache {
	return &resultCache{entries: make(map[resultKey]cachedResult), ttl: ttl}
}

func (c *resultCache) get(key resultKey, now time.Time) (domain.ReputationResult, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || now.Sub(e.at) >= c.ttl {
		return domain.ReputationResult{}, false
	}
	return e.result, true
}

func (c *resultCache) put(key resultKey, r domain.ReputationResult, now time.Time) {
	c.mu.Lock()
	// Drop entries from older epochs opportunistically so the map does not
	// accumulate one generation per mutation.
	for k := range c.entries {
		if k.epoch != key.epoch {
			delete(c.entries, k)
		}
	}
	c.entries[key] = cachedResult{result: r, at: now}
	c.mu.Unlock()
}

func (c *resultCache) invalidate(actors []string) {
	c.mu.Lock()
	for k := range c.entries {
		for _, a := range actors {
			if k.actor == a {
				delete(c.entries, k)
				break
			}
		}
	}
	c.mu.Unlock()
}
