// ABOUTME: Configuration catalog implementations
// ABOUTME: Static in-memory catalog plus a TTL-cached wrapper for cost profile lookups

package backends

import (
	"fmt"
	"sort"
	"time"

	"github.com/continua-ai/continua/cache"
)

// StaticCatalog serves cost profiles from a fixed table. Unknown candidate
// ids get a nominal profile so adding a configuration to a sweep never
// requires a catalog change.
type StaticCatalog struct {
	profiles map[string]CostProfile
}

// NewStaticCatalog builds a catalog over the given candidate ids, assigning
// nominal cost to any id without an explicit profile.
func NewStaticCatalog(candidates []string, profiles map[string]float64) *StaticCatalog {
	table := make(map[string]CostProfile, len(candidates))
	for _, id := range candidates {
		cost := 1.0
		if c, ok := profiles[id]; ok && c > 0 {
			cost = c
		}
		table[id] = CostProfile{ConfigID: id, CostFactor: cost}
	}
	return &StaticCatalog{profiles: table}
}

func (c *StaticCatalog) Candidates() []string {
	out := make([]string, 0, len(c.profiles))
	for id := range c.profiles {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (c *StaticCatalog) CostProfile(configID string) (CostProfile, error) {
	p, ok := c.profiles[configID]
	if !ok {
		return CostProfile{}, fmt.Errorf("unknown configuration %q", configID)
	}
	return p, nil
}

// CachedCatalog wraps a ConfigCatalog with a TTL cache. Cost profiles are
// static per run, so repeated per-period lookups never hit the backing
// catalog twice within the TTL.
type CachedCatalog struct {
	inner ConfigCatalog
	cache *cache.Cache
}

func NewCachedCatalog(inner ConfigCatalog, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{inner: inner, cache: cache.New(ttl)}
}

func (c *CachedCatalog) Candidates() []string {
	return c.inner.Candidates()
}

func (c *CachedCatalog) CostProfile(configID string) (CostProfile, error) {
	key := "profile:" + configID
	if cached, found := c.cache.Get(key); found {
		return cached.(CostProfile), nil
	}
	p, err := c.inner.CostProfile(configID)
	if err != nil {
		return CostProfile{}, err
	}
	c.cache.Set(key, p)
	return p, nil
}

// Close releases the cache's cleanup goroutine.
func (c *CachedCatalog) Close() {
	c.cache.Close()
}
