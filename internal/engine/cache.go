package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ResultCache memoizes check results keyed by (workflow type, context).
//
// Keys are derived from the JSON encoding of the context; struct fields
// encode in declaration order, so equal contexts always hash equal. Cached
// results are shared and must never be mutated by callers.
type ResultCache struct {
	cache *gocache.Cache
}

// NewResultCache creates a cache. A non-positive TTL means entries live for
// the process lifetime.
func NewResultCache(ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		return &ResultCache{cache: gocache.New(gocache.NoExpiration, 0)}
	}
	return &ResultCache{cache: gocache.New(ttl, 2*ttl)}
}

// Key computes the stable cache key for a workflow type and context.
func (c *ResultCache) Key(t WorkflowType, wctx *Context) string {
	h := sha256.New()
	h.Write([]byte(t))
	h.Write([]byte{0})
	// Context holds only scalars and slices; Marshal cannot fail.
	enc, _ := json.Marshal(wctx)
	h.Write(enc)
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the cached result for key, if present.
func (c *ResultCache) Get(key string) (*CheckResult, bool) {
	v, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*CheckResult), true
}

// Set stores a result under key.
func (c *ResultCache) Set(key string, result *CheckResult) {
	c.cache.SetDefault(key, result)
}

// Len returns the number of live entries.
func (c *ResultCache) Len() int {
	return c.cache.ItemCount()
}
