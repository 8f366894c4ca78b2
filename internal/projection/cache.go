package projection

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
)

// Cache memoizes projection results by a hash of the request.
type Cache struct {
	store *cache.Cache
}

// NewCache creates a Cache whose entries expire after ttl.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{store: cache.New(ttl, 2*ttl)}
}

// Key returns the SHA-256 of the JSON encoding of req. The request ID is not
// part of the key.
func Key(req Request) (string, error) {
	req.ID = ""
	data, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("unable to encode projection request: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Get returns the cached result for key.
func (c *Cache) Get(key string) (*Result, bool) {
	if cached, found := c.store.Get(key); found {
		if result, ok := cached.(*Result); ok {
			return result, true
		}
	}
	return nil, false
}

// Set stores result under key with the default expiration.
func (c *Cache) Set(key string, result *Result) {
	c.store.Set(key, result, cache.DefaultExpiration)
}

// Len returns the number of cached entries, including expired ones not yet
// cleaned up.
func (c *Cache) Len() int {
	return c.store.ItemCount()
}

// Project returns the cached result for req or computes and stores it. The
// boolean reports a cache hit. Cached results are shared and must be treated
// as read-only.
func (c *Cache) Project(engine *Engine, req Request) (*Result, bool, error) {
	key, err := Key(req)
	if err != nil {
		return nil, false, err
	}
	if result, found := c.Get(key); found {
		return result, true, nil
	}
	result, err := engine.ProjectRequest(req)
	if err != nil {
		return nil, false, err
	}
	c.Set(key, result)
	return result, false, nil
}
