package server

import (
	"fmt"
	"sync"
	"time"

	"taskdeck/internal/service"
)

// listCacheTTL bounds how stale a cached task page may be. Mutations
// invalidate eagerly, so the TTL only matters for writes that bypass the API.
const listCacheTTL = 60 * time.Second

type cacheEntry struct {
	payload   listResponse
	expiresAt time.Time
}

// listCache memoizes task-page responses per user. Keys follow the
// tasks:<user>:<page>:<limit>:<status>:<priority> convention so per-user
// invalidation is a prefix sweep and filtered pages cache independently.
type listCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

func newListCache() *listCache {
	return &listCache{
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

func listCacheKey(userID string, page, limit int, filter service.Filter) string {
	return fmt.Sprintf("tasks:%s:%d:%d:%s:%s", userID, page, limit, filter.Status, filter.Priority)
}

func (c *listCache) get(key string) (listResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return listResponse{}, false
	}
	return e.payload, true
}

func (c *listCache) put(key string, payload listResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{payload: payload, expiresAt: c.now().Add(listCacheTTL)}
}

// invalidate drops every cached page belonging to the user.
func (c *listCache) invalidate(userID string) {
	prefix := "tasks:" + userID + ":"
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			delete(c.entries, k)
		}
	}
}
