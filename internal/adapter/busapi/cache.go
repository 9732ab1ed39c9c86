package busapi

import (
	"container/list"
	"context"
	"sync"

	"github.com/couchcryptid/rally-detour/internal/domain"
	"github.com/couchcryptid/rally-detour/internal/observability"
)

// CachedLookup wraps a RouteLookup with an in-memory LRU cache.
type CachedLookup struct {
	inner   domain.RouteLookup
	cache   *lruCache
	metrics *observability.Metrics
}

// NewCachedLookup creates a cache decorator around a route lookup.
func NewCachedLookup(inner domain.RouteLookup, maxEntries int, metrics *observability.Metrics) *CachedLookup {
	return &CachedLookup{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		metrics: metrics,
	}
}

func (c *CachedLookup) RoutesByStop(ctx context.Context, stopID string) ([]string, error) {
	if routes, ok := c.cache.get(stopID); ok {
		c.metrics.RouteCache.WithLabelValues("memory", "hit").Inc()
		return append([]string(nil), routes...), nil
	}
	c.metrics.RouteCache.WithLabelValues("memory", "miss").Inc()

	routes, err := c.inner.RoutesByStop(ctx, stopID)
	if err != nil {
		return nil, err
	}
	// Empty answers are retried on the next call.
	if len(routes) > 0 {
		c.cache.put(stopID, append([]string(nil), routes...))
	}
	return routes, nil
}

// lruCache is a thread-safe LRU cache of route lists keyed by stop id. The
// front of order is the most recently used stop.
type lruCache struct {
	maxEntries int

	mu    sync.Mutex
	order *list.List
	items map[string]*list.Element
}

type cachedRoutes struct {
	stopID string
	routes []string
}

func newLRUCache(maxEntries int) *lruCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &lruCache{
		maxEntries: maxEntries,
		order:      list.New(),
		items:      make(map[string]*list.Element, maxEntries),
	}
}

func (c *lruCache) get(stopID string) ([]string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[stopID]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cachedRoutes).routes, true
}

func (c *lruCache) put(stopID string, routes []string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[stopID]; ok {
		el.Value.(*cachedRoutes).routes = routes
		c.order.MoveToFront(el)
		return
	}

	c.items[stopID] = c.order.PushFront(&cachedRoutes{stopID: stopID, routes: routes})
	for c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*cachedRoutes).stopID)
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
