package nominatim

import (
	"container/list"
	"context"
	"sync"

	"github.com/couchcryptid/storm-history-api/internal/domain"
	"github.com/couchcryptid/storm-history-api/internal/observability"
)

// CachedGeocoder wraps a Geocoder with an in-memory LRU cache keyed by the
// raw address string.
type CachedGeocoder struct {
	inner   domain.Geocoder
	cache   *lruCache[domain.GeoTarget]
	metrics *observability.Metrics
}

// NewCachedGeocoder creates a cache decorator around a geocoder.
func NewCachedGeocoder(inner domain.Geocoder, maxEntries int, metrics *observability.Metrics) *CachedGeocoder {
	return &CachedGeocoder{
		inner:   inner,
		cache:   newLRUCache[domain.GeoTarget](maxEntries),
		metrics: metrics,
	}
}

// Geocode serves repeated addresses from the cache. Only successful results
// are cached so transient failures and not-found responses can be retried.
func (c *CachedGeocoder) Geocode(ctx context.Context, address string) (domain.GeoTarget, error) {
	if target, ok := c.cache.get(address); ok {
		c.metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return target, nil
	}
	c.metrics.GeocodeCache.WithLabelValues("miss").Inc()

	target, err := c.inner.Geocode(ctx, address)
	if err != nil {
		return target, err
	}
	c.cache.put(address, target)
	return target, nil
}

// lruCache is a thread-safe string-keyed LRU built on container/list: the
// list front is the most recently used entry, the back is evicted first.
type lruCache[V any] struct {
	maxEntries int

	mu      sync.Mutex
	order   *list.List // of *cacheEntry[V]
	entries map[string]*list.Element
}

type cacheEntry[V any] struct {
	key   string
	value V
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		order:      list.New(),
		entries:    make(map[string]*list.Element),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry[V]).value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*cacheEntry[V]).value = value
		c.order.MoveToFront(el)
		return
	}

	c.entries[key] = c.order.PushFront(&cacheEntry[V]{key: key, value: value})

	if c.order.Len() > c.maxEntries {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry[V]).key)
	}
}
