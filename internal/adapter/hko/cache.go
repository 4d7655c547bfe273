package hko

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hko-weather-e2e/internal/domain"
	"github.com/couchcryptid/hko-weather-e2e/internal/observability"
)

// ForecastFetcher fetches the 9-day forecast, returning nil on failure.
type ForecastFetcher interface {
	FetchNineDayForecast(ctx context.Context) *domain.ForecastPayload
}

// CachedForecast wraps a ForecastFetcher with a single-entry TTL cache.
// Failed fetches are not cached.
type CachedForecast struct {
	inner   ForecastFetcher
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu        sync.Mutex
	payload   *domain.ForecastPayload
	fetchedAt time.Time
}

// NewCachedForecast creates a cache decorator. A ttl of zero disables caching.
func NewCachedForecast(inner ForecastFetcher, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedForecast {
	return &CachedForecast{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

func (c *CachedForecast) FetchNineDayForecast(ctx context.Context) *domain.ForecastPayload {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.payload != nil && c.clock.Since(c.fetchedAt) < c.ttl {
		c.metrics.ForecastCache.WithLabelValues("hit").Inc()
		return c.payload
	}
	c.metrics.ForecastCache.WithLabelValues("miss").Inc()

	p := c.inner.FetchNineDayForecast(ctx)
	if p != nil && c.ttl > 0 {
		c.payload = p
		c.fetchedAt = c.clock.Now()
	}
	return p
}

// Invalidate drops the cached payload.
func (c *CachedForecast) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payload = nil
}
