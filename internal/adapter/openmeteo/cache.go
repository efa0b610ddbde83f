package openmeteo

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/inletlabs/kitecast/internal/domain"
	"github.com/inletlabs/kitecast/internal/observability"
)

// CachedFetcher wraps a SeriesFetcher with an in-memory TTL cache so repeated
// refreshes inside one cache window reuse the upstream response.
type CachedFetcher struct {
	inner   domain.SeriesFetcher
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics

	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	series  domain.StationSeries
	fetched time.Time
}

// NewCachedFetcher creates a TTL cache decorator around a fetcher.
func NewCachedFetcher(inner domain.SeriesFetcher, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
		entries: make(map[string]cacheEntry),
	}
}

func (c *CachedFetcher) FetchHourly(ctx context.Context, lat, lon float64, fields []string, mode domain.FetchMode, dates domain.DateRange) (domain.StationSeries, error) {
	key := cacheKey(lat, lon, fields, mode, dates)

	c.mu.Lock()
	e, ok := c.entries[key]
	c.mu.Unlock()

	if ok && c.clock.Since(e.fetched) < c.ttl {
		c.metrics.FetchCache.WithLabelValues("hit").Inc()
		return e.series, nil
	}
	c.metrics.FetchCache.WithLabelValues("miss").Inc()

	series, err := c.inner.FetchHourly(ctx, lat, lon, fields, mode, dates)
	if err != nil {
		return domain.StationSeries{}, err
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{series: series, fetched: c.clock.Now()}
	c.mu.Unlock()
	return series, nil
}

func cacheKey(lat, lon float64, fields []string, mode domain.FetchMode, dates domain.DateRange) string {
	return fmt.Sprintf("%.4f,%.4f|%s|%s|%s/%s",
		lat, lon,
		strings.Join(fields, ","),
		mode,
		dates.Start.Format("2006-01-02"),
		dates.End.Format("2006-01-02"))
}
