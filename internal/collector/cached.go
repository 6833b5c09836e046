package collector

import (
	"context"
	"time"

	"github.com/fedetic/stockies/internal/core"
	"github.com/fedetic/stockies/internal/storage/pricestore"
	"go.uber.org/zap"
)

// CacheMetrics receives cache and fetch outcomes. *metrics.Registry
// satisfies it.
type CacheMetrics interface {
	RecordCacheHit()
	RecordCacheMiss()
	RecordFetch(source, status string)
}

// Cached decorates a Provider with a price-store read-through cache. A
// stored document younger than the TTL serves the request; anything else
// falls through to the upstream provider and is stored on success.
type Cached struct {
	upstream Provider
	store    *pricestore.Store
	ttl      time.Duration
	logger   *zap.Logger
	metrics  CacheMetrics
}

// CachedOption configures a Cached provider.
type CachedOption func(*Cached)

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) CachedOption {
	return func(c *Cached) { c.logger = logger }
}

// WithMetrics attaches cache instrumentation.
func WithMetrics(m CacheMetrics) CachedOption {
	return func(c *Cached) { c.metrics = m }
}

// NewCached wraps the upstream provider. A zero TTL means stored documents
// never expire.
func NewCached(upstream Provider, store *pricestore.Store, ttl time.Duration, opts ...CachedOption) *Cached {
	c := &Cached{
		upstream: upstream,
		store:    store,
		ttl:      ttl,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cached) Name() string { return c.upstream.Name() + "+cache" }

// FetchHistory serves from the store when fresh, otherwise fetches upstream
// and stores the result. Store failures degrade to an upstream fetch; a
// failed save is logged but does not fail the request.
func (c *Cached) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval core.Interval) ([]core.Bar, error) {
	doc, ok, err := c.store.Load(ctx, symbol, interval, start, end)
	if err != nil {
		c.logger.Warn("price store read failed, falling through to upstream",
			zap.String("symbol", symbol),
			zap.Error(err),
		)
	} else if ok && c.fresh(doc) {
		if c.metrics != nil {
			c.metrics.RecordCacheHit()
		}
		c.logger.Debug("history served from price store",
			zap.String("symbol", symbol),
			zap.Int("bars", len(doc.Bars)),
			zap.Time("fetched_at", doc.FetchedAt),
		)
		return doc.Bars, nil
	}

	if c.metrics != nil {
		c.metrics.RecordCacheMiss()
	}

	bars, err := c.upstream.FetchHistory(ctx, symbol, start, end, interval)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordFetch(c.upstream.Name(), "error")
		}
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.RecordFetch(c.upstream.Name(), "ok")
	}

	if err := c.store.Save(ctx, symbol, interval, start, end, bars); err != nil {
		c.logger.Warn("price store save failed",
			zap.String("symbol", symbol),
			zap.Error(err),
		)
	}
	return bars, nil
}

func (c *Cached) fresh(doc *pricestore.Document) bool {
	if c.ttl <= 0 {
		return true
	}
	return time.Since(doc.FetchedAt) < c.ttl
}
