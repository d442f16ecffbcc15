package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/rickgao/kalshi-analytics/internal/metrics"
	"github.com/rickgao/kalshi-analytics/internal/model"
)

// Store is the byte-oriented TTL cache a Cached gateway reads through.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cached wraps a Gateway with a read-through cache. Cache errors are logged
// and treated as misses; they never fail a fetch.
type Cached struct {
	next    Gateway
	store   Store
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// CachedOption configures a Cached gateway.
type CachedOption func(*Cached)

// WithCacheLogger sets the logger.
func WithCacheLogger(logger *slog.Logger) CachedOption {
	return func(c *Cached) {
		c.logger = logger
	}
}

// WithCacheMetrics sets the metrics sink for hit/miss counts.
func WithCacheMetrics(m *metrics.Metrics) CachedOption {
	return func(c *Cached) {
		c.metrics = m
	}
}

// NewCached returns next wrapped with a TTL read cache.
func NewCached(next Gateway, store Store, ttl time.Duration, opts ...CachedOption) *Cached {
	c := &Cached{
		next:   next,
		store:  store,
		ttl:    ttl,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchMarkets implements Gateway.
func (c *Cached) FetchMarkets(ctx context.Context, q MarketQuery) ([]model.Market, error) {
	key := fmt.Sprintf("markets:%d:%s:%s:%s:%s", q.Limit, q.Cursor, q.EventTicker, q.SeriesTicker, q.Status)
	return readThrough(ctx, c, "markets", key, func() ([]model.Market, error) {
		return c.next.FetchMarkets(ctx, q)
	})
}

// FetchMarket implements Gateway.
func (c *Cached) FetchMarket(ctx context.Context, ticker string) (model.Market, error) {
	return readThrough(ctx, c, "market", "market:"+ticker, func() (model.Market, error) {
		return c.next.FetchMarket(ctx, ticker)
	})
}

// FetchOrderBook implements Gateway.
func (c *Cached) FetchOrderBook(ctx context.Context, ticker string) (model.OrderBook, error) {
	return readThrough(ctx, c, "orderbook", "orderbook:"+ticker, func() (model.OrderBook, error) {
		return c.next.FetchOrderBook(ctx, ticker)
	})
}

// FetchTrades implements Gateway.
func (c *Cached) FetchTrades(ctx context.Context, ticker string, limit int) ([]model.Trade, error) {
	key := "trades:" + ticker + ":" + strconv.Itoa(limit)
	return readThrough(ctx, c, "trades", key, func() ([]model.Trade, error) {
		return c.next.FetchTrades(ctx, ticker, limit)
	})
}

// FetchEvents implements Gateway.
func (c *Cached) FetchEvents(ctx context.Context, q EventQuery) ([]model.Event, error) {
	key := fmt.Sprintf("events:%d:%s", q.Limit, q.Cursor)
	return readThrough(ctx, c, "events", key, func() ([]model.Event, error) {
		return c.next.FetchEvents(ctx, q)
	})
}

func readThrough[T any](ctx context.Context, c *Cached, op, key string, fetch func() (T, error)) (T, error) {
	data, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache get failed", "key", key, "error", err)
	}
	if ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			c.metrics.ObserveCache(op, true)
			return v, nil
		}
		c.logger.Warn("discarding undecodable cache entry", "key", key)
	}
	c.metrics.ObserveCache(op, false)

	v, err := fetch()
	if err != nil {
		return v, err
	}

	data, err = json.Marshal(v)
	if err != nil {
		c.logger.Warn("cache encode failed", "key", key, "error", err)
		return v, nil
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
	return v, nil
}
