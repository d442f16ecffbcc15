package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/kalshi-analytics/internal/gateway"
	"github.com/rickgao/kalshi-analytics/internal/metrics"
	"github.com/rickgao/kalshi-analytics/internal/model"
)

// Config holds scan sizes and scoring constants.
type Config struct {
	ScanMarketLimit      int
	DashboardMarketLimit int
	DashboardEventLimit  int
	LiquiditySample      int
	MaxOpportunities     int
	MinSpreadPct         float64
	Notional             float64
	Concurrency          int
	TradeLimit           int
	RequestTimeout       time.Duration
}

// DefaultConfig returns the standard scan sizes.
func DefaultConfig() Config {
	return Config{
		ScanMarketLimit:      500,
		DashboardMarketLimit: 1000,
		DashboardEventLimit:  1000,
		LiquiditySample:      50,
		MaxOpportunities:     50,
		MinSpreadPct:         1.0,
		Notional:             1000,
		Concurrency:          8,
		TradeLimit:           100,
		RequestTimeout:       2 * time.Minute,
	}
}

// Engine runs analytics against a gateway. It holds no per-request state and
// is safe for concurrent use.
type Engine struct {
	gw      gateway.Gateway
	cfg     Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClock sets the clock used for expiry arithmetic.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates an Engine over gw.
func NewEngine(gw gateway.Gateway, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		gw:     gw,
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.cfg.Concurrency < 1 {
		e.cfg.Concurrency = 1
	}
	return e
}

// CalculateMarketAnalytics computes a Snapshot at the engine's current time.
func (e *Engine) CalculateMarketAnalytics(market model.Market, book model.OrderBook, trades []model.Trade) Snapshot {
	return CalculateMarketAnalytics(market, book, trades, e.now())
}

// MarketAnalytics fetches a market, its book and recent trades concurrently
// and computes a Snapshot. Any fetch failure is returned.
func (e *Engine) MarketAnalytics(ctx context.Context, ticker string) (Snapshot, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	defer func() { e.metrics.ObserveScan("market", time.Since(start)) }()

	var (
		market model.Market
		book   model.OrderBook
		trades []model.Trade
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if market, err = e.gw.FetchMarket(gctx, ticker); err != nil {
			return fmt.Errorf("fetch market: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if book, err = e.gw.FetchOrderBook(gctx, ticker); err != nil {
			return fmt.Errorf("fetch orderbook: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if trades, err = e.gw.FetchTrades(gctx, ticker, e.cfg.TradeLimit); err != nil {
			return fmt.Errorf("fetch trades: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("market analytics %s: %w", ticker, err)
	}

	return e.CalculateMarketAnalytics(market, book, trades), nil
}

// withTimeout applies the configured request timeout.
func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.cfg.RequestTimeout)
}

// fetchBooks loads order books for markets concurrently, bounded by the
// configured concurrency. Failed fetches leave ok[i] false and are recorded
// in diags.
func (e *Engine) fetchBooks(ctx context.Context, markets []model.Market, diags *diagnosticLog) (books []model.OrderBook, ok []bool) {
	books = make([]model.OrderBook, len(markets))
	ok = make([]bool, len(markets))

	var g errgroup.Group
	g.SetLimit(e.cfg.Concurrency)
	for i := range markets {
		g.Go(func() error {
			ticker := markets[i].Ticker
			if err := ctx.Err(); err != nil {
				diags.add(KindOrderBook, ticker, err)
				return nil
			}
			book, err := e.gw.FetchOrderBook(ctx, ticker)
			if err != nil {
				diags.add(KindOrderBook, ticker, err)
				return nil
			}
			books[i], ok[i] = book, true
			return nil
		})
	}
	g.Wait()

	return books, ok
}

func (e *Engine) newDiagnosticLog() *diagnosticLog {
	return &diagnosticLog{logger: e.logger, metrics: e.metrics}
}
