package poller

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rickgao/kalshi-analytics/internal/analytics"
)

// Engine is the analytics surface the poller refreshes and delegates to.
type Engine interface {
	MarketAnalytics(ctx context.Context, ticker string) (analytics.Snapshot, error)
	FindArbitrageOpportunities(ctx context.Context) analytics.ScanResult
	DashboardStats(ctx context.Context) analytics.DashboardResult
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Refresh interval
}

// Poller periodically recomputes arbitrage and dashboard results.
type Poller struct {
	cfg    Config
	engine Engine
	logger *slog.Logger

	scan      atomic.Pointer[analytics.ScanResult]
	dashboard atomic.Pointer[analytics.DashboardResult]
	cycles    atomic.Int64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller.
func New(cfg Config, engine Engine, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		cfg:    cfg,
		engine: engine,
		logger: logger,
	}
}

// Start begins the refresh loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("analytics poller started", "interval", p.cfg.Interval)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("analytics poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Cycles returns the number of completed refresh cycles.
func (p *Poller) Cycles() int64 {
	return p.cycles.Load()
}

// MarketAnalytics is always computed live.
func (p *Poller) MarketAnalytics(ctx context.Context, ticker string) (analytics.Snapshot, error) {
	return p.engine.MarketAnalytics(ctx, ticker)
}

// FindArbitrageOpportunities returns the latest refreshed scan, or runs one
// if no cycle has completed yet.
func (p *Poller) FindArbitrageOpportunities(ctx context.Context) analytics.ScanResult {
	if latest := p.scan.Load(); latest != nil {
		return *latest
	}
	return p.engine.FindArbitrageOpportunities(ctx)
}

// DashboardStats returns the latest refreshed stats, or computes them if no
// cycle has completed yet.
func (p *Poller) DashboardStats(ctx context.Context) analytics.DashboardResult {
	if latest := p.dashboard.Load(); latest != nil {
		return *latest
	}
	return p.engine.DashboardStats(ctx)
}

// run is the main refresh loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Refresh immediately on start.
	p.refresh()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.refresh()
		}
	}
}

// refresh recomputes both results concurrently. Results from a canceled
// cycle are discarded.
func (p *Poller) refresh() {
	start := time.Now()

	var (
		wg        sync.WaitGroup
		scan      analytics.ScanResult
		dashboard analytics.DashboardResult
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		scan = p.engine.FindArbitrageOpportunities(p.ctx)
	}()
	go func() {
		defer wg.Done()
		dashboard = p.engine.DashboardStats(p.ctx)
	}()
	wg.Wait()

	if p.ctx.Err() != nil {
		return
	}

	p.scan.Store(&scan)
	p.dashboard.Store(&dashboard)
	p.cycles.Add(1)

	p.logger.Info("refresh cycle complete",
		"opportunities", len(scan.Opportunities),
		"markets", dashboard.Stats.TotalMarkets,
		"skipped", len(scan.Diagnostics)+len(dashboard.Diagnostics),
		"duration", time.Since(start),
	)
}
