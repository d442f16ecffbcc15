package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rickgao/kalshi-analytics/internal/analytics"
)

// mockEngine counts calls and tags results with the call number.
type mockEngine struct {
	scans      atomic.Int32
	dashboards atomic.Int32
	markets    atomic.Int32
}

func (m *mockEngine) MarketAnalytics(_ context.Context, ticker string) (analytics.Snapshot, error) {
	m.markets.Add(1)
	return analytics.Snapshot{Ticker: ticker}, nil
}

func (m *mockEngine) FindArbitrageOpportunities(context.Context) analytics.ScanResult {
	n := m.scans.Add(1)
	return analytics.ScanResult{MarketsScanned: int(n)}
}

func (m *mockEngine) DashboardStats(context.Context) analytics.DashboardResult {
	n := m.dashboards.Add(1)
	return analytics.DashboardResult{Stats: analytics.DashboardStats{TotalMarkets: int(n)}}
}

func TestPoller_Refresh(t *testing.T) {
	engine := &mockEngine{}
	p := New(Config{Interval: time.Hour}, engine, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p.ctx = ctx

	p.refresh()

	if p.Cycles() != 1 {
		t.Errorf("Cycles = %d, want 1", p.Cycles())
	}
	if got := p.FindArbitrageOpportunities(ctx).MarketsScanned; got != 1 {
		t.Errorf("scan = %d, want cached result 1", got)
	}
	if got := p.DashboardStats(ctx).Stats.TotalMarkets; got != 1 {
		t.Errorf("dashboard = %d, want cached result 1", got)
	}
	if engine.scans.Load() != 1 || engine.dashboards.Load() != 1 {
		t.Errorf("engine calls = %d/%d, want 1/1", engine.scans.Load(), engine.dashboards.Load())
	}
}

func TestPoller_FallsThroughBeforeFirstCycle(t *testing.T) {
	engine := &mockEngine{}
	p := New(Config{Interval: time.Hour}, engine, nil)

	ctx := context.Background()
	p.FindArbitrageOpportunities(ctx)
	p.DashboardStats(ctx)

	if engine.scans.Load() != 1 || engine.dashboards.Load() != 1 {
		t.Errorf("engine calls = %d/%d, want live 1/1", engine.scans.Load(), engine.dashboards.Load())
	}

	if _, err := p.MarketAnalytics(ctx, "T"); err != nil || engine.markets.Load() != 1 {
		t.Errorf("MarketAnalytics should always be live")
	}
}

func TestPoller_CanceledCycleDiscarded(t *testing.T) {
	engine := &mockEngine{}
	p := New(Config{Interval: time.Hour}, engine, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.ctx = ctx

	p.refresh()

	if p.Cycles() != 0 {
		t.Errorf("Cycles = %d, want 0", p.Cycles())
	}
}

func TestPoller_StartStop(t *testing.T) {
	engine := &mockEngine{}
	p := New(Config{Interval: 20 * time.Millisecond}, engine, nil)

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for p.Cycles() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("Cycles = %d, want at least 2", p.Cycles())
		}
		time.Sleep(5 * time.Millisecond)
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}

	cycles := p.Cycles()
	time.Sleep(50 * time.Millisecond)
	if p.Cycles() != cycles {
		t.Error("poller kept running after Stop")
	}
}
