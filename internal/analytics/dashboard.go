package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/rickgao/kalshi-analytics/internal/gateway"
	"github.com/rickgao/kalshi-analytics/internal/model"
)

const topMarketCount = 10

// TopMarket is a dashboard row for a high-volume market.
type TopMarket struct {
	Ticker string  `json:"ticker"`
	Title  string  `json:"title"`
	Volume int64   `json:"volume"`
	Price  float64 `json:"price"`
}

// DashboardStats summarizes the fetched market universe.
type DashboardStats struct {
	TotalVolume            int64       `json:"total_volume"`
	ActiveContracts        int         `json:"active_contracts"`
	ArbitrageOpportunities int         `json:"arbitrage_opportunities"`
	AvgLiquidity           float64     `json:"avg_liquidity"`
	AvgSpread              float64     `json:"avg_spread"`
	LiquiditySampled       int         `json:"liquidity_sampled"`
	TotalMarkets           int         `json:"total_markets"`
	TotalEvents            int         `json:"total_events"`
	TopVolumeMarkets       []TopMarket `json:"top_volume_markets"`
}

// DashboardResult pairs the stats with anything skipped to produce them.
type DashboardResult struct {
	Stats       DashboardStats `json:"stats"`
	Diagnostics []Diagnostic   `json:"diagnostics"`
}

// DashboardStats aggregates the market universe. If the market or event list
// cannot be fetched the stats are zeroed; the failure is in Diagnostics.
func (e *Engine) DashboardStats(ctx context.Context) DashboardResult {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	diags := e.newDiagnosticLog()

	stats := e.dashboard(ctx, diags)

	e.metrics.ObserveScan("dashboard", time.Since(start))
	return DashboardResult{Stats: stats, Diagnostics: diags.list()}
}

func (e *Engine) dashboard(ctx context.Context, diags *diagnosticLog) DashboardStats {
	markets, err := e.gw.FetchMarkets(ctx, gateway.MarketQuery{Limit: e.cfg.DashboardMarketLimit})
	if err != nil {
		diags.add(KindMarkets, "", err)
		return zeroStats()
	}
	events, err := e.gw.FetchEvents(ctx, gateway.EventQuery{Limit: e.cfg.DashboardEventLimit})
	if err != nil {
		diags.add(KindEvents, "", err)
		return zeroStats()
	}

	var (
		active      []model.Market
		totalVolume int64
	)
	for _, m := range markets {
		totalVolume += m.Volume
		if m.IsOpen() {
			active = append(active, m)
		}
	}

	scan := e.scan(ctx, diags)

	sample := active
	if len(sample) > e.cfg.LiquiditySample {
		sample = sample[:e.cfg.LiquiditySample]
	}
	avgLiquidity, avgSpread, sampled := e.sampleLiquidity(ctx, sample, diags)

	return DashboardStats{
		TotalVolume:            totalVolume,
		ActiveContracts:        len(active),
		ArbitrageOpportunities: len(scan.Opportunities),
		AvgLiquidity:           avgLiquidity,
		AvgSpread:              avgSpread,
		LiquiditySampled:       sampled,
		TotalMarkets:           len(markets),
		TotalEvents:            len(events),
		TopVolumeMarkets:       TopByVolume(markets, topMarketCount),
	}
}

// sampleLiquidity averages LiquidityScore over the books that load, and the
// bid-ask spread over those with a two-sided quote.
func (e *Engine) sampleLiquidity(ctx context.Context, sample []model.Market, diags *diagnosticLog) (avgLiquidity, avgSpread float64, sampled int) {
	books, ok := e.fetchBooks(ctx, sample, diags)

	var liquiditySum, spreadSum float64
	quoted := 0
	for i, book := range books {
		if !ok[i] {
			continue
		}
		sampled++
		liquiditySum += LiquidityScore(book)
		if twoSided(BestBid(book), BestAsk(book)) {
			spreadSum += Spread(book)
			quoted++
		}
	}

	if sampled > 0 {
		avgLiquidity = liquiditySum / float64(sampled)
	}
	if quoted > 0 {
		avgSpread = spreadSum / float64(quoted)
	}
	return avgLiquidity, avgSpread, sampled
}

// TopByVolume returns the n highest-volume markets, ties in input order.
// Markets without a last price report 0.
func TopByVolume(markets []model.Market, n int) []TopMarket {
	sorted := make([]model.Market, len(markets))
	copy(sorted, markets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Volume > sorted[j].Volume
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	top := make([]TopMarket, len(sorted))
	for i, m := range sorted {
		price := 0.0
		if m.LastPrice != nil {
			price = *m.LastPrice
		}
		top[i] = TopMarket{Ticker: m.Ticker, Title: m.Title, Volume: m.Volume, Price: price}
	}
	return top
}

func zeroStats() DashboardStats {
	return DashboardStats{TopVolumeMarkets: []TopMarket{}}
}
