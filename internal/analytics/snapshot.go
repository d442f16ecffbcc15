package analytics

import (
	"time"

	"github.com/rickgao/kalshi-analytics/internal/model"
)

// Snapshot bundles every per-market measure computed at one instant.
type Snapshot struct {
	Ticker          string             `json:"ticker"`
	Volatility      float64            `json:"volatility"`
	Momentum        float64            `json:"momentum"`
	VolumeTrend     float64            `json:"volume_trend"`
	PriceEfficiency float64            `json:"price_efficiency"`
	LiquidityScore  float64            `json:"liquidity_score"`
	RiskScore       float64            `json:"risk_score"`
	OrderBook       OrderBookAnalytics `json:"orderbook_analytics"`
	Liquidity       LiquidityMetrics   `json:"liquidity_metrics"`
	RecentTrades    []model.Trade      `json:"recent_trades"`
	ComputedAt      time.Time          `json:"computed_at"`
}

// CalculateMarketAnalytics computes a Snapshot. trades must be oldest first.
func CalculateMarketAnalytics(market model.Market, book model.OrderBook, trades []model.Trade, now time.Time) Snapshot {
	recent := lastTrades(trades, StatsWindow)
	recentCopy := make([]model.Trade, len(recent))
	copy(recentCopy, recent)

	return Snapshot{
		Ticker:          market.Ticker,
		Volatility:      Volatility(trades),
		Momentum:        Momentum(trades),
		VolumeTrend:     VolumeTrend(trades),
		PriceEfficiency: PriceEfficiency(trades),
		LiquidityScore:  LiquidityScore(book),
		RiskScore:       RiskScore(market, book, trades, now),
		OrderBook:       AnalyzeOrderBook(book),
		Liquidity:       EstimateLiquidity(book, trades),
		RecentTrades:    recentCopy,
		ComputedAt:      now,
	}
}
