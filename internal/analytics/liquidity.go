package analytics

import (
	"math"

	"github.com/rickgao/kalshi-analytics/internal/model"
)

// Liquidity score weights and normalizers.
const (
	spreadWeight = 0.4
	volumeWeight = 0.4
	levelsWeight = 0.2

	spreadScale   = 10   // a spread of 0.10 scores 0
	volumeNorm    = 1000 // contracts resting for a full volume score
	levelsNorm    = 20   // price levels for a full levels score
	depthBand     = 0.01 // distance from best price counted as depth
	avgSpreadLast = 20
)

// LiquidityMetrics holds spread and depth estimates for one market.
type LiquidityMetrics struct {
	AvgSpread            float64 `json:"avg_spread"`
	MarketDepth          float64 `json:"market_depth"`
	BidAskSpread         float64 `json:"bid_ask_spread"`
	VolumeWeightedSpread float64 `json:"volume_weighted_spread"`
	PriceImpact100       float64 `json:"price_impact_100"`
	PriceImpact1000      float64 `json:"price_impact_1000"`
}

// LiquidityScore combines spread, resting volume and level count into [0, 1].
// Without a two-sided quote the spread counts as 1.
func LiquidityScore(book model.OrderBook) float64 {
	bid, ask := BestBid(book), BestAsk(book)
	spread := 1.0
	if twoSided(bid, ask) {
		spread = ask - bid
	}

	spreadScore := clamp01(1 - spread*spreadScale)
	volumeScore := clamp01(float64(TotalSize(book.YesBids)+TotalSize(book.YesAsks)) / volumeNorm)
	levelsScore := clamp01(float64(len(book.YesBids)+len(book.YesAsks)) / levelsNorm)

	return clamp01(spreadWeight*spreadScore + volumeWeight*volumeScore + levelsWeight*levelsScore)
}

// EstimateLiquidity computes LiquidityMetrics from a book and its recent trades.
func EstimateLiquidity(book model.OrderBook, trades []model.Trade) LiquidityMetrics {
	bidAsk := Spread(book)
	avg := AvgSpread(trades, bidAsk)

	return LiquidityMetrics{
		AvgSpread:            avg,
		MarketDepth:          MarketDepth(book),
		BidAskSpread:         bidAsk,
		VolumeWeightedSpread: VolumeWeightedSpread(trades, avg),
		PriceImpact100:       PriceImpact(book, 100),
		PriceImpact1000:      PriceImpact(book, 1000),
	}
}

// MarketDepth averages the size resting within one cent of the best bid and
// within one cent of the best ask. Levels exactly one cent away are excluded.
func MarketDepth(book model.OrderBook) float64 {
	bid, ask := BestBid(book), BestAsk(book)
	return float64(sizeNear(book.YesBids, bid)+sizeNear(book.YesAsks, ask)) / 2
}

func sizeNear(levels []model.Level, best float64) int {
	total := 0
	for _, l := range levels {
		if math.Abs(l.Price-best) < depthBand-priceEpsilon {
			total += l.Size
		}
	}
	return total
}

// AvgSpread estimates the spread from the last 20 trades as the mean of
// |price - 0.5| * 2, falling back to bidAsk without trades.
func AvgSpread(trades []model.Trade, bidAsk float64) float64 {
	recent := lastTrades(trades, avgSpreadLast)
	if len(recent) == 0 {
		return bidAsk
	}

	sum := 0.0
	for _, t := range recent {
		sum += math.Abs(t.Price-0.5) * 2
	}
	return sum / float64(len(recent))
}

// VolumeWeightedSpread weights avgSpread by trade size over the last 50
// trades. Every trade carries the same spread estimate, so the result equals
// avgSpread whenever any size traded.
func VolumeWeightedSpread(trades []model.Trade, avgSpread float64) float64 {
	recent := lastTrades(trades, StatsWindow)

	total := 0
	weighted := 0.0
	for _, t := range recent {
		total += t.Size
		weighted += float64(t.Size) * avgSpread
	}
	if total <= 0 {
		return avgSpread
	}
	return weighted / float64(total)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

// lastTrades returns the trailing n trades without copying.
func lastTrades(trades []model.Trade, n int) []model.Trade {
	if len(trades) > n {
		return trades[len(trades)-n:]
	}
	return trades
}
