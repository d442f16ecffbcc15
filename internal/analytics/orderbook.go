package analytics

import (
	"math"
	"sort"

	"github.com/rickgao/kalshi-analytics/internal/model"
)

// Order book sentinels and thresholds.
const (
	EmptyAskSweepPrice = 1.0
	EmptyBidSweepPrice = 0.0
	NeutralMidPrice    = 0.5
	GapThreshold       = 0.01

	// priceEpsilon absorbs float noise in cent arithmetic (0.45 - 0.44 > 0.01).
	priceEpsilon = 1e-9
)

// BookSide selects the sweep direction.
type BookSide int

const (
	Bids BookSide = iota // best price is the highest
	Asks                 // best price is the lowest
)

// Gap is a price interval with no resting YES orders wider than GapThreshold.
type Gap struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Delta float64 `json:"delta"`
}

// OrderBookAnalytics summarizes the YES side of a book.
type OrderBookAnalytics struct {
	Ticker         string  `json:"ticker"`
	BestBid        float64 `json:"best_bid"`
	BestAsk        float64 `json:"best_ask"`
	MidPrice       float64 `json:"mid_price"`
	Spread         float64 `json:"spread"`
	SpreadPct      float64 `json:"spread_percentage"`
	SweepPrice100  float64 `json:"sweep_price_100"`
	SweepPrice1000 float64 `json:"sweep_price_1000"`
	BidPrice100    float64 `json:"bid_price_100"`
	AskPrice100    float64 `json:"ask_price_100"`
	BidPrice1000   float64 `json:"bid_price_1000"`
	AskPrice1000   float64 `json:"ask_price_1000"`
	TotalBidVolume int     `json:"total_bid_volume"`
	TotalAskVolume int     `json:"total_ask_volume"`
	Gaps           []Gap   `json:"gaps"`
}

// AnalyzeOrderBook computes OrderBookAnalytics for book.
func AnalyzeOrderBook(book model.OrderBook) OrderBookAnalytics {
	ask100 := SweepPrice(book.YesAsks, 100, Asks)
	ask1000 := SweepPrice(book.YesAsks, 1000, Asks)

	return OrderBookAnalytics{
		Ticker:         book.Ticker,
		BestBid:        BestBid(book),
		BestAsk:        BestAsk(book),
		MidPrice:       MidPrice(book),
		Spread:         Spread(book),
		SpreadPct:      SpreadPct(book),
		SweepPrice100:  ask100,
		SweepPrice1000: ask1000,
		BidPrice100:    SweepPrice(book.YesBids, 100, Bids),
		AskPrice100:    ask100,
		BidPrice1000:   SweepPrice(book.YesBids, 1000, Bids),
		AskPrice1000:   ask1000,
		TotalBidVolume: TotalSize(book.YesBids),
		TotalAskVolume: TotalSize(book.YesAsks),
		Gaps:           DetectGaps(book),
	}
}

// BestBid returns the highest YES bid, or 0 if there are none.
func BestBid(book model.OrderBook) float64 {
	best := 0.0
	for _, l := range book.YesBids {
		best = math.Max(best, l.Price)
	}
	return best
}

// BestAsk returns the lowest YES ask, or 1 if there are none.
func BestAsk(book model.OrderBook) float64 {
	best := 1.0
	for _, l := range book.YesAsks {
		best = math.Min(best, l.Price)
	}
	return best
}

// twoSided reports whether bid and ask form a usable quote.
func twoSided(bid, ask float64) bool {
	return bid > 0 && ask < 1
}

// MidPrice returns the bid/ask midpoint, or NeutralMidPrice without a
// two-sided quote.
func MidPrice(book model.OrderBook) float64 {
	bid, ask := BestBid(book), BestAsk(book)
	if !twoSided(bid, ask) {
		return NeutralMidPrice
	}
	return (bid + ask) / 2
}

// Spread returns best ask minus best bid, or 0 without a two-sided quote.
func Spread(book model.OrderBook) float64 {
	bid, ask := BestBid(book), BestAsk(book)
	if !twoSided(bid, ask) {
		return 0
	}
	return ask - bid
}

// SpreadPct returns the spread as a percentage of the mid price.
func SpreadPct(book model.OrderBook) float64 {
	mid := MidPrice(book)
	if mid <= 0 {
		return 0
	}
	return Spread(book) / mid * 100
}

// SweepPrice returns the size-weighted average price of filling size
// contracts best price first. Levels are sorted on a copy. A book that fills
// nothing returns EmptyAskSweepPrice or EmptyBidSweepPrice.
func SweepPrice(levels []model.Level, size int, side BookSide) float64 {
	empty := EmptyAskSweepPrice
	if side == Bids {
		empty = EmptyBidSweepPrice
	}
	if len(levels) == 0 {
		return empty
	}

	sorted := make([]model.Level, len(levels))
	copy(sorted, levels)
	sort.SliceStable(sorted, func(i, j int) bool {
		if side == Bids {
			return sorted[i].Price > sorted[j].Price
		}
		return sorted[i].Price < sorted[j].Price
	})

	filled := 0
	cost := 0.0
	for _, l := range sorted {
		if filled >= size {
			break
		}
		take := min(l.Size, size-filled)
		if take <= 0 {
			continue
		}
		cost += float64(take) * l.Price
		filled += take
	}

	if filled == 0 {
		return empty
	}
	return cost / float64(filled)
}

// PriceImpact returns the relative distance between the ask sweep price for
// size and the mid price.
func PriceImpact(book model.OrderBook, size int) float64 {
	mid := MidPrice(book)
	if mid <= 0 {
		return 0
	}
	return math.Abs(SweepPrice(book.YesAsks, size, Asks)-mid) / mid
}

// TotalSize sums level sizes.
func TotalSize(levels []model.Level) int {
	total := 0
	for _, l := range levels {
		total += l.Size
	}
	return total
}

// DetectGaps merges YES bids and asks, sorts them by price and reports each
// adjacent pair more than GapThreshold apart.
func DetectGaps(book model.OrderBook) []Gap {
	prices := make([]float64, 0, len(book.YesBids)+len(book.YesAsks))
	for _, l := range book.YesBids {
		prices = append(prices, l.Price)
	}
	for _, l := range book.YesAsks {
		prices = append(prices, l.Price)
	}
	sort.Float64s(prices)

	gaps := []Gap{}
	for i := 1; i < len(prices); i++ {
		delta := prices[i] - prices[i-1]
		if delta > GapThreshold+priceEpsilon {
			gaps = append(gaps, Gap{Low: prices[i-1], High: prices[i], Delta: delta})
		}
	}
	return gaps
}
