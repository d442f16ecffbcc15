package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/rickgao/kalshi-analytics/internal/gateway"
	"github.com/rickgao/kalshi-analytics/internal/model"
)

// Confidence grades an arbitrage opportunity.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Opportunity is a crossed pair: buy the YES ask of one market below the
// YES bid of another in the same series.
type Opportunity struct {
	BuyTicker       string     `json:"buy_ticker"`
	SellTicker      string     `json:"sell_ticker"`
	BuyPrice        float64    `json:"buy_price"`
	SellPrice       float64    `json:"sell_price"`
	Spread          float64    `json:"spread"`
	SpreadPct       float64    `json:"spread_percentage"`
	Confidence      Confidence `json:"confidence"`
	PotentialProfit float64    `json:"potential_profit"`
	BuyTitle        string     `json:"buy_title"`
	SellTitle       string     `json:"sell_title"`
	Expiry          time.Time  `json:"expiry,omitempty"`
	BuyVolume       int64      `json:"buy_volume"`
	SellVolume      int64      `json:"sell_volume"`
}

// ScanResult is the outcome of one arbitrage scan. A scan never fails;
// anything skipped is listed in Diagnostics.
type ScanResult struct {
	Opportunities  []Opportunity `json:"opportunities"`
	MarketsScanned int           `json:"markets_scanned"`
	GroupsScanned  int           `json:"groups_scanned"`
	Diagnostics    []Diagnostic  `json:"diagnostics"`
}

// FindArbitrageOpportunities scans up to ScanMarketLimit markets for crossed
// pairs within each series. Upstream failures degrade to fewer or no
// opportunities.
func (e *Engine) FindArbitrageOpportunities(ctx context.Context) ScanResult {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	diags := e.newDiagnosticLog()

	result := e.scan(ctx, diags)
	result.Diagnostics = diags.list()

	e.metrics.ObserveScan("arbitrage", time.Since(start))
	e.metrics.SetOpportunities(len(result.Opportunities))
	e.logger.Info("arbitrage scan complete",
		"markets", result.MarketsScanned,
		"groups", result.GroupsScanned,
		"opportunities", len(result.Opportunities),
		"skipped", len(result.Diagnostics),
		"duration", time.Since(start),
	)
	return result
}

func (e *Engine) scan(ctx context.Context, diags *diagnosticLog) ScanResult {
	markets, err := e.gw.FetchMarkets(ctx, gateway.MarketQuery{Limit: e.cfg.ScanMarketLimit})
	if err != nil {
		diags.add(KindMarkets, "", err)
		return ScanResult{Opportunities: []Opportunity{}}
	}

	groups := GroupBySeries(markets)

	// Each grouped market is fetched once, in one bounded fan-out.
	var members []model.Market
	for _, g := range groups {
		members = append(members, g...)
	}
	books, ok := e.fetchBooks(ctx, members, diags)

	now := e.now()
	var opps []Opportunity
	offset := 0
	for _, g := range groups {
		var (
			live      []model.Market
			liveBooks []model.OrderBook
		)
		for j := range g {
			if ok[offset+j] {
				live = append(live, g[j])
				liveBooks = append(liveBooks, books[offset+j])
			}
		}
		offset += len(g)

		opps = append(opps, e.groupOpportunities(live, liveBooks, now)...)
	}

	return ScanResult{
		Opportunities:  RankOpportunities(opps, e.cfg.MaxOpportunities),
		MarketsScanned: len(markets),
		GroupsScanned:  len(groups),
	}
}

func (e *Engine) groupOpportunities(markets []model.Market, books []model.OrderBook, now time.Time) []Opportunity {
	var opps []Opportunity
	for i := 0; i < len(markets); i++ {
		for j := i + 1; j < len(markets); j++ {
			if opp, ok := AnalyzePair(markets[i], markets[j], books[i], books[j], e.cfg.MinSpreadPct, e.cfg.Notional, now); ok {
				opps = append(opps, opp)
			}
		}
	}
	return opps
}

// GroupBySeries groups markets by series ticker in order of first appearance
// and keeps groups of two or more. Markets without a series are ignored.
func GroupBySeries(markets []model.Market) [][]model.Market {
	index := make(map[string]int)
	var groups [][]model.Market
	for _, m := range markets {
		if m.SeriesTicker == "" {
			continue
		}
		i, seen := index[m.SeriesTicker]
		if !seen {
			i = len(groups)
			index[m.SeriesTicker] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], m)
	}

	kept := groups[:0]
	for _, g := range groups {
		if len(g) >= 2 {
			kept = append(kept, g)
		}
	}
	return kept
}

// AnalyzePair tests buying a and selling b, then buying b and selling a, and
// reports the first direction whose spread percentage exceeds minSpreadPct.
func AnalyzePair(a, b model.Market, bookA, bookB model.OrderBook, minSpreadPct, notional float64, now time.Time) (Opportunity, bool) {
	if opp, ok := crossed(a, b, BestAsk(bookA), BestBid(bookB), minSpreadPct, notional, now); ok {
		return opp, true
	}
	return crossed(b, a, BestAsk(bookB), BestBid(bookA), minSpreadPct, notional, now)
}

func crossed(buy, sell model.Market, ask, bid, minSpreadPct, notional float64, now time.Time) (Opportunity, bool) {
	if ask >= bid || ask <= 0 {
		return Opportunity{}, false
	}

	spread := bid - ask
	pct := spread / ask * 100
	if pct <= minSpreadPct+priceEpsilon {
		return Opportunity{}, false
	}

	return Opportunity{
		BuyTicker:       buy.Ticker,
		SellTicker:      sell.Ticker,
		BuyPrice:        ask,
		SellPrice:       bid,
		Spread:          spread,
		SpreadPct:       pct,
		Confidence:      AssessConfidence(pct, buy, sell, now),
		PotentialProfit: spread * notional,
		BuyTitle:        buy.Title,
		SellTitle:       sell.Title,
		Expiry:          buy.Expiry,
		BuyVolume:       buy.Volume,
		SellVolume:      sell.Volume,
	}, true
}

// ConfidenceScore awards points for spread size, pair volume and time left
// on the buy-side market.
func ConfidenceScore(spreadPct float64, buy, sell model.Market, now time.Time) int {
	score := 0

	switch {
	case spreadPct > 5:
		score += 3
	case spreadPct > 2:
		score += 2
	default:
		score++
	}

	avgVolume := float64(buy.Volume+sell.Volume) / 2
	switch {
	case avgVolume > 10000:
		score += 2
	case avgVolume > 1000:
		score++
	}

	if buy.HasExpiry() && DaysToExpiry(buy.Expiry, now) > 7 {
		score++
	}
	return score
}

// AssessConfidence maps ConfidenceScore onto a grade: 5+ high, 3+ medium.
func AssessConfidence(spreadPct float64, buy, sell model.Market, now time.Time) Confidence {
	switch score := ConfidenceScore(spreadPct, buy, sell, now); {
	case score >= 5:
		return ConfidenceHigh
	case score >= 3:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// RankOpportunities sorts by potential profit, highest first, keeping input
// order between equal profits, and truncates to limit.
func RankOpportunities(opps []Opportunity, limit int) []Opportunity {
	ranked := make([]Opportunity, len(opps))
	copy(ranked, opps)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PotentialProfit > ranked[j].PotentialProfit
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
