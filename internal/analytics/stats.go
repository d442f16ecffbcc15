package analytics

import (
	"math"
	"time"

	"github.com/rickgao/kalshi-analytics/internal/model"
)

// Trade window sizes and neutral values.
const (
	StatsWindow       = 50
	ShortWindow       = 10
	NeutralEfficiency = 0.5
	NeutralTimeRisk   = 0.5

	minEfficiencyTrades = 5
	timeRiskDays        = 30
	volumeRiskNorm      = 10000
)

// Volatility is the population standard deviation of consecutive simple
// returns over the last 50 trades. Pairs with a zero prior price are skipped.
func Volatility(trades []model.Trade) float64 {
	recent := lastTrades(trades, StatsWindow)

	returns := make([]float64, 0, len(recent))
	for i := 1; i < len(recent); i++ {
		prev := recent[i-1].Price
		if prev <= 0 {
			continue
		}
		returns = append(returns, (recent[i].Price-prev)/prev)
	}
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	return math.Sqrt(variance / float64(len(returns)))
}

// Momentum compares the mean price of the last 10 trades with the 10 before
// them. Fewer than 20 trades yields 0.
func Momentum(trades []model.Trade) float64 {
	recent, prior, ok := shortWindows(trades)
	if !ok {
		return 0
	}

	recentMean := meanPrice(recent)
	priorMean := meanPrice(prior)
	if priorMean <= 0 {
		return 0
	}
	return (recentMean - priorMean) / priorMean
}

// VolumeTrend compares the summed size of the last 10 trades with the 10
// before them. Fewer than 20 trades yields 0.
func VolumeTrend(trades []model.Trade) float64 {
	recent, prior, ok := shortWindows(trades)
	if !ok {
		return 0
	}

	recentVol := TotalTradeSize(recent)
	priorVol := TotalTradeSize(prior)
	if priorVol <= 0 {
		return 0
	}
	return float64(recentVol-priorVol) / float64(priorVol)
}

// shortWindows splits off the last two windows of ShortWindow trades.
func shortWindows(trades []model.Trade) (recent, prior []model.Trade, ok bool) {
	n := len(trades)
	if n < 2*ShortWindow {
		return nil, nil, false
	}
	return trades[n-ShortWindow:], trades[n-2*ShortWindow : n-ShortWindow], true
}

func meanPrice(trades []model.Trade) float64 {
	if len(trades) == 0 {
		return 0
	}
	sum := 0.0
	for _, t := range trades {
		sum += t.Price
	}
	return sum / float64(len(trades))
}

// TotalTradeSize sums trade sizes.
func TotalTradeSize(trades []model.Trade) int {
	total := 0
	for _, t := range trades {
		total += t.Size
	}
	return total
}

// PriceEfficiency is 1 - |lag-1 autocorrelation| of price changes over the
// last 50 trades, clamped to [0, 1]. Short or constant windows score 0.5.
func PriceEfficiency(trades []model.Trade) float64 {
	recent := lastTrades(trades, StatsWindow)
	if len(recent) < minEfficiencyTrades {
		return NeutralEfficiency
	}

	diffs := make([]float64, len(recent)-1)
	for i := 1; i < len(recent); i++ {
		diffs[i-1] = recent[i].Price - recent[i-1].Price
	}
	if len(diffs) < 2 {
		return NeutralEfficiency
	}

	r, ok := correlation(diffs[:len(diffs)-1], diffs[1:])
	if !ok {
		return NeutralEfficiency
	}
	return clamp01(1 - math.Abs(r))
}

// correlation returns the Pearson correlation of x and y, which must have
// equal length. ok is false when either series has zero variance.
func correlation(x, y []float64) (float64, bool) {
	n := float64(len(x))
	if n < 2 {
		return 0, false
	}

	var mx, my float64
	for i := range x {
		mx += x[i]
		my += y[i]
	}
	mx /= n
	my /= n

	var sxy, sxx, syy float64
	for i := range x {
		dx, dy := x[i]-mx, y[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return 0, false
	}

	r := sxy / math.Sqrt(sxx*syy)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return r, true
}

// DaysToExpiry returns whole days from now until expiry, rounded down.
func DaysToExpiry(expiry, now time.Time) int {
	return int(math.Floor(expiry.Sub(now).Hours() / 24))
}

// TimeRisk rises linearly as expiry approaches within 30 days. Markets without
// an expiry score NeutralTimeRisk.
func TimeRisk(market model.Market, now time.Time) float64 {
	if !market.HasExpiry() {
		return NeutralTimeRisk
	}
	days := DaysToExpiry(market.Expiry, now)
	return clamp01(1 - float64(days)/timeRiskDays)
}

// VolumeRisk falls linearly to 0 at 10000 contracts traded.
func VolumeRisk(market model.Market) float64 {
	return clamp01(1 - float64(market.Volume)/volumeRiskNorm)
}

// RiskScore combines volatility, illiquidity, time to expiry and thin volume
// into [0, 1].
func RiskScore(market model.Market, book model.OrderBook, trades []model.Trade, now time.Time) float64 {
	return clamp01(0.3*Volatility(trades) +
		0.3*(1-LiquidityScore(book)) +
		0.2*TimeRisk(market, now) +
		0.2*VolumeRisk(market))
}
