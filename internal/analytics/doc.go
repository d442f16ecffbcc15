// Package analytics derives order book, liquidity, trade statistics and
// cross-market arbitrage signals from exchange data.
//
// The calculators (AnalyzeOrderBook, EstimateLiquidity, Volatility and the
// other trade estimators, CalculateMarketAnalytics) are pure functions over
// model values. Engine adds the fetching orchestration on top of a
// gateway.Gateway: per-market analytics, the arbitrage scan and the
// dashboard summary.
//
// Arithmetic edge cases never produce errors, NaN or Inf. They resolve to
// these values:
//
//	best bid, empty YES bids             0
//	best ask, empty YES asks             1
//	mid price without a two-sided quote  0.5 (two-sided: bid > 0 and ask < 1)
//	spread without a two-sided quote     0
//	spread percentage, mid price 0       0
//	sweep price, empty or unfilled asks  1.0
//	sweep price, empty or unfilled bids  0.0
//	price impact, mid price 0            0
//	spread score without a quote         0 (spread counted as 1)
//	avg spread, no trades                bid-ask spread
//	volume-weighted spread, zero size    avg spread
//	volatility, < 2 usable returns       0
//	momentum, < 20 trades                0
//	momentum, prior mean 0               0
//	volume trend, < 20 trades            0
//	volume trend, prior volume 0         0
//	price efficiency, < 5 trades         0.5
//	price efficiency, zero variance      0.5
//	time risk, no expiry                 0.5
//	arbitrage spread %, ask 0            0 (never an opportunity)
//
// Scores (liquidity, efficiency, risk) are clamped to [0, 1].
//
// Per-item fetch failures during scans are skipped and reported as
// Diagnostic records alongside the result; they never abort a scan.
package analytics
