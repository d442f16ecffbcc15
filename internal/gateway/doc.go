// Package gateway defines the exchange access surface consumed by the
// analytics layer, plus decorators that sit in front of it:
//
//   - NewCached: TTL read cache keyed by operation and parameters
//   - WithTradeSource: serves FetchTrades from a live tape or a recorded store
//
// Implementations own retries, rate limiting and authentication. Callers treat
// every operation as fallible and never retry.
package gateway
