// Package model defines the market data types shared by the gateway, the
// trade feed and the analytics engine.
//
// Conventions:
//   - Prices: float64 probabilities in [0, 1] (0.52 = $0.52 per YES contract)
//   - Sizes: integer contract counts
//   - Timestamps: time.Time in UTC; a zero time means "not provided"
//   - IDs: string for tickers, uuid.UUID for trade IDs
//
// Values are immutable snapshots. Nothing in this package is safe to mutate
// after it has been handed to another component.
package model
