// Package api provides the Kalshi REST client used as the analytics gateway.
//
// REST endpoints:
//   - Production: https://api.elections.kalshi.com/trade-api/v2
//   - Demo: https://demo-api.kalshi.co/trade-api/v2
//
// Every HTTP attempt, retries included, is admitted by the shared rate
// limiter before it is sent. Retries (429 and 5xx, jittered exponential
// backoff) and request signing live here; callers never retry.
//
// Responses are decoded into internal/model values at this boundary. Order
// books are normalized to four explicit level sequences; YES asks are the
// complements of NO bids and vice versa.
package api
