// Package poller refreshes market-wide analytics in the background.
//
// The Poller:
//   - Runs the arbitrage scan and dashboard aggregation on a fixed interval
//   - Keeps the latest result of each in memory
//   - Serves those results to HTTP callers so a request never waits on a
//     full market scan once the first cycle has completed
//   - Falls through to a live computation until then
package poller
