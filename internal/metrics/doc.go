// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Rate limiter waits
//   - Upstream request outcomes by operation
//   - Read cache hits and misses
//   - Items skipped during scans, by kind
//   - Scan durations and the current opportunity count
//   - Trade feed message rates
//
// All methods are safe to call on a nil *Metrics.
package metrics
