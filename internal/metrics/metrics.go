package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "kalshi_analytics"

// Outcome labels for upstream requests.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeRetried = "retried"
)

// Metrics holds the service's collectors.
type Metrics struct {
	limiterWaits     prometheus.Histogram
	upstreamRequests *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	skippedItems     *prometheus.CounterVec
	scanDuration     *prometheus.HistogramVec
	opportunities    prometheus.Gauge
	feedMessages     *prometheus.CounterVec
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		limiterWaits: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "ratelimit",
			Name:      "wait_seconds",
			Help:      "Time callers spent blocked on the outbound rate limiter",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		}),
		upstreamRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Exchange REST requests by operation and outcome",
		}, []string{"operation", "outcome"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Read cache lookups by operation and result",
		}, []string{"operation", "result"}),
		skippedItems: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "skipped_items_total",
			Help:      "Per-item failures skipped during scans, by kind",
		}, []string{"kind"}),
		scanDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "scan_duration_seconds",
			Help:      "Duration of analytics scans",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}, []string{"scan"}),
		opportunities: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "analytics",
			Name:      "arbitrage_opportunities",
			Help:      "Opportunities reported by the most recent arbitrage scan",
		}),
		feedMessages: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "messages_total",
			Help:      "Trade feed messages by type",
		}, []string{"type"}),
	}
}

// ObserveLimiterWait records one rate limiter wait.
func (m *Metrics) ObserveLimiterWait(d time.Duration) {
	if m == nil {
		return
	}
	m.limiterWaits.Observe(d.Seconds())
}

// ObserveRequest counts one upstream request attempt.
func (m *Metrics) ObserveRequest(operation, outcome string) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(operation, outcome).Inc()
}

// ObserveCache counts one cache lookup.
func (m *Metrics) ObserveCache(operation string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(operation, result).Inc()
}

// ObserveSkipped counts one skipped item.
func (m *Metrics) ObserveSkipped(kind string) {
	if m == nil {
		return
	}
	m.skippedItems.WithLabelValues(kind).Inc()
}

// ObserveScan records the duration of one scan.
func (m *Metrics) ObserveScan(scan string, d time.Duration) {
	if m == nil {
		return
	}
	m.scanDuration.WithLabelValues(scan).Observe(d.Seconds())
}

// SetOpportunities sets the current opportunity count.
func (m *Metrics) SetOpportunities(n int) {
	if m == nil {
		return
	}
	m.opportunities.Set(float64(n))
}

// ObserveFeedMessage counts one feed message.
func (m *Metrics) ObserveFeedMessage(msgType string) {
	if m == nil {
		return
	}
	m.feedMessages.WithLabelValues(msgType).Inc()
}
