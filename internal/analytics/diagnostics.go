package analytics

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/rickgao/kalshi-analytics/internal/metrics"
)

// DiagnosticKind names what failed to load.
type DiagnosticKind string

const (
	KindMarkets   DiagnosticKind = "markets"
	KindEvents    DiagnosticKind = "events"
	KindOrderBook DiagnosticKind = "orderbook"
)

// Diagnostic records one item skipped during a scan.
type Diagnostic struct {
	Kind DiagnosticKind
	Item string
	Err  error
}

// MarshalJSON encodes the error as its message.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	msg := ""
	if d.Err != nil {
		msg = d.Err.Error()
	}
	return json.Marshal(struct {
		Kind  DiagnosticKind `json:"kind"`
		Item  string         `json:"item,omitempty"`
		Error string         `json:"error"`
	}{d.Kind, d.Item, msg})
}

// diagnosticLog collects diagnostics from concurrent fetches.
type diagnosticLog struct {
	mu      sync.Mutex
	items   []Diagnostic
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func (l *diagnosticLog) add(kind DiagnosticKind, item string, err error) {
	l.logger.Warn("skipping item", "kind", kind, "item", item, "error", err)
	l.metrics.ObserveSkipped(string(kind))

	l.mu.Lock()
	l.items = append(l.items, Diagnostic{Kind: kind, Item: item, Err: err})
	l.mu.Unlock()
}

func (l *diagnosticLog) list() []Diagnostic {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Diagnostic, len(l.items))
	copy(out, l.items)
	return out
}
