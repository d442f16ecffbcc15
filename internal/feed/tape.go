package feed

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/rickgao/kalshi-analytics/internal/gateway"
	"github.com/rickgao/kalshi-analytics/internal/model"
)

var _ gateway.TradeSource = (*Tape)(nil)

// Tape keeps the most recent trades of every market seen on the feed.
// It is safe for concurrent use.
type Tape struct {
	perMarket int

	mu      sync.RWMutex
	markets map[string]*marketTape
}

type marketTape struct {
	trades []model.Trade // oldest first
	ids    map[uuid.UUID]struct{}
}

// NewTape creates a Tape holding up to perMarket trades per market.
func NewTape(perMarket int) *Tape {
	if perMarket < 1 {
		perMarket = 1
	}
	return &Tape{
		perMarket: perMarket,
		markets:   make(map[string]*marketTape),
	}
}

// Add records a trade. Duplicate trade IDs are ignored; late arrivals are
// inserted in timestamp order. Reports whether the trade was recorded.
func (t *Tape) Add(trade model.Trade) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.markets[trade.Ticker]
	if !ok {
		m = &marketTape{ids: make(map[uuid.UUID]struct{})}
		t.markets[trade.Ticker] = m
	}
	if _, dup := m.ids[trade.TradeID]; dup {
		return false
	}

	// First index with a later timestamp; equal timestamps keep arrival order.
	i := sort.Search(len(m.trades), func(i int) bool {
		return m.trades[i].Timestamp.After(trade.Timestamp)
	})
	if i == 0 && len(m.trades) >= t.perMarket {
		// Older than everything retained.
		return false
	}
	m.trades = append(m.trades, model.Trade{})
	copy(m.trades[i+1:], m.trades[i:])
	m.trades[i] = trade
	m.ids[trade.TradeID] = struct{}{}

	if over := len(m.trades) - t.perMarket; over > 0 {
		for _, old := range m.trades[:over] {
			delete(m.ids, old.TradeID)
		}
		m.trades = append(m.trades[:0], m.trades[over:]...)
	}
	return true
}

// FetchTrades returns up to limit of the newest trades for ticker, oldest
// first. A limit of zero or less returns everything retained.
func (t *Tape) FetchTrades(_ context.Context, ticker string, limit int) ([]model.Trade, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	m, ok := t.markets[ticker]
	if !ok {
		return []model.Trade{}, nil
	}

	trades := m.trades
	if limit > 0 && len(trades) > limit {
		trades = trades[len(trades)-limit:]
	}
	out := make([]model.Trade, len(trades))
	copy(out, trades)
	return out, nil
}

// Len returns the number of trades retained for ticker.
func (t *Tape) Len(ticker string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if m, ok := t.markets[ticker]; ok {
		return len(m.trades)
	}
	return 0
}

// Markets returns the number of markets with retained trades.
func (t *Tape) Markets() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.markets)
}
