package model

import (
	"time"

	"github.com/google/uuid"
)

// MarketStatus is the coarse lifecycle state used by the analytics layer.
type MarketStatus string

const (
	StatusOpen    MarketStatus = "open"
	StatusClosed  MarketStatus = "closed"
	StatusSettled MarketStatus = "settled"
)

// Side identifies the YES or NO side of a binary contract.
type Side string

const (
	SideYes Side = "yes"
	SideNo  Side = "no"
)

// -----------------------------------------------------------------------------
// Reference Types
// -----------------------------------------------------------------------------

// Event groups markets that resolve on the same underlying question.
type Event struct {
	EventTicker  string `json:"event_ticker"`
	SeriesTicker string `json:"series_ticker"`
	Title        string `json:"title"`
	Category     string `json:"category"`
}

// Market is a snapshot of a tradeable prediction market.
type Market struct {
	Ticker       string       `json:"ticker"` // Unique key (e.g., "KXHIGHNY-24DEC01-B45")
	EventTicker  string       `json:"event_ticker"`
	SeriesTicker string       `json:"series_ticker"` // Grouping key for arbitrage
	Title        string       `json:"title"`
	Subtitle     string       `json:"subtitle,omitempty"`
	Status       MarketStatus `json:"status"`

	Volume       int64 `json:"volume"`
	OpenInterest int64 `json:"open_interest"`

	// Optional prices, nil when absent or outside [0, 1].
	LastPrice *float64 `json:"last_price,omitempty"`
	YesPrice  *float64 `json:"yes_price,omitempty"`
	NoPrice   *float64 `json:"no_price,omitempty"`

	Expiry    time.Time `json:"expiry,omitempty"`
	CloseTime time.Time `json:"close_time,omitempty"`
}

// HasExpiry reports whether the market carries an expiry timestamp.
func (m Market) HasExpiry() bool {
	return !m.Expiry.IsZero()
}

// IsOpen reports whether the market is open for trading.
func (m Market) IsOpen() bool {
	return m.Status == StatusOpen
}

// -----------------------------------------------------------------------------
// Order Book
// -----------------------------------------------------------------------------

// Level is a single resting price level.
type Level struct {
	Price float64 `json:"price"` // Probability in [0, 1]
	Size  int     `json:"size"`  // Contracts
}

// OrderBook holds four independent level sequences. Levels are not guaranteed
// to be sorted; consumers that sweep the book sort a copy first.
type OrderBook struct {
	Ticker     string    `json:"ticker"`
	YesBids    []Level   `json:"yes_bids"`
	YesAsks    []Level   `json:"yes_asks"`
	NoBids     []Level   `json:"no_bids"`
	NoAsks     []Level   `json:"no_asks"`
	CapturedAt time.Time `json:"captured_at"`
}

// -----------------------------------------------------------------------------
// Trades
// -----------------------------------------------------------------------------

// Trade is an executed trade. Windows of trades are ordered oldest first.
type Trade struct {
	Ticker    string    `json:"ticker"`
	TradeID   uuid.UUID `json:"trade_id"`
	Price     float64   `json:"price"` // YES price, probability in [0, 1]
	Size      int       `json:"size"`
	Side      Side      `json:"side"` // Taker side
	Timestamp time.Time `json:"timestamp"`
}
