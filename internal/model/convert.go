package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Price scales used by the exchange and by kalshi-data gatherers.
const (
	centsPerDollar    = 100
	internalPerDollar = 100_000 // hundred-thousandths
)

// ParseDollars parses a dollar string ("0.52", "0.5250") into a probability.
// Returns false for empty, malformed or out-of-range input.
func ParseDollars(dollars string) (float64, bool) {
	dollars = strings.TrimSpace(dollars)
	if dollars == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(dollars)
	if err != nil {
		return 0, false
	}

	p := d.InexactFloat64()
	if !ValidPrice(p) {
		return 0, false
	}
	return p, true
}

// CentsToPrice converts an integer cent price (52) to a probability (0.52).
func CentsToPrice(cents int) float64 {
	return decimal.NewFromInt(int64(cents)).Div(decimal.NewFromInt(centsPerDollar)).InexactFloat64()
}

// InternalToPrice converts hundred-thousandths (52000) to a probability (0.52).
func InternalToPrice(internal int) float64 {
	return decimal.NewFromInt(int64(internal)).Div(decimal.NewFromInt(internalPerDollar)).InexactFloat64()
}

// Complement returns 1 - p rounded to the exchange's sub-penny precision, so
// that complements of cent prices stay exact (1 - 0.48 = 0.52, not 0.52000000000000002).
func Complement(p float64) float64 {
	return decimal.NewFromInt(1).Sub(decimal.NewFromFloat(p)).Round(5).InexactFloat64()
}

// ValidPrice reports whether p is a probability.
func ValidPrice(p float64) bool {
	return p >= 0 && p <= 1
}

// OptionalDollars parses a dollar string into an optional price.
func OptionalDollars(dollars string) *float64 {
	p, ok := ParseDollars(dollars)
	if !ok {
		return nil
	}
	return &p
}

// ParseTimestamp parses an ISO 8601 timestamp. Returns the zero time for empty
// or invalid input.
func ParseTimestamp(iso string) time.Time {
	if iso == "" {
		return time.Time{}
	}

	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// ParseStatus maps the exchange's lifecycle states onto open/closed/settled.
func ParseStatus(status string) MarketStatus {
	switch strings.ToLower(status) {
	case "open", "active":
		return StatusOpen
	case "settled", "finalized", "determined":
		return StatusSettled
	default:
		return StatusClosed
	}
}

// ParseSide maps a taker side string onto a Side. Unknown values map to YES.
func ParseSide(side string) Side {
	if strings.EqualFold(side, string(SideNo)) {
		return SideNo
	}
	return SideYes
}

// SeriesFromEvent derives a series ticker from an event ticker ("KXHIGHNY-24DEC01" -> "KXHIGHNY").
func SeriesFromEvent(eventTicker string) string {
	series, _, _ := strings.Cut(eventTicker, "-")
	return series
}
