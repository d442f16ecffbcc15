package api

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/kalshi-analytics/internal/model"
)

// Decode errors.
var (
	ErrMalformedLevel = errors.New("malformed order book level")
	ErrMalformedTrade = errors.New("malformed trade")
)

// ToModel converts an APIMarket to model.Market. Prices outside [0, 1] are
// dropped. The series ticker falls back to the event ticker prefix.
func (m *APIMarket) ToModel() model.Market {
	series := m.SeriesTicker
	if series == "" {
		series = model.SeriesFromEvent(m.EventTicker)
	}

	return model.Market{
		Ticker:       m.Ticker,
		EventTicker:  m.EventTicker,
		SeriesTicker: series,
		Title:        m.Title,
		Subtitle:     m.Subtitle,
		Status:       model.ParseStatus(m.Status),
		Volume:       max(m.Volume, 0),
		OpenInterest: m.OpenInterest,
		LastPrice:    optionalPrice(m.LastPriceDollars, m.LastPrice),
		YesPrice:     optionalPrice(m.YesBidDollars, m.YesBid),
		NoPrice:      optionalPrice(m.NoBidDollars, m.NoBid),
		Expiry:       model.ParseTimestamp(m.ExpirationTime),
		CloseTime:    model.ParseTimestamp(m.CloseTime),
	}
}

// optionalPrice prefers the dollar string; a zero cent price means absent.
func optionalPrice(dollars string, cents int) *float64 {
	if dollars != "" {
		return model.OptionalDollars(dollars)
	}
	if cents <= 0 || cents > 100 {
		return nil
	}
	p := model.CentsToPrice(cents)
	return &p
}

// ToModel converts an APIEvent to model.Event.
func (e *APIEvent) ToModel() model.Event {
	return model.Event{
		EventTicker:  e.EventTicker,
		SeriesTicker: e.SeriesTicker,
		Title:        e.Title,
		Category:     e.Category,
	}
}

// ToModel converts resting bids into a canonical model.OrderBook:
// YES bids and NO bids as returned, YES asks at 1 - p of each NO bid and NO
// asks at 1 - p of each YES bid. Dollar levels take precedence over cent
// levels per side. Any malformed level rejects the whole book.
func (o *APIOrderbook) ToModel(ticker string, capturedAt time.Time) (model.OrderBook, error) {
	yes, err := decodeSide(o.YesDollars, o.Yes)
	if err != nil {
		return model.OrderBook{}, fmt.Errorf("yes side: %w", err)
	}
	no, err := decodeSide(o.NoDollars, o.No)
	if err != nil {
		return model.OrderBook{}, fmt.Errorf("no side: %w", err)
	}

	return model.OrderBook{
		Ticker:     ticker,
		YesBids:    yes,
		YesAsks:    complementLevels(no),
		NoBids:     no,
		NoAsks:     complementLevels(yes),
		CapturedAt: capturedAt,
	}, nil
}

func decodeSide(dollars [][]any, cents [][]int) ([]model.Level, error) {
	if len(dollars) > 0 {
		levels := make([]model.Level, 0, len(dollars))
		for i, raw := range dollars {
			lvl, err := dollarLevel(raw)
			if err != nil {
				return nil, fmt.Errorf("level %d: %w", i, err)
			}
			levels = append(levels, lvl)
		}
		return levels, nil
	}

	levels := make([]model.Level, 0, len(cents))
	for i, raw := range cents {
		if len(raw) != 2 {
			return nil, fmt.Errorf("level %d: %w: want [price, size], got %d values", i, ErrMalformedLevel, len(raw))
		}
		if raw[0] < 0 || raw[0] > 100 || raw[1] < 0 {
			return nil, fmt.Errorf("level %d: %w: %v", i, ErrMalformedLevel, raw)
		}
		levels = append(levels, model.Level{Price: model.CentsToPrice(raw[0]), Size: raw[1]})
	}
	return levels, nil
}

func dollarLevel(raw []any) (model.Level, error) {
	if len(raw) != 2 {
		return model.Level{}, fmt.Errorf("%w: want [price, size], got %d values", ErrMalformedLevel, len(raw))
	}

	var price float64
	switch v := raw[0].(type) {
	case string:
		p, ok := model.ParseDollars(v)
		if !ok {
			return model.Level{}, fmt.Errorf("%w: price %q", ErrMalformedLevel, v)
		}
		price = p
	case float64:
		if !model.ValidPrice(v) {
			return model.Level{}, fmt.Errorf("%w: price %v", ErrMalformedLevel, v)
		}
		price = v
	default:
		return model.Level{}, fmt.Errorf("%w: price of type %T", ErrMalformedLevel, raw[0])
	}

	size, ok := raw[1].(float64)
	if !ok || size < 0 || size != math.Trunc(size) {
		return model.Level{}, fmt.Errorf("%w: size %v", ErrMalformedLevel, raw[1])
	}

	return model.Level{Price: price, Size: int(size)}, nil
}

func complementLevels(bids []model.Level) []model.Level {
	asks := make([]model.Level, len(bids))
	for i, b := range bids {
		asks[i] = model.Level{Price: model.Complement(b.Price), Size: b.Size}
	}
	return asks
}

// ToModel converts an APITrade to model.Trade.
func (t *APITrade) ToModel() (model.Trade, error) {
	id, err := uuid.Parse(t.TradeID)
	if err != nil {
		return model.Trade{}, fmt.Errorf("%w: trade_id %q: %v", ErrMalformedTrade, t.TradeID, err)
	}

	var price float64
	if t.YesPriceDollars != "" {
		p, ok := model.ParseDollars(t.YesPriceDollars)
		if !ok {
			return model.Trade{}, fmt.Errorf("%w: yes_price_dollars %q", ErrMalformedTrade, t.YesPriceDollars)
		}
		price = p
	} else {
		if t.YesPrice < 0 || t.YesPrice > 100 {
			return model.Trade{}, fmt.Errorf("%w: yes_price %d", ErrMalformedTrade, t.YesPrice)
		}
		price = model.CentsToPrice(t.YesPrice)
	}

	if t.Count < 0 {
		return model.Trade{}, fmt.Errorf("%w: count %d", ErrMalformedTrade, t.Count)
	}

	ts := model.ParseTimestamp(t.CreatedTime)
	if ts.IsZero() {
		return model.Trade{}, fmt.Errorf("%w: created_time %q", ErrMalformedTrade, t.CreatedTime)
	}

	return model.Trade{
		Ticker:    t.Ticker,
		TradeID:   id,
		Price:     price,
		Size:      t.Count,
		Side:      model.ParseSide(t.TakerSide),
		Timestamp: ts,
	}, nil
}
