package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/kalshi-analytics/internal/model"
)

// ParseTrade decodes the msg body of a "trade" message.
func ParseTrade(msg json.RawMessage) (model.Trade, error) {
	var wire tradeWire
	if err := json.Unmarshal(msg, &wire); err != nil {
		return model.Trade{}, fmt.Errorf("%w: %v", ErrInvalidTrade, err)
	}
	return wire.toModel()
}

func (w *tradeWire) toModel() (model.Trade, error) {
	if w.MarketTicker == "" {
		return model.Trade{}, fmt.Errorf("%w: missing market_ticker", ErrInvalidTrade)
	}

	id, err := uuid.Parse(w.TradeID)
	if err != nil {
		return model.Trade{}, fmt.Errorf("%w: trade_id %q: %v", ErrInvalidTrade, w.TradeID, err)
	}

	var price float64
	if w.YesPriceDollars != "" {
		p, ok := model.ParseDollars(w.YesPriceDollars)
		if !ok {
			return model.Trade{}, fmt.Errorf("%w: yes_price_dollars %q", ErrInvalidTrade, w.YesPriceDollars)
		}
		price = p
	} else {
		if w.YesPrice < 0 || w.YesPrice > 100 {
			return model.Trade{}, fmt.Errorf("%w: yes_price %d", ErrInvalidTrade, w.YesPrice)
		}
		price = model.CentsToPrice(w.YesPrice)
	}

	if w.Count < 0 {
		return model.Trade{}, fmt.Errorf("%w: count %d", ErrInvalidTrade, w.Count)
	}
	if w.Ts <= 0 {
		return model.Trade{}, fmt.Errorf("%w: ts %d", ErrInvalidTrade, w.Ts)
	}

	return model.Trade{
		Ticker:    w.MarketTicker,
		TradeID:   id,
		Price:     price,
		Size:      w.Count,
		Side:      model.ParseSide(w.TakerSide),
		Timestamp: time.Unix(w.Ts, 0).UTC(),
	}, nil
}
