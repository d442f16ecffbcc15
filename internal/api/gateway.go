package api

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rickgao/kalshi-analytics/internal/gateway"
	"github.com/rickgao/kalshi-analytics/internal/model"
)

var _ gateway.Gateway = (*Client)(nil)

// FetchMarkets implements gateway.Gateway. A zero limit fetches one default page.
func (c *Client) FetchMarkets(ctx context.Context, q gateway.MarketQuery) ([]model.Market, error) {
	opts := GetMarketsOptions{
		Cursor:       q.Cursor,
		EventTicker:  q.EventTicker,
		SeriesTicker: q.SeriesTicker,
		Status:       q.Status,
	}

	var raw []APIMarket
	if q.Limit > 0 {
		var err error
		if raw, err = c.GetMarketsUpTo(ctx, q.Limit, opts); err != nil {
			return nil, err
		}
	} else {
		resp, err := c.GetMarkets(ctx, opts)
		if err != nil {
			return nil, err
		}
		raw = resp.Markets
	}

	markets := make([]model.Market, len(raw))
	for i := range raw {
		markets[i] = raw[i].ToModel()
	}
	return markets, nil
}

// FetchMarket implements gateway.Gateway.
func (c *Client) FetchMarket(ctx context.Context, ticker string) (model.Market, error) {
	m, err := c.GetMarket(ctx, ticker)
	if err != nil {
		return model.Market{}, err
	}
	return m.ToModel(), nil
}

// FetchOrderBook implements gateway.Gateway.
func (c *Client) FetchOrderBook(ctx context.Context, ticker string) (model.OrderBook, error) {
	resp, err := c.GetOrderbook(ctx, ticker, 0)
	if err != nil {
		return model.OrderBook{}, err
	}

	book, err := resp.Orderbook.ToModel(ticker, time.Now().UTC())
	if err != nil {
		return model.OrderBook{}, fmt.Errorf("decode orderbook %s: %w", ticker, err)
	}
	return book, nil
}

// FetchTrades implements gateway.Gateway. Malformed trades are skipped with a
// warning; the rest are returned oldest first.
func (c *Client) FetchTrades(ctx context.Context, ticker string, limit int) ([]model.Trade, error) {
	resp, err := c.GetTrades(ctx, ticker, limit)
	if err != nil {
		return nil, err
	}

	trades := make([]model.Trade, 0, len(resp.Trades))
	for i := range resp.Trades {
		t, err := resp.Trades[i].ToModel()
		if err != nil {
			c.logger.Warn("skipping trade", "ticker", ticker, "error", err)
			continue
		}
		trades = append(trades, t)
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].Timestamp.Before(trades[j].Timestamp)
	})
	return trades, nil
}

// FetchEvents implements gateway.Gateway.
func (c *Client) FetchEvents(ctx context.Context, q gateway.EventQuery) ([]model.Event, error) {
	opts := GetEventsOptions{Cursor: q.Cursor}

	var raw []APIEvent
	if q.Limit > 0 {
		var err error
		if raw, err = c.GetEventsUpTo(ctx, q.Limit, opts); err != nil {
			return nil, err
		}
	} else {
		resp, err := c.GetEvents(ctx, opts)
		if err != nil {
			return nil, err
		}
		raw = resp.Events
	}

	events := make([]model.Event, len(raw))
	for i := range raw {
		events[i] = raw[i].ToModel()
	}
	return events, nil
}
