package gateway

import (
	"context"

	"github.com/rickgao/kalshi-analytics/internal/model"
)

// MarketQuery filters a FetchMarkets call. Zero values are omitted.
type MarketQuery struct {
	Limit        int
	Cursor       string
	EventTicker  string
	SeriesTicker string
	Status       string
}

// EventQuery filters a FetchEvents call.
type EventQuery struct {
	Limit  int
	Cursor string
}

// TradeSource supplies the most recent trades for a market, oldest first.
type TradeSource interface {
	FetchTrades(ctx context.Context, ticker string, limit int) ([]model.Trade, error)
}

// Gateway is authenticated, rate-limited access to exchange data.
type Gateway interface {
	TradeSource
	FetchMarkets(ctx context.Context, q MarketQuery) ([]model.Market, error)
	FetchMarket(ctx context.Context, ticker string) (model.Market, error)
	FetchOrderBook(ctx context.Context, ticker string) (model.OrderBook, error)
	FetchEvents(ctx context.Context, q EventQuery) ([]model.Event, error)
}

type tradeOverride struct {
	Gateway
	trades TradeSource
}

// WithTradeSource returns g with FetchTrades served by src.
func WithTradeSource(g Gateway, src TradeSource) Gateway {
	if src == nil {
		return g
	}
	return &tradeOverride{Gateway: g, trades: src}
}

func (t *tradeOverride) FetchTrades(ctx context.Context, ticker string, limit int) ([]model.Trade, error) {
	return t.trades.FetchTrades(ctx, ticker, limit)
}
