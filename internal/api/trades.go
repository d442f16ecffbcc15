package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetTrades fetches the most recent public trades for a market.
func (c *Client) GetTrades(ctx context.Context, ticker string, limit int) (*TradesResponse, error) {
	query := url.Values{}
	query.Set("ticker", ticker)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp TradesResponse
	if err := c.get(ctx, "trades", "/markets/trades", query, &resp); err != nil {
		return nil, fmt.Errorf("get trades %s: %w", ticker, err)
	}

	return &resp, nil
}
