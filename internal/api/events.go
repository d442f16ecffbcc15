package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetEvents fetches a page of events.
func (c *Client) GetEvents(ctx context.Context, opts GetEventsOptions) (*EventsResponse, error) {
	query := url.Values{}

	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Cursor != "" {
		query.Set("cursor", opts.Cursor)
	}

	var resp EventsResponse
	if err := c.get(ctx, "events", "/events", query, &resp); err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}

	return &resp, nil
}

// GetEventsUpTo pages through events until limit events are collected or the
// cursor runs out.
func (c *Client) GetEventsUpTo(ctx context.Context, limit int, opts GetEventsOptions) ([]APIEvent, error) {
	var all []APIEvent

	for {
		opts.Limit = min(limit-len(all), MaxPageSize)
		if opts.Limit <= 0 {
			break
		}

		resp, err := c.GetEvents(ctx, opts)
		if err != nil {
			return nil, err
		}

		all = append(all, resp.Events...)

		if resp.Cursor == "" || len(resp.Events) == 0 {
			break
		}
		opts.Cursor = resp.Cursor
	}

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}
