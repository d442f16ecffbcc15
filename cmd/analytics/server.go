package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/rickgao/kalshi-analytics/internal/analytics"
	"github.com/rickgao/kalshi-analytics/internal/api"
	"github.com/rickgao/kalshi-analytics/internal/gateway"
	"github.com/rickgao/kalshi-analytics/internal/model"
	"github.com/rickgao/kalshi-analytics/internal/version"
)

// analyticsService is the subset of analytics.Engine served over HTTP.
type analyticsService interface {
	MarketAnalytics(ctx context.Context, ticker string) (analytics.Snapshot, error)
	FindArbitrageOpportunities(ctx context.Context) analytics.ScanResult
	DashboardStats(ctx context.Context) analytics.DashboardResult
}

// marketReader is the raw exchange data passed through over HTTP.
type marketReader interface {
	FetchMarkets(ctx context.Context, q gateway.MarketQuery) ([]model.Market, error)
	FetchOrderBook(ctx context.Context, ticker string) (model.OrderBook, error)
}

const (
	defaultMarketsLimit = 100
	maxMarketsLimit     = 1000
)

// healthCheck reports on one dependency. A nil error means healthy.
type healthCheck struct {
	name  string
	check func(ctx context.Context) error
}

// createHandler creates the HTTP handler for markets, analytics, health and metrics.
func createHandler(svc analyticsService, markets marketReader, checks []healthCheck, metricsPath string, metricsHandler http.Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Version    string         `json:"version"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Version:    version.String(),
			Components: make(map[string]any),
		}

		for _, c := range checks {
			if err := c.check(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components[c.name] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
				continue
			}
			health.Components[c.name] = "connected"
		}

		status := http.StatusOK
		if health.Status == "unhealthy" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, health, logger)
	})

	mux.HandleFunc("GET /markets", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		limit := defaultMarketsLimit
		if v := q.Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > maxMarketsLimit {
				writeJSON(w, http.StatusBadRequest, map[string]string{
					"error": "limit must be an integer between 1 and " + strconv.Itoa(maxMarketsLimit),
				}, logger)
				return
			}
			limit = n
		}

		list, err := markets.FetchMarkets(r.Context(), gateway.MarketQuery{
			Limit:        limit,
			Cursor:       q.Get("cursor"),
			EventTicker:  q.Get("event_ticker"),
			SeriesTicker: q.Get("series_ticker"),
			Status:       q.Get("status"),
		})
		if err != nil {
			logger.Warn("list markets failed", "error", err)
			writeJSON(w, upstreamStatus(err), map[string]string{"error": err.Error()}, logger)
			return
		}
		if list == nil {
			list = []model.Market{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"markets": list}, logger)
	})

	mux.HandleFunc("GET /markets/{ticker}/orderbook", func(w http.ResponseWriter, r *http.Request) {
		ticker := r.PathValue("ticker")

		book, err := markets.FetchOrderBook(r.Context(), ticker)
		if err != nil {
			logger.Warn("orderbook failed", "ticker", ticker, "error", err)
			writeJSON(w, upstreamStatus(err), map[string]string{"error": err.Error()}, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"orderbook": book}, logger)
	})

	mux.HandleFunc("GET /markets/{ticker}/analytics", func(w http.ResponseWriter, r *http.Request) {
		ticker := r.PathValue("ticker")

		snap, err := svc.MarketAnalytics(r.Context(), ticker)
		if err != nil {
			logger.Warn("market analytics failed", "ticker", ticker, "error", err)
			writeJSON(w, upstreamStatus(err), map[string]string{"error": err.Error()}, logger)
			return
		}
		writeJSON(w, http.StatusOK, snap, logger)
	})

	mux.HandleFunc("GET /arbitrage", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.FindArbitrageOpportunities(r.Context()), logger)
	})

	mux.HandleFunc("GET /dashboard/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.DashboardStats(r.Context()), logger)
	})

	if metricsHandler != nil {
		mux.Handle("GET "+metricsPath, metricsHandler)
	}

	return mux
}

// upstreamStatus maps an exchange 404 through and reports anything else as 502.
func upstreamStatus(err error) int {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return http.StatusNotFound
	}
	return http.StatusBadGateway
}

func writeJSON(w http.ResponseWriter, status int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Debug("write response", "error", err)
	}
}
