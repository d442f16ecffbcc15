package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rickgao/kalshi-analytics/internal/analytics"
	"github.com/rickgao/kalshi-analytics/internal/api"
	"github.com/rickgao/kalshi-analytics/internal/gateway"
	"github.com/rickgao/kalshi-analytics/internal/model"
)

type fakeService struct {
	snapshotErr error
	tickers     []string
}

func (f *fakeService) MarketAnalytics(_ context.Context, ticker string) (analytics.Snapshot, error) {
	f.tickers = append(f.tickers, ticker)
	if f.snapshotErr != nil {
		return analytics.Snapshot{}, f.snapshotErr
	}
	return analytics.Snapshot{Ticker: ticker, LiquidityScore: 0.54}, nil
}

func (f *fakeService) FindArbitrageOpportunities(context.Context) analytics.ScanResult {
	return analytics.ScanResult{
		Opportunities: []analytics.Opportunity{{BuyTicker: "A", SellTicker: "B", SpreadPct: 37.5}},
		Diagnostics:   []analytics.Diagnostic{{Kind: analytics.KindOrderBook, Item: "C", Err: errors.New("boom")}},
	}
}

func (f *fakeService) DashboardStats(context.Context) analytics.DashboardResult {
	return analytics.DashboardResult{Stats: analytics.DashboardStats{TotalMarkets: 3, TopVolumeMarkets: []analytics.TopMarket{}}}
}

type fakeMarkets struct {
	markets []model.Market
	books   map[string]model.OrderBook
	err     error
	queries []gateway.MarketQuery
}

func (f *fakeMarkets) FetchMarkets(_ context.Context, q gateway.MarketQuery) ([]model.Market, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.markets, nil
}

func (f *fakeMarkets) FetchOrderBook(_ context.Context, ticker string) (model.OrderBook, error) {
	if f.err != nil {
		return model.OrderBook{}, f.err
	}
	book, ok := f.books[ticker]
	if !ok {
		return model.OrderBook{}, fmt.Errorf("get orderbook: %w", &api.APIError{StatusCode: 404, Message: "Not Found"})
	}
	return book, nil
}

func newTestServer(t *testing.T, svc analyticsService, checks []healthCheck) *httptest.Server {
	t.Helper()
	return newMarketsServer(t, svc, &fakeMarkets{}, checks)
}

func newMarketsServer(t *testing.T, svc analyticsService, markets marketReader, checks []healthCheck) *httptest.Server {
	t.Helper()
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "# metrics\n")
	})
	server := httptest.NewServer(createHandler(svc, markets, checks, "/metrics", metricsHandler, slog.New(slog.NewTextHandler(io.Discard, nil))))
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp.StatusCode
}

func TestMarketAnalyticsRoute(t *testing.T) {
	svc := &fakeService{}
	server := newTestServer(t, svc, nil)

	var snap struct {
		Ticker         string  `json:"ticker"`
		LiquidityScore float64 `json:"liquidity_score"`
	}
	if status := getJSON(t, server.URL+"/markets/KXHIGHNY-24DEC01-B45/analytics", &snap); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if snap.Ticker != "KXHIGHNY-24DEC01-B45" || snap.LiquidityScore != 0.54 {
		t.Errorf("snapshot = %+v", snap)
	}
	if len(svc.tickers) != 1 || svc.tickers[0] != "KXHIGHNY-24DEC01-B45" {
		t.Errorf("tickers = %v", svc.tickers)
	}
}

func TestMarketAnalyticsRoute_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", fmt.Errorf("fetch market: %w", &api.APIError{StatusCode: 404, Message: "Not Found"}), http.StatusNotFound},
		{"upstream", fmt.Errorf("fetch orderbook: %w", &api.APIError{StatusCode: 503}), http.StatusBadGateway},
		{"other", errors.New("rate limiter: context canceled"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, &fakeService{snapshotErr: tt.err}, nil)

			var body map[string]string
			if status := getJSON(t, server.URL+"/markets/T/analytics", &body); status != tt.want {
				t.Errorf("status = %d, want %d", status, tt.want)
			}
			if body["error"] == "" {
				t.Error("expected an error message")
			}
		})
	}
}

func TestArbitrageRoute(t *testing.T) {
	server := newTestServer(t, &fakeService{}, nil)

	var result struct {
		Opportunities []struct {
			BuyTicker string  `json:"buy_ticker"`
			SpreadPct float64 `json:"spread_percentage"`
		} `json:"opportunities"`
		Diagnostics []map[string]string `json:"diagnostics"`
	}
	if status := getJSON(t, server.URL+"/arbitrage", &result); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if len(result.Opportunities) != 1 || result.Opportunities[0].BuyTicker != "A" || result.Opportunities[0].SpreadPct != 37.5 {
		t.Errorf("opportunities = %+v", result.Opportunities)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0]["error"] != "boom" {
		t.Errorf("diagnostics = %+v", result.Diagnostics)
	}
}

func TestDashboardRoute(t *testing.T) {
	server := newTestServer(t, &fakeService{}, nil)

	var result struct {
		Stats struct {
			TotalMarkets int `json:"total_markets"`
		} `json:"stats"`
	}
	if status := getJSON(t, server.URL+"/dashboard/stats", &result); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if result.Stats.TotalMarkets != 3 {
		t.Errorf("TotalMarkets = %d, want 3", result.Stats.TotalMarkets)
	}
}

func TestHealthRoute(t *testing.T) {
	healthy := healthCheck{name: "redis", check: func(context.Context) error { return nil }}
	down := healthCheck{name: "timescaledb", check: func(context.Context) error { return errors.New("refused") }}

	var body struct {
		Status     string         `json:"status"`
		Components map[string]any `json:"components"`
	}

	server := newTestServer(t, &fakeService{}, []healthCheck{healthy})
	if status := getJSON(t, server.URL+"/health", &body); status != http.StatusOK || body.Status != "healthy" {
		t.Errorf("health = %d %s, want 200 healthy", status, body.Status)
	}
	if body.Components["redis"] != "connected" {
		t.Errorf("components = %v", body.Components)
	}

	server = newTestServer(t, &fakeService{}, []healthCheck{healthy, down})
	if status := getJSON(t, server.URL+"/health", &body); status != http.StatusServiceUnavailable || body.Status != "unhealthy" {
		t.Errorf("health = %d %s, want 503 unhealthy", status, body.Status)
	}
}

func TestMetricsRouteAndMethods(t *testing.T) {
	server := newTestServer(t, &fakeService{}, nil)

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "# metrics") {
		t.Errorf("metrics = %d %q", resp.StatusCode, body)
	}

	resp, err = http.Post(server.URL+"/arbitrage", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /arbitrage: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /arbitrage = %d, want 405", resp.StatusCode)
	}
}

func TestMarketsRoute(t *testing.T) {
	markets := &fakeMarkets{markets: []model.Market{
		{Ticker: "KXHIGHNY-24DEC01-B45", SeriesTicker: "KXHIGHNY", Status: model.StatusOpen, Volume: 1200},
	}}
	server := newMarketsServer(t, &fakeService{}, markets, nil)

	var body struct {
		Markets []struct {
			Ticker string `json:"ticker"`
			Volume int64  `json:"volume"`
		} `json:"markets"`
	}
	url := server.URL + "/markets?limit=5&cursor=abc&event_ticker=KXHIGHNY-24DEC01&series_ticker=KXHIGHNY&status=open"
	if status := getJSON(t, url, &body); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if len(body.Markets) != 1 || body.Markets[0].Ticker != "KXHIGHNY-24DEC01-B45" || body.Markets[0].Volume != 1200 {
		t.Errorf("markets = %+v", body.Markets)
	}

	want := gateway.MarketQuery{Limit: 5, Cursor: "abc", EventTicker: "KXHIGHNY-24DEC01", SeriesTicker: "KXHIGHNY", Status: "open"}
	if len(markets.queries) != 1 || markets.queries[0] != want {
		t.Errorf("queries = %+v, want [%+v]", markets.queries, want)
	}
}

func TestMarketsRoute_DefaultsAndErrors(t *testing.T) {
	markets := &fakeMarkets{}
	server := newMarketsServer(t, &fakeService{}, markets, nil)

	var body map[string]any
	if status := getJSON(t, server.URL+"/markets", &body); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if list, ok := body["markets"].([]any); !ok || len(list) != 0 {
		t.Errorf("markets = %v, want empty list", body["markets"])
	}
	if markets.queries[0].Limit != defaultMarketsLimit {
		t.Errorf("Limit = %d, want %d", markets.queries[0].Limit, defaultMarketsLimit)
	}

	for _, limit := range []string{"0", "1001", "ten"} {
		var errBody map[string]string
		if status := getJSON(t, server.URL+"/markets?limit="+limit, &errBody); status != http.StatusBadRequest {
			t.Errorf("limit=%s status = %d, want 400", limit, status)
		}
	}
	if len(markets.queries) != 1 {
		t.Errorf("invalid limits reached the gateway: %d queries", len(markets.queries))
	}

	failing := newMarketsServer(t, &fakeService{}, &fakeMarkets{err: &api.APIError{StatusCode: 503}}, nil)
	var errBody map[string]string
	if status := getJSON(t, failing.URL+"/markets", &errBody); status != http.StatusBadGateway || errBody["error"] == "" {
		t.Errorf("upstream failure = %d %v, want 502 with error", status, errBody)
	}
}

func TestOrderBookRoute(t *testing.T) {
	markets := &fakeMarkets{books: map[string]model.OrderBook{
		"T": {
			Ticker:  "T",
			YesBids: []model.Level{{Price: 0.45, Size: 100}},
			YesAsks: []model.Level{{Price: 0.55, Size: 50}},
		},
	}}
	server := newMarketsServer(t, &fakeService{}, markets, nil)

	var body struct {
		OrderBook struct {
			Ticker  string        `json:"ticker"`
			YesBids []model.Level `json:"yes_bids"`
			YesAsks []model.Level `json:"yes_asks"`
		} `json:"orderbook"`
	}
	if status := getJSON(t, server.URL+"/markets/T/orderbook", &body); status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body.OrderBook.Ticker != "T" || len(body.OrderBook.YesBids) != 1 || body.OrderBook.YesAsks[0].Price != 0.55 {
		t.Errorf("orderbook = %+v", body.OrderBook)
	}

	var errBody map[string]string
	if status := getJSON(t, server.URL+"/markets/MISSING/orderbook", &errBody); status != http.StatusNotFound {
		t.Errorf("missing book status = %d, want 404", status)
	}
}
