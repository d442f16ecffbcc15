package analytics

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rickgao/kalshi-analytics/internal/gateway"
	"github.com/rickgao/kalshi-analytics/internal/model"
)

var errUpstream = errors.New("upstream unavailable")

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeGateway struct {
	mu sync.Mutex

	markets    []model.Market
	events     []model.Event
	books      map[string]model.OrderBook
	trades     map[string][]model.Trade
	marketsErr error
	eventsErr  error
	bookErrs   map[string]error

	// blockTrades makes FetchTrades wait for its context to end.
	blockTrades bool

	bookCalls int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		books:    make(map[string]model.OrderBook),
		trades:   make(map[string][]model.Trade),
		bookErrs: make(map[string]error),
	}
}

func (f *fakeGateway) FetchMarkets(_ context.Context, q gateway.MarketQuery) ([]model.Market, error) {
	if f.marketsErr != nil {
		return nil, f.marketsErr
	}
	if q.Limit > 0 && len(f.markets) > q.Limit {
		return f.markets[:q.Limit], nil
	}
	return f.markets, nil
}

func (f *fakeGateway) FetchMarket(_ context.Context, ticker string) (model.Market, error) {
	for _, m := range f.markets {
		if m.Ticker == ticker {
			return m, nil
		}
	}
	return model.Market{}, errUpstream
}

func (f *fakeGateway) FetchOrderBook(_ context.Context, ticker string) (model.OrderBook, error) {
	f.mu.Lock()
	f.bookCalls++
	f.mu.Unlock()

	if err := f.bookErrs[ticker]; err != nil {
		return model.OrderBook{}, err
	}
	return f.books[ticker], nil
}

func (f *fakeGateway) FetchTrades(ctx context.Context, ticker string, limit int) ([]model.Trade, error) {
	if f.blockTrades {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.trades[ticker], nil
}

func (f *fakeGateway) FetchEvents(context.Context, gateway.EventQuery) ([]model.Event, error) {
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return f.events, nil
}

func quoteBook(ticker string, bid, ask float64, size int) model.OrderBook {
	book := model.OrderBook{Ticker: ticker}
	if bid > 0 {
		book.YesBids = []model.Level{{Price: bid, Size: size}}
	}
	if ask < 1 {
		book.YesAsks = []model.Level{{Price: ask, Size: size}}
	}
	return book
}

func market(ticker, series string, volume int64) model.Market {
	return model.Market{
		Ticker:       ticker,
		SeriesTicker: series,
		Title:        ticker + " title",
		Status:       model.StatusOpen,
		Volume:       volume,
	}
}

func tradesAt(prices []float64, sizes []int) []model.Trade {
	out := make([]model.Trade, len(prices))
	for i, p := range prices {
		size := 1
		if sizes != nil {
			size = sizes[i]
		}
		out[i] = model.Trade{
			Ticker:    "T",
			Price:     p,
			Size:      size,
			Side:      model.SideYes,
			Timestamp: testNow.Add(time.Duration(i) * time.Second),
		}
	}
	return out
}

func newTestEngine(gw gateway.Gateway) *Engine {
	return NewEngine(gw, DefaultConfig(), WithClock(func() time.Time { return testNow }))
}
