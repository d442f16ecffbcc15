package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/rickgao/kalshi-analytics/internal/gateway"
	"github.com/rickgao/kalshi-analytics/internal/model"
)

// ErrInvalidRow reports a trades row that cannot be converted.
var ErrInvalidRow = errors.New("invalid trade row")

const internalPriceMax = 100_000

const selectRecentTrades = `
	SELECT trade_id::text, exchange_ts, price, size, taker_side
	FROM trades
	WHERE ticker = $1
	ORDER BY exchange_ts DESC
	LIMIT $2`

// Querier is the subset of pgxpool.Pool and pgx.Conn used by TradeStore.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var _ gateway.TradeSource = (*TradeStore)(nil)

// TradeStore reads recent trades from the trades table.
type TradeStore struct {
	db     Querier
	logger *slog.Logger
}

// NewTradeStore creates a TradeStore over db.
func NewTradeStore(db Querier, logger *slog.Logger) *TradeStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &TradeStore{db: db, logger: logger}
}

// tradeRow mirrors a trades row. Column order matches selectRecentTrades.
type tradeRow struct {
	TradeID    string
	ExchangeTs int64 // Microseconds
	Price      int   // Hundred-thousandths (0-100,000)
	Size       int
	TakerSide  bool // TRUE = yes, FALSE = no
}

// FetchTrades returns the newest limit trades for ticker, oldest first.
// Rows that fail conversion are skipped with a warning.
func (s *TradeStore) FetchTrades(ctx context.Context, ticker string, limit int) ([]model.Trade, error) {
	rows, err := s.db.Query(ctx, selectRecentTrades, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}

	records, err := pgx.CollectRows(rows, pgx.RowToStructByPos[tradeRow])
	if err != nil {
		return nil, fmt.Errorf("scan trades: %w", err)
	}

	trades := make([]model.Trade, 0, len(records))
	for _, r := range records {
		trade, err := r.toModel(ticker)
		if err != nil {
			s.logger.Warn("skipping trade row", "ticker", ticker, "error", err)
			continue
		}
		trades = append(trades, trade)
	}

	slices.Reverse(trades)
	return trades, nil
}

func (r tradeRow) toModel(ticker string) (model.Trade, error) {
	id, err := uuid.Parse(r.TradeID)
	if err != nil {
		return model.Trade{}, fmt.Errorf("%w: trade_id %q", ErrInvalidRow, r.TradeID)
	}
	if r.Price < 0 || r.Price > internalPriceMax {
		return model.Trade{}, fmt.Errorf("%w: price %d", ErrInvalidRow, r.Price)
	}
	if r.Size < 0 {
		return model.Trade{}, fmt.Errorf("%w: size %d", ErrInvalidRow, r.Size)
	}

	side := model.SideNo
	if r.TakerSide {
		side = model.SideYes
	}

	return model.Trade{
		Ticker:    ticker,
		TradeID:   id,
		Price:     model.InternalToPrice(r.Price),
		Size:      r.Size,
		Side:      side,
		Timestamp: time.UnixMicro(r.ExchangeTs).UTC(),
	}, nil
}
