package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/rickgao/kalshi-analytics/internal/metrics"
)

const tradeChannel = "trade"

// Feed streams exchange trades onto a Tape, reconnecting as needed.
type Feed struct {
	cfg     Config
	tape    *Tape
	logger  *slog.Logger
	metrics *metrics.Metrics

	newClient func(ClientConfig, *slog.Logger) Client
	cmdID     int64
	received  atomic.Int64
}

// Option configures a Feed.
type Option func(*Feed)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Feed) {
		f.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(f *Feed) {
		f.metrics = m
	}
}

// NewFeed creates a Feed writing to tape.
func NewFeed(cfg Config, tape *Tape, opts ...Option) *Feed {
	f := &Feed{
		cfg:       cfg,
		tape:      tape,
		logger:    slog.Default(),
		newClient: NewClient,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Tape returns the tape the feed writes to.
func (f *Feed) Tape() *Tape {
	return f.tape
}

// Received returns the number of trades recorded since start.
func (f *Feed) Received() int64 {
	return f.received.Load()
}

// Run connects, subscribes to the trade channel and consumes messages until
// ctx is canceled. Dropped connections are redialed with exponential backoff,
// reset after every successful subscribe.
func (f *Feed) Run(ctx context.Context) error {
	wait := f.cfg.ReconnectBaseDelay

	for {
		subscribed, err := f.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if subscribed {
			wait = f.cfg.ReconnectBaseDelay
		}

		f.logger.Warn("trade feed disconnected", "error", err, "retry_in", wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		wait *= 2
		if wait > f.cfg.ReconnectMaxDelay {
			wait = f.cfg.ReconnectMaxDelay
		}
	}
}

// session runs one connection from dial to failure.
func (f *Feed) session(ctx context.Context) (subscribed bool, err error) {
	c := f.newClient(f.cfg.Client, f.logger)
	if err := c.Connect(ctx); err != nil {
		return false, fmt.Errorf("connect: %w", err)
	}
	defer c.Close()

	if err := f.subscribe(ctx, c); err != nil {
		return false, fmt.Errorf("subscribe %s: %w", tradeChannel, err)
	}
	f.logger.Info("trade feed subscribed", "url", f.cfg.Client.URL)

	return true, f.consume(ctx, c)
}

// subscribe sends a subscribe command and waits for its response. Data
// messages that arrive first are handled normally.
func (f *Feed) subscribe(ctx context.Context, c Client) error {
	f.cmdID++
	id := f.cmdID

	data, err := json.Marshal(Command{
		ID:     id,
		Cmd:    "subscribe",
		Params: SubscribeParams{Channels: []string{tradeChannel}},
	})
	if err != nil {
		return err
	}
	if err := c.Send(data); err != nil {
		return err
	}

	timeout := time.NewTimer(f.cfg.SubscribeTimeout)
	defer timeout.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout.C:
			return ErrTimeout
		case err := <-c.Errors():
			return err
		case msg := <-c.Messages():
			var env envelope
			if err := json.Unmarshal(msg.Data, &env); err != nil {
				f.logger.Debug("unparseable message", "error", err)
				continue
			}
			if env.ID != id {
				f.handle(env)
				continue
			}

			switch env.Type {
			case "subscribed", "ok":
				var sub SubscribedMsg
				json.Unmarshal(env.Msg, &sub)
				f.logger.Debug("subscribed", "channel", tradeChannel, "sid", sub.SID)
				return nil
			case "error":
				var errMsg ErrorMsg
				json.Unmarshal(env.Msg, &errMsg)
				return fmt.Errorf("code %d: %s", errMsg.Code, errMsg.Message)
			}
		}
	}
}

// consume handles messages until the connection fails or ctx ends.
func (f *Feed) consume(ctx context.Context, c Client) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-c.Errors():
			return err
		case msg := <-c.Messages():
			var env envelope
			if err := json.Unmarshal(msg.Data, &env); err != nil {
				f.logger.Debug("unparseable message", "error", err)
				continue
			}
			f.handle(env)
		}
	}
}

// handle processes one data message.
func (f *Feed) handle(env envelope) {
	f.metrics.ObserveFeedMessage(env.Type)

	if env.Type != tradeChannel {
		return
	}

	trade, err := ParseTrade(env.Msg)
	if err != nil {
		f.logger.Warn("dropping trade", "error", err)
		return
	}
	if f.tape.Add(trade) {
		f.received.Add(1)
	}
}
