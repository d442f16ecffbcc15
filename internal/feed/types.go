package feed

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrTimeout         = errors.New("operation timeout")
	ErrAlreadyClosed   = errors.New("already closed")
	ErrInvalidTrade    = errors.New("invalid trade message")
)

// TimestampedMessage wraps raw message data with receive timestamp.
type TimestampedMessage struct {
	Data       []byte
	ReceivedAt time.Time
}

// HeaderFunc returns handshake headers. It is called on every dial so that
// signatures carry a fresh timestamp.
type HeaderFunc func() (http.Header, error)

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL               string
	Headers           HeaderFunc    // nil = unauthenticated
	PingTimeout       time.Duration // Max time without ping before considering connection stale
	WriteTimeout      time.Duration
	HeartbeatInterval time.Duration // How often to send keepalive pings
	BufferSize        int
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:       60 * time.Second,
		WriteTimeout:      5 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		BufferSize:        1000,
	}
}

// Config configures a Feed.
type Config struct {
	Client             ClientConfig
	SubscribeTimeout   time.Duration
	ReconnectBaseDelay time.Duration
	ReconnectMaxDelay  time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Client:             DefaultClientConfig(),
		SubscribeTimeout:   10 * time.Second,
		ReconnectBaseDelay: 1 * time.Second,
		ReconnectMaxDelay:  60 * time.Second,
	}
}

// Command is a WebSocket command to send to the server.
type Command struct {
	ID     int64  `json:"id"`
	Cmd    string `json:"cmd"`
	Params any    `json:"params"`
}

// SubscribeParams are parameters for a subscribe command.
type SubscribeParams struct {
	Channels []string `json:"channels"`
}

// envelope carries the fields shared by command responses and data messages.
type envelope struct {
	ID   int64           `json:"id"`
	Type string          `json:"type"` // "subscribed", "error", "ok", "trade", ...
	SID  int64           `json:"sid"`
	Msg  json.RawMessage `json:"msg"`
}

// SubscribedMsg is the message content for a "subscribed" response.
type SubscribedMsg struct {
	SID     int64  `json:"sid"`
	Channel string `json:"channel"`
}

// ErrorMsg is the message content for an "error" response.
type ErrorMsg struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

// tradeWire is the msg body of a trade message.
type tradeWire struct {
	MarketTicker    string `json:"market_ticker"`
	TradeID         string `json:"trade_id"`
	Count           int    `json:"count"`
	YesPrice        int    `json:"yes_price"` // cents, used when yes_price_dollars is absent
	YesPriceDollars string `json:"yes_price_dollars"`
	TakerSide       string `json:"taker_side"`
	Ts              int64  `json:"ts"` // Unix seconds
}
