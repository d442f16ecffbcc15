package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func tradeMessage(ticker, id string) []byte {
	return []byte(fmt.Sprintf(
		`{"type":"trade","sid":1,"msg":{"market_ticker":%q,"trade_id":%q,"count":3,"yes_price_dollars":"0.52","taker_side":"yes","ts":1717243200}}`,
		ticker, id))
}

// readSubscribe reads a subscribe command and returns its ID.
func readSubscribe(t *testing.T, conn *websocket.Conn) (int64, bool) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return 0, false
	}

	var cmd struct {
		ID     int64           `json:"id"`
		Cmd    string          `json:"cmd"`
		Params SubscribeParams `json:"params"`
	}
	if err := json.Unmarshal(data, &cmd); err != nil {
		t.Errorf("bad command %s: %v", data, err)
		return 0, false
	}
	if cmd.Cmd != "subscribe" || len(cmd.Params.Channels) != 1 || cmd.Params.Channels[0] != "trade" {
		t.Errorf("command = %s, want subscribe to trade", data)
	}
	return cmd.ID, true
}

func subscribed(id int64) []byte {
	return []byte(fmt.Sprintf(`{"id":%d,"type":"subscribed","msg":{"sid":1,"channel":"trade"}}`, id))
}

func testFeedConfig(url string) Config {
	return Config{
		Client:             testClientConfig(url),
		SubscribeTimeout:   2 * time.Second,
		ReconnectBaseDelay: 10 * time.Millisecond,
		ReconnectMaxDelay:  50 * time.Millisecond,
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestFeed_Run(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		id, ok := readSubscribe(t, conn)
		if !ok {
			return
		}
		// A trade can arrive before the subscribe response.
		conn.WriteMessage(websocket.TextMessage, tradeMessage("T", testTradeID))
		conn.WriteMessage(websocket.TextMessage, subscribed(id))
		conn.WriteMessage(websocket.TextMessage, tradeMessage("T", "0b4b2a4c-7a55-4d1b-a3b7-6a7f5e9f2c01"))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ticker","sid":2,"msg":{}}`))
		drain(conn)
	})
	defer server.Close()

	tape := NewTape(10)
	f := NewFeed(testFeedConfig(wsURL(server)), tape)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	waitFor(t, func() bool { return tape.Len("T") == 2 })
	if f.Received() != 2 {
		t.Errorf("Received = %d, want 2", f.Received())
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestFeed_Reconnects(t *testing.T) {
	var conns atomic.Int32
	server := mockWSServer(t, func(conn *websocket.Conn) {
		n := conns.Add(1)
		id, ok := readSubscribe(t, conn)
		if !ok {
			return
		}
		conn.WriteMessage(websocket.TextMessage, subscribed(id))
		if n == 1 {
			return // drop the first connection
		}
		conn.WriteMessage(websocket.TextMessage, tradeMessage("T", testTradeID))
		drain(conn)
	})
	defer server.Close()

	tape := NewTape(10)
	f := NewFeed(testFeedConfig(wsURL(server)), tape)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.Run(ctx)

	waitFor(t, func() bool { return tape.Len("T") == 1 })
	if conns.Load() < 2 {
		t.Errorf("connections = %d, want at least 2", conns.Load())
	}
}

func TestFeed_SubscribeError(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		id, ok := readSubscribe(t, conn)
		if !ok {
			return
		}
		conn.WriteMessage(websocket.TextMessage,
			[]byte(fmt.Sprintf(`{"id":%d,"type":"error","msg":{"code":8,"msg":"Unknown channel name"}}`, id)))
		drain(conn)
	})
	defer server.Close()

	f := NewFeed(testFeedConfig(wsURL(server)), NewTape(10))

	ok, err := f.session(context.Background())
	if ok {
		t.Error("session should not report a subscription")
	}
	if err == nil || !strings.Contains(err.Error(), "Unknown channel name") {
		t.Errorf("session error = %v, want subscribe failure", err)
	}
}

func TestFeed_SubscribeTimeout(t *testing.T) {
	server := mockWSServer(t, drain)
	defer server.Close()

	cfg := testFeedConfig(wsURL(server))
	cfg.SubscribeTimeout = 50 * time.Millisecond
	f := NewFeed(cfg, NewTape(10))

	if _, err := f.session(context.Background()); !errors.Is(err, ErrTimeout) {
		t.Errorf("session error = %v, want ErrTimeout", err)
	}
}

func TestFeed_DropsInvalidTrades(t *testing.T) {
	tape := NewTape(10)
	f := NewFeed(DefaultConfig(), tape)

	var env envelope
	json.Unmarshal([]byte(`{"type":"trade","sid":1,"msg":{"market_ticker":"T","trade_id":"bad","count":1,"ts":1}}`), &env)
	f.handle(env)

	if tape.Len("T") != 0 || f.Received() != 0 {
		t.Error("invalid trade should not reach the tape")
	}
}
