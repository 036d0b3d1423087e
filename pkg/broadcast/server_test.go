package broadcast

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tc.com/index-collector/pkg/index"
	"tc.com/index-collector/pkg/logging"
)

type stubCalculator struct {
	mu      sync.Mutex
	results []index.Result
	calls   int
}

func (c *stubCalculator) CalculateIndices() []index.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	out := make([]index.Result, len(c.results))
	copy(out, c.results)
	return out
}

func (c *stubCalculator) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.Init("error", "json", "stderr")
	require.NoError(t, err)
	return logger
}

func startServer(t *testing.T, calc Calculator) (*Server, context.CancelFunc, chan error) {
	t.Helper()

	server := NewServer("127.0.0.1:0", calc, testLogger(t))
	require.NoError(t, server.Listen())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})

	return server, cancel, done
}

func dial(t *testing.T, server *Server) *websocket.Conn {
	t.Helper()

	url := fmt.Sprintf("ws://%s/", server.Addr().String())
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestServerSendsWelcomeMessage(t *testing.T) {
	server, _, _ := startServer(t, &stubCalculator{})
	conn := dial(t, server)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(data), "Connected to Crypto Index Collector. Client: "),
		"unexpected welcome message: %s", data)
}

func TestServerStreamsIndexUpdates(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	calc := &stubCalculator{
		results: []index.Result{
			{Name: "BTC-USD", Timestamp: ts, Value: 50030.0},
			{Name: "ETH-USD", Timestamp: ts, Value: 3010.5},
		},
	}

	server, _, _ := startServer(t, calc)
	conn := dial(t, server)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	// Welcome first.
	_, _, err := conn.ReadMessage()
	require.NoError(t, err)

	_, first, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "INDEX: BTC-USD | TIMESTAMP: 2024-03-01T12:00:00Z | VALUE: 50030", string(first))

	_, second, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "INDEX: ETH-USD | TIMESTAMP: 2024-03-01T12:00:00Z | VALUE: 3010.5", string(second))

	assert.GreaterOrEqual(t, calc.callCount(), 1)
}

func TestServerClosesSessionsOnShutdown(t *testing.T) {
	server, cancel, _ := startServer(t, &stubCalculator{})
	conn := dial(t, server)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	require.NoError(t, err)

	cancel()

	// The server should deliver a normal close frame before dropping us.
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			assert.False(t, websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway),
				"unexpected close error: %v", err)
			return
		}
	}
}

func TestServerSessionFailureDoesNotAffectOthers(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	calc := &stubCalculator{
		results: []index.Result{{Name: "BTC-USD", Timestamp: ts, Value: 50000}},
	}

	server, _, _ := startServer(t, calc)

	doomed := dial(t, server)
	survivor := dial(t, server)

	require.NoError(t, survivor.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := survivor.ReadMessage()
	require.NoError(t, err)

	// Drop one client abruptly, the other keeps receiving updates.
	require.NoError(t, doomed.Close())

	_, data, err := survivor.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(data), "INDEX: BTC-USD")
}

func TestServerAddressInUse(t *testing.T) {
	first := NewServer("127.0.0.1:0", &stubCalculator{}, testLogger(t))
	require.NoError(t, first.Listen())
	t.Cleanup(func() { _ = first.listener.Close() })

	second := NewServer(first.Addr().String(), &stubCalculator{}, testLogger(t))
	err := second.Listen()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAddrInUse)
}

func TestServerServeRequiresListen(t *testing.T) {
	server := NewServer("127.0.0.1:0", &stubCalculator{}, testLogger(t))
	err := server.Serve(context.Background())
	assert.ErrorIs(t, err, ErrNotListening)
}

func TestFormatResult(t *testing.T) {
	ts := time.Date(2024, 6, 15, 8, 30, 0, 0, time.UTC)

	cases := []struct {
		name   string
		result index.Result
		want   string
	}{
		{
			name:   "whole value",
			result: index.Result{Name: "BTC-USD", Timestamp: ts, Value: 50030.0},
			want:   "INDEX: BTC-USD | TIMESTAMP: 2024-06-15T08:30:00Z | VALUE: 50030",
		},
		{
			name:   "fractional value",
			result: index.Result{Name: "ETH-USD", Timestamp: ts, Value: 3010.53},
			want:   "INDEX: ETH-USD | TIMESTAMP: 2024-06-15T08:30:00Z | VALUE: 3010.53",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatResult(tc.result))
		})
	}
}
