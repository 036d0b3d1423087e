package client

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"

	"tc.com/index-collector/pkg/logging"
)

const (
	defaultReconnectDelay = 5 * time.Second
	maxReconnectDelay     = 60 * time.Second
	dialTimeout           = 10 * time.Second
)

// Handler receives every parsed index update from the collector.
type Handler func(Update)

// Subscriber maintains a connection to a collector broadcast server,
// delivering parsed updates to its handler. When reconnection is enabled it
// survives server restarts with exponential backoff on connection errors and
// a fixed delay after clean server closes.
type Subscriber struct {
	url            string
	reconnect      bool
	reconnectDelay time.Duration
	handler        Handler
	logger         *logging.Logger
}

// NewSubscriber creates a subscriber for the given websocket URL. A zero
// reconnectDelay selects the default.
func NewSubscriber(url string, reconnect bool, reconnectDelay time.Duration, handler Handler, logger *logging.Logger) *Subscriber {
	if reconnectDelay <= 0 {
		reconnectDelay = defaultReconnectDelay
	}
	return &Subscriber{
		url:            url,
		reconnect:      reconnect,
		reconnectDelay: reconnectDelay,
		handler:        handler,
		logger:         logger,
	}
}

// Run connects and consumes updates until ctx is canceled. With reconnection
// disabled it returns after the first session ends; the returned error is nil
// only on cancellation.
func (s *Subscriber) Run(ctx context.Context) error {
	attempt := 0

	for {
		if ctx.Err() != nil {
			return nil
		}

		err := s.runSession(ctx)
		if ctx.Err() != nil {
			return nil
		}

		cleanClose := errors.Is(err, ErrConnectionClosed)
		if !s.reconnect {
			if cleanClose {
				return ErrConnectionClosed
			}
			return err
		}

		var delay time.Duration
		if cleanClose {
			attempt = 0
			delay = s.reconnectDelay
			s.logger.Info("Server closed connection, reconnecting", "delay", delay.String())
		} else {
			attempt++
			delay = backoffDelay(s.reconnectDelay, attempt)
			s.logger.Warn("Connection failed, reconnecting",
				"error", err,
				"attempt", attempt,
				"delay", delay.String())
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil
		}
	}
}

// runSession dials, then reads frames until the connection ends. It returns
// ErrConnectionClosed for a clean server close, or the underlying error.
func (s *Subscriber) runSession(ctx context.Context) error {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, s.url, nil)
	cancel()
	if err != nil {
		return err
	}
	defer conn.Close()

	s.logger.Info("Connected to collector", "url", s.url)

	// Close the connection when ctx is canceled so the read loop unblocks
	// after attempting a close handshake.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			deadline := time.Now().Add(time.Second)
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return ErrConnectionClosed
			}
			return err
		}

		update, err := ParseUpdate(string(data))
		if err != nil {
			// Informational frames such as the welcome message are
			// surfaced to the log, not to the handler.
			s.logger.Info("Server message", "message", string(data))
			continue
		}

		if s.handler != nil {
			s.handler(update)
		}
	}
}

// backoffDelay doubles the base delay per attempt, capped at one minute.
func backoffDelay(base time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := base << (attempt - 1)
	if delay > maxReconnectDelay || delay <= 0 {
		return maxReconnectDelay
	}
	return delay
}
