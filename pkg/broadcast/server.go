package broadcast

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"tc.com/index-collector/pkg/index"
	"tc.com/index-collector/pkg/logging"
	"tc.com/index-collector/pkg/metrics"
)

const (
	// tickInterval drives per-session recalculation and result delivery.
	tickInterval = 1 * time.Second
	// heartbeatInterval is the ping cadence per session.
	heartbeatInterval = 30 * time.Second
	// writeWait bounds every outbound write.
	writeWait = 10 * time.Second
)

// Calculator is the part of the index engine a session triggers on each tick.
type Calculator interface {
	CalculateIndices() []index.Result
}

// Server accepts subscriber connections and runs one session per connection.
// Sessions tick independently against the shared calculator, so subscribers
// are not guaranteed synchronized ticks relative to one another.
type Server struct {
	addr     string
	calc     Calculator
	logger   *logging.Logger
	upgrader websocket.Upgrader

	listener   net.Listener
	httpServer *http.Server

	sessions sync.WaitGroup
}

// NewServer creates a broadcast server for the given listen address.
func NewServer(addr string, calc Calculator, logger *logging.Logger) *Server {
	return &Server{
		addr:   addr,
		calc:   calc,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
	}
}

// Listen binds the broadcast address. An address already held by another
// process is reported distinctly from other bind failures.
func (s *Server) Listen() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			return fmt.Errorf("%w: %s", ErrAddrInUse, s.addr)
		}
		return fmt.Errorf("%w: %s: %v", ErrBindFailed, s.addr, err)
	}
	s.listener = listener
	return nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve accepts connections until ctx is canceled, then waits for all
// sessions to finish their graceful close.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return ErrNotListening
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		s.handleConnection(ctx, w, r)
	})

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info("Broadcast server listening", "addr", s.listener.Addr().String())

	err := s.httpServer.Serve(s.listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("broadcast server error: %w", err)
	}

	s.sessions.Wait()
	return nil
}

// Start binds the address and serves until ctx is canceled.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// handleConnection upgrades one HTTP request into a subscriber session.
func (s *Server) handleConnection(ctx context.Context, w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	s.sessions.Add(1)
	go func() {
		defer s.sessions.Done()
		s.runSession(ctx, conn)
	}()
}

// runSession drives one subscriber: a welcome message, then periodic index
// updates, heartbeats and inbound-frame logging until an error, a
// client-initiated close or shutdown. A session failure never affects the
// accept loop or other sessions.
func (s *Server) runSession(ctx context.Context, conn *websocket.Conn) {
	remote := conn.RemoteAddr().String()
	s.logger.Info("Subscriber connected", "remote", remote)

	metrics.RecordSessionOpened()
	defer func() {
		metrics.RecordSessionClosed()
		_ = conn.Close()
		s.logger.Info("Subscriber session ended", "remote", remote)
	}()

	welcome := fmt.Sprintf("Connected to Crypto Index Collector. Client: %s", remote)
	if err := s.writeText(conn, welcome); err != nil {
		s.logger.Error("Failed to send welcome message", "remote", remote, "error", err)
		return
	}

	// Reader goroutine: inbound messages have no semantic effect, but the
	// session must notice client closes and protocol errors promptly.
	inbound := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		defer close(inbound)
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			if msgType == websocket.TextMessage {
				select {
				case inbound <- string(data):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	tick := time.NewTicker(tickInterval)
	defer tick.Stop()
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case msg, ok := <-inbound:
			if !ok {
				return
			}
			s.logger.Info("Received subscriber message", "remote", remote, "message", msg)

		case err := <-readErr:
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Error("Subscriber read error", "remote", remote, "error", err)
			} else {
				s.logger.Info("Subscriber closed connection", "remote", remote)
			}
			return

		case <-tick.C:
			if !s.sendResults(conn, remote) {
				return
			}

		case <-heartbeat.C:
			deadline := time.Now().Add(writeWait)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Error("Failed to send heartbeat", "remote", remote, "error", err)
				return
			}

		case <-ctx.Done():
			s.logger.Info("Closing subscriber session for shutdown", "remote", remote)
			deadline := time.Now().Add(writeWait)
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "server shutting down")
			_ = conn.WriteControl(websocket.CloseMessage, msg, deadline)
			return
		}
	}
}

// sendResults runs one calculation cycle and sends every produced result in
// configured index order. It reports whether the session should continue.
func (s *Server) sendResults(conn *websocket.Conn, remote string) bool {
	results := s.calc.CalculateIndices()

	for _, result := range results {
		if err := s.writeText(conn, FormatResult(result)); err != nil {
			s.logger.Error("Failed to send index update",
				"remote", remote,
				"index", result.Name,
				"error", err)
			return false
		}
		metrics.RecordMessageSent(result.Name)
	}

	return true
}

func (s *Server) writeText(conn *websocket.Conn, message string) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, []byte(message))
}
