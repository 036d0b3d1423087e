package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tc.com/index-collector/pkg/client"
	"tc.com/index-collector/pkg/logging"
)

const version = "0.1.0-dev"

var (
	serverURL      = flag.String("server", "ws://127.0.0.1:8080/", "WebSocket URL of the collector")
	reconnect      = flag.Bool("reconnect", true, "Reconnect automatically when the connection drops")
	reconnectDelay = flag.Duration("reconnect-delay", 5*time.Second, "Base delay between reconnection attempts")
	logLevel       = flag.String("log-level", "info", "Log level")
	showVer        = flag.Bool("version", false, "Show version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("index-client version %s\n", version)
		os.Exit(0)
	}

	logger, err := logging.Init(*logLevel, "text", "stdout")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	// SIGINT triggers a close handshake via context cancellation.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Received shutdown signal", "signal", sig.String())
		cancel()
	}()

	sub := client.NewSubscriber(*serverURL, *reconnect, *reconnectDelay, func(u client.Update) {
		logger.Info("Index update",
			"index", u.Index,
			"value", u.Value,
			"timestamp", u.Timestamp.Format(time.RFC3339))
	}, logger)

	logger.Info("Connecting to collector", "url", *serverURL, "reconnect", *reconnect)

	if err := sub.Run(ctx); err != nil {
		if errors.Is(err, client.ErrConnectionClosed) {
			logger.Info("Server closed the connection")
			return
		}
		logger.Error("Subscriber failed", "error", err)
		os.Exit(1)
	}
}
