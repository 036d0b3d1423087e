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

	"tc.com/index-collector/pkg/logging"
	"tc.com/index-collector/pkg/supervisor"
)

const version = "0.1.0-dev"

var (
	maxRestarts      = flag.Int("max-restarts", 5, "Maximum restarts within one monitoring period before giving up")
	monitoringPeriod = flag.Duration("monitoring-period", 10*time.Minute, "Window after which the restart count resets")
	initialDelay     = flag.Duration("initial-delay", 5*time.Second, "Backoff before the first restart")
	maxDelay         = flag.Duration("max-delay", 60*time.Second, "Maximum backoff between restarts")
	notifyScript     = flag.String("notification-script", "", "Optional script invoked with (severity, message) on restart events")
	logLevel         = flag.String("log-level", "info", "Log level")
	showVer          = flag.Bool("version", false, "Show version and exit")
)

func main() {
	flag.Parse()

	if *showVer {
		fmt.Printf("index-supervisor version %s\n", version)
		os.Exit(0)
	}

	command := flag.Args()
	if len(command) == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] -- <command> [args...]\n", os.Args[0])
		os.Exit(2)
	}

	logger, err := logging.Init(*logLevel, "text", "stdout")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	var notifier supervisor.Notifier = supervisor.NewConsoleNotifier(logger)
	if *notifyScript != "" {
		notifier = supervisor.MultiNotifier{
			supervisor.NewConsoleNotifier(logger),
			supervisor.NewScriptNotifier(*notifyScript, logger),
		}
	}

	sup, err := supervisor.New(command, supervisor.Options{
		MaxRestarts:      *maxRestarts,
		MonitoringPeriod: *monitoringPeriod,
		InitialDelay:     *initialDelay,
		MaxDelay:         *maxDelay,
		Notifier:         notifier,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create supervisor: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("Received shutdown signal", "signal", sig.String())
		cancel()
	}()

	logger.Info("Supervising process",
		"command", command[0],
		"max_restarts", *maxRestarts,
		"monitoring_period", monitoringPeriod.String())

	if err := sup.Run(ctx); err != nil {
		if errors.Is(err, supervisor.ErrRestartBudgetExhausted) {
			logger.Error("Restart budget exhausted, exiting", "error", err)
		} else {
			logger.Error("Supervisor failed", "error", err)
		}
		os.Exit(1)
	}
}
