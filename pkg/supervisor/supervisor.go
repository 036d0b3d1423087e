package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"tc.com/index-collector/pkg/logging"
)

const (
	defaultMaxRestarts      = 5
	defaultMonitoringPeriod = 10 * time.Minute
	defaultInitialDelay     = 5 * time.Second
	defaultMaxDelay         = 60 * time.Second
)

// Options configures a Supervisor. Zero values select defaults.
type Options struct {
	// MaxRestarts is the number of crashes tolerated within one
	// monitoring window before the circuit breaker trips.
	MaxRestarts int
	// MonitoringPeriod is the window after which the restart count
	// resets.
	MonitoringPeriod time.Duration
	// InitialDelay is the backoff before the first restart. It doubles
	// per consecutive restart up to MaxDelay.
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Notifier     Notifier
}

// Supervisor runs a command as a child process and restarts it on crash with
// exponential backoff. Crashing more than MaxRestarts times within one
// monitoring window trips the circuit breaker and stops the supervisor.
type Supervisor struct {
	command []string
	opts    Options
	logger  *logging.Logger

	// launch is swapped in tests to avoid spawning real processes.
	launch func(ctx context.Context, command []string) error
}

// New creates a supervisor for the given command line.
func New(command []string, opts Options, logger *logging.Logger) (*Supervisor, error) {
	if len(command) == 0 {
		return nil, ErrNoCommand
	}

	if opts.MaxRestarts <= 0 {
		opts.MaxRestarts = defaultMaxRestarts
	}
	if opts.MonitoringPeriod <= 0 {
		opts.MonitoringPeriod = defaultMonitoringPeriod
	}
	if opts.InitialDelay <= 0 {
		opts.InitialDelay = defaultInitialDelay
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = defaultMaxDelay
	}
	if opts.Notifier == nil {
		opts.Notifier = NewConsoleNotifier(logger)
	}

	return &Supervisor{
		command: command,
		opts:    opts,
		logger:  logger,
		launch:  runProcess,
	}, nil
}

// Run supervises the child until it exits cleanly, the restart budget is
// exhausted, or ctx is canceled. A tripped circuit breaker is reported as
// ErrRestartBudgetExhausted.
func (s *Supervisor) Run(ctx context.Context) error {
	restartCount := 0
	windowStart := time.Now()

	for {
		if ctx.Err() != nil {
			return nil
		}

		if time.Since(windowStart) >= s.opts.MonitoringPeriod {
			if restartCount > 0 {
				s.logger.Info("Monitoring window elapsed, resetting restart count",
					"previous_count", restartCount)
			}
			restartCount = 0
			windowStart = time.Now()
		}

		if restartCount >= s.opts.MaxRestarts {
			msg := fmt.Sprintf("supervised process crashed %d times within %s, giving up",
				restartCount, s.opts.MonitoringPeriod)
			s.opts.Notifier.Notify(ctx, SeverityCritical, msg)
			return fmt.Errorf("%w: %d restarts within %s",
				ErrRestartBudgetExhausted, restartCount, s.opts.MonitoringPeriod)
		}

		s.logger.Info("Starting supervised process", "command", s.command[0])
		err := s.launch(ctx, s.command)
		if err == nil {
			s.logger.Info("Supervised process exited cleanly")
			return nil
		}
		if ctx.Err() != nil {
			return nil
		}

		restartCount++
		delay := backoffDelay(s.opts.InitialDelay, s.opts.MaxDelay, restartCount)

		severity := severityForAttempt(restartCount, s.opts.MaxRestarts)
		s.opts.Notifier.Notify(ctx, severity, restartMessage(restartCount, s.opts.MaxRestarts, delay))
		s.logger.Error("Supervised process crashed",
			"error", err,
			"restart_count", restartCount,
			"delay", delay.String())

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil
		}
	}
}

// backoffDelay doubles the initial delay per consecutive restart, capped at
// the maximum.
func backoffDelay(initial, max time.Duration, restartCount int) time.Duration {
	if restartCount < 1 {
		restartCount = 1
	}
	delay := initial << (restartCount - 1)
	if delay > max || delay <= 0 {
		return max
	}
	return delay
}

// runProcess runs the command to completion, forwarding its output. The
// child shares the supervisor's cancellation.
func runProcess(ctx context.Context, command []string) error {
	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
