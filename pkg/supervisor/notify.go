package supervisor

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"tc.com/index-collector/pkg/logging"
)

// Severity classifies an operator notification.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityError    Severity = "ERROR"
	SeverityCritical Severity = "CRITICAL"
)

// Notifier delivers operator notifications about the supervised process.
type Notifier interface {
	Notify(ctx context.Context, severity Severity, message string)
}

// ConsoleNotifier writes notifications to the structured log.
type ConsoleNotifier struct {
	logger *logging.Logger
}

var _ Notifier = (*ConsoleNotifier)(nil)

func NewConsoleNotifier(logger *logging.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{logger: logger}
}

func (n *ConsoleNotifier) Notify(_ context.Context, severity Severity, message string) {
	switch severity {
	case SeverityInfo:
		n.logger.Info(message)
	case SeverityWarning:
		n.logger.Warn(message)
	default:
		n.logger.Error(message, "severity", string(severity))
	}
}

// ScriptNotifier invokes an external script with the severity and message as
// arguments, so operators can hook alerting systems in without rebuilding.
type ScriptNotifier struct {
	path    string
	timeout time.Duration
	logger  *logging.Logger
}

var _ Notifier = (*ScriptNotifier)(nil)

func NewScriptNotifier(path string, logger *logging.Logger) *ScriptNotifier {
	return &ScriptNotifier{
		path:    path,
		timeout: 30 * time.Second,
		logger:  logger,
	}
}

// Notify runs the script synchronously. Script failures are logged but never
// interfere with the restart loop.
func (n *ScriptNotifier) Notify(ctx context.Context, severity Severity, message string) {
	runCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, n.path, string(severity), message)
	if output, err := cmd.CombinedOutput(); err != nil {
		n.logger.Error("Notification script failed",
			"script", n.path,
			"error", err,
			"output", string(output))
	}
}

// MultiNotifier fans one notification out to several notifiers.
type MultiNotifier []Notifier

var _ Notifier = (MultiNotifier)(nil)

func (m MultiNotifier) Notify(ctx context.Context, severity Severity, message string) {
	for _, n := range m {
		n.Notify(ctx, severity, message)
	}
}

func severityForAttempt(attempt, maxRestarts int) Severity {
	if attempt >= maxRestarts {
		return SeverityError
	}
	return SeverityWarning
}

func restartMessage(attempt, maxRestarts int, delay time.Duration) string {
	return fmt.Sprintf("supervised process crashed, restart %d/%d in %s", attempt, maxRestarts, delay)
}
