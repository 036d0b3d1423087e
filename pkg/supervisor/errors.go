package supervisor

import "errors"

var (
	// ErrRestartBudgetExhausted indicates the circuit breaker tripped:
	// the child crashed more than the allowed number of times within one
	// monitoring window.
	ErrRestartBudgetExhausted = errors.New("restart budget exhausted")

	// ErrNoCommand indicates the supervisor was given nothing to run.
	ErrNoCommand = errors.New("no command to supervise")
)
