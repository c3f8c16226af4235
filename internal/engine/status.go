package engine

import (
	"github.com/babysh/babysh/pkg/types"
)

// StatusTracker holds the outcome of the last foreground command for the
// status builtin. It is owned by the shell's single control thread;
// background completions never touch it.
type StatusTracker struct {
	exitCode int
	signal   int
}

// NewStatusTracker creates a tracker reporting exit value 0, the outcome
// before any foreground command has run.
func NewStatusTracker() *StatusTracker {
	return &StatusTracker{}
}

// Record stores a foreground outcome. A normal exit clears any prior
// signal termination; a signal termination leaves the old exit code in
// place, shadowed until the next normal exit.
func (t *StatusTracker) Record(outcome types.Outcome) {
	if outcome.Signaled() {
		t.signal = outcome.Signal
		return
	}
	t.exitCode = outcome.ExitCode
	t.signal = 0
}

// RecordFailure marks the last status as a failure without touching the
// signal field: only a foreground completion can clear a signal
// termination.
func (t *StatusTracker) RecordFailure() {
	t.exitCode = 1
}

// Outcome returns what the status builtin reports: the terminating signal
// when one is set, the exit code otherwise.
func (t *StatusTracker) Outcome() types.Outcome {
	if t.signal != 0 {
		return types.Outcome{Signal: t.signal}
	}
	return types.Outcome{ExitCode: t.exitCode}
}
