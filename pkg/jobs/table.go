// Package jobs tracks background jobs in a bounded slot table
package jobs

import (
	"errors"
	"sync"

	"github.com/babysh/babysh/pkg/interfaces"
	"github.com/babysh/babysh/pkg/logger"
	"github.com/babysh/babysh/pkg/types"
)

// ErrTableFull is returned when every slot up to capacity is running a job.
var ErrTableFull = errors.New("job table is full")

// slot is one tracking entry. The table is scanned low to high and the
// first unused slot terminates every scan; slots beyond it have never held
// a job. A tombstoned (empty) slot is reused by later background launches.
type slot struct {
	state   types.JobState
	pid     int
	handle  interfaces.ProcessHandle
	outcome *types.Outcome
}

// Table is the bounded background job table. Completion is recorded by a
// per-job waiter goroutine, so all slot access is mutex-protected; the
// reap sweep itself never blocks.
type Table struct {
	logger  logger.Logger
	waiters *SafeGroup
	slots   []slot
	mu      sync.Mutex
}

// NewTable creates a table with the given slot capacity.
func NewTable(capacity int, log logger.Logger) *Table {
	t := &Table{
		logger:  log,
		waiters: NewSafeGroup(log),
		slots:   make([]slot, capacity),
	}
	for i := range t.slots {
		t.slots[i].state = types.JobStateUnused
	}
	return t
}

// Full reports whether no slot can take another job. Callers check this
// before spawning so a rejected launch never creates an untracked child.
func (t *Table) Full() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.findFree() == -1
}

// Running returns the number of live background jobs.
func (t *Table) Running() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for i := range t.slots {
		if t.slots[i].state == types.JobStateUnused {
			break
		}
		if t.slots[i].state == types.JobStateRunning && t.slots[i].outcome == nil {
			n++
		}
	}
	return n
}

// Add records the handle in the first empty-or-unused slot and starts a
// waiter goroutine that stores the job's outcome when it finishes. It
// never blocks on the job itself.
func (t *Table) Add(handle interfaces.ProcessHandle) error {
	t.mu.Lock()

	idx := t.findFree()
	if idx == -1 {
		t.mu.Unlock()
		return ErrTableFull
	}

	t.slots[idx] = slot{
		state:  types.JobStateRunning,
		pid:    handle.Pid(),
		handle: handle,
	}
	t.mu.Unlock()

	t.waiters.Go(func() error {
		outcome, err := handle.Wait()
		if err != nil {
			t.logger.Warn("Background wait failed",
				logger.WithField("pid", handle.Pid()),
				logger.WithField("error", err))
		}

		t.mu.Lock()
		t.slots[idx].outcome = &outcome
		t.mu.Unlock()
		return nil
	})

	return nil
}

// findFree returns the first empty-or-unused slot index, or -1 when the
// table is full. Caller holds the lock.
func (t *Table) findFree() int {
	for i := range t.slots {
		if t.slots[i].state != types.JobStateRunning {
			return i
		}
	}
	return -1
}

// Finished is one reaped background job.
type Finished struct {
	Pid     int
	Outcome types.Outcome
}

// ReapOnce sweeps the table without blocking: every running slot whose
// outcome has been recorded is tombstoned and returned in slot order. The
// scan stops at the first unused slot.
func (t *Table) ReapOnce() []Finished {
	t.mu.Lock()

	var finished []Finished
	for i := range t.slots {
		if t.slots[i].state == types.JobStateUnused {
			break
		}
		if t.slots[i].state != types.JobStateRunning || t.slots[i].outcome == nil {
			continue
		}

		finished = append(finished, Finished{
			Pid:     t.slots[i].pid,
			Outcome: *t.slots[i].outcome,
		})
		t.slots[i] = slot{state: types.JobStateEmpty}
	}
	t.mu.Unlock()

	for _, f := range finished {
		t.logger.Debug("Reaped background job",
			logger.WithField("pid", f.Pid),
			logger.WithField("outcome", f.Outcome.String()))
	}

	return finished
}

// KillAll sends an unconditional forceful kill to every running job, then
// waits for their waiters to record the terminations. No grace period, no
// escalation: the shell itself is about to terminate.
func (t *Table) KillAll() {
	t.mu.Lock()
	var doomed []interfaces.ProcessHandle
	for i := range t.slots {
		if t.slots[i].state == types.JobStateUnused {
			break
		}
		if t.slots[i].state == types.JobStateRunning && t.slots[i].outcome == nil {
			doomed = append(doomed, t.slots[i].handle)
		}
	}
	t.mu.Unlock()

	for _, handle := range doomed {
		if err := handle.Kill(); err != nil {
			t.logger.Warn("Failed to kill background job",
				logger.WithField("pid", handle.Pid()),
				logger.WithField("error", err))
		}
	}

	if err := t.waiters.Wait(); err != nil {
		t.logger.Warn("Waiter group finished with error",
			logger.WithField("error", err))
	}
}
