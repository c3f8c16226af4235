// Package mocks provides mock implementations of interfaces for testing.
// These follow Go best practices for test doubles.
package mocks

import (
	"fmt"
	"sync"

	"github.com/babysh/babysh/pkg/interfaces"
	"github.com/babysh/babysh/pkg/types"
)

// MockProcessHandle is a scripted child process. A handle created with a
// done channel blocks in Wait until Release or Kill; otherwise Wait
// returns the scripted outcome immediately.
type MockProcessHandle struct {
	mu      sync.Mutex
	pid     int
	outcome types.Outcome
	waitErr error
	done    chan struct{}
	killed  bool
}

// NewMockProcessHandle creates a handle whose Wait returns immediately.
func NewMockProcessHandle(pid int, outcome types.Outcome) *MockProcessHandle {
	return &MockProcessHandle{pid: pid, outcome: outcome}
}

// NewBlockingProcessHandle creates a handle whose Wait blocks until
// Release or Kill is called.
func NewBlockingProcessHandle(pid int, outcome types.Outcome) *MockProcessHandle {
	return &MockProcessHandle{pid: pid, outcome: outcome, done: make(chan struct{})}
}

// SetWaitError scripts an error return from Wait.
func (m *MockProcessHandle) SetWaitError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waitErr = err
}

// Pid returns the scripted process ID
func (m *MockProcessHandle) Pid() int { return m.pid }

// Wait returns the scripted outcome, blocking first if the handle was
// created blocking
func (m *MockProcessHandle) Wait() (types.Outcome, error) {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done != nil {
		<-done
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.killed {
		return types.Outcome{Signal: 9}, nil
	}
	return m.outcome, m.waitErr
}

// Kill marks the handle killed and unblocks Wait
func (m *MockProcessHandle) Kill() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.killed {
		return nil
	}
	m.killed = true
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
	return nil
}

// Killed reports whether Kill was called
func (m *MockProcessHandle) Killed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.killed
}

// Release unblocks Wait without marking the handle killed
func (m *MockProcessHandle) Release() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.done != nil && !m.killed {
		close(m.done)
		m.done = nil
	}
}

// MockSpawner is a mock implementation of Spawner for testing. Handles
// are scripted per program name; every received directive is recorded.
type MockSpawner struct {
	mu         sync.Mutex
	handles    map[string]*MockProcessHandle
	spawnErr   error
	directives []*types.LaunchDirective
}

// NewMockSpawner creates a new mock spawner
func NewMockSpawner() *MockSpawner {
	return &MockSpawner{handles: make(map[string]*MockProcessHandle)}
}

// Script registers the handle returned when program is spawned
func (m *MockSpawner) Script(program string, handle *MockProcessHandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handles[program] = handle
}

// SetSpawnError makes every Spawn call fail with err
func (m *MockSpawner) SetSpawnError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spawnErr = err
}

// Spawn records the directive and returns the scripted handle
func (m *MockSpawner) Spawn(directive *types.LaunchDirective) (interfaces.ProcessHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.directives = append(m.directives, directive)
	if m.spawnErr != nil {
		return nil, m.spawnErr
	}
	h, ok := m.handles[directive.Program]
	if !ok {
		return nil, fmt.Errorf("no handle scripted for %s", directive.Program)
	}
	return h, nil
}

// Directives returns a copy of every directive received so far
func (m *MockSpawner) Directives() []*types.LaunchDirective {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.LaunchDirective, len(m.directives))
	copy(out, m.directives)
	return out
}

// MockNotifier is a mock implementation of JobNotifier for testing
type MockNotifier struct {
	mu       sync.Mutex
	notified []int
}

// NewMockNotifier creates a new mock notifier
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// NotifyJobDone records the pid of the finished job
func (m *MockNotifier) NotifyJobDone(pid int, outcome types.Outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notified = append(m.notified, pid)
}

// Notified returns a copy of the recorded pids
func (m *MockNotifier) Notified() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.notified))
	copy(out, m.notified)
	return out
}
