// Package process provides the shell's signal policy and process-group utilities
package process

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/babysh/babysh/pkg/logger"
)

// InterruptGuard implements the interactive loop's interrupt policy: for
// the lifetime of the guard, an interrupt never terminates the shell.
// Deliveries are consumed and logged; nothing else reacts to them.
//
// Children are unaffected: handlers do not survive exec, so a foreground
// child regains the default disposition and dies on Ctrl-C as usual.
type InterruptGuard struct {
	logger  logger.Logger
	sigChan chan os.Signal
	done    chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	active  bool
}

// NewInterruptGuard creates an interrupt guard. Install must be called
// before it has any effect.
func NewInterruptGuard(log logger.Logger) *InterruptGuard {
	return &InterruptGuard{logger: log}
}

// Install subscribes to the interrupt signal and starts draining it.
func (g *InterruptGuard) Install() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.active {
		return
	}
	g.active = true

	g.sigChan = make(chan os.Signal, 1)
	g.done = make(chan struct{})
	signal.Notify(g.sigChan, os.Interrupt)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		for {
			select {
			case <-g.done:
				return
			case sig := <-g.sigChan:
				g.logger.Debug("Interrupt ignored by the shell",
					logger.WithField("signal", sig))
			}
		}
	}()
}

// Release restores the default interrupt disposition.
func (g *InterruptGuard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.active {
		return
	}
	g.active = false

	signal.Stop(g.sigChan)
	close(g.done)
	g.wg.Wait()
}

// IsActive reports whether the guard is currently installed.
func (g *InterruptGuard) IsActive() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.active
}

// SysProcAttr returns the attributes a child is spawned with under the
// shell's per-child signal policy. A foreground child shares the shell's
// process group, so a terminal interrupt reaches it and kills it with the
// default disposition. A background child gets its own process group, so
// an interrupt aimed at the foreground job never reaches it.
func SysProcAttr(background bool) *syscall.SysProcAttr {
	if background {
		return &syscall.SysProcAttr{Setpgid: true}
	}
	return nil
}

// KillGroup forcefully terminates pid's process group with SIGKILL,
// falling back to the single process when it leads no group of its own.
// A process that is already gone counts as killed.
func KillGroup(pid int) error {
	if err := unix.Kill(-pid, unix.SIGKILL); err == nil {
		return nil
	}
	if !Alive(pid) {
		return nil
	}
	return unix.Kill(pid, unix.SIGKILL)
}

// Alive reports whether pid still exists.
func Alive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}
