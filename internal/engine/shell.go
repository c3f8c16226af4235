// Package engine implements the interactive command interpreter core
package engine

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/abiosoft/readline"

	"github.com/babysh/babysh/pkg/interfaces"
	"github.com/babysh/babysh/pkg/jobs"
	"github.com/babysh/babysh/pkg/logger"
	"github.com/babysh/babysh/pkg/parser"
	"github.com/babysh/babysh/pkg/process"
	"github.com/babysh/babysh/pkg/spawn"
	"github.com/babysh/babysh/pkg/types"
)

// Shell is the interactive command interpreter. It owns the job table and
// the status tracker; both are touched only from the control thread that
// drives Run.
type Shell struct {
	cfg      *types.ShellConfig
	pending  atomic.Pointer[types.ShellConfig]
	logger   logger.Logger
	spawner  interfaces.Spawner
	notifier interfaces.JobNotifier
	table    *jobs.Table
	status   *StatusTracker
	guard    *process.InterruptGuard
	out      io.Writer
	exited   bool
}

// New creates a shell. User-visible reports are written to out with the
// exact formats the builtins and the reaper promise.
func New(cfg *types.ShellConfig, log logger.Logger, deps interfaces.ShellDependencies, out io.Writer) *Shell {
	if deps.Spawner == nil {
		panic("Spawner dependency is required")
	}

	return &Shell{
		cfg:      cfg,
		logger:   log,
		spawner:  deps.Spawner,
		notifier: deps.Notifier,
		table:    jobs.NewTable(cfg.MaxBackgroundJobs, log),
		status:   NewStatusTracker(),
		guard:    process.NewInterruptGuard(log),
		out:      out,
	}
}

// ApplyConfig stages a reloaded configuration. Safe to call from any
// goroutine; the control thread adopts it at the next prompt cycle. The
// shell's own config field is never written from outside that thread.
func (s *Shell) ApplyConfig(cfg *types.ShellConfig) {
	s.pending.Store(cfg)
}

// adoptPendingConfig swaps in a staged configuration, if any. Runs on the
// control thread only.
func (s *Shell) adoptPendingConfig() {
	next := s.pending.Swap(nil)
	if next == nil {
		return
	}

	s.cfg = next
	if next.LogLevel != nil {
		s.logger.SetLevel(string(*next.LogLevel))
	}
	s.logger.Debug("Applied reloaded configuration")
}

// Run drives the interactive loop: reap finished background jobs, show
// the prompt, read a line, evaluate it. An interrupt while reading never
// terminates the loop; end of input behaves like the exit builtin.
func (s *Shell) Run() error {
	s.guard.Install()
	defer s.guard.Release()

	rl, err := readline.NewEx(&readline.Config{
		Prompt: s.cfg.Prompt,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize line reader: %w", err)
	}
	defer rl.Close()

	for {
		s.ReapOnce()

		rl.SetPrompt(s.cfg.Prompt)
		line, err := rl.Readline()

		switch {
		case err == io.EOF:
			s.shutdown()
			return nil

		case err == readline.ErrInterrupt:
			continue

		case err != nil:
			return fmt.Errorf("failed to read input: %w", err)
		}

		s.Eval(line)
		if s.exited {
			return nil
		}
	}
}

// Eval interprets one line of input: blank lines and comments are no-ops,
// three builtins run in the shell itself, everything else is launched as
// an external command.
func (s *Shell) Eval(line string) {
	tokens := parser.Tokenize(line)
	if parser.IsNoOp(tokens) {
		return
	}

	switch tokens[0] {
	case "cd":
		s.builtinCd(tokens)
	case "status":
		s.builtinStatus()
	case "exit":
		s.builtinExit()
	default:
		s.launch(tokens)
	}
}

// Exited reports whether the exit builtin has run.
func (s *Shell) Exited() bool {
	return s.exited
}

// ReapOnce sweeps the job table once, reporting and tombstoning every
// finished background job. It runs before each prompt cycle and never
// blocks. A staged configuration reload is adopted here, so it takes
// effect at the cycle boundary.
func (s *Shell) ReapOnce() {
	s.adoptPendingConfig()

	for _, f := range s.table.ReapOnce() {
		fmt.Fprintln(s.out, types.BackgroundDone(f.Pid, f.Outcome))
		if s.notifier != nil && s.cfg.NotificationsEnabled() {
			s.notifier.NotifyJobDone(f.Pid, f.Outcome)
		}
	}
}

// launch resolves the tokens into a directive and runs it. Every failure
// is reported and non-fatal: the shell state is left unchanged except for
// the last-status field.
func (s *Shell) launch(tokens []string) {
	directive, err := parser.Resolve(tokens)
	if err != nil {
		s.reportError(err.Error())
		return
	}

	log := s.logger.WithJob(directive.ID)

	// Capacity is claimed before the child exists so a full table never
	// produces an untracked process.
	if directive.Background && s.table.Full() {
		s.reportError("too many background jobs")
		return
	}

	handle, err := s.spawner.Spawn(directive)
	if err != nil {
		var openErr *spawn.OpenError
		if errors.As(err, &openErr) {
			s.reportError(openErr.Error())
		} else {
			s.reportError(fmt.Sprintf("%s is not a valid command", directive.Program))
		}
		return
	}

	if directive.Background {
		fmt.Fprintln(s.out, types.BackgroundStarted(handle.Pid()))
		if err := s.table.Add(handle); err != nil {
			// Unreachable while launches stay on the control thread; the
			// slot was free when checked above.
			log.Error("Lost a background job slot", logger.WithField("error", err))
		}
		return
	}

	// Foreground: block until that exact child exits or is signaled.
	outcome, err := handle.Wait()
	if err != nil {
		s.reportError(fmt.Sprintf("wait failed: %v", err))
		return
	}

	if outcome.Signaled() {
		fmt.Fprintf(s.out, "terminated by signal %d\n", outcome.Signal)
	}
	s.status.Record(outcome)

	log.Debug("Foreground command finished",
		logger.WithField("outcome", outcome.String()))
}

// reportError prints a non-fatal error and marks the last status as a
// failure.
func (s *Shell) reportError(message string) {
	fmt.Fprintln(s.out, message)
	s.status.RecordFailure()
}

// shutdown kills every tracked background job before the shell exits.
func (s *Shell) shutdown() {
	if n := s.table.Running(); n > 0 {
		s.logger.Debug("Killing background jobs on exit",
			logger.WithField("count", n))
	}
	s.table.KillAll()
}
