// Package spawn launches child processes with resolved redirection and signal policy
package spawn

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/babysh/babysh/pkg/interfaces"
	"github.com/babysh/babysh/pkg/logger"
	"github.com/babysh/babysh/pkg/process"
	"github.com/babysh/babysh/pkg/types"
)

// OpenError reports a redirection target that could not be opened. The
// command is aborted before any process is spawned.
type OpenError struct {
	Path string
	Kind types.RedirectionKind
	Err  error
}

func (e *OpenError) Error() string {
	if e.Kind == types.RedirectionInput {
		return fmt.Sprintf("cannot open %s for input", e.Path)
	}
	return fmt.Sprintf("cannot open %s for output", e.Path)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ExecSpawner implements interfaces.Spawner on top of os/exec.
type ExecSpawner struct {
	logger logger.Logger
}

// New creates a spawner.
func New(log logger.Logger) *ExecSpawner {
	return &ExecSpawner{logger: log}
}

// Spawn resolves the directive's file descriptors, applies the signal
// policy, and starts the child. Descriptors are opened before the child is
// created, so an open failure aborts the command without leaving an
// orphaned process behind.
func (s *ExecSpawner) Spawn(directive *types.LaunchDirective) (interfaces.ProcessHandle, error) {
	log := s.logger.WithJob(directive.ID)

	stdin, stdout, err := resolveStreams(directive)
	if err != nil {
		return nil, err
	}

	var args []string
	if len(directive.Argv) > 1 {
		args = directive.Argv[1:]
	}
	cmd := exec.Command(directive.Program, args...)
	cmd.SysProcAttr = process.SysProcAttr(directive.Background)

	if stdin != nil {
		cmd.Stdin = stdin
	} else {
		cmd.Stdin = os.Stdin
	}
	if stdout != nil {
		cmd.Stdout = stdout
	} else {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = os.Stderr

	err = cmd.Start()

	// The child holds its own copies of the descriptors now (or was never
	// created); the parent's are closed either way.
	closeAll(stdin, stdout)

	if err != nil {
		log.Debug("Failed to start command",
			logger.WithField("program", directive.Program),
			logger.WithField("error", err))
		return nil, err
	}

	log.Debug("Started command",
		logger.WithField("program", directive.Program),
		logger.WithField("pid", cmd.Process.Pid),
		logger.WithField("background", directive.Background))

	return &execHandle{cmd: cmd}, nil
}

// resolveStreams opens the descriptors the directive calls for. A nil file
// means the child inherits the shell's stream. A background job with no
// explicit redirection gets both streams bound to the null device so a
// detached job can neither block on terminal input nor write to it.
func resolveStreams(directive *types.LaunchDirective) (stdin, stdout *os.File, err error) {
	redir := directive.Redirection

	if directive.Background && redir.Kind != types.RedirectionInput {
		stdin, err = os.Open(os.DevNull)
		if err != nil {
			return nil, nil, &OpenError{Path: os.DevNull, Kind: types.RedirectionInput, Err: err}
		}
	}
	if directive.Background && redir.Kind != types.RedirectionOutput {
		stdout, err = os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		if err != nil {
			closeAll(stdin)
			return nil, nil, &OpenError{Path: os.DevNull, Kind: types.RedirectionOutput, Err: err}
		}
	}

	switch redir.Kind {
	case types.RedirectionInput:
		stdin, err = os.Open(redir.Path)
		if err != nil {
			closeAll(stdout)
			return nil, nil, &OpenError{Path: redir.Path, Kind: redir.Kind, Err: err}
		}
	case types.RedirectionOutput:
		stdout, err = os.OpenFile(redir.Path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			closeAll(stdin)
			return nil, nil, &OpenError{Path: redir.Path, Kind: redir.Kind, Err: err}
		}
	}

	return stdin, stdout, nil
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		if f != nil {
			f.Close()
		}
	}
}

// execHandle wraps a started exec.Cmd.
type execHandle struct {
	cmd *exec.Cmd
}

func (h *execHandle) Pid() int {
	return h.cmd.Process.Pid
}

// Wait blocks until the child exits or is signaled and decodes the wait
// status into an outcome. An error is returned only for wait-level
// failures, never for a nonzero exit.
func (h *execHandle) Wait() (types.Outcome, error) {
	err := h.cmd.Wait()

	state := h.cmd.ProcessState
	if state == nil {
		return types.Outcome{ExitCode: 1}, fmt.Errorf("wait failed: %w", err)
	}

	if ws, ok := state.Sys().(syscall.WaitStatus); ok {
		if ws.Signaled() {
			return types.Outcome{Signal: int(ws.Signal())}, nil
		}
		return types.Outcome{ExitCode: ws.ExitStatus()}, nil
	}

	// Fallback for platforms without a syscall wait status.
	return types.Outcome{ExitCode: state.ExitCode()}, nil
}

// Kill forcefully terminates the child's process group.
func (h *execHandle) Kill() error {
	return process.KillGroup(h.Pid())
}
