// Package interfaces defines the dependency seams between babysh packages
package interfaces

import (
	"github.com/babysh/babysh/pkg/types"
)

// ProcessHandle is one spawned child process. Wait blocks until the child
// exits or is signaled and must be called at most once per handle.
type ProcessHandle interface {
	Pid() int
	Wait() (types.Outcome, error)
	Kill() error
}

// Spawner starts a child process described by a launch directive, with
// stream redirection resolved and the signal policy applied. Platform
// process primitives live entirely behind this seam.
type Spawner interface {
	Spawn(directive *types.LaunchDirective) (ProcessHandle, error)
}

// JobNotifier is told about finished background jobs.
type JobNotifier interface {
	NotifyJobDone(pid int, outcome types.Outcome)
}

// ShellDependencies carries the injected collaborators of the shell engine.
type ShellDependencies struct {
	Spawner  Spawner
	Notifier JobNotifier
}
