// Package types provides core types and configuration for babysh
package types

import (
	"fmt"
)

// RedirectionKind classifies how a command's standard streams are wired.
type RedirectionKind string

const (
	RedirectionNone   RedirectionKind = "none"
	RedirectionInput  RedirectionKind = "input"
	RedirectionOutput RedirectionKind = "output"
)

// Redirection is a single stream redirection. At most one redirection is
// supported per command; Path is empty when Kind is RedirectionNone.
type Redirection struct {
	Kind RedirectionKind
	Path string
}

// LaunchDirective describes one fully resolved command. It is derived once
// per input line and immutable afterwards. Argv always carries the program
// name at position 0 and never contains control tokens.
type LaunchDirective struct {
	// ID correlates log entries for one launch across packages.
	ID          string
	Program     string
	Argv        []string
	Redirection Redirection
	Background  bool
}

// Outcome records how a process finished: a normal exit code, or the number
// of the signal that terminated it. Signal == 0 means a normal exit.
type Outcome struct {
	ExitCode int
	Signal   int
}

// Signaled reports whether the process was terminated by a signal.
func (o Outcome) Signaled() bool {
	return o.Signal != 0
}

// String renders the outcome in the form the status builtin reports.
func (o Outcome) String() string {
	if o.Signaled() {
		return fmt.Sprintf("terminated by signal %d", o.Signal)
	}
	return fmt.Sprintf("exit value %d", o.ExitCode)
}

// JobState represents the lifecycle of one job table slot.
type JobState string

const (
	// JobStateUnused marks a slot that has never held a job. The first
	// unused slot terminates every table scan.
	JobStateUnused JobState = "unused"
	// JobStateEmpty marks a tombstoned slot whose job finished; the slot is
	// reusable by later background launches.
	JobStateEmpty JobState = "empty"
	// JobStateRunning marks a slot tracking a live background process.
	JobStateRunning JobState = "running"
)

// BackgroundStarted is the message printed when a background job launches.
func BackgroundStarted(pid int) string {
	return fmt.Sprintf("background pid %d", pid)
}

// BackgroundDone is the message printed when a reap sweep observes a
// finished background job.
func BackgroundDone(pid int, outcome Outcome) string {
	return fmt.Sprintf("background pid %d is done: %s", pid, outcome)
}

// LogLevel represents logging verbosity levels.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// ShellConfig is the on-disk configuration for a babysh session.
type ShellConfig struct {
	Version string `json:"version" yaml:"version"`

	// Prompt is printed before each line of input.
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty"`

	// MaxBackgroundJobs bounds the job table. Zero means the default.
	MaxBackgroundJobs int `json:"maxBackgroundJobs,omitempty" yaml:"maxBackgroundJobs,omitempty"`

	LogLevel *LogLevel `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`
	LogFile  string    `json:"logFile,omitempty" yaml:"logFile,omitempty"`

	Notifications *NotificationsConfig `json:"notifications,omitempty" yaml:"notifications,omitempty"`
}

// NotificationsConfig controls desktop notifications for finished
// background jobs.
type NotificationsConfig struct {
	Enabled *bool  `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Sound   string `json:"sound,omitempty" yaml:"sound,omitempty"`
}

// NotificationsEnabled reports whether the config opts in to notifications.
func (c *ShellConfig) NotificationsEnabled() bool {
	return c != nil && c.Notifications != nil &&
		c.Notifications.Enabled != nil && *c.Notifications.Enabled
}
