// Package notifier provides desktop notifications for finished background jobs
package notifier

import (
	"fmt"

	"github.com/gen2brain/beeep"

	"github.com/babysh/babysh/pkg/logger"
	"github.com/babysh/babysh/pkg/types"
)

// JobNotifier raises a desktop notification when a background job is
// reaped. Disabled by default; completion is always reported on the
// terminal regardless.
type JobNotifier struct {
	enabled bool
	sound   string
	logger  logger.Logger
}

// Config represents notification configuration
type Config struct {
	Enabled bool
	Sound   string
}

// New creates a new job notifier
func New(config Config, log logger.Logger) *JobNotifier {
	return &JobNotifier{
		enabled: config.Enabled,
		sound:   config.Sound,
		logger:  log,
	}
}

// NotifyJobDone notifies that a background job finished
func (n *JobNotifier) NotifyJobDone(pid int, outcome types.Outcome) {
	if !n.enabled {
		return
	}

	title := "babysh: background job done"
	message := fmt.Sprintf("pid %d: %s", pid, outcome)

	if err := beeep.Notify(title, message, ""); err != nil {
		n.logger.Debug("Failed to send notification", logger.WithField("error", err))
	}

	if n.sound != "" {
		if err := beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration); err != nil {
			n.logger.Debug("Failed to play sound", logger.WithField("error", err))
		}
	}
}
