package engine

import (
	"github.com/babysh/babysh/pkg/interfaces"
	"github.com/babysh/babysh/pkg/logger"
	"github.com/babysh/babysh/pkg/notifier"
	"github.com/babysh/babysh/pkg/spawn"
	"github.com/babysh/babysh/pkg/types"
)

// DependencyFactory creates default implementations of dependencies.
// This follows the dependency injection pattern and removes hidden
// concrete fallbacks from constructors.
type DependencyFactory struct {
	logger logger.Logger
	config *types.ShellConfig
}

// NewDependencyFactory creates a new dependency factory
func NewDependencyFactory(logger logger.Logger, config *types.ShellConfig) *DependencyFactory {
	return &DependencyFactory{
		logger: logger,
		config: config,
	}
}

// CreateDefaults creates all default dependencies for the shell.
// This centralizes dependency creation and makes it explicit and testable.
func (f *DependencyFactory) CreateDefaults() interfaces.ShellDependencies {
	deps := interfaces.ShellDependencies{
		Spawner: f.createSpawner(),
	}

	// Create notifier only if notifications are enabled
	if f.config.NotificationsEnabled() {
		deps.Notifier = f.createNotifier()
	}

	return deps
}

// CreateWithOverrides creates dependencies with specific overrides.
// This is useful for testing or custom configurations.
func (f *DependencyFactory) CreateWithOverrides(overrides interfaces.ShellDependencies) interfaces.ShellDependencies {
	deps := f.CreateDefaults()

	if overrides.Spawner != nil {
		deps.Spawner = overrides.Spawner
	}
	if overrides.Notifier != nil {
		deps.Notifier = overrides.Notifier
	}

	return deps
}

func (f *DependencyFactory) createSpawner() interfaces.Spawner {
	return spawn.New(f.logger)
}

func (f *DependencyFactory) createNotifier() interfaces.JobNotifier {
	cfg := notifier.Config{Enabled: true}
	if f.config.Notifications != nil {
		cfg.Sound = f.config.Notifications.Sound
	}
	return notifier.New(cfg, f.logger)
}
