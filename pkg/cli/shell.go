package cli

import (
	"fmt"
	"os"

	"github.com/babysh/babysh/internal/engine"
	"github.com/babysh/babysh/pkg/config"
	"github.com/babysh/babysh/pkg/logger"
	"github.com/babysh/babysh/pkg/types"
)

// runShell loads the configuration, wires the dependencies, and drives the
// interactive loop until the exit builtin or end of input.
func runShell() error {
	configPath := getConfigPath()
	manager := config.NewManager()
	cfg, err := manager.LoadOrDefault(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.CreateLogger(cfg.LogFile, effectiveLogLevel(cfg))

	factory := engine.NewDependencyFactory(log, cfg)
	deps := factory.CreateDefaults()

	shell := engine.New(cfg, log, deps, os.Stdout)

	// Reload the configuration between prompt cycles when the file changes.
	// A watch failure is not fatal; the shell just runs without hot reload.
	if _, statErr := os.Stat(configPath); statErr == nil {
		reloader := config.NewReloadManager(configPath, log)
		reloader.AddCallback(func(next *types.ShellConfig, reloadErr error) {
			if reloadErr != nil {
				printError(fmt.Sprintf("config reload failed: %v", reloadErr))
				return
			}
			shell.ApplyConfig(next)
		})
		if watchErr := reloader.StartWatching(); watchErr != nil {
			log.Warn("Config hot reload unavailable",
				logger.WithField("error", watchErr.Error()))
		} else {
			defer reloader.StopWatching()
		}
	}

	if verbosity == "debug" {
		printInfo(fmt.Sprintf("Starting babysh v%s", version))
	}

	return shell.Run()
}

// effectiveLogLevel prefers the command-line flag over the config file so
// a quick -v debug never requires editing the config.
func effectiveLogLevel(cfg *types.ShellConfig) string {
	if verbosity != "" && verbosity != "info" {
		return verbosity
	}
	if cfg.LogLevel != nil {
		return string(*cfg.LogLevel)
	}
	return verbosity
}
