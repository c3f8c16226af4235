// Package config handles configuration loading and management
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/babysh/babysh/pkg/types"
	"gopkg.in/yaml.v3"
)

// DefaultFileName is the configuration file babysh looks for when no
// explicit path is given.
const DefaultFileName = "babysh.config.json"

const (
	// DefaultPrompt is printed before each line of input.
	DefaultPrompt = ": "
	// DefaultMaxBackgroundJobs bounds the job table.
	DefaultMaxBackgroundJobs = 100
	// DefaultLogLevel is the diagnostic verbosity when none is configured.
	DefaultLogLevel = types.LogLevelInfo
)

// Manager handles configuration operations
type Manager struct{}

// NewManager creates a new configuration manager
func NewManager() *Manager {
	return &Manager{}
}

// LoadConfig loads configuration from a file. JSON is tried first, then
// YAML. Defaults are applied to every field the file leaves unset.
func (m *Manager) LoadConfig(path string) (*types.ShellConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg types.ShellConfig

	// Try JSON first
	if err := json.Unmarshal(data, &cfg); err == nil {
		return m.finishLoad(&cfg)
	}

	// Try YAML, bridging through JSON so both formats share struct tags
	var yamlData map[string]interface{}
	if err := yaml.Unmarshal(data, &yamlData); err == nil {
		jsonData, err := json.Marshal(yamlData)
		if err == nil {
			if err := json.Unmarshal(jsonData, &cfg); err == nil {
				return m.finishLoad(&cfg)
			}
		}
	}

	return nil, fmt.Errorf("failed to parse config as JSON or YAML")
}

func (m *Manager) finishLoad(cfg *types.ShellConfig) (*types.ShellConfig, error) {
	ApplyDefaults(cfg)
	if err := m.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ValidateConfig validates a configuration
func (m *Manager) ValidateConfig(cfg *types.ShellConfig) error {
	if cfg.Version != "1.0" {
		return fmt.Errorf("unsupported config version: %s", cfg.Version)
	}

	if cfg.MaxBackgroundJobs <= 0 {
		return fmt.Errorf("maxBackgroundJobs must be positive, got %d", cfg.MaxBackgroundJobs)
	}

	if cfg.LogLevel != nil {
		switch *cfg.LogLevel {
		case types.LogLevelDebug, types.LogLevelInfo, types.LogLevelWarn, types.LogLevelError:
		default:
			return fmt.Errorf("invalid log level: %s", *cfg.LogLevel)
		}
	}

	return nil
}

// ApplyDefaults fills unset fields with their defaults. The version is
// defaulted too so a minimal or empty file is a valid configuration.
func ApplyDefaults(cfg *types.ShellConfig) {
	if cfg.Version == "" {
		cfg.Version = "1.0"
	}
	if cfg.Prompt == "" {
		cfg.Prompt = DefaultPrompt
	}
	if cfg.MaxBackgroundJobs == 0 {
		cfg.MaxBackgroundJobs = DefaultMaxBackgroundJobs
	}
	if cfg.LogLevel == nil {
		level := DefaultLogLevel
		cfg.LogLevel = &level
	}
}

// GetDefaultConfig returns the configuration used when no file exists.
func (m *Manager) GetDefaultConfig() *types.ShellConfig {
	cfg := &types.ShellConfig{}
	ApplyDefaults(cfg)
	return cfg
}

// LoadOrDefault loads the configuration at path, falling back to defaults
// when the file does not exist. A file that exists but fails to parse or
// validate is still an error.
func (m *Manager) LoadOrDefault(path string) (*types.ShellConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return m.GetDefaultConfig(), nil
	}
	return m.LoadConfig(path)
}

// DefaultConfigPath resolves the configuration file location: the working
// directory first, then the user's home directory.
func DefaultConfigPath() string {
	if _, err := os.Stat(DefaultFileName); err == nil {
		return DefaultFileName
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, DefaultFileName)
	}
	return DefaultFileName
}
