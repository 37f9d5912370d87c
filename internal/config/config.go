// Package config loads tool settings from YAML with environment
// overrides, so API credentials can stay out of the file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the persisted tool configuration.
type Config struct {
	Backend string        `yaml:"backend"`
	Shots   int           `yaml:"shots"`
	Inputs  int           `yaml:"inputs"`
	Theme   string        `yaml:"theme"`
	Remote  RemoteConfig  `yaml:"remote"`
	History HistoryConfig `yaml:"history"`
}

// RemoteConfig points at a cloud quantum provider. Durations are
// strings like "2s" so the YAML stays readable.
type RemoteConfig struct {
	BaseURL      string `yaml:"base_url"`
	Token        string `yaml:"token"`
	Device       string `yaml:"device"`
	MaxQubits    int    `yaml:"max_qubits"`
	MaxShots     int    `yaml:"max_shots"`
	PollInterval string `yaml:"poll_interval"`
	JobTimeout   string `yaml:"job_timeout"`
}

// HistoryConfig controls the local run database.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DefaultConfig returns the settings a fresh install starts with.
func DefaultConfig() *Config {
	return &Config{
		Backend: "statevector",
		Shots:   1024,
		Inputs:  3,
		Theme:   "auto",
		Remote: RemoteConfig{
			PollInterval: "2s",
			JobTimeout:   "5m",
		},
		History: HistoryConfig{
			Enabled: true,
		},
	}
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "qtutor.yaml"
	}
	return filepath.Join(home, ".qtutor", "config.yaml")
}

// DefaultHistoryPath is the run database location when the config does
// not name one.
func DefaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "qtutor-runs.db"
	}
	return filepath.Join(home, ".qtutor", "runs.db")
}

// Load reads the config at path, or the default path when path is
// empty. A missing file is not an error: defaults apply. Environment
// overrides win over the file either way.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides lets credentials and endpoints come from the
// environment instead of sitting in a file on disk.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("QTUTOR_API_URL"); v != "" {
		c.Remote.BaseURL = v
	}
	if v := os.Getenv("QTUTOR_API_TOKEN"); v != "" {
		c.Remote.Token = v
	}
	if v := os.Getenv("QTUTOR_DEVICE"); v != "" {
		c.Remote.Device = v
	}
	if v := os.Getenv("QTUTOR_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("QTUTOR_HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
}

// Configured reports whether the remote provider has enough settings to
// build a client.
func (r RemoteConfig) Configured() bool {
	return r.BaseURL != "" && r.Token != ""
}

// GetPollInterval parses the poll interval, falling back to 2s on a
// missing or malformed value.
func (r RemoteConfig) GetPollInterval() time.Duration {
	if d, err := time.ParseDuration(r.PollInterval); err == nil && d > 0 {
		return d
	}
	return 2 * time.Second
}

// GetJobTimeout parses the overall job deadline, falling back to 5m.
func (r RemoteConfig) GetJobTimeout() time.Duration {
	if d, err := time.ParseDuration(r.JobTimeout); err == nil && d > 0 {
		return d
	}
	return 5 * time.Minute
}

// HistoryPath resolves the run database location.
func (h HistoryConfig) HistoryPath() string {
	if h.Path != "" {
		return h.Path
	}
	return DefaultHistoryPath()
}
