// Package config handles XDG configuration directory and file paths.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// AppName is the application directory name.
	AppName = "taskdeck"

	// SettingsFile is the client settings filename.
	SettingsFile = "config.yaml"

	// TokenFile is the stored session credential filename.
	TokenFile = "token.json"

	// DefaultServerURL is used when no server is configured.
	DefaultServerURL = "http://localhost:8000"

	// ServerEnv overrides the configured server URL.
	ServerEnv = "TASKDECK_SERVER"
)

// Config holds configuration paths and settings.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// ServerURL is the base URL of the task API.
	ServerURL string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool
}

// settings is the on-disk shape of config.yaml.
type settings struct {
	Server string `yaml:"server"`
}

// New creates a Config with the default or specified config directory and
// resolves the server URL from config.yaml and the environment.
// If configDir is empty, uses XDG_CONFIG_HOME/taskdeck or $HOME/.config/taskdeck.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	c := &Config{Dir: dir, ServerURL: DefaultServerURL}

	if err := c.loadSettings(); err != nil {
		return nil, err
	}
	if env := strings.TrimSpace(os.Getenv(ServerEnv)); env != "" {
		c.ServerURL = env
	}
	c.ServerURL = strings.TrimRight(c.ServerURL, "/")
	return c, nil
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// SettingsPath returns the path to the client settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, SettingsFile)
}

// TokenPath returns the path to the stored session credential file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// loadSettings reads config.yaml if present. A missing file is not an error.
func (c *Config) loadSettings() error {
	data, err := os.ReadFile(c.SettingsPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", SettingsFile, err)
	}
	var s settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid %s: %w", SettingsFile, err)
	}
	if strings.TrimSpace(s.Server) != "" {
		c.ServerURL = strings.TrimSpace(s.Server)
	}
	return nil
}

// SaveSettings writes the current server URL to config.yaml.
func (c *Config) SaveSettings() error {
	if err := c.EnsureDir(); err != nil {
		return err
	}
	data, err := yaml.Marshal(settings{Server: c.ServerURL})
	if err != nil {
		return err
	}
	return os.WriteFile(c.SettingsPath(), data, 0600)
}
