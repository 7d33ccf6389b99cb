package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the project-level config file discovered by walking
// up from the working directory.
const ConfigFileName = ".sentry-mcp.yaml"

// Config holds the runtime configuration for the sentry-mcp server.
// It can be populated from CLI flags, a config file, or both; the auth
// token deliberately stays out of the file and comes from the
// SENTRY_AUTH_TOKEN environment variable only.
type Config struct {
	// Comment field for user documentation (ignored by the application)
	Comment string `yaml:"comment,omitempty"`

	// Host is the backend hostname, e.g. "sentry.example.com".
	Host string `yaml:"host,omitempty"`

	// RequestTimeout bounds each outbound API call (e.g. "30s").
	RequestTimeout string `yaml:"request_timeout,omitempty"`

	// Logging configuration
	Verbose bool `yaml:"verbose,omitempty"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Host:           "sentry.io",
		RequestTimeout: "30s",
		Verbose:        false,
	}
}

// Timeout parses RequestTimeout, falling back to 30s on empty or
// malformed input.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// LoadConfigFromFile loads configuration from a YAML file at the given
// path. It returns an error if the file cannot be read or parsed.
func LoadConfigFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return &config, nil
}

// FindProjectConfig searches for a .sentry-mcp.yaml config file. It
// starts in the current directory and walks up looking for the file,
// stopping when it finds a .git directory (project root) or reaches the
// filesystem root. Returns an empty path when no config exists.
func FindProjectConfig() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		// Stop at the repo root even when no config was found.
		gitPath := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}
