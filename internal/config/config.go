// Package config loads the optional robogen.yaml project file. Flags always
// override file values; the file only provides defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the conventional config location, resolved relative to
// the working directory.
const DefaultFileName = "robogen.yaml"

// Config carries the file-settable defaults for all commands.
type Config struct {
	// Repo is a local path or git URL to the service-console source tree.
	Repo string `yaml:"repo"`
	// Output is the directory generated suites are written to.
	Output string `yaml:"output"`
	// Model is the LLM model identifier.
	Model string `yaml:"model"`
	// BaseURL points at an OpenAI-compatible endpoint.
	BaseURL string `yaml:"base_url"`
	// PollSeconds is the remote-watch polling interval.
	PollSeconds float64 `yaml:"poll_seconds"`
	// Template forces the deterministic synthesizer (no LLM calls).
	Template bool `yaml:"template"`
}

// Load reads and validates the config at path. A missing file yields zero
// defaults, not an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values no command could act on.
func (c *Config) Validate() error {
	if c.PollSeconds < 0 {
		return fmt.Errorf("poll_seconds must not be negative: %v", c.PollSeconds)
	}
	return nil
}
