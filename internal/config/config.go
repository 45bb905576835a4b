// Package config provides configuration management for the enigma tools.
//
// The config file describes the default machine (rotor selection, wheels,
// plugboard), keyboard handling, and the server, database and metrics
// settings used by `enigma serve`.
//
// Config file locations (priority order):
//  1. $ENIGMA_CONFIG
//  2. ./enigma.yaml
//  3. $XDG_CONFIG_HOME/enigma/config.yaml
//  4. ~/.config/enigma/config.yaml
//  5. /etc/enigma/config.yaml
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	if _, err := cfg.Machine.Settings(); err != nil {
		return nil, path, fmt.Errorf("invalid machine: %w", err)
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns rotors I, II, III at AAA with reflector B
func DefaultConfig() *Config {
	cfg := &Config{
		Version: 1,
		Machine: DefaultMachine(),
	}
	cfg.applyDefaults()
	return cfg
}

// DefaultMachine returns the standard three-rotor machine
func DefaultMachine() MachineConfig {
	return MachineConfig{
		EntryWheel: "ALPHA",
		Reflector:  "B",
		Rotors: []RotorConfig{
			{Type: "I", Position: "A"},
			{Type: "II", Position: "A"},
			{Type: "III", Position: "A"},
		},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	// Catalog wheels only fit the A..Z alphabet
	if c.Machine.Alphabet == "" {
		if c.Machine.EntryWheel == "" {
			c.Machine.EntryWheel = "ALPHA"
		}
		if c.Machine.Reflector == "" {
			c.Machine.Reflector = "B"
		}
		if len(c.Machine.Rotors) == 0 {
			c.Machine.Rotors = DefaultMachine().Rotors
		}
	}
	if c.Input.Group < 0 {
		c.Input.Group = 0
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":3000"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = Duration(10 * time.Second)
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = Duration(30 * time.Second)
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = Duration(60 * time.Second)
	}
	if c.Database.Path == "" {
		c.Database.Path = "./enigma.db"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	var names []string
	for _, r := range c.Machine.Rotors {
		name := r.Type
		if name == "" {
			name = "custom"
		}
		pos := r.Position
		if pos == "" {
			pos = "A"
		}
		names = append(names, fmt.Sprintf("%s@%s", name, pos))
	}

	summary := fmt.Sprintf("Rotors (fast first): %s\n", strings.Join(names, " "))
	summary += fmt.Sprintf("Reflector: %s, Entry wheel: %s\n", c.Machine.Reflector, c.Machine.EntryWheel)
	plugboard := c.Machine.Plugboard
	if plugboard == "" {
		plugboard = "(none)"
	}
	summary += fmt.Sprintf("Plugboard: %s\n", plugboard)
	summary += fmt.Sprintf("Server: %s, Database: %s, Metrics: %v", c.Server.Addr, c.Database.Path, c.Metrics.Enabled)

	return summary
}
