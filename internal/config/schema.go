package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Machine  MachineConfig  `yaml:"machine"`
	Input    InputConfig    `yaml:"input"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// MachineConfig describes the default machine. Wheels and rotors are either
// catalog names or literal wirings.
type MachineConfig struct {
	Alphabet   string        `yaml:"alphabet,omitempty"`
	EntryWheel string        `yaml:"entry_wheel"`
	Reflector  string        `yaml:"reflector"`
	Rotors     []RotorConfig `yaml:"rotors"` // fast rotor first
	Plugboard  string        `yaml:"plugboard,omitempty"`
}

// RotorConfig selects one rotor. Type names a catalog rotor; Wiring and
// Notches override it or describe a custom rotor.
type RotorConfig struct {
	Type     string  `yaml:"type,omitempty"`
	Wiring   string  `yaml:"wiring,omitempty"`
	Notches  *string `yaml:"notches,omitempty"`
	Position string  `yaml:"position,omitempty"` // symbol, e.g. "A"
	Ring     string  `yaml:"ring,omitempty"`     // symbol, inert
}

// InputConfig controls how the keyboard reads characters
type InputConfig struct {
	PreserveCase bool `yaml:"preserve_case,omitempty"`
	Group        int  `yaml:"group,omitempty"` // output block size, 0 = ungrouped
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr         string   `yaml:"addr"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	IdleTimeout  Duration `yaml:"idle_timeout"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path,omitempty"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
