package domain

import "fmt"

// RotorSettings describes one rotor in a machine.
type RotorSettings struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Wiring      string `json:"wiring" yaml:"wiring"`
	Notches     string `json:"notches,omitempty" yaml:"notches,omitempty"`
	Position    int    `json:"position" yaml:"position"`
	RingSetting int    `json:"ring_setting,omitempty" yaml:"ring_setting,omitempty"`
}

// Settings is the complete construction-time configuration of a machine.
// Rotors are listed fast rotor first.
type Settings struct {
	Alphabet   string          `json:"alphabet,omitempty" yaml:"alphabet,omitempty"`
	EntryWheel string          `json:"entry_wheel" yaml:"entry_wheel"`
	Reflector  string          `json:"reflector" yaml:"reflector"`
	Rotors     []RotorSettings `json:"rotors" yaml:"rotors"`
	Plugboard  []string        `json:"plugboard,omitempty" yaml:"plugboard,omitempty"`
}

// Validate reports the first configuration error, if any.
func (s Settings) Validate() error {
	_, err := NewMachine(s)
	return err
}

// InitialPositions returns the configured rotor positions, fast rotor first.
func (s Settings) InitialPositions() []int {
	positions := make([]int, len(s.Rotors))
	for i, r := range s.Rotors {
		positions[i] = r.Position
	}
	return positions
}

// WithPositions returns a copy of s with the rotor positions replaced.
func (s Settings) WithPositions(positions []int) (Settings, error) {
	if len(positions) != len(s.Rotors) {
		return s, fmt.Errorf("got %d positions for %d rotors", len(positions), len(s.Rotors))
	}
	out := s
	out.Rotors = make([]RotorSettings, len(s.Rotors))
	copy(out.Rotors, s.Rotors)
	for i, p := range positions {
		out.Rotors[i].Position = p
	}
	out.Plugboard = append([]string(nil), s.Plugboard...)
	return out, nil
}

func (s Settings) alphabet() (*Alphabet, error) {
	if s.Alphabet == "" {
		return DefaultAlphabet(), nil
	}
	return NewAlphabet(s.Alphabet)
}
