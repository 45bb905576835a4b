package config

import (
	"fmt"
	"strings"

	"enigma/internal/catalog"
	"enigma/internal/domain"
)

// Settings resolves catalog names and symbols into machine settings. The
// result is validated by building a machine from it.
func (m MachineConfig) Settings() (domain.Settings, error) {
	alphabet := domain.DefaultAlphabet()
	if m.Alphabet != "" {
		a, err := domain.NewAlphabet(m.Alphabet)
		if err != nil {
			return domain.Settings{}, err
		}
		alphabet = a
	}

	s := domain.Settings{
		Alphabet:  m.Alphabet,
		Plugboard: ParsePlugboard(m.Plugboard),
	}

	// An unset entry wheel passes the alphabet straight through
	s.EntryWheel = alphabet.String()
	if m.EntryWheel != "" {
		entry, err := resolveWheel(m.EntryWheel, alphabet, catalog.EntryWheel)
		if err != nil {
			return domain.Settings{}, fmt.Errorf("entry wheel: %w", err)
		}
		s.EntryWheel = entry
	}

	reflector, err := resolveWheel(m.Reflector, alphabet, catalog.Reflector)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("reflector: %w", err)
	}
	s.Reflector = reflector

	for i, rc := range m.Rotors {
		rs, err := rc.settings(alphabet)
		if err != nil {
			return domain.Settings{}, fmt.Errorf("rotor %d: %w", i, err)
		}
		s.Rotors = append(s.Rotors, rs)
	}

	if err := s.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

func (rc RotorConfig) settings(alphabet *domain.Alphabet) (domain.RotorSettings, error) {
	var rs domain.RotorSettings
	if rc.Type != "" {
		spec, err := catalog.Rotor(rc.Type)
		if err != nil {
			return rs, err
		}
		rs = spec.RotorSettings(0, 0)
	}
	if rc.Wiring != "" {
		rs.Wiring = rc.Wiring
		if rc.Type == "" {
			rs.Name = "custom"
		}
	}
	if rc.Notches != nil {
		rs.Notches = *rc.Notches
	}
	if rs.Wiring == "" {
		return rs, fmt.Errorf("rotor needs a type or a wiring")
	}

	pos, err := symbolIndex(alphabet, rc.Position)
	if err != nil {
		return rs, fmt.Errorf("position: %w", err)
	}
	ring, err := symbolIndex(alphabet, rc.Ring)
	if err != nil {
		return rs, fmt.Errorf("ring: %w", err)
	}
	rs.Position = pos
	rs.RingSetting = ring
	return rs, nil
}

// resolveWheel accepts a catalog name or a literal wiring.
func resolveWheel(value string, alphabet *domain.Alphabet, lookup func(string) (catalog.WheelSpec, error)) (string, error) {
	if value == "" {
		return "", nil
	}
	if len([]rune(value)) == alphabet.Size() {
		return value, nil
	}
	spec, err := lookup(value)
	if err != nil {
		return "", err
	}
	return spec.Wiring, nil
}

func symbolIndex(alphabet *domain.Alphabet, symbol string) (int, error) {
	if symbol == "" {
		return 0, nil
	}
	runes := []rune(symbol)
	if len(runes) != 1 {
		return 0, fmt.Errorf("expected a single symbol, got %q", symbol)
	}
	return alphabet.Index(runes[0])
}

// ParsePlugboard splits "AB CD,EF" into pairs. Case is preserved.
func ParsePlugboard(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// FromSettings describes settings as a machine config. Catalog wheels and
// rotors are written by name, anything else as a literal wiring.
func FromSettings(s domain.Settings) MachineConfig {
	alphabet := domain.DefaultAlphabet()
	if s.Alphabet != "" {
		if a, err := domain.NewAlphabet(s.Alphabet); err == nil {
			alphabet = a
		}
	}

	m := MachineConfig{
		Alphabet:   s.Alphabet,
		EntryWheel: s.EntryWheel,
		Reflector:  s.Reflector,
		Plugboard:  strings.Join(s.Plugboard, " "),
	}
	if w, ok := catalog.EntryWheelByWiring(s.EntryWheel); ok {
		m.EntryWheel = w.Name
	}
	if w, ok := catalog.ReflectorByWiring(s.Reflector); ok {
		m.Reflector = w.Name
	}

	for _, rs := range s.Rotors {
		rc := RotorConfig{
			Position: string(alphabet.Symbol(rs.Position)),
		}
		if rs.RingSetting != 0 {
			rc.Ring = string(alphabet.Symbol(rs.RingSetting))
		}
		if spec, ok := catalog.RotorByWiring(rs.Wiring); ok {
			rc.Type = spec.Name
			if rs.Notches != spec.Notches {
				notches := rs.Notches
				rc.Notches = &notches
			}
		} else {
			notches := rs.Notches
			rc.Wiring = rs.Wiring
			rc.Notches = &notches
		}
		m.Rotors = append(m.Rotors, rc)
	}
	return m
}
