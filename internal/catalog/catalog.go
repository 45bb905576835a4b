// Package catalog holds the historical wiring tables.
//
// Rotor and reflector specs are immutable data; callers copy them into
// domain.Settings to build machines.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"enigma/internal/domain"
)

// RotorSpec is a named rotor wiring with its notch letters.
type RotorSpec struct {
	Name    string `json:"name" yaml:"name"`
	Wiring  string `json:"wiring" yaml:"wiring"`
	Notches string `json:"notches" yaml:"notches"`
}

// WheelSpec is a named fixed wheel (entry wheel or reflector).
type WheelSpec struct {
	Name   string `json:"name" yaml:"name"`
	Wiring string `json:"wiring" yaml:"wiring"`
}

var rotors = map[string]RotorSpec{
	"I":   {Name: "I", Wiring: "EKMFLGDQVZNTOWYHXUSPAIBRCJ", Notches: "Q"},
	"II":  {Name: "II", Wiring: "AJDKSIRUXBLHWTMCQGZNPYFVOE", Notches: "E"},
	"III": {Name: "III", Wiring: "BDFHJLCPRTXVZNYEIWGAKMUSQO", Notches: "V"},
	"IV":  {Name: "IV", Wiring: "ESOVPZJAYQUIRHXLNFTGKDCMWB", Notches: "J"},
	"V":   {Name: "V", Wiring: "VZBRGITYUPSDNHLXAWMJQOFECK", Notches: "Z"},
}

var reflectors = map[string]WheelSpec{
	"A": {Name: "A", Wiring: "EJMZALYXVBWFCRQUONTSPIKHGD"},
	"B": {Name: "B", Wiring: "YRUHQSLDPXNGOKMIEBFZCWVJAT"},
	"C": {Name: "C", Wiring: "FVPJIAOYEDRZXWGCTKUQSBNMHL"},
}

var entryWheels = map[string]WheelSpec{
	"ALPHA":  {Name: "ALPHA", Wiring: domain.DefaultSymbols},
	"QWERTZ": {Name: "QWERTZ", Wiring: "QWERTYUIOPASDFGHJKLZXCVBNM"},
}

// Rotor looks up a rotor by name (case-insensitive).
func Rotor(name string) (RotorSpec, error) {
	spec, ok := rotors[strings.ToUpper(name)]
	if !ok {
		return RotorSpec{}, fmt.Errorf("unknown rotor %q", name)
	}
	return spec, nil
}

// Reflector looks up a reflector by name (case-insensitive).
func Reflector(name string) (WheelSpec, error) {
	spec, ok := reflectors[strings.ToUpper(name)]
	if !ok {
		return WheelSpec{}, fmt.Errorf("unknown reflector %q", name)
	}
	return spec, nil
}

// EntryWheel looks up an entry wheel by name (case-insensitive).
func EntryWheel(name string) (WheelSpec, error) {
	spec, ok := entryWheels[strings.ToUpper(name)]
	if !ok {
		return WheelSpec{}, fmt.Errorf("unknown entry wheel %q", name)
	}
	return spec, nil
}

// Rotors lists all rotors ordered by name.
func Rotors() []RotorSpec {
	out := make([]RotorSpec, 0, len(rotors))
	for _, spec := range rotors {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return romanLess(out[i].Name, out[j].Name) })
	return out
}

// Reflectors lists all reflectors ordered by name.
func Reflectors() []WheelSpec {
	return sortedWheels(reflectors)
}

// EntryWheels lists all entry wheels ordered by name.
func EntryWheels() []WheelSpec {
	return sortedWheels(entryWheels)
}

func sortedWheels(m map[string]WheelSpec) []WheelSpec {
	out := make([]WheelSpec, 0, len(m))
	for _, spec := range m {
		out = append(out, spec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

var romanOrder = map[string]int{"I": 1, "II": 2, "III": 3, "IV": 4, "V": 5}

func romanLess(a, b string) bool {
	return romanOrder[a] < romanOrder[b]
}

// RotorSettings turns a catalog rotor into machine settings at a position.
func (s RotorSpec) RotorSettings(position, ringSetting int) domain.RotorSettings {
	return domain.RotorSettings{
		Name:        s.Name,
		Wiring:      s.Wiring,
		Notches:     s.Notches,
		Position:    position,
		RingSetting: ringSetting,
	}
}

// Standard returns rotors I, II, III (fast rotor first) at A, reflector B,
// the straight entry wheel and an empty plugboard.
func Standard() domain.Settings {
	return domain.Settings{
		EntryWheel: entryWheels["ALPHA"].Wiring,
		Reflector:  reflectors["B"].Wiring,
		Rotors: []domain.RotorSettings{
			rotors["I"].RotorSettings(0, 0),
			rotors["II"].RotorSettings(0, 0),
			rotors["III"].RotorSettings(0, 0),
		},
	}
}

// Reference returns the classic single-type machine: rotor I
// three times, each notched at Z.
func Reference() domain.Settings {
	s := Standard()
	for i := range s.Rotors {
		s.Rotors[i] = domain.RotorSettings{Name: "I", Wiring: rotors["I"].Wiring, Notches: "Z"}
	}
	return s
}

// RotorByWiring finds the catalog rotor with the given wiring.
func RotorByWiring(wiring string) (RotorSpec, bool) {
	for _, spec := range rotors {
		if spec.Wiring == wiring {
			return spec, true
		}
	}
	return RotorSpec{}, false
}

// ReflectorByWiring finds the catalog reflector with the given wiring.
func ReflectorByWiring(wiring string) (WheelSpec, bool) {
	return wheelByWiring(reflectors, wiring)
}

// EntryWheelByWiring finds the catalog entry wheel with the given wiring.
func EntryWheelByWiring(wiring string) (WheelSpec, bool) {
	return wheelByWiring(entryWheels, wiring)
}

func wheelByWiring(m map[string]WheelSpec, wiring string) (WheelSpec, bool) {
	for _, spec := range m {
		if spec.Wiring == wiring {
			return spec, true
		}
	}
	return WheelSpec{}, false
}
