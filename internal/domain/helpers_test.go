package domain

import (
	"errors"
	"testing"
)

const (
	wiringI    = "EKMFLGDQVZNTOWYHXUSPAIBRCJ"
	wiringII   = "AJDKSIRUXBLHWTMCQGZNPYFVOE"
	wiringIII  = "BDFHJLCPRTXVZNYEIWGAKMUSQO"
	reflectorB = "YRUHQSLDPXNGOKMIEBFZCWVJAT"
	qwertz     = "QWERTYUIOPASDFGHJKLZXCVBNM"
)

// threeRotorSettings returns rotors I, II, III (fast first) at A, reflector B,
// straight entry wheel and an empty plugboard.
func threeRotorSettings() Settings {
	return Settings{
		EntryWheel: DefaultSymbols,
		Reflector:  reflectorB,
		Rotors: []RotorSettings{
			{Name: "I", Wiring: wiringI, Notches: "Q"},
			{Name: "II", Wiring: wiringII, Notches: "E"},
			{Name: "III", Wiring: wiringIII, Notches: "V"},
		},
	}
}

func newTestMachine(t *testing.T, s Settings) *Machine {
	t.Helper()
	m, err := NewMachine(s)
	if err != nil {
		t.Fatalf("failed to build machine: %v", err)
	}
	return m
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertErrorIs(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected error %v, got %v", target, err)
	}
}

func noNotches(n int) []uint8 {
	return make([]uint8, n)
}
