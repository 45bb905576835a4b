package domain

import (
	"errors"
	"fmt"
)

// Configuration errors. They are always returned wrapped in a *ConfigError
// naming the component that failed.
var (
	ErrEmptyAlphabet          = errors.New("alphabet is empty")
	ErrDuplicateSymbol        = errors.New("duplicate symbol")
	ErrWiringLength           = errors.New("wiring length does not match alphabet size")
	ErrNotPermutation         = errors.New("wiring is not a permutation of the alphabet")
	ErrNotchLength            = errors.New("notch flags length does not match alphabet size")
	ErrNotchFlag              = errors.New("notch flag must be 0 or 1")
	ErrPositionRange          = errors.New("position out of range")
	ErrRingSettingRange       = errors.New("ring setting out of range")
	ErrReflectorNotInvolution = errors.New("reflector wiring is not an involution")
	ErrReflectorFixedPoint    = errors.New("reflector maps a symbol to itself")
	ErrPlugboardPair          = errors.New("invalid plugboard pair")
	ErrPlugboardReused        = errors.New("plugboard symbol used more than once")
	ErrPlugboardTooManyPairs  = errors.New("too many plugboard pairs")
	ErrNoRotors               = errors.New("machine needs at least one rotor")
	ErrAlphabetMismatch       = errors.New("component alphabet size does not match machine")
)

// ErrUnknownSymbol is returned for an input character outside the alphabet.
// It is a per-character input error; the machine is left untouched.
var ErrUnknownSymbol = errors.New("symbol not in alphabet")

// ConfigError reports a malformed machine component.
type ConfigError struct {
	Component string
	Err       error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Component, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErr(component string, err error) error {
	return &ConfigError{Component: component, Err: err}
}

// IsConfigError reports whether err was caused by invalid machine configuration.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
