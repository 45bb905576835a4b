package domain

import "fmt"

// Rotor is a substitution table mounted at a rotational position, with a
// notch flag for every position.
//
// Only the position is mutable. It is changed by Rotate and SetPosition.
type Rotor struct {
	table       *Substitution
	notches     []uint8
	position    int
	ringSetting int
}

// RotorOption configures optional rotor parameters.
type RotorOption func(*Rotor)

// WithPosition sets the initial position.
func WithPosition(p int) RotorOption {
	return func(r *Rotor) {
		r.position = p
	}
}

// WithRingSetting sets the ring setting. The value is validated and kept for
// reporting, it does not change the wiring alignment.
func WithRingSetting(rs int) RotorOption {
	return func(r *Rotor) {
		r.ringSetting = rs
	}
}

// NewRotor builds a rotor from a wiring string and one notch flag per
// position.
func NewRotor(alphabet *Alphabet, wiring string, notches []uint8, opts ...RotorOption) (*Rotor, error) {
	table, err := NewSubstitution(alphabet, wiring)
	if err != nil {
		return nil, err
	}

	n := alphabet.Size()
	if len(notches) != n {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrNotchLength, len(notches), n)
	}
	flags := make([]uint8, n)
	for i, f := range notches {
		if f > 1 {
			return nil, fmt.Errorf("%w: index %d is %d", ErrNotchFlag, i, f)
		}
		flags[i] = f
	}

	r := &Rotor{table: table, notches: flags}
	for _, opt := range opts {
		opt(r)
	}

	if r.position < 0 || r.position >= n {
		return nil, fmt.Errorf("%w: %d", ErrPositionRange, r.position)
	}
	if r.ringSetting < 0 || r.ringSetting >= n {
		return nil, fmt.Errorf("%w: %d", ErrRingSettingRange, r.ringSetting)
	}

	return r, nil
}

// NotchFlags builds a notch flag set with a 1 at each listed symbol.
func NotchFlags(alphabet *Alphabet, symbols string) ([]uint8, error) {
	flags := make([]uint8, alphabet.Size())
	for _, s := range symbols {
		i, err := alphabet.Index(s)
		if err != nil {
			return nil, fmt.Errorf("notch: %w", err)
		}
		flags[i] = 1
	}
	return flags, nil
}

// ConnectForward returns the contact a signal entering at x leaves on,
// right to left, at the current position.
func (r *Rotor) ConnectForward(x int) int {
	return r.table.alphabet.mod(r.table.Forward(x+r.position) - r.position)
}

// ConnectBackward is the inverse of ConnectForward at the same position.
func (r *Rotor) ConnectBackward(x int) int {
	return r.table.alphabet.mod(r.table.Backward(x+r.position) - r.position)
}

// Rotate moves the position back by turnover (0 or 1) and returns the notch
// flag at the resulting position, which is the turnover for the next rotor.
func (r *Rotor) Rotate(turnover uint8) uint8 {
	r.position = r.table.alphabet.mod(r.position - int(turnover))
	return r.notches[r.position]
}

// Position returns the current position.
func (r *Rotor) Position() int {
	return r.position
}

// SetPosition moves the rotor to p.
func (r *Rotor) SetPosition(p int) error {
	if p < 0 || p >= r.Size() {
		return fmt.Errorf("%w: %d", ErrPositionRange, p)
	}
	r.position = p
	return nil
}

// RingSetting returns the configured ring setting.
func (r *Rotor) RingSetting() int {
	return r.ringSetting
}

// HasNotch reports whether position p carries a notch.
func (r *Rotor) HasNotch(p int) bool {
	return r.notches[r.table.alphabet.mod(p)] == 1
}

// Size returns the number of positions.
func (r *Rotor) Size() int {
	return r.table.Size()
}

// Wiring returns the rotor wiring string.
func (r *Rotor) Wiring() string {
	return r.table.Wiring()
}
