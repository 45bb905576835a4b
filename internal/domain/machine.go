package domain

import "fmt"

// Machine is a rotor cipher machine. It is not safe for concurrent use;
// separate machines share no state.
type Machine struct {
	alphabet  *Alphabet
	plugboard *Plugboard
	entry     *Rotor
	rotors    []*Rotor
	reflector *Rotor
	initial   []int
}

// NewMachine builds and validates a machine from settings.
func NewMachine(s Settings) (*Machine, error) {
	alphabet, err := s.alphabet()
	if err != nil {
		return nil, err
	}
	none := make([]uint8, alphabet.Size())

	plugboard, err := NewPlugboard(alphabet, s.Plugboard)
	if err != nil {
		return nil, configErr("plugboard", err)
	}

	entryWiring := s.EntryWheel
	if entryWiring == "" {
		entryWiring = alphabet.String()
	}
	entry, err := NewRotor(alphabet, entryWiring, none)
	if err != nil {
		return nil, configErr("entry wheel", err)
	}

	reflector, err := NewRotor(alphabet, s.Reflector, none)
	if err != nil {
		return nil, configErr("reflector", err)
	}

	rotors := make([]*Rotor, 0, len(s.Rotors))
	for i, rs := range s.Rotors {
		component := rotorComponent(i, rs.Name)
		notches, err := NotchFlags(alphabet, rs.Notches)
		if err != nil {
			return nil, configErr(component, err)
		}
		r, err := NewRotor(alphabet, rs.Wiring, notches,
			WithPosition(rs.Position), WithRingSetting(rs.RingSetting))
		if err != nil {
			return nil, configErr(component, err)
		}
		rotors = append(rotors, r)
	}

	return Assemble(alphabet, plugboard, entry, rotors, reflector)
}

// Assemble wires prebuilt components into a machine. Every component must be
// defined over an alphabet of the same size, and the reflector must be a
// fixed-point-free involution.
func Assemble(alphabet *Alphabet, plugboard *Plugboard, entry *Rotor, rotors []*Rotor, reflector *Rotor) (*Machine, error) {
	n := alphabet.Size()
	if len(rotors) == 0 {
		return nil, configErr("rotors", ErrNoRotors)
	}
	if plugboard.Size() != n {
		return nil, configErr("plugboard", ErrAlphabetMismatch)
	}
	if entry.Size() != n {
		return nil, configErr("entry wheel", ErrAlphabetMismatch)
	}
	if reflector.Size() != n {
		return nil, configErr("reflector", ErrAlphabetMismatch)
	}
	for i, r := range rotors {
		if r.Size() != n {
			return nil, configErr(rotorComponent(i, ""), ErrAlphabetMismatch)
		}
	}
	if !reflector.table.IsInvolution() {
		return nil, configErr("reflector", ErrReflectorNotInvolution)
	}
	if reflector.table.HasFixedPoint() {
		return nil, configErr("reflector", ErrReflectorFixedPoint)
	}

	m := &Machine{
		alphabet:  alphabet,
		plugboard: plugboard,
		entry:     entry,
		rotors:    rotors,
		reflector: reflector,
	}
	m.initial = m.Positions()
	return m, nil
}

func rotorComponent(i int, name string) string {
	if name == "" {
		return fmt.Sprintf("rotor %d", i)
	}
	return fmt.Sprintf("rotor %d (%s)", i, name)
}

// KeyDown steps the rotor stack once. The fast rotor always receives a
// turnover of 1; each rotor's result is the next rotor's turnover.
func (m *Machine) KeyDown() {
	var turnover uint8 = 1
	for _, r := range m.rotors {
		turnover = r.Rotate(turnover)
	}
}

// CipherOne enciphers one symbol at the current positions without stepping.
func (m *Machine) CipherOne(c rune) (rune, error) {
	x, err := m.alphabet.Index(c)
	if err != nil {
		return 0, err
	}
	return m.alphabet.Symbol(m.signal(x)), nil
}

// signal runs an index through the full path.
func (m *Machine) signal(x int) int {
	x = m.plugboard.Swap(x)
	x = m.entry.ConnectForward(x)
	for _, r := range m.rotors {
		x = r.ConnectForward(x)
	}
	x = m.reflector.ConnectForward(x)
	for i := len(m.rotors) - 1; i >= 0; i-- {
		x = m.rotors[i].ConnectBackward(x)
	}
	x = m.entry.ConnectBackward(x)
	return m.plugboard.Swap(x)
}

// Press handles one keystroke: step, then encipher. A symbol outside the
// alphabet is rejected before the rotors move.
func (m *Machine) Press(c rune) (rune, error) {
	if _, err := m.alphabet.Index(c); err != nil {
		return 0, err
	}
	m.KeyDown()
	return m.CipherOne(c)
}

// Encipher presses every symbol of text in order. It stops at the first
// symbol outside the alphabet; the rotors keep the positions reached so far.
func (m *Machine) Encipher(text string) (string, error) {
	out := make([]rune, 0, len(text))
	for i, c := range []rune(text) {
		o, err := m.Press(c)
		if err != nil {
			return string(out), fmt.Errorf("position %d: %w", i, err)
		}
		out = append(out, o)
	}
	return string(out), nil
}

// Positions returns the rotor positions, fast rotor first.
func (m *Machine) Positions() []int {
	positions := make([]int, len(m.rotors))
	for i, r := range m.rotors {
		positions[i] = r.Position()
	}
	return positions
}

// SetPositions moves every rotor. It is all or nothing.
func (m *Machine) SetPositions(positions []int) error {
	if len(positions) != len(m.rotors) {
		return fmt.Errorf("got %d positions for %d rotors", len(positions), len(m.rotors))
	}
	for i, p := range positions {
		if p < 0 || p >= m.rotors[i].Size() {
			return configErr(rotorComponent(i, ""), fmt.Errorf("%w: %d", ErrPositionRange, p))
		}
	}
	for i, p := range positions {
		m.rotors[i].position = p
	}
	return nil
}

// Reset returns the rotors to their configured initial positions.
func (m *Machine) Reset() {
	for i, p := range m.initial {
		m.rotors[i].position = p
	}
}

// Rotor returns the i-th rotor of the stack, fast rotor first.
func (m *Machine) Rotor(i int) *Rotor {
	return m.rotors[i]
}

// RotorCount returns the number of rotors in the stack.
func (m *Machine) RotorCount() int {
	return len(m.rotors)
}

// Reflector returns the reflector.
func (m *Machine) Reflector() *Rotor {
	return m.reflector
}

// Alphabet returns the machine alphabet.
func (m *Machine) Alphabet() *Alphabet {
	return m.alphabet
}
