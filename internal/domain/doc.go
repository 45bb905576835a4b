// Package domain defines the rotor cipher engine.
//
// The engine is purely index based. Symbols are mapped to indices once, at
// the boundary, through an Alphabet; every table lookup after that works on
// indices reduced modulo the alphabet size.
//
// # Core Types
//
// Substitution is an invertible mapping over the alphabet with precomputed
// forward and backward tables.
//
// Rotor wraps a Substitution with a rotational position and a set of notch
// flags. Rotate implements the ripple-carry stepping rule: the position moves
// back by the incoming turnover and the notch flag at the new position is
// handed to the next rotor in the stack.
//
// Plugboard is a self-inverse substitution made of swapped symbol pairs.
//
// Machine owns a plugboard, an entry wheel, a rotor stack and a reflector
// and implements the per-keystroke protocol: step, then encipher.
//
// # Signal Path
//
//	key -> plugboard -> entry wheel -> rotors[0..n-1] -> reflector
//	    -> rotors[n-1..0] -> entry wheel (backward) -> plugboard -> lamp
//
// Rotor index 0 is the fast (rightmost) rotor. It steps on every keystroke.
//
// # Design Principles
//
// - Validate at construction, never inside the cipher path
// - No I/O, no logging, no shared state between machines
// - The double-step anomaly of the historical machines is not modeled
// - Ring settings are accepted and reported but do not change the wiring
package domain
