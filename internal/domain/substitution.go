package domain

import "fmt"

// Substitution is a bijection over an alphabet with its precomputed inverse.
type Substitution struct {
	alphabet *Alphabet
	forward  []int
	backward []int
}

// NewSubstitution builds a table from a wiring string, where position i
// holds the symbol that index i maps to. The wiring must be a permutation of
// the alphabet.
func NewSubstitution(alphabet *Alphabet, wiring string) (*Substitution, error) {
	symbols := []rune(wiring)
	n := alphabet.Size()
	if len(symbols) != n {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrWiringLength, len(symbols), n)
	}

	s := &Substitution{
		alphabet: alphabet,
		forward:  make([]int, n),
		backward: make([]int, n),
	}
	seen := make([]bool, n)
	for i, r := range symbols {
		out, err := alphabet.Index(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotPermutation, err)
		}
		if seen[out] {
			return nil, fmt.Errorf("%w: %q appears twice", ErrNotPermutation, r)
		}
		seen[out] = true
		s.forward[i] = out
		s.backward[out] = i
	}

	return s, nil
}

// identitySubstitution maps every index to itself.
func identitySubstitution(alphabet *Alphabet) *Substitution {
	n := alphabet.Size()
	s := &Substitution{
		alphabet: alphabet,
		forward:  make([]int, n),
		backward: make([]int, n),
	}
	for i := 0; i < n; i++ {
		s.forward[i] = i
		s.backward[i] = i
	}
	return s
}

// Size returns the alphabet size the table is defined over.
func (s *Substitution) Size() int {
	return len(s.forward)
}

// Forward maps i through the table.
func (s *Substitution) Forward(i int) int {
	return s.forward[s.alphabet.mod(i)]
}

// Backward maps i through the inverse table.
func (s *Substitution) Backward(i int) int {
	return s.backward[s.alphabet.mod(i)]
}

// IsInvolution reports whether the table is its own inverse.
func (s *Substitution) IsInvolution() bool {
	for i, out := range s.forward {
		if s.forward[out] != i {
			return false
		}
	}
	return true
}

// HasFixedPoint reports whether any index maps to itself.
func (s *Substitution) HasFixedPoint() bool {
	for i, out := range s.forward {
		if out == i {
			return true
		}
	}
	return false
}

// Wiring returns the table in the same form NewSubstitution accepts.
func (s *Substitution) Wiring() string {
	runes := make([]rune, len(s.forward))
	for i, out := range s.forward {
		runes[i] = s.alphabet.Symbol(out)
	}
	return string(runes)
}
