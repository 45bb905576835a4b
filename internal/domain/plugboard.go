package domain

import "fmt"

// Plugboard swaps pairs of symbols. It is its own inverse, so one table
// serves both ends of the signal path.
type Plugboard struct {
	table *Substitution
	pairs []string
}

// NewPlugboard builds a plugboard from two-symbol pairs such as "AB".
// No pairs gives the identity.
func NewPlugboard(alphabet *Alphabet, pairs []string) (*Plugboard, error) {
	n := alphabet.Size()
	if len(pairs) > n/2 {
		return nil, fmt.Errorf("%w: %d pairs for %d symbols", ErrPlugboardTooManyPairs, len(pairs), n)
	}

	table := identitySubstitution(alphabet)
	used := make(map[int]bool, 2*len(pairs))
	for _, pair := range pairs {
		ends := []rune(pair)
		if len(ends) != 2 {
			return nil, fmt.Errorf("%w: %q", ErrPlugboardPair, pair)
		}
		a, err := alphabet.Index(ends[0])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPlugboardPair, err)
		}
		b, err := alphabet.Index(ends[1])
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPlugboardPair, err)
		}
		if a == b {
			return nil, fmt.Errorf("%w: %q connects a symbol to itself", ErrPlugboardPair, pair)
		}
		if used[a] || used[b] {
			return nil, fmt.Errorf("%w: %q", ErrPlugboardReused, pair)
		}
		used[a], used[b] = true, true

		table.forward[a], table.forward[b] = b, a
		table.backward[a], table.backward[b] = b, a
	}

	return &Plugboard{table: table, pairs: append([]string(nil), pairs...)}, nil
}

// Swap passes x through the plugboard.
func (p *Plugboard) Swap(x int) int {
	return p.table.Forward(x)
}

// Pairs returns the configured pairs.
func (p *Plugboard) Pairs() []string {
	return append([]string(nil), p.pairs...)
}

// Size returns the alphabet size.
func (p *Plugboard) Size() int {
	return p.table.Size()
}
