package domain

import "fmt"

// DefaultSymbols is the 26-letter keyboard alphabet.
const DefaultSymbols = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Alphabet is an ordered set of symbols, each identified by its index.
type Alphabet struct {
	symbols []rune
	index   map[rune]int
}

// DefaultAlphabet returns the A..Z alphabet.
func DefaultAlphabet() *Alphabet {
	a, _ := NewAlphabet(DefaultSymbols)
	return a
}

// NewAlphabet builds an alphabet from a string of distinct symbols.
func NewAlphabet(symbols string) (*Alphabet, error) {
	runes := []rune(symbols)
	if len(runes) == 0 {
		return nil, configErr("alphabet", ErrEmptyAlphabet)
	}

	index := make(map[rune]int, len(runes))
	for i, r := range runes {
		if _, dup := index[r]; dup {
			return nil, configErr("alphabet", fmt.Errorf("%w: %q", ErrDuplicateSymbol, r))
		}
		index[r] = i
	}

	return &Alphabet{symbols: runes, index: index}, nil
}

// Size returns the number of symbols.
func (a *Alphabet) Size() int {
	return len(a.symbols)
}

// Index maps a symbol to its index.
func (a *Alphabet) Index(r rune) (int, error) {
	i, ok := a.index[r]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownSymbol, r)
	}
	return i, nil
}

// Contains reports whether r is part of the alphabet.
func (a *Alphabet) Contains(r rune) bool {
	_, ok := a.index[r]
	return ok
}

// Symbol maps an index back to its symbol. The index is reduced modulo the
// alphabet size.
func (a *Alphabet) Symbol(i int) rune {
	return a.symbols[a.mod(i)]
}

// String returns the symbols in order.
func (a *Alphabet) String() string {
	return string(a.symbols)
}

func (a *Alphabet) mod(i int) int {
	n := len(a.symbols)
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
