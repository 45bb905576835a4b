// Package keyboard reads keystrokes from a text stream and writes lamp output.
package keyboard

import (
	"bufio"
	"io"
	"unicode"
)

// Keyboard pulls keys one at a time from a reader. Whitespace is skipped and,
// unless case is preserved, letters are folded to upper case.
type Keyboard struct {
	r            *bufio.Reader
	preserveCase bool
}

// Option configures a Keyboard.
type Option func(*Keyboard)

// WithPreserveCase disables upper-case folding.
func WithPreserveCase(preserve bool) Option {
	return func(k *Keyboard) { k.preserveCase = preserve }
}

// New returns a keyboard reading from r.
func New(r io.Reader, opts ...Option) *Keyboard {
	k := &Keyboard{r: bufio.NewReader(r)}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Next returns the next non-whitespace key. It returns io.EOF when the input
// is exhausted.
func (k *Keyboard) Next() (rune, error) {
	for {
		c, _, err := k.r.ReadRune()
		if err != nil {
			return 0, err
		}
		if unicode.IsSpace(c) {
			continue
		}
		if !k.preserveCase {
			c = unicode.ToUpper(c)
		}
		return c, nil
	}
}
