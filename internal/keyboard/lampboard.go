package keyboard

import (
	"bufio"
	"io"
)

// Lampboard writes lit lamps to w, separating blocks of Group symbols with a
// space. A group of 0 writes the output as one run.
type Lampboard struct {
	w     *bufio.Writer
	group int
	lit   int
}

// NewLampboard returns a lampboard writing to w.
func NewLampboard(w io.Writer, group int) *Lampboard {
	if group < 0 {
		group = 0
	}
	return &Lampboard{w: bufio.NewWriter(w), group: group}
}

// Light writes one symbol.
func (l *Lampboard) Light(c rune) error {
	if l.group > 0 && l.lit > 0 && l.lit%l.group == 0 {
		if err := l.w.WriteByte(' '); err != nil {
			return err
		}
	}
	if _, err := l.w.WriteRune(c); err != nil {
		return err
	}
	l.lit++
	return nil
}

// Lit returns how many symbols have been written.
func (l *Lampboard) Lit() int {
	return l.lit
}

// Flush writes any buffered output.
func (l *Lampboard) Flush() error {
	return l.w.Flush()
}
