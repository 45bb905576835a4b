package service

import (
	"errors"
	"fmt"
	"io"

	"enigma/internal/domain"
	"enigma/internal/keyboard"
)

// Stats counts the keys a stream run accepted and rejected
type Stats struct {
	Accepted int `json:"accepted"`
	Rejected int `json:"rejected"`
}

// RejectFunc is told about every key outside the alphabet. offset counts
// keys, not bytes, from the start of the stream.
type RejectFunc func(key rune, offset int)

// Process presses every key from kb on m and lights the result on lamps until
// the keyboard is exhausted. Rejected keys do not move the rotors; they are
// reported through onReject, which may be nil, and processing continues.
func Process(m *domain.Machine, kb *keyboard.Keyboard, lamps *keyboard.Lampboard, onReject RejectFunc) (Stats, error) {
	var stats Stats
	for offset := 0; ; offset++ {
		key, err := kb.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, fmt.Errorf("read key: %w", err)
		}

		lamp, err := m.Press(key)
		if errors.Is(err, domain.ErrUnknownSymbol) {
			stats.Rejected++
			if onReject != nil {
				onReject(key, offset)
			}
			continue
		}
		if err != nil {
			return stats, err
		}

		if err := lamps.Light(lamp); err != nil {
			return stats, fmt.Errorf("write lamp: %w", err)
		}
		stats.Accepted++
	}

	if err := lamps.Flush(); err != nil {
		return stats, fmt.Errorf("flush lamps: %w", err)
	}
	return stats, nil
}
