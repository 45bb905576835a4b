package domain

import (
	"errors"
	"fmt"
)

// ErrDuplicateLabel is returned when a key sheet holds two entries with the
// same label.
var ErrDuplicateLabel = errors.New("duplicate key sheet label")

// KeySheetEntry is one dated or numbered machine setting.
type KeySheetEntry struct {
	Label    string   `json:"label" yaml:"label"`
	Settings Settings `json:"settings" yaml:"settings"`
}

// KeySheet is a named list of settings, one per label (typically a day).
type KeySheet struct {
	Name    string          `json:"name" yaml:"name"`
	Entries []KeySheetEntry `json:"entries" yaml:"entries"`
}

// Validate checks every entry and rejects duplicate labels.
func (k *KeySheet) Validate() error {
	seen := make(map[string]bool, len(k.Entries))
	for _, e := range k.Entries {
		if e.Label == "" {
			return fmt.Errorf("key sheet %q: entry without label", k.Name)
		}
		if seen[e.Label] {
			return fmt.Errorf("key sheet %q: %w: %s", k.Name, ErrDuplicateLabel, e.Label)
		}
		seen[e.Label] = true
		if err := e.Settings.Validate(); err != nil {
			return fmt.Errorf("key sheet %q entry %s: %w", k.Name, e.Label, err)
		}
	}
	return nil
}

// Lookup returns the settings for a label.
func (k *KeySheet) Lookup(label string) (Settings, bool) {
	for _, e := range k.Entries {
		if e.Label == label {
			return e.Settings, true
		}
	}
	return Settings{}, false
}
