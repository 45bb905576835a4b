// Package codec imports and exports key sheets.
//
// The YAML format is written for operators: rotors and wheels are catalog
// names, positions are letters, the plugboard is a space separated list of
// pairs. The JSON format is the raw domain representation with literal
// wirings and numeric positions.
package codec

import (
	"fmt"
	"io"
	"strings"

	"enigma/internal/domain"
)

// Importer parses a key sheet from a serialized form
type Importer interface {
	Parse(r io.Reader) (*domain.KeySheet, error)
	Format() string
}

// Exporter writes a key sheet in a serialized form
type Exporter interface {
	Export(sheet *domain.KeySheet, w io.Writer) error
	Format() string
}

// Codec is both an Importer and an Exporter
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec for "yaml"/"yml" or "json"
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	case "json":
		return NewJSONCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported key sheet format %q", format)
	}
}
