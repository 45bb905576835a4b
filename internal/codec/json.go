package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"enigma/internal/domain"
)

// JSONCodec handles JSON import/export
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse imports a key sheet from JSON and validates every entry
func (c *JSONCodec) Parse(r io.Reader) (*domain.KeySheet, error) {
	var sheet domain.KeySheet
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&sheet); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if err := sheet.Validate(); err != nil {
		return nil, err
	}
	return &sheet, nil
}

// Export exports a key sheet to JSON
func (c *JSONCodec) Export(sheet *domain.KeySheet, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(sheet); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
