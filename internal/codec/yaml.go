package codec

import (
	"fmt"
	"io"

	"enigma/internal/config"
	"enigma/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles operator-facing YAML import/export
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// yamlSheet represents the YAML structure for a key sheet
type yamlSheet struct {
	Name    string      `yaml:"name"`
	Entries []yamlEntry `yaml:"entries"`
}

type yamlEntry struct {
	Label   string               `yaml:"label"`
	Machine config.MachineConfig `yaml:"machine"`
}

// Parse imports a key sheet from YAML
func (c *YAMLCodec) Parse(r io.Reader) (*domain.KeySheet, error) {
	var ys yamlSheet
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&ys); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	sheet := &domain.KeySheet{
		Name:    ys.Name,
		Entries: make([]domain.KeySheetEntry, 0, len(ys.Entries)),
	}
	for _, ye := range ys.Entries {
		settings, err := ye.Machine.Settings()
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", ye.Label, err)
		}
		sheet.Entries = append(sheet.Entries, domain.KeySheetEntry{
			Label:    ye.Label,
			Settings: settings,
		})
	}

	if err := sheet.Validate(); err != nil {
		return nil, err
	}
	return sheet, nil
}

// Export exports a key sheet to YAML
func (c *YAMLCodec) Export(sheet *domain.KeySheet, w io.Writer) error {
	ys := yamlSheet{
		Name:    sheet.Name,
		Entries: make([]yamlEntry, 0, len(sheet.Entries)),
	}
	for _, e := range sheet.Entries {
		ys.Entries = append(ys.Entries, yamlEntry{
			Label:   e.Label,
			Machine: config.FromSettings(e.Settings),
		})
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(&ys); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
