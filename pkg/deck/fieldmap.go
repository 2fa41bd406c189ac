package deck

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModelFields says which note fields hold the Greek headword and the
// English gloss for one note type. Unset fields fall back to defaults.
type ModelFields struct {
	GreekIndex   *int  `yaml:"greek_index,omitempty" json:"greek_index,omitempty"`
	EnglishIndex *int  `yaml:"english_index,omitempty" json:"english_index,omitempty"`
	Ignore       *bool `yaml:"ignore,omitempty" json:"ignore,omitempty"`
}

// FieldMap maps note types to field positions (0-based, counted from the
// first field after the guid/notetype/deck columns).
type FieldMap struct {
	Defaults ModelFields            `yaml:"defaults" json:"defaults"`
	Models   map[string]ModelFields `yaml:"models" json:"models"`
}

// DefaultFieldMap puts Greek in field 0 and English in field 1.
func DefaultFieldMap() *FieldMap {
	return &FieldMap{Models: map[string]ModelFields{}}
}

// LoadFieldMap reads a YAML or JSON field map. A missing file yields the
// default map.
func LoadFieldMap(path string) (*FieldMap, error) {
	if path == "" {
		return DefaultFieldMap(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultFieldMap(), nil
		}
		return nil, fmt.Errorf("read field map %s: %w", path, err)
	}
	fm := DefaultFieldMap()
	if err := yaml.Unmarshal(data, fm); err != nil {
		return nil, fmt.Errorf("parse field map %s: %w", path, err)
	}
	if fm.Models == nil {
		fm.Models = map[string]ModelFields{}
	}
	return fm, nil
}

// Resolve returns the field positions for a note type.
func (fm *FieldMap) Resolve(model string) (greek, english int, ignore bool) {
	greek, english = 0, 1
	if fm == nil {
		return greek, english, false
	}
	pick := func(m ModelFields) {
		if m.GreekIndex != nil {
			greek = *m.GreekIndex
		}
		if m.EnglishIndex != nil {
			english = *m.EnglishIndex
		}
		if m.Ignore != nil {
			ignore = *m.Ignore
		}
	}
	pick(fm.Defaults)
	if m, ok := fm.Models[model]; ok {
		pick(m)
	}
	return greek, english, ignore
}
