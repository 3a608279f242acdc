package dictionary

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadFromFile reads a YAML dictionary file and returns a validated
// Dictionary. Sections left empty in the file fall back to the built-in
// defaults, so operators can override just the columns or just the hints.
func LoadFromFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary file: %w", err)
	}

	var dict Dictionary
	if err := yaml.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("parsing dictionary YAML: %w", err)
	}

	if err := validate(&dict); err != nil {
		return nil, fmt.Errorf("validating dictionary: %w", err)
	}

	def := Default()
	if dict.Description == "" {
		dict.Description = def.Description
	}
	if len(dict.Columns) == 0 {
		dict.Columns = def.Columns
	}
	if len(dict.UsageHints) == 0 {
		dict.UsageHints = def.UsageHints
	}

	return &dict, nil
}

func validate(dict *Dictionary) error {
	seen := make(map[string]bool, len(dict.Columns))
	for i, col := range dict.Columns {
		if col.Name == "" {
			return fmt.Errorf("columns[%d]: name must not be empty", i)
		}
		if seen[col.Name] {
			return fmt.Errorf("columns[%d]: duplicate column %q", i, col.Name)
		}
		seen[col.Name] = true
	}
	return nil
}
