package icnarc

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Dictionary maps CMP dataset codes onto their human-readable
// descriptions, transcribed from the CMP dataset properties workbook.
type Dictionary struct {
	Codes map[string]string `yaml:"codes"`
}

func LoadDictionary(path string) (Dictionary, error) {
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Dictionary{}, err
	}
	var dict Dictionary
	if err := yaml.Unmarshal(content, &dict); err != nil {
		return Dictionary{}, err
	}
	if len(dict.Codes) == 0 {
		return Dictionary{}, fmt.Errorf("CMP dictionary empty")
	}
	return dict, nil
}

func (d Dictionary) Describe(code string) (string, bool) {
	description, ok := d.Codes[code]
	return description, ok
}
