package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KitEntry is one kit listed in the startup kits file.
type KitEntry struct {
	KitID    string `yaml:"kit_id"`
	APIURL   string `yaml:"api_url"`
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
	Enabled  *bool  `yaml:"enabled"`
}

// KitsFile is the top-level shape of kits.yaml.
type KitsFile struct {
	Kits []KitEntry `yaml:"kits"`
}

// IsEnabled reports whether the entry is enabled, defaulting to true when
// the field is omitted.
func (e KitEntry) IsEnabled() bool {
	return e.Enabled == nil || *e.Enabled
}

// LoadKitsFile reads and schema-validates the kits file at path. A missing
// file is not an error: it yields an empty KitsFile so a fresh deployment
// can add kits entirely through the admin API.
func LoadKitsFile(path string) (*KitsFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &KitsFile{}, nil
		}
		return nil, fmt.Errorf("config: reading kits file %s: %w", path, err)
	}

	var generic interface{}
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("config: parsing kits file %s: %w", path, err)
	}
	if err := ValidateValue(KitsSchema, generic); err != nil {
		return nil, fmt.Errorf("config: validating kits file %s: %w", path, err)
	}

	var kf KitsFile
	if err := yaml.Unmarshal(raw, &kf); err != nil {
		return nil, fmt.Errorf("config: decoding kits file %s: %w", path, err)
	}
	return &kf, nil
}
