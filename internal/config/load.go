// internal/config/load.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultsFile is the optional startup-defaults document named by the
// fourth CLI argument (SPEC_FULL.md §6). It mirrors Config but every
// field is a pointer/omittable so a partial file only overrides what
// it names.
type DefaultsFile struct {
	Mode               *int            `yaml:"mode"`
	TimeoutSeconds     *float64        `yaml:"timeout_seconds"`
	InPositions        map[string]int  `yaml:"in_positions"`
	OutPositions       map[string]int  `yaml:"out_positions"`
	PixelCountThresholds map[string]int `yaml:"pixel_count_thresholds"`
	ManualAttenuation  *int            `yaml:"manual_attenuation"`
	FilterNames        map[string]string `yaml:"filter_names"`
}

// Load parses path into a DefaultsFile. It performs no validation
// beyond YAML syntax; callers must still run Validate after ApplyTo.
func Load(path string) (*DefaultsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var df DefaultsFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return &df, nil
}

// ApplyTo overlays df onto cfg, field by field, leaving anything df
// does not mention untouched.
func (df *DefaultsFile) ApplyTo(cfg *Config) error {
	if df == nil {
		return nil
	}

	raw := map[string]interface{}{}
	if df.Mode != nil {
		raw["mode"] = *df.Mode
	}
	if df.TimeoutSeconds != nil {
		raw["timeout"] = *df.TimeoutSeconds
	}
	if df.InPositions != nil {
		raw["in_positions"] = df.InPositions
	}
	if df.OutPositions != nil {
		raw["out_positions"] = df.OutPositions
	}
	if df.PixelCountThresholds != nil {
		raw["pixel_count_thresholds"] = df.PixelCountThresholds
	}
	if df.ManualAttenuation != nil {
		raw["attenuation"] = *df.ManualAttenuation
	}
	if df.FilterNames != nil {
		raw["filter_names"] = df.FilterNames
	}

	jsonRaw, err := toJSONRawMap(raw)
	if err != nil {
		return fmt.Errorf("config: encode defaults: %w", err)
	}

	// Defaults may legitimately set "attenuation" alongside "mode" in
	// the startup file; ApplyParams applies "mode" before "attenuation",
	// so the attenuation check sees the file's final mode.
	_, err = ApplyParams(cfg, jsonRaw)
	return err
}
