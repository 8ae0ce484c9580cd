// internal/config/config.go
//
// Package config owns the attenuation controller's runtime
// configuration: defaults, an optional startup-defaults file, and the
// `configure` command's partial-update semantics.
//
// Grounded on the teacher's internal/config: Load only parses,
// Validate only checks, Normalize only mutates after Validate passes.
package config

import "github.com/tamzrod/attenctl/internal/fsm"

// Thresholds is the recognized pixel-count threshold table (spec.md §3).
// Defaults are 2 for every bin.
type Thresholds struct {
	Low1  int `yaml:"low1" json:"low1"`
	Low2  int `yaml:"low2" json:"low2"`
	High1 int `yaml:"high1" json:"high1"`
	High2 int `yaml:"high2" json:"high2"`
	High3 int `yaml:"high3" json:"high3"`
}

// DefaultThresholds returns the {2,2,2,2,2} table spec.md §3 names.
func DefaultThresholds() Thresholds {
	return Thresholds{Low1: 2, Low2: 2, High1: 2, High2: 2, High3: 2}
}

// Config is the full set of user-settable runtime configuration
// (spec.md §3 "Configuration"). All fields have defaults; partial
// updates through `configure` are legal.
type Config struct {
	Mode              fsm.Mode
	TimeoutSeconds    float64
	InPositions       [4]int
	OutPositions      [4]int
	Thresholds        Thresholds
	ManualAttenuation int

	// FilterNames is supplemented from the original IOC wrapper's
	// FILTER_SET enumeration (SPEC_FULL.md); purely descriptive.
	FilterNames [4]string
}

// Default returns the controller's boot-time configuration before any
// startup-defaults file or `configure` command is applied.
func Default() Config {
	return Config{
		Mode:              fsm.ManualMode,
		TimeoutSeconds:    3.0,
		InPositions:       [4]int{0, 0, 0, 0},
		OutPositions:      [4]int{0, 0, 0, 0},
		Thresholds:        DefaultThresholds(),
		ManualAttenuation: 0,
		FilterNames:       [4]string{"filter1", "filter2", "filter3", "filter4"},
	}
}
