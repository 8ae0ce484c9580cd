// internal/config/validate.go
package config

import "fmt"

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}

	if !cfg.Mode.Valid() {
		return fmt.Errorf("config: mode %d out of range [0,2]", cfg.Mode)
	}

	if cfg.TimeoutSeconds < 0 {
		return fmt.Errorf("config: timeout_seconds must be >= 0, got %v", cfg.TimeoutSeconds)
	}

	if cfg.ManualAttenuation < 0 || cfg.ManualAttenuation > 15 {
		return fmt.Errorf("config: manual_attenuation %d out of range [0,15]", cfg.ManualAttenuation)
	}

	return nil
}
