// internal/config/normalize.go
package config

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.TimeoutSeconds < 0 {
		cfg.TimeoutSeconds = 0
	}

	if cfg.ManualAttenuation < 0 {
		cfg.ManualAttenuation = 0
	}
	if cfg.ManualAttenuation > 15 {
		cfg.ManualAttenuation = 15
	}

	for i, name := range cfg.FilterNames {
		if name == "" {
			cfg.FilterNames[i] = defaultFilterName(i)
		}
	}
}

func defaultFilterName(i int) string {
	names := [4]string{"filter1", "filter2", "filter3", "filter4"}
	if i < 0 || i >= len(names) {
		return "filter"
	}
	return names[i]
}
