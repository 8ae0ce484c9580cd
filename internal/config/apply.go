// internal/config/apply.go
package config

import (
	"encoding/json"
	"fmt"

	"github.com/tamzrod/attenctl/internal/fsm"
)

// recognizedKeys is the ordered set of `configure` params spec.md §6
// recognizes. Order matters only for "attenuation", which is accepted
// only when the effective mode (after any "mode" key in the same
// request) is MANUAL; applying in this fixed order makes that
// deterministic regardless of how the caller ordered the JSON object.
var recognizedKeys = []string{
	"mode",
	"timeout",
	"in_positions",
	"out_positions",
	"pixel_count_thresholds",
	"attenuation",
	"filter_names",
}

// ApplyParams applies the subset of recognized keys in raw to cfg.
// Each key is applied independently: a failure on one key is recorded
// and does not prevent other keys from being applied (spec.md §4.1,
// "Atomic per key; failure of one key does not roll back others").
// It returns the keys that were actually applied and a non-nil error
// describing every key that was rejected.
func ApplyParams(cfg *Config, raw map[string]json.RawMessage) (applied []string, err error) {
	var failures []string

	for _, key := range recognizedKeys {
		msg, ok := raw[key]
		if !ok {
			continue
		}

		if applyErr := applyOne(cfg, key, msg); applyErr != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", key, applyErr))
			continue
		}

		applied = append(applied, key)
	}

	if len(failures) > 0 {
		return applied, fmt.Errorf("config: %d key(s) rejected: %v", len(failures), failures)
	}
	return applied, nil
}

func applyOne(cfg *Config, key string, msg json.RawMessage) error {
	switch key {
	case "mode":
		var m int
		if err := json.Unmarshal(msg, &m); err != nil {
			return fmt.Errorf("expected integer mode: %w", err)
		}
		mode := fsm.Mode(m)
		if !mode.Valid() {
			return fmt.Errorf("mode %d out of range [0,2]", m)
		}
		cfg.Mode = mode
		return nil

	case "timeout":
		var t float64
		if err := json.Unmarshal(msg, &t); err != nil {
			return fmt.Errorf("expected numeric timeout: %w", err)
		}
		if t < 0 {
			return fmt.Errorf("timeout must be >= 0, got %v", t)
		}
		cfg.TimeoutSeconds = t
		return nil

	case "in_positions":
		return applyPositions(msg, &cfg.InPositions)

	case "out_positions":
		return applyPositions(msg, &cfg.OutPositions)

	case "pixel_count_thresholds":
		return applyThresholds(msg, &cfg.Thresholds)

	case "attenuation":
		var a int
		if err := json.Unmarshal(msg, &a); err != nil {
			return fmt.Errorf("expected integer attenuation: %w", err)
		}
		if cfg.Mode != fsm.ManualMode {
			return fmt.Errorf("attenuation only accepted in MANUAL mode")
		}
		if a < 0 || a > 15 {
			return fmt.Errorf("attenuation %d out of range [0,15]", a)
		}
		cfg.ManualAttenuation = a
		return nil

	case "filter_names":
		return applyFilterNames(msg, &cfg.FilterNames)

	default:
		return fmt.Errorf("unrecognized key")
	}
}

// filterIndex maps the wire keys "filter1".."filter4" to array index.
func filterIndex(name string) (int, bool) {
	switch name {
	case "filter1":
		return 0, true
	case "filter2":
		return 1, true
	case "filter3":
		return 2, true
	case "filter4":
		return 3, true
	default:
		return 0, false
	}
}

func applyPositions(msg json.RawMessage, dst *[4]int) error {
	var m map[string]int
	if err := json.Unmarshal(msg, &m); err != nil {
		return fmt.Errorf("expected filter1..4 -> int map: %w", err)
	}

	next := *dst
	for name, v := range m {
		idx, ok := filterIndex(name)
		if !ok {
			return fmt.Errorf("unrecognized filter key %q", name)
		}
		next[idx] = v
	}
	*dst = next
	return nil
}

func applyThresholds(msg json.RawMessage, dst *Thresholds) error {
	var m map[string]int
	if err := json.Unmarshal(msg, &m); err != nil {
		return fmt.Errorf("expected bin -> int map: %w", err)
	}

	next := *dst
	for bin, v := range m {
		switch bin {
		case "low1":
			next.Low1 = v
		case "low2":
			next.Low2 = v
		case "high1":
			next.High1 = v
		case "high2":
			next.High2 = v
		case "high3":
			next.High3 = v
		default:
			return fmt.Errorf("unrecognized threshold bin %q", bin)
		}
	}
	*dst = next
	return nil
}

func applyFilterNames(msg json.RawMessage, dst *[4]string) error {
	var m map[string]string
	if err := json.Unmarshal(msg, &m); err != nil {
		return fmt.Errorf("expected filter1..4 -> string map: %w", err)
	}

	next := *dst
	for name, v := range m {
		idx, ok := filterIndex(name)
		if !ok {
			return fmt.Errorf("unrecognized filter key %q", name)
		}
		next[idx] = v
	}
	*dst = next
	return nil
}
