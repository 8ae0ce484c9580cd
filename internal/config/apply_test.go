// internal/config/apply_test.go
package config

import (
	"encoding/json"
	"testing"

	"github.com/tamzrod/attenctl/internal/fsm"
)

func rawParams(t *testing.T, pairs map[string]interface{}) map[string]json.RawMessage {
	t.Helper()
	out, err := toJSONRawMap(pairs)
	if err != nil {
		t.Fatalf("toJSONRawMap: %v", err)
	}
	return out
}

func TestApplyParams_PartialUpdate(t *testing.T) {
	cfg := Default()

	applied, err := ApplyParams(&cfg, rawParams(t, map[string]interface{}{
		"timeout": 5.0,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(applied) != 1 || applied[0] != "timeout" {
		t.Fatalf("expected [timeout] applied, got %v", applied)
	}
	if cfg.TimeoutSeconds != 5.0 {
		t.Fatalf("timeout not applied: %v", cfg.TimeoutSeconds)
	}
	if cfg.Mode != fsm.ManualMode {
		t.Fatalf("mode should be unchanged: %v", cfg.Mode)
	}
}

func TestApplyParams_BadKeyDoesNotRollbackGoodKeys(t *testing.T) {
	cfg := Default()

	_, err := ApplyParams(&cfg, rawParams(t, map[string]interface{}{
		"timeout": 5.0,
		"mode":    "not-an-int",
	}))
	if err == nil {
		t.Fatalf("expected error for bad mode type")
	}
	if cfg.TimeoutSeconds != 5.0 {
		t.Fatalf("timeout should still have applied: %v", cfg.TimeoutSeconds)
	}
	if cfg.Mode != fsm.ManualMode {
		t.Fatalf("mode should be unchanged after its own failure: %v", cfg.Mode)
	}
}

func TestApplyParams_AttenuationOnlyInManual(t *testing.T) {
	cfg := Default()
	cfg.Mode = fsm.Continuous

	_, err := ApplyParams(&cfg, rawParams(t, map[string]interface{}{
		"attenuation": 4,
	}))
	if err == nil {
		t.Fatalf("expected rejection: attenuation outside MANUAL mode")
	}
	if cfg.ManualAttenuation != 0 {
		t.Fatalf("attenuation should not have been applied: %v", cfg.ManualAttenuation)
	}
}

func TestApplyParams_ModeThenAttenuationInSameRequest(t *testing.T) {
	cfg := Default()
	cfg.Mode = fsm.Continuous

	applied, err := ApplyParams(&cfg, rawParams(t, map[string]interface{}{
		"mode":        0,
		"attenuation": 7,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(applied) != 2 {
		t.Fatalf("expected both keys applied, got %v", applied)
	}
	if cfg.ManualAttenuation != 7 {
		t.Fatalf("attenuation should apply once mode switches to MANUAL in the same request: %v", cfg.ManualAttenuation)
	}
}

func TestApplyParams_PartialPositionsMap(t *testing.T) {
	cfg := Default()
	cfg.InPositions = [4]int{10, 20, 30, 40}

	_, err := ApplyParams(&cfg, rawParams(t, map[string]interface{}{
		"in_positions": map[string]int{"filter2": 99},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := [4]int{10, 99, 30, 40}
	if cfg.InPositions != want {
		t.Fatalf("got=%v want=%v", cfg.InPositions, want)
	}
}

func TestApplyParams_ThresholdsPartial(t *testing.T) {
	cfg := Default()

	_, err := ApplyParams(&cfg, rawParams(t, map[string]interface{}{
		"pixel_count_thresholds": map[string]int{"high3": 50},
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Thresholds.High3 != 50 {
		t.Fatalf("high3 not applied: %v", cfg.Thresholds.High3)
	}
	if cfg.Thresholds.Low1 != 2 {
		t.Fatalf("low1 should be untouched: %v", cfg.Thresholds.Low1)
	}
}

func TestApplyParams_UnknownKeyIgnored(t *testing.T) {
	cfg := Default()

	applied, err := ApplyParams(&cfg, rawParams(t, map[string]interface{}{
		"bogus": 1,
	}))
	if err != nil {
		t.Fatalf("unrecognized top-level keys should be ignored, not errored: %v", err)
	}
	if len(applied) != 0 {
		t.Fatalf("expected no keys applied, got %v", applied)
	}
}

func TestValidate_RejectsNegativeTimeout(t *testing.T) {
	cfg := Default()
	cfg.TimeoutSeconds = -1

	if err := Validate(&cfg); err == nil {
		t.Fatalf("expected validation error for negative timeout")
	}
}

func TestValidate_RejectsOutOfRangeMode(t *testing.T) {
	cfg := Default()
	cfg.Mode = fsm.Mode(9)

	if err := Validate(&cfg); err == nil {
		t.Fatalf("expected validation error for out-of-range mode")
	}
}

func TestNormalize_FillsBlankFilterNames(t *testing.T) {
	cfg := Default()
	cfg.FilterNames[1] = ""

	Normalize(&cfg)

	if cfg.FilterNames[1] != "filter2" {
		t.Fatalf("expected default filter2 name restored, got %q", cfg.FilterNames[1])
	}
}
