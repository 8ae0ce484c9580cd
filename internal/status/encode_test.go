// internal/status/encode_test.go
package status

import (
	"testing"

	"github.com/tamzrod/attenctl/internal/config"
	"github.com/tamzrod/attenctl/internal/fsm"
)

func TestEncode_StateAndModeAreWireInts(t *testing.T) {
	s := Snapshot{
		State: fsm.High3Triggered,
		Mode:  fsm.Singleshot,
	}

	w := Encode(s)

	if w.State != int(fsm.High3Triggered) {
		t.Fatalf("state: got=%d want=%d", w.State, fsm.High3Triggered)
	}
	if w.Mode != int(fsm.Singleshot) {
		t.Fatalf("mode: got=%d want=%d", w.Mode, fsm.Singleshot)
	}
}

func TestEncode_PositionsByFilterKey(t *testing.T) {
	s := Snapshot{
		InPositions:  [4]int{1, 2, 3, 4},
		OutPositions: [4]int{-1, -2, -3, -4},
	}

	w := Encode(s)

	if w.InPositions["filter1"] != 1 || w.InPositions["filter4"] != 4 {
		t.Fatalf("in_positions mismap: %v", w.InPositions)
	}
	if w.OutPositions["filter2"] != -2 {
		t.Fatalf("out_positions mismap: %v", w.OutPositions)
	}
}

func TestEncode_ThresholdsRoundTrip(t *testing.T) {
	s := Snapshot{
		Thresholds: config.Thresholds{Low1: 5, Low2: 6, High1: 7, High2: 8, High3: 9},
	}

	w := Encode(s)

	if w.PixelCountThresholds["high3"] != 9 || w.PixelCountThresholds["low1"] != 5 {
		t.Fatalf("thresholds mismap: %v", w.PixelCountThresholds)
	}
}

func TestStore_GetReturnsConsistentCopy(t *testing.T) {
	store := NewStore(Snapshot{CurrentAttenuation: 15})

	got := store.Get()
	got.CurrentAttenuation = 0 // mutate the copy

	if store.Get().CurrentAttenuation != 15 {
		t.Fatalf("Store.Get() copy leaked back into the store")
	}

	store.Set(Snapshot{CurrentAttenuation: 3})
	if store.Get().CurrentAttenuation != 3 {
		t.Fatalf("Set did not take effect")
	}
}
