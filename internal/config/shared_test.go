package config

import "testing"

func TestStore_GetReturnsIndependentCopy(t *testing.T) {
	store := NewStore(Default())

	got := store.Get()
	got.ManualAttenuation = 15

	if store.Get().ManualAttenuation != 0 {
		t.Fatalf("Store.Get() copy leaked back into the store")
	}

	next := store.Get()
	next.ManualAttenuation = 9
	store.Set(next)

	if store.Get().ManualAttenuation != 9 {
		t.Fatalf("Set did not take effect")
	}
}
