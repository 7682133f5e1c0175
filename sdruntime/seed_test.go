package sdruntime

import "testing"

func TestRandomSeed_NonNegative(t *testing.T) {
	for i := 0; i < 100; i++ {
		if seed := RandomSeed(); seed < 0 {
			t.Errorf("seed should be non-negative, got: %d", seed)
		}
	}
}

func TestRandomSeed_Randomness(t *testing.T) {
	seeds := make(map[int64]bool)
	for i := 0; i < 10; i++ {
		seeds[RandomSeed()] = true
	}
	if len(seeds) < 5 {
		t.Errorf("expected multiple unique seeds, got only %d unique values", len(seeds))
	}
}

func TestResolveSeed(t *testing.T) {
	if got := ResolveSeed(1234); got != 1234 {
		t.Errorf("ResolveSeed(1234) = %d, want 1234", got)
	}
	if got := ResolveSeed(0); got != 0 {
		t.Errorf("ResolveSeed(0) = %d, want 0", got)
	}
	if got := ResolveSeed(-1); got < 0 {
		t.Errorf("ResolveSeed(-1) = %d, want non-negative", got)
	}
}
