package storage_test

import (
	"testing"

	"github.com/pocketpal/pocketpal/pkg/storage"
	"github.com/pocketpal/pocketpal/pkg/storage/memory"
)

// TestLoadOr_MissingKey tests that a missing key yields the default.
func TestLoadOr_MissingKey(t *testing.T) {
	s := memory.New()
	if got := storage.LoadOr(s, "absent", 42.0); got != 42.0 {
		t.Errorf("LoadOr on missing key = %v, want 42", got)
	}
}

// TestLoadOr_Malformed tests that an undecodable value yields the
// default rather than a partial decode.
func TestLoadOr_Malformed(t *testing.T) {
	s := memory.New()
	s.SetRaw("wallet", `"not a number"`)
	if got := storage.LoadOr(s, "wallet", 7.0); got != 7.0 {
		t.Errorf("LoadOr on malformed value = %v, want 7", got)
	}
}

// TestLoadOr_StoredValue tests the normal read path.
func TestLoadOr_StoredValue(t *testing.T) {
	s := memory.New()
	if !s.Save("wallet", 100.5) {
		t.Fatal("Save failed")
	}
	if got := storage.LoadOr(s, "wallet", 0.0); got != 100.5 {
		t.Errorf("LoadOr = %v, want 100.5", got)
	}
}

// TestLoadOr_DefaultNotMutated tests that a failed load does not leak a
// partially decoded value: the default map comes back untouched.
func TestLoadOr_DefaultNotMutated(t *testing.T) {
	s := memory.New()
	s.SetRaw("budgets", `{"food": "oops"`)
	def := map[string]float64{"food": 1, "travel": 2}
	got := storage.LoadOr(s, "budgets", def)
	if len(got) != 2 || got["food"] != 1 || got["travel"] != 2 {
		t.Errorf("default mutated by failed load: %v", got)
	}
}
