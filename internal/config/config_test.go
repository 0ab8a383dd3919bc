package config

import (
	"testing"
)

func TestVotingConfigCanClose(t *testing.T) {
	v := VotingConfig{CloserRoles: []string{"admin", "presidente", "secretario"}}

	for _, role := range []string{"admin", "presidente", "secretario"} {
		if !v.CanClose(role) {
			t.Errorf("CanClose(%q) = false, want true", role)
		}
	}
	if v.CanClose("conselheiro") {
		t.Error("CanClose(conselheiro) = true, want false")
	}
	if v.CanClose("") {
		t.Error("CanClose of empty role must be false")
	}
}

func TestSplitTrim(t *testing.T) {
	got := splitTrim(" admin, presidente ,,secretario ")
	want := []string{"admin", "presidente", "secretario"}
	if len(got) != len(want) {
		t.Fatalf("splitTrim returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitTrim[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
