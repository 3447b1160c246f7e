package relay

import "testing"

func TestStartEndActive(t *testing.T) {
	r := NewRegistry()
	if r.Active(555) {
		t.Fatal("555 should not be active yet")
	}

	r.Start(555)
	if !r.Active(555) {
		t.Fatal("555 should be active")
	}
	if r.Count() != 1 {
		t.Fatalf("count = %d", r.Count())
	}

	if !r.End(555) {
		t.Fatal("End should report an existing session")
	}
	if r.Active(555) {
		t.Fatal("555 should have been removed")
	}
}

func TestEndWithoutSession(t *testing.T) {
	r := NewRegistry()
	if r.End(777) {
		t.Fatal("End should report no session existed")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Start(1)
	r.Start(1)
	if r.Count() != 1 {
		t.Fatalf("count = %d", r.Count())
	}
}
