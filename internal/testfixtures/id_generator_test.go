package testfixtures

import "testing"

func TestIDGeneratorProducesSequentialIDs(t *testing.T) {
	gen := NewIDGenerator("booking")

	first := gen.Next()
	second := gen.Next()

	if first != "booking-1" || second != "booking-2" {
		t.Fatalf("unexpected identifiers: %q, %q", first, second)
	}
}

func TestIDGeneratorCanReset(t *testing.T) {
	gen := NewIDGenerator("room")
	_ = gen.Next()
	gen.SetCounter(0)
	gen.SetPrefix("hall")

	if next := gen.Next(); next != "hall-1" {
		t.Fatalf("Next after reset = %q, want hall-1", next)
	}
}
