package quantum

import "testing"

func TestRegisterKet_AppendsAndReturnsRange(t *testing.T) {
	p := NewTapeProcessor()

	start, end, err := p.RegisterKet("q0", []bool{true, false, true, true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start != 0 || end != 4 {
		t.Fatalf("expected range [0,4), got [%d,%d)", start, end)
	}

	start2, end2, err := p.RegisterKet("q1", []bool{false, false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if start2 != 4 || end2 != 6 {
		t.Fatalf("expected range [4,6), got [%d,%d)", start2, end2)
	}
}

func TestRegisterKet_RejectsDuplicateLabel(t *testing.T) {
	p := NewTapeProcessor()
	if _, _, err := p.RegisterKet("q0", []bool{true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := p.RegisterKet("q0", []bool{false}); err == nil {
		t.Fatalf("expected error re-registering the same label")
	}
}
