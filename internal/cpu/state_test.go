package cpu

import "testing"

func TestRegisterAliasing(t *testing.T) {
	s := New(0)
	s.SetRegL(EAX, 0x12345678)

	if got := s.RegW(EAX); got != 0x5678 {
		t.Errorf("RegW(EAX) = 0x%x, want 0x5678", got)
	}
	if got := s.RegB(EAX); got != 0x78 {
		t.Errorf("RegB(EAX) (AL) = 0x%x, want 0x78", got)
	}
	if got := s.RegB(4); got != 0x56 {
		t.Errorf("RegB(4) (AH) = 0x%x, want 0x56", got)
	}

	s.SetRegB(4, 0xAA) // AH
	if got := s.RegL(EAX); got != 0x1234AA78 {
		t.Errorf("after SetRegB(AH), RegL(EAX) = 0x%x, want 0x1234aa78", got)
	}

	s.SetRegW(EAX, 0x0011)
	if got := s.RegL(EAX); got != 0x12340011 {
		t.Errorf("after SetRegW, RegL(EAX) = 0x%x, want 0x12340011", got)
	}
}

func TestParityTable(t *testing.T) {
	if !ParityTable[0] {
		t.Error("ParityTable[0] should be even parity (true)")
	}
	if ParityTable[1] {
		t.Error("ParityTable[1] should be odd parity (false)")
	}
	if !ParityTable[0xFF] {
		t.Error("ParityTable[0xFF] should be even parity (true, 8 bits set)")
	}
}

func TestFlags(t *testing.T) {
	s := New(0)
	s.SetCF(true)
	s.SetZF(true)
	if !s.CF() || !s.ZF() {
		t.Fatal("expected CF and ZF set")
	}
	s.SetCF(false)
	if s.CF() {
		t.Fatal("expected CF clear")
	}
	if !s.ZF() {
		t.Fatal("clearing CF should not clear ZF")
	}
}

func TestSetLogicalFlags(t *testing.T) {
	s := New(0)
	s.SetLogicalFlags(0, 4)
	if !s.ZF() || s.CF() || s.OF() {
		t.Error("zero result should set ZF, clear CF/OF")
	}

	s.SetLogicalFlags(0x80000000, 4)
	if !s.SF() {
		t.Error("high bit set at width 4 should set SF")
	}

	s.SetLogicalFlags(0x80, 1)
	if !s.SF() {
		t.Error("high bit set at width 1 should set SF")
	}
}
