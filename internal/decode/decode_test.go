package decode

import (
	"testing"

	"github.com/oisee/nemu32/internal/cache"
	"github.com/oisee/nemu32/internal/cpu"
	"github.com/oisee/nemu32/internal/dram"
	"github.com/oisee/nemu32/internal/membus"
)

func newReader(t *testing.T, code []byte) *Reader {
	t.Helper()
	d := dram.New(1 << 16)
	d.LoadAt(0, code)
	bus := membus.New(cache.New(d))
	st := cpu.New(0)
	return &Reader{State: st, Bus: bus}
}

func TestDecodeModRMRegisterDirect(t *testing.T) {
	// mod=11, reg=1 (ecx), rm=0 (eax) -> 0xC8
	r := newReader(t, []byte{0xC8})
	m := r.DecodeModRM(4)
	if m.Mod != 3 {
		t.Fatalf("Mod = %d, want 3", m.Mod)
	}
	if m.Reg != cpu.ECX {
		t.Errorf("Reg = %d, want ECX", m.Reg)
	}
	if m.RM.Kind != KindReg || m.RM.Reg != cpu.EAX {
		t.Errorf("RM = %+v, want register EAX", m.RM)
	}
}

func TestDecodeModRMDisp32(t *testing.T) {
	// mod=00, reg=0, rm=5 -> disp32 follows: 0x05 then 4-byte address.
	r := newReader(t, []byte{0x05, 0x00, 0x10, 0x00, 0x00})
	m := r.DecodeModRM(4)
	if m.RM.Kind != KindMem {
		t.Fatalf("RM.Kind = %v, want KindMem", m.RM.Kind)
	}
	if m.RM.Addr != 0x1000 {
		t.Errorf("RM.Addr = 0x%x, want 0x1000", m.RM.Addr)
	}
}

func TestDecodeModRMBaseDisp8(t *testing.T) {
	// mod=01, reg=0, rm=3 (ebx) -> disp8 follows: 0x43, then 0x10.
	r := newReader(t, []byte{0x43, 0x10})
	r.State.SetRegL(cpu.EBX, 0x2000)
	m := r.DecodeModRM(4)
	if m.RM.Addr != 0x2010 {
		t.Errorf("RM.Addr = 0x%x, want 0x2010", m.RM.Addr)
	}
}

func TestReadWriteOperandWidths(t *testing.T) {
	r := newReader(t, nil)
	r.State.SetRegL(cpu.EAX, 0xAABBCCDD)

	b := RegOperand(cpu.EAX, 1)
	if got := r.Read(b); got != 0xDD {
		t.Errorf("Read byte view = 0x%x, want 0xdd", got)
	}

	w := RegOperand(cpu.EAX, 2)
	if got := r.Read(w); got != 0xCCDD {
		t.Errorf("Read word view = 0x%x, want 0xccdd", got)
	}

	r.Write(RegOperand(cpu.EAX, 2), 0x1122)
	if got := r.State.RegL(cpu.EAX); got != 0xAABB1122 {
		t.Errorf("after word write, RegL(EAX) = 0x%x, want 0xaabb1122", got)
	}
}

func TestFetchImmSignExtension(t *testing.T) {
	r := newReader(t, []byte{0xFF})
	v := r.FetchImm(1, true)
	if v != 0xFFFFFFFF {
		t.Errorf("sign-extended 0xff = 0x%x, want 0xffffffff", v)
	}
}
