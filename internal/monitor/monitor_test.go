package monitor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/oisee/nemu32/internal/cache"
	"github.com/oisee/nemu32/internal/cpu"
	"github.com/oisee/nemu32/internal/dram"
	"github.com/oisee/nemu32/internal/iexec"
	"github.com/oisee/nemu32/internal/membus"
)

func newMonitor(t *testing.T, code []byte) (*Monitor, *bytes.Buffer) {
	t.Helper()
	d := dram.New(1 << 20)
	d.LoadAt(0, code)
	bus := membus.New(cache.New(d))
	machine := iexec.New(0, bus)
	var out bytes.Buffer
	mon := New(machine, nil, strings.NewReader(""), &out)
	return mon, &out
}

func TestPrintExpression(t *testing.T) {
	mon, out := newMonitor(t, nil)
	mon.Machine.State.SetRegL(cpu.EAX, 7)

	if err := mon.dispatch("p $eax+1"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "0x8") {
		t.Errorf("output = %q, want it to contain 0x8", out.String())
	}
}

func TestWatchAndInfoW(t *testing.T) {
	mon, out := newMonitor(t, nil)
	mon.Machine.State.SetRegL(cpu.EAX, 1)

	if err := mon.dispatch("w $eax"); err != nil {
		t.Fatal(err)
	}
	out.Reset()

	if err := mon.dispatch("info w"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "$eax") {
		t.Errorf("info w output = %q, want it to mention $eax", out.String())
	}
}

func TestStepAndContinueHalt(t *testing.T) {
	// MOV EAX,1 ; HLT
	code := []byte{0xB8, 0x01, 0x00, 0x00, 0x00, 0xF4}
	mon, out := newMonitor(t, code)

	if err := mon.dispatch("si"); err != nil {
		t.Fatal(err)
	}
	if got := mon.Machine.State.RegL(cpu.EAX); got != 1 {
		t.Errorf("EAX after one step = %d, want 1", got)
	}

	if err := mon.dispatch("c"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "halted") {
		t.Errorf("expected halted message, got %q", out.String())
	}
	if !mon.Machine.Halted {
		t.Error("expected machine to be halted")
	}
}

func TestDeleteUnknownWatchpoint(t *testing.T) {
	mon, _ := newMonitor(t, nil)
	if err := mon.dispatch("d 3"); err == nil {
		t.Error("expected an error deleting a nonexistent watchpoint")
	}
}

func TestInfoRRegistersAllEight(t *testing.T) {
	mon, out := newMonitor(t, nil)
	mon.Machine.State.SetRegL(cpu.EBX, 0x42)

	if err := mon.dispatch("info r"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "ebx\t0x00000042") {
		t.Errorf("info r output = %q, want it to show ebx = 0x42", out.String())
	}
}

func TestInfoRShowsEflagsBitBreakdown(t *testing.T) {
	mon, out := newMonitor(t, nil)
	mon.Machine.State.SetZF(true)
	mon.Machine.State.SetCF(false)

	if err := mon.dispatch("info r"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "ZF=1") || !strings.Contains(out.String(), "CF=0") {
		t.Errorf("info r output = %q, want it to break out ZF=1 and CF=0", out.String())
	}
}
