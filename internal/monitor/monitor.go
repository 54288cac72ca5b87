// Package monitor is the interactive command loop: continue/step, register
// and memory inspection, expression evaluation, and watchpoints. Command-loop shape grounded on
// original_source/nemu/src/monitor/debug/ui.c; the TTY-detection idiom for
// whether to print an interactive prompt comes from
// IntuitionEngine/terminal_host.go's use of golang.org/x/term — a real
// ecosystem dependency from the pack, wired into the one place that
// genuinely needs it (this stays plain line-buffered input, not raw mode,
// since the monitor has no line-editing needs of its own).
package monitor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/oisee/nemu32/internal/cpu"
	"github.com/oisee/nemu32/internal/elfload"
	"github.com/oisee/nemu32/internal/expr"
	"github.com/oisee/nemu32/internal/iexec"
	"github.com/oisee/nemu32/internal/watchpoint"
	"golang.org/x/term"
)

// Monitor is the command loop's context object: one per emulator run,
// never a package-level singleton, so tests can drive it against a fresh
// Machine with canned input and capture its output.
type Monitor struct {
	Machine *iexec.Machine
	Image   *elfload.Image
	WP      *watchpoint.Pool

	in  *bufio.Scanner
	out io.Writer

	quit bool
}

// New builds a monitor reading commands from in and writing output to out.
func New(machine *iexec.Machine, image *elfload.Image, in io.Reader, out io.Writer) *Monitor {
	return &Monitor{
		Machine: machine,
		Image:   image,
		WP:      watchpoint.New(),
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

// Run drives the command loop until "q", EOF, or ctx is cancelled. When
// stdin is a terminal it prints a "(nemu32) " prompt before each read;
// piped/batch input (term.IsTerminal false) runs silently, matching how a
// script feeding commands through a pipe expects no prompt noise.
func (mon *Monitor) Run(ctx context.Context, stdinFd int) error {
	interactive := term.IsTerminal(stdinFd)
	for !mon.quit {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if interactive {
			fmt.Fprint(mon.out, "(nemu32) ")
		}
		if !mon.in.Scan() {
			return mon.in.Err()
		}
		line := strings.TrimSpace(mon.in.Text())
		if line == "" {
			continue
		}
		if err := mon.dispatch(line); err != nil {
			fmt.Fprintf(mon.out, "error: %v\n", err)
		}
	}
	return nil
}

// dispatch runs one command line. A panic raised while the command runs
// (e.g. an out-of-range memory access) is recovered and returned as an
// error, so Run reports it and keeps reading commands.
func (mon *Monitor) dispatch(line string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("fatal: %v", r)
		}
	}()
	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "help", "h":
		mon.printHelp()
	case "c":
		return mon.cmdContinue()
	case "q":
		mon.quit = true
	case "si":
		return mon.cmdStep(args)
	case "info":
		return mon.cmdInfo(args)
	case "x":
		return mon.cmdExamine(args)
	case "p":
		return mon.cmdPrint(args)
	case "w":
		return mon.cmdWatch(args)
	case "d":
		return mon.cmdDelete(args)
	default:
		return fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
	return nil
}

func (mon *Monitor) printHelp() {
	fmt.Fprintln(mon.out, "commands: help c q si[N] info r|w x N ADDR p EXPR w EXPR d N")
}

// cmdContinue runs until the machine halts, an illegal opcode is hit, or a
// watchpoint fires, re-checking every active watchpoint after each
// retired instruction (check_watchpoints in the original).
func (mon *Monitor) cmdContinue() error {
	for {
		if err := mon.Machine.Step(); err != nil {
			return err
		}
		if mon.Machine.Halted {
			fmt.Fprintln(mon.out, "machine halted")
			return nil
		}
		hits := mon.WP.Check(mon.lookupRegister)
		for _, h := range hits {
			fmt.Fprintf(mon.out, "watchpoint %d: %s: 0x%x -> 0x%x\n", h.No, h.Expr, h.OldVal, h.NewVal)
		}
		if len(hits) > 0 {
			return nil
		}
	}
}

// cmdStep implements "si [N]": single-step N times (default 1), stopping
// early on halt, illegal opcode, or a watchpoint hit.
func (mon *Monitor) cmdStep(args []string) error {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("si: bad count %q", args[0])
		}
		n = v
	}
	for i := 0; i < n; i++ {
		if err := mon.Machine.Step(); err != nil {
			return err
		}
		if mon.Machine.Halted {
			fmt.Fprintln(mon.out, "machine halted")
			return nil
		}
		hits := mon.WP.Check(mon.lookupRegister)
		for _, h := range hits {
			fmt.Fprintf(mon.out, "watchpoint %d: %s: 0x%x -> 0x%x\n", h.No, h.Expr, h.OldVal, h.NewVal)
		}
		if len(hits) > 0 {
			return nil
		}
	}
	return nil
}

// cmdInfo implements "info r" (registers) and "info w" (watchpoints).
func (mon *Monitor) cmdInfo(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("info: expected 'r' or 'w'")
	}
	switch args[0] {
	case "r":
		st := mon.Machine.State
		for i, name := range cpu.RegsL {
			fmt.Fprintf(mon.out, "%s\t0x%08x\n", name, st.RegL(i))
		}
		fmt.Fprintf(mon.out, "eip\t0x%08x\n", st.EIP)
		fmt.Fprintf(mon.out, "eflags\t0x%08x [%s]\n", st.EFLAGS, flagBits(st.EFLAGS))
	case "w":
		for _, w := range mon.WP.List() {
			fmt.Fprintf(mon.out, "%d: %s = 0x%x\n", w.No, w.Expr, w.LastVal)
		}
	default:
		return fmt.Errorf("info: unknown subcommand %q", args[0])
	}
	return nil
}

// cmdExamine implements "x N ADDR": print N consecutive 32-bit words
// starting at ADDR (an expression), four per line.
func (mon *Monitor) cmdExamine(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("x: usage: x N ADDR")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("x: bad count %q", args[0])
	}
	addr, err := expr.Eval(strings.Join(args[1:], " "), mon.lookupRegister)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if i%4 == 0 {
			if i > 0 {
				fmt.Fprintln(mon.out)
			}
			fmt.Fprintf(mon.out, "0x%08x:", addr+uint32(i*4))
		}
		v := mon.Machine.Bus.ReadLong(addr + uint32(i*4))
		fmt.Fprintf(mon.out, "\t0x%08x", v)
	}
	fmt.Fprintln(mon.out)
	return nil
}

// cmdPrint implements "p EXPR": evaluate and print an expression's value.
func (mon *Monitor) cmdPrint(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("p: usage: p EXPR")
	}
	v, err := expr.Eval(strings.Join(args, " "), mon.lookupRegister)
	if err != nil {
		return err
	}
	fmt.Fprintf(mon.out, "0x%x (%d)\n", v, int32(v))
	return nil
}

// cmdWatch implements "w EXPR": register a new watchpoint.
func (mon *Monitor) cmdWatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("w: usage: w EXPR")
	}
	e := strings.Join(args, " ")
	no, err := mon.WP.Add(e, mon.lookupRegister)
	if err != nil {
		return err
	}
	fmt.Fprintf(mon.out, "watchpoint %d: %s\n", no, e)
	return nil
}

// cmdDelete implements "d N": remove watchpoint number N.
func (mon *Monitor) cmdDelete(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("d: usage: d N")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("d: bad watchpoint number %q", args[0])
	}
	return mon.WP.Free(n)
}

// eflagsBits lists the named status/control bits this subset tracks, in
// the order spec.md's register dump groups them.
var eflagsBits = []struct {
	name string
	mask uint32
}{
	{"CF", cpu.FlagCF},
	{"PF", cpu.FlagPF},
	{"AF", cpu.FlagAF},
	{"ZF", cpu.FlagZF},
	{"SF", cpu.FlagSF},
	{"TF", cpu.FlagTF},
	{"IF", cpu.FlagIF},
	{"DF", cpu.FlagDF},
	{"OF", cpu.FlagOF},
}

// flagBits renders eflags as "CF=0 PF=1 ..." for "info r"'s per-bit
// breakdown.
func flagBits(eflags uint32) string {
	parts := make([]string, len(eflagsBits))
	for i, b := range eflagsBits {
		v := 0
		if eflags&b.mask != 0 {
			v = 1
		}
		parts[i] = fmt.Sprintf("%s=%d", b.name, v)
	}
	return strings.Join(parts, " ")
}

// lookupRegister resolves a "$name" token for the expression evaluator,
// checking eip and eflags, then the 32-bit, 16-bit and 8-bit register name tables in
// that order — the same precedence original_source's get_register_value
// uses, so "$ax" and "$al" never shadow the 32-bit form they alias.
func (mon *Monitor) lookupRegister(name string) (uint32, bool) {
	st := mon.Machine.State
	if name == "eip" {
		return st.EIP, true
	}
	if name == "eflags" {
		return st.EFLAGS, true
	}
	for i, n := range cpu.RegsL {
		if n == name {
			return st.RegL(i), true
		}
	}
	for i, n := range cpu.RegsW {
		if n == name {
			return uint32(st.RegW(i)), true
		}
	}
	for i, n := range cpu.RegsB {
		if n == name {
			return uint32(st.RegB(i)), true
		}
	}
	return 0, false
}
