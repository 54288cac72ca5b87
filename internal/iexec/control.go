package iexec

import (
	"github.com/oisee/nemu32/internal/cpu"
	"github.com/oisee/nemu32/internal/decode"
)

// execPush implements PUSH src: ESP -= 4, then [ESP] = src. Grounded on
// original_source/nemu/src/cpu/exec/data-mov/push-template.h.
func (m *Machine) execPush(src decode.Operand) {
	v := m.R.Read(src)
	esp := m.State.RegL(cpu.ESP) - 4
	m.State.SetRegL(cpu.ESP, esp)
	m.Bus.WriteLong(esp, v)
}

// execPop implements POP dest: dest = [ESP], then ESP += 4. Grounded on
// original_source/nemu/src/cpu/exec/data-mov/pop-template.h.
func (m *Machine) execPop(dest decode.Operand) {
	esp := m.State.RegL(cpu.ESP)
	v := m.Bus.ReadLong(esp)
	m.State.SetRegL(cpu.ESP, esp+4)
	m.R.Write(dest, v)
}

// execCallRel implements CALL rel32: pushes the return address (EIP right
// after the instruction, which FetchImm has already advanced EIP past),
// then jumps by rel. Grounded on
// original_source/nemu/src/cpu/exec/control/call-template.h.
func (m *Machine) execCallRel(rel int32) {
	esp := m.State.RegL(cpu.ESP) - 4
	m.State.SetRegL(cpu.ESP, esp)
	m.Bus.WriteLong(esp, m.State.EIP)
	m.State.EIP = uint32(int32(m.State.EIP) + rel)
}

// execCallAbs implements CALL r/m32 (indirect call through a register or
// memory operand): same push-then-jump shape as execCallRel, but the
// target is an absolute address rather than a displacement.
func (m *Machine) execCallAbs(target decode.Operand) {
	dest := m.R.Read(target)
	esp := m.State.RegL(cpu.ESP) - 4
	m.State.SetRegL(cpu.ESP, esp)
	m.Bus.WriteLong(esp, m.State.EIP)
	m.State.EIP = dest
}

// execRet implements RET (no operand): pops the return address into EIP.
// Grounded on original_source/nemu/src/cpu/exec/control/ret-template.h's
// ret_n path.
func (m *Machine) execRet() {
	esp := m.State.RegL(cpu.ESP)
	ret := m.Bus.ReadLong(esp)
	m.State.SetRegL(cpu.ESP, esp+4)
	m.State.EIP = ret
}

// execRetImm implements RET imm16: like execRet, but additionally
// deallocates imm16 bytes of caller-pushed arguments from the stack.
// Grounded on ret-template.h's ret_i path.
func (m *Machine) execRetImm(imm16 uint32) {
	esp := m.State.RegL(cpu.ESP)
	ret := m.Bus.ReadLong(esp)
	m.State.SetRegL(cpu.ESP, esp+4+imm16)
	m.State.EIP = ret
}

// execLeave implements LEAVE: ESP = EBP, then EBP = pop(). Grounded on
// original_source/nemu/src/cpu/exec/data-mov/leave.c.
func (m *Machine) execLeave() {
	ebp := m.State.RegL(cpu.EBP)
	m.State.SetRegL(cpu.ESP, ebp)
	newEBP := m.Bus.ReadLong(ebp)
	m.State.SetRegL(cpu.ESP, ebp+4)
	m.State.SetRegL(cpu.EBP, newEBP)
}

// execJmpRel implements the unconditional relative jump (short rel8 or
// near rel32 forms share this shape; the caller has already fetched the
// correctly-sized displacement).
func (m *Machine) execJmpRel(rel int32) {
	m.State.EIP = uint32(int32(m.State.EIP) + rel)
}

// execJmpAbs implements JMP r/m32: an unconditional indirect jump.
func (m *Machine) execJmpAbs(target decode.Operand) {
	m.State.EIP = m.R.Read(target)
}

