// Package decode turns a byte stream at EIP into operand records: ModR/M
// register/memory operands, SIB-scaled addressing, displacements and
// immediates. Field layout is grounded on IntuitionEngine/cpu_x86.go's
// prefix/modrm/sib decoder state; operand semantics (which addressing forms
// exist, how SIB scale/index/base combine) follow
// original_source/nemu/src/cpu/cpu.c's operand-decode conventions.
package decode

import (
	"fmt"

	"github.com/oisee/nemu32/internal/cpu"
	"github.com/oisee/nemu32/internal/membus"
)

// Kind distinguishes the three operand forms an instruction can reference.
type Kind int

const (
	KindReg Kind = iota
	KindMem
	KindImm
)

// Operand is the decoded form of one instruction argument: which register,
// which address, or which immediate, plus the width in bytes and a
// disassembly string.
type Operand struct {
	Kind Kind
	Reg  int
	Addr uint32
	Imm  uint32
	Width int
	Text string
}

// Reader is the decoder's view of the CPU: it fetches instruction bytes
// from EIP (advancing it) and reads/writes registers for operand
// resolution. It holds only the register state and the bus, so decode
// tests can drive it without a full iexec.Machine.
type Reader struct {
	State *cpu.State
	Bus   *membus.Bus
}

// FetchByte reads the byte at EIP and advances EIP by 1.
func (r *Reader) FetchByte() uint8 {
	v := r.Bus.ReadByte(r.State.EIP)
	r.State.EIP++
	return v
}

// FetchWord reads the word at EIP and advances EIP by 2.
func (r *Reader) FetchWord() uint16 {
	v := r.Bus.ReadWord(r.State.EIP)
	r.State.EIP += 2
	return v
}

// FetchLong reads the dword at EIP and advances EIP by 4.
func (r *Reader) FetchLong() uint32 {
	v := r.Bus.ReadLong(r.State.EIP)
	r.State.EIP += 4
	return v
}

// FetchImm reads an immediate of the given byte width (1, 2 or 4),
// sign-extended to 32 bits when signExt is set.
func (r *Reader) FetchImm(width int, signExt bool) uint32 {
	switch width {
	case 1:
		v := r.FetchByte()
		if signExt {
			return uint32(int32(int8(v)))
		}
		return uint32(v)
	case 2:
		v := r.FetchWord()
		if signExt {
			return uint32(int32(int16(v)))
		}
		return uint32(v)
	case 4:
		return r.FetchLong()
	default:
		panic(fmt.Sprintf("decode: unsupported immediate width %d", width))
	}
}

// ModRM is the decoded Mod/Reg/RM byte plus whatever SIB and displacement
// followed it. Reg always names a register (the "digit" field for
// group opcodes, or the second operand's register for two-operand forms);
// RM resolves to either a register operand or a fully computed memory
// operand depending on Mod.
type ModRM struct {
	Mod byte
	Reg int
	RM  Operand
}

// DecodeModRM reads the ModR/M byte (and SIB/displacement if present) and
// resolves the RM field to a register or memory operand of the given
// operand width. Addresses are always computed with 32-bit addressing,
// the only mode the core subset supports.
func (r *Reader) DecodeModRM(width int) ModRM {
	b := r.FetchByte()
	mod := b >> 6
	reg := int((b >> 3) & 7)
	rm := int(b & 7)

	m := ModRM{Mod: mod, Reg: reg}

	if mod == 3 {
		m.RM = Operand{Kind: KindReg, Reg: rm, Width: width, Text: regName(rm, width)}
		return m
	}

	var addr uint32
	var base string

	if rm == 4 {
		addr, base = r.decodeSIB(mod)
	} else if rm == 5 && mod == 0 {
		disp := r.FetchLong()
		addr = disp
		base = fmt.Sprintf("0x%x", disp)
	} else {
		addr = r.State.RegL(rm)
		base = cpu.RegsL[rm]
	}

	switch mod {
	case 1:
		disp := r.FetchImm(1, true)
		addr += disp
		base = fmt.Sprintf("%s+0x%x", base, disp)
	case 2:
		disp := r.FetchImm(4, false)
		addr += disp
		base = fmt.Sprintf("%s+0x%x", base, disp)
	}

	m.RM = Operand{Kind: KindMem, Addr: addr, Width: width, Text: fmt.Sprintf("[%s]", base)}
	return m
}

// decodeSIB handles the rm==4 escape to scale-index-base addressing.
func (r *Reader) decodeSIB(mod byte) (uint32, string) {
	sib := r.FetchByte()
	scale := uint32(1) << (sib >> 6)
	index := int((sib >> 3) & 7)
	base := int(sib & 7)

	var addr uint32
	var text string

	if index != 4 {
		addr += r.State.RegL(index) * scale
		text = fmt.Sprintf("%s*%d", cpu.RegsL[index], scale)
	}

	if base == 5 && mod == 0 {
		disp := r.FetchLong()
		addr += disp
		if text != "" {
			text = fmt.Sprintf("0x%x+%s", disp, text)
		} else {
			text = fmt.Sprintf("0x%x", disp)
		}
	} else {
		addr += r.State.RegL(base)
		if text != "" {
			text = fmt.Sprintf("%s+%s", cpu.RegsL[base], text)
		} else {
			text = cpu.RegsL[base]
		}
	}

	return addr, text
}

func regName(i, width int) string {
	switch width {
	case 1:
		return cpu.RegsB[i]
	case 2:
		return cpu.RegsW[i]
	default:
		return cpu.RegsL[i]
	}
}

// RegOperand returns an operand referring directly to a register, used for
// the non-ModR/M operand of two-operand instructions (e.g. the reg field
// of a ModR/M byte, or a fixed accumulator register).
func RegOperand(i, width int) Operand {
	return Operand{Kind: KindReg, Reg: i, Width: width, Text: regName(i, width)}
}

// ImmOperand wraps an already-fetched immediate value as an operand.
func ImmOperand(v uint32, width int) Operand {
	return Operand{Kind: KindImm, Imm: v, Width: width, Text: fmt.Sprintf("0x%x", v)}
}

// Read returns the operand's current value: the register's view at the
// operand's width, the memory cell at Addr, or the immediate itself.
func (r *Reader) Read(op Operand) uint32 {
	switch op.Kind {
	case KindReg:
		switch op.Width {
		case 1:
			return uint32(r.State.RegB(op.Reg))
		case 2:
			return uint32(r.State.RegW(op.Reg))
		default:
			return r.State.RegL(op.Reg)
		}
	case KindMem:
		return r.Bus.Read(op.Addr, op.Width)
	case KindImm:
		return op.Imm
	}
	panic("decode: unknown operand kind")
}

// Write stores v into the operand's destination. Writing to a KindImm
// operand is a programming error and panics.
func (r *Reader) Write(op Operand, v uint32) {
	switch op.Kind {
	case KindReg:
		switch op.Width {
		case 1:
			r.State.SetRegB(op.Reg, uint8(v))
		case 2:
			r.State.SetRegW(op.Reg, uint16(v))
		default:
			r.State.SetRegL(op.Reg, v)
		}
	case KindMem:
		r.Bus.Write(op.Addr, op.Width, v)
	default:
		panic("decode: cannot write to an immediate operand")
	}
}
