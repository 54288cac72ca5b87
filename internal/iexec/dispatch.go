// Dispatch tables: a 256-entry base table keyed on the first opcode byte,
// plus a 256-entry 0F-escape table, mirroring the teacher's
// pkg/inst.Catalog[OpCode]Info idiom but keyed directly on the raw IA-32
// opcode byte instead of a synthetic enum — the byte space is already
// dense enough that a remapping layer would add nothing.
package iexec

import "github.com/oisee/nemu32/internal/decode"

var baseTable [256]opHandler
var extTable [256]opHandler

// Each ALU family (ADD, OR, ADC, SBB, AND, SUB, XOR, CMP) occupies 6
// opcodes in the classic IA-32 layout: r/m8,r8 / r/m32,r32 / r8,r/m8 /
// r32,r/m32 / AL,imm8 / eAX,imm32.

func (m *Machine) execArithRMR(fn func(*Machine, decode.Operand, decode.Operand), width int) {
	mrm := m.R.DecodeModRM(width)
	reg := decode.RegOperand(mrm.Reg, width)
	fn(m, mrm.RM, reg)
}

func (m *Machine) execArithRRM(fn func(*Machine, decode.Operand, decode.Operand), width int) {
	mrm := m.R.DecodeModRM(width)
	reg := decode.RegOperand(mrm.Reg, width)
	fn(m, reg, mrm.RM)
}

func (m *Machine) execArithAccImm(fn func(*Machine, decode.Operand, decode.Operand), width int) {
	imm := m.R.FetchImm(width, false)
	acc := decode.RegOperand(cpuEAX, width)
	fn(m, acc, decode.ImmOperand(imm, width))
}

const cpuEAX = 0

// registerArithGroup's r/m32,r32 forms (+0x01/+0x03/+0x05) read m.operWidth
// at call time rather than hardcoding 4, so a leading 0x66 prefix (already
// consumed and recorded by Step before the handler runs) selects the 16-bit
// instantiation. The r/m8,r8 forms (+0x00/+0x02/+0x04) always stay width 1;
// the byte/dword choice is encoded in the opcode itself, not the prefix.
func registerArithGroup(base byte, fn func(*Machine, decode.Operand, decode.Operand)) {
	baseTable[base+0x00] = func(m *Machine) { m.execArithRMR(fn, 1) }
	baseTable[base+0x01] = func(m *Machine) { m.execArithRMR(fn, m.operWidth) }
	baseTable[base+0x02] = func(m *Machine) { m.execArithRRM(fn, 1) }
	baseTable[base+0x03] = func(m *Machine) { m.execArithRRM(fn, m.operWidth) }
	baseTable[base+0x04] = func(m *Machine) { m.execArithAccImm(fn, 1) }
	baseTable[base+0x05] = func(m *Machine) { m.execArithAccImm(fn, m.operWidth) }
}

// group1Ops indexes the ADD/OR/ADC/SBB/AND/SUB/XOR/CMP family by a ModR/M
// reg-field digit, for the 0x80/0x81/0x83 immediate-group opcodes.
var group1Ops = [8]func(*Machine, decode.Operand, decode.Operand){
	(*Machine).execAdd,
	(*Machine).execOr,
	(*Machine).execAdc,
	(*Machine).execSbb,
	(*Machine).execAnd,
	(*Machine).execSub,
	(*Machine).execXor,
	(*Machine).execCmp,
}

func init() {
	registerArithGroup(0x00, (*Machine).execAdd)
	registerArithGroup(0x08, (*Machine).execOr)
	registerArithGroup(0x10, (*Machine).execAdc)
	registerArithGroup(0x18, (*Machine).execSbb)
	registerArithGroup(0x20, (*Machine).execAnd)
	registerArithGroup(0x28, (*Machine).execSub)
	registerArithGroup(0x30, (*Machine).execXor)
	registerArithGroup(0x38, (*Machine).execCmp)

	// 0x80: group1 r/m8, imm8. 0x81: group1 r/m32, imm32. 0x83: group1
	// r/m32, imm8 (sign-extended) — the "short immediate" encoding.
	baseTable[0x80] = func(m *Machine) {
		mrm := m.R.DecodeModRM(1)
		imm := m.R.FetchImm(1, false)
		group1Ops[mrm.Reg](m, mrm.RM, decode.ImmOperand(imm, 1))
	}
	baseTable[0x81] = func(m *Machine) {
		width := m.operWidth
		mrm := m.R.DecodeModRM(width)
		imm := m.R.FetchImm(width, false)
		group1Ops[mrm.Reg](m, mrm.RM, decode.ImmOperand(imm, width))
	}
	baseTable[0x83] = func(m *Machine) {
		width := m.operWidth
		mrm := m.R.DecodeModRM(width)
		imm := m.R.FetchImm(1, true)
		group1Ops[mrm.Reg](m, mrm.RM, decode.ImmOperand(imm, width))
	}

	// INC/DEC/PUSH/POP r32, one opcode per register (0x40-5F); MOV r,imm
	// (0xB0-0xBF). The 32-bit forms read m.operWidth so a 0x66 prefix
	// narrows them to 16 bits; PUSH/POP keep the stack at a fixed width
	// since the subset has no 16-bit stack segment to switch to.
	for i := 0; i < 8; i++ {
		reg := i
		baseTable[0x40+byte(reg)] = func(m *Machine) { m.execInc(decode.RegOperand(reg, m.operWidth)) }
		baseTable[0x48+byte(reg)] = func(m *Machine) { m.execDec(decode.RegOperand(reg, m.operWidth)) }
		baseTable[0x50+byte(reg)] = func(m *Machine) { m.execPush(decode.RegOperand(reg, 4)) }
		baseTable[0x58+byte(reg)] = func(m *Machine) { m.execPop(decode.RegOperand(reg, 4)) }
		baseTable[0xB0+byte(reg)] = func(m *Machine) {
			imm := m.R.FetchImm(1, false)
			m.execMov(decode.RegOperand(reg, 1), decode.ImmOperand(imm, 1))
		}
		baseTable[0xB8+byte(reg)] = func(m *Machine) {
			width := m.operWidth
			imm := m.R.FetchImm(width, false)
			m.execMov(decode.RegOperand(reg, width), decode.ImmOperand(imm, width))
		}
	}

	// Short conditional jumps, 0x70-0x7F.
	for i := byte(0); i < 16; i++ {
		nibble := i
		baseTable[0x70+i] = func(m *Machine) { m.execJcc(nibble) }
	}

	// TEST r/m8,r8 / r/m32,r32.
	baseTable[0x84] = func(m *Machine) { m.execArithRMR((*Machine).execTest, 1) }
	baseTable[0x85] = func(m *Machine) { m.execArithRMR((*Machine).execTest, m.operWidth) }

	// MOV r/m8,r8 / r/m32,r32 / r8,r/m8 / r32,r/m32.
	baseTable[0x88] = func(m *Machine) { m.execArithRMR((*Machine).execMov, 1) }
	baseTable[0x89] = func(m *Machine) { m.execArithRMR((*Machine).execMov, m.operWidth) }
	baseTable[0x8A] = func(m *Machine) { m.execArithRRM((*Machine).execMov, 1) }
	baseTable[0x8B] = func(m *Machine) { m.execArithRRM((*Machine).execMov, m.operWidth) }

	// LEA r32, m.
	baseTable[0x8D] = func(m *Machine) {
		width := m.operWidth
		mrm := m.R.DecodeModRM(width)
		dest := decode.RegOperand(mrm.Reg, width)
		m.execLea(dest, mrm.RM.Addr)
	}

	// String-move family, no REP prefix handling in the core subset — one
	// iteration per retired instruction.
	baseTable[0xA4] = func(m *Machine) { m.execMovs(1) }
	baseTable[0xA5] = func(m *Machine) { m.execMovs(4) }
	baseTable[0xA6] = func(m *Machine) { m.execCmps(1) }
	baseTable[0xA7] = func(m *Machine) { m.execCmps(4) }
	baseTable[0xAA] = func(m *Machine) { m.execStos(1) }
	baseTable[0xAB] = func(m *Machine) { m.execStos(4) }
	baseTable[0xAC] = func(m *Machine) { m.execLods(1) }
	baseTable[0xAD] = func(m *Machine) { m.execLods(4) }
	baseTable[0xAE] = func(m *Machine) { m.execScas(1) }
	baseTable[0xAF] = func(m *Machine) { m.execScas(4) }

	// RET / RET imm16.
	baseTable[0xC2] = func(m *Machine) { m.execRetImm(m.R.FetchImm(2, false)) }
	baseTable[0xC3] = func(m *Machine) { m.execRet() }

	// MOV r/m8, imm8 / r/m32, imm32 (group 11, reg field always 0 for MOV).
	baseTable[0xC6] = func(m *Machine) {
		mrm := m.R.DecodeModRM(1)
		imm := m.R.FetchImm(1, false)
		m.execMov(mrm.RM, decode.ImmOperand(imm, 1))
	}
	baseTable[0xC7] = func(m *Machine) {
		width := m.operWidth
		mrm := m.R.DecodeModRM(width)
		imm := m.R.FetchImm(width, false)
		m.execMov(mrm.RM, decode.ImmOperand(imm, width))
	}

	baseTable[0xC9] = func(m *Machine) { m.execLeave() }

	// CALL rel32 / JMP rel32 / JMP rel8.
	baseTable[0xE8] = func(m *Machine) {
		rel := int32(m.R.FetchImm(4, true))
		m.execCallRel(rel)
	}
	baseTable[0xE9] = func(m *Machine) {
		rel := int32(m.R.FetchImm(4, true))
		m.execJmpRel(rel)
	}
	baseTable[0xEB] = func(m *Machine) {
		rel := int32(m.R.FetchImm(1, true))
		m.execJmpRel(rel)
	}

	// Group3: TEST/NOT/NEG r/m8 (0xF6) and r/m32 (0xF7), selected by the
	// ModR/M reg-field digit. MUL/IMUL/DIV/IDIV (digits 4-7) are out of
	// scope for the core subset and panic if encountered.
	baseTable[0xF6] = func(m *Machine) { m.execGroup3(1) }
	baseTable[0xF7] = func(m *Machine) { m.execGroup3(m.operWidth) }

	baseTable[0xF4] = func(m *Machine) { m.Halted = true }

	// Group5 (0xFF): CALL/JMP r/m32 indirect, selected by the ModR/M
	// reg-field digit. PUSH r/m32 (digit 6) and INC/DEC r/m32 (digits
	// 0/1) are part of the classic group-5 layout but aren't reachable
	// through any other opcode byte in this subset and are left
	// unimplemented here alongside them.
	baseTable[0xFF] = func(m *Machine) { m.execGroup5(m.operWidth) }

	// 0F-escape: CMOVcc (0x40-4F), Jcc near (0x80-8F), SETcc (0x90-9F),
	// MOVZX/MOVSX (0xB6/0xB7/0xBE/0xBF).
	for i := byte(0); i < 16; i++ {
		nibble := i
		extTable[0x40+i] = func(m *Machine) {
			width := m.operWidth
			mrm := m.R.DecodeModRM(width)
			m.execCmovcc(nibble, decode.RegOperand(mrm.Reg, width), mrm.RM)
		}
		extTable[0x80+i] = func(m *Machine) { m.execJccNear(nibble) }
		extTable[0x90+i] = func(m *Machine) {
			mrm := m.R.DecodeModRM(1)
			m.execSetcc(nibble, mrm.RM)
		}
	}
	extTable[0xB6] = func(m *Machine) {
		mrm := m.R.DecodeModRM(1)
		m.execMovzx(decode.RegOperand(mrm.Reg, m.operWidth), mrm.RM)
	}
	extTable[0xB7] = func(m *Machine) {
		mrm := m.R.DecodeModRM(2)
		m.execMovzx(decode.RegOperand(mrm.Reg, m.operWidth), mrm.RM)
	}
	extTable[0xBE] = func(m *Machine) {
		mrm := m.R.DecodeModRM(1)
		m.execMovsx(decode.RegOperand(mrm.Reg, m.operWidth), mrm.RM)
	}
	extTable[0xBF] = func(m *Machine) {
		mrm := m.R.DecodeModRM(2)
		m.execMovsx(decode.RegOperand(mrm.Reg, m.operWidth), mrm.RM)
	}
}

// execGroup5 implements the 0xFF reg-field dispatch used by this subset:
// digit 2 is CALL r/m32 (indirect), digit 4 is JMP r/m32 (indirect).
func (m *Machine) execGroup5(width int) {
	mrm := m.R.DecodeModRM(width)
	switch mrm.Reg {
	case 2:
		m.execCallAbs(mrm.RM)
	case 4:
		m.execJmpAbs(mrm.RM)
	default:
		panic("iexec: group 5 digit is not part of the emulated subset")
	}
}

// execGroup3 implements the 0xF6/0xF7 reg-field dispatch: TEST takes an
// immediate, NOT and NEG operate on the r/m operand alone.
func (m *Machine) execGroup3(width int) {
	mrm := m.R.DecodeModRM(width)
	switch mrm.Reg {
	case 0, 1:
		imm := m.R.FetchImm(width, false)
		m.execTest(mrm.RM, decode.ImmOperand(imm, width))
	case 2:
		m.execNot(mrm.RM)
	case 3:
		m.execNeg(mrm.RM)
	default:
		panic("iexec: MUL/IMUL/DIV/IDIV are not part of the emulated subset")
	}
}
