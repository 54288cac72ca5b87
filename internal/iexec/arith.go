package iexec

import (
	"github.com/oisee/nemu32/internal/cpu"
	"github.com/oisee/nemu32/internal/decode"
)

// Unsigned is the set of widths an ALU operation can be instantiated over;
// this is the generic stand-in for the teacher language's per-width
// template instantiation (original_source's *-template.h files, each
// textually included once per DATA_BYTE).
type Unsigned interface {
	~uint8 | ~uint16 | ~uint32
}

func signBitOf[T Unsigned](v T) bool {
	top := ^T(0) ^ (^T(0) >> 1)
	return v&top != 0
}

// addFlags computes dest+src for width T, returning the result and the
// CF/OF/ZF/SF/PF flags. Grounded on original_source's add-template.h:
// CF is unsigned overflow, OF is signed overflow detected via the classic
// (dest^result)&(src^result) sign-bit test.
func addFlags[T Unsigned](dest, src T) (result T, cf, of, zf, sf bool) {
	result = dest + src
	cf = result < dest
	of = signBitOf((dest^result)&(src^result))
	zf = result == 0
	sf = signBitOf(result)
	return
}

// subFlags computes dest-src for width T (also used by CMP, which discards
// the result). Grounded on original_source's cmp-template.h:
// CF = dest < src (unsigned borrow), OF from the sign-bit XOR test.
func subFlags[T Unsigned](dest, src T) (result T, cf, of, zf, sf bool) {
	result = dest - src
	cf = dest < src
	of = signBitOf((dest^src)&(dest^result))
	zf = result == 0
	sf = signBitOf(result)
	return
}

// logicFlags computes the ZF/SF/PF result of an AND/OR/XOR/TEST, which
// always clear CF and OF (logic-template.h / test-template.h).
func logicFlags[T Unsigned](result T) (zf, sf bool) {
	return result == 0, signBitOf(result)
}

func parityOf(result uint32) bool {
	return cpu.ParityTable[uint8(result)]
}

func (m *Machine) applyArithFlags(width int, result uint32, cf, of, zf, sf bool) {
	m.State.SetCF(cf)
	m.State.SetOF(of)
	m.State.SetZF(zf)
	m.State.SetSF(sf)
	m.State.SetPF(parityOf(result & 0xFF))
}

func maskWidth(v uint32, width int) uint32 {
	switch width {
	case 1:
		return v & 0xFF
	case 2:
		return v & 0xFFFF
	default:
		return v
	}
}

// addWidth/subWidth dispatch the generic add/subFlags helper by runtime
// width, since decode.Operand carries width as an int rather than a type
// parameter.
func addWidth(dest, src uint32, width int) (result uint32, cf, of, zf, sf bool) {
	switch width {
	case 1:
		r, c, o, z, s := addFlags(uint8(dest), uint8(src))
		return uint32(r), c, o, z, s
	case 2:
		r, c, o, z, s := addFlags(uint16(dest), uint16(src))
		return uint32(r), c, o, z, s
	default:
		r, c, o, z, s := addFlags(dest, src)
		return r, c, o, z, s
	}
}

func subWidth(dest, src uint32, width int) (result uint32, cf, of, zf, sf bool) {
	switch width {
	case 1:
		r, c, o, z, s := subFlags(uint8(dest), uint8(src))
		return uint32(r), c, o, z, s
	case 2:
		r, c, o, z, s := subFlags(uint16(dest), uint16(src))
		return uint32(r), c, o, z, s
	default:
		r, c, o, z, s := subFlags(dest, src)
		return r, c, o, z, s
	}
}

// execAdd implements ADD dest, src: dest += src with full flag update.
func (m *Machine) execAdd(dest, src decode.Operand) {
	d := m.R.Read(dest)
	s := m.R.Read(src)
	result, cf, of, zf, sf := addWidth(d, s, dest.Width)
	m.applyArithFlags(dest.Width, result, cf, of, zf, sf)
	m.R.Write(dest, maskWidth(result, dest.Width))
}

// execAdc implements ADC dest, src: dest += src + CF.
func (m *Machine) execAdc(dest, src decode.Operand) {
	d := m.R.Read(dest)
	s := m.R.Read(src)
	carry := uint32(0)
	if m.State.CF() {
		carry = 1
	}
	result, cf1, of1, _, _ := addWidth(d, s, dest.Width)
	result2, cf2, of2, zf, sf := addWidth(result, carry, dest.Width)
	m.applyArithFlags(dest.Width, result2, cf1 || cf2, of1 != of2, zf, sf)
	m.R.Write(dest, maskWidth(result2, dest.Width))
}

// execSub implements SUB dest, src: dest -= src with full flag update.
func (m *Machine) execSub(dest, src decode.Operand) {
	d := m.R.Read(dest)
	s := m.R.Read(src)
	result, cf, of, zf, sf := subWidth(d, s, dest.Width)
	m.applyArithFlags(dest.Width, result, cf, of, zf, sf)
	m.R.Write(dest, maskWidth(result, dest.Width))
}

// execSbb implements SBB dest, src: dest -= src + CF.
func (m *Machine) execSbb(dest, src decode.Operand) {
	d := m.R.Read(dest)
	s := m.R.Read(src)
	carry := uint32(0)
	if m.State.CF() {
		carry = 1
	}
	result, cf1, of1, _, _ := subWidth(d, s, dest.Width)
	result2, cf2, of2, zf, sf := subWidth(result, carry, dest.Width)
	m.applyArithFlags(dest.Width, result2, cf1 || cf2, of1 != of2, zf, sf)
	m.R.Write(dest, maskWidth(result2, dest.Width))
}

// execCmp implements CMP dest, src: identical to SUB's flag update, but
// the result is discarded (original_source cmp-template.h).
func (m *Machine) execCmp(dest, src decode.Operand) {
	d := m.R.Read(dest)
	s := m.R.Read(src)
	result, cf, of, zf, sf := subWidth(d, s, dest.Width)
	m.applyArithFlags(dest.Width, result, cf, of, zf, sf)
}

func (m *Machine) applyLogicFlags(width int, result uint32) {
	m.State.SetLogicalFlags(result, width)
}

// execAnd/execOr/execXor implement the bitwise family: CF and OF always
// clear, ZF/SF/PF from the result (logic-template.h).
func (m *Machine) execAnd(dest, src decode.Operand) {
	result := maskWidth(m.R.Read(dest)&m.R.Read(src), dest.Width)
	m.applyLogicFlags(dest.Width, result)
	m.R.Write(dest, result)
}

func (m *Machine) execOr(dest, src decode.Operand) {
	result := maskWidth(m.R.Read(dest)|m.R.Read(src), dest.Width)
	m.applyLogicFlags(dest.Width, result)
	m.R.Write(dest, result)
}

func (m *Machine) execXor(dest, src decode.Operand) {
	result := maskWidth(m.R.Read(dest)^m.R.Read(src), dest.Width)
	m.applyLogicFlags(dest.Width, result)
	m.R.Write(dest, result)
}

// execTest implements TEST dest, src: AND's flags without writing the
// result back (test-template.h).
func (m *Machine) execTest(dest, src decode.Operand) {
	result := maskWidth(m.R.Read(dest)&m.R.Read(src), dest.Width)
	m.applyLogicFlags(dest.Width, result)
}

// execInc/execDec implement INC/DEC: like ADD/SUB by 1, but CF is left
// untouched (the classic x86 exception the original preserves).
func (m *Machine) execInc(dest decode.Operand) {
	d := m.R.Read(dest)
	result, _, of, zf, sf := addWidth(d, 1, dest.Width)
	m.State.SetOF(of)
	m.State.SetZF(zf)
	m.State.SetSF(sf)
	m.State.SetPF(parityOf(result & 0xFF))
	m.R.Write(dest, maskWidth(result, dest.Width))
}

func (m *Machine) execDec(dest decode.Operand) {
	d := m.R.Read(dest)
	result, _, of, zf, sf := subWidth(d, 1, dest.Width)
	m.State.SetOF(of)
	m.State.SetZF(zf)
	m.State.SetSF(sf)
	m.State.SetPF(parityOf(result & 0xFF))
	m.R.Write(dest, maskWidth(result, dest.Width))
}

// execNeg implements NEG dest: dest = 0 - dest, CF set unless dest was 0.
func (m *Machine) execNeg(dest decode.Operand) {
	d := m.R.Read(dest)
	result, cf, of, zf, sf := subWidth(0, d, dest.Width)
	m.applyArithFlags(dest.Width, result, cf, of, zf, sf)
	m.R.Write(dest, maskWidth(result, dest.Width))
}

// execNot implements NOT dest: bitwise complement, flags unaffected.
func (m *Machine) execNot(dest decode.Operand) {
	result := maskWidth(^m.R.Read(dest), dest.Width)
	m.R.Write(dest, result)
}
