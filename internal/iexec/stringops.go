// String-move family: LODS/STOS/MOVS/SCAS/CMPS. Each advances its index
// register(s) by +width or -width depending on DF, grounded on
// original_source/nemu/src/cpu/exec/string/lods-template.h (the one
// string template kept in the pack) and generalized identically to the
// sibling forms, which share the same index-stepping rule.
package iexec

import "github.com/oisee/nemu32/internal/cpu"

func (m *Machine) stepIndex(reg int, width int) {
	step := uint32(width)
	if m.State.DF() {
		v := m.State.RegL(reg) - step
		m.State.SetRegL(reg, v)
		return
	}
	m.State.SetRegL(reg, m.State.RegL(reg)+step)
}

// execLods implements LODS: EAX (masked to width) = [ESI], ESI += width.
func (m *Machine) execLods(width int) {
	v := m.Bus.Read(m.State.RegL(cpu.ESI), width)
	switch width {
	case 1:
		m.State.SetRegB(cpu.EAX, uint8(v))
	case 2:
		m.State.SetRegW(cpu.EAX, uint16(v))
	default:
		m.State.SetRegL(cpu.EAX, v)
	}
	m.stepIndex(cpu.ESI, width)
}

// execStos implements STOS: [EDI] = EAX (masked to width), EDI += width.
func (m *Machine) execStos(width int) {
	var v uint32
	switch width {
	case 1:
		v = uint32(m.State.RegB(cpu.EAX))
	case 2:
		v = uint32(m.State.RegW(cpu.EAX))
	default:
		v = m.State.RegL(cpu.EAX)
	}
	m.Bus.Write(m.State.RegL(cpu.EDI), width, v)
	m.stepIndex(cpu.EDI, width)
}

// execMovs implements MOVS: [EDI] = [ESI], then both index registers step.
func (m *Machine) execMovs(width int) {
	v := m.Bus.Read(m.State.RegL(cpu.ESI), width)
	m.Bus.Write(m.State.RegL(cpu.EDI), width, v)
	m.stepIndex(cpu.ESI, width)
	m.stepIndex(cpu.EDI, width)
}

// execScas implements SCAS: compares EAX against [EDI] (CMP's flag update),
// then EDI steps.
func (m *Machine) execScas(width int) {
	var a uint32
	switch width {
	case 1:
		a = uint32(m.State.RegB(cpu.EAX))
	case 2:
		a = uint32(m.State.RegW(cpu.EAX))
	default:
		a = m.State.RegL(cpu.EAX)
	}
	mem := m.Bus.Read(m.State.RegL(cpu.EDI), width)
	result, cf, of, zf, sf := subWidth(a, mem, width)
	m.applyArithFlags(width, result, cf, of, zf, sf)
	m.stepIndex(cpu.EDI, width)
}

// execCmps implements CMPS: compares [ESI] against [EDI], then both index
// registers step.
func (m *Machine) execCmps(width int) {
	src := m.Bus.Read(m.State.RegL(cpu.ESI), width)
	dst := m.Bus.Read(m.State.RegL(cpu.EDI), width)
	result, cf, of, zf, sf := subWidth(src, dst, width)
	m.applyArithFlags(width, result, cf, of, zf, sf)
	m.stepIndex(cpu.ESI, width)
	m.stepIndex(cpu.EDI, width)
}
