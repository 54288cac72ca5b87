package iexec

import "github.com/oisee/nemu32/internal/decode"

// execMov implements MOV dest, src: a plain copy, no flags touched.
func (m *Machine) execMov(dest, src decode.Operand) {
	m.R.Write(dest, m.R.Read(src))
}

// execLea implements LEA dest, mem: dest gets mem's *address*, not its
// contents — the caller passes the already-decoded memory operand's Addr
// directly rather than going through R.Read.
func (m *Machine) execLea(dest decode.Operand, addr uint32) {
	m.R.Write(dest, addr)
}

// execMovzx implements MOVZX dest, src: zero-extends src (narrower) into
// dest (wider); since Operand values are always carried as uint32
// internally, this is just a write of src's value at dest's width.
func (m *Machine) execMovzx(dest, src decode.Operand) {
	m.R.Write(dest, m.R.Read(src))
}

// execMovsx implements MOVSX dest, src: sign-extends src into dest.
func (m *Machine) execMovsx(dest, src decode.Operand) {
	v := m.R.Read(src)
	var ext uint32
	switch src.Width {
	case 1:
		ext = uint32(int32(int8(v)))
	case 2:
		ext = uint32(int32(int16(v)))
	default:
		ext = v
	}
	m.R.Write(dest, ext)
}
