// Package cpu holds the register file and EFLAGS for the emulated IA-32
// core: 8 general-purpose registers with their 16/8-bit views, EIP, and the
// flag bits arithmetic/logic/compare instructions update.
package cpu

// Standard IA-32 general-purpose register indices.
const (
	EAX = iota
	ECX
	EDX
	EBX
	ESP
	EBP
	ESI
	EDI
)

// RegsL, RegsW, RegsB name the 32/16/8-bit register views by index, used by
// disassembly and the expression evaluator. RegsB follows the AH/CH/DH/BH
// convention: index i<4 is a low byte, 4<=i<8 is the high byte of GPR i-4.
var (
	RegsL = [8]string{"eax", "ecx", "edx", "ebx", "esp", "ebp", "esi", "edi"}
	RegsW = [8]string{"ax", "cx", "dx", "bx", "sp", "bp", "si", "di"}
	RegsB = [8]string{"al", "cl", "dl", "bl", "ah", "ch", "dh", "bh"}
)

// State is the complete CPU register state: lifetime spans one emulator run.
// Context objects like this are constructed fresh per test instead of living
// as a process-wide singleton (spec.md Design Notes).
type State struct {
	GPR    [8]uint32
	EIP    uint32
	EFLAGS uint32
}

// New returns a zeroed CPU state with EIP at the given entry point.
func New(entryEIP uint32) *State {
	return &State{EIP: entryEIP}
}

// RegL returns the full 32-bit value of GPR i.
func (s *State) RegL(i int) uint32 { return s.GPR[i] }

// SetRegL writes the full 32-bit value of GPR i.
func (s *State) SetRegL(i int, v uint32) { s.GPR[i] = v }

// RegW returns the low 16 bits of GPR i.
func (s *State) RegW(i int) uint16 { return uint16(s.GPR[i]) }

// SetRegW writes the low 16 bits of GPR i, leaving the high 16 bits intact.
func (s *State) SetRegW(i int, v uint16) {
	s.GPR[i] = (s.GPR[i] &^ 0xFFFF) | uint32(v)
}

// RegB returns the 8-bit view of GPR i: low byte for i<4, high byte of GPR
// i-4 (AH/CH/DH/BH) for 4<=i<8.
func (s *State) RegB(i int) uint8 {
	if i < 4 {
		return uint8(s.GPR[i])
	}
	return uint8(s.GPR[i-4] >> 8)
}

// SetRegB writes the 8-bit view of GPR i without disturbing the other bytes.
func (s *State) SetRegB(i int, v uint8) {
	if i < 4 {
		s.GPR[i] = (s.GPR[i] &^ 0xFF) | uint32(v)
		return
	}
	s.GPR[i-4] = (s.GPR[i-4] &^ 0xFF00) | (uint32(v) << 8)
}
