package cpu

// EFLAGS bit positions carried by the core subset.
const (
	FlagCF uint32 = 1 << 0
	FlagPF uint32 = 1 << 2
	FlagAF uint32 = 1 << 4
	FlagZF uint32 = 1 << 6
	FlagSF uint32 = 1 << 7
	FlagTF uint32 = 1 << 8
	FlagIF uint32 = 1 << 9
	FlagDF uint32 = 1 << 10
	FlagOF uint32 = 1 << 11
	FlagIOPL uint32 = 3 << 12
	FlagNT   uint32 = 1 << 14
)

// ParityTable[b] is true when b has even parity, used to compute PF from
// the low byte of an arithmetic/logic result. Precomputed once, in the
// style of the teacher's Sz53/parity tables.
var ParityTable [256]bool

func init() {
	for i := 0; i < 256; i++ {
		p := 0
		for b := uint(0); b < 8; b++ {
			p ^= (i >> b) & 1
		}
		ParityTable[i] = p == 0
	}
}

func (s *State) setFlag(mask uint32, set bool) {
	if set {
		s.EFLAGS |= mask
	} else {
		s.EFLAGS &^= mask
	}
}

func (s *State) flag(mask uint32) bool { return s.EFLAGS&mask != 0 }

func (s *State) CF() bool   { return s.flag(FlagCF) }
func (s *State) PF() bool   { return s.flag(FlagPF) }
func (s *State) AF() bool   { return s.flag(FlagAF) }
func (s *State) ZF() bool   { return s.flag(FlagZF) }
func (s *State) SF() bool   { return s.flag(FlagSF) }
func (s *State) DF() bool   { return s.flag(FlagDF) }
func (s *State) OF() bool   { return s.flag(FlagOF) }

func (s *State) SetCF(v bool) { s.setFlag(FlagCF, v) }
func (s *State) SetPF(v bool) { s.setFlag(FlagPF, v) }
func (s *State) SetAF(v bool) { s.setFlag(FlagAF, v) }
func (s *State) SetZF(v bool) { s.setFlag(FlagZF, v) }
func (s *State) SetSF(v bool) { s.setFlag(FlagSF, v) }
func (s *State) SetDF(v bool) { s.setFlag(FlagDF, v) }
func (s *State) SetOF(v bool) { s.setFlag(FlagOF, v) }

// SetLogicalFlags applies the ZF/SF/PF/CF=0/OF=0 update shared by
// AND/OR/XOR/TEST over a result of the given byte width.
func (s *State) SetLogicalFlags(result uint32, width int) {
	s.SetZF(result == 0)
	s.SetSF(signBit(result, width))
	s.SetCF(false)
	s.SetOF(false)
	s.SetPF(ParityTable[uint8(result)])
}

func signBit(v uint32, width int) bool {
	bit := uint32(1) << (uint(width)*8 - 1)
	return v&bit != 0
}
