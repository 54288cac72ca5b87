package elfload

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/oisee/nemu32/internal/dram"
)

// buildMinimalELF32 hand-assembles the smallest valid 32-bit ET_EXEC ELF
// with one PT_LOAD segment, since the standard library has no ELF writer
// to build fixtures with.
func buildMinimalELF32(t *testing.T, vaddr uint32, code []byte) []byte {
	t.Helper()
	const ehsize = 52
	const phentsize = 32
	phoff := uint32(ehsize)
	dataOff := phoff + phentsize

	var buf bytes.Buffer

	ident := [16]byte{0x7f, 'E', 'L', 'F', 1, 1, 1, 0}
	buf.Write(ident[:])
	binary.Write(&buf, binary.LittleEndian, uint16(2))      // e_type = ET_EXEC
	binary.Write(&buf, binary.LittleEndian, uint16(3))      // e_machine = EM_386
	binary.Write(&buf, binary.LittleEndian, uint32(1))      // e_version
	binary.Write(&buf, binary.LittleEndian, vaddr)          // e_entry
	binary.Write(&buf, binary.LittleEndian, phoff)          // e_phoff
	binary.Write(&buf, binary.LittleEndian, uint32(0))      // e_shoff
	binary.Write(&buf, binary.LittleEndian, uint32(0))      // e_flags
	binary.Write(&buf, binary.LittleEndian, uint16(ehsize)) // e_ehsize
	binary.Write(&buf, binary.LittleEndian, uint16(phentsize))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // e_phnum
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shentsize
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shnum
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shstrndx

	binary.Write(&buf, binary.LittleEndian, uint32(1))           // p_type = PT_LOAD
	binary.Write(&buf, binary.LittleEndian, dataOff)             // p_offset
	binary.Write(&buf, binary.LittleEndian, vaddr)               // p_vaddr
	binary.Write(&buf, binary.LittleEndian, vaddr)               // p_paddr
	binary.Write(&buf, binary.LittleEndian, uint32(len(code)))   // p_filesz
	binary.Write(&buf, binary.LittleEndian, uint32(len(code)+4)) // p_memsz (extra .bss padding)
	binary.Write(&buf, binary.LittleEndian, uint32(5))           // p_flags = R+X
	binary.Write(&buf, binary.LittleEndian, uint32(0x1000))      // p_align

	buf.Write(code)
	return buf.Bytes()
}

func TestLoadPlacesSegmentAndEntry(t *testing.T) {
	code := []byte{0xF4} // HLT
	img := buildMinimalELF32(t, 0x1000, code)

	path := filepath.Join(t.TempDir(), "image.elf")
	if err := os.WriteFile(path, img, 0o644); err != nil {
		t.Fatal(err)
	}

	mem := dram.New(1 << 20)
	result, err := Load(path, mem)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if result.Entry != 0x1000 {
		t.Errorf("Entry = 0x%x, want 0x1000", result.Entry)
	}
	if got := mem.ReadByte(0x1000); got != 0xF4 {
		t.Errorf("byte at entry = 0x%x, want 0xf4", got)
	}
}

func TestLoadRejectsNonELF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notelf")
	if err := os.WriteFile(path, []byte("not an elf file"), 0o644); err != nil {
		t.Fatal(err)
	}
	mem := dram.New(4096)
	if _, err := Load(path, mem); err == nil {
		t.Error("expected an error loading a non-ELF file")
	}
}

func TestStatMissingFile(t *testing.T) {
	if err := Stat(filepath.Join(t.TempDir(), "missing.elf")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
