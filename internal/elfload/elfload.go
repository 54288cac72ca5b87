// Package elfload loads a 32-bit ELF executable's PT_LOAD segments into
// guest DRAM and resolves its entry point and symbol table, the Go
// counterpart to original_source/nemu/src/monitor/elf.c's load_elf_tables.
// Built on stdlib debug/elf: the retrieved pack has no complete,
// importable third-party ELF32 *reader* (the one hit, yalue/elf_reader,
// exists only as a go.mod line in other_examples/manifests, never as
// source), and spec.md treats the ELF reader as a pure external
// collaborator rather than a component whose identity the spec cares
// about, so there is no domain reason to prefer a different library here.
package elfload

import (
	"debug/elf"
	"fmt"
	"os"

	"github.com/oisee/nemu32/internal/dram"
)

// Symbol is one FUNC or OBJECT entry kept from the symbol table. The
// monitor holds the loaded Image but no command reads its symbols.
type Symbol struct {
	Name  string
	Value uint32
	Size  uint64
}

// Image is the result of loading an ELF32 executable: its entry point and
// the subset of its symbol table useful for the monitor.
type Image struct {
	Entry   uint32
	Symbols []Symbol
}

// Load opens path, verifies it is a 32-bit executable ELF, copies every
// PT_LOAD segment into mem at its virtual address (p_vaddr; guest linear
// and physical addresses are identical here), and returns the entry
// point plus symbol table.
func Load(path string, mem *dram.DRAM) (*Image, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("elfload: open %s: %w", path, err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("elfload: %s is not a 32-bit ELF", path)
	}
	if f.Type != elf.ET_EXEC {
		return nil, fmt.Errorf("elfload: %s is not an executable ELF", path)
	}

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		data := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(data, 0); err != nil {
			return nil, fmt.Errorf("elfload: reading segment at 0x%x: %w", prog.Vaddr, err)
		}
		mem.LoadAt(uint32(prog.Vaddr), data)
		// Zero-fill .bss-style padding between Filesz and Memsz: DRAM
		// already starts zeroed, so only the Filesz<Memsz gap needs an
		// explicit check that it stays in range.
		if prog.Memsz > prog.Filesz {
			pad := make([]byte, prog.Memsz-prog.Filesz)
			mem.LoadAt(uint32(prog.Vaddr+prog.Filesz), pad)
		}
	}

	syms, err := f.Symbols()
	if err != nil && err != elf.ErrNoSymbols {
		return nil, fmt.Errorf("elfload: reading symbol table: %w", err)
	}
	out := make([]Symbol, 0, len(syms))
	for _, s := range syms {
		if elf.ST_TYPE(s.Info) != elf.STT_FUNC && elf.ST_TYPE(s.Info) != elf.STT_OBJECT {
			continue
		}
		out = append(out, Symbol{Name: s.Name, Value: uint32(s.Value), Size: s.Size})
	}

	return &Image{Entry: uint32(f.Entry), Symbols: out}, nil
}

// Stat reports whether path exists (it does not open the file), used by the CLI to
// give a clean error before constructing the rest of the machine.
func Stat(path string) error {
	_, err := os.Stat(path)
	return err
}
