// Package dram models the flat, byte-addressable backing store behind the
// cache hierarchy. Grounded on original_source/nemu/src/memory/cache.c's
// dram_read/dram_write contract and on IntuitionEngine/memory_bus.go's flat
// []byte + encoding/binary idiom for little-endian multi-byte access.
package dram

import (
	"encoding/binary"
	"fmt"
)

// DRAM is a fixed-size flat byte array. Out-of-range access is fatal: the
// core subset has no paging to fall back on.
type DRAM struct {
	mem []byte
}

// New allocates a DRAM of the given size in bytes.
func New(size uint32) *DRAM {
	return &DRAM{mem: make([]byte, size)}
}

// Size returns the DRAM capacity in bytes.
func (d *DRAM) Size() uint32 { return uint32(len(d.mem)) }

func (d *DRAM) checkRange(addr uint32, length int) {
	if uint64(addr)+uint64(length) > uint64(len(d.mem)) {
		panic(fmt.Sprintf("dram: out-of-range access at 0x%08x, len %d (size 0x%08x)", addr, length, len(d.mem)))
	}
}

// Read returns len bytes at addr as a little-endian value. len must be 1, 2
// or 4.
func (d *DRAM) Read(addr uint32, length int) uint32 {
	d.checkRange(addr, length)
	switch length {
	case 1:
		return uint32(d.mem[addr])
	case 2:
		return uint32(binary.LittleEndian.Uint16(d.mem[addr : addr+2]))
	case 4:
		return binary.LittleEndian.Uint32(d.mem[addr : addr+4])
	default:
		panic(fmt.Sprintf("dram: unsupported access length %d", length))
	}
}

// Write stores the low len bytes of val at addr, little-endian. len must be
// 1, 2 or 4.
func (d *DRAM) Write(addr uint32, length int, val uint32) {
	d.checkRange(addr, length)
	switch length {
	case 1:
		d.mem[addr] = byte(val)
	case 2:
		binary.LittleEndian.PutUint16(d.mem[addr:addr+2], uint16(val))
	case 4:
		binary.LittleEndian.PutUint32(d.mem[addr:addr+4], val)
	default:
		panic(fmt.Sprintf("dram: unsupported access length %d", length))
	}
}

// ReadByte/WriteByte access the single byte at addr. The cache hierarchy
// does not use them: its block fills and writebacks go through Read/Write
// with length 4.
func (d *DRAM) ReadByte(addr uint32) byte {
	d.checkRange(addr, 1)
	return d.mem[addr]
}

func (d *DRAM) WriteByte(addr uint32, v byte) {
	d.checkRange(addr, 1)
	d.mem[addr] = v
}

// LoadAt copies data into DRAM starting at addr, for ELF segment loading.
func (d *DRAM) LoadAt(addr uint32, data []byte) {
	d.checkRange(addr, len(data))
	copy(d.mem[addr:], data)
}
