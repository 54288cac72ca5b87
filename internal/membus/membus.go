// Package membus is the single point through which the CPU core touches
// memory: every load/store from instruction fetch, operand decode, or
// explicit data movement goes through here, which forwards to the cache
// hierarchy. Grounded on original_source/nemu/src/memory/cache.c's
// swaddr_read/swaddr_write top-level entry points, structured like
// IntuitionEngine/memory_bus.go's MemoryBus interface but without its
// sync.RWMutex: execution is single-threaded (spec.md Concurrency Model),
// so a lock here would only cost cycles for no correctness benefit.
package membus

import "github.com/oisee/nemu32/internal/cache"

// Backing is the subset of cache.Hierarchy the bus depends on, kept as an
// interface so tests can substitute a bare DRAM-backed fake that skips
// cache timing effects entirely.
type Backing interface {
	Read(addr uint32, length int) uint32
	Write(addr uint32, length int, data uint32)
}

// Bus is the CPU-facing memory port.
type Bus struct {
	backing Backing
}

// New wraps a cache hierarchy (or any Backing) as a memory bus.
func New(backing Backing) *Bus {
	return &Bus{backing: backing}
}

// Read fetches length bytes (1, 2 or 4) at addr.
func (b *Bus) Read(addr uint32, length int) uint32 {
	return b.backing.Read(addr, length)
}

// Write stores the low length bytes of data at addr.
func (b *Bus) Write(addr uint32, length int, data uint32) {
	b.backing.Write(addr, length, data)
}

// ReadByte/ReadWord/ReadLong/WriteByte/WriteWord/WriteLong are convenience
// wrappers matching the width-specific accessors decode and iexec use most
// often, avoiding a literal length argument at every call site.
func (b *Bus) ReadByte(addr uint32) uint8   { return uint8(b.Read(addr, 1)) }
func (b *Bus) ReadWord(addr uint32) uint16  { return uint16(b.Read(addr, 2)) }
func (b *Bus) ReadLong(addr uint32) uint32  { return b.Read(addr, 4) }
func (b *Bus) WriteByte(addr uint32, v uint8)  { b.Write(addr, 1, uint32(v)) }
func (b *Bus) WriteWord(addr uint32, v uint16) { b.Write(addr, 2, uint32(v)) }
func (b *Bus) WriteLong(addr uint32, v uint32) { b.Write(addr, 4, v) }

var _ Backing = (*cache.Hierarchy)(nil)
