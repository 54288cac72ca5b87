// Package cache implements the two-level cache hierarchy sitting in front
// of DRAM: an 8-way 64KiB write-through L1 with no write-allocate, backed by
// a 16-way 4MiB write-back L2, both with 64-byte blocks and random
// replacement. This is a structural port of
// original_source/nemu/src/memory/cache.c.
package cache

import "github.com/oisee/nemu32/internal/dram"

const blockSize = 64

const (
	l1Ways     = 8
	l1Size     = 64 * 1024
	l1LineCnt  = l1Size / blockSize
	l1SetCnt   = l1LineCnt / l1Ways
	l1BlockOff = blockSize - 1
)

const (
	l2Ways     = 16
	l2Size     = 4 * 1024 * 1024
	l2LineCnt  = l2Size / blockSize
	l2SetCnt   = l2LineCnt / l2Ways
	l2BlockOff = blockSize - 1
)

type l1Line struct {
	data  [blockSize]byte
	tag   uint32
	valid bool
}

type l2Line struct {
	data  [blockSize]byte
	tag   uint32
	valid bool
	dirty bool
}

// Hierarchy is the L1+L2 cache fronting a DRAM backing store. It presents
// the same byte-granular read/write contract as DRAM; multi-byte accesses
// that straddle a block boundary are handled by per-byte iteration, so no
// natural-alignment assumption is required of callers.
type Hierarchy struct {
	l1        [l1SetCnt][l1Ways]l1Line
	l2        [l2SetCnt][l2Ways]l2Line
	randState uint32
	dram      *dram.DRAM
}

// New creates a cache hierarchy fronting the given DRAM, reset to its
// deterministic initial state.
func New(d *dram.DRAM) *Hierarchy {
	h := &Hierarchy{dram: d}
	h.Reset()
	return h
}

// Reset invalidates every line in both levels and reseeds the shared LCG to
// 1, so runs are reproducible (init_cache in the original).
func (h *Hierarchy) Reset() {
	for s := range h.l1 {
		for w := range h.l1[s] {
			h.l1[s][w].valid = false
		}
	}
	for s := range h.l2 {
		for w := range h.l2[s] {
			h.l2[s][w].valid = false
			h.l2[s][w].dirty = false
		}
	}
	h.randState = 1
}

func (h *Hierarchy) nextRand() uint32 {
	h.randState = h.randState*1103515245 + 12345
	return h.randState
}

func ctz(v uint32) uint {
	n := uint(0)
	for v&1 == 0 {
		v >>= 1
		n++
	}
	return n
}

var (
	l1ShiftTag  = ctz(blockSize) + ctz(l1SetCnt)
	l2ShiftTag  = ctz(blockSize) + ctz(l2SetCnt)
	l1ShiftSet  = ctz(blockSize)
	l2ShiftSet  = ctz(blockSize)
)

func l1Tag(addr uint32) uint32  { return addr >> l1ShiftTag }
func l1Set(addr uint32) uint32  { return (addr >> l1ShiftSet) & (l1SetCnt - 1) }
func l1Off(addr uint32) uint32  { return addr & l1BlockOff }
func l2Tag(addr uint32) uint32  { return addr >> l2ShiftTag }
func l2Set(addr uint32) uint32  { return (addr >> l2ShiftSet) & (l2SetCnt - 1) }
func l2Off(addr uint32) uint32  { return addr & l2BlockOff }

// l2SelectLine picks a victim way for tag within set: first same-tag valid
// line (can't actually occur on the miss path, kept as a harmless
// fallback), else first invalid line, else a uniformly random way via the
// shared LCG.
func (h *Hierarchy) l2SelectLine(set *[l2Ways]l2Line, tag uint32) *l2Line {
	var invalid *l2Line
	for i := range set {
		line := &set[i]
		if line.valid && line.tag == tag {
			return line
		}
		if !line.valid && invalid == nil {
			invalid = line
		}
	}
	if invalid != nil {
		return invalid
	}
	victim := h.nextRand() % l2Ways
	return &set[victim]
}

func (h *Hierarchy) l2FindLine(set *[l2Ways]l2Line, tag uint32) *l2Line {
	for i := range set {
		if set[i].valid && set[i].tag == tag {
			return &set[i]
		}
	}
	return nil
}

func (h *Hierarchy) l2Writeback(line *l2Line, blockAddr uint32) {
	for i := 0; i < blockSize; i += 4 {
		var v uint32
		for b := 0; b < 4; b++ {
			v |= uint32(line.data[i+b]) << (8 * b)
		}
		h.dram.Write(blockAddr+uint32(i), 4, v)
	}
}

func (h *Hierarchy) l2Fill(line *l2Line, blockAddr uint32, tag uint32) {
	for i := 0; i < blockSize; i += 4 {
		v := h.dram.Read(blockAddr+uint32(i), 4)
		for b := 0; b < 4; b++ {
			line.data[i+b] = byte(v >> (8 * b))
		}
	}
	line.tag = tag
	line.valid = true
	line.dirty = false
}

func (h *Hierarchy) l2ReadByte(addr uint32) byte {
	setIdx := l2Set(addr)
	tag := l2Tag(addr)
	off := l2Off(addr)

	set := &h.l2[setIdx]
	line := h.l2FindLine(set, tag)
	if line == nil {
		blockAddr := addr &^ uint32(l2BlockOff)
		line = h.l2SelectLine(set, tag)
		if line.valid && line.dirty {
			victimAddr := (line.tag << l2ShiftTag) | (setIdx << l2ShiftSet)
			h.l2Writeback(line, victimAddr)
		}
		h.l2Fill(line, blockAddr, tag)
	}
	return line.data[off]
}

func (h *Hierarchy) l2WriteByte(addr uint32, data byte) {
	setIdx := l2Set(addr)
	tag := l2Tag(addr)
	off := l2Off(addr)

	set := &h.l2[setIdx]
	line := h.l2FindLine(set, tag)
	if line == nil {
		blockAddr := addr &^ uint32(l2BlockOff)
		line = h.l2SelectLine(set, tag)
		if line.valid && line.dirty {
			victimAddr := (line.tag << l2ShiftTag) | (setIdx << l2ShiftSet)
			h.l2Writeback(line, victimAddr)
		}
		h.l2Fill(line, blockAddr, tag)
	}
	line.data[off] = data
	line.dirty = true
}

func (h *Hierarchy) l1SelectLine(set *[l1Ways]l1Line, tag uint32) *l1Line {
	var invalid *l1Line
	for i := range set {
		line := &set[i]
		if line.valid && line.tag == tag {
			return line
		}
		if !line.valid && invalid == nil {
			invalid = line
		}
	}
	if invalid != nil {
		return invalid
	}
	victim := h.nextRand() % l1Ways
	return &set[victim]
}

func (h *Hierarchy) l1FindLine(set *[l1Ways]l1Line, tag uint32) *l1Line {
	for i := range set {
		if set[i].valid && set[i].tag == tag {
			return &set[i]
		}
	}
	return nil
}

func (h *Hierarchy) l1Fill(line *l1Line, blockAddr uint32, tag uint32) {
	for i := 0; i < blockSize; i++ {
		line.data[i] = h.l2ReadByte(blockAddr + uint32(i))
	}
	line.tag = tag
	line.valid = true
}

func (h *Hierarchy) l1ReadByte(addr uint32) byte {
	setIdx := l1Set(addr)
	tag := l1Tag(addr)
	off := l1Off(addr)

	set := &h.l1[setIdx]
	line := h.l1FindLine(set, tag)
	if line == nil {
		blockAddr := addr &^ uint32(l1BlockOff)
		line = h.l1SelectLine(set, tag)
		h.l1Fill(line, blockAddr, tag)
	}
	return line.data[off]
}

// l1UpdateByte updates an existing L1 line in place; it never allocates on
// a miss (no-write-allocate), so a miss here is silent — the write below
// still reaches L2.
func (h *Hierarchy) l1UpdateByte(addr uint32, data byte) {
	setIdx := l1Set(addr)
	tag := l1Tag(addr)
	off := l1Off(addr)

	set := &h.l1[setIdx]
	line := h.l1FindLine(set, tag)
	if line != nil {
		line.data[off] = data
	}
}

// Read returns len bytes starting at addr via the cache hierarchy. len must
// be 1, 2 or 4.
func (h *Hierarchy) Read(addr uint32, length int) uint32 {
	var data uint32
	for i := 0; i < length; i++ {
		b := h.l1ReadByte(addr + uint32(i))
		data |= uint32(b) << (8 * i)
	}
	return data
}

// Write stores the low len bytes of data at addr: L1 is updated in place
// only if present (write-through, no-write-allocate), and every byte is
// always forwarded to L2 (allocate-on-write, write-back).
func (h *Hierarchy) Write(addr uint32, length int, data uint32) {
	for i := 0; i < length; i++ {
		b := byte(data >> (8 * i))
		h.l1UpdateByte(addr+uint32(i), b)
		h.l2WriteByte(addr+uint32(i), b)
	}
}
