package cache

import (
	"testing"

	"github.com/oisee/nemu32/internal/dram"
)

func TestTransparentReadWrite(t *testing.T) {
	d := dram.New(1 << 20)
	h := New(d)

	h.Write(0x1000, 4, 0xCAFEBABE)
	if got := h.Read(0x1000, 4); got != 0xCAFEBABE {
		t.Errorf("Read after Write = 0x%x, want 0xcafebabe", got)
	}
}

func TestWriteIsVisibleFromDRAMAfterEviction(t *testing.T) {
	d := dram.New(16 << 20)
	h := New(d)

	h.Write(0x2000, 4, 0x11223344)

	// Read blocks that map to the same L2 set as 0x2000, each with a new
	// tag, until the random victim choice evicts the original line; the
	// write-back contract guarantees DRAM then holds the latest value.
	set, tag := &h.l2[l2Set(0x2000)], l2Tag(0x2000)
	for addr := uint32(0x2000 + l2SetCnt*blockSize); h.l2FindLine(set, tag) != nil; addr += l2SetCnt * blockSize {
		h.Read(addr, 1)
	}

	if got := d.Read(0x2000, 4); got != 0x11223344 {
		t.Errorf("DRAM after eviction = 0x%x, want 0x11223344 (write-back lost)", got)
	}
}

func TestByteGranularAccess(t *testing.T) {
	d := dram.New(4096)
	h := New(d)

	h.Write(0x10, 1, 0xFF)
	h.Write(0x11, 1, 0x00)
	if got := h.Read(0x10, 2); got != 0x00FF {
		t.Errorf("Read(0x10,2) = 0x%x, want 0x00ff", got)
	}
}

func TestResetReseedsRandomState(t *testing.T) {
	d := dram.New(1 << 20)
	h := New(d)
	first := h.nextRand()
	h.Reset()
	second := h.nextRand()
	if first != second {
		t.Errorf("LCG sequence not reproducible after Reset: %d != %d", first, second)
	}
}

func TestCacheAcrossBlockBoundary(t *testing.T) {
	d := dram.New(4096)
	h := New(d)

	// addr 60..67 straddles the 64-byte block boundary at 64.
	h.Write(60, 4, 0xAAAAAAAA)
	h.Write(64, 4, 0xBBBBBBBB)

	if got := h.Read(60, 4); got != 0xAAAAAAAA {
		t.Errorf("Read(60,4) = 0x%x, want 0xaaaaaaaa", got)
	}
	if got := h.Read(64, 4); got != 0xBBBBBBBB {
		t.Errorf("Read(64,4) = 0x%x, want 0xbbbbbbbb", got)
	}
}
