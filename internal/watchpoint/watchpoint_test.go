package watchpoint

import (
	"testing"

	"github.com/oisee/nemu32/internal/expr"
)

func varLookup(vals map[string]uint32) expr.RegisterLookup {
	return func(name string) (uint32, bool) {
		v, ok := vals[name]
		return v, ok
	}
}

func TestAddAndCheckDetectsChange(t *testing.T) {
	vals := map[string]uint32{"eax": 1}
	p := New()

	no, err := p.Add("$eax", varLookup(vals))
	if err != nil {
		t.Fatal(err)
	}

	hits := p.Check(varLookup(vals))
	if len(hits) != 0 {
		t.Errorf("expected no hits before the value changes, got %v", hits)
	}

	vals["eax"] = 2
	hits = p.Check(varLookup(vals))
	if len(hits) != 1 || hits[0].No != no || hits[0].NewVal != 2 {
		t.Errorf("hits = %+v, want one hit for watchpoint %d with NewVal=2", hits, no)
	}
}

func TestCheckSkipsFailingExpressionWithoutAbortingBatch(t *testing.T) {
	vals := map[string]uint32{"eax": 1, "ebx": 1}
	p := New()
	okNo, err := p.Add("$ebx", varLookup(vals))
	if err != nil {
		t.Fatal(err)
	}
	failNo, err := p.Add("$eax", varLookup(vals))
	if err != nil {
		t.Fatal(err)
	}

	vals["ebx"] = 2
	vals["eax"] = 2
	// Drop eax from the lookup entirely so that watchpoint's re-evaluation
	// fails; ebx's watchpoint must still report its hit.
	lookup := func(name string) (uint32, bool) {
		if name == "eax" {
			return 0, false
		}
		return varLookup(vals)(name)
	}

	hits := p.Check(lookup)
	if len(hits) != 1 || hits[0].No != okNo || hits[0].NewVal != 2 {
		t.Errorf("hits = %+v, want exactly one hit for watchpoint %d with NewVal=2", hits, okNo)
	}
	for _, h := range hits {
		if h.No == failNo {
			t.Errorf("watchpoint %d should have been skipped, not reported", failNo)
		}
	}
}

func TestFreeRemovesFromActive(t *testing.T) {
	vals := map[string]uint32{"eax": 1}
	p := New()
	no, _ := p.Add("$eax", varLookup(vals))

	if err := p.Free(no); err != nil {
		t.Fatal(err)
	}
	if len(p.List()) != 0 {
		t.Error("expected no active watchpoints after Free")
	}
	if err := p.Free(no); err == nil {
		t.Error("expected an error freeing an already-freed watchpoint")
	}
}

func TestPoolExhaustion(t *testing.T) {
	vals := map[string]uint32{"eax": 1}
	p := New()
	for i := 0; i < Capacity; i++ {
		if _, err := p.Add("$eax", varLookup(vals)); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
	}
	if _, err := p.Add("$eax", varLookup(vals)); err == nil {
		t.Error("expected an error once the pool is exhausted")
	}
}

func TestAddInvalidExpressionDoesNotConsumeSlot(t *testing.T) {
	p := New()
	if _, err := p.Add("$unknown", varLookup(nil)); err == nil {
		t.Error("expected an error for an expression referencing an unknown register")
	}
	if len(p.free) != Capacity {
		t.Errorf("failed Add should return its slot to the free list, got %d free", len(p.free))
	}
}
