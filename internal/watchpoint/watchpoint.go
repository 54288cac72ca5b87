// Package watchpoint implements the monitor's fixed-capacity watchpoint
// pool: expressions re-evaluated after every retired instruction, with a
// hit reported when an expression's value changes. Structural port of
// original_source/nemu/src/monitor/debug/watchpoint.c; the intrusive
// free/active linked lists (NO/next fields, head/free_ globals) are
// replaced by index slices into a fixed-capacity backing array, per the
// explicit index-slice redesign for this subset.
package watchpoint

import (
	"fmt"

	"github.com/oisee/nemu32/internal/expr"
)

// Capacity matches the original's wp_pool[32].
const Capacity = 32

// Watch is one registered watchpoint: its source expression and the last
// value it evaluated to.
type Watch struct {
	No       int
	Expr     string
	LastVal  uint32
}

// Pool manages the fixed-size watchpoint set. Active holds indices into
// slots in registration order (new_wp appends, free_wp removes); Free
// holds indices not currently in use. Active starts empty and free starts
// with all Capacity indices; slices instead of walking a linked list is
// the only structural change from the original.
type Pool struct {
	slots  [Capacity]Watch
	active []int
	free   []int
}

// New returns an empty pool with every slot free, numbered 0..Capacity-1
// exactly as the original's monotonically increasing wp->NO.
func New() *Pool {
	p := &Pool{}
	for i := 0; i < Capacity; i++ {
		p.free = append(p.free, i)
	}
	return p
}

// Add registers a new watchpoint for expr e, evaluated once immediately
// to seed LastVal, and returns its slot number. Fails once the pool is
// exhausted (new_wp's "no more free watchpoints" panic path, surfaced here
// as an error instead of a fatal exit).
func (p *Pool) Add(e string, lookup expr.RegisterLookup) (int, error) {
	if len(p.free) == 0 {
		return 0, fmt.Errorf("watchpoint: pool exhausted (max %d)", Capacity)
	}
	idx := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]

	v, err := expr.Eval(e, lookup)
	if err != nil {
		p.free = append(p.free, idx)
		return 0, fmt.Errorf("watchpoint: invalid expression %q: %w", e, err)
	}

	p.slots[idx] = Watch{No: idx, Expr: e, LastVal: v}
	p.active = append(p.active, idx)
	return idx, nil
}

// Free releases watchpoint number no back to the pool (free_wp's
// unlink-from-active + push-to-free, implemented as a slice removal).
func (p *Pool) Free(no int) error {
	for i, idx := range p.active {
		if idx == no {
			p.active = append(p.active[:i], p.active[i+1:]...)
			p.free = append(p.free, idx)
			return nil
		}
	}
	return fmt.Errorf("watchpoint: no watchpoint numbered %d", no)
}

// List returns the active watchpoints in registration order, for the
// monitor's "w" command (print_wp).
func (p *Pool) List() []Watch {
	out := make([]Watch, 0, len(p.active))
	for _, idx := range p.active {
		out = append(out, p.slots[idx])
	}
	return out
}

// Hit names one watchpoint whose value changed since the last check.
type Hit struct {
	No      int
	Expr    string
	OldVal  uint32
	NewVal  uint32
}

// Check re-evaluates every active watchpoint's expression and reports
// which ones changed value, updating LastVal as it goes. Called once per
// retired instruction (check_watchpoints), so a multi-watchpoint hit on
// the same step reports every one that changed rather than just the
// first. A watchpoint whose expression fails to re-evaluate (e.g. it
// referenced a register that no longer resolves) is skipped silently
// rather than aborting the rest of the batch.
func (p *Pool) Check(lookup expr.RegisterLookup) []Hit {
	var hits []Hit
	for _, idx := range p.active {
		w := &p.slots[idx]
		v, err := expr.Eval(w.Expr, lookup)
		if err != nil {
			continue
		}
		if v != w.LastVal {
			hits = append(hits, Hit{No: w.No, Expr: w.Expr, OldVal: w.LastVal, NewVal: v})
			w.LastVal = v
		}
	}
	return hits
}
