package congestion

import (
	"testing"
	"unsafe"
)

// TestStateSizeBudget pins State to a small, cache-friendly footprint
// (spec.md §7 "O(1) work, no heap allocation on the hot path" implies
// a bounded per-connection block; SPEC_FULL.md §4 supplemented
// feature). A failure here means a field was added without
// considering the per-connection memory cost across many concurrent
// connections.
func TestStateSizeBudget(t *testing.T) {
	const budget = 160
	if got := unsafe.Sizeof(State{}); got > budget {
		t.Fatalf("State grew to %d bytes, budget is %d; shrink a field or raise the budget deliberately", got, budget)
	}
}
