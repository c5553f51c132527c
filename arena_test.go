// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memalloc

import (
	"math"
	"sort"
	"testing"

	"github.com/cznic/sortutil"
)

func newTestArena(t *testing.T) *Arena {
	t.Helper()
	a := NewArena(NewProcessHeap(), Config{})
	if !a.Initialize() {
		t.Fatal("Initialize failed")
	}
	return a
}

// Scenario 1 (spec.md §8): two small allocations, freed, coalesce back
// into one block.
func TestTwoMiniAllocFreeCoalesce(t *testing.T) {
	a := newTestArena(t)

	p1 := a.Allocate(1)
	p2 := a.Allocate(1)
	if p1 == PtrNil || p2 == PtrNil {
		t.Fatal("allocate failed")
	}
	if p1 == p2 {
		t.Fatal("p1 == p2")
	}
	if int64(p1)%align != 0 || int64(p2)%align != 0 {
		t.Fatalf("unaligned pointer: %d %d", p1, p2)
	}

	diff := int64(p2) - int64(p1)
	if diff != minBlockSize && diff != -minBlockSize {
		t.Fatalf("unexpected adjacency: p1=%d p2=%d", p1, p2)
	}

	a.Free(p1)
	a.Free(p2)

	if !a.CheckHeap(0) {
		t.Fatalf("CheckHeap failed after free: %v", a.LastCheckError())
	}
}

// Scenario 2 (spec.md §8): a chunk-sized allocation forces exactly one
// extend-heap; freeing and re-allocating the same size reuses the slot.
func TestChunkSizedAllocReuse(t *testing.T) {
	a := newTestArena(t)

	p := a.Allocate(chunkSize)
	if p == PtrNil {
		t.Fatal("allocate failed")
	}

	a.Free(p)
	if !a.CheckHeap(0) {
		t.Fatalf("CheckHeap failed: %v", a.LastCheckError())
	}

	p2 := a.Allocate(chunkSize)
	if p2 != p {
		t.Fatalf("expected reuse of freed slot: p=%d p2=%d", p, p2)
	}
}

// Scenario 3 (spec.md §8): three same-class allocations; freeing the
// outer two leaves them both in class 1 ([32,64)); freeing the middle one
// coalesces all three and empties class 1. A fourth allocation keeps c
// from coalescing with the free remainder of the heap to its right.
func TestThreeBlocksCoalesceAndClassMembership(t *testing.T) {
	a := newTestArena(t)

	pa := a.Allocate(24)
	pb := a.Allocate(24)
	pc := a.Allocate(24)
	pd := a.Allocate(24)
	if pa == PtrNil || pb == PtrNil || pc == PtrNil || pd == PtrNil {
		t.Fatal("allocate failed")
	}

	a.Free(pa)
	a.Free(pc)

	if !a.CheckHeap(0) {
		t.Fatalf("CheckHeap failed: %v", a.LastCheckError())
	}

	const wantClass = 1 // [32,64)
	seg := a.ListSeg(wantClass)
	if len(seg) != 2 {
		t.Fatalf("expected 2 free blocks in class %d, got %d", wantClass, len(seg))
	}

	a.Free(pb)

	if !a.CheckHeap(0) {
		t.Fatalf("CheckHeap failed after freeing middle block: %v", a.LastCheckError())
	}

	if seg := a.ListSeg(wantClass); len(seg) != 0 {
		t.Fatalf("expected class %d empty after full coalesce, got %v", wantClass, seg)
	}
}

// Scenario 4 (spec.md §8): ZeroedAllocate overflow detection.
func TestZeroedAllocateOverflow(t *testing.T) {
	a := newTestArena(t)

	if p := a.ZeroedAllocate(2, math.MaxInt64); p != PtrNil {
		t.Fatalf("expected overflow to yield PtrNil, got %d", p)
	}
}

// Scenario 5 (spec.md §8): reallocate preserves content and frees the old
// slot for reuse.
func TestReallocatePreservesContent(t *testing.T) {
	a := newTestArena(t)

	p := a.Allocate(100)
	if p == PtrNil {
		t.Fatal("allocate failed")
	}

	b := a.heap.Bytes()
	pattern := make([]byte, 100)
	for i := range pattern {
		pattern[i] = byte(i)
	}
	copy(b[int64(p):int64(p)+100], pattern)

	q := a.Reallocate(p, 200)
	if q == PtrNil {
		t.Fatal("reallocate failed")
	}

	b = a.heap.Bytes()
	if got := b[int64(q) : int64(q)+100]; !bytesEqual(got, pattern) {
		t.Fatalf("reallocate did not preserve content")
	}

	p2 := a.Allocate(100)
	if p2 == PtrNil {
		t.Fatal("allocate after reallocate-freed slot failed")
	}
}

// Scenario 6 (spec.md §8): freeing the middle of three mini blocks makes
// it the mini-list head; the next mini allocation reuses it (LIFO).
func TestMiniListLIFO(t *testing.T) {
	a := newTestArena(t)

	// An 8-byte request adjusts to a minBlockSize (mini) block.
	p1 := a.Allocate(8)
	p2 := a.Allocate(8)
	p3 := a.Allocate(8)
	if p1 == PtrNil || p2 == PtrNil || p3 == PtrNil {
		t.Fatal("allocate failed")
	}

	a.Free(p2)

	if a.miniHead != blockOf(p2) {
		t.Fatalf("expected mini-list head to be p2's block, got offset %d want %d", a.miniHead, blockOf(p2))
	}

	p4 := a.Allocate(8)
	if p4 != p2 {
		t.Fatalf("expected LIFO reuse of p2, got %d want %d", p4, p2)
	}

	_ = p1
	_ = p3
}

func TestAllocateZeroIsNil(t *testing.T) {
	a := newTestArena(t)
	if p := a.Allocate(0); p != PtrNil {
		t.Fatalf("Allocate(0) = %d, want PtrNil", p)
	}
}

func TestFreeNilIsNoop(t *testing.T) {
	a := newTestArena(t)
	a.Free(PtrNil) // must not panic
	if !a.CheckHeap(0) {
		t.Fatalf("CheckHeap failed: %v", a.LastCheckError())
	}
}

func TestReallocateNilIsAllocate(t *testing.T) {
	a := newTestArena(t)
	p := a.Reallocate(PtrNil, 40)
	if p == PtrNil {
		t.Fatal("Reallocate(nil, 40) failed")
	}
}

func TestReallocateZeroIsFree(t *testing.T) {
	a := newTestArena(t)
	p := a.Allocate(40)
	if p == PtrNil {
		t.Fatal("allocate failed")
	}
	if got := a.Reallocate(p, 0); got != PtrNil {
		t.Fatalf("Reallocate(p, 0) = %d, want PtrNil", got)
	}
	if !a.CheckHeap(0) {
		t.Fatalf("CheckHeap failed: %v", a.LastCheckError())
	}
}

// TestOutOfMemory exercises the sbrk-refusal path via FaultInjectingHeap.
func TestOutOfMemory(t *testing.T) {
	inner := NewProcessHeap()
	heap := NewFaultInjectingHeap(inner, 8192)
	a := NewArena(heap, Config{})
	if !a.Initialize() {
		t.Fatal("Initialize failed")
	}

	var last Ptr
	for i := 0; i < 1000; i++ {
		p := a.Allocate(64)
		if p == PtrNil {
			break
		}
		last = p
	}

	if p := a.Allocate(1 << 20); p != PtrNil {
		t.Fatalf("expected huge allocation past ceiling to fail, got %d", p)
	}
	_ = last
}

func TestManyRandomOpsCheckHeap(t *testing.T) {
	a := newTestArena(t)

	var live []Ptr
	sizes := []int64{1, 15, 16, 17, 31, 32, 100, 1000, 5000, 9000}

	for round := 0; round < 200; round++ {
		sz := sizes[round%len(sizes)]
		if round%3 != 0 {
			if p := a.Allocate(sz); p != PtrNil {
				live = append(live, p)
			}
		} else if len(live) > 0 {
			idx := round % len(live)
			a.Free(live[idx])
			live = append(live[:idx], live[idx+1:]...)
		}

		if !a.CheckHeap(round) {
			t.Fatalf("CheckHeap failed at round %d: %v", round, a.LastCheckError())
		}
	}

	for _, p := range live {
		a.Free(p)
	}
	if !a.CheckHeap(0) {
		t.Fatalf("CheckHeap failed after draining: %v", a.LastCheckError())
	}
}

// TestNoOverlappingLiveAllocations sorts a batch of live pointers by
// offset with sortutil.Int64Slice and scans for overlap, the same
// sort-then-scan practice falloc_test.go runs over a.Alloc's returned
// handles before asserting they denote disjoint regions.
func TestNoOverlappingLiveAllocations(t *testing.T) {
	a := newTestArena(t)

	sizes := []int64{1, 16, 17, 100, 1000, 5000, 30, 64}
	var offs sortutil.Int64Slice
	for _, sz := range sizes {
		p := a.Allocate(sz)
		if p == PtrNil {
			t.Fatal("allocate failed")
		}
		offs = append(offs, int64(p))
	}

	sort.Sort(offs)

	for i := 1; i < len(offs); i++ {
		prev := offs[i-1]
		if prev+a.PayloadSize(Ptr(prev)) > offs[i] {
			t.Fatalf("overlapping allocations at offsets %d and %d", prev, offs[i])
		}
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
