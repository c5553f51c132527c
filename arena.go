// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The placement engine (find-fit, split, extend-heap) and the public API:
// Allocate, Free, Reallocate, ZeroedAllocate, Initialize.

package memalloc

import "github.com/cznic/mathutil"

// Config tunes an Arena. The zero Config is valid and uses the spec's
// default chunk size, the same "construct over a provider + options, no
// package-level globals" shape as lldb.NewAllocator(f Filer, flt FLT).
type Config struct {
	// ChunkSize is the minimum number of bytes requested from Heap.Sbrk
	// on each extend-heap call. Zero means chunkSize (4096), spec.md's
	// CHUNK constant.
	ChunkSize int64
}

func (c Config) chunkSize() int64 {
	if c.ChunkSize <= 0 {
		return chunkSize
	}
	return roundUp16(c.ChunkSize)
}

// Arena is a single-threaded dynamic memory allocator over a Heap. The
// zero Arena is not usable; construct one with NewArena.
type Arena struct {
	heap     Heap
	config   Config
	segHead  [numClasses]int64
	miniHead int64

	initialized  bool
	lastCheckErr error
}

// NewArena returns a new Arena managing heap. The heap is not touched
// until the first Allocate/ZeroedAllocate call, or an explicit call to
// Initialize.
func NewArena(heap Heap, config Config) *Arena {
	return &Arena{heap: heap, config: config}
}

// Initialize idempotently sets up the prologue/epilogue sentinels, empty
// free lists, and extends the heap by one chunk. It returns false if the
// underlying Heap refused the initial growth.
func (a *Arena) Initialize() bool {
	if a.initialized {
		return true
	}

	if _, err := a.heap.Sbrk(2 * wordSize); err != nil {
		return false
	}

	// Prologue and epilogue sentinels: size 0, alloc true. The
	// epilogue's prevAlloc records that its left neighbor, the prologue,
	// is allocated; extendHeap below hands these flags on to the first
	// real block it creates in the epilogue's place.
	a.writeWord(0, packWord(0, true, true, false))
	a.writeWord(wordSize, packWord(0, true, true, false))
	a.initialized = true

	if !a.extendHeap(a.config.chunkSize()) {
		return false
	}

	return true
}

// adjust computes the aligned block size for a payload request of req
// bytes: round_up(req + header, 16), with a minBlockSize floor.
func adjust(req int64) int64 {
	return mathutil.MaxInt64(roundUp16(req+wordSize), minBlockSize)
}

// findFit returns the header offset of a free block of size >= asize,
// selected by a bounded best-fit scan within the first seg bucket that
// contains one, per spec.md §4.6. For asize == minBlockSize the mini-list
// head is taken when the mini-list is non-empty; otherwise the seg buckets
// are scanned as for any other size. It returns (0, false) if the heap
// currently has no fit.
func (a *Arena) findFit(asize int64) (int64, bool) {
	if asize == minBlockSize && a.miniHead != 0 {
		return a.miniHead, true
	}

	for c := class(asize); c < numClasses; c++ {
		if head, ok := a.bestFitInBucket(c, asize); ok {
			return head, true
		}
	}
	return 0, false
}

// bestFitInBucket scans bucket c's LIFO free list for the smallest block
// of size >= asize, stopping as soon as a candidate larger than the
// current best-so-far is seen after a fit has already been found - a
// deliberate near-first-fit heuristic (spec.md §4.6, §9) rather than a
// full scan.
func (a *Arena) bestFitInBucket(c int, asize int64) (int64, bool) {
	var best int64
	var bestSize int64
	for cur := a.segHead[c]; cur != 0; cur = a.freeNext(cur) {
		sz := a.header(cur).size()
		if sz < asize {
			continue
		}
		if best == 0 || sz < bestSize {
			best, bestSize = cur, sz
			continue
		}
		if sz > bestSize {
			break
		}
	}
	if best == 0 {
		return 0, false
	}
	return best, true
}

// extendHeap grows the heap by at least n bytes (rounded up to a multiple
// of align), turns the new space into a free block at the old epilogue's
// position, writes a fresh epilogue at the new high end, and immediately
// coalesces the new block with its left neighbor if that neighbor is
// free. It returns false if the Heap refused the growth.
func (a *Arena) extendHeap(n int64) bool {
	n = mathutil.MaxInt64(roundUp16(n), minBlockSize)

	oldEpilogue := a.heap.Hi() - wordSize
	_, _, prevAlloc, prevMini := unpackWord(a.readWord(oldEpilogue))

	if _, err := a.heap.Sbrk(n); err != nil {
		return false
	}

	a.setFree(oldEpilogue, n, prevAlloc, prevMini)
	newEpilogue := oldEpilogue + n
	a.writeWord(newEpilogue, packWord(0, true, false, n == minBlockSize))
	a.coalesce(oldEpilogue)
	return true
}

// splitBlock carves asize bytes off the front of the currently-allocated
// block at head (whose size is S >= asize), if the S-asize remainder is
// at least minBlockSize. On success it returns the header offset of the
// new free remainder and true; the remainder is marked free but not yet
// inserted into any list - the caller is expected to call coalesce on it.
// If the remainder would be smaller than minBlockSize, splitBlock leaves
// head untouched and returns (0, false).
func (a *Arena) splitBlock(head, asize int64) (int64, bool) {
	w := a.header(head)
	s := w.size()
	if s-asize < minBlockSize {
		return 0, false
	}

	a.setAllocated(head, asize, w.prevAlloc(), w.prevMini())

	remHead := head + asize
	remSize := s - asize
	a.setFree(remHead, remSize, true, asize == minBlockSize)

	right := remHead + remSize
	a.setNeighborFlags(right, false, remSize == minBlockSize)

	return remHead, true
}

// Allocate reserves a block of at least req bytes and returns its payload
// pointer, or PtrNil if req is 0 or no fit could be made even after
// extending the heap.
func (a *Arena) Allocate(req int64) Ptr {
	if req <= 0 {
		return PtrNil
	}

	if !a.initialized {
		if !a.Initialize() {
			return PtrNil
		}
	}

	asize := adjust(req)

	head, ok := a.findFit(asize)
	if !ok {
		grow := mathutil.MaxInt64(asize, a.config.chunkSize())
		if !a.extendHeap(grow) {
			return PtrNil
		}
		if head, ok = a.findFit(asize); !ok {
			return PtrNil
		}
	}

	w := a.header(head)
	size := w.size()
	a.removeFree(head, size)
	a.setAllocated(head, size, w.prevAlloc(), w.prevMini())
	a.setNeighborFlags(head+size, true, size == minBlockSize)

	if remHead, split := a.splitBlock(head, asize); split {
		a.coalesce(remHead)
	}

	return payloadOf(head)
}

// Free releases the block p refers to, making it available for reuse. A
// nil p is a documented no-op.
func (a *Arena) Free(p Ptr) {
	if p == PtrNil {
		return
	}

	head := blockOf(p)
	w := a.header(head)
	size := w.size()
	a.setFree(head, size, w.prevAlloc(), w.prevMini())
	a.setNeighborFlags(head+size, false, size == minBlockSize)
	a.coalesce(head)
}

// Reallocate resizes the block p refers to. req == 0 behaves as Free(p)
// and returns PtrNil; p == PtrNil behaves as Allocate(req); otherwise a
// fresh block is allocated, the lesser of req and p's old payload size is
// copied over, and p is freed. It returns PtrNil (leaving p untouched) if
// the fresh allocation fails.
func (a *Arena) Reallocate(p Ptr, req int64) Ptr {
	if req == 0 {
		a.Free(p)
		return PtrNil
	}

	if p == PtrNil {
		return a.Allocate(req)
	}

	oldHead := blockOf(p)
	oldPayload := a.header(oldHead).size() - wordSize

	newP := a.Allocate(req)
	if newP == PtrNil {
		return PtrNil
	}

	n := mathutil.MinInt64(oldPayload, req)

	b := a.heap.Bytes()
	copy(b[int64(newP):int64(newP)+n], b[int64(p):int64(p)+n])

	a.Free(p)
	return newP
}

// ZeroedAllocate reserves a zeroed block of n*sz bytes, or returns PtrNil
// if n is 0 or n*sz overflows a 64-bit word (detected via (n*sz)/n !=
// sz, spec.md §4.7/§8).
func (a *Arena) ZeroedAllocate(n, sz int64) Ptr {
	if n == 0 {
		return PtrNil
	}

	total := n * sz
	if total/n != sz {
		return PtrNil
	}

	p := a.Allocate(total)
	if p == PtrNil {
		return PtrNil
	}

	b := a.heap.Bytes()
	off := int64(p)
	clear := b[off : off+total]
	for i := range clear {
		clear[i] = 0
	}
	return p
}
