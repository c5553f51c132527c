// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The invariant checker: an implicit (whole-heap) sweep and a free-list
// sweep, generalized from the multi-phase bitmap walk in lldb's
// Allocator.Verify (falloc.go) down to the two passes spec.md §4.8 names -
// an in-process heap can simply be walked in full on every call, with no
// need for Verify's incremental leak-bit bookkeeping across runs.

package memalloc

import (
	"sort"

	"github.com/cznic/sortutil"

	"github.com/cznic/memalloc/internal/herrors"
)

// CheckHeap walks the whole heap and every free list, verifying the
// invariants of spec.md §3/§8. line is recorded on failure purely for
// diagnostics (the caller's source line, the same role the line argument
// plays in a malloc lab's mm_checkheap(int lineno)); it does not affect
// the check itself. CheckHeap returns true iff every invariant holds; on
// failure, the first violation found is retained and can be retrieved
// with LastCheckError.
func (a *Arena) CheckHeap(line int) bool {
	a.lastCheckErr = nil
	if !a.initialized {
		return true
	}

	if err := a.checkImplicit(line); err != nil {
		a.lastCheckErr = err
		return false
	}

	if err := a.checkFreeLists(line); err != nil {
		a.lastCheckErr = err
		return false
	}

	return true
}

// LastCheckError returns the invariant violation found by the most
// recent failing CheckHeap call, or nil.
func (a *Arena) LastCheckError() error { return a.lastCheckErr }

func (a *Arena) checkImplicit(line int) error {
	prologue := a.readWord(0)
	if size, alloc, _, _ := unpackWord(prologue); size != 0 || !alloc {
		return &herrors.ErrILSEQ{Type: herrors.ErrPrologue, Addr: 0, Arg: int64(line)}
	}

	epilogueOff := a.heap.Hi() - wordSize

	prevFree := false
	var lastAlloc bool
	var lastSize int64
	sawBlock := false

	for head := int64(wordSize); head < epilogueOff; {
		w := a.header(head)
		size := w.size()

		if size == 0 {
			break
		}

		if size < minBlockSize || size%align != 0 {
			return &herrors.ErrILSEQ{Type: herrors.ErrUnaligned, Addr: uintptr(head), Arg: size}
		}

		if (head+wordSize)%align != 0 {
			return &herrors.ErrILSEQ{Type: herrors.ErrUnaligned, Addr: uintptr(head), Arg: int64(line)}
		}

		if head < wordSize || head+size > epilogueOff {
			return &herrors.ErrILSEQ{Type: herrors.ErrOutOfBounds, Addr: uintptr(head), Arg: size}
		}

		if !w.alloc() {
			if size != minBlockSize {
				footer := a.readWord(head + size - wordSize)
				if footer != w {
					return &herrors.ErrILSEQ{Type: herrors.ErrHeaderFooter, Addr: uintptr(head)}
				}
			}

			if prevFree {
				return &herrors.ErrILSEQ{Type: herrors.ErrAdjacentFree, Addr: uintptr(head)}
			}
		}

		prevFree = !w.alloc()
		lastAlloc = w.alloc()
		lastSize = size
		sawBlock = true
		head += size
	}

	epilogue := a.readWord(epilogueOff)
	if size, alloc, prevAlloc, prevMini := unpackWord(epilogue); size != 0 || !alloc {
		return &herrors.ErrILSEQ{Type: herrors.ErrEpilogue, Addr: uintptr(epilogueOff)}
	} else if sawBlock && (prevAlloc != lastAlloc || prevMini != (lastSize == minBlockSize)) {
		return &herrors.ErrILSEQ{Type: herrors.ErrEpilogue, Addr: uintptr(epilogueOff), Arg: int64(line)}
	}

	return nil
}

func (a *Arena) checkFreeLists(line int) error {
	epilogueOff := a.heap.Hi() - wordSize

	for c := 0; c < numClasses; c++ {
		var prev int64
		for cur := a.segHead[c]; cur != 0; cur = a.freeNext(cur) {
			if cur < wordSize || cur >= epilogueOff {
				return &herrors.ErrILSEQ{Type: herrors.ErrOutOfBounds, Addr: uintptr(cur), Arg: int64(line)}
			}

			size := a.header(cur).size()
			if class(size) != c {
				return &herrors.ErrILSEQ{Type: herrors.ErrBadClass, Addr: uintptr(cur), Arg: int64(c)}
			}

			if got := a.freePrev(cur); got != prev {
				return &herrors.ErrILSEQ{Type: herrors.ErrBadChain, Addr: uintptr(cur), Arg: got, Arg2: prev}
			}

			prev = cur
		}
	}

	for cur := a.miniHead; cur != 0; cur = a.miniNext(cur) {
		if cur < wordSize || cur >= epilogueOff {
			return &herrors.ErrILSEQ{Type: herrors.ErrMiniChain, Addr: uintptr(cur), Arg: int64(line)}
		}

		if size := a.header(cur).size(); size != minBlockSize {
			return &herrors.ErrILSEQ{Type: herrors.ErrMiniChain, Addr: uintptr(cur), Arg: size}
		}
	}

	return nil
}

// BlockInfo describes one free block for ListSeg's debug report.
type BlockInfo struct {
	Offset int64
	Size   int64
}

// ListSeg returns every free block currently in seg bucket class, sorted
// by offset - a debug aid, not part of the spec's four operations,
// grounded on falloc_test.go's practice of sorting collected
// handles/offsets with sortutil before asserting properties about them.
func (a *Arena) ListSeg(class int) []BlockInfo {
	if class < 0 || class >= numClasses {
		return nil
	}

	var offs sortutil.Int64Slice
	sizes := map[int64]int64{}
	for cur := a.segHead[class]; cur != 0; cur = a.freeNext(cur) {
		offs = append(offs, cur)
		sizes[cur] = a.header(cur).size()
	}

	sort.Sort(offs)

	out := make([]BlockInfo, len(offs))
	for i, off := range offs {
		out[i] = BlockInfo{Offset: off, Size: sizes[off]}
	}
	return out
}

// PayloadSize returns the usable payload capacity of the live allocation p
// refers to: its block size minus the header word. Callers that track a
// set of live pointers can sort them by offset and compare each one's
// PayloadSize against the next pointer's offset to assert non-overlap, the
// same handle-sort-then-scan check falloc_test.go runs over a.Alloc's
// returned handles.
func (a *Arena) PayloadSize(p Ptr) int64 {
	return a.header(blockOf(p)).size() - wordSize
}
