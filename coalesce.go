// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Immediate boundary coalescing, generalized from the four-case switch in
// lldb's Allocator.free2 (falloc.go), minus its tail-truncate case: this
// heap never shrinks (spec.md §1 Non-goals).

package memalloc

// coalesce merges the free block at head with any immediately adjacent
// free neighbors, removing them from their free lists, then inserts the
// resulting block into the appropriate list. It returns the header offset
// of the (possibly merged) block. The block at head must already be
// marked free in its header.
func (a *Arena) coalesce(head int64) int64 {
	w := a.header(head)
	size := w.size()

	var left int64
	haveLeft := false
	if !w.prevAlloc() {
		left, haveLeft = a.prevHead(head)
	}

	right := a.next(head)
	rightW := a.header(right)
	rightFree := !rightW.alloc()

	switch {
	case !haveLeft && !rightFree:
		// Case 1: prev allocated, next allocated.
		a.setNeighborFlags(right, false, size == minBlockSize)
		a.insertFree(head, size)
		return head

	case !haveLeft && rightFree:
		// Case 2: prev allocated, next free.
		rightSize := rightW.size()
		a.removeFree(right, rightSize)
		merged := size + rightSize
		a.setFree(head, merged, w.prevAlloc(), w.prevMini())
		afterRight := head + merged
		a.setNeighborFlags(afterRight, false, false)
		a.insertFree(head, merged)
		return head

	case haveLeft && !rightFree:
		// Case 3: prev free, next allocated.
		leftW := a.header(left)
		leftSize := leftW.size()
		a.removeFree(left, leftSize)
		merged := leftSize + size
		a.setFree(left, merged, leftW.prevAlloc(), leftW.prevMini())
		a.setNeighborFlags(right, false, merged == minBlockSize)
		a.insertFree(left, merged)
		return left

	default:
		// Case 4: prev free, next free.
		leftW := a.header(left)
		leftSize := leftW.size()
		rightSize := rightW.size()
		a.removeFree(left, leftSize)
		a.removeFree(right, rightSize)
		merged := leftSize + size + rightSize
		a.setFree(left, merged, leftW.prevAlloc(), leftW.prevMini())
		afterRight := left + merged
		a.setNeighborFlags(afterRight, false, false)
		a.insertFree(left, merged)
		return left
	}
}
