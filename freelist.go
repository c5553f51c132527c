// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The segregated free-list set: 14 doubly-linked LIFO seg buckets plus one
// singly-linked mini-list, generalized from lldb's flt.go slot table and
// its link/unlink pair in falloc.go.

package memalloc

// Free, non-mini block layout (relative to its header at head):
//
//	+0  header
//	+8  prev link
//	+16 next link
//	...unused...
//	size-8 footer
//
// Free mini block layout:
//
//	+0 header
//	+8 next link (no prev, no footer)

func (a *Arena) freePrevOff(head int64) int64 { return head + wordSize }
func (a *Arena) freeNextOff(head int64) int64 { return head + 2*wordSize }
func (a *Arena) miniNextOff(head int64) int64 { return head + wordSize }

func (a *Arena) freePrev(head int64) int64 { return int64(a.readWord(a.freePrevOff(head))) }
func (a *Arena) freeNext(head int64) int64 { return int64(a.readWord(a.freeNextOff(head))) }
func (a *Arena) miniNext(head int64) int64 { return int64(a.readWord(a.miniNextOff(head))) }

func (a *Arena) setFreePrev(head, v int64) { a.writeWord(a.freePrevOff(head), word(v)) }
func (a *Arena) setFreeNext(head, v int64) { a.writeWord(a.freeNextOff(head), word(v)) }
func (a *Arena) setMiniNext(head, v int64) { a.writeWord(a.miniNextOff(head), word(v)) }

// insertFree pushes the free block at head (of the given size) onto the
// head of its list: the mini-list if size == minBlockSize, otherwise the
// seg bucket for class(size). LIFO insert, O(1).
func (a *Arena) insertFree(head, size int64) {
	if isMini(size) {
		a.setMiniNext(head, a.miniHead)
		a.miniHead = head
		return
	}

	c := class(size)
	old := a.segHead[c]
	a.setFreePrev(head, 0)
	a.setFreeNext(head, old)
	if old != 0 {
		a.setFreePrev(old, head)
	}
	a.segHead[c] = head
}

// removeFree unlinks the free block at head (of the given size) from
// whichever list it is on. O(1) for non-mini blocks; O(k) in the length
// of the mini-list for mini blocks, per spec.md §4.4.
func (a *Arena) removeFree(head, size int64) {
	if isMini(size) {
		a.removeMini(head)
		return
	}

	prev := a.freePrev(head)
	next := a.freeNext(head)
	switch {
	case prev == 0:
		a.segHead[class(size)] = next
	default:
		a.setFreeNext(prev, next)
	}
	if next != 0 {
		a.setFreePrev(next, prev)
	}
}

// removeMini unlinks head from the singly-linked mini-list by scanning
// from the head until it is found.
func (a *Arena) removeMini(head int64) {
	if a.miniHead == head {
		a.miniHead = a.miniNext(head)
		return
	}

	for cur := a.miniHead; cur != 0; cur = a.miniNext(cur) {
		if n := a.miniNext(cur); n == head {
			a.setMiniNext(cur, a.miniNext(head))
			return
		}
	}
}
