// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Reading and writing block boundary words against a live heap.

package memalloc

// header returns the decoded header word at head.
func (a *Arena) header(head int64) word { return a.readWord(head) }

// setAllocated writes head's header as an allocated block of size,
// preserving prevAlloc/prevMini. Allocated blocks carry no footer.
func (a *Arena) setAllocated(head, size int64, prevAlloc, prevMini bool) {
	a.writeWord(head, packWord(size, true, prevAlloc, prevMini))
}

// setFree writes head's header (and, for non-mini blocks, an identical
// footer at head+size-wordSize) as a free block of size, preserving
// prevAlloc/prevMini.
func (a *Arena) setFree(head, size int64, prevAlloc, prevMini bool) {
	w := packWord(size, false, prevAlloc, prevMini)
	a.writeWord(head, w)
	if size != minBlockSize {
		a.writeWord(head+size-wordSize, w)
	}
}

// setNeighborFlags overwrites the prevAlloc/prevMini pair in the header at
// head, leaving size and alloc untouched. Per spec.md §9 (Open Question
// 2), both bits are always written explicitly as a full pair - never
// OR'd in - since an OR-in-without-clear update is only safe when the bit
// is already known to be zero, a latent bug this module deliberately does
// not reproduce.
func (a *Arena) setNeighborFlags(head int64, prevAlloc, prevMini bool) {
	w := a.readWord(head)
	size, alloc, _, _ := unpackWord(w)
	a.writeWord(head, packWord(size, alloc, prevAlloc, prevMini))
	if !alloc && size != minBlockSize {
		// Keep the footer in sync; free non-mini blocks require
		// header == footer bit-for-bit (spec.md §3 invariants).
		a.writeWord(head+size-wordSize, packWord(size, alloc, prevAlloc, prevMini))
	}
}
