// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The block navigator: conversions between a block's header offset and its
// payload pointer, and stepping to the next/previous block header.

package memalloc

import "encoding/binary"

// Ptr is a payload address: a byte offset from the heap's low bound to the
// first byte of an allocation's payload. It is the non-owning handle
// design note from spec.md §9 recommends in place of a raw pointer - the
// heap's byte region is the sole owner of the memory it denotes. The zero
// Ptr is the nil pointer, mirroring the conventional nil-pointer return of
// allocate/reallocate: offset 0 is always inside the 8-byte prologue
// footer and never a valid payload address.
type Ptr int64

// PtrNil is the nil Ptr, returned by Allocate/Reallocate on failure and
// accepted as a documented no-op by Free/Reallocate.
const PtrNil Ptr = 0

func (a *Arena) readWord(off int64) word {
	b := a.heap.Bytes()
	return word(binary.BigEndian.Uint64(b[off : off+wordSize]))
}

func (a *Arena) writeWord(off int64, w word) {
	b := a.heap.Bytes()
	binary.BigEndian.PutUint64(b[off:off+wordSize], uint64(w))
}

// blockOf converts a payload pointer to the offset of its block's header.
func blockOf(p Ptr) int64 { return int64(p) - wordSize }

// payloadOf converts a block header offset to its payload pointer.
func payloadOf(head int64) Ptr { return Ptr(head + wordSize) }

// next returns the header offset of the block immediately to the right of
// the block at head. It is undefined when head is the epilogue.
func (a *Arena) next(head int64) int64 {
	return head + a.readWord(head).size()
}

// prevHead returns the header offset of the block immediately to the left
// of the block at head, and true - or, if head is the first real block
// (its left neighbor is the prologue), returns (0, false).
//
// Precondition: the caller has already established that the block at
// head has prevAlloc == false, i.e. the left neighbor is free and
// therefore either carries a footer (non-mini) or is exactly
// minBlockSize bytes (mini, no footer). Calling prevHead when the left
// neighbor is allocated reads unrelated payload bytes as if they were a
// footer.
//
// If the block at head has prevMini set, the previous block is known to
// be exactly minBlockSize bytes with no footer, so its header sits
// minBlockSize bytes to the left. Otherwise the previous block's size is
// read from its footer, the word immediately preceding head.
func (a *Arena) prevHead(head int64) (int64, bool) {
	w := a.readWord(head)
	if w.prevMini() {
		return head - minBlockSize, true
	}

	footer := a.readWord(head - wordSize)
	size := footer.size()
	if size == 0 {
		// Left neighbor is the prologue sentinel.
		return 0, false
	}

	return head - size, true
}
