// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// A real, process-memory backed implementation of Heap.

package memalloc

import (
	"github.com/cznic/mathutil"

	"github.com/cznic/memalloc/internal/herrors"
)

var _ Heap = (*ProcessHeap)(nil) // Ensure ProcessHeap is a Heap.

// ProcessHeap is a Heap backed by a single growable []byte slice living in
// the Go process' own memory. Sbrk grows the slice by appending zeroed
// bytes, reallocating (copying) its backing array only when growth exceeds
// remaining capacity - the same amortized-growth shape as append(). A
// ProcessHeap has no persistence; its content does not outlive the
// process, matching the spec's "no persisted state" requirement.
type ProcessHeap struct {
	buf []byte

	// MaxSize, if non-zero, caps the total heap size Sbrk will grow to.
	// Requests that would exceed it fail with ErrOOM. Zero means
	// unbounded (up to what the Go runtime can allocate).
	MaxSize int64
}

// NewProcessHeap returns a new, empty ProcessHeap.
func NewProcessHeap() *ProcessHeap {
	return &ProcessHeap{}
}

// Lo implements Heap.
func (h *ProcessHeap) Lo() int64 { return 0 }

// Hi implements Heap.
func (h *ProcessHeap) Hi() int64 { return int64(len(h.buf)) }

// Sbrk implements Heap.
func (h *ProcessHeap) Sbrk(n int64) (off int64, err error) {
	if n < 0 {
		return 0, &herrors.ErrINVAL{Msg: "ProcessHeap.Sbrk: negative size", Arg: n}
	}

	off = int64(len(h.buf))
	newSize := off + n
	if h.MaxSize != 0 && newSize > h.MaxSize {
		return 0, &herrors.ErrOOM{Requested: n}
	}

	if int64(cap(h.buf)) < newSize {
		newCap := mathutil.MaxInt64(newSize, 2*int64(cap(h.buf)))
		grown := make([]byte, newSize, newCap)
		copy(grown, h.buf)
		h.buf = grown
		return off, nil
	}

	h.buf = h.buf[:newSize]
	for i := off; i < newSize; i++ {
		h.buf[i] = 0
	}
	return off, nil
}

// Bytes implements Heap.
func (h *ProcessHeap) Bytes() []byte { return h.buf }
