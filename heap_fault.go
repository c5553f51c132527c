// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memalloc

import "github.com/cznic/memalloc/internal/herrors"

var _ Heap = (*FaultInjectingHeap)(nil) // Ensure FaultInjectingHeap is a Heap.

// FaultInjectingHeap wraps another Heap and refuses to grow it past a
// configured ceiling, returning ErrOOM instead. It is used by tests that
// must exercise the out-of-memory path of Arena without actually
// exhausting process memory.
type FaultInjectingHeap struct {
	inner   Heap
	ceiling int64
}

// NewFaultInjectingHeap returns a FaultInjectingHeap wrapping inner. Sbrk
// calls that would grow inner past ceiling bytes fail with ErrOOM; inner
// is left unmodified in that case.
func NewFaultInjectingHeap(inner Heap, ceiling int64) *FaultInjectingHeap {
	return &FaultInjectingHeap{inner: inner, ceiling: ceiling}
}

// Lo implements Heap.
func (h *FaultInjectingHeap) Lo() int64 { return h.inner.Lo() }

// Hi implements Heap.
func (h *FaultInjectingHeap) Hi() int64 { return h.inner.Hi() }

// Sbrk implements Heap.
func (h *FaultInjectingHeap) Sbrk(n int64) (int64, error) {
	if h.inner.Hi()+n > h.ceiling {
		return 0, &herrors.ErrOOM{Requested: n}
	}

	return h.inner.Sbrk(n)
}

// Bytes implements Heap.
func (h *FaultInjectingHeap) Bytes() []byte { return h.inner.Bytes() }
