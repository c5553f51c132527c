// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The underlying contiguous-memory provider abstraction.

package memalloc

// A Heap is a []byte-like model of a single, contiguous, monotonically
// growable region of memory. In contrast to an os.File, a Heap is not
// sequentially accessible and grows only by appending at its high end via
// Sbrk. A Heap is not safe for concurrent access; it is designed for
// consumption by an Arena from one goroutine only, or under an externally
// held lock.
//
// Heap implementations may reallocate the backing array on Sbrk, but MUST
// preserve the content at every existing offset: the region only ever
// grows by appending at its high end. Arena relies on byte offsets into
// the region remaining stable across Sbrk calls, not on any particular
// slice staying valid.
type Heap interface {
	// Lo returns the low (inclusive) bound of the currently committed
	// region, always 0 for a freshly constructed Heap.
	Lo() int64

	// Hi returns the high (exclusive) bound of the currently committed
	// region.
	Hi() int64

	// Sbrk extends the heap by n bytes, appended at the current high
	// end, and returns the offset of the start of the new region. It
	// returns a non-nil error if the heap could not be grown, in which
	// case the heap is left unmodified. n must be >= 0.
	Sbrk(n int64) (off int64, err error)

	// Bytes returns a slice aliasing the entire committed region,
	// [Lo(), Hi()). The slice is valid until the next call to Sbrk;
	// Arena re-slices it after every Sbrk rather than caching it across
	// calls that might grow the heap.
	Bytes() []byte
}
