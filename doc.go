// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package memalloc implements a general-purpose dynamic memory allocator
// managing a single contiguous, monotonically growable Heap.
//
// The heap is organized into a sequence of blocks, each starting with an
// 8-byte boundary word packing a size and three flag bits (alloc,
// prevAlloc, prevMini). Free blocks of 32 bytes or more additionally
// carry a footer word (an exact copy of the header) and are kept on one
// of 14 segregated, size-ranged, doubly-linked LIFO free lists; free
// blocks of exactly 16 bytes (the minimum block size) carry neither a
// footer nor a prev link and are kept on a separate singly-linked
// mini-list instead, since a 16-byte block has no room for both.
//
// Allocate, Free, Reallocate and ZeroedAllocate are the only four public
// operations. Placement is a bounded best-fit within a size class;
// freeing (and extending the heap) always immediately coalesces with any
// adjacent free neighbor. Thread safety, multiple heaps, compaction, and
// returning memory to the OS are explicitly out of scope - see the
// Non-goals section of SPEC_FULL.md.
package memalloc
