// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package herrors collects the typed errors raised by the heap engine.
package herrors

import "fmt"

// ErrType enumerates the kinds of illegal heap sequence CheckHeap can
// detect.
type ErrType int

// ErrType values.
const (
	ErrOther ErrType = iota
	ErrAdjacentFree
	ErrHeaderFooter
	ErrBadChain
	ErrOutOfBounds
	ErrBadClass
	ErrPrologue
	ErrEpilogue
	ErrMiniChain
	ErrUnaligned
)

var errTypeNames = map[ErrType]string{
	ErrOther:        "other",
	ErrAdjacentFree: "adjacent free blocks",
	ErrHeaderFooter: "header/footer mismatch",
	ErrBadChain:     "broken free-list chain",
	ErrOutOfBounds:  "block outside heap bounds",
	ErrBadClass:     "block in wrong size class",
	ErrPrologue:     "corrupt prologue",
	ErrEpilogue:     "corrupt epilogue",
	ErrMiniChain:    "broken mini-list chain",
	ErrUnaligned:    "misaligned payload",
}

func (t ErrType) String() string {
	if s, ok := errTypeNames[t]; ok {
		return s
	}
	return fmt.Sprintf("ErrType(%d)", int(t))
}

// ErrINVAL reports an invalid argument passed to a public API function.
type ErrINVAL struct {
	Msg string
	Arg interface{}
}

func (e *ErrINVAL) Error() string {
	return fmt.Sprintf("invalid argument: %s (%v)", e.Msg, e.Arg)
}

// ErrILSEQ reports an illegal heap sequence found while walking the heap,
// normally surfaced only by CheckHeap.
type ErrILSEQ struct {
	Type ErrType
	Addr uintptr
	Arg  int64
	Arg2 int64
}

func (e *ErrILSEQ) Error() string {
	return fmt.Sprintf("illegal heap sequence at %#x: %s (arg %d, arg2 %d)", e.Addr, e.Type, e.Arg, e.Arg2)
}

// ErrOOM reports that Heap.Sbrk refused to grow the heap by the requested
// number of bytes.
type ErrOOM struct {
	Requested int64
}

func (e *ErrOOM) Error() string {
	return fmt.Sprintf("out of memory: sbrk(%d) failed", e.Requested)
}
