// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command allocbench drives an Arena through either a recorded operation
// trace or a seeded pseudo-random workload, optionally verifying every
// heap invariant after each operation.
//
// Usage:
//
//	allocbench -trace ops.txt -verify
//	allocbench -seed 42 -ops 200000 -max 32768
//
// A trace file holds one operation per line:
//
//	a <id> <size>        allocate <size> bytes, remember the result as <id>
//	z <id> <n> <size>    zeroed-allocate n*size bytes as <id>
//	r <id> <size>        reallocate <id> to <size> bytes
//	f <id>               free <id>
//
// Blank lines and lines starting with # are ignored.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cznic/mathutil"
	"github.com/cznic/sortutil"

	"github.com/cznic/memalloc"
)

var (
	trace   = flag.String("trace", "", "operation trace file to replay; if empty, generate a random workload")
	seed    = flag.Int64("seed", 1, "PRNG seed for the random workload")
	ops     = flag.Int64("ops", 100000, "number of operations in the random workload")
	maxSize = flag.Int64("max", 8192, "maximum payload size in the random workload")
	verify  = flag.Bool("verify", false, "call CheckHeap after every operation")
	chunk   = flag.Int64("chunk", 0, "Arena.Config.ChunkSize override, 0 for the default")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)

	a := memalloc.NewArena(memalloc.NewProcessHeap(), memalloc.Config{ChunkSize: *chunk})
	if !a.Initialize() {
		log.Fatal("Initialize: heap refused initial growth")
	}

	t0 := time.Now()
	var n int
	var err error
	if *trace != "" {
		n, err = runTrace(a, *trace, *verify)
	} else {
		n, err = runRandom(a, *seed, *ops, *maxSize, *verify)
	}
	if err != nil {
		log.Fatal(err)
	}
	d := time.Since(t0)

	fmt.Printf("%d ops in %s (%s/op)\n", n, d, d/time.Duration(mathutil.Max(n, 1)))
}

func checkOrFatal(a *memalloc.Arena, doVerify bool, line int) {
	if !doVerify {
		return
	}
	if !a.CheckHeap(line) {
		log.Fatalf("line %d: invariant violation: %v", line, a.LastCheckError())
	}
}

// checkNoOverlap sorts the recorded live pointers by offset and asserts
// each one's payload ends at or before the next one's offset begins - the
// same sort-then-scan overlap check falloc_test.go runs over the handles
// returned by repeated a.Alloc calls.
func checkNoOverlap(a *memalloc.Arena, line int, live []memalloc.Ptr) {
	var offs sortutil.Int64Slice
	for _, p := range live {
		offs = append(offs, int64(p))
	}
	sort.Sort(offs)

	for i := 1; i < len(offs); i++ {
		prev := offs[i-1]
		if prev+a.PayloadSize(memalloc.Ptr(prev)) > offs[i] {
			log.Fatalf("line %d: overlapping allocations at offsets %d and %d", line, prev, offs[i])
		}
	}
}

func runTrace(a *memalloc.Arena, path string, doVerify bool) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	live := map[string]memalloc.Ptr{}
	sc := bufio.NewScanner(f)
	n := 0
	for lineno := 1; sc.Scan(); lineno++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "a":
			if len(fields) != 3 {
				return n, fmt.Errorf("line %d: malformed alloc", lineno)
			}
			sz, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				return n, err
			}
			live[fields[1]] = a.Allocate(sz)
		case "z":
			if len(fields) != 4 {
				return n, fmt.Errorf("line %d: malformed zalloc", lineno)
			}
			cnt, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				return n, err
			}
			sz, err := strconv.ParseInt(fields[3], 10, 64)
			if err != nil {
				return n, err
			}
			live[fields[1]] = a.ZeroedAllocate(cnt, sz)
		case "r":
			if len(fields) != 3 {
				return n, fmt.Errorf("line %d: malformed realloc", lineno)
			}
			sz, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				return n, err
			}
			live[fields[1]] = a.Reallocate(live[fields[1]], sz)
		case "f":
			if len(fields) != 2 {
				return n, fmt.Errorf("line %d: malformed free", lineno)
			}
			a.Free(live[fields[1]])
			delete(live, fields[1])
		default:
			return n, fmt.Errorf("line %d: unknown op %q", lineno, fields[0])
		}

		checkOrFatal(a, doVerify, lineno)
		if doVerify {
			liveVals := make([]memalloc.Ptr, 0, len(live))
			for _, p := range live {
				if p != memalloc.PtrNil {
					liveVals = append(liveVals, p)
				}
			}
			checkNoOverlap(a, lineno, liveVals)
		}
		n++
	}
	return n, sc.Err()
}

func runRandom(a *memalloc.Arena, seed, ops, maxSize int64, doVerify bool) (int, error) {
	rng := rand.New(rand.NewSource(seed))
	var live []memalloc.Ptr

	for i := int64(0); i < ops; i++ {
		switch {
		case len(live) == 0 || rng.Intn(3) != 0:
			sz := rng.Int63n(maxSize) + 1
			if p := a.Allocate(sz); p != memalloc.PtrNil {
				live = append(live, p)
			}
		case rng.Intn(2) == 0:
			idx := rng.Intn(len(live))
			a.Free(live[idx])
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
		default:
			idx := rng.Intn(len(live))
			sz := rng.Int63n(maxSize) + 1
			if p := a.Reallocate(live[idx], sz); p != memalloc.PtrNil {
				live[idx] = p
			}
		}

		checkOrFatal(a, doVerify, int(i))
		if doVerify {
			checkNoOverlap(a, int(i), live)
		}
	}

	for _, p := range live {
		a.Free(p)
	}
	checkOrFatal(a, doVerify, int(ops))

	return int(ops), nil
}
