// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The size-class index: routing an adjusted block size to one of the 14
// segregated free-list buckets.

package memalloc

// classMin holds the minimum size, in bytes, of each of the 14 seg
// buckets, see spec.md §3. classMin[i] is the smallest size routed to
// bucket i; bucket 13's range is unbounded above.
var classMin = [numClasses]int64{
	16, 32, 64, 128, 256,
	512, 1024, 2048, 3072, 4096,
	6656, 8192, 16384, 32768,
}

// class returns the seg bucket index for a free or requested block size.
// class is defined for size >= 16 and scans classMin from the top, since
// buckets are few and the table is tiny. Free mini blocks (size 16) are
// never stored in a seg bucket - they live in the dedicated mini-list, see
// isMini below - but findFit still starts its bucket scan at class(16)
// when the mini-list is empty.
func class(size int64) int {
	c := 0
	for i := numClasses - 1; i >= 0; i-- {
		if size >= classMin[i] {
			c = i
			break
		}
	}
	return c
}

// isMini reports whether size is the minimum block size and therefore
// belongs to the mini-list rather than a seg bucket.
func isMini(size int64) bool { return size == minBlockSize }
