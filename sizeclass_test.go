// Copyright 2013 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package memalloc

import "testing"

func TestClassBoundaries(t *testing.T) {
	table := []struct {
		size int64
		want int
	}{
		{16, 0}, {31, 0},
		{32, 1}, {63, 1},
		{64, 2}, {127, 2},
		{128, 3}, {255, 3},
		{256, 4}, {511, 4},
		{512, 5}, {1023, 5},
		{1024, 6}, {2047, 6},
		{2048, 7}, {3071, 7},
		{3072, 8}, {4095, 8},
		{4096, 9}, {6655, 9},
		{6656, 10}, {8191, 10},
		{8192, 11}, {16383, 11},
		{16384, 12}, {32767, 12},
		{32768, 13}, {1 << 20, 13},
	}

	for _, tt := range table {
		if got := class(tt.size); got != tt.want {
			t.Fatalf("class(%d) = %d, want %d", tt.size, got, tt.want)
		}
	}
}

func TestIsMini(t *testing.T) {
	if !isMini(16) {
		t.Fatal("isMini(16) should be true")
	}
	if isMini(32) {
		t.Fatal("isMini(32) should be false")
	}
}
