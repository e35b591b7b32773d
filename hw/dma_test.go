// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hw

import "testing"

func TestHeapAllocator(t *testing.T) {
	h := NewHeapAllocator(2 * PageBytes)
	a, err := h.Alloc(100)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(a.Mem), PageBytes; got != want {
		t.Errorf("len: got %d want %d", got, want)
	}
	b, err := h.Alloc(PageBytes)
	if err != nil {
		t.Fatal(err)
	}
	if a.Addr == b.Addr {
		t.Errorf("same address %x", a.Addr)
	}
	if _, err = h.Alloc(1); err != ErrNoMemory {
		t.Errorf("got %v want %v", err, ErrNoMemory)
	}
	if x, ok := h.Lookup(b.Addr); !ok || x != b {
		t.Errorf("lookup %x failed", b.Addr)
	}
	h.Free(a)
	h.Free(a)
	if got, want := h.Used(), uint(PageBytes); got != want {
		t.Errorf("used: got %d want %d", got, want)
	}
	if _, err = h.Alloc(1); err != nil {
		t.Errorf("alloc after free: %v", err)
	}
}
