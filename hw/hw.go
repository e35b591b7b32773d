// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hw provides memory mapped register access and dma memory for the
// adapter.
package hw

// Regs is an adapter register space.  Offsets are byte offsets from the
// start of BAR 0.
//
// Writes are posted; Barrier must be called after a write whose effect is
// observed by a following read.
type Regs interface {
	Read64(offset uint64) uint64
	Write64(offset uint64, v uint64)

	// 32 bit halves of a 64 bit register for platforms without 64 bit
	// memory mapped writes.
	Write32Lower(offset uint64, v uint32)
	Write32Upper(offset uint64, v uint32)

	Barrier()
}

// Write64 as two 32 bit writes; upper half last.
func Write64Split(r Regs, offset, v uint64) {
	r.Write32Lower(offset, uint32(v))
	r.Write32Upper(offset, uint32(v>>32))
}
