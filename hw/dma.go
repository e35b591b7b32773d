// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hw

import (
	"errors"
	"sync"
)

var ErrNoMemory = errors.New("dma: out of memory")

const PageBytes = 4096

// Block is a dma memory block: cpu visible memory plus bus address.
type Block struct {
	Mem  []byte
	Addr uint64
}

type Allocator interface {
	Alloc(n uint) (*Block, error)
	Free(b *Block)
}

// HeapAllocator allocates page aligned blocks from the Go heap with
// synthetic bus addresses.  Used with simulated adapters.
type HeapAllocator struct {
	mu sync.Mutex

	// Max bytes outstanding; 0 for no limit.
	Limit uint

	used     uint
	nextAddr uint64
	blocks   map[uint64]*Block
}

const heapBaseAddr = 0x1_0000_0000

func NewHeapAllocator(limit uint) *HeapAllocator {
	return &HeapAllocator{
		Limit:    limit,
		nextAddr: heapBaseAddr,
		blocks:   make(map[uint64]*Block),
	}
}

func roundPage(n uint) uint { return (n + PageBytes - 1) &^ (PageBytes - 1) }

func (h *HeapAllocator) Alloc(n uint) (b *Block, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n = roundPage(n)
	if h.Limit != 0 && h.used+n > h.Limit {
		err = ErrNoMemory
		return
	}
	b = &Block{Mem: make([]byte, n), Addr: h.nextAddr}
	h.nextAddr += uint64(n)
	h.used += n
	h.blocks[b.Addr] = b
	return
}

func (h *HeapAllocator) Free(b *Block) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.blocks[b.Addr]; !ok {
		return
	}
	delete(h.blocks, b.Addr)
	h.used -= uint(len(b.Mem))
}

// Lookup block by bus address.
func (h *HeapAllocator) Lookup(addr uint64) (b *Block, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	b, ok = h.blocks[addr]
	return
}

// Bytes outstanding.
func (h *HeapAllocator) Used() uint {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.used
}
