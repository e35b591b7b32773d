// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"github.com/platinasystems/vxge/hw"
	"github.com/platinasystems/vxge/vxge"
)

// Descriptor rings with no traffic; simulated adapter never completes
// descriptors.
type ring_factory struct {
	alloc hw.Allocator
}

type ring struct {
	alloc  hw.Allocator
	blocks []*hw.Block
}

func (f *ring_factory) new_ring(n uint) (r *ring, err error) {
	if n == 0 {
		n = 1
	}
	r = &ring{alloc: f.alloc}
	for i := uint(0); i < n; i++ {
		var b *hw.Block
		if b, err = f.alloc.Alloc(hw.PageBytes); err != nil {
			r.Delete()
			return nil, err
		}
		r.blocks = append(r.blocks, b)
	}
	return
}

func (f *ring_factory) CreateRing(vp uint, attr vxge.RingAttr) (vxge.Ring, error) {
	r, err := f.new_ring(attr.Blocks)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (f *ring_factory) CreateFifo(vp uint, attr vxge.FifoAttr) (vxge.Fifo, error) {
	r, err := f.new_ring(attr.Blocks)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *ring) PollNext() (c vxge.Completion, ok bool) { return }
func (r *ring) Reset()                                 {}
func (r *ring) FirstBlockAddr() uint64                 { return r.blocks[0].Addr }

func (r *ring) Delete() {
	for _, b := range r.blocks {
		r.alloc.Free(b)
	}
	r.blocks = nil
}
