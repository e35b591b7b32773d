// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/platinasystems/vxge/hw"
	"github.com/platinasystems/vxge/vxge"
)

const config = `
name: sim0
poll_millis: 100
vpaths:
  0:
    ring: {enable: true, blocks: 2}
    fifo: {enable: true, blocks: 1}
  2:
    mtu: 9000
`

func TestMainArgs(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "vxge.yaml")
	if err := ioutil.WriteFile(fn, []byte(config), 0644); err != nil {
		t.Fatal(err)
	}
	for _, args := range [][]string{
		{"-q"},
		{"-stats", "-config", fn},
	} {
		if err := Main(args...); err != nil {
			t.Errorf("%v: %v", args, err)
		}
	}
	if err := Main("extra"); err == nil {
		t.Error("unexpected argument accepted")
	}
	if err := Main("-config", fn+".missing"); err == nil {
		t.Error("missing config accepted")
	}
}

func TestRing(t *testing.T) {
	alloc := hw.NewHeapAllocator(3 * hw.PageBytes)
	f := &ring_factory{alloc: alloc}
	r, err := f.CreateRing(0, vxge.RingAttr{Blocks: 2})
	if err != nil {
		t.Fatal(err)
	}
	if r.FirstBlockAddr() == 0 {
		t.Error("no block address")
	}
	if _, err = f.CreateFifo(0, vxge.FifoAttr{Blocks: 2}); err != hw.ErrNoMemory {
		t.Errorf("got %v want %v", err, hw.ErrNoMemory)
	}
	if alloc.Used() != 2*hw.PageBytes {
		t.Errorf("partial fifo not freed: %d used", alloc.Used())
	}
	r.Delete()
	if alloc.Used() != 0 {
		t.Errorf("%d used after delete", alloc.Used())
	}
}
