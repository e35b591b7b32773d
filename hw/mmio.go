// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hw

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

var SysBusPciPath = "/sys/bus/pci/devices"

// Mmio is a register space backed by a mapped PCI BAR.
type Mmio struct {
	f   *os.File
	mem []byte
}

// MapResource maps BAR n of the PCI device at the given address
// (e.g. 0000:03:00.0).
func MapResource(addr string, n int) (m *Mmio, err error) {
	fn := filepath.Join(SysBusPciPath, addr, fmt.Sprintf("resource%d", n))
	f, err := os.OpenFile(fn, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return
	}
	mem, err := unix.Mmap(int(f.Fd()), 0, int(fi.Size()),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		err = fmt.Errorf("%s: mmap: %v", fn, err)
		return
	}
	m = &Mmio{f: f, mem: mem}
	return
}

func (m *Mmio) Close() (err error) {
	if m.mem != nil {
		err = unix.Munmap(m.mem)
		m.mem = nil
	}
	if e := m.f.Close(); err == nil {
		err = e
	}
	return
}

func (m *Mmio) addr64(o uint64) *uint64 { return (*uint64)(unsafe.Pointer(&m.mem[o])) }
func (m *Mmio) addr32(o uint64) *uint32 { return (*uint32)(unsafe.Pointer(&m.mem[o])) }

func (m *Mmio) Read64(o uint64) uint64     { return atomic.LoadUint64(m.addr64(o)) }
func (m *Mmio) Write64(o uint64, v uint64) { atomic.StoreUint64(m.addr64(o), v) }

// Little endian device: lower half at offset, upper half at offset + 4.
func (m *Mmio) Write32Lower(o uint64, v uint32) { atomic.StoreUint32(m.addr32(o), v) }
func (m *Mmio) Write32Upper(o uint64, v uint32) { atomic.StoreUint32(m.addr32(o+4), v) }

// Write flush by reading adapter register 0.
func (m *Mmio) Barrier() { atomic.LoadUint64(m.addr64(0)) }
