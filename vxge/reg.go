// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"github.com/platinasystems/vxge/hw"
	"github.com/platinasystems/vxge/internal/titan"
)

// Common (function wide) register.
type reg uint64

func (r reg) get(d *Device) uint64    { return d.regs.Read64(uint64(r)) }
func (r reg) set(d *Device, v uint64) { d.write64(uint64(r), v) }

// Registers shared by all vpaths of function: read-modify-write under mask lock.
func (r reg) or(d *Device, v uint64) {
	d.mask_lock.Lock()
	defer d.mask_lock.Unlock()
	r.set(d, r.get(d)|v)
}
func (r reg) andnot(d *Device, v uint64) {
	d.mask_lock.Lock()
	defer d.mask_lock.Unlock()
	r.set(d, r.get(d)&^v)
}

// Platforms without 64 bit memory mapped writes write 2 halves, upper last.
func (d *Device) write64(o, v uint64) {
	if d.cfg.Mmio32 {
		hw.Write64Split(d.regs, o, v)
	} else {
		d.regs.Write64(o, v)
	}
}

// Register in vpath register block.
type vreg uint64

func (r vreg) offset(p *VirtualPath) uint64 { return titan.VpathOffset(p.id) + uint64(r) }

func (r vreg) get(p *VirtualPath) uint64    { return p.d.regs.Read64(r.offset(p)) }
func (r vreg) set(p *VirtualPath, v uint64) { p.d.write64(r.offset(p), v) }
func (r vreg) or(p *VirtualPath, v uint64)  { r.set(p, r.get(p)|v) }
func (r vreg) andnot(p *VirtualPath, v uint64) {
	r.set(p, r.get(p)&^v)
}

// Replace field of register.
func (r vreg) set_field(p *VirtualPath, f titan.Field, x uint64) {
	r.set(p, f.Set(r.get(p), x))
}

// Register array: i'th register.
func (r vreg) at(i uint) vreg { return r + vreg(8*i) }

// Set or clear flag bits according to optional setting; nil leaves hardware
// default alone.  Returns updated value.
func flag(v uint64, b *bool, m uint64) uint64 {
	switch {
	case b == nil:
	case *b:
		v |= m
	default:
		v &^= m
	}
	return v
}

// Same for an optional field value.
func field(v uint64, x *uint32, f titan.Field) uint64 {
	if x != nil {
		v = f.Set(v, uint64(*x))
	}
	return v
}
