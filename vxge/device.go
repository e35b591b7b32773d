// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vxge is the virtual path layer of the X3100 10G adapter hal.  A
// Device owns the virtual paths assigned to one PCI function; each virtual
// path is opened independently and has its own rings, interrupts, filter
// tables and statistics.
package vxge

import (
	"fmt"
	"sync"

	"github.com/platinasystems/log"
	"github.com/platinasystems/vxge/hw"
	"github.com/platinasystems/vxge/internal/bits"
	"github.com/platinasystems/vxge/internal/titan"
)

// Adapter capabilities read once at attach.
type Caps struct {
	// Rth indirection table holds 4 items per steer instead of one.
	RthItableMulti bool
}

type DataRate uint8

const (
	DataRateUnknown DataRate = iota
	DataRate1G
	DataRate10G
)

var dataRateNames = [...]string{
	DataRateUnknown: "unknown",
	DataRate1G:      "1G",
	DataRate10G:     "10G",
}

func (r DataRate) String() string { return dataRateNames[r] }

// MsixEntry maps a device msi-x vector to its vpath and vpath interrupt index.
type MsixEntry struct {
	Vp    uint
	Index uint
	Valid bool
}

type Options struct {
	Rings     RingFactory
	Fifos     FifoFactory
	Messenger Messenger
	Events    EventHandler
}

type Device struct {
	cfg   Config
	regs  hw.Regs
	alloc hw.Allocator
	Options

	// Constant after attach.
	assignments uint64
	caps        Caps

	vpaths [titan.MaxVpaths]*VirtualPath

	// Serializes steering commands; steering registers are shared by all
	// vpaths of the function.
	steer_lock sync.Mutex

	// Serializes read-modify-write of shared mask registers.
	mask_lock sync.Mutex

	msix_lock sync.Mutex
	msix      [titan.MaxMsixVectors]MsixEntry

	link_lock sync.Mutex
	link_up   bool
	data_rate DataRate

	detach_lock sync.Mutex
	detached    bool
}

// Attach creates the device for an adapter function.  Vpaths assigned to the
// function are set up but not opened.
func Attach(cfg Config, regs hw.Regs, alloc hw.Allocator, opt Options) (d *Device, err error) {
	cfg.fill()
	if err = cfg.validate(); err != nil {
		return
	}
	if regs == nil || alloc == nil {
		err = fmt.Errorf("%s: attach: missing registers or allocator: %w", cfg.Name, ErrInvalidParameter)
		return
	}
	d = &Device{
		cfg:     cfg,
		regs:    regs,
		alloc:   alloc,
		Options: opt,
	}
	if d.Messenger == nil {
		d.Messenger = nop_messenger{}
	}
	if d.Events == nil {
		d.Events = nop_events{}
	}

	if reg(titan.AdapterStatus).get(d) == ^uint64(0) {
		err = fmt.Errorf("%s: attach: %w", cfg.Name, ErrSlotFreeze)
		return nil, err
	}

	d.assignments = reg(titan.VpathAssignments).get(d) & uint64(bits.Mask(titan.MaxVpaths))
	if d.assignments == 0 {
		err = fmt.Errorf("%s: attach: no vpaths assigned: %w", cfg.Name, ErrVpathNotAvailable)
		return nil, err
	}
	d.caps.RthItableMulti = reg(titan.FuncCaps).get(d)&titan.FuncCapsRthItableMulti != 0

	first := true
	bits.Word(d.assignments).ForeachSetBit(func(vp uint) {
		p := &VirtualPath{d: d, id: vp}
		d.vpaths[vp] = p
		for i := uint(0); i < titan.MaxIntrPerVp; i++ {
			d.msix[vp*titan.MaxIntrPerVp+i] = MsixEntry{Vp: vp, Index: i, Valid: true}
		}
		p.assign_interrupts()
		if first {
			d.link_up, d.data_rate = p.read_link()
			first = false
		}
	})

	log.Printf("info", "%s: attach %d vpaths %#x link %v %v", cfg.Name,
		bits.Word(d.assignments).NSetBits(), d.assignments, up_down(d.link_up), d.data_rate)
	return
}

// Detach fails while any vpath is open.  All vpaths are locked while
// checking so none may be opened meanwhile; afterwards every operation on
// device fails with ErrInvalidState.
func (d *Device) Detach() (err error) {
	d.ForeachVpath(func(p *VirtualPath) { p.mu.Lock() })
	defer d.ForeachVpath(func(p *VirtualPath) { p.mu.Unlock() })
	d.ForeachVpath(func(p *VirtualPath) {
		if err == nil && p.state != NotOpen {
			err = fmt.Errorf("%s: detach: vpath %d %v: %w", d.cfg.Name, p.id, p.state, ErrClientsAttached)
		}
	})
	if err != nil {
		return
	}
	d.IntrMaskAll()
	d.detach_lock.Lock()
	d.detached = true
	d.detach_lock.Unlock()
	log.Printf("info", "%s: detach", d.cfg.Name)
	return
}

func (d *Device) check_attached() error {
	d.detach_lock.Lock()
	defer d.detach_lock.Unlock()
	if d.detached {
		return fmt.Errorf("%s: detached: %w", d.cfg.Name, ErrInvalidState)
	}
	return nil
}

func (d *Device) Name() string        { return d.cfg.Name }
func (d *Device) Config() Config      { return d.cfg }
func (d *Device) Assignments() uint64 { return d.assignments }
func (d *Device) Caps() Caps          { return d.caps }

func (d *Device) IsAssigned(vp uint) bool {
	return vp < titan.MaxVpaths && bits.Word(d.assignments).IsSet(vp)
}

// Vpath returns assigned vpath with given id.
func (d *Device) Vpath(vp uint) (*VirtualPath, error) {
	if err := d.check_attached(); err != nil {
		return nil, err
	}
	if !d.IsAssigned(vp) {
		return nil, fmt.Errorf("%s: vpath %d: %w", d.cfg.Name, vp, ErrVpathNotAvailable)
	}
	return d.vpaths[vp], nil
}

// ForeachVpath calls f for each assigned vpath in id order.
func (d *Device) ForeachVpath(f func(p *VirtualPath)) {
	bits.Word(d.assignments).ForeachSetBit(func(vp uint) { f(d.vpaths[vp]) })
}

// Link returns last known port link state and data rate.
func (d *Device) Link() (up bool, rate DataRate) {
	d.link_lock.Lock()
	defer d.link_lock.Unlock()
	return d.link_up, d.data_rate
}

func (d *Device) set_link(up bool, rate DataRate) (changed bool) {
	d.link_lock.Lock()
	changed = d.link_up != up
	d.link_up = up
	if rate != DataRateUnknown {
		d.data_rate = rate
	}
	d.link_lock.Unlock()
	if !changed {
		return
	}
	log.Printf("info", "%s: link %s %v", d.cfg.Name, up_down(up), rate)
	if up {
		d.Events.LinkUp(d)
	} else {
		d.Events.LinkDown(d)
	}
	return
}

func up_down(up bool) string {
	if up {
		return "up"
	}
	return "down"
}

// Fatal error on vpath or device (vp == MsgBroadcast).
func (d *Device) crit(vp uint, err error) {
	if vp == MsgBroadcast {
		log.Print("crit", d.cfg.Name, ": ", err)
	} else {
		log.Print("crit", fmt.Sprintf("%s.vp%d: ", d.cfg.Name, vp), err)
	}
	d.Events.Crit(d, vp, err)
}
