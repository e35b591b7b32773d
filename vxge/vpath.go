// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"fmt"
	"sync"

	"github.com/platinasystems/log"
	"github.com/platinasystems/vxge/hw"
	"github.com/platinasystems/vxge/internal/titan"
	uuid "github.com/satori/go.uuid"
)

type State uint8

const (
	NotOpen State = iota
	Open
	// Reset asserted; ResetPoll returns vpath to Open.
	ResetRequested
)

var stateNames = [...]string{
	NotOpen:        "not-open",
	Open:           "open",
	ResetRequested: "reset-requested",
}

func (s State) String() string { return stateNames[s] }

// VirtualPath is one hardware virtual path of the device.
type VirtualPath struct {
	d  *Device
	id uint

	// Serializes open, close, reset and interrupt handling.
	mu sync.Mutex

	state   State
	cfg     VpathConfig
	handles []*Handle

	ring Ring
	fifo Fifo

	// From management registers at open.
	link_up       bool
	data_rate     DataRate
	vsport        uint
	session_first bool
	bmap_root     uint64
	max_mtu       uint32

	mtu      uint32
	max_nofl uint32
	promisc  bool

	// Interrupt (msi-x vector) numbers indexed by titan.IntrTx etc.
	intr [titan.MaxIntrPerVp]uint

	// Last written timer configuration; some fields read back as zero.
	tim_cfg1, tim_cfg2, tim_cfg3 [titan.MaxIntrPerVp]uint64

	mask_depth uint
	saved_mask struct{ general, tim uint64 }

	stats_block *hw.Block
	saved       HwStats
	sw          SwStats
	last_alarms []AlarmStatus
}

// Handle is a client lease on an open vpath.
type Handle struct {
	p     *VirtualPath
	id    uuid.UUID
	cb    Callback
	ctx   interface{}
	valid bool
}

func (p *VirtualPath) Id() uint { return p.id }

func (p *VirtualPath) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *VirtualPath) String() string { return fmt.Sprintf("%s.vp%d", p.d.cfg.Name, p.id) }

func (p *VirtualPath) logf(pri, format string, args ...interface{}) {
	log.Print(pri, p.String()+": "+fmt.Sprintf(format, args...))
}

func (h *Handle) Id() uuid.UUID        { return h.id }
func (h *Handle) Vpath() *VirtualPath  { return h.p }
func (h *Handle) VpathId() uint        { return h.p.id }
func (h *Handle) Context() interface{} { return h.ctx }

func (h *Handle) callback(c Completion) bool {
	if h.cb == nil {
		return true
	}
	return h.cb(h, c, h.ctx)
}

// Handle's vpath, returned locked.  Released and closed handles are invalid.
func (h *Handle) lock() (p *VirtualPath, err error) {
	if h == nil || h.p == nil {
		return nil, ErrInvalidHandle
	}
	p = h.p
	p.mu.Lock()
	if !h.valid {
		p.mu.Unlock()
		return nil, ErrInvalidHandle
	}
	return
}

// Same for a vpath which must be open.
func (h *Handle) lock_open() (p *VirtualPath, err error) {
	if p, err = h.lock(); err != nil {
		return
	}
	if err = p.check_state(Open); err != nil {
		p.mu.Unlock()
		p = nil
	}
	return
}

// Run f with handle's open vpath locked.
func (h *Handle) with_open(f func(p *VirtualPath) error) error {
	p, err := h.lock_open()
	if err != nil {
		return err
	}
	defer p.mu.Unlock()
	return f(p)
}

// Called with vpath lock held.
func (p *VirtualPath) check_state(want State) error {
	if p.state == want {
		return nil
	}
	switch {
	case want == Open && p.state == NotOpen:
		return fmt.Errorf("%v: %w", p, ErrNotOpen)
	case want == NotOpen:
		return fmt.Errorf("%v: %w", p, ErrAlreadyOpen)
	}
	return fmt.Errorf("%v: %v: %w", p, p.state, ErrInvalidState)
}

func (p *VirtualPath) new_handle(cb Callback, ctx interface{}) (h *Handle) {
	h = &Handle{p: p, id: uuid.NewV4(), cb: cb, ctx: ctx, valid: true}
	p.handles = append(p.handles, h)
	return
}

// Open vpath with given configuration.  Completions found while handling
// interrupts are passed to cb along with ctx.
func (d *Device) Open(vp uint, cfg VpathConfig, cb Callback, ctx interface{}) (h *Handle, err error) {
	p, err := d.Vpath(vp)
	if err != nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err = d.check_attached(); err != nil {
		return
	}
	if err = p.check_state(NotOpen); err != nil {
		return
	}
	p.cfg = cfg
	if err = p.open(); err != nil {
		p.cfg = VpathConfig{}
		return
	}
	h = p.new_handle(cb, ctx)
	p.state = Open
	p.logf("info", "open handle %v mtu %d intr %v", h.id, p.mtu, p.intr)
	return
}

// OpenConfigured opens vpath with its configuration from Config.Vpaths.
func (d *Device) OpenConfigured(vp uint, cb Callback, ctx interface{}) (*Handle, error) {
	return d.Open(vp, d.cfg.Vpaths[vp], cb, ctx)
}

func (p *VirtualPath) open() (err error) {
	d := p.d
	p.reset_assert()
	if e := p.reset_wait(); e != nil {
		// Some adapters report already reset.
		p.logf("warn", "open: %v", e)
	}
	p.read_mgmt()
	p.assign_interrupts()
	p.mask_depth = 0
	p.sw = SwStats{}
	p.last_alarms = nil

	if p.mtu, err = p.config_mtu(); err != nil {
		return
	}
	if err = p.hw_init(); err != nil {
		return
	}

	defer func() {
		if err != nil {
			p.teardown()
		}
	}()
	if p.cfg.Ring.Enable {
		if d.Rings == nil {
			err = fmt.Errorf("%v: ring enabled without ring factory: %w", p, ErrInvalidParameter)
			return
		}
		attr := RingAttr{Blocks: p.cfg.Ring.Blocks, Mtu: p.mtu, ScatterMode: p.cfg.Ring.ScatterMode}
		if p.ring, err = d.Rings.CreateRing(p.id, attr); err != nil {
			p.ring = nil
			err = fmt.Errorf("%v: create ring: %w", p, err)
			return
		}
		p.prc_config()
	}
	if p.cfg.Fifo.Enable {
		if d.Fifos == nil {
			err = fmt.Errorf("%v: fifo enabled without fifo factory: %w", p, ErrInvalidParameter)
			return
		}
		attr := FifoAttr{Blocks: p.cfg.Fifo.Blocks, Length: p.cfg.Fifo.Length}
		if p.fifo, err = d.Fifos.CreateFifo(p.id, attr); err != nil {
			p.fifo = nil
			err = fmt.Errorf("%v: create fifo: %w", p, err)
			return
		}
	}
	if err = p.stats_alloc(); err != nil {
		return
	}
	err = p.stats_enable()
	return
}

// Release resources in reverse order of acquisition.
func (p *VirtualPath) teardown() {
	p.stats_free()
	if p.fifo != nil {
		p.fifo.Delete()
		p.fifo = nil
	}
	if p.ring != nil {
		p.ring.Delete()
		p.ring = nil
	}
}

// Share adds a lease on an open vpath.
func (h *Handle) Share(cb Callback, ctx interface{}) (n *Handle, err error) {
	p, err := h.lock_open()
	if err != nil {
		return
	}
	defer p.mu.Unlock()
	n = p.new_handle(cb, ctx)
	return
}

// Handles returns number of leases on vpath.
func (p *VirtualPath) Handles() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handles)
}

// Handle looks up lease by id.
func (p *VirtualPath) Handle(id uuid.UUID) (*Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, h := range p.handles {
		if uuid.Equal(h.id, id) {
			return h, nil
		}
	}
	return nil, fmt.Errorf("%v: handle %v: %w", p, id, ErrInvalidHandle)
}

func (p *VirtualPath) remove_handle(h *Handle) {
	for i, x := range p.handles {
		if uuid.Equal(x.id, h.id) {
			copy(p.handles[i:], p.handles[i+1:])
			p.handles[len(p.handles)-1] = nil
			p.handles = p.handles[:len(p.handles)-1]
			break
		}
	}
	h.valid = false
}

// Release drops a lease which is not the last; the last lease must Close.
func (h *Handle) Release() (err error) {
	p, err := h.lock()
	if err != nil {
		return
	}
	defer p.mu.Unlock()
	if len(p.handles) <= 1 {
		return fmt.Errorf("%v: release of last handle: %w", p, ErrInvalidState)
	}
	p.remove_handle(h)
	return
}

// Close last handle of vpath: stop hardware and free resources.  A vpath
// whose reset did not complete may be closed.
func (h *Handle) Close() (err error) {
	p, err := h.lock()
	if err != nil {
		return
	}
	defer p.mu.Unlock()
	if p.state != ResetRequested {
		if err = p.check_state(Open); err != nil {
			return
		}
	}
	if len(p.handles) > 1 {
		return fmt.Errorf("%v: %d handles: %w", p, len(p.handles), ErrClientsAttached)
	}
	p.intr_disable()
	p.stats_disable()
	p.teardown()
	p.remove_handle(h)
	p.state = NotOpen
	p.cfg = VpathConfig{}
	p.logf("info", "close handle %v", h.id)
	if err := p.d.Messenger.Post(p.id, MsgBroadcast, MsgResetEnd, 0); err != nil {
		p.logf("err", "post %v: %v", MsgResetEnd, err)
	}
	return nil
}

// Enable receive path of open vpath.
func (h *Handle) Enable() error {
	return h.with_open(func(p *VirtualPath) error {
		reg(titan.CmnRsthdlrCfg1).or(p.d, 1<<p.id)
		if p.ring != nil {
			vreg(titan.VpPrcCfg4).or(p, titan.PrcCfg4InService)
		}
		return nil
	})
}

func (h *Handle) Disable() error {
	return h.with_open(func(p *VirtualPath) error {
		reg(titan.CmnRsthdlrCfg1).andnot(p.d, 1<<p.id)
		return nil
	})
}

func (p *VirtualPath) IsEnabled() bool {
	return reg(titan.CmnRsthdlrCfg1).get(p.d)&(1<<p.id) != 0
}

func (p *VirtualPath) MaxMtu() uint32     { return p.max_mtu }
func (p *VirtualPath) Vsport() uint       { return p.vsport }
func (p *VirtualPath) SessionFirst() bool { return p.session_first }
func (p *VirtualPath) BmapRoot() uint64   { return p.bmap_root }

// Interrupt returns msi-x vector of vpath interrupt index (titan.IntrTx etc.).
func (p *VirtualPath) Interrupt(i uint) uint { return p.intr[i] }

// MaxFifoLength is the doorbell fifo depth available to the vpath.
func (p *VirtualPath) MaxFifoLength() uint32 { return p.max_nofl }
