// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"errors"
	"fmt"

	"github.com/platinasystems/vxge/internal/titan"
)

// Reason for a vpath interrupt.
type Reason uint8

const (
	ReasonTx Reason = 1 << iota
	ReasonRx
	ReasonAlarm
)

func (r Reason) String() (s string) {
	for i, n := range [...]string{"tx", "rx", "alarm"} {
		if r&(1<<uint(i)) != 0 {
			if s != "" {
				s += "|"
			}
			s += n
		}
	}
	if s == "" {
		s = "none"
	}
	return
}

func (p *VirtualPath) tim_bits() uint64 { return titan.TimIntTx(p.id) | titan.TimIntRx(p.id) }

// Find out why interrupt line fired.
func (p *VirtualPath) begin_irq(skip_alarms bool) (r Reason, err error) {
	d := p.d
	v := reg(titan.GeneralIntStatus).get(d)
	if v == 0 {
		p.sw[SwWrongIrq]++
		return 0, ErrWrongIrq
	}
	if v == ^uint64(0) && reg(titan.AdapterStatus).get(d) == ^uint64(0) {
		err = fmt.Errorf("%s: %w", d.cfg.Name, ErrSlotFreeze)
		d.crit(MsgBroadcast, err)
		return
	}
	if v&titan.GeneralIntTraffic(p.id) != 0 {
		st := reg(titan.TimIntStatus0).get(d)
		if st&titan.TimIntTx(p.id) != 0 {
			r |= ReasonTx
		}
		if st&titan.TimIntRx(p.id) != 0 {
			r |= ReasonRx
		}
		if r != 0 {
			p.sw[SwTrafficIrq]++
			return
		}
	}
	if v&titan.GeneralIntAlarm(p.id) != 0 {
		p.sw[SwAlarmIrq]++
		r = ReasonAlarm
		if !skip_alarms {
			err = p.alarm_process(false)
		}
		return
	}
	// Another vpath's interrupt.
	p.sw[SwWrongIrq]++
	return 0, ErrWrongIrq
}

// Poll ring and fifo alternately for completions.
func (p *VirtualPath) continue_irq(h *Handle) (n uint) {
	for i := uint(0); i < p.d.cfg.IsrPollingCnt; i++ {
		got := false
		if p.ring != nil {
			if c, ok := p.ring.PollNext(); ok {
				got = true
				n++
				if !h.callback(c) {
					break
				}
			}
		}
		if p.fifo != nil {
			if c, ok := p.fifo.PollNext(); ok {
				got = true
				n++
				if !h.callback(c) {
					break
				}
			}
		}
		if !got {
			break
		}
	}
	p.sw[SwCompletions] += uint64(n)
	return
}

// BeginIrq reads interrupt status.  ErrWrongIrq means interrupt was not
// raised by this vpath.  Unless skip_alarms is set, alarms are processed
// before returning ReasonAlarm.
func (h *Handle) BeginIrq(skip_alarms bool) (r Reason, err error) {
	p, err := h.lock_open()
	if err != nil {
		return
	}
	defer p.mu.Unlock()
	return p.begin_irq(skip_alarms)
}

// ContinueIrq calls handle's callback for completed descriptors, at most
// Config.IsrPollingCnt polls of ring and fifo.  Returns number of completions.
func (h *Handle) ContinueIrq() (n uint, err error) {
	p, err := h.lock_open()
	if err != nil {
		return
	}
	defer p.mu.Unlock()
	n = p.continue_irq(h)
	return
}

// AlarmProcess decodes and clears alarms of vpath.
func (h *Handle) AlarmProcess(skip_alarms bool) error {
	p, err := h.lock_open()
	if err != nil {
		return err
	}
	defer p.mu.Unlock()
	return p.alarm_process(skip_alarms)
}

// HandleIrq services an interrupt: mask, find reason, process completions or
// alarms, clear cause and unmask.  Interrupts are left masked when a fatal
// error is returned and when alarms fired with skip_alarms set; the caller
// unmasks with UnmaskAll when done.
func (h *Handle) HandleIrq(skip_alarms bool) (err error) {
	p, err := h.lock_open()
	if err != nil {
		return
	}
	defer p.mu.Unlock()

	p.mask_all()
	r, err := p.begin_irq(true)
	switch {
	case errors.Is(err, ErrWrongIrq):
		p.unmask_all()
		return
	case err != nil:
		return
	}

	if r&ReasonAlarm != 0 {
		err = p.alarm_process(skip_alarms)
		if skip_alarms || IsFatal(err) {
			return
		}
		p.unmask_all()
		return
	}

	p.continue_irq(h)
	p.clear_cause(p.tim_bits())
	p.unmask_all()
	return
}

// Write 1 to clear traffic interrupt status.
func (p *VirtualPath) clear_cause(m uint64) {
	reg(titan.TimIntStatus0).set(p.d, m)
	p.d.regs.Barrier()
}

func (p *VirtualPath) mask_all() {
	d := p.d
	if p.mask_depth == 0 {
		d.mask_lock.Lock()
		p.saved_mask.general = vreg(titan.VpGeneralIntMask).get(p)
		p.saved_mask.tim = reg(titan.TimIntMask0).get(d) & p.tim_bits()
		d.mask_lock.Unlock()
	}
	p.mask_depth++
	vreg(titan.VpGeneralIntMask).set(p, ^uint64(0))
	reg(titan.TimIntMask0).or(d, p.tim_bits())
	d.regs.Barrier()
}

// Restore mask pattern saved by outermost mask_all.  Without a preceding
// mask_all all vpath interrupts are unmasked.
func (p *VirtualPath) unmask_all() {
	d := p.d
	general, tim := uint64(0), uint64(0)
	switch p.mask_depth {
	case 0:
	case 1:
		general, tim = p.saved_mask.general, p.saved_mask.tim
		p.mask_depth = 0
	default:
		p.mask_depth--
		return
	}
	vreg(titan.VpGeneralIntMask).set(p, general)
	d.mask_lock.Lock()
	v := reg(titan.TimIntMask0).get(d)
	v = v&^p.tim_bits() | tim
	reg(titan.TimIntMask0).set(d, v)
	d.mask_lock.Unlock()
	d.regs.Barrier()
}

// Alarm mask with every known alarm class enabled.
const general_int_mask_enabled = ^uint64(titan.VpGeneralIntKnown)

// Clear stale alarms then unmask alarm and traffic interrupts.
func (p *VirtualPath) intr_enable() {
	for _, r := range alarm_cause_regs {
		r.set(p, ^uint64(0))
	}
	p.mask_depth = 0
	vreg(titan.VpGeneralIntMask).set(p, general_int_mask_enabled)
	reg(titan.TimIntMask0).andnot(p.d, p.tim_bits())
	p.d.regs.Barrier()
}

func (p *VirtualPath) intr_disable() {
	p.mask_depth = 0
	vreg(titan.VpGeneralIntMask).set(p, ^uint64(0))
	reg(titan.TimIntMask0).or(p.d, p.tim_bits())
	p.d.regs.Barrier()
}

// IntrMaskAll masks alarm and traffic interrupts of all vpaths at the
// adapter; vpath mask registers keep their state.
func (d *Device) IntrMaskAll() {
	reg(titan.TitanMaskAllInt).set(d, titan.TitanMaskAllIntAlarm|titan.TitanMaskAllIntTraffic)
	d.regs.Barrier()
}

func (d *Device) IntrUnmaskAll() {
	reg(titan.TitanMaskAllInt).set(d, 0)
	d.regs.Barrier()
}

func (h *Handle) vpath_locked(f func(p *VirtualPath)) error {
	p, err := h.lock_open()
	if err != nil {
		return err
	}
	defer p.mu.Unlock()
	f(p)
	return nil
}

func (h *Handle) IntrEnable() error  { return h.vpath_locked((*VirtualPath).intr_enable) }
func (h *Handle) IntrDisable() error { return h.vpath_locked((*VirtualPath).intr_disable) }

// MaskAll masks every interrupt of vpath; UnmaskAll restores mask state from
// before the outermost MaskAll.
func (h *Handle) MaskAll() error   { return h.vpath_locked((*VirtualPath).mask_all) }
func (h *Handle) UnmaskAll() error { return h.vpath_locked((*VirtualPath).unmask_all) }

func (h *Handle) tim_mask(r Reason, mask bool) error {
	return h.vpath_locked(func(p *VirtualPath) {
		var m uint64
		if r&ReasonTx != 0 {
			m |= titan.TimIntTx(p.id)
		}
		if r&ReasonRx != 0 {
			m |= titan.TimIntRx(p.id)
		}
		if mask {
			reg(titan.TimIntMask0).or(p.d, m)
		} else {
			reg(titan.TimIntMask0).andnot(p.d, m)
		}
	})
}

func (h *Handle) MaskTx() error     { return h.tim_mask(ReasonTx, true) }
func (h *Handle) UnmaskTx() error   { return h.tim_mask(ReasonTx, false) }
func (h *Handle) MaskRx() error     { return h.tim_mask(ReasonRx, true) }
func (h *Handle) UnmaskRx() error   { return h.tim_mask(ReasonRx, false) }
func (h *Handle) MaskTxRx() error   { return h.tim_mask(ReasonTx|ReasonRx, true) }
func (h *Handle) UnmaskTxRx() error { return h.tim_mask(ReasonTx|ReasonRx, false) }

func (h *Handle) clear(r Reason) error {
	return h.vpath_locked(func(p *VirtualPath) {
		var m uint64
		if r&ReasonTx != 0 {
			m |= titan.TimIntTx(p.id)
		}
		if r&ReasonRx != 0 {
			m |= titan.TimIntRx(p.id)
		}
		p.clear_cause(m)
	})
}

func (h *Handle) ClearTx() error   { return h.clear(ReasonTx) }
func (h *Handle) ClearRx() error   { return h.clear(ReasonRx) }
func (h *Handle) ClearTxRx() error { return h.clear(ReasonTx | ReasonRx) }

// Masked reports per vpath mask state: alarm mask register and tx/rx bits of
// shared timer mask.
func (h *Handle) Masked() (general uint64, tx, rx bool, err error) {
	err = h.vpath_locked(func(p *VirtualPath) {
		general = vreg(titan.VpGeneralIntMask).get(p)
		v := reg(titan.TimIntMask0).get(p.d)
		tx = v&titan.TimIntTx(p.id) != 0
		rx = v&titan.TimIntRx(p.id) != 0
	})
	return
}
