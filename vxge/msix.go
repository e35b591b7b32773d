// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"fmt"

	"github.com/platinasystems/vxge/internal/titan"
)

func (d *Device) msix_check(vector uint) error {
	if err := d.check_attached(); err != nil {
		return err
	}
	if vector >= titan.MaxMsixVectors {
		return fmt.Errorf("%s: msi-x vector %d: %w", d.cfg.Name, vector, ErrInvalidIndex)
	}
	return nil
}

// Mask registers are arrays of 64 bit words.
func msix_bit(vector uint) (o, b uint64) { return 8 * uint64(vector/64), 1 << (vector % 64) }

// MsixOwner returns vpath and vpath interrupt index of vector.
func (d *Device) MsixOwner(vector uint) (e MsixEntry, err error) {
	if err = d.msix_check(vector); err != nil {
		return
	}
	d.msix_lock.Lock()
	e = d.msix[vector]
	d.msix_lock.Unlock()
	if !e.Valid {
		err = fmt.Errorf("%s: msi-x vector %d unassigned: %w", d.cfg.Name, vector, ErrInvalidIndex)
	}
	return
}

func (d *Device) MsixMask(vector uint) error {
	if err := d.msix_check(vector); err != nil {
		return err
	}
	o, b := msix_bit(vector)
	reg(titan.SetMsixMaskVect+o).set(d, b)
	d.regs.Barrier()
	return nil
}

func (d *Device) MsixUnmask(vector uint) error {
	if err := d.msix_check(vector); err != nil {
		return err
	}
	o, b := msix_bit(vector)
	reg(titan.ClearMsixMaskVect+o).set(d, b)
	d.regs.Barrier()
	return nil
}

// MsixClear re-arms vector after its interrupt has been serviced.
func (d *Device) MsixClear(vector uint) error {
	if err := d.msix_check(vector); err != nil {
		return err
	}
	o, b := msix_bit(vector)
	if d.cfg.IntrMode == IntrModeMsixOneShot {
		reg(titan.ClrMsixOneShotVec+o).set(d, b)
	} else {
		reg(titan.ClearMsixMaskVect+o).set(d, b)
	}
	d.regs.Barrier()
	return nil
}

// MsixMasked reports whether vector is masked.
func (d *Device) MsixMasked(vector uint) (bool, error) {
	if err := d.msix_check(vector); err != nil {
		return false, err
	}
	o, b := msix_bit(vector)
	return reg(titan.MsixMaskVect+o).get(d)&b != 0, nil
}

func (d *Device) foreach_msix(f func(vector uint)) {
	d.msix_lock.Lock()
	defer d.msix_lock.Unlock()
	for i := range d.msix {
		if d.msix[i].Valid {
			f(uint(i))
		}
	}
}

// MsixMaskAll masks every assigned vector of device.
func (d *Device) MsixMaskAll() {
	d.foreach_msix(func(v uint) { d.MsixMask(v) })
}

func (d *Device) MsixUnmaskAll() {
	d.foreach_msix(func(v uint) { d.MsixUnmask(v) })
}

// Interrupt numbers of vpath from device vector map; default vector of
// interrupt i is vp*titan.MaxIntrPerVp + i.
func (p *VirtualPath) assign_interrupts() {
	d := p.d
	d.msix_lock.Lock()
	defer d.msix_lock.Unlock()
	for v := range d.msix {
		if e := d.msix[v]; e.Valid && e.Vp == p.id {
			p.intr[e.Index] = uint(v)
		}
	}
}

// MsixSet assigns device vectors to vpath interrupts, indexed by titan.IntrTx
// etc.  A vector owned by another vpath may not be taken.
func (h *Handle) MsixSet(vectors [titan.MaxIntrPerVp]uint) (err error) {
	p, err := h.lock_open()
	if err != nil {
		return
	}
	defer p.mu.Unlock()
	d := p.d
	d.msix_lock.Lock()
	defer d.msix_lock.Unlock()
	for i, v := range vectors {
		if err = d.msix_check(v); err != nil {
			return
		}
		if e := d.msix[v]; e.Valid && e.Vp != p.id {
			return fmt.Errorf("%v: intr %d: msi-x vector %d owned by vp%d: %w", p, i, v, e.Vp, ErrInvalidIndex)
		}
		for j := 0; j < i; j++ {
			if vectors[j] == v {
				return fmt.Errorf("%v: msi-x vector %d assigned twice: %w", p, v, ErrInvalidIndex)
			}
		}
	}
	for _, v := range p.intr {
		d.msix[v] = MsixEntry{}
	}
	for i, v := range vectors {
		d.msix[v] = MsixEntry{Vp: p.id, Index: uint(i), Valid: true}
		p.intr[i] = v
	}
	p.intr_config()
	return
}

// Run f on device vector of vpath interrupt index i with vpath locked.
func (h *Handle) msix_vector(i uint, f func(d *Device, v uint) error) error {
	return h.with_open(func(p *VirtualPath) error {
		if i >= titan.MaxIntrPerVp {
			return fmt.Errorf("%v: interrupt index %d: %w", p, i, ErrInvalidIndex)
		}
		return f(p.d, p.intr[i])
	})
}

// MsixMask masks vector of vpath interrupt index i (titan.IntrTx etc.).
func (h *Handle) MsixMask(i uint) error   { return h.msix_vector(i, (*Device).MsixMask) }
func (h *Handle) MsixUnmask(i uint) error { return h.msix_vector(i, (*Device).MsixUnmask) }
func (h *Handle) MsixClear(i uint) error  { return h.msix_vector(i, (*Device).MsixClear) }

// MsixMaskAll masks all vectors of vpath.
func (h *Handle) MsixMaskAll() error {
	for i := uint(0); i < titan.MaxIntrPerVp; i++ {
		if err := h.MsixMask(i); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handle) MsixUnmaskAll() error {
	for i := uint(0); i < titan.MaxIntrPerVp; i++ {
		if err := h.MsixUnmask(i); err != nil {
			return err
		}
	}
	return nil
}
