// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"encoding/binary"
	"fmt"

	"github.com/platinasystems/vxge/internal/titan"
)

func (p *VirtualPath) stats_alloc() error {
	b, err := p.d.alloc.Alloc(titan.StatsBlockBytes)
	if err != nil {
		return fmt.Errorf("%v: stats block: %v: %w", p, err, ErrOutOfMemory)
	}
	p.stats_block = b
	p.stats_reinit()
	return nil
}

// Zero host statistics block and point hardware at it.
func (p *VirtualPath) stats_reinit() {
	b := p.stats_block
	for i := range b.Mem {
		b.Mem[i] = 0
	}
	vreg(titan.VpStatsDmaAddr).set(p, b.Addr)
}

func (p *VirtualPath) stats_free() {
	if p.stats_block != nil {
		p.d.alloc.Free(p.stats_block)
		p.stats_block = nil
	}
}

// Snapshot counters so later reads are deltas, then start dma.  With the pio
// method the snapshot is the immediate read.
func (p *VirtualPath) stats_enable() error {
	p.stats_read_pio(&p.saved)
	if p.d.cfg.StatsReadMethod == StatsReadDma {
		reg(titan.StatsCfg0).or(p.d, 1<<p.id)
	}
	return nil
}

func (p *VirtualPath) stats_disable() {
	reg(titan.StatsCfg0).andnot(p.d, 1<<p.id)
}

// Read one counter by offset in vpath register block.
func (p *VirtualPath) read_counter(o uint64) uint64 { return vreg(o).get(p) }

func (p *VirtualPath) stats_read_pio(s *HwStats) {
	for i := range s.Counters {
		s.Counters[i] = p.read_counter(HwStat(i).offset())
	}
	p.stats_read_dbg(s)
}

func (p *VirtualPath) stats_read_dbg(s *HwStats) {
	for i := range s.Dbg {
		s.Dbg[i] = p.read_counter(DbgStat(i).offset())
	}
}

// Ask hardware to copy counters to host block and wait for copy to finish.
func (p *VirtualPath) stats_read_dma(s *HwStats) (err error) {
	r := vreg(titan.VpStatsCfg)
	r.set(p, titan.StatsCfgStartHostCopy)
	p.d.regs.Barrier()
	what := fmt.Sprintf("vp%d stats copy", p.id)
	if _, err = p.d.register_poll(what, r.offset(p), titan.StatsCfgStartHostCopy, 0); err != nil {
		return
	}
	b := p.stats_block.Mem
	for i := range s.Counters {
		s.Counters[i] = binary.LittleEndian.Uint64(b[8*i:])
	}
	p.stats_read_dbg(s)
	return
}

func (p *VirtualPath) stats_read(s *HwStats) error {
	if p.d.cfg.StatsReadMethod == StatsReadDma {
		return p.stats_read_dma(s)
	}
	p.stats_read_pio(s)
	return nil
}

// Counters since stats were enabled or last cleared.
func (p *VirtualPath) stats_get() (s HwStats, err error) {
	var cur HwStats
	if err = p.stats_read(&cur); err != nil {
		return
	}
	s.sub(&cur, &p.saved)
	return
}

func (h *Handle) StatsEnable() error { return h.with_open((*VirtualPath).stats_enable) }

func (h *Handle) StatsDisable() error { return h.vpath_locked((*VirtualPath).stats_disable) }

// StatsGet returns hardware counters of vpath.  With dma read method
// statistics must be enabled.
func (h *Handle) StatsGet() (s HwStats, err error) {
	err = h.with_open(func(p *VirtualPath) (err error) {
		s, err = p.stats_get()
		return
	})
	return
}

// StatsClear zeros hardware and software counters.
func (h *Handle) StatsClear() error {
	return h.vpath_locked(func(p *VirtualPath) {
		p.stats_read_pio(&p.saved)
		if p.stats_block != nil {
			b := p.stats_block.Mem
			for i := range b {
				b[i] = 0
			}
		}
		p.sw = SwStats{}
	})
}

// Counter reads one hardware counter by register.
func (h *Handle) Counter(i HwStat) (v uint64, err error) {
	err = h.vpath_locked(func(p *VirtualPath) {
		v = delta(p.read_counter(i.offset()), p.saved.Counters[i])
	})
	return
}

func (h *Handle) DbgCounter(i DbgStat) (v uint64, err error) {
	err = h.vpath_locked(func(p *VirtualPath) {
		v = delta(p.read_counter(i.offset()), p.saved.Dbg[i])
	})
	return
}

// SwStats returns software counters of vpath.
func (h *Handle) SwStats() (SwStats, error) {
	p, err := h.lock()
	if err != nil {
		return SwStats{}, err
	}
	defer p.mu.Unlock()
	return p.sw, nil
}

// Counters calls fn for each non-zero hardware and software counter of each
// open vpath.
func (d *Device) Counters(fn func(vp uint, name string, v uint64)) (err error) {
	d.ForeachVpath(func(p *VirtualPath) {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.state != Open || err != nil {
			return
		}
		s, e := p.stats_get()
		if e != nil {
			err = e
			return
		}
		s.Foreach(false, func(name string, v uint64) { fn(p.id, name, v) })
		p.sw.Foreach(false, func(name string, v uint64) { fn(p.id, name, v) })
	})
	return
}
