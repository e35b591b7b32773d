// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/platinasystems/vxge/hw"
	"github.com/platinasystems/vxge/internal/sim"
	"github.com/platinasystems/vxge/internal/test"
)

type fake_ring struct {
	vp      uint
	attr    RingAttr
	pending []Completion
	resets  int
	deleted bool
}

func (r *fake_ring) PollNext() (c Completion, ok bool) {
	if len(r.pending) == 0 {
		return
	}
	c, r.pending = r.pending[0], r.pending[1:]
	return c, true
}
func (r *fake_ring) Reset()                 { r.resets++; r.pending = nil }
func (r *fake_ring) Delete()                { r.deleted = true }
func (r *fake_ring) FirstBlockAddr() uint64 { return 0x1000 * uint64(r.vp+1) }

type fake_fifo struct {
	vp      uint
	attr    FifoAttr
	pending []Completion
	resets  int
	deleted bool
}

func (f *fake_fifo) PollNext() (c Completion, ok bool) {
	if len(f.pending) == 0 {
		return
	}
	c, f.pending = f.pending[0], f.pending[1:]
	return c, true
}
func (f *fake_fifo) Reset()  { f.resets++; f.pending = nil }
func (f *fake_fifo) Delete() { f.deleted = true }

var errNoRing = errors.New("no ring memory")

type fake_factory struct {
	rings    map[uint]*fake_ring
	fifos    map[uint]*fake_fifo
	ring_err error
}

func (f *fake_factory) CreateRing(vp uint, attr RingAttr) (Ring, error) {
	if f.ring_err != nil {
		return nil, f.ring_err
	}
	r := &fake_ring{vp: vp, attr: attr}
	f.rings[vp] = r
	return r, nil
}

func (f *fake_factory) CreateFifo(vp uint, attr FifoAttr) (Fifo, error) {
	x := &fake_fifo{vp: vp, attr: attr}
	f.fifos[vp] = x
	return x, nil
}

type posted struct {
	vp, dst uint
	typ     MsgType
}

type fake_messenger struct {
	mu   sync.Mutex
	msgs []posted
}

func (m *fake_messenger) Post(vp, dst uint, typ MsgType, payload uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.msgs = append(m.msgs, posted{vp, dst, typ})
	return nil
}

func (m *fake_messenger) types() (r []MsgType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.msgs {
		r = append(r, x.typ)
	}
	return
}

type crit_event struct {
	vp  uint
	err error
}

type fake_events struct {
	ups, downs int
	crits      []crit_event
}

func (e *fake_events) LinkUp(d *Device)                   { e.ups++ }
func (e *fake_events) LinkDown(d *Device)                 { e.downs++ }
func (e *fake_events) Crit(d *Device, vp uint, err error) { e.crits = append(e.crits, crit_event{vp, err}) }

// Device attached to a simulated adapter.
type tester struct {
	test.Assert
	a      *sim.Adapter
	alloc  *hw.HeapAllocator
	d      *Device
	f      *fake_factory
	m      *fake_messenger
	e      *fake_events
	sleeps int
}

func test_config() Config {
	return Config{Name: "t", PollMillis: 20}
}

func new_tester(t *testing.T, cfg Config) (x *tester) {
	t.Helper()
	alloc := hw.NewHeapAllocator(0)
	x = &tester{
		Assert: test.Assert{TB: t},
		a:      sim.New(alloc),
		alloc:  alloc,
		f:      &fake_factory{rings: make(map[uint]*fake_ring), fifos: make(map[uint]*fake_fifo)},
		m:      &fake_messenger{},
		e:      &fake_events{},
	}
	x.attach(cfg)
	return
}

func (x *tester) attach(cfg Config) {
	x.Helper()
	if cfg.Sleep == nil {
		cfg.Sleep = func(time.Duration) { x.sleeps++ }
	}
	d, err := Attach(cfg, x.a, x.alloc, Options{
		Rings:     x.f,
		Fifos:     x.f,
		Messenger: x.m,
		Events:    x.e,
	})
	x.Nil(err)
	x.d = d
}

func (x *tester) open(vp uint, cfg VpathConfig) *Handle {
	x.Helper()
	h, err := x.d.Open(vp, cfg, nil, nil)
	x.Nil(err)
	return h
}

func ring_fifo() VpathConfig {
	return VpathConfig{
		Ring: RingConfig{Enable: true, Blocks: 2},
		Fifo: FifoConfig{Enable: true, Blocks: 1},
	}
}
