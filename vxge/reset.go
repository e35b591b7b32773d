// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"fmt"

	"github.com/platinasystems/vxge/internal/titan"
)

// Assert vpath reset; hardware clears reset in progress bit when done.
func (p *VirtualPath) reset_assert() {
	reg(titan.CmnRsthdlrCfg0).set(p.d, 1<<p.id)
	p.d.regs.Barrier()
}

func (p *VirtualPath) reset_wait() error {
	_, err := p.d.register_poll(fmt.Sprintf("vp%d reset", p.id), titan.VpathRstInProg, 1<<p.id, 0)
	return err
}

// Stop receive: zero max frame length and wait for receive controller idle.
func (p *VirtualPath) rx_quiesce() error {
	vreg(titan.VpRxmacVcfg0).set_field(p, titan.RxmacVcfg0MaxFrmLen, 0)
	p.d.regs.Barrier()
	o := vreg(titan.VpPrcStatus1).offset(p)
	_, err := p.d.register_poll(fmt.Sprintf("vp%d rx quiesce", p.id), o,
		titan.PrcStatus1Quiescent, titan.PrcStatus1Quiescent)
	return err
}

// Reset quiesces receive and asserts vpath reset.  Returns without waiting
// for reset to complete; ResetPoll must be called to finish.  Many vpaths may
// be reset before polling any of them.
func (h *Handle) Reset() (err error) {
	p, err := h.lock_open()
	if err != nil {
		return
	}
	defer p.mu.Unlock()
	if err = p.rx_quiesce(); err != nil {
		return
	}
	if e := p.d.Messenger.Post(p.id, MsgBroadcast, MsgResetBegin, 0); e != nil {
		p.logf("err", "post %v: %v", MsgResetBegin, e)
	}
	p.reset_assert()
	p.state = ResetRequested
	return
}

// ResetPoll waits for reset asserted by Reset to complete then reinitializes
// hardware as done by open.  On timeout vpath stays in ResetRequested and
// ResetPoll may be called again.
func (h *Handle) ResetPoll() (err error) {
	p, err := h.lock()
	if err != nil {
		return
	}
	defer p.mu.Unlock()
	if err = p.check_state(ResetRequested); err != nil {
		return
	}
	if err = p.reset_wait(); err != nil {
		return
	}
	if p.ring != nil {
		p.ring.Reset()
	}
	if p.fifo != nil {
		p.fifo.Reset()
	}
	p.sw = SwStats{}
	p.mask_depth = 0

	if err = p.hw_init(); err != nil {
		return
	}
	if p.ring != nil {
		p.prc_config()
	}
	p.stats_reinit()
	if err = p.stats_enable(); err != nil {
		return
	}
	p.state = Open
	if e := p.d.Messenger.Post(p.id, MsgBroadcast, MsgResetEnd, 0); e != nil {
		p.logf("err", "post %v: %v", MsgResetEnd, e)
	}
	p.logf("info", "reset done")
	return
}
