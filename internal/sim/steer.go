// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"github.com/platinasystems/vxge/internal/titan"
)

const (
	rth_key_words = 5
	rth_it_size   = 256
)

func (t *vpath_tables) table(tbl uint) *table {
	switch tbl {
	case titan.SteerTableDa:
		return &t.da
	case titan.SteerTableVid:
		return &t.vid
	case titan.SteerTableEtype:
		return &t.etype
	case titan.SteerTablePn:
		return &t.pn
	}
	return nil
}

// Firmware steering engine.
func (a *Adapter) steer(ctrl uint64) {
	a.NSteer++
	action := uint(titan.SteerCtrlAction.Get(ctrl))
	tbl := uint(titan.SteerCtrlTable.Get(ctrl))
	offset := titan.SteerCtrlOffset.Get(ctrl)
	vp := uint(titan.SteerCtrlVpath.Get(ctrl))
	d0, d1 := a.regs[titan.RtsAccessSteerData0], a.regs[titan.RtsAccessSteerData1]

	ok := false
	r0, r1 := d0, d1
	if vp < titan.MaxVpaths {
		r0, r1, ok = a.exec(vp, action, tbl, offset, d0, d1)
	}
	ctrl &^= titan.SteerCtrlStrobe | titan.SteerCtrlStatus
	if ok {
		ctrl |= titan.SteerCtrlStatus
		a.regs[titan.RtsAccessSteerData0] = r0
		a.regs[titan.RtsAccessSteerData1] = r1
	}
	a.regs[titan.RtsAccessSteerCtrl] = ctrl
}

func (a *Adapter) exec(vp, action, tbl uint, offset, d0, d1 uint64) (r0, r1 uint64, ok bool) {
	r0, r1 = d0, d1
	t := &a.tables[vp]
	if x := t.table(tbl); x != nil {
		return a.exec_list(x, tbl, action, d0, d1)
	}
	switch tbl {
	case titan.SteerTableRthGenCfg:
		switch action {
		case titan.SteerActionWriteEntry:
			t.rth_gen, ok = d0, true
		case titan.SteerActionReadEntry:
			r0, ok = t.rth_gen, true
		}
	case titan.SteerTableRthJhashCfg:
		return rw_pair(&t.rth_jhash, action, d0, d1)
	case titan.SteerTableRthMask:
		return rw_pair(&t.rth_mask, action, d0, d1)
	case titan.SteerTableRthKey:
		if offset >= rth_key_words {
			return
		}
		if t.rth_key == nil {
			t.rth_key = make(map[uint64]uint64)
		}
		switch action {
		case titan.SteerActionWriteEntry:
			t.rth_key[offset], ok = d0, true
		case titan.SteerActionReadEntry:
			r0, ok = t.rth_key[offset], true
		}
	case titan.SteerTableRthSoloIt:
		if offset >= rth_it_size {
			return
		}
		if t.solo_it == nil {
			t.solo_it = make(map[uint64]uint64)
		}
		switch action {
		case titan.SteerActionWriteEntry:
			t.solo_it[offset], ok = d0, true
		case titan.SteerActionReadEntry:
			r0, ok = t.solo_it[offset], true
		}
	case titan.SteerTableRthMultiIt:
		if offset >= rth_it_size {
			return
		}
		if t.multi_it == nil {
			t.multi_it = make(map[uint64][2]uint64)
		}
		switch action {
		case titan.SteerActionWriteEntry:
			t.multi_it[offset], ok = [2]uint64{d0, d1}, true
		case titan.SteerActionReadEntry:
			x := t.multi_it[offset]
			r0, r1, ok = x[0], x[1], true
		}
	case titan.SteerTableFwMemo:
		switch action {
		case titan.SteerActionReadMemo:
			var x [2]uint64
			if x, ok = a.memo[offset]; ok {
				r0, r1 = x[0], x[1]
			}
		case titan.SteerActionWriteMemo:
			switch uint(offset >> 5) {
			case titan.MemoFuncMode, titan.MemoBandwidth, titan.MemoPriority:
				a.memo[offset], ok = [2]uint64{d0, d1}, true
			}
		case titan.SteerActionFwUpgrade:
			r0, ok = a.fw_step(offset, d0), true
		}
	}
	return
}

func rw_pair(p *[2]uint64, action uint, d0, d1 uint64) (r0, r1 uint64, ok bool) {
	r0, r1 = d0, d1
	switch action {
	case titan.SteerActionWriteEntry:
		p[0], p[1], ok = d0, d1, true
	case titan.SteerActionReadEntry:
		r0, r1, ok = p[0], p[1], true
	}
	return
}

func (a *Adapter) exec_list(t *table, tbl, action uint, d0, d1 uint64) (r0, r1 uint64, ok bool) {
	r0, r1 = d0, d1
	mode := uint64(titan.DaAddDuplicate)
	if tbl == titan.SteerTableDa {
		mode = titan.SteerDataDaAddMode.Get(d1)
		d1 &^= titan.SteerDataDaAddMode.Mask()
	}
	find := func() int {
		for i, e := range t.entries {
			if e.data0 == d0 && (action != titan.SteerActionDeleteEntry || tbl != titan.SteerTableDa || e.data1 == d1) {
				return i
			}
		}
		return -1
	}
	switch action {
	case titan.SteerActionAddEntry:
		if i := find(); i >= 0 {
			switch {
			case tbl != titan.SteerTableDa, mode == titan.DaDiscardDuplicate:
				return r0, r1, true
			case mode == titan.DaReplaceDuplicate:
				t.entries[i].data1 = d1
				return r0, r1, true
			}
		}
		if len(t.entries) >= a.TableSize {
			return
		}
		t.entries = append(t.entries, entry{d0, d1})
		ok = true
	case titan.SteerActionDeleteEntry:
		if i := find(); i >= 0 {
			t.entries = append(t.entries[:i], t.entries[i+1:]...)
			ok = true
		}
	case titan.SteerActionListFirst:
		t.cursor = 0
		fallthrough
	case titan.SteerActionListNext:
		if t.cursor < len(t.entries) {
			e := t.entries[t.cursor]
			r0, r1, ok = e.data0, e.data1, true
			t.cursor++
		}
	}
	return
}

func (a *Adapter) fw_step(cmd, d0 uint64) uint64 {
	f := &a.fw
	switch cmd {
	case titan.FwUpgradeStart:
		*f = fw_upgrade{started: true, size: d0}
		return titan.FwUpgradeRespOk
	case titan.FwUpgradeData:
		if !f.started {
			return titan.FwUpgradeRespError
		}
		f.got += 8
		return titan.FwUpgradeRespOk
	case titan.FwUpgradeCommit:
		if !f.started || f.got < f.size {
			return titan.FwUpgradeRespError
		}
		if a.FwBusyForever {
			return titan.FwUpgradeRespBusy
		}
		if f.commits++; f.commits < 3 {
			return titan.FwUpgradeRespBusy
		}
		f.started = false
		return titan.FwUpgradeRespDone
	}
	return titan.FwUpgradeRespError
}
