// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"fmt"

	"github.com/platinasystems/vxge/internal/titan"
)

// One request to the adapter's table and firmware engine.
type steer_cmd struct {
	action uint
	table  uint
	offset uint64
	data0  uint64
	data1  uint64
}

var steerActionNames = [...]string{
	titan.SteerActionWriteEntry:  "write",
	titan.SteerActionReadEntry:   "read",
	titan.SteerActionListFirst:   "list first",
	titan.SteerActionListNext:    "list next",
	titan.SteerActionAddEntry:    "add",
	titan.SteerActionDeleteEntry: "delete",
	titan.SteerActionReadMemo:    "read memo",
	titan.SteerActionWriteMemo:   "write memo",
	titan.SteerActionFwUpgrade:   "firmware upgrade",
}

var steerTableNames = [...]string{
	titan.SteerTableDa:          "da",
	titan.SteerTableVid:         "vid",
	titan.SteerTableEtype:       "etype",
	titan.SteerTablePn:          "port",
	titan.SteerTableRthGenCfg:   "rth gen cfg",
	titan.SteerTableRthSoloIt:   "rth solo itable",
	titan.SteerTableRthJhashCfg: "rth jhash cfg",
	titan.SteerTableRthMask:     "rth mask",
	titan.SteerTableRthKey:      "rth key",
	titan.SteerTableRthMultiIt:  "rth multi itable",
	titan.SteerTableFwMemo:      "fw memo",
}

func (c *steer_cmd) String() string {
	return fmt.Sprintf("%s %s offset %d", steerActionNames[c.action], steerTableNames[c.table], c.offset)
}

// Tables with 2 word entries.
func (c *steer_cmd) two_word() bool {
	switch c.table {
	case titan.SteerTableDa, titan.SteerTableRthMultiIt,
		titan.SteerTableRthJhashCfg, titan.SteerTableRthMask, titan.SteerTableFwMemo:
		return true
	}
	return false
}

// Execute steering command for vpath.  On success data words are replaced
// with hardware's response.  A poll timeout leaves data and control registers
// as written.
func (d *Device) steer(vp uint, c *steer_cmd) (err error) {
	if err = d.check_attached(); err != nil {
		return
	}
	d.steer_lock.Lock()
	defer d.steer_lock.Unlock()

	reg(titan.RtsAccessSteerData0).set(d, c.data0)
	if c.two_word() {
		reg(titan.RtsAccessSteerData1).set(d, c.data1)
	}
	d.regs.Barrier()

	ctrl := titan.SteerCtrlAction.Val(uint64(c.action)) |
		titan.SteerCtrlTable.Val(uint64(c.table)) |
		titan.SteerCtrlOffset.Val(c.offset) |
		titan.SteerCtrlVpath.Val(uint64(vp)) |
		titan.SteerCtrlStrobe
	reg(titan.RtsAccessSteerCtrl).set(d, ctrl)
	d.regs.Barrier()

	v, err := d.register_poll("steer "+c.String(), titan.RtsAccessSteerCtrl, titan.SteerCtrlStrobe, 0)
	if err != nil {
		return
	}
	if v&titan.SteerCtrlStatus == 0 {
		return fmt.Errorf("%s: vp%d %v: %w", d.cfg.Name, vp, c, ErrSteerFailed)
	}
	c.data0 = reg(titan.RtsAccessSteerData0).get(d)
	c.data1 = reg(titan.RtsAccessSteerData1).get(d)
	return
}

// Vpath used for function wide steering commands.
func (d *Device) first_vpath() uint {
	for vp := uint(0); vp < titan.MaxVpaths; vp++ {
		if d.assignments&(1<<vp) != 0 {
			return vp
		}
	}
	return 0
}
