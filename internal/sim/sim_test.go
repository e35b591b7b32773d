// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sim

import (
	"encoding/binary"
	"testing"

	"github.com/platinasystems/vxge/hw"
	"github.com/platinasystems/vxge/internal/titan"
)

// Run one steering command; returns data and status.
func steer(a *Adapter, vp, action, tbl uint, offset, d0, d1 uint64) (r0, r1 uint64, ok bool) {
	a.Write64(titan.RtsAccessSteerData0, d0)
	a.Write64(titan.RtsAccessSteerData1, d1)
	a.Write64(titan.RtsAccessSteerCtrl, titan.SteerCtrlAction.Val(uint64(action))|
		titan.SteerCtrlTable.Val(uint64(tbl))|
		titan.SteerCtrlOffset.Val(offset)|
		titan.SteerCtrlVpath.Val(uint64(vp))|
		titan.SteerCtrlStrobe)
	ctrl := a.Read64(titan.RtsAccessSteerCtrl)
	if ctrl&titan.SteerCtrlStrobe != 0 {
		return
	}
	return a.Read64(titan.RtsAccessSteerData0), a.Read64(titan.RtsAccessSteerData1),
		ctrl&titan.SteerCtrlStatus != 0
}

func TestReset(t *testing.T) {
	a := New(nil)
	a.ResetPolls = 2
	a.VpPoke(3, titan.VpRxmacVcfg0, 0)
	a.Write64(titan.CmnRsthdlrCfg0, 1<<3)
	for i := 0; i < 2; i++ {
		if v := a.Read64(titan.VpathRstInProg); v != 1<<3 {
			t.Fatalf("poll %d: got %#x", i, v)
		}
	}
	if v := a.Read64(titan.VpathRstInProg); v != 0 {
		t.Errorf("got %#x want done", v)
	}
	if a.NRstAsked[3] != 1 {
		t.Errorf("resets asked: got %d", a.NRstAsked[3])
	}
	v := a.VpPeek(3, titan.VpRxmacVcfg0)
	if titan.RxmacVcfg0MaxFrmLen.Get(v) != 1518 {
		t.Errorf("vcfg0 not reset: %#x", v)
	}
	// Management registers survive reset.
	if a.VpPeek(3, titan.VpMgmtMaxPyldLen) != 9600 {
		t.Error("management registers lost")
	}

	a.HoldReset = 1 << 5
	if v := a.Read64(titan.VpathRstInProg); v != 1<<5 {
		t.Errorf("hold: got %#x", v)
	}
}

func TestSplitWrite(t *testing.T) {
	a := New(nil)
	o := titan.VpathOffset(0) + titan.VpRxmacVcfg0
	hw.Write64Split(a, o, 0x1234567890abcdef)
	if v := a.Peek(o); v != 0x1234567890abcdef {
		t.Errorf("got %#x", v)
	}
	// Lower half alone is not visible.
	a.Write32Lower(o, 0x11111111)
	if v := a.Peek(o); v != 0x1234567890abcdef {
		t.Errorf("lower visible: got %#x", v)
	}
	a.Write32Upper(o, 0x22222222)
	if v := a.Peek(o); v != 0x2222222211111111 {
		t.Errorf("got %#x", v)
	}
	// Upper half alone keeps current lower half.
	a.Write32Upper(o, 0x33333333)
	if v := a.Peek(o); v != 0x3333333311111111 {
		t.Errorf("got %#x", v)
	}
}

func TestSteerList(t *testing.T) {
	a := New(nil)
	a.TableSize = 2
	da := func(mac, mode uint64) (uint64, uint64) {
		return titan.SteerDataDaMac.Val(mac), titan.SteerDataDaMask.Val(0xffffffffffff) |
			titan.SteerDataDaAddMode.Val(mode)
	}
	add := func(mac, mode uint64) bool {
		d0, d1 := da(mac, mode)
		_, _, ok := steer(a, 1, titan.SteerActionAddEntry, titan.SteerTableDa, 0, d0, d1)
		return ok
	}
	if !add(0x0a, titan.DaAddDuplicate) || !add(0x0a, titan.DaDiscardDuplicate) {
		t.Fatal("add failed")
	}
	if n := len(a.Table(1, titan.SteerTableDa)); n != 1 {
		t.Errorf("discard duplicate: %d entries", n)
	}
	if !add(0x0a, titan.DaAddDuplicate) {
		t.Fatal("add duplicate failed")
	}
	if add(0x0b, titan.DaAddDuplicate) {
		t.Error("add to full table succeeded")
	}
	if len(a.Table(0, titan.SteerTableDa)) != 0 {
		t.Error("table not per vpath")
	}

	var got []uint64
	action := uint(titan.SteerActionListFirst)
	for {
		r0, _, ok := steer(a, 1, action, titan.SteerTableDa, 0, 0, 0)
		if !ok {
			break
		}
		got = append(got, titan.SteerDataDaMac.Get(r0))
		action = titan.SteerActionListNext
	}
	if len(got) != 2 || got[0] != 0x0a || got[1] != 0x0a {
		t.Errorf("list: got %x", got)
	}

	d0, d1 := da(0x0a, 0)
	if _, _, ok := steer(a, 1, titan.SteerActionDeleteEntry, titan.SteerTableDa, 0, d0, d1); !ok {
		t.Error("delete failed")
	}
	if n := len(a.Table(1, titan.SteerTableDa)); n != 1 {
		t.Errorf("after delete: %d entries", n)
	}
	if a.NSteer != 8 {
		t.Errorf("steers: got %d", a.NSteer)
	}
}

func TestSteerStuck(t *testing.T) {
	a := New(nil)
	a.StuckStrobe = true
	if _, _, ok := steer(a, 0, titan.SteerActionWriteEntry, titan.SteerTableRthGenCfg, 0, 1, 0); ok {
		t.Error("stuck strobe completed")
	}
	if a.NSteer != 0 {
		t.Errorf("steers: got %d", a.NSteer)
	}
}

func TestMemo(t *testing.T) {
	a := New(nil)
	r0, r1, ok := steer(a, 0, titan.SteerActionReadMemo, titan.SteerTableFwMemo,
		titan.MemoOffset(titan.MemoSerialNumber, 0), 0, 0)
	if !ok {
		t.Fatal("memo read failed")
	}
	var b [16]byte
	binary.BigEndian.PutUint64(b[:], r0)
	binary.BigEndian.PutUint64(b[8:], r1)
	if s := string(b[:13]); s != "SXT0123456789" {
		t.Errorf("serial: got %q", s)
	}
	// Version is read only.
	if _, _, ok = steer(a, 0, titan.SteerActionWriteMemo, titan.SteerTableFwMemo,
		titan.MemoOffset(titan.MemoFwVersion, 0), 0, 0); ok {
		t.Error("version write succeeded")
	}
	o := titan.MemoOffset(titan.MemoBandwidth, 2)
	if _, _, ok = steer(a, 0, titan.SteerActionWriteMemo, titan.SteerTableFwMemo, o, 2500, 0); !ok {
		t.Error("bandwidth write failed")
	}
	if m := a.Memo(o); m[0] != 2500 {
		t.Errorf("bandwidth: got %d", m[0])
	}
}

func TestFwUpgrade(t *testing.T) {
	a := New(nil)
	step := func(cmd, d0 uint64) uint64 {
		r0, _, ok := steer(a, 0, titan.SteerActionFwUpgrade, titan.SteerTableFwMemo, cmd, d0, 0)
		if !ok {
			t.Fatalf("step %d failed", cmd)
		}
		return r0
	}
	if r := step(titan.FwUpgradeCommit, 0); r != titan.FwUpgradeRespError {
		t.Errorf("commit before start: got %d", r)
	}
	step(titan.FwUpgradeStart, 16)
	step(titan.FwUpgradeData, 0)
	if r := step(titan.FwUpgradeCommit, 0); r != titan.FwUpgradeRespError {
		t.Errorf("short image commit: got %d", r)
	}
	step(titan.FwUpgradeData, 0)
	want := []uint64{titan.FwUpgradeRespBusy, titan.FwUpgradeRespBusy, titan.FwUpgradeRespDone}
	for i, w := range want {
		if r := step(titan.FwUpgradeCommit, 0); r != w {
			t.Errorf("commit %d: got %d want %d", i, r, w)
		}
	}
}

func TestInterruptStatus(t *testing.T) {
	a := New(nil)
	a.Traffic(2, false, true)
	a.Alarm(5, titan.VpGeneralErrors, 1)
	v := a.Read64(titan.GeneralIntStatus)
	if want := titan.GeneralIntTraffic(2) | titan.GeneralIntAlarm(5); v != uint64(want) {
		t.Errorf("general: got %#x want %#x", v, want)
	}
	if v := a.Read64(titan.VpathOffset(5) + titan.VpGeneralIntStatus); v != titan.VpGeneralIntPic {
		t.Errorf("vpath general: got %#x", v)
	}
	if v := a.Read64(titan.VpathOffset(5) + titan.VpPpifIntStatus); v != titan.PpifGeneralErrors {
		t.Errorf("ppif: got %#x", v)
	}

	// Cause registers are write 1 to clear.
	a.Write64(titan.VpathOffset(5)+titan.VpGeneralErrors, 1)
	a.Write64(titan.TimIntStatus0, titan.TimIntRx(2))
	if v := a.Read64(titan.GeneralIntStatus); v != 0 {
		t.Errorf("after clear: got %#x", v)
	}

	a.UnknownAlarm(1, 1<<20)
	if v := a.Read64(titan.VpathOffset(1) + titan.VpGeneralIntStatus); v != 1<<20 {
		t.Errorf("unknown: got %#x", v)
	}
	a.Frozen = true
	if v := a.Read64(titan.GeneralIntStatus); v != ^uint64(0) {
		t.Errorf("frozen: got %#x", v)
	}
}

func TestHostCopy(t *testing.T) {
	alloc := hw.NewHeapAllocator(0)
	a := New(alloc)
	b, err := alloc.Alloc(8 * titan.NStatsWindow)
	if err != nil {
		t.Fatal(err)
	}
	a.SetCounter(4, 3, 77)
	a.VpPoke(4, titan.VpStatsDmaAddr, b.Addr)
	a.Write64(titan.VpathOffset(4)+titan.VpStatsCfg, titan.StatsCfgStartHostCopy)
	if binary.LittleEndian.Uint64(b.Mem[24:]) != 0 {
		t.Error("copy while disabled")
	}
	if a.VpPeek(4, titan.VpStatsCfg)&titan.StatsCfgStartHostCopy == 0 {
		t.Error("disabled copy completed")
	}
	a.Write64(titan.StatsCfg0, 1<<4)
	a.Write64(titan.VpathOffset(4)+titan.VpStatsCfg, titan.StatsCfgStartHostCopy)
	if v := binary.LittleEndian.Uint64(b.Mem[24:]); v != 77 {
		t.Errorf("copied %d", v)
	}
	if a.VpPeek(4, titan.VpStatsCfg)&titan.StatsCfgStartHostCopy != 0 {
		t.Error("copy did not complete")
	}
}
