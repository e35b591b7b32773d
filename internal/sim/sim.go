// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sim is a register level model of the titan adapter.  It implements
// hw.Regs with enough of the hardware behind it (steering engine, vpath
// reset, statistics dma, interrupt status) to drive the vxge hal without a
// card.
package sim

import (
	"encoding/binary"
	"sync"

	"github.com/platinasystems/vxge/hw"
	"github.com/platinasystems/vxge/internal/bits"
	"github.com/platinasystems/vxge/internal/titan"
)

// Adapter is a simulated adapter function.
type Adapter struct {
	mu sync.Mutex

	alloc *hw.HeapAllocator
	regs  map[uint64]uint64
	lower map[uint64]uint32

	// Number of reads of the reset in progress register that still show
	// a reset in progress.
	ResetPolls int

	// Vpaths whose reset never completes.
	HoldReset uint64

	// Steering strobe never clears.
	StuckStrobe bool

	// All reads return all ones.
	Frozen bool

	// Receive never goes quiescent.
	RxBusy bool

	// Firmware keeps answering busy to upgrade commit.
	FwBusyForever bool

	// Steering table capacity per vpath.
	TableSize int

	rst_pending [titan.MaxVpaths]int
	unknown     [titan.MaxVpaths]uint64
	tables      [titan.MaxVpaths]vpath_tables
	memo        map[uint64][2]uint64
	fw          fw_upgrade

	// Statistics.
	NSteer    int
	NOneShot  int
	NRstAsked [titan.MaxVpaths]int
}

type entry struct{ data0, data1 uint64 }

type table struct {
	entries []entry
	cursor  int
}

type vpath_tables struct {
	da, vid, etype, pn table

	rth_gen   uint64
	rth_jhash [2]uint64
	rth_mask  [2]uint64
	rth_key   map[uint64]uint64
	solo_it   map[uint64]uint64
	multi_it  map[uint64][2]uint64
}

type fw_upgrade struct {
	started   bool
	size, got uint64
	commits   int
}

// New returns an adapter with vpaths 0-7 assigned.
func New(alloc *hw.HeapAllocator) (a *Adapter) {
	a = &Adapter{
		alloc:      alloc,
		regs:       make(map[uint64]uint64),
		lower:      make(map[uint64]uint32),
		ResetPolls: 1,
		TableSize:  32,
		memo:       make(map[uint64][2]uint64),
	}
	a.regs[titan.AdapterStatus] = titan.AdapterStatusReady
	a.regs[titan.VpathAssignments] = 0xff
	for vp := uint(0); vp < titan.MaxVpaths; vp++ {
		a.reset_vpath_regs(vp)
		o := titan.VpathOffset(vp)
		a.regs[o+titan.VpMgmtPortLink] = titan.MgmtPortLinkOk | titan.MgmtPortLink10G
		a.regs[o+titan.VpMgmtMaxPyldLen] = 9600
		a.regs[o+titan.VpMgmtVsport] = uint64(vp)
		if vp == 0 {
			a.regs[o+titan.VpMgmtSessionGroup] = titan.MgmtSessionFirst
		}
	}
	a.SetMemoString(titan.MemoSerialNumber, "SXT0123456789")
	a.SetMemoString(titan.MemoPartNumber, "X3120SR0000")
	a.SetMemoString(titan.MemoPmdInfo, "10GBASE-SR")
	a.memo[titan.MemoOffset(titan.MemoFwVersion, 0)] = [2]uint64{
		titan.MemoVersionMajor.Val(1) | titan.MemoVersionMinor.Val(8) | titan.MemoVersionBuild.Val(1),
		titan.MemoDateYear.Val(2016) | titan.MemoDateMonth.Val(6) | titan.MemoDateDay.Val(14),
	}
	a.memo[titan.MemoOffset(titan.MemoFlashVersion, 0)] = [2]uint64{
		titan.MemoVersionMajor.Val(1) | titan.MemoVersionMinor.Val(5) | titan.MemoVersionBuild.Val(3),
		titan.MemoDateYear.Val(2015) | titan.MemoDateMonth.Val(11) | titan.MemoDateDay.Val(2),
	}
	a.memo[titan.MemoOffset(titan.MemoLagMode, 0)] = [2]uint64{1, 0}
	a.memo[titan.MemoOffset(titan.MemoFuncMode, 0)] = [2]uint64{0, 0}
	for vp := uint(0); vp < titan.MaxVpaths; vp++ {
		a.memo[titan.MemoOffset(titan.MemoBandwidth, vp)] = [2]uint64{10000, 0}
		a.memo[titan.MemoOffset(titan.MemoPriority, vp)] = [2]uint64{0, 0}
	}
	return
}

func (a *Adapter) reset_vpath_regs(vp uint) {
	o := titan.VpathOffset(vp)
	for r := o; r < o+titan.VpStatsWindow; r += 8 {
		delete(a.regs, r)
	}
	a.regs[o+titan.VpGeneralIntMask] = ^uint64(0)
	a.regs[o+titan.VpKdfcDrblTotal] = 64
	a.regs[o+titan.VpRxmacVcfg0] = titan.RxmacVcfg0MaxFrmLen.Val(1518) | titan.RxmacVcfg0Bcast
	a.unknown[vp] = 0
	a.regs[titan.TimIntMask0] |= titan.TimIntTx(vp) | titan.TimIntRx(vp)
	a.regs[titan.TimIntStatus0] &^= titan.TimIntTx(vp) | titan.TimIntRx(vp)
	a.regs[titan.CmnRsthdlrCfg1] &^= 1 << vp
	a.regs[titan.StatsCfg0] &^= 1 << vp
	t := &a.tables[vp]
	t.da.cursor, t.vid.cursor, t.etype.cursor, t.pn.cursor = 0, 0, 0, 0
}

// SetAssigned sets the vpath assignment bitmap; must be done before attach.
func (a *Adapter) SetAssigned(m uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.regs[titan.VpathAssignments] = m
}

// SetCaps sets the function capabilities register.
func (a *Adapter) SetCaps(c uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.regs[titan.FuncCaps] = c
}

// Poke writes raw register content without side effects.
func (a *Adapter) Poke(o, v uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.regs[o] = v
}

// Peek reads raw register content without side effects.
func (a *Adapter) Peek(o uint64) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.regs[o]
}

// VpPoke and VpPeek address the vpath register block.
func (a *Adapter) VpPoke(vp uint, o, v uint64) { a.Poke(titan.VpathOffset(vp)+o, v) }
func (a *Adapter) VpPeek(vp uint, o uint64) uint64 {
	return a.Peek(titan.VpathOffset(vp) + o)
}

// SetCounter sets hardware counter i of vpath.
func (a *Adapter) SetCounter(vp, i uint, v uint64) {
	a.VpPoke(vp, titan.VpStatsWindow+8*uint64(i), v)
}

// SetDbgCounter sets debug counter i of vpath.
func (a *Adapter) SetDbgCounter(vp, i uint, v uint64) {
	a.VpPoke(vp, titan.VpDbgStats+8*uint64(i), v)
}

// SetMemoString sets a string firmware memo item.
func (a *Adapter) SetMemoString(item uint, s string) {
	var b [32]byte
	copy(b[:], s)
	for i := uint(0); i < 2; i++ {
		a.memo[titan.MemoOffset(item, i)] = [2]uint64{
			binary.BigEndian.Uint64(b[16*i:]),
			binary.BigEndian.Uint64(b[16*i+8:]),
		}
	}
}

// Memo returns data words of memo item at offset.
func (a *Adapter) Memo(offset uint64) [2]uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.memo[offset]
}

// Traffic raises tx and/or rx traffic interrupt for vpath.
func (a *Adapter) Traffic(vp uint, tx, rx bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if tx {
		a.regs[titan.TimIntStatus0] |= titan.TimIntTx(vp)
	}
	if rx {
		a.regs[titan.TimIntStatus0] |= titan.TimIntRx(vp)
	}
}

// Alarm sets cause bits in given vpath alarm register (e.g. VpGeneralErrors).
func (a *Adapter) Alarm(vp uint, reg, cause uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.regs[titan.VpathOffset(vp)+reg] |= cause
}

// UnknownAlarm sets bits outside the known alarm classes.
func (a *Adapter) UnknownAlarm(vp uint, b uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.unknown[vp] |= b &^ titan.VpGeneralIntKnown
}

// SetLink sets port link status seen by vpath management registers.
func (a *Adapter) SetLink(up, is10g bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	v := uint64(0)
	if up {
		v |= titan.MgmtPortLinkOk
	}
	if is10g {
		v |= titan.MgmtPortLink10G
	}
	for vp := uint(0); vp < titan.MaxVpaths; vp++ {
		a.regs[titan.VpathOffset(vp)+titan.VpMgmtPortLink] = v
	}
}

// Table returns the entries (data0, data1) of a steering table for vpath.
func (a *Adapter) Table(vp uint, tbl uint) (r [][2]uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if t := a.tables[vp].table(tbl); t != nil {
		for _, e := range t.entries {
			r = append(r, [2]uint64{e.data0, e.data1})
		}
	}
	return
}

func vpath_of(o uint64) (vp uint, r uint64, ok bool) {
	if o < titan.VpathBase {
		return
	}
	o -= titan.VpathBase
	vp = uint(o / titan.VpathStride)
	r = o % titan.VpathStride
	ok = vp < titan.MaxVpaths
	return
}

// Summary registers are computed from the cause registers below them.
var summaries = []struct {
	reg  uint64
	bits []struct{ bit, cause uint64 }
}{
	{titan.VpPpifIntStatus, []struct{ bit, cause uint64 }{
		{titan.PpifSrpcimToVpath, titan.VpSrpcimToVpathAlarm},
		{titan.PpifMrpcimToVpath, titan.VpMrpcimToVpathAlarm},
		{titan.PpifGeneralErrors, titan.VpGeneralErrors},
		{titan.PpifKdfcctlErrors, titan.VpKdfcctlErrors},
	}},
	{titan.VpWrdmaAlarmStatus, []struct{ bit, cause uint64 }{
		{titan.WrdmaPrcInt, titan.VpPrcAlarm},
	}},
	{titan.VpPcipifIntStatus, []struct{ bit, cause uint64 }{
		{titan.PcipifConfigErrors, titan.VpPciConfigErrors},
	}},
	{titan.VpXgmacIntStatus, []struct{ bit, cause uint64 }{
		{titan.XgmacAsicNtwkErr, titan.VpAsicNtwkErr},
	}},
}

var general_class = map[uint64]uint64{
	titan.VpPpifIntStatus:    titan.VpGeneralIntPic,
	titan.VpWrdmaAlarmStatus: titan.VpGeneralIntWrdma,
	titan.VpPcipifIntStatus:  titan.VpGeneralIntPci,
	titan.VpXgmacIntStatus:   titan.VpGeneralIntXmac,
}

// Write 1 to clear cause registers.
var w1c = map[uint64]bool{
	titan.VpSrpcimToVpathAlarm: true,
	titan.VpMrpcimToVpathAlarm: true,
	titan.VpGeneralErrors:      true,
	titan.VpKdfcctlErrors:      true,
	titan.VpPrcAlarm:           true,
	titan.VpPciConfigErrors:    true,
	titan.VpAsicNtwkErr:        true,
}

func (a *Adapter) summary(vp uint, reg uint64) (v uint64) {
	o := titan.VpathOffset(vp)
	for _, s := range summaries {
		if s.reg != reg {
			continue
		}
		for _, b := range s.bits {
			if a.regs[o+b.cause] != 0 {
				v |= b.bit
			}
		}
	}
	return
}

func (a *Adapter) general_status(vp uint) (v uint64) {
	for _, s := range summaries {
		if a.summary(vp, s.reg) != 0 {
			v |= general_class[s.reg]
		}
	}
	v |= a.unknown[vp]
	return
}

func (a *Adapter) Read64(o uint64) (v uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Frozen {
		return ^uint64(0)
	}
	switch o {
	case titan.GeneralIntStatus:
		st := a.regs[titan.TimIntStatus0]
		for vp := uint(0); vp < titan.MaxVpaths; vp++ {
			if st&(titan.TimIntTx(vp)|titan.TimIntRx(vp)) != 0 {
				v |= titan.GeneralIntTraffic(vp)
			}
			if a.general_status(vp) != 0 {
				v |= titan.GeneralIntAlarm(vp)
			}
		}
		return
	case titan.VpathRstInProg:
		for vp := uint(0); vp < titan.MaxVpaths; vp++ {
			if a.HoldReset&(1<<vp) != 0 {
				v |= 1 << vp
				continue
			}
			if a.rst_pending[vp] > 0 {
				a.rst_pending[vp]--
				v |= 1 << vp
			}
		}
		return
	}
	if vp, r, ok := vpath_of(o); ok {
		switch r {
		case titan.VpGeneralIntStatus:
			return a.general_status(vp)
		case titan.VpPpifIntStatus, titan.VpWrdmaAlarmStatus, titan.VpPcipifIntStatus, titan.VpXgmacIntStatus:
			return a.summary(vp, r)
		case titan.VpPrcStatus1:
			if !a.RxBusy {
				v = titan.PrcStatus1Quiescent
			}
			return
		}
	}
	return a.regs[o]
}

func (a *Adapter) Write64(o uint64, v uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.write(o, v)
}

// Lower half is latched until the upper half write completes the register
// write.
func (a *Adapter) Write32Lower(o uint64, v uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lower[o] = v
}

func (a *Adapter) Write32Upper(o uint64, v uint32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	lo, ok := a.lower[o]
	if !ok {
		lo = uint32(a.regs[o])
	}
	delete(a.lower, o)
	a.write(o, uint64(lo)|uint64(v)<<32)
}

func (a *Adapter) Barrier() {}

func (a *Adapter) write(o, v uint64) {
	switch o {
	case titan.GeneralIntStatus, titan.VpathRstInProg, titan.VpathAssignments, titan.AdapterStatus, titan.FuncCaps:
		return
	case titan.CmnRsthdlrCfg0:
		bits.Word(v & uint64(bits.Mask(titan.MaxVpaths))).ForeachSetBit(func(vp uint) {
			a.NRstAsked[vp]++
			a.reset_vpath_regs(vp)
			a.rst_pending[vp] = a.ResetPolls
		})
		return
	case titan.TimIntStatus0:
		a.regs[o] &^= v
		return
	case titan.RtsAccessSteerCtrl:
		a.regs[o] = v
		if v&titan.SteerCtrlStrobe != 0 && !a.StuckStrobe {
			a.steer(v)
		}
		return
	case titan.SetMsixMaskVect, titan.SetMsixMaskVect + 8:
		a.regs[titan.MsixMaskVect+o-titan.SetMsixMaskVect] |= v
		return
	case titan.ClearMsixMaskVect, titan.ClearMsixMaskVect + 8:
		a.regs[titan.MsixMaskVect+o-titan.ClearMsixMaskVect] &^= v
		return
	case titan.ClrMsixOneShotVec, titan.ClrMsixOneShotVec + 8:
		a.NOneShot++
		return
	}
	if vp, r, ok := vpath_of(o); ok {
		switch {
		case w1c[r]:
			a.regs[o] &^= v
			return
		case r == titan.VpGeneralIntStatus, r == titan.VpPrcStatus1, r == titan.VpKdfcDrblTotal:
			return
		case r >= titan.VpMgmtBase:
			return
		case r == titan.VpStatsCfg:
			a.regs[o] = v
			if v&titan.StatsCfgStartHostCopy != 0 && a.regs[titan.StatsCfg0]&(1<<vp) != 0 {
				a.host_copy(vp)
				a.regs[o] &^= titan.StatsCfgStartHostCopy
			}
			return
		}
		if _, ok := general_class[r]; ok {
			return
		}
	}
	a.regs[o] = v
}

func (a *Adapter) host_copy(vp uint) {
	o := titan.VpathOffset(vp)
	if a.alloc == nil {
		return
	}
	b, ok := a.alloc.Lookup(a.regs[o+titan.VpStatsDmaAddr])
	if !ok {
		return
	}
	for i := uint64(0); i < titan.NStatsWindow && 8*i+8 <= uint64(len(b.Mem)); i++ {
		binary.LittleEndian.PutUint64(b.Mem[8*i:], a.regs[o+titan.VpStatsWindow+8*i])
	}
}
