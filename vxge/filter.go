// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"errors"
	"fmt"
	"net"

	"github.com/platinasystems/vxge/internal/titan"
)

type MacAddr [6]byte

// Mask matching all address bits.
var MacMaskAll = MacAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}

func (a MacAddr) String() string { return net.HardwareAddr(a[:]).String() }

func (a MacAddr) u64() (v uint64) {
	for i := range a {
		v = v<<8 | uint64(a[i])
	}
	return
}

func mac_from_u64(v uint64) (a MacAddr) {
	for i := len(a) - 1; i >= 0; i-- {
		a[i] = byte(v)
		v >>= 8
	}
	return
}

func ParseMacAddr(s string) (a MacAddr, err error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return
	}
	if len(hw) != len(a) {
		err = fmt.Errorf("%s: not an ethernet address: %w", s, ErrInvalidParameter)
		return
	}
	copy(a[:], hw)
	return
}

// Handling of add of an address already in table.
type DaAddMode uint8

const (
	AddDuplicate     DaAddMode = titan.DaAddDuplicate
	DiscardDuplicate DaAddMode = titan.DaDiscardDuplicate
	ReplaceDuplicate DaAddMode = titan.DaReplaceDuplicate
)

// Steering command on table of vpath; caller holds vpath lock.
func (p *VirtualPath) steer(c *steer_cmd) error { return p.d.steer(p.id, c) }

// Same for handle's open vpath.
func (h *Handle) steer(c *steer_cmd) error {
	return h.with_open(func(p *VirtualPath) error { return p.steer(c) })
}

// List table entries: first and next.  Rejection means end of list.
func (h *Handle) list(table uint, first bool) (c steer_cmd, err error) {
	c = steer_cmd{action: titan.SteerActionListNext, table: table}
	if first {
		c.action = titan.SteerActionListFirst
	}
	if err = h.steer(&c); errors.Is(err, ErrSteerFailed) {
		err = fmt.Errorf("%v: %s: %w", h.p, steerTableNames[table], ErrNoMoreEntries)
	}
	return
}

func (h *Handle) MacAdd(addr, mask MacAddr, mode DaAddMode) error {
	c := steer_cmd{
		action: titan.SteerActionAddEntry,
		table:  titan.SteerTableDa,
		data0:  titan.SteerDataDaMac.Val(addr.u64()),
		data1:  titan.SteerDataDaMask.Val(mask.u64()) | titan.SteerDataDaAddMode.Val(uint64(mode)),
	}
	return h.steer(&c)
}

func (h *Handle) MacDelete(addr, mask MacAddr) error {
	c := steer_cmd{
		action: titan.SteerActionDeleteEntry,
		table:  titan.SteerTableDa,
		data0:  titan.SteerDataDaMac.Val(addr.u64()),
		data1:  titan.SteerDataDaMask.Val(mask.u64()),
	}
	return h.steer(&c)
}

// MacGet returns first address of vpath's table; MacGetNext the following.
func (h *Handle) MacGet() (addr, mask MacAddr, err error)     { return h.mac_list(true) }
func (h *Handle) MacGetNext() (addr, mask MacAddr, err error) { return h.mac_list(false) }

func (h *Handle) mac_list(first bool) (addr, mask MacAddr, err error) {
	c, err := h.list(titan.SteerTableDa, first)
	if err != nil {
		return
	}
	addr = mac_from_u64(titan.SteerDataDaMac.Get(c.data0))
	mask = mac_from_u64(titan.SteerDataDaMask.Get(c.data1))
	return
}

const MaxVlanId = 4095

func (h *Handle) vid_cmd(action uint, vid uint16) (err error) {
	if vid > MaxVlanId {
		return fmt.Errorf("vlan %d: %w", vid, ErrInvalidParameter)
	}
	c := steer_cmd{action: action, table: titan.SteerTableVid, data0: titan.SteerDataVid.Val(uint64(vid))}
	return h.steer(&c)
}

func (h *Handle) VlanAdd(vid uint16) error    { return h.vid_cmd(titan.SteerActionAddEntry, vid) }
func (h *Handle) VlanDelete(vid uint16) error { return h.vid_cmd(titan.SteerActionDeleteEntry, vid) }

func (h *Handle) VlanGet() (uint16, error)     { return h.vid_list(true) }
func (h *Handle) VlanGetNext() (uint16, error) { return h.vid_list(false) }

func (h *Handle) vid_list(first bool) (vid uint16, err error) {
	c, err := h.list(titan.SteerTableVid, first)
	if err == nil {
		vid = uint16(titan.SteerDataVid.Get(c.data0))
	}
	return
}

func (h *Handle) etype_cmd(action uint, t uint16) error {
	c := steer_cmd{action: action, table: titan.SteerTableEtype, data0: titan.SteerDataEtype.Val(uint64(t))}
	return h.steer(&c)
}

func (h *Handle) EtypeAdd(t uint16) error    { return h.etype_cmd(titan.SteerActionAddEntry, t) }
func (h *Handle) EtypeDelete(t uint16) error { return h.etype_cmd(titan.SteerActionDeleteEntry, t) }

func (h *Handle) EtypeGet() (uint16, error)     { return h.etype_list(true) }
func (h *Handle) EtypeGetNext() (uint16, error) { return h.etype_list(false) }

func (h *Handle) etype_list(first bool) (t uint16, err error) {
	c, err := h.list(titan.SteerTableEtype, first)
	if err == nil {
		t = uint16(titan.SteerDataEtype.Get(c.data0))
	}
	return
}

// PortFilter matches transport protocol port.
type PortFilter struct {
	Port uint16
	// Match source port instead of destination.
	Src bool
	// Udp instead of tcp.
	Udp bool
}

func (f PortFilter) data() (v uint64) {
	v = titan.SteerDataPort.Val(uint64(f.Port))
	if f.Src {
		v |= titan.SteerDataPortSrc.Val(1)
	}
	if f.Udp {
		v |= titan.SteerDataPortUdp.Val(1)
	}
	return
}

func (f PortFilter) String() string {
	proto, dir := "tcp", "dst"
	if f.Udp {
		proto = "udp"
	}
	if f.Src {
		dir = "src"
	}
	return fmt.Sprintf("%s %s port %d", proto, dir, f.Port)
}

func (h *Handle) port_cmd(action uint, f PortFilter) error {
	c := steer_cmd{action: action, table: titan.SteerTablePn, data0: f.data()}
	return h.steer(&c)
}

func (h *Handle) PortAdd(f PortFilter) error    { return h.port_cmd(titan.SteerActionAddEntry, f) }
func (h *Handle) PortDelete(f PortFilter) error { return h.port_cmd(titan.SteerActionDeleteEntry, f) }

func (h *Handle) PortGet() (PortFilter, error)     { return h.port_list(true) }
func (h *Handle) PortGetNext() (PortFilter, error) { return h.port_list(false) }

func (h *Handle) port_list(first bool) (f PortFilter, err error) {
	c, err := h.list(titan.SteerTablePn, first)
	if err != nil {
		return
	}
	f.Port = uint16(titan.SteerDataPort.Get(c.data0))
	f.Src = titan.SteerDataPortSrc.Get(c.data0) != 0
	f.Udp = titan.SteerDataPortUdp.Get(c.data0) != 0
	return
}
