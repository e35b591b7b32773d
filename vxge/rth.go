// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"encoding/binary"
	"fmt"

	"github.com/platinasystems/vxge/internal/titan"
)

// Receive traffic hashing.

type RthAlg uint8

const (
	RthAlgJenkins RthAlg = iota
	RthAlgMsRss
	RthAlgCrc32c
)

type RthHashTypes uint8

const (
	RthHashTcpIpv4 RthHashTypes = 1 << iota
	RthHashIpv4
	RthHashTcpIpv6
	RthHashIpv6
	RthHashTcpIpv6Ex
	RthHashIpv6Ex
)

const (
	RthKeyBytes = 40
	// Max indirection table size is 1<<RthMaxBucketSize.
	RthMaxBucketSize = 8
)

type RthConfig struct {
	Enable bool
	// Indirection table has 1<<BucketSize entries.
	BucketSize uint8
	Alg        RthAlg
	HashTypes  RthHashTypes
}

// Jenkins hash configuration.
type RthJhashConfig struct {
	Golden uint32
	Init   uint32
}

// Hash input masks.
type RthMask struct {
	Ipv4Sa, Ipv4Da uint32
	L4Sp, L4Dp     uint16
}

func (p *VirtualPath) rth_rw(table uint, offset uint64, d0, d1 uint64, write bool) (c steer_cmd, err error) {
	c = steer_cmd{action: titan.SteerActionReadEntry, table: table, offset: offset, data0: d0, data1: d1}
	if write {
		c.action = titan.SteerActionWriteEntry
	}
	err = p.steer(&c)
	return
}

func (h *Handle) rth_rw(table uint, offset uint64, d0, d1 uint64, write bool) (c steer_cmd, err error) {
	err = h.with_open(func(p *VirtualPath) (err error) {
		c, err = p.rth_rw(table, offset, d0, d1, write)
		return
	})
	return
}

func (h *Handle) RthSet(c RthConfig) error {
	if c.BucketSize > RthMaxBucketSize {
		return fmt.Errorf("rth bucket size %d: %w", c.BucketSize, ErrInvalidParameter)
	}
	v := titan.RthGenBucketSize.Val(uint64(c.BucketSize)) |
		titan.RthGenAlgSel.Val(uint64(c.Alg)) |
		titan.RthGenHashTypes.Val(uint64(c.HashTypes))
	if c.Enable {
		v |= titan.RthGenEn.Val(1)
	}
	_, err := h.rth_rw(titan.SteerTableRthGenCfg, 0, v, 0, true)
	return err
}

func (h *Handle) RthGet() (c RthConfig, err error) {
	x, err := h.rth_rw(titan.SteerTableRthGenCfg, 0, 0, 0, false)
	if err != nil {
		return
	}
	v := x.data0
	c.Enable = titan.RthGenEn.Get(v) != 0
	c.BucketSize = uint8(titan.RthGenBucketSize.Get(v))
	c.Alg = RthAlg(titan.RthGenAlgSel.Get(v))
	c.HashTypes = RthHashTypes(titan.RthGenHashTypes.Get(v))
	return
}

// RthKeySet sets hash key; key word i is steering offset i.
func (h *Handle) RthKeySet(key [RthKeyBytes]byte) error {
	return h.with_open(func(p *VirtualPath) error {
		for i := 0; i < RthKeyBytes/8; i++ {
			v := binary.BigEndian.Uint64(key[8*i:])
			if _, err := p.rth_rw(titan.SteerTableRthKey, uint64(i), v, 0, true); err != nil {
				return err
			}
		}
		return nil
	})
}

func (h *Handle) RthKeyGet() (key [RthKeyBytes]byte, err error) {
	err = h.with_open(func(p *VirtualPath) error {
		for i := 0; i < RthKeyBytes/8; i++ {
			c, err := p.rth_rw(titan.SteerTableRthKey, uint64(i), 0, 0, false)
			if err != nil {
				return err
			}
			binary.BigEndian.PutUint64(key[8*i:], c.data0)
		}
		return nil
	})
	return
}

func (h *Handle) RthJhashSet(c RthJhashConfig) error {
	v := titan.SteerDataJhashGolden.Val(uint64(c.Golden)) | titan.SteerDataJhashInit.Val(uint64(c.Init))
	_, err := h.rth_rw(titan.SteerTableRthJhashCfg, 0, v, 0, true)
	return err
}

func (h *Handle) RthJhashGet() (c RthJhashConfig, err error) {
	x, err := h.rth_rw(titan.SteerTableRthJhashCfg, 0, 0, 0, false)
	if err == nil {
		c.Golden = uint32(titan.SteerDataJhashGolden.Get(x.data0))
		c.Init = uint32(titan.SteerDataJhashInit.Get(x.data0))
	}
	return
}

func (h *Handle) RthMaskSet(m RthMask) error {
	d0 := uint64(m.Ipv4Sa)<<32 | uint64(m.Ipv4Da)
	d1 := uint64(m.L4Sp)<<16 | uint64(m.L4Dp)
	_, err := h.rth_rw(titan.SteerTableRthMask, 0, d0, d1, true)
	return err
}

func (h *Handle) RthMaskGet() (m RthMask, err error) {
	x, err := h.rth_rw(titan.SteerTableRthMask, 0, 0, 0, false)
	if err == nil {
		m.Ipv4Sa, m.Ipv4Da = uint32(x.data0>>32), uint32(x.data0)
		m.L4Sp, m.L4Dp = uint16(x.data1>>16), uint16(x.data1)
	}
	return
}

// Items per steer of multi item indirection table.
const rth_items_per_steer = 4

func itable_check(n int) error {
	if n == 0 || n > 1<<RthMaxBucketSize {
		return fmt.Errorf("rth itable size %d: %w", n, ErrInvalidParameter)
	}
	return nil
}

// RthItableSet maps hash bucket i to vpath itable[i].  Buckets past
// len(itable) keep their mapping.
func (h *Handle) RthItableSet(itable []uint) error {
	if err := itable_check(len(itable)); err != nil {
		return err
	}
	return h.with_open(func(p *VirtualPath) (err error) {
		d := p.d
		for b, vp := range itable {
			if !d.IsAssigned(vp) {
				return fmt.Errorf("%v: rth itable bucket %d: vpath %d: %w", p, b, vp, ErrVpathNotAvailable)
			}
		}
		if d.caps.RthItableMulti {
			return p.itable_write_multi(itable, true)
		}
		for b, vp := range itable {
			v := titan.SteerDataSoloBucket.Val(uint64(vp)) | titan.SteerDataSoloEn.Val(1)
			if _, err = p.rth_rw(titan.SteerTableRthSoloIt, uint64(b), v, 0, true); err != nil {
				return
			}
		}
		return
	})
}

// Item i of a multi itable entry is 32 bit half i%2 of data word i/2.
func item_shift(i int) uint { return 32 * uint(i%2) }

func (p *VirtualPath) itable_write_multi(itable []uint, enable bool) (err error) {
	for b0 := 0; b0 < len(itable); b0 += rth_items_per_steer {
		o := uint64(b0 / rth_items_per_steer)
		n := len(itable) - b0
		var d [2]uint64
		if n < rth_items_per_steer {
			// Partial group: keep items past end of table.
			var c steer_cmd
			if c, err = p.rth_rw(titan.SteerTableRthMultiIt, o, 0, 0, false); err != nil {
				return
			}
			d = [2]uint64{c.data0, c.data1}
		} else {
			n = rth_items_per_steer
		}
		for i := 0; i < n; i++ {
			b := b0 + i
			v := titan.SteerDataItemBucket.Val(uint64(b)) |
				titan.SteerDataItemVpath.Val(uint64(itable[b]))
			if enable {
				v |= titan.SteerDataItemEn.Val(1)
			}
			d[i/2] = d[i/2]&^(0xffffffff<<item_shift(i)) | v<<item_shift(i)
		}
		if _, err = p.rth_rw(titan.SteerTableRthMultiIt, o, d[0], d[1], true); err != nil {
			return
		}
	}
	return
}

// RthItableGet returns vpaths of first n hash buckets; disabled buckets read
// as -1.
func (h *Handle) RthItableGet(n int) (itable []int, err error) {
	if err = itable_check(n); err != nil {
		return
	}
	err = h.with_open(func(p *VirtualPath) (err error) {
		itable, err = p.itable_read(n)
		return
	})
	return
}

func (p *VirtualPath) itable_read(n int) (itable []int, err error) {
	itable = make([]int, n)
	if p.d.caps.RthItableMulti {
		for b0 := 0; b0 < n; b0 += rth_items_per_steer {
			var c steer_cmd
			if c, err = p.rth_rw(titan.SteerTableRthMultiIt, uint64(b0/rth_items_per_steer), 0, 0, false); err != nil {
				return
			}
			d := [2]uint64{c.data0, c.data1}
			for i := 0; i < rth_items_per_steer && b0+i < n; i++ {
				v := d[i/2] >> item_shift(i)
				itable[b0+i] = -1
				if titan.SteerDataItemEn.Get(v) != 0 {
					itable[b0+i] = int(titan.SteerDataItemVpath.Get(v))
				}
			}
		}
		return
	}
	for b := 0; b < n; b++ {
		var c steer_cmd
		if c, err = p.rth_rw(titan.SteerTableRthSoloIt, uint64(b), 0, 0, false); err != nil {
			return
		}
		itable[b] = -1
		if titan.SteerDataSoloEn.Get(c.data0) != 0 {
			itable[b] = int(titan.SteerDataSoloBucket.Get(c.data0))
		}
	}
	return
}

// RthItableClear disables first n hash buckets.
func (h *Handle) RthItableClear(n int) error {
	if err := itable_check(n); err != nil {
		return err
	}
	return h.with_open(func(p *VirtualPath) (err error) {
		if p.d.caps.RthItableMulti {
			return p.itable_write_multi(make([]uint, n), false)
		}
		for b := 0; b < n; b++ {
			if _, err = p.rth_rw(titan.SteerTableRthSoloIt, uint64(b), 0, 0, true); err != nil {
				return
			}
		}
		return
	})
}
