// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"

	"github.com/platinasystems/log"
	"github.com/platinasystems/vxge/internal/titan"
)

// Firmware memo: adapter information kept by firmware.

func (d *Device) memo_read(vp, item, index uint) (c steer_cmd, err error) {
	c = steer_cmd{
		action: titan.SteerActionReadMemo,
		table:  titan.SteerTableFwMemo,
		offset: titan.MemoOffset(item, index),
	}
	err = d.steer(vp, &c)
	return
}

func (d *Device) memo_write(vp, item, index uint, d0, d1 uint64) error {
	c := steer_cmd{
		action: titan.SteerActionWriteMemo,
		table:  titan.SteerTableFwMemo,
		offset: titan.MemoOffset(item, index),
		data0:  d0,
		data1:  d1,
	}
	return d.steer(vp, &c)
}

// Strings are 32 bytes: 2 memo entries of 2 big endian words.
func (d *Device) memo_string(item uint) (s string, err error) {
	var b [32]byte
	for i := uint(0); i < 2; i++ {
		var c steer_cmd
		if c, err = d.memo_read(d.first_vpath(), item, i); err != nil {
			return
		}
		binary.BigEndian.PutUint64(b[16*i:], c.data0)
		binary.BigEndian.PutUint64(b[16*i+8:], c.data1)
	}
	s = string(bytes.TrimRight(b[:], "\x00 "))
	return
}

func (d *Device) SerialNumber() (string, error) { return d.memo_string(titan.MemoSerialNumber) }
func (d *Device) PartNumber() (string, error)   { return d.memo_string(titan.MemoPartNumber) }

// PmdInfo describes the port's transceiver.
func (d *Device) PmdInfo() (string, error) { return d.memo_string(titan.MemoPmdInfo) }

type Version struct {
	Major, Minor, Build uint16
	Year, Month, Day    uint16
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d %04d/%02d/%02d", v.Major, v.Minor, v.Build, v.Year, v.Month, v.Day)
}

func (d *Device) memo_version(item uint) (v Version, err error) {
	c, err := d.memo_read(d.first_vpath(), item, 0)
	if err != nil {
		return
	}
	v.Major = uint16(titan.MemoVersionMajor.Get(c.data0))
	v.Minor = uint16(titan.MemoVersionMinor.Get(c.data0))
	v.Build = uint16(titan.MemoVersionBuild.Get(c.data0))
	v.Year = uint16(titan.MemoDateYear.Get(c.data1))
	v.Month = uint16(titan.MemoDateMonth.Get(c.data1))
	v.Day = uint16(titan.MemoDateDay.Get(c.data1))
	return
}

func (d *Device) FwVersion() (Version, error)    { return d.memo_version(titan.MemoFwVersion) }
func (d *Device) FlashVersion() (Version, error) { return d.memo_version(titan.MemoFlashVersion) }

func (d *Device) memo_u64(vp, item, index uint) (v uint64, err error) {
	c, err := d.memo_read(vp, item, index)
	if err == nil {
		v = c.data0
	}
	return
}

func (d *Device) LagMode() (uint, error) {
	v, err := d.memo_u64(d.first_vpath(), titan.MemoLagMode, 0)
	return uint(v), err
}

// PCI function mode: number and kind of functions the adapter presents.
type FuncMode uint8

const (
	FuncModeSingle FuncMode = iota
	FuncModeMulti8
	FuncModeSriov8
	FuncModeMulti17
	FuncModeSriov17
	nFuncModes
)

var funcModeNames = [...]string{
	FuncModeSingle:  "single function",
	FuncModeMulti8:  "multi function 8",
	FuncModeSriov8:  "sr-iov 8",
	FuncModeMulti17: "multi function 17",
	FuncModeSriov17: "sr-iov 17",
}

func (m FuncMode) String() string {
	if m < nFuncModes {
		return funcModeNames[m]
	}
	return fmt.Sprintf("function mode %d", uint8(m))
}

func (d *Device) FuncMode() (FuncMode, error) {
	v, err := d.memo_u64(d.first_vpath(), titan.MemoFuncMode, 0)
	return FuncMode(v), err
}

// SetFuncMode takes effect after adapter reset.
func (d *Device) SetFuncMode(m FuncMode) error {
	if m >= nFuncModes {
		return fmt.Errorf("%v: %w", m, ErrInvalidParameter)
	}
	return d.memo_write(d.first_vpath(), titan.MemoFuncMode, 0, uint64(m), 0)
}

const (
	// Mbits per second.
	MaxBandwidth = 10000
	MaxPriority  = 7
)

// Bandwidth returns bandwidth limit of vpath in Mbps.
func (d *Device) Bandwidth(vp uint) (uint32, error) {
	if !d.IsAssigned(vp) {
		return 0, fmt.Errorf("%s: vpath %d: %w", d.cfg.Name, vp, ErrVpathNotAvailable)
	}
	v, err := d.memo_u64(vp, titan.MemoBandwidth, vp)
	return uint32(v), err
}

func (d *Device) SetBandwidth(vp uint, mbps uint32) error {
	if !d.IsAssigned(vp) {
		return fmt.Errorf("%s: vpath %d: %w", d.cfg.Name, vp, ErrVpathNotAvailable)
	}
	if mbps == 0 || mbps > MaxBandwidth {
		return fmt.Errorf("bandwidth %d: %w", mbps, ErrInvalidParameter)
	}
	return d.memo_write(vp, titan.MemoBandwidth, vp, uint64(mbps), 0)
}

func (d *Device) Priority(vp uint) (uint8, error) {
	if !d.IsAssigned(vp) {
		return 0, fmt.Errorf("%s: vpath %d: %w", d.cfg.Name, vp, ErrVpathNotAvailable)
	}
	v, err := d.memo_u64(vp, titan.MemoPriority, vp)
	return uint8(v), err
}

func (d *Device) SetPriority(vp uint, pri uint8) error {
	if !d.IsAssigned(vp) {
		return fmt.Errorf("%s: vpath %d: %w", d.cfg.Name, vp, ErrVpathNotAvailable)
	}
	if pri > MaxPriority {
		return fmt.Errorf("priority %d: %w", pri, ErrInvalidParameter)
	}
	return d.memo_write(vp, titan.MemoPriority, vp, uint64(pri), 0)
}

func (d *Device) fw_step(cmd uint64, data uint64) (resp uint64, err error) {
	c := steer_cmd{
		action: titan.SteerActionFwUpgrade,
		table:  titan.SteerTableFwMemo,
		offset: cmd,
		data0:  data,
	}
	if err = d.steer(d.first_vpath(), &c); err == nil {
		resp = c.data0
	}
	return
}

// FwUpgrade streams firmware image to adapter 8 bytes per steering command
// and commits it.  Commit is retried while adapter is busy, at most
// Config.FwUpgradeMaxSteps times.
func (d *Device) FwUpgrade(ctx context.Context, image []byte) (err error) {
	if len(image) == 0 {
		return fmt.Errorf("%s: empty firmware image: %w", d.cfg.Name, ErrInvalidParameter)
	}
	fail := func(step string, resp uint64) error {
		return fmt.Errorf("%s: firmware %s: response %d: %w", d.cfg.Name, step, resp, ErrFwUpgrade)
	}
	resp, err := d.fw_step(titan.FwUpgradeStart, uint64(len(image)))
	if err != nil {
		return
	}
	if resp != titan.FwUpgradeRespOk {
		return fail("start", resp)
	}
	for o := 0; o < len(image); o += 8 {
		if err = ctx.Err(); err != nil {
			return
		}
		var b [8]byte
		copy(b[:], image[o:])
		if resp, err = d.fw_step(titan.FwUpgradeData, binary.BigEndian.Uint64(b[:])); err != nil {
			return
		}
		if resp != titan.FwUpgradeRespOk {
			return fail("data", resp)
		}
	}
	bo := d.poll_backoff()
	for i := uint(0); i < d.cfg.FwUpgradeMaxSteps; i++ {
		if err = ctx.Err(); err != nil {
			return
		}
		if resp, err = d.fw_step(titan.FwUpgradeCommit, 0); err != nil {
			return
		}
		switch resp {
		case titan.FwUpgradeRespDone:
			log.Printf("info", "%s: firmware upgrade %d bytes done", d.cfg.Name, len(image))
			return nil
		case titan.FwUpgradeRespBusy:
			d.cfg.Sleep(bo.Duration())
		default:
			return fail("commit", resp)
		}
	}
	return fmt.Errorf("%s: firmware commit busy after %d tries: %w", d.cfg.Name,
		d.cfg.FwUpgradeMaxSteps, ErrFwUpgrade)
}
