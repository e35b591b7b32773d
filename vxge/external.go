// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import "fmt"

// Completion is one completed descriptor returned by a ring or fifo.
// Contents are opaque to the hal.
type Completion struct {
	Descriptor   interface{}
	Priv         interface{}
	TransferCode uint8
}

// Callback is called for each completion found while servicing an interrupt.
// Return false to stop polling.
type Callback func(h *Handle, c Completion, ctx interface{}) bool

// Ring is a receive descriptor ring.
type Ring interface {
	PollNext() (c Completion, ok bool)
	// Drop software state after a vpath reset.
	Reset()
	Delete()
	// Bus address of first descriptor block.
	FirstBlockAddr() uint64
}

// Fifo is a transmit descriptor list.
type Fifo interface {
	PollNext() (c Completion, ok bool)
	Reset()
	Delete()
}

type RingAttr struct {
	Blocks      uint
	Mtu         uint32
	ScatterMode *uint32
}

type FifoAttr struct {
	Blocks uint
	Length uint32
}

type RingFactory interface {
	CreateRing(vp uint, attr RingAttr) (Ring, error)
}

type FifoFactory interface {
	CreateFifo(vp uint, attr FifoAttr) (Fifo, error)
}

type MsgType uint8

const (
	MsgResetBegin MsgType = iota + 1
	MsgResetEnd
)

var msgTypeNames = [...]string{
	MsgResetBegin: "reset-begin",
	MsgResetEnd:   "reset-end",
}

func (t MsgType) String() string {
	if int(t) < len(msgTypeNames) && msgTypeNames[t] != "" {
		return msgTypeNames[t]
	}
	return fmt.Sprintf("msg-%d", uint8(t))
}

// Destination of message to all vpaths.
const MsgBroadcast = ^uint(0)

// Messenger posts inter vpath messages.
type Messenger interface {
	Post(vp, dst uint, typ MsgType, payload uint64) error
}

// EventHandler receives device level events.
type EventHandler interface {
	LinkUp(d *Device)
	LinkDown(d *Device)
	// Fatal error; vp is MsgBroadcast for device wide errors (slot freeze).
	Crit(d *Device, vp uint, err error)
}

type nop_messenger struct{}

func (nop_messenger) Post(vp, dst uint, typ MsgType, payload uint64) error { return nil }

type nop_events struct{}

func (nop_events) LinkUp(d *Device)                   {}
func (nop_events) LinkDown(d *Device)                 {}
func (nop_events) Crit(d *Device, vp uint, err error) {}
