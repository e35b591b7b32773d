// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"reflect"
	"testing"

	"github.com/platinasystems/vxge/internal/titan"
)

func TestReset(t *testing.T) {
	x := new_tester(t, test_config())
	h := x.open(0, ring_fifo())
	x.Nil(h.MtuSet(9000))
	p := h.Vpath()
	n := x.a.NRstAsked[0]

	x.Nil(h.Reset())
	x.Equal(p.State(), ResetRequested)
	x.Equal(x.a.NRstAsked[0], n+1)
	x.Equal(titan.RxmacVcfg0MaxFrmLen.Get(x.a.VpPeek(0, titan.VpRxmacVcfg0)), uint64(1518))
	_, err := h.Mtu()
	x.Error(err, ErrInvalidState)
	x.Error(h.Reset(), ErrInvalidState)

	x.Nil(h.ResetPoll())
	x.Equal(p.State(), Open)
	x.Equal(x.f.rings[0].resets, 1)
	x.Equal(x.f.fifos[0].resets, 1)

	// Hardware is programmed as it was before reset.
	mtu, err := h.Mtu()
	x.Nil(err)
	x.Equal(mtu, uint32(9000))
	x.Equal(x.a.VpPeek(0, titan.VpPrcCfg5), x.f.rings[0].FirstBlockAddr())
	x.True(x.a.VpPeek(0, titan.VpStatsDmaAddr) != 0)
	x.True(x.a.Peek(titan.StatsCfg0)&1 != 0)

	want := []MsgType{MsgResetBegin, MsgResetEnd}
	if got := x.m.types(); !reflect.DeepEqual(got, want) {
		t.Errorf("messages: got %v want %v", got, want)
	}
	x.Error(h.ResetPoll(), ErrInvalidState)
}

func TestResetPollTimeout(t *testing.T) {
	x := new_tester(t, test_config())
	h := x.open(1, VpathConfig{})
	x.a.HoldReset = 1 << 1
	x.Nil(h.Reset())
	err := h.ResetPoll()
	x.Error(err, ErrTimeout)
	x.Equal(h.Vpath().State(), ResetRequested)

	x.a.HoldReset = 0
	x.Nil(h.ResetPoll())
	x.Equal(h.Vpath().State(), Open)
}

func TestCloseAfterResetTimeout(t *testing.T) {
	x := new_tester(t, test_config())
	h := x.open(1, ring_fifo())
	x.a.HoldReset = 1 << 1
	x.Nil(h.Reset())
	x.Error(h.ResetPoll(), ErrTimeout)
	x.Equal(h.Vpath().State(), ResetRequested)

	x.Nil(h.Close())
	x.Equal(h.Vpath().State(), NotOpen)
	x.True(x.f.rings[1].deleted)
	x.True(x.f.fifos[1].deleted)
	x.Equal(x.alloc.Used(), uint(0))
	x.True(x.a.Peek(titan.StatsCfg0)&(1<<1) == 0)
	want := []MsgType{MsgResetBegin, MsgResetEnd}
	if got := x.m.types(); !reflect.DeepEqual(got, want) {
		t.Errorf("messages: got %v want %v", got, want)
	}
	x.Nil(x.d.Detach())
}

func TestResetQuiesceTimeout(t *testing.T) {
	x := new_tester(t, test_config())
	h := x.open(0, VpathConfig{})
	x.a.RxBusy = true
	x.Error(h.Reset(), ErrTimeout)
	x.Equal(h.Vpath().State(), Open)
	x.Equal(len(x.m.types()), 0)
}

func TestResetMany(t *testing.T) {
	x := new_tester(t, test_config())
	var hs []*Handle
	for vp := uint(0); vp < 4; vp++ {
		hs = append(hs, x.open(vp, ring_fifo()))
	}
	for _, h := range hs {
		x.Nil(h.Reset())
	}
	for _, h := range hs {
		x.Nil(h.ResetPoll())
		x.Equal(h.Vpath().State(), Open)
	}
	for _, h := range hs {
		x.Nil(h.Close())
	}
	x.Equal(x.alloc.Used(), uint(0))
}
