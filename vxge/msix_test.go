// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"testing"

	"github.com/platinasystems/vxge/internal/titan"
)

func TestMsixOwner(t *testing.T) {
	x := new_tester(t, test_config())
	e, err := x.d.MsixOwner(9)
	x.Nil(err)
	if e != (MsixEntry{Vp: 2, Index: titan.IntrRx, Valid: true}) {
		t.Errorf("vector 9: got %+v", e)
	}
	// Vpaths 8 and up are not assigned.
	_, err = x.d.MsixOwner(8 * titan.MaxIntrPerVp)
	x.Error(err, ErrInvalidIndex)
	_, err = x.d.MsixOwner(titan.MaxMsixVectors)
	x.Error(err, ErrInvalidIndex)
}

func TestMsixSet(t *testing.T) {
	x := new_tester(t, test_config())
	h := x.open(0, VpathConfig{})
	p := h.Vpath()

	x.Error(h.MsixSet([4]uint{40, 41, 42, 5}), ErrInvalidIndex)
	x.Error(h.MsixSet([4]uint{40, 41, 40, 43}), ErrInvalidIndex)
	x.Error(h.MsixSet([4]uint{40, 41, 42, titan.MaxMsixVectors}), ErrInvalidIndex)
	x.Equal(p.Interrupt(titan.IntrTx), uint(0))

	x.Nil(h.MsixSet([4]uint{40, 41, 42, 43}))
	x.Equal(p.Interrupt(titan.IntrTx), uint(40))
	x.Equal(p.Interrupt(titan.IntrEinta), uint(42))
	e, err := x.d.MsixOwner(41)
	x.Nil(err)
	x.Equal(e.Vp, uint(0))
	x.Equal(e.Index, uint(titan.IntrRx))
	_, err = x.d.MsixOwner(0)
	x.Error(err, ErrInvalidIndex)

	v := x.a.VpPeek(0, titan.VpInterruptCfg0)
	x.Equal(titan.InterruptCfg0Tx.Get(v), uint64(40))
	x.Equal(titan.InterruptCfg0Rx.Get(v), uint64(41))
	x.Equal(titan.InterruptCfg2Alm.Get(x.a.VpPeek(0, titan.VpInterruptCfg2)), uint64(42))
	x.Equal(titan.TimRingAssnIntNum.Get(x.a.VpPeek(0, titan.VpTimRingAssn)), uint64(41))

	// Vectors may be moved back.
	x.Nil(h.MsixSet([4]uint{0, 1, 2, 3}))
	_, err = x.d.MsixOwner(40)
	x.Error(err, ErrInvalidIndex)

	// Assignment outlives close.
	x.Nil(h.MsixSet([4]uint{43, 42, 41, 40}))
	x.Nil(h.Close())
	h = x.open(0, VpathConfig{})
	x.Equal(h.Vpath().Interrupt(titan.IntrTx), uint(43))
}

func TestMsixMask(t *testing.T) {
	x := new_tester(t, test_config())
	h := x.open(1, VpathConfig{})
	rx := uint(1*titan.MaxIntrPerVp + titan.IntrRx)

	x.Nil(h.MsixMask(titan.IntrRx))
	masked, err := x.d.MsixMasked(rx)
	x.Nil(err)
	x.True(masked)
	x.Nil(h.MsixClear(titan.IntrRx))
	masked, _ = x.d.MsixMasked(rx)
	x.False(masked)
	x.Error(h.MsixMask(titan.MaxIntrPerVp), ErrInvalidIndex)

	x.Nil(h.MsixMaskAll())
	for i := uint(0); i < titan.MaxIntrPerVp; i++ {
		masked, _ = x.d.MsixMasked(titan.MaxIntrPerVp + i)
		x.True(masked)
	}
	masked, _ = x.d.MsixMasked(0)
	x.False(masked)
	x.Nil(h.MsixUnmaskAll())
	masked, _ = x.d.MsixMasked(rx)
	x.False(masked)

	// Vectors past the first mask word.
	x.Nil(x.d.MsixMask(65))
	x.Equal(x.a.Peek(titan.MsixMaskVect+8), uint64(1<<1))
	x.Nil(x.d.MsixUnmask(65))
	x.Equal(x.a.Peek(titan.MsixMaskVect+8), uint64(0))

	x.d.MsixMaskAll()
	x.Equal(x.a.Peek(titan.MsixMaskVect), uint64(1<<32-1))
	x.d.MsixUnmaskAll()
	x.Equal(x.a.Peek(titan.MsixMaskVect), uint64(0))
}

func TestMsixOneShot(t *testing.T) {
	cfg := test_config()
	cfg.IntrMode = IntrModeMsixOneShot
	x := new_tester(t, cfg)
	h := x.open(0, VpathConfig{})
	x.Nil(h.MsixMask(titan.IntrTx))
	x.Nil(h.MsixClear(titan.IntrTx))
	x.Equal(x.a.NOneShot, 1)
	// One shot re-arm leaves mask alone.
	masked, err := x.d.MsixMasked(0)
	x.Nil(err)
	x.True(masked)
}
