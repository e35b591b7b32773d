// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"testing"

	"github.com/platinasystems/vxge/internal/titan"
)

func TestMtu(t *testing.T) {
	x := new_tester(t, test_config())
	h := x.open(0, VpathConfig{})
	frame_len := func() uint64 {
		return titan.RxmacVcfg0MaxFrmLen.Get(x.a.VpPeek(0, titan.VpRxmacVcfg0))
	}
	if got, want := frame_len(), uint64(DefaultMtu+MacHeaderMaxSize); got != want {
		t.Errorf("frame len: got %d want %d", got, want)
	}
	for _, tc := range []struct {
		mtu uint32
		ok  bool
	}{
		{MinMtu - 1, false},
		{MinMtu, true},
		{9000, true},
		{9582, true},
		{9583, false},
	} {
		err := h.MtuCheck(tc.mtu)
		if (err == nil) != tc.ok {
			t.Errorf("mtu check %d: got %v", tc.mtu, err)
		}
		if err = h.MtuSet(tc.mtu); (err == nil) != tc.ok {
			t.Errorf("mtu set %d: got %v", tc.mtu, err)
		}
		if !tc.ok {
			x.Error(err, ErrInvalidMtuSize)
		}
	}
	x.Nil(h.MtuSet(9000))
	x.Nil(h.MtuSet(9000))
	mtu, err := h.Mtu()
	x.Nil(err)
	x.Equal(mtu, uint32(9000))
	x.Equal(frame_len(), uint64(9000+MacHeaderMaxSize))
}

func TestKdfcPartition(t *testing.T) {
	x := new_tester(t, test_config())
	cfg := ring_fifo()
	cfg.Fifo.Length = 16
	h := x.open(1, cfg)
	x.Equal(h.Vpath().MaxFifoLength(), uint32(32))
	v := x.a.VpPeek(1, titan.VpKdfcFifoPartition)
	x.Equal(titan.KdfcPartitionLength0.Get(v), uint64(16))
	x.Equal(titan.KdfcPartitionLength1.Get(v), uint64(48))
	x.Equal(x.f.fifos[1].attr.Length, uint32(16))
	x.Nil(h.Close())

	// Zero length takes all the fifo may have.
	h = x.open(1, ring_fifo())
	v = x.a.VpPeek(1, titan.VpKdfcFifoPartition)
	x.Equal(titan.KdfcPartitionLength0.Get(v), uint64(32))
	x.Nil(h.Close())

	// Without fifo everything goes to the message partition.
	h = x.open(1, VpathConfig{})
	v = x.a.VpPeek(1, titan.VpKdfcFifoPartition)
	x.Equal(titan.KdfcPartitionLength0.Get(v), uint64(0))
	x.Equal(titan.KdfcPartitionLength1.Get(v), uint64(64))
}

func TestRxmacFlags(t *testing.T) {
	x := new_tester(t, test_config())
	h := x.open(0, VpathConfig{McastAllEnable: Bool(true)})
	rxmac := func() uint64 { return x.a.VpPeek(0, titan.VpRxmacVcfg0) }
	promisc := func() bool {
		on, err := h.Promisc()
		x.Nil(err)
		return on
	}
	x.True(rxmac()&titan.RxmacVcfg0McastAll != 0)
	x.False(promisc())

	x.Nil(h.PromiscEnable())
	x.True(promisc())
	x.True(rxmac()&titan.RxmacVcfg0UcastAll != 0)

	x.Nil(h.McastDisable())
	x.False(promisc())
	x.True(rxmac()&titan.RxmacVcfg0UcastAll != 0)

	x.Nil(h.BcastDisable())
	x.True(rxmac()&titan.RxmacVcfg0Bcast == 0)
	x.Nil(h.BcastEnable())
	x.True(rxmac()&titan.RxmacVcfg0Bcast != 0)

	x.Nil(h.AllVidEnable())
	x.True(rxmac()&titan.RxmacVcfg0AllVid != 0)
	x.Nil(h.AllVidDisable())
	x.Nil(h.UcastDisable())
	x.True(rxmac()&(titan.RxmacVcfg0AllVid|titan.RxmacVcfg0UcastAll) == 0)

	// Frame length is not disturbed by flag updates.
	mtu, err := h.Mtu()
	x.Nil(err)
	x.Equal(mtu, uint32(DefaultMtu))

	x.Nil(h.StripVlanTagEnable())
	x.True(x.a.VpPeek(0, titan.VpXmacRpaVcfg)&titan.XmacRpaStripVlanTag != 0)
	x.Nil(h.StripVlanTagDisable())
	x.True(x.a.VpPeek(0, titan.VpXmacRpaVcfg)&titan.XmacRpaStripVlanTag == 0)

	x.Nil(h.PromiscEnable())
	x.Nil(h.Close())
	_, err = h.Promisc()
	x.Error(err, ErrInvalidHandle)
	var nh *Handle
	_, err = nh.Promisc()
	x.Error(err, ErrInvalidHandle)
}

func TestProtocolAssist(t *testing.T) {
	x := new_tester(t, test_config())
	x.open(2, VpathConfig{
		RpaStripVlanTag:     Bool(true),
		RpaIgnoreFrameError: Bool(true),
		RpaL4CompCsum:       Bool(true),
		TpaIgnoreFrameError: Bool(true),
	})
	x.True(x.a.VpPeek(2, titan.VpXmacRpaVcfg)&titan.XmacRpaStripVlanTag != 0)
	x.True(x.a.VpPeek(2, titan.VpXmacRpaVcfg)&titan.XmacRpaIgnoreFrmErr != 0)
	x.True(x.a.VpPeek(2, titan.VpFauRpaVcfg)&titan.FauRpaL4CompCsum != 0)
	x.True(x.a.VpPeek(2, titan.VpFauRpaVcfg)&titan.FauRpaL3CompCsum == 0)
	x.True(x.a.VpPeek(2, titan.VpTpaCfg)&titan.TpaIgnoreFrameErr != 0)
	x.Equal(x.a.VpPeek(2, titan.VpXmacVsport), uint64(2))
}

func TestTimConfig(t *testing.T) {
	x := new_tester(t, test_config())
	h := x.open(0, VpathConfig{
		Rti: TimConfig{Enable: Bool(true), RtimerVal: U32(7)},
	})
	cfg1 := func(i uint) uint64 { return x.a.VpPeek(0, titan.VpTimCfg1IntNum+8*uint64(i)) }
	cfg3 := func(i uint) uint64 { return x.a.VpPeek(0, titan.VpTimCfg3IntNum+8*uint64(i)) }
	x.True(cfg1(titan.IntrRx)&titan.TimCfg1TimerEn != 0)
	x.Equal(titan.TimCfg3RtimerVal.Get(cfg3(titan.IntrRx)), uint64(7))
	x.True(cfg1(titan.IntrTx)&titan.TimCfg1TimerEn == 0)

	x.Nil(h.SetTti(TimConfig{BtimerVal: U32(250), TimerCiEn: Bool(true)}))
	x.Equal(titan.TimCfg1BtimerVal.Get(cfg1(titan.IntrTx)), uint64(250))
	x.True(cfg1(titan.IntrTx)&titan.TimCfg1TimerCi != 0)

	// Later updates keep earlier settings.
	x.Nil(h.SetTti(TimConfig{UtilSel: U32(3)}))
	x.Equal(titan.TimCfg1BtimerVal.Get(cfg1(titan.IntrTx)), uint64(250))
	x.Equal(titan.TimCfg3UtilSel.Get(cfg3(titan.IntrTx)), uint64(3))

	x.Nil(h.SetRti(TimConfig{Enable: Bool(false)}))
	x.True(cfg1(titan.IntrRx)&titan.TimCfg1TimerEn == 0)
	x.Equal(titan.TimCfg3RtimerVal.Get(cfg3(titan.IntrRx)), uint64(7))

	x.Nil(h.SetTti(TimConfig{TxfrmCntEn: Bool(true)}))
	x.True(cfg1(titan.IntrTx)&titan.TimCfg1TxfrmCnt != 0)
	x.True(x.a.VpPeek(0, titan.VpTimPciCfg)&titan.TimPciCfgAddPad != 0)
}

func TestTimBitmap(t *testing.T) {
	cfg1 := func(x *tester, vp, i uint) uint64 {
		return x.a.VpPeek(vp, titan.VpTimCfg1IntNum+8*uint64(i))
	}

	// Line interrupt: traffic is found in timer status bitmap.
	x := new_tester(t, test_config())
	x.Equal(x.d.Config().IntrMode, IntrModeInta)
	x.open(0, VpathConfig{})
	x.True(cfg1(x, 0, titan.IntrTx)&titan.TimCfg1BitmpEn != 0)
	x.True(cfg1(x, 0, titan.IntrRx)&titan.TimCfg1BitmpEn != 0)
	x.True(cfg1(x, 0, titan.IntrEinta)&titan.TimCfg1BitmpEn == 0)

	cfg := test_config()
	cfg.IntrMode = IntrModeMsix
	x = new_tester(t, cfg)
	h := x.open(0, VpathConfig{Rti: TimConfig{BitmpEn: Bool(true)}})
	x.True(cfg1(x, 0, titan.IntrTx)&titan.TimCfg1BitmpEn == 0)
	x.True(cfg1(x, 0, titan.IntrRx)&titan.TimCfg1BitmpEn != 0)
	x.Nil(h.SetRti(TimConfig{BitmpEn: Bool(false)}))
	x.True(cfg1(x, 0, titan.IntrRx)&titan.TimCfg1BitmpEn == 0)
}

func TestIntrRouting(t *testing.T) {
	cfg := test_config()
	cfg.CacheLineSize = U32(2)
	x := new_tester(t, cfg)
	x.open(5, VpathConfig{})
	v := x.a.VpPeek(5, titan.VpInterruptCfg0)
	x.Equal(titan.InterruptCfg0Tx.Get(v), uint64(5*titan.MaxIntrPerVp+titan.IntrTx))
	x.Equal(titan.InterruptCfg0Rx.Get(v), uint64(5*titan.MaxIntrPerVp+titan.IntrRx))
	v = x.a.VpPeek(5, titan.VpInterruptCfg2)
	x.Equal(titan.InterruptCfg2Alm.Get(v), uint64(5*titan.MaxIntrPerVp+titan.IntrEinta))
	v = x.a.VpPeek(5, titan.VpTimRingAssn)
	x.Equal(titan.TimRingAssnIntNum.Get(v), uint64(5*titan.MaxIntrPerVp+titan.IntrRx))
	x.Equal(titan.GeneralCfg1CacheLine.Get(x.a.VpPeek(5, titan.VpGeneralCfg1)), uint64(2))
	x.Equal(x.a.VpPeek(5, titan.VpSwapperCtrl), uint64(titan.SwapperLittleEndian))
}
