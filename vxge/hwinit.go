// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"fmt"

	"github.com/platinasystems/vxge/internal/titan"
)

const (
	MinMtu     = 68
	DefaultMtu = 1500

	// Destination, source, vlan tag and type.
	MacHeaderMaxSize = 18
)

func (p *VirtualPath) read_link() (up bool, rate DataRate) {
	v := vreg(titan.VpMgmtPortLink).get(p)
	up = v&titan.MgmtPortLinkOk != 0
	rate = DataRate1G
	if v&titan.MgmtPortLink10G != 0 {
		rate = DataRate10G
	}
	return
}

// Learn port and function assignment from management registers.
func (p *VirtualPath) read_mgmt() {
	p.link_up, p.data_rate = p.read_link()
	p.d.set_link(p.link_up, p.data_rate)
	p.max_mtu = 0
	if x := uint32(vreg(titan.VpMgmtMaxPyldLen).get(p)); x > MacHeaderMaxSize {
		p.max_mtu = x - MacHeaderMaxSize
	}
	p.vsport = uint(vreg(titan.VpMgmtVsport).get(p))
	p.session_first = vreg(titan.VpMgmtSessionGroup).get(p)&titan.MgmtSessionFirst != 0
	p.bmap_root = vreg(titan.VpMgmtBmapRoot).get(p)
}

func (p *VirtualPath) mtu_check(mtu uint32) error {
	if mtu < MinMtu || mtu > p.max_mtu {
		return fmt.Errorf("%v: mtu %d not in [%d, %d]: %w", p, mtu, MinMtu, p.max_mtu, ErrInvalidMtuSize)
	}
	return nil
}

func (p *VirtualPath) config_mtu() (mtu uint32, err error) {
	if p.cfg.Mtu == nil {
		mtu = DefaultMtu
		if mtu > p.max_mtu {
			mtu = p.max_mtu
		}
		return
	}
	mtu = *p.cfg.Mtu
	err = p.mtu_check(mtu)
	return
}

// Hardware initialization shared by open and reset.
func (p *VirtualPath) hw_init() (err error) {
	vreg(titan.VpSwapperCtrl).set(p, titan.SwapperLittleEndian)
	if x := p.d.cfg.CacheLineSize; x != nil {
		vreg(titan.VpGeneralCfg1).set_field(p, titan.GeneralCfg1CacheLine, uint64(*x))
	}
	p.mac_init()
	if err = p.kdfc_init(); err != nil {
		return
	}
	p.tim_init()
	p.intr_config()
	return
}

func (p *VirtualPath) mac_init() {
	c := &p.cfg
	v := vreg(titan.VpRxmacVcfg0).get(p)
	v = titan.RxmacVcfg0MaxFrmLen.Set(v, uint64(p.mtu+MacHeaderMaxSize))
	v = flag(v, c.UcastAllEnable, titan.RxmacVcfg0UcastAll)
	v = flag(v, c.McastAllEnable, titan.RxmacVcfg0McastAll)
	v = flag(v, c.BcastEnable, titan.RxmacVcfg0Bcast)
	v = flag(v, c.AllVidEnable, titan.RxmacVcfg0AllVid)
	vreg(titan.VpRxmacVcfg0).set(p, v)
	const promisc = titan.RxmacVcfg0UcastAll | titan.RxmacVcfg0McastAll
	p.promisc = v&promisc == promisc

	v = vreg(titan.VpXmacRpaVcfg).get(p)
	v = flag(v, c.RpaStripVlanTag, titan.XmacRpaStripVlanTag)
	v = flag(v, c.RpaIgnoreFrameError, titan.XmacRpaIgnoreFrmErr)
	vreg(titan.VpXmacRpaVcfg).set(p, v)

	v = vreg(titan.VpFauRpaVcfg).get(p)
	v = flag(v, c.RpaL4CompCsum, titan.FauRpaL4CompCsum)
	v = flag(v, c.RpaL3InclCf, titan.FauRpaL3InclCf)
	v = flag(v, c.RpaL3CompCsum, titan.FauRpaL3CompCsum)
	vreg(titan.VpFauRpaVcfg).set(p, v)

	v = vreg(titan.VpTpaCfg).get(p)
	v = flag(v, c.TpaIgnoreFrameError, titan.TpaIgnoreFrameErr)
	v = flag(v, c.TpaIpv6KeepSearching, titan.TpaIpv6KeepSearching)
	v = flag(v, c.TpaL4PshdrPresent, titan.TpaL4PshdrPresent)
	v = flag(v, c.TpaSupportMobileIpv6Hdrs, titan.TpaSupportMobileIpv6Hd)
	vreg(titan.VpTpaCfg).set(p, v)

	vreg(titan.VpXmacVsport).set(p, uint64(p.vsport))
}

// Split doorbell fifo between non-offload (transmit fifo) and message
// partitions.
func (p *VirtualPath) kdfc_init() error {
	total := uint32(vreg(titan.VpKdfcDrblTotal).get(p))
	p.max_nofl = (total + 1) / 2

	n := uint32(0)
	if p.cfg.Fifo.Enable {
		if n = p.cfg.Fifo.Length; n == 0 {
			n = p.max_nofl
		}
		if n > p.max_nofl {
			return fmt.Errorf("%v: fifo length %d > %d: %w", p, n, p.max_nofl, ErrBadFifoLength)
		}
	}
	v := titan.KdfcPartitionLength0.Val(uint64(n)) |
		titan.KdfcPartitionLength1.Val(uint64(total-n))
	vreg(titan.VpKdfcFifoPartition).set(p, v)
	vreg(titan.VpKdfcFifoCtrl).set(p, titan.KdfcFifoCtrlTripletEn)
	vreg(titan.VpKdfcFifo0Ctrl).set(p, titan.KdfcFifoNonOffload|titan.KdfcFifoSwapEn)
	vreg(titan.VpKdfcFifo1Ctrl).set(p, titan.KdfcFifoSwapEn)
	vreg(titan.VpKdfcFifoOffset).set(p, 0)
	return nil
}

func (p *VirtualPath) tim_init() {
	for i := range p.tim_cfg1 {
		p.tim_cfg1[i] = vreg(titan.VpTimCfg1IntNum).at(uint(i)).get(p)
		p.tim_cfg2[i] = vreg(titan.VpTimCfg2IntNum).at(uint(i)).get(p)
		p.tim_cfg3[i] = vreg(titan.VpTimCfg3IntNum).at(uint(i)).get(p)
	}
	line := p.d.cfg.IntrMode.is_line()
	for _, i := range [...]uint{titan.IntrTx, titan.IntrRx} {
		p.tim_cfg1[i] = flag(p.tim_cfg1[i], &line, titan.TimCfg1BitmpEn)
	}
	p.tim_config(titan.IntrTx, &p.cfg.Tti)
	p.tim_config(titan.IntrRx, &p.cfg.Rti)
	vreg(titan.VpTimPciCfg).or(p, titan.TimPciCfgAddPad)
}

// Update interrupt moderation from saved register values; nil fields keep
// their current setting.
func (p *VirtualPath) tim_config(i uint, c *TimConfig) {
	v := p.tim_cfg1[i]
	v = field(v, c.BtimerVal, titan.TimCfg1BtimerVal)
	v = flag(v, c.TimerAcEn, titan.TimCfg1TimerAc)
	v = flag(v, c.TimerCiEn, titan.TimCfg1TimerCi)
	v = flag(v, c.TimerRiEn, titan.TimCfg1TimerRi)
	v = field(v, c.UrangeA, titan.TimCfg1UrangeA)
	v = field(v, c.UrangeB, titan.TimCfg1UrangeB)
	v = field(v, c.UrangeC, titan.TimCfg1UrangeC)
	v = flag(v, c.TxfrmCntEn, titan.TimCfg1TxfrmCnt)
	v = flag(v, c.BitmpEn, titan.TimCfg1BitmpEn)
	v = flag(v, c.Enable, titan.TimCfg1TimerEn)
	vreg(titan.VpTimCfg1IntNum).at(i).set(p, v)
	p.tim_cfg1[i] = v

	v = p.tim_cfg2[i]
	v = field(v, c.UecA, titan.TimCfg2UecA)
	v = field(v, c.UecB, titan.TimCfg2UecB)
	v = field(v, c.UecC, titan.TimCfg2UecC)
	v = field(v, c.UecD, titan.TimCfg2UecD)
	vreg(titan.VpTimCfg2IntNum).at(i).set(p, v)
	p.tim_cfg2[i] = v

	v = p.tim_cfg3[i]
	v = field(v, c.RtimerVal, titan.TimCfg3RtimerVal)
	v = field(v, c.UtilSel, titan.TimCfg3UtilSel)
	v = field(v, c.LtimerVal, titan.TimCfg3LtimerVal)
	vreg(titan.VpTimCfg3IntNum).at(i).set(p, v)
	p.tim_cfg3[i] = v
}

// Route vpath interrupts to assigned vectors.
func (p *VirtualPath) intr_config() {
	v := titan.InterruptCfg0Tx.Val(uint64(p.intr[titan.IntrTx])) |
		titan.InterruptCfg0Rx.Val(uint64(p.intr[titan.IntrRx]))
	vreg(titan.VpInterruptCfg0).set(p, v)
	vreg(titan.VpInterruptCfg2).set(p, titan.InterruptCfg2Alm.Val(uint64(p.intr[titan.IntrEinta])))
	vreg(titan.VpTimRingAssn).set(p, titan.TimRingAssnIntNum.Val(uint64(p.intr[titan.IntrRx])))
}

// Program receive controller with ring.
func (p *VirtualPath) prc_config() {
	v := vreg(titan.VpPrcCfg4).get(p)
	v |= titan.PrcCfg4InService
	v = titan.PrcCfg4RingMode.Set(v, 0)
	if x := p.cfg.Ring.RthEnable; x != nil {
		v = flag(v, Bool(!*x), titan.PrcCfg4RthDisable)
	}
	vreg(titan.VpPrcCfg4).set(p, v)
	vreg(titan.VpPrcCfg5).set(p, p.ring.FirstBlockAddr())
	vreg(titan.VpPrcCfg6).or(p, titan.PrcCfg6DoorbellEn)
	if x := p.cfg.Ring.ScatterMode; x != nil {
		vreg(titan.VpPrcCfg7).set_field(p, titan.PrcCfg7Scatter, uint64(*x))
	}
}

// MtuCheck validates mtu against vpath range.
func (h *Handle) MtuCheck(mtu uint32) error {
	return h.with_open(func(p *VirtualPath) error { return p.mtu_check(mtu) })
}

func (h *Handle) MtuSet(mtu uint32) error {
	return h.with_open(func(p *VirtualPath) error {
		if err := p.mtu_check(mtu); err != nil {
			return err
		}
		vreg(titan.VpRxmacVcfg0).set_field(p, titan.RxmacVcfg0MaxFrmLen, uint64(mtu+MacHeaderMaxSize))
		p.mtu = mtu
		return nil
	})
}

// Mtu as programmed in hardware.
func (h *Handle) Mtu() (mtu uint32, err error) {
	err = h.vpath_locked(func(p *VirtualPath) {
		v := uint32(titan.RxmacVcfg0MaxFrmLen.Get(vreg(titan.VpRxmacVcfg0).get(p)))
		if v >= MacHeaderMaxSize {
			mtu = v - MacHeaderMaxSize
		}
	})
	return
}

// SetTti and SetRti update interrupt moderation of open vpath.
func (h *Handle) SetTti(c TimConfig) error { return h.set_tim(titan.IntrTx, &c) }
func (h *Handle) SetRti(c TimConfig) error { return h.set_tim(titan.IntrRx, &c) }

func (h *Handle) set_tim(i uint, c *TimConfig) error {
	return h.vpath_locked(func(p *VirtualPath) { p.tim_config(i, c) })
}

func (h *Handle) rxmac_flag(m uint64, enable bool) error {
	return h.vpath_locked(func(p *VirtualPath) {
		if enable {
			vreg(titan.VpRxmacVcfg0).or(p, m)
		} else {
			vreg(titan.VpRxmacVcfg0).andnot(p, m)
		}
		const promisc = titan.RxmacVcfg0UcastAll | titan.RxmacVcfg0McastAll
		p.promisc = vreg(titan.VpRxmacVcfg0).get(p)&promisc == promisc
	})
}

func (h *Handle) PromiscEnable() error {
	return h.rxmac_flag(titan.RxmacVcfg0UcastAll|titan.RxmacVcfg0McastAll, true)
}
func (h *Handle) PromiscDisable() error {
	return h.rxmac_flag(titan.RxmacVcfg0UcastAll|titan.RxmacVcfg0McastAll, false)
}
func (h *Handle) BcastEnable() error   { return h.rxmac_flag(titan.RxmacVcfg0Bcast, true) }
func (h *Handle) BcastDisable() error  { return h.rxmac_flag(titan.RxmacVcfg0Bcast, false) }
func (h *Handle) McastEnable() error   { return h.rxmac_flag(titan.RxmacVcfg0McastAll, true) }
func (h *Handle) McastDisable() error  { return h.rxmac_flag(titan.RxmacVcfg0McastAll, false) }
func (h *Handle) UcastEnable() error   { return h.rxmac_flag(titan.RxmacVcfg0UcastAll, true) }
func (h *Handle) UcastDisable() error  { return h.rxmac_flag(titan.RxmacVcfg0UcastAll, false) }
func (h *Handle) AllVidEnable() error  { return h.rxmac_flag(titan.RxmacVcfg0AllVid, true) }
func (h *Handle) AllVidDisable() error { return h.rxmac_flag(titan.RxmacVcfg0AllVid, false) }

// Promisc reports whether vpath receives all unicast and multicast frames.
func (h *Handle) Promisc() (on bool, err error) {
	err = h.vpath_locked(func(p *VirtualPath) { on = p.promisc })
	return
}

func (h *Handle) StripVlanTagEnable() error  { return h.rpa_flag(titan.XmacRpaStripVlanTag, true) }
func (h *Handle) StripVlanTagDisable() error { return h.rpa_flag(titan.XmacRpaStripVlanTag, false) }

func (h *Handle) rpa_flag(m uint64, enable bool) error {
	return h.vpath_locked(func(p *VirtualPath) {
		if enable {
			vreg(titan.VpXmacRpaVcfg).or(p, m)
		} else {
			vreg(titan.VpXmacRpaVcfg).andnot(p, m)
		}
	})
}
