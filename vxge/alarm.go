// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"fmt"

	"github.com/platinasystems/vxge/internal/bits"
	"github.com/platinasystems/vxge/internal/titan"
)

type AlarmClass uint8

const (
	AlarmClassPic AlarmClass = iota
	AlarmClassWrdma
	AlarmClassPci
	AlarmClassXmac
	AlarmClassGeneral
)

var alarmClassNames = [...]string{
	AlarmClassPic:     "pic",
	AlarmClassWrdma:   "wrdma",
	AlarmClassPci:     "pci",
	AlarmClassXmac:    "xmac",
	AlarmClassGeneral: "general",
}

func (c AlarmClass) String() string { return alarmClassNames[c] }

type Severity uint8

const (
	SeverityInfo Severity = iota
	SeverityRecoverable
	SeverityCritical
)

var severityNames = [...]string{
	SeverityInfo:        "info",
	SeverityRecoverable: "recoverable",
	SeverityCritical:    "critical",
}

func (s Severity) String() string { return severityNames[s] }

type Action uint8

const (
	ActionLogClear Action = iota
	ActionLinkEvent
	ActionFatal
)

var actionNames = [...]string{
	ActionLogClear:  "log and clear",
	ActionLinkEvent: "link event",
	ActionFatal:     "fatal",
}

func (a Action) String() string { return actionNames[a] }

// AlarmStatus is one decoded alarm cause.
type AlarmStatus struct {
	Class    AlarmClass
	Cause    string
	Bit      uint64
	Severity Severity
	Action   Action
}

func (s AlarmStatus) String() string {
	return fmt.Sprintf("%v %s (%v, %v)", s.Class, s.Cause, s.Severity, s.Action)
}

type alarm_cause struct {
	bit      uint64
	counter  SwCounter
	severity Severity
	action   Action
	// Error returned for fatal causes.
	err error
}

func (c *alarm_cause) name() string { return c.counter.String() }

type alarm_reg struct {
	// Bit in class summary register.
	summary_bit uint64
	reg         vreg
	causes      []alarm_cause
}

type alarm_class struct {
	class       AlarmClass
	general_bit uint64
	summary     vreg
	regs        []alarm_reg
}

func recoverable(bit uint64, c SwCounter) alarm_cause {
	return alarm_cause{bit: bit, counter: c, severity: SeverityRecoverable, action: ActionLogClear}
}

func info(bit uint64, c SwCounter) alarm_cause {
	return alarm_cause{bit: bit, counter: c, severity: SeverityInfo, action: ActionLogClear}
}

func fatal(bit uint64, c SwCounter, err error) alarm_cause {
	return alarm_cause{bit: bit, counter: c, severity: SeverityCritical, action: ActionFatal, err: err}
}

func link(bit uint64, c SwCounter) alarm_cause {
	return alarm_cause{bit: bit, counter: c, severity: SeverityInfo, action: ActionLinkEvent}
}

var alarm_tree = [...]alarm_class{
	{AlarmClassPic, titan.VpGeneralIntPic, titan.VpPpifIntStatus, []alarm_reg{
		{titan.PpifSrpcimToVpath, titan.VpSrpcimToVpathAlarm, []alarm_cause{
			fatal(titan.SrpcimToVpathAlarm, SwSrpcimToVpathAlarm, ErrSrpcimCritical),
		}},
		{titan.PpifMrpcimToVpath, titan.VpMrpcimToVpathAlarm, []alarm_cause{
			fatal(titan.MrpcimToVpathAlarm, SwMrpcimToVpathAlarm, ErrMrpcimCritical),
		}},
		{titan.PpifGeneralErrors, titan.VpGeneralErrors, []alarm_cause{
			recoverable(titan.GeneralErrorsDblgenFifo0Ovrflow, SwDblgenFifo0Overflow),
			recoverable(titan.GeneralErrorsDblgenFifo1Ovrflow, SwDblgenFifo1Overflow),
			recoverable(titan.GeneralErrorsDblgenFifo2Ovrflow, SwDblgenFifo2Overflow),
			recoverable(titan.GeneralErrorsStatsbPifChainErr, SwStatsbPifChainError),
			recoverable(titan.GeneralErrorsStatsbDropTimeout, SwStatsbDropTimeout),
			recoverable(titan.GeneralErrorsTgtIllegalAccess, SwTargetIllegalAccess),
			fatal(titan.GeneralErrorsIniSerrDet, SwIniSerrDet, ErrSerErrorDetected),
		}},
		{titan.PpifKdfcctlErrors, titan.VpKdfcctlErrors, []alarm_cause{
			fatal(titan.KdfcctlFifo0Ovrwr, SwKdfcFifo0Overwrite, ErrKdfcCtlError),
			fatal(titan.KdfcctlFifo1Ovrwr, SwKdfcFifo1Overwrite, ErrKdfcCtlError),
			fatal(titan.KdfcctlFifo2Ovrwr, SwKdfcFifo2Overwrite, ErrKdfcCtlError),
			fatal(titan.KdfcctlFifo0Poison, SwKdfcFifo0Poison, ErrKdfcCtlError),
			fatal(titan.KdfcctlFifo1Poison, SwKdfcFifo1Poison, ErrKdfcCtlError),
			fatal(titan.KdfcctlFifo2Poison, SwKdfcFifo2Poison, ErrKdfcCtlError),
			fatal(titan.KdfcctlFifo0DmaErr, SwKdfcFifo0DmaError, ErrKdfcCtlError),
			fatal(titan.KdfcctlFifo1DmaErr, SwKdfcFifo1DmaError, ErrKdfcCtlError),
			fatal(titan.KdfcctlFifo2DmaErr, SwKdfcFifo2DmaError, ErrKdfcCtlError),
		}},
	}},
	{AlarmClassWrdma, titan.VpGeneralIntWrdma, titan.VpWrdmaAlarmStatus, []alarm_reg{
		{titan.WrdmaPrcInt, titan.VpPrcAlarm, []alarm_cause{
			info(titan.PrcRingBump, SwPrcRingBump),
			fatal(titan.PrcRxdcmScErr, SwPrcRxdcmScError, ErrPrcFatal),
			fatal(titan.PrcRxdcmScAbort, SwPrcRxdcmScAbort, ErrPrcFatal),
			fatal(titan.PrcQuantaSize, SwPrcQuantaSize, ErrPrcFatal),
		}},
	}},
	{AlarmClassPci, titan.VpGeneralIntPci, titan.VpPcipifIntStatus, []alarm_reg{
		{titan.PcipifConfigErrors, titan.VpPciConfigErrors, []alarm_cause{
			recoverable(titan.PciConfigStatusErr, SwPciConfigStatusError),
			recoverable(titan.PciConfigUncorErr, SwPciConfigUncorError),
			recoverable(titan.PciConfigCorErr, SwPciConfigCorError),
		}},
	}},
	{AlarmClassXmac, titan.VpGeneralIntXmac, titan.VpXgmacIntStatus, []alarm_reg{
		{titan.XgmacAsicNtwkErr, titan.VpAsicNtwkErr, []alarm_cause{
			link(titan.AsicNtwkReafFault, SwNetworkSustainedFault),
			link(titan.AsicNtwkReafOk, SwNetworkSustainedOk),
			info(titan.AsicNtwkReafFaultOccurr, SwNetworkFaultOccurred),
			info(titan.AsicNtwkReafOkOccurr, SwNetworkOkOccurred),
		}},
	}},
}

// Write 1 to clear cause registers of every class.
var alarm_cause_regs = func() (r []vreg) {
	for i := range alarm_tree {
		for j := range alarm_tree[i].regs {
			r = append(r, alarm_tree[i].regs[j].reg)
		}
	}
	return
}()

// Decode vpath alarms.  Each cause found is counted.  Fatal causes are left
// set in hardware and returned; link transitions update device link state
// and return ErrLinkUpDown; other causes are logged and cleared unless
// skip_alarms is set.  Fatal takes precedence over link over unknown.
func (p *VirtualPath) alarm_process(skip_alarms bool) (err error) {
	d := p.d
	p.last_alarms = p.last_alarms[:0]

	g := vreg(titan.VpGeneralIntStatus).get(p)
	if g == ^uint64(0) && reg(titan.AdapterStatus).get(d) == ^uint64(0) {
		err = fmt.Errorf("%s: %w", d.cfg.Name, ErrSlotFreeze)
		d.crit(MsgBroadcast, err)
		return
	}

	var fatal_err, link_err, unknown_err error
	for i := range alarm_tree {
		c := &alarm_tree[i]
		if g&c.general_bit == 0 {
			continue
		}
		summary := c.summary.get(p)
		for j := range c.regs {
			r := &c.regs[j]
			if summary&r.summary_bit == 0 {
				continue
			}
			v := r.reg.get(p)
			known, clear := uint64(0), uint64(0)
			for k := range r.causes {
				x := &r.causes[k]
				known |= x.bit
				if v&x.bit == 0 {
					continue
				}
				p.sw[x.counter]++
				p.last_alarms = append(p.last_alarms, AlarmStatus{
					Class:    c.class,
					Cause:    x.name(),
					Bit:      x.bit,
					Severity: x.severity,
					Action:   x.action,
				})
				switch x.action {
				case ActionFatal:
					if fatal_err == nil {
						fatal_err = x.err
					}
				case ActionLinkEvent:
					p.link_event(x.bit)
					link_err = ErrLinkUpDown
					clear |= x.bit
				default:
					p.logf("note", "%v alarm: %s", c.class, x.name())
					clear |= x.bit
				}
			}
			if u := v &^ known; u != 0 {
				p.unknown_alarm(c.class, u)
				unknown_err = ErrUnknownAlarm
				clear |= u
			}
			if clear != 0 && !skip_alarms {
				r.reg.set(p, clear)
			}
		}
	}
	if u := g &^ titan.VpGeneralIntKnown; u != 0 {
		p.unknown_alarm(AlarmClassGeneral, u)
		unknown_err = ErrUnknownAlarm
	}
	d.regs.Barrier()

	switch {
	case fatal_err != nil:
		err = fmt.Errorf("%v: %w", p, fatal_err)
		d.crit(p.id, err)
	case link_err != nil:
		err = fmt.Errorf("%v: %w", p, link_err)
	case unknown_err != nil:
		err = fmt.Errorf("%v: %w", p, unknown_err)
	}
	return
}

func (p *VirtualPath) unknown_alarm(c AlarmClass, b uint64) {
	bits.Word(b).ForeachSetBit(func(i uint) {
		p.sw[SwUnknownAlarm]++
		p.last_alarms = append(p.last_alarms, AlarmStatus{
			Class:    c,
			Cause:    fmt.Sprintf("unknown bit %d", i),
			Bit:      1 << i,
			Severity: SeverityInfo,
			Action:   ActionLogClear,
		})
	})
	p.logf("warn", "%v alarm: unknown bits %#x", c, b)
}

func (p *VirtualPath) link_event(bit uint64) {
	up, rate := false, DataRateUnknown
	if bit == titan.AsicNtwkReafOk {
		up, rate = p.read_link()
		up = true
	}
	p.link_up = up
	if up {
		p.data_rate = rate
	}
	p.d.set_link(up, rate)
}

// Alarms returns causes decoded by last alarm processing of vpath.
func (h *Handle) Alarms() (a []AlarmStatus, err error) {
	p, err := h.lock()
	if err != nil {
		return
	}
	defer p.mu.Unlock()
	a = append(a, p.last_alarms...)
	return
}
