// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import "github.com/platinasystems/vxge/internal/titan"

// HwStat indexes the hardware statistics block; counter i is at byte 8*i of
// the dma block and register titan.VpStatsWindow + 8*i.
type HwStat uint

const (
	TxFrames HwStat = iota
	TxOctets
	TxDataOctets
	TxMcastFrames
	TxBcastFrames
	TxUcastFrames
	TxTaggedFrames
	TxVldIpFrames
	TxVldIpOctets
	TxIcmpFrames
	TxTcpFrames
	TxRstTcpFrames
	TxUdpFrames
	TxParseError
	TxUnknownProtocol
	TxLostIp
	TxTcpOffload
	TxRetxTcpOffload
	TxLostIpOffload
	RxTtlFrames
	RxVldFrames
	RxOffloadFrames
	RxTtlOctets
	RxDataOctets
	RxOffloadOctets
	RxVldMcastFrames
	RxVldBcastFrames
	RxAccUcastFrames
	RxAccNucastFrames
	RxTaggedFrames
	RxLongFrames
	RxUsizedFrames
	RxOsizedFrames
	RxFragFrames
	RxJabberFrames
	RxTtl64Frames
	RxTtl65_127Frames
	RxTtl128_255Frames
	RxTtl256_511Frames
	RxTtl512_1023Frames
	RxTtl1024_1518Frames
	RxTtl1519_4095Frames
	RxTtl4096_8191Frames
	RxTtl8192MaxFrames
	RxIpFrames
	RxIpOctets
	RxHdrErrIpFrames
	RxIcmpFrames
	RxTcpFrames
	RxUdpFrames
	RxErrTcpFrames
	RxLostFrames
	RxLostIp
	RxLostIpOffload
	RxQueueFullDiscard
	RxRedDiscard
	RxSleepDiscard
	RxMpaOkFrames
	NHwStats
)

var hwStatNames = [NHwStats]string{
	TxFrames:             "tx frames",
	TxOctets:             "tx octets",
	TxDataOctets:         "tx data octets",
	TxMcastFrames:        "tx multicast frames",
	TxBcastFrames:        "tx broadcast frames",
	TxUcastFrames:        "tx unicast frames",
	TxTaggedFrames:       "tx tagged frames",
	TxVldIpFrames:        "tx valid ip frames",
	TxVldIpOctets:        "tx valid ip octets",
	TxIcmpFrames:         "tx icmp frames",
	TxTcpFrames:          "tx tcp frames",
	TxRstTcpFrames:       "tx tcp reset frames",
	TxUdpFrames:          "tx udp frames",
	TxParseError:         "tx parse errors",
	TxUnknownProtocol:    "tx unknown protocol",
	TxLostIp:             "tx lost ip",
	TxTcpOffload:         "tx tcp offload",
	TxRetxTcpOffload:     "tx tcp offload retransmits",
	TxLostIpOffload:      "tx lost ip offload",
	RxTtlFrames:          "rx frames",
	RxVldFrames:          "rx valid frames",
	RxOffloadFrames:      "rx offload frames",
	RxTtlOctets:          "rx octets",
	RxDataOctets:         "rx data octets",
	RxOffloadOctets:      "rx offload octets",
	RxVldMcastFrames:     "rx valid multicast frames",
	RxVldBcastFrames:     "rx valid broadcast frames",
	RxAccUcastFrames:     "rx accepted unicast frames",
	RxAccNucastFrames:    "rx accepted non-unicast frames",
	RxTaggedFrames:       "rx tagged frames",
	RxLongFrames:         "rx long frames",
	RxUsizedFrames:       "rx undersize frames",
	RxOsizedFrames:       "rx oversize frames",
	RxFragFrames:         "rx fragments",
	RxJabberFrames:       "rx jabbers",
	RxTtl64Frames:        "rx 64 byte frames",
	RxTtl65_127Frames:    "rx 65 to 127 byte frames",
	RxTtl128_255Frames:   "rx 128 to 255 byte frames",
	RxTtl256_511Frames:   "rx 256 to 511 byte frames",
	RxTtl512_1023Frames:  "rx 512 to 1023 byte frames",
	RxTtl1024_1518Frames: "rx 1024 to 1518 byte frames",
	RxTtl1519_4095Frames: "rx 1519 to 4095 byte frames",
	RxTtl4096_8191Frames: "rx 4096 to 8191 byte frames",
	RxTtl8192MaxFrames:   "rx 8192 to max byte frames",
	RxIpFrames:           "rx ip frames",
	RxIpOctets:           "rx ip octets",
	RxHdrErrIpFrames:     "rx ip header errors",
	RxIcmpFrames:         "rx icmp frames",
	RxTcpFrames:          "rx tcp frames",
	RxUdpFrames:          "rx udp frames",
	RxErrTcpFrames:       "rx tcp errors",
	RxLostFrames:         "rx lost frames",
	RxLostIp:             "rx lost ip",
	RxLostIpOffload:      "rx lost ip offload",
	RxQueueFullDiscard:   "rx queue full discards",
	RxRedDiscard:         "rx red discards",
	RxSleepDiscard:       "rx sleep discards",
	RxMpaOkFrames:        "rx mpa ok frames",
}

func (s HwStat) String() string { return hwStatNames[s] }

// Offset of counter in vpath register block.
func (s HwStat) offset() uint64 { return titan.VpStatsWindow + 8*uint64(s) }

// DbgStat indexes debug counters read one register at a time.
type DbgStat uint

const (
	DbgRxFramesTransferred DbgStat = iota
	DbgRxdsReturned
	DbgTxFramesTransferred
	DbgTxdsReturned
	DbgRxMpaCrcFailFrames
	DbgRxMpaMrkFailFrames
	DbgRxMpaLenFailFrames
	DbgRxFwDiscard
	DbgRxRingDiscard
	DbgRxRedDiscard
	DbgRxQueueFullDiscard
	DbgRxVpResetDiscard
	DbgTxVpResetDiscard
	DbgTxAnyFrames
	NDbgStats
)

var dbgStatNames = [NDbgStats]string{
	DbgRxFramesTransferred: "debug rx frames transferred",
	DbgRxdsReturned:        "debug rx descriptors returned",
	DbgTxFramesTransferred: "debug tx frames transferred",
	DbgTxdsReturned:        "debug tx descriptors returned",
	DbgRxMpaCrcFailFrames:  "debug rx mpa crc fail frames",
	DbgRxMpaMrkFailFrames:  "debug rx mpa marker fail frames",
	DbgRxMpaLenFailFrames:  "debug rx mpa length fail frames",
	DbgRxFwDiscard:         "debug rx firmware discards",
	DbgRxRingDiscard:       "debug rx ring discards",
	DbgRxRedDiscard:        "debug rx red discards",
	DbgRxQueueFullDiscard:  "debug rx queue full discards",
	DbgRxVpResetDiscard:    "debug rx vpath reset discards",
	DbgTxVpResetDiscard:    "debug tx vpath reset discards",
	DbgTxAnyFrames:         "debug tx frames",
}

func (s DbgStat) String() string { return dbgStatNames[s] }

func (s DbgStat) offset() uint64 { return titan.VpDbgStats + 8*uint64(s) }

// SwCounter indexes software counters kept per vpath.
type SwCounter uint

const (
	SwSrpcimToVpathAlarm SwCounter = iota
	SwMrpcimToVpathAlarm
	SwDblgenFifo0Overflow
	SwDblgenFifo1Overflow
	SwDblgenFifo2Overflow
	SwStatsbPifChainError
	SwStatsbDropTimeout
	SwTargetIllegalAccess
	SwIniSerrDet
	SwKdfcFifo0Overwrite
	SwKdfcFifo1Overwrite
	SwKdfcFifo2Overwrite
	SwKdfcFifo0Poison
	SwKdfcFifo1Poison
	SwKdfcFifo2Poison
	SwKdfcFifo0DmaError
	SwKdfcFifo1DmaError
	SwKdfcFifo2DmaError
	SwPrcRingBump
	SwPrcRxdcmScError
	SwPrcRxdcmScAbort
	SwPrcQuantaSize
	SwPciConfigStatusError
	SwPciConfigUncorError
	SwPciConfigCorError
	SwNetworkSustainedFault
	SwNetworkSustainedOk
	SwNetworkFaultOccurred
	SwNetworkOkOccurred
	SwUnknownAlarm
	SwWrongIrq
	SwTrafficIrq
	SwAlarmIrq
	SwCompletions
	NSwCounters
)

var swCounterNames = [NSwCounters]string{
	SwSrpcimToVpathAlarm:    "srpcim to vpath alarms",
	SwMrpcimToVpathAlarm:    "mrpcim to vpath alarms",
	SwDblgenFifo0Overflow:   "doorbell fifo 0 overflows",
	SwDblgenFifo1Overflow:   "doorbell fifo 1 overflows",
	SwDblgenFifo2Overflow:   "doorbell fifo 2 overflows",
	SwStatsbPifChainError:   "stats pif chain errors",
	SwStatsbDropTimeout:     "stats drop timeouts",
	SwTargetIllegalAccess:   "target illegal accesses",
	SwIniSerrDet:            "serious errors detected",
	SwKdfcFifo0Overwrite:    "kdfc fifo 0 overwrites",
	SwKdfcFifo1Overwrite:    "kdfc fifo 1 overwrites",
	SwKdfcFifo2Overwrite:    "kdfc fifo 2 overwrites",
	SwKdfcFifo0Poison:       "kdfc fifo 0 poisons",
	SwKdfcFifo1Poison:       "kdfc fifo 1 poisons",
	SwKdfcFifo2Poison:       "kdfc fifo 2 poisons",
	SwKdfcFifo0DmaError:     "kdfc fifo 0 dma errors",
	SwKdfcFifo1DmaError:     "kdfc fifo 1 dma errors",
	SwKdfcFifo2DmaError:     "kdfc fifo 2 dma errors",
	SwPrcRingBump:           "prc ring bumps",
	SwPrcRxdcmScError:       "prc rxdcm sc errors",
	SwPrcRxdcmScAbort:       "prc rxdcm sc aborts",
	SwPrcQuantaSize:         "prc quanta size errors",
	SwPciConfigStatusError:  "pci config status errors",
	SwPciConfigUncorError:   "pci config uncorrectable errors",
	SwPciConfigCorError:     "pci config correctable errors",
	SwNetworkSustainedFault: "network sustained faults",
	SwNetworkSustainedOk:    "network sustained ok",
	SwNetworkFaultOccurred:  "network faults occurred",
	SwNetworkOkOccurred:     "network ok occurred",
	SwUnknownAlarm:          "unknown alarms",
	SwWrongIrq:              "wrong irqs",
	SwTrafficIrq:            "traffic irqs",
	SwAlarmIrq:              "alarm irqs",
	SwCompletions:           "completions",
}

func (c SwCounter) String() string { return swCounterNames[c] }

type SwStats [NSwCounters]uint64

// HwStats is a snapshot of hardware counters.
type HwStats struct {
	Counters [NHwStats]uint64
	Dbg      [NDbgStats]uint64
}

func (s *HwStats) Get(i HwStat) uint64     { return s.Counters[i] }
func (s *HwStats) GetDbg(i DbgStat) uint64 { return s.Dbg[i] }

// Foreach calls fn with name and value of each counter; zero counters are
// skipped unless all is set.
func (s *HwStats) Foreach(all bool, fn func(name string, v uint64)) {
	for i := range s.Counters {
		if v := s.Counters[i]; all || v != 0 {
			fn(hwStatNames[i], v)
		}
	}
	for i := range s.Dbg {
		if v := s.Dbg[i]; all || v != 0 {
			fn(dbgStatNames[i], v)
		}
	}
}

func (s *SwStats) Foreach(all bool, fn func(name string, v uint64)) {
	for i, v := range s {
		if all || v != 0 {
			fn(swCounterNames[i], v)
		}
	}
}

// Difference of counters; saturates at zero for counters that wrapped or
// were reset by hardware.
func (s *HwStats) sub(a, b *HwStats) {
	for i := range s.Counters {
		s.Counters[i] = delta(a.Counters[i], b.Counters[i])
	}
	for i := range s.Dbg {
		s.Dbg[i] = delta(a.Dbg[i], b.Dbg[i])
	}
}

func delta(a, b uint64) uint64 {
	if a < b {
		return 0
	}
	return a - b
}
