// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package titan is the register map of the X3100 (titan) 10G adapter as seen
// by one PCI function: a common block followed by one register block per
// virtual path.
package titan

const (
	MaxVpaths      = 17
	MaxIntrPerVp   = 4
	MaxMsixVectors = MaxVpaths * MaxIntrPerVp
	NMsixMaskRegs  = (MaxMsixVectors + 63) / 64

	// Per-vpath register blocks.
	VpathBase   = 0x10000
	VpathStride = 0x1000

	// Size of the host statistics block.
	StatsBlockBytes = 4096
)

// Per vpath interrupt indices.
const (
	IntrTx = iota
	IntrRx
	IntrEinta
	IntrBmap
)

// Offset of given vpath register block.
func VpathOffset(vp uint) uint64 { return VpathBase + uint64(vp)*VpathStride }

// Field is a bit field of a 64 bit register.
type Field struct{ Shift, Width uint }

func (f Field) Mask() uint64           { return (1<<f.Width - 1) << f.Shift }
func (f Field) Get(v uint64) uint64    { return (v >> f.Shift) & (1<<f.Width - 1) }
func (f Field) Set(v, x uint64) uint64 { return v&^f.Mask() | (x<<f.Shift)&f.Mask() }
func (f Field) Val(x uint64) uint64    { return (x << f.Shift) & f.Mask() }

// Common registers.
const (
	// [16:0] vpath traffic interrupt
	// [48:32] vpath alarm interrupt
	GeneralIntStatus = 0x0000

	// All ones when the slot is frozen.
	AdapterStatus = 0x0008

	// [16:0] vpaths assigned to this function.
	VpathAssignments = 0x0010

	// [16:0] vpath reset in progress.
	VpathRstInProg = 0x0018

	// [16:0] write 1 to reset vpath.
	CmnRsthdlrCfg0 = 0x0020

	// [16:0] vpath enable.
	CmnRsthdlrCfg1 = 0x0028

	// [16:0] statistics dma enable.
	StatsCfg0 = 0x0030

	// 2 bits per vpath: [2n] tx [2n+1] rx.
	TimIntMask0   = 0x0038
	TimIntStatus0 = 0x0040

	// [0] alarm [1] traffic
	TitanMaskAllInt = 0x0048

	// [0] rth indirection table is multi item.
	FuncCaps = 0x0050

	RtsAccessSteerCtrl  = 0x0100
	RtsAccessSteerData0 = 0x0108
	RtsAccessSteerData1 = 0x0110

	// Each NMsixMaskRegs 64 bit registers.
	SetMsixMaskVect   = 0x0180
	ClearMsixMaskVect = 0x0190
	MsixMaskVect      = 0x01a0
	ClrMsixOneShotVec = 0x01b0
)

const (
	AdapterStatusReady = 1<<0 | 1<<1 | 1<<4

	FuncCapsRthItableMulti = 1 << 0

	TitanMaskAllIntAlarm   = 1 << 0
	TitanMaskAllIntTraffic = 1 << 1
)

func GeneralIntTraffic(vp uint) uint64 { return 1 << vp }
func GeneralIntAlarm(vp uint) uint64   { return 1 << (32 + vp) }

func TimIntTx(vp uint) uint64 { return 1 << (2 * vp) }
func TimIntRx(vp uint) uint64 { return 1 << (2*vp + 1) }

// Steering control register.
var (
	SteerCtrlAction = Field{0, 8}
	SteerCtrlTable  = Field{8, 8}
	SteerCtrlOffset = Field{16, 24}
	SteerCtrlVpath  = Field{40, 5}
)

const (
	SteerCtrlStrobe = 1 << 48
	SteerCtrlStatus = 1 << 49
)

// Steering actions.
const (
	SteerActionWriteEntry = iota
	SteerActionReadEntry
	SteerActionListFirst
	SteerActionListNext
	SteerActionAddEntry
	SteerActionDeleteEntry
	SteerActionReadMemo
	SteerActionWriteMemo
	SteerActionFwUpgrade
)

// Steering tables.
const (
	SteerTableDa = iota
	SteerTableVid
	SteerTableEtype
	SteerTablePn
	_
	SteerTableRthGenCfg
	SteerTableRthSoloIt
	SteerTableRthJhashCfg
	SteerTableRthMask
	SteerTableRthKey
	SteerTableRthMultiIt
	SteerTableFwMemo
)

var (
	SteerDataDaMac      = Field{0, 48}
	SteerDataDaMask     = Field{0, 48}
	SteerDataDaAddMode  = Field{48, 2}
	SteerDataVid        = Field{0, 12}
	SteerDataEtype      = Field{0, 16}
	SteerDataPort       = Field{0, 16}
	SteerDataPortSrc    = Field{16, 1}
	SteerDataPortUdp    = Field{17, 1}
	SteerDataSoloBucket = Field{0, 5}
	SteerDataSoloEn     = Field{8, 1}

	// 2 items per data word; item n of data word at shift 32*n.
	SteerDataItemBucket = Field{0, 8}
	SteerDataItemEn     = Field{8, 1}
	SteerDataItemVpath  = Field{9, 5}

	SteerDataJhashGolden = Field{0, 32}
	SteerDataJhashInit   = Field{32, 32}
)

// Mac address add modes for duplicate entries.
const (
	DaAddDuplicate = iota
	DaDiscardDuplicate
	DaReplaceDuplicate
)

// Rth general configuration (data0).
var (
	RthGenEn         = Field{0, 1}
	RthGenBucketSize = Field{8, 4}
	RthGenAlgSel     = Field{12, 2}
	RthGenHashTypes  = Field{16, 6}
)

// Firmware memo items; offset is item<<5 | index.
const (
	MemoSerialNumber = iota
	MemoPartNumber
	MemoFwVersion
	MemoFlashVersion
	MemoPmdInfo
	MemoLagMode
	MemoFuncMode
	MemoBandwidth
	MemoPriority
)

func MemoOffset(item, index uint) uint64 { return uint64(item)<<5 | uint64(index&0x1f) }

var (
	MemoVersionMajor = Field{32, 16}
	MemoVersionMinor = Field{16, 16}
	MemoVersionBuild = Field{0, 16}
	MemoDateYear     = Field{32, 16}
	MemoDateMonth    = Field{16, 16}
	MemoDateDay      = Field{0, 16}
)

// Firmware upgrade stream commands (offset) and responses (data0).
const (
	FwUpgradeStart = iota
	FwUpgradeData
	FwUpgradeCommit
)

const (
	FwUpgradeRespOk = iota
	FwUpgradeRespDone
	FwUpgradeRespBusy
	FwUpgradeRespError
)

// Per vpath registers; offsets relative to VpathOffset.
const (
	VpGeneralIntStatus = 0x000
	VpGeneralIntMask   = 0x008

	// pic
	VpPpifIntStatus      = 0x010
	VpSrpcimToVpathAlarm = 0x018
	VpMrpcimToVpathAlarm = 0x020
	VpGeneralErrors      = 0x028
	VpKdfcctlErrors      = 0x030

	// wrdma
	VpWrdmaAlarmStatus = 0x038
	VpPrcAlarm         = 0x040

	// pci
	VpPcipifIntStatus = 0x048
	VpPciConfigErrors = 0x050

	// xmac
	VpXgmacIntStatus = 0x058
	VpAsicNtwkErr    = 0x060

	VpPrcStatus1 = 0x070

	VpSwapperCtrl       = 0x080
	VpGeneralCfg1       = 0x088
	VpRxmacVcfg0        = 0x090
	VpXmacRpaVcfg       = 0x0a0
	VpFauRpaVcfg        = 0x0a8
	VpTpaCfg            = 0x0b0
	VpXmacVsport        = 0x0b8
	VpKdfcDrblTotal     = 0x0c0
	VpKdfcFifoPartition = 0x0c8
	VpKdfcFifoCtrl      = 0x0d0
	VpKdfcFifo0Ctrl     = 0x0d8
	VpKdfcFifo1Ctrl     = 0x0e0
	VpKdfcFifoOffset    = 0x0e8

	// Each MaxIntrPerVp registers.
	VpTimCfg1IntNum = 0x100
	VpTimCfg2IntNum = 0x120
	VpTimCfg3IntNum = 0x140

	VpTimRingAssn = 0x168
	VpTimPciCfg   = 0x170

	VpInterruptCfg0 = 0x180
	VpInterruptCfg2 = 0x188

	VpPrcCfg4 = 0x1a0
	VpPrcCfg5 = 0x1a8
	VpPrcCfg6 = 0x1b0
	VpPrcCfg7 = 0x1b8

	VpStatsCfg     = 0x200
	VpStatsDmaAddr = 0x208

	// Debug counters; 64 bit each.
	VpDbgStats = 0x300
	NDbgStats  = 32

	// Hardware counters; 64 bit each.
	VpStatsWindow = 0x400
	NStatsWindow  = 64

	// Management (read mostly) registers.
	VpMgmtBase         = 0x800
	VpMgmtPortLink     = 0x800
	VpMgmtMaxPyldLen   = 0x808
	VpMgmtVsport       = 0x810
	VpMgmtSessionGroup = 0x818
	VpMgmtBmapRoot     = 0x820
)

const (
	VpGeneralIntPic   = 1 << 0
	VpGeneralIntPci   = 1 << 1
	VpGeneralIntWrdma = 1 << 2
	VpGeneralIntXmac  = 1 << 3
	VpGeneralIntKnown = VpGeneralIntPic | VpGeneralIntPci | VpGeneralIntWrdma | VpGeneralIntXmac

	PpifSrpcimToVpath = 1 << 0
	PpifMrpcimToVpath = 1 << 1
	PpifGeneralErrors = 1 << 2
	PpifKdfcctlErrors = 1 << 3

	SrpcimToVpathAlarm = 1 << 0
	MrpcimToVpathAlarm = 1 << 0

	GeneralErrorsDblgenFifo0Ovrflow = 1 << 0
	GeneralErrorsDblgenFifo1Ovrflow = 1 << 1
	GeneralErrorsDblgenFifo2Ovrflow = 1 << 2
	GeneralErrorsStatsbPifChainErr  = 1 << 3
	GeneralErrorsStatsbDropTimeout  = 1 << 4
	GeneralErrorsTgtIllegalAccess   = 1 << 5
	GeneralErrorsIniSerrDet         = 1 << 6

	KdfcctlFifo0Ovrwr  = 1 << 0
	KdfcctlFifo1Ovrwr  = 1 << 1
	KdfcctlFifo2Ovrwr  = 1 << 2
	KdfcctlFifo0Poison = 1 << 3
	KdfcctlFifo1Poison = 1 << 4
	KdfcctlFifo2Poison = 1 << 5
	KdfcctlFifo0DmaErr = 1 << 6
	KdfcctlFifo1DmaErr = 1 << 7
	KdfcctlFifo2DmaErr = 1 << 8

	WrdmaPrcInt = 1 << 0

	PrcRingBump     = 1 << 0
	PrcRxdcmScErr   = 1 << 1
	PrcRxdcmScAbort = 1 << 2
	PrcQuantaSize   = 1 << 3

	PcipifConfigErrors = 1 << 0

	PciConfigStatusErr = 1 << 0
	PciConfigUncorErr  = 1 << 1
	PciConfigCorErr    = 1 << 2

	XgmacAsicNtwkErr = 1 << 0

	AsicNtwkReafFault       = 1 << 0
	AsicNtwkReafOk          = 1 << 1
	AsicNtwkReafFaultOccurr = 1 << 2
	AsicNtwkReafOkOccurr    = 1 << 3

	PrcStatus1Quiescent = 1 << 0

	MgmtPortLinkOk   = 1 << 0
	MgmtPortLink10G  = 1 << 1
	MgmtSessionFirst = 1 << 0

	StatsCfgStartHostCopy = 1 << 0

	SwapperLittleEndian = 0x0123456789abcdef
)

var (
	GeneralCfg1CacheLine = Field{0, 8}

	RxmacVcfg0MaxFrmLen = Field{0, 14}
)

const (
	RxmacVcfg0UcastAll = 1 << 16
	RxmacVcfg0McastAll = 1 << 17
	RxmacVcfg0Bcast    = 1 << 18
	RxmacVcfg0AllVid   = 1 << 19

	XmacRpaStripVlanTag = 1 << 0
	XmacRpaIgnoreFrmErr = 1 << 1

	FauRpaL4CompCsum = 1 << 0
	FauRpaL3InclCf   = 1 << 1
	FauRpaL3CompCsum = 1 << 2

	TpaIgnoreFrameErr      = 1 << 0
	TpaIpv6KeepSearching   = 1 << 1
	TpaL4PshdrPresent      = 1 << 2
	TpaSupportMobileIpv6Hd = 1 << 3

	KdfcFifoCtrlTripletEn = 1 << 0
	KdfcFifoNonOffload    = 1 << 0
	KdfcFifoSwapEn        = 1 << 2

	PrcCfg4InService  = 1 << 0
	PrcCfg4RthDisable = 1 << 3
	PrcCfg6DoorbellEn = 1 << 0
)

var (
	KdfcPartitionLength0 = Field{0, 16}
	KdfcPartitionLength1 = Field{16, 16}

	PrcCfg4RingMode  = Field{1, 2}
	PrcCfg7Scatter   = Field{0, 2}
	InterruptCfg0Tx  = Field{0, 7}
	InterruptCfg0Rx  = Field{8, 7}
	InterruptCfg2Alm = Field{0, 7}

	// Vector of receive timer interrupt.
	TimRingAssnIntNum = Field{0, 7}
)

const TimPciCfgAddPad = 1 << 0

// Interrupt moderation timer configuration.
var (
	TimCfg1BtimerVal = Field{0, 26}
	TimCfg2UecA      = Field{0, 16}
	TimCfg2UecB      = Field{16, 16}
	TimCfg2UecC      = Field{32, 16}
	TimCfg2UecD      = Field{48, 16}
	TimCfg3RtimerVal = Field{0, 26}
	TimCfg3UtilSel   = Field{26, 6}
	TimCfg3LtimerVal = Field{32, 26}
	TimCfg1UrangeA   = Field{32, 7}
	TimCfg1UrangeB   = Field{40, 7}
	TimCfg1UrangeC   = Field{48, 7}
)

const (
	TimCfg1BitmpEn  = 1 << 26
	TimCfg1TxfrmCnt = 1 << 27
	TimCfg1TimerAc  = 1 << 29
	TimCfg1TimerCi  = 1 << 30
	TimCfg1TimerRi  = 1 << 31
	TimCfg1TimerEn  = 1 << 60
)
