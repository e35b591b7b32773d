// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"fmt"
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v2"
)

type IntrMode string

const (
	IntrModeInta         IntrMode = "inta"
	IntrModeMsix         IntrMode = "msix"
	IntrModeMsixOneShot  IntrMode = "msix-one-shot"
	IntrModeEmulatedInta IntrMode = "emulated-inta"
)

// Line modes share one interrupt among all vpaths; traffic is reported in
// the timer status bitmap.
func (m IntrMode) is_line() bool { return m == IntrModeInta || m == IntrModeEmulatedInta }

type StatsReadMethod string

const (
	// Hardware pushes statistics into host memory block.
	StatsReadDma StatsReadMethod = "dma"
	// Statistics are read register by register.
	StatsReadPio StatsReadMethod = "pio"
)

// PollConfig sets the backoff between reads of a register poll.
type PollConfig struct {
	Min    time.Duration `yaml:"min"`
	Max    time.Duration `yaml:"max"`
	Factor float64       `yaml:"factor"`
}

// Config is the device configuration.
type Config struct {
	// Prefix for log messages.
	Name string `yaml:"name"`

	// Poll timeout is PollMillis * WaitFactor milliseconds.
	PollMillis uint       `yaml:"poll_millis"`
	Poll       PollConfig `yaml:"poll"`

	IntrMode IntrMode `yaml:"intr_mode"`

	// Max completion polls per interrupt.
	IsrPollingCnt uint `yaml:"isr_polling_cnt"`

	StatsReadMethod StatsReadMethod `yaml:"stats_read_method"`

	// Bound on busy replies to a firmware upgrade commit.
	FwUpgradeMaxSteps uint `yaml:"fw_upgrade_max_steps"`

	// Write 64 bit registers as 32 bit halves.
	Mmio32 bool `yaml:"mmio32"`

	// Cache line quantum in bytes; hardware default when nil.
	CacheLineSize *uint32 `yaml:"cache_line_size"`

	Vpaths map[uint]VpathConfig `yaml:"vpaths"`

	// Sleep between poll reads; time.Sleep when nil.
	Sleep func(time.Duration) `yaml:"-"`
}

// Nil fields of the following are left at hardware (flash) default.

type RingConfig struct {
	Enable      bool    `yaml:"enable"`
	Blocks      uint    `yaml:"blocks"`
	ScatterMode *uint32 `yaml:"scatter_mode"`
	RthEnable   *bool   `yaml:"rth_enable"`
}

type FifoConfig struct {
	Enable bool `yaml:"enable"`
	// Doorbell fifo length.
	Length uint32 `yaml:"length"`
	Blocks uint   `yaml:"blocks"`
}

// TimConfig is interrupt moderation for one interrupt class.
type TimConfig struct {
	Enable    *bool   `yaml:"enable"`
	BtimerVal *uint32 `yaml:"btimer_val"`
	TimerAcEn *bool   `yaml:"timer_ac_en"`
	TimerCiEn *bool   `yaml:"timer_ci_en"`
	TimerRiEn *bool   `yaml:"timer_ri_en"`
	RtimerVal *uint32 `yaml:"rtimer_val"`
	UtilSel   *uint32 `yaml:"util_sel"`
	LtimerVal *uint32 `yaml:"ltimer_val"`

	// Utilization ranges and event counts for adaptive moderation.
	UrangeA *uint32 `yaml:"urange_a"`
	UrangeB *uint32 `yaml:"urange_b"`
	UrangeC *uint32 `yaml:"urange_c"`
	UecA    *uint32 `yaml:"uec_a"`
	UecB    *uint32 `yaml:"uec_b"`
	UecC    *uint32 `yaml:"uec_c"`
	UecD    *uint32 `yaml:"uec_d"`

	// Count transmitted frames instead of descriptors.
	TxfrmCntEn *bool `yaml:"txfrm_cnt_en"`
	// Set timer status bitmap; default on in line interrupt modes.
	BitmpEn *bool `yaml:"bitmp_en"`
}

// VpathConfig is the configuration of a virtual path applied on open.
type VpathConfig struct {
	Ring RingConfig `yaml:"ring"`
	Fifo FifoConfig `yaml:"fifo"`

	Mtu *uint32 `yaml:"mtu"`

	UcastAllEnable *bool `yaml:"ucast_all_enable"`
	McastAllEnable *bool `yaml:"mcast_all_enable"`
	BcastEnable    *bool `yaml:"bcast_enable"`
	AllVidEnable   *bool `yaml:"all_vid_enable"`

	// Receive protocol assist.
	RpaStripVlanTag     *bool `yaml:"rpa_strip_vlan_tag"`
	RpaIgnoreFrameError *bool `yaml:"rpa_ignore_frame_error"`
	RpaL4CompCsum       *bool `yaml:"rpa_l4_comp_csum"`
	RpaL3InclCf         *bool `yaml:"rpa_l3_incl_cf"`
	RpaL3CompCsum       *bool `yaml:"rpa_l3_comp_csum"`

	// Transmit protocol assist.
	TpaIgnoreFrameError      *bool `yaml:"tpa_ignore_frame_error"`
	TpaIpv6KeepSearching     *bool `yaml:"tpa_ipv6_keep_searching"`
	TpaL4PshdrPresent        *bool `yaml:"tpa_l4_pshdr_present"`
	TpaSupportMobileIpv6Hdrs *bool `yaml:"tpa_support_mobile_ipv6_hdrs"`

	Tti TimConfig `yaml:"tti"`
	Rti TimConfig `yaml:"rti"`
}

func U32(v uint32) *uint32 { return &v }
func Bool(v bool) *bool    { return &v }

const (
	default_poll_millis        = 1000
	default_isr_polling_cnt    = 16
	default_fw_upgrade_steps   = 1000
	default_poll_min           = 10 * time.Microsecond
	default_poll_max           = time.Millisecond
	default_poll_backoff_scale = 2
)

func DefaultConfig() (c Config) {
	c.fill()
	return
}

func (c *Config) fill() {
	if c.Name == "" {
		c.Name = "vxge"
	}
	if c.PollMillis == 0 {
		c.PollMillis = default_poll_millis
	}
	if c.Poll.Min == 0 {
		c.Poll.Min = default_poll_min
	}
	if c.Poll.Max == 0 {
		c.Poll.Max = default_poll_max
	}
	if c.Poll.Factor == 0 {
		c.Poll.Factor = default_poll_backoff_scale
	}
	if c.IntrMode == "" {
		c.IntrMode = IntrModeInta
	}
	if c.IsrPollingCnt == 0 {
		c.IsrPollingCnt = default_isr_polling_cnt
	}
	if c.StatsReadMethod == "" {
		c.StatsReadMethod = StatsReadDma
	}
	if c.FwUpgradeMaxSteps == 0 {
		c.FwUpgradeMaxSteps = default_fw_upgrade_steps
	}
	if c.Sleep == nil {
		c.Sleep = time.Sleep
	}
}

func (c *Config) validate() error {
	switch c.IntrMode {
	case IntrModeInta, IntrModeMsix, IntrModeMsixOneShot, IntrModeEmulatedInta:
	default:
		return fmt.Errorf("intr_mode %q: %w", c.IntrMode, ErrInvalidParameter)
	}
	switch c.StatsReadMethod {
	case StatsReadDma, StatsReadPio:
	default:
		return fmt.Errorf("stats_read_method %q: %w", c.StatsReadMethod, ErrInvalidParameter)
	}
	if c.Poll.Min > c.Poll.Max {
		return fmt.Errorf("poll min %v > max %v: %w", c.Poll.Min, c.Poll.Max, ErrInvalidParameter)
	}
	return nil
}

// ParseConfig parses YAML device configuration and fills in defaults.
func ParseConfig(b []byte) (c Config, err error) {
	if err = yaml.Unmarshal(b, &c); err != nil {
		err = fmt.Errorf("vxge: config: %v", err)
		return
	}
	c.fill()
	err = c.validate()
	return
}

// LoadConfig reads YAML device configuration file.
func LoadConfig(fn string) (c Config, err error) {
	b, err := ioutil.ReadFile(fn)
	if err != nil {
		return
	}
	return ParseConfig(b)
}
