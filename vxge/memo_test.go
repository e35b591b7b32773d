// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"context"
	"errors"
	"testing"

	"github.com/platinasystems/vxge/internal/titan"
)

func TestMemoInfo(t *testing.T) {
	x := new_tester(t, test_config())
	d := x.d
	for _, tc := range []struct {
		name string
		f    func() (string, error)
		want string
	}{
		{"serial number", d.SerialNumber, "SXT0123456789"},
		{"part number", d.PartNumber, "X3120SR0000"},
		{"pmd", d.PmdInfo, "10GBASE-SR"},
	} {
		got, err := tc.f()
		if err != nil {
			t.Errorf("%s: %v", tc.name, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}

	v, err := d.FwVersion()
	x.Nil(err)
	x.Equal(v, "1.8.1 2016/06/14")
	v, err = d.FlashVersion()
	x.Nil(err)
	x.Equal(v, "1.5.3 2015/11/02")

	lag, err := d.LagMode()
	x.Nil(err)
	x.Equal(lag, uint(1))
}

func TestFuncMode(t *testing.T) {
	x := new_tester(t, test_config())
	m, err := x.d.FuncMode()
	x.Nil(err)
	x.Equal(m, FuncModeSingle)
	x.Nil(x.d.SetFuncMode(FuncModeSriov17))
	m, err = x.d.FuncMode()
	x.Nil(err)
	x.Equal(m, "sr-iov 17")
	x.Error(x.d.SetFuncMode(nFuncModes), ErrInvalidParameter)
}

func TestBandwidthPriority(t *testing.T) {
	x := new_tester(t, test_config())
	d := x.d

	bw, err := d.Bandwidth(2)
	x.Nil(err)
	x.Equal(bw, uint32(MaxBandwidth))
	x.Nil(d.SetBandwidth(2, 2500))
	bw, err = d.Bandwidth(2)
	x.Nil(err)
	x.Equal(bw, uint32(2500))
	x.Equal(x.a.Memo(titan.MemoOffset(titan.MemoBandwidth, 2))[0], uint64(2500))
	// Other vpaths keep their setting.
	bw, err = d.Bandwidth(3)
	x.Nil(err)
	x.Equal(bw, uint32(MaxBandwidth))

	x.Error(d.SetBandwidth(2, 0), ErrInvalidParameter)
	x.Error(d.SetBandwidth(2, MaxBandwidth+1), ErrInvalidParameter)
	x.Error(d.SetBandwidth(9, 100), ErrVpathNotAvailable)
	_, err = d.Bandwidth(9)
	x.Error(err, ErrVpathNotAvailable)

	x.Nil(d.SetPriority(5, 3))
	pri, err := d.Priority(5)
	x.Nil(err)
	x.Equal(pri, uint8(3))
	x.Error(d.SetPriority(5, MaxPriority+1), ErrInvalidParameter)
	_, err = d.Priority(12)
	x.Error(err, ErrVpathNotAvailable)
}

func TestFwUpgrade(t *testing.T) {
	x := new_tester(t, test_config())
	image := make([]byte, 20)
	for i := range image {
		image[i] = byte(i)
	}
	ctx := context.Background()

	x.Nil(x.d.FwUpgrade(ctx, image))
	// Two busy commits before done.
	x.Equal(x.sleeps, 2)

	x.Error(x.d.FwUpgrade(ctx, nil), ErrInvalidParameter)
}

func TestFwUpgradeBounded(t *testing.T) {
	cfg := test_config()
	cfg.FwUpgradeMaxSteps = 5
	x := new_tester(t, cfg)
	x.a.FwBusyForever = true
	n := x.a.NSteer
	err := x.d.FwUpgrade(context.Background(), make([]byte, 8))
	x.Error(err, ErrFwUpgrade)
	// Start, one data word and 5 commits.
	x.Equal(x.a.NSteer-n, 7)
	x.Equal(x.sleeps, 5)
}

func TestFwUpgradeCanceled(t *testing.T) {
	x := new_tester(t, test_config())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := x.d.FwUpgrade(ctx, make([]byte, 64))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("got %v want %v", err, context.Canceled)
	}
}
