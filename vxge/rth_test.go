// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"reflect"
	"testing"

	"github.com/platinasystems/vxge/internal/titan"
)

func TestRthConfig(t *testing.T) {
	x := new_tester(t, test_config())
	h := x.open(0, VpathConfig{Ring: RingConfig{Enable: true, RthEnable: Bool(true)}})
	x.True(x.a.VpPeek(0, titan.VpPrcCfg4)&titan.PrcCfg4RthDisable == 0)

	want := RthConfig{
		Enable:     true,
		BucketSize: 4,
		Alg:        RthAlgMsRss,
		HashTypes:  RthHashTcpIpv4 | RthHashIpv4 | RthHashTcpIpv6,
	}
	x.Nil(h.RthSet(want))
	got, err := h.RthGet()
	x.Nil(err)
	if got != want {
		t.Errorf("rth config: got %+v want %+v", got, want)
	}
	x.Error(h.RthSet(RthConfig{BucketSize: RthMaxBucketSize + 1}), ErrInvalidParameter)

	var key [RthKeyBytes]byte
	for i := range key {
		key[i] = byte(3*i + 1)
	}
	x.Nil(h.RthKeySet(key))
	k, err := h.RthKeyGet()
	x.Nil(err)
	x.True(k == key)

	j := RthJhashConfig{Golden: 0x9e3779b9, Init: 0xffffffff}
	x.Nil(h.RthJhashSet(j))
	jj, err := h.RthJhashGet()
	x.Nil(err)
	x.True(jj == j)

	m := RthMask{Ipv4Sa: 0xffffff00, Ipv4Da: 0xffff0000, L4Sp: 0, L4Dp: 0xffff}
	x.Nil(h.RthMaskSet(m))
	mm, err := h.RthMaskGet()
	x.Nil(err)
	x.True(mm == m)
}

func TestRthItableSolo(t *testing.T) {
	x := new_tester(t, test_config())
	h := x.open(0, VpathConfig{})
	x.False(x.d.Caps().RthItableMulti)

	x.Nil(h.RthItableSet([]uint{0, 1, 0, 1}))
	it, err := h.RthItableGet(6)
	x.Nil(err)
	if want := []int{0, 1, 0, 1, -1, -1}; !reflect.DeepEqual(it, want) {
		t.Errorf("itable: got %v want %v", it, want)
	}

	x.Nil(h.RthItableClear(2))
	it, err = h.RthItableGet(4)
	x.Nil(err)
	if want := []int{-1, -1, 0, 1}; !reflect.DeepEqual(it, want) {
		t.Errorf("itable after clear: got %v want %v", it, want)
	}

	x.Error(h.RthItableSet([]uint{0, 9}), ErrVpathNotAvailable)
	x.Error(h.RthItableSet(nil), ErrInvalidParameter)
	_, err = h.RthItableGet(1<<RthMaxBucketSize + 1)
	x.Error(err, ErrInvalidParameter)
}

func TestRthItableMulti(t *testing.T) {
	x := new_tester(t, test_config())
	x.a.SetCaps(titan.FuncCapsRthItableMulti)
	x.attach(test_config())
	x.True(x.d.Caps().RthItableMulti)
	h := x.open(0, VpathConfig{})

	n := x.a.NSteer
	itable := []uint{3, 2, 1, 0, 5}
	x.Nil(h.RthItableSet(itable))
	// 4 items per steering command; partial last group is read first.
	x.Equal(x.a.NSteer-n, 3)

	it, err := h.RthItableGet(len(itable))
	x.Nil(err)
	if want := []int{3, 2, 1, 0, 5}; !reflect.DeepEqual(it, want) {
		t.Errorf("itable: got %v want %v", it, want)
	}

	x.Nil(h.RthItableClear(len(itable)))
	it, err = h.RthItableGet(len(itable))
	x.Nil(err)
	if want := []int{-1, -1, -1, -1, -1}; !reflect.DeepEqual(it, want) {
		t.Errorf("itable after clear: got %v want %v", it, want)
	}
}

func TestRthItableMultiPartial(t *testing.T) {
	x := new_tester(t, test_config())
	x.a.SetCaps(titan.FuncCapsRthItableMulti)
	x.attach(test_config())
	h := x.open(0, VpathConfig{})

	x.Nil(h.RthItableSet([]uint{1, 2, 3, 4, 5, 6, 7, 1}))
	x.Nil(h.RthItableSet([]uint{0, 0, 0, 0, 0, 0}))
	it, err := h.RthItableGet(8)
	x.Nil(err)
	if want := []int{0, 0, 0, 0, 0, 0, 7, 1}; !reflect.DeepEqual(it, want) {
		t.Errorf("itable: got %v want %v", it, want)
	}

	x.Nil(h.RthItableClear(7))
	it, err = h.RthItableGet(8)
	x.Nil(err)
	if want := []int{-1, -1, -1, -1, -1, -1, -1, 1}; !reflect.DeepEqual(it, want) {
		t.Errorf("itable after clear: got %v want %v", it, want)
	}
}
