// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Vxgesim attaches the vxge hal to a simulated adapter (or, with -pci, maps
// BAR 0 of a real one), opens configured vpaths and prints adapter
// information and counters.
//
//	vxgesim [-stats] [-q] [-config FILE] [-pci ADDR] [-redis ADDR]
package main

import (
	"fmt"
	"os"

	"github.com/platinasystems/flags"
	"github.com/platinasystems/log"
	"github.com/platinasystems/parms"
	"github.com/platinasystems/vxge/hw"
	"github.com/platinasystems/vxge/internal/redis/publisher"
	"github.com/platinasystems/vxge/internal/sim"
	"github.com/platinasystems/vxge/vxge"
)

const usage = "vxgesim [-stats] [-q] [-config FILE] [-pci ADDR] [-redis ADDR]"

func main() {
	if err := Main(os.Args[1:]...); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func Main(args ...string) (err error) {
	flag, args := flags.New(args, "-stats", "-q", "-h")
	parm, args := parms.New(args, "-config", "-pci", "-redis")
	if flag.ByName["-h"] {
		fmt.Println(usage)
		return
	}
	if len(args) > 0 {
		return fmt.Errorf("%v: unexpected\nusage: %s", args, usage)
	}

	cfg := vxge.DefaultConfig()
	if fn := parm.ByName["-config"]; len(fn) > 0 {
		if cfg, err = vxge.LoadConfig(fn); err != nil {
			return
		}
	}

	var (
		regs  hw.Regs
		alloc hw.Allocator
		opt   vxge.Options
	)
	heap := hw.NewHeapAllocator(0)
	if addr := parm.ByName["-pci"]; len(addr) > 0 {
		// No dma memory for a real adapter; information only.
		m, err := hw.MapResource(addr, 0)
		if err != nil {
			return err
		}
		defer m.Close()
		regs, alloc = m, heap
		cfg.StatsReadMethod = vxge.StatsReadPio
		cfg.Vpaths = nil
	} else {
		regs, alloc = sim.New(heap), heap
		rf := &ring_factory{alloc: heap}
		opt.Rings, opt.Fifos = rf, rf
	}

	d, err := vxge.Attach(cfg, regs, alloc, opt)
	if err != nil {
		return
	}
	defer d.Detach()

	var hs []*vxge.Handle
	defer func() {
		for _, h := range hs {
			if e := h.Close(); e != nil {
				log.Print("err", e)
			}
		}
	}()
	for vp := range cfg.Vpaths {
		h, err := d.OpenConfigured(vp, nil, nil)
		if err != nil {
			return err
		}
		hs = append(hs, h)
	}

	if !flag.ByName["-q"] {
		if err = show_info(d); err != nil {
			return
		}
	}
	if flag.ByName["-stats"] {
		err = d.Counters(func(vp uint, name string, v uint64) {
			fmt.Printf("vp%d %s: %d\n", vp, name, v)
		})
		if err != nil {
			return
		}
	}
	if addr := parm.ByName["-redis"]; len(addr) > 0 {
		err = publish(d, addr)
	}
	return
}

func show_info(d *vxge.Device) error {
	sn, err := d.SerialNumber()
	if err != nil {
		return err
	}
	pn, err := d.PartNumber()
	if err != nil {
		return err
	}
	pmd, err := d.PmdInfo()
	if err != nil {
		return err
	}
	fw, err := d.FwVersion()
	if err != nil {
		return err
	}
	flash, err := d.FlashVersion()
	if err != nil {
		return err
	}
	mode, err := d.FuncMode()
	if err != nil {
		return err
	}
	up, rate := d.Link()
	fmt.Printf("%s: serial %s part %s pmd %s\n", d.Name(), sn, pn, pmd)
	fmt.Printf("%s: firmware %v flash %v mode %v\n", d.Name(), fw, flash, mode)
	fmt.Printf("%s: vpaths %#x link up %v %v\n", d.Name(), d.Assignments(), up, rate)
	return nil
}

// Publish counters as fields of a redis hash named for the device.
func publish(d *vxge.Device, addr string) (err error) {
	pub, err := publisher.Dial("tcp", addr, d.Name())
	if err != nil {
		return
	}
	defer func() {
		if e := pub.Close(); err == nil {
			err = e
		}
	}()
	e := d.Counters(func(vp uint, name string, v uint64) {
		if err == nil {
			err = pub.Print(fmt.Sprintf("vp%d.%s", vp, name), v)
		}
	})
	if err == nil {
		err = e
	}
	return
}
