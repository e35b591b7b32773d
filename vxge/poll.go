// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"time"

	"github.com/jpillora/backoff"
)

// WaitFactor scales Config.PollMillis into the timeout of every bounded
// register poll: reset, steering, quiesce and statistics copy.
const WaitFactor = 1

func (d *Device) poll_timeout() time.Duration {
	return time.Duration(d.cfg.PollMillis*WaitFactor) * time.Millisecond
}

func (d *Device) poll_backoff() *backoff.Backoff {
	return &backoff.Backoff{
		Min:    d.cfg.Poll.Min,
		Max:    d.cfg.Poll.Max,
		Factor: d.cfg.Poll.Factor,
	}
}

// Poll register at offset until value&mask == want.  Returns last value read.
// Register is read at least once after timeout has expired so a slow sleeper
// never turns a completed handshake into a timeout.
func (d *Device) register_poll(what string, offset, mask, want uint64) (v uint64, err error) {
	timeout := d.poll_timeout()
	b := d.poll_backoff()
	start := time.Now()
	for {
		expired := time.Since(start) > timeout
		if v = d.regs.Read64(offset); v&mask == want {
			return
		}
		if expired {
			err = &TimeoutError{What: what, Offset: offset, After: time.Since(start)}
			return
		}
		d.cfg.Sleep(b.Duration())
	}
}
