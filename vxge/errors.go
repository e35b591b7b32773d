// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vxge

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotOpen           = errors.New("vxge: vpath not open")
	ErrAlreadyOpen       = errors.New("vxge: vpath already open")
	ErrInvalidState      = errors.New("vxge: invalid state")
	ErrVpathNotAvailable = errors.New("vxge: vpath not available")
	ErrInvalidHandle     = errors.New("vxge: invalid handle")
	ErrClientsAttached   = errors.New("vxge: clients attached")
	ErrInvalidMtuSize    = errors.New("vxge: invalid mtu size")
	ErrBadFifoLength     = errors.New("vxge: bad fifo length")
	ErrInvalidIndex      = errors.New("vxge: invalid index")
	ErrInvalidParameter  = errors.New("vxge: invalid parameter")
	ErrOutOfMemory       = errors.New("vxge: out of memory")
	ErrTimeout           = errors.New("vxge: timeout")
	ErrSteerFailed       = errors.New("vxge: steering command failed")
	ErrNoMoreEntries     = errors.New("vxge: no more entries")
	ErrFwUpgrade         = errors.New("vxge: firmware upgrade failed")

	// Interrupt and alarm outcomes.
	ErrWrongIrq         = errors.New("vxge: interrupt not from this device")
	ErrSlotFreeze       = errors.New("vxge: slot freeze")
	ErrSerErrorDetected = errors.New("vxge: serious error detected")
	ErrMrpcimCritical   = errors.New("vxge: mrpcim critical alarm")
	ErrSrpcimCritical   = errors.New("vxge: srpcim critical alarm")
	ErrKdfcCtlError     = errors.New("vxge: kdfc control error")
	ErrPrcFatal         = errors.New("vxge: receive controller error")
	ErrUnknownAlarm     = errors.New("vxge: unknown alarm")
	ErrLinkUpDown       = errors.New("vxge: link up/down")
)

// TimeoutError is returned when a bounded register poll is exhausted.
type TimeoutError struct {
	What   string
	Offset uint64
	After  time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("vxge: %s timeout after %v (register 0x%x)", e.What, e.After, e.Offset)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// IsFatal reports errors after which the device must be reinitialized.
func IsFatal(err error) bool {
	for _, x := range fatal_errors {
		if errors.Is(err, x) {
			return true
		}
	}
	return false
}

var fatal_errors = [...]error{
	ErrSlotFreeze,
	ErrSerErrorDetected,
	ErrMrpcimCritical,
	ErrSrpcimCritical,
	ErrKdfcCtlError,
	ErrPrcFatal,
}

// IsInformational reports outcomes that are returned as errors but need no
// recovery.
func IsInformational(err error) bool {
	return errors.Is(err, ErrLinkUpDown) || errors.Is(err, ErrWrongIrq)
}
