// Copyright 2016 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bits provides helpers for 64 bit register and bitmap words.
package bits

import mbits "math/bits"

// Word is a 64 bit register value or bitmap.
type Word uint64

const WordBits = 64

func NSetBits(x Word) uint         { return uint(mbits.OnesCount64(uint64(x))) }
func (x Word) NSetBits() uint      { return NSetBits(x) }
func NLeadingZeros(x Word) uint    { return uint(mbits.LeadingZeros64(uint64(x))) }
func (x Word) NLeadingZeros() uint { return NLeadingZeros(x) }

// FirstSet gives 2^f where f is the lowest 1 bit in x
func FirstSet(x Word) Word    { return x & -x }
func (x Word) FirstSet() Word { return FirstSet(x) }

func MinLog2(x Word) uint    { return WordBits - 1 - NLeadingZeros(x) }
func (x Word) MinLog2() uint { return MinLog2(x) }

// IsSet reports whether bit i is set.
func (x Word) IsSet(i uint) bool { return i < WordBits && x&(1<<i) != 0 }

func (x Word) ForeachSetBit(fn func(i uint)) {
	for x != 0 {
		f := x.FirstSet()
		i := f.MinLog2()
		x ^= f
		fn(i)
	}
}

// Mask of the low n bits.
func Mask(n uint) Word {
	if n >= WordBits {
		return ^Word(0)
	}
	return 1<<n - 1
}
