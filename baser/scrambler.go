// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package baser

// The scrambler pair implements the self-synchronizing polynomial
// 1 + x^39 + x^58 of IEEE 802.3 clause 49.2.6. The scrambler feeds
// its own output bit back into the register while the descrambler
// feeds the received bit: after 58 bits of genuine payload the
// descrambler state converges to the scrambler's without any
// initialization handshake. Sync headers bypass both.

const (
	scrMask = 1<<58 - 1
	scrInit = scrMask // all-ones reset state
)

// Scrambler holds the 58-bit TX scrambler state.
type Scrambler struct {
	state uint64
}

// NewScrambler returns a scrambler in its reset state.
func NewScrambler() *Scrambler {
	return &Scrambler{state: scrInit}
}

// Reset restores the all-ones reset state.
func (scr *Scrambler) Reset() { scr.state = scrInit }

// Scramble scrambles the 64-bit payload p, bit 0 first, and advances
// the scrambler state. It must be invoked once per valid block only:
// skipping it for invalid steps leaves the state untouched.
func (scr *Scrambler) Scramble(p uint64) uint64 {
	var (
		st  = scr.state
		out uint64
	)
	for i := 0; i < 64; i++ {
		b := p>>uint(i)&1 ^ st>>38&1 ^ st>>57&1
		out |= b << uint(i)
		st = (st<<1 | b) & scrMask
	}
	scr.state = st
	return out
}

// Descrambler holds the 58-bit RX descrambler state.
type Descrambler struct {
	state uint64
}

// NewDescrambler returns a descrambler in its reset state.
func NewDescrambler() *Descrambler {
	return &Descrambler{state: scrInit}
}

// Reset restores the all-ones reset state.
func (dsc *Descrambler) Reset() { dsc.state = scrInit }

// Descramble descrambles the 64-bit payload p, bit 0 first, shifting
// the received (still-scrambled) bit into the state register.
func (dsc *Descrambler) Descramble(p uint64) uint64 {
	var (
		st  = dsc.state
		out uint64
	)
	for i := 0; i < 64; i++ {
		in := p >> uint(i) & 1
		b := in ^ st>>38&1 ^ st>>57&1
		out |= b << uint(i)
		st = (st<<1 | in) & scrMask
	}
	dsc.state = st
	return out
}
