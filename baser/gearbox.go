// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package baser

import (
	"github.com/go-lpc/pcs/internal/bitbuf"
)

// gearboxDepth is the capacity of the gearbox bit accumulators. It
// leaves room for one whole block on top of the largest fill level
// reachable before extraction or emission drains the buffer.
const gearboxDepth = 192

// TxGearbox converts 66-bit blocks into a steady stream of 16-bit
// serial words. The sync header travels inline in the emitted bit
// stream; it is additionally mirrored on a per-word side channel for
// transceivers that consume it out-of-band.
//
// Ready is the only backpressure mechanism of the TX path: it must be
// consulted with the fill level strictly before the current step's
// load, and a producer honoring it can never overrun the buffer.
type TxGearbox struct {
	buf *bitbuf.Buffer
	hdr uint8 // header of the most recently accepted block
}

// NewTxGearbox returns a TX gearbox with an empty accumulator.
func NewTxGearbox() *TxGearbox {
	return &TxGearbox{
		buf: bitbuf.New(gearboxDepth),
		hdr: HdrData,
	}
}

// Reset drops all buffered bits.
func (gb *TxGearbox) Reset() {
	gb.buf.Reset()
	gb.hdr = HdrData
}

// Ready reports whether the gearbox can accept one more block on the
// next step.
func (gb *TxGearbox) Ready() bool {
	return gb.buf.Len()+BlockBits <= gb.buf.Cap()
}

// Step advances the gearbox by one tick. A non-nil blk is loaded into
// the accumulator; the caller must have checked Ready beforehand.
// When at least one output word worth of bits is buffered, Step emits
// it together with the cached sync header of the current block.
func (gb *TxGearbox) Step(blk *Block) (word uint16, hdr uint8, ok bool) {
	if blk != nil {
		gb.buf.Push(uint64(blk.Head&0x3), 2)
		gb.buf.Push(blk.Payload, 64)
		gb.hdr = blk.Head
	}
	if gb.buf.Len() < SerdesWidth {
		return 0, gb.hdr, false
	}
	return uint16(gb.buf.Pop(SerdesWidth)), gb.hdr, true
}

// RxGearbox accumulates 16-bit serial words and extracts 66-bit
// blocks. A slip request discards exactly one bit from the front of
// the accumulator, shifting the block boundary of everything that
// follows; 66 slips return to the original alignment.
//
// The RX path has no backpressure: every incoming word is accepted
// unconditionally.
type RxGearbox struct {
	buf     *bitbuf.Buffer
	slips   uint64 // diagnostic only; extraction never consults it
	pending bool   // slip request waiting for bits to discard
}

// NewRxGearbox returns an RX gearbox with an empty accumulator.
func NewRxGearbox() *RxGearbox {
	return &RxGearbox{buf: bitbuf.New(gearboxDepth)}
}

// Reset drops all buffered bits. The diagnostic slip counter is
// preserved across resets.
func (gb *RxGearbox) Reset() {
	gb.buf.Reset()
	gb.pending = false
}

// Slips returns the number of slip requests consumed so far.
func (gb *RxGearbox) Slips() uint64 { return gb.slips }

// Step advances the gearbox by one tick: it consumes at most one slip
// request, loads one serial word when valid is set, and extracts one
// block once 66 bits have accumulated. The bit discard happens after
// the word load, so a slip arriving on an empty accumulator acts on
// the word loaded that same step; with neither buffered bits nor a
// word to act on, the request stays pending until bits arrive. When
// the transceiver carries the sync header out-of-band, hdrOK marks
// hdr as the header to substitute for the in-band header bits of the
// extracted block.
func (gb *RxGearbox) Step(word uint16, valid, slip bool, hdr uint8, hdrOK bool) (Block, bool) {
	if slip {
		gb.pending = true
	}
	if valid {
		gb.buf.Push(uint64(word), SerdesWidth)
	}
	if gb.pending && gb.buf.Len() > 0 {
		gb.buf.Slip()
		gb.slips++
		gb.pending = false
	}
	if gb.buf.Len() < BlockBits {
		return Block{}, false
	}

	blk := Block{
		Head:    uint8(gb.buf.Pop(2)),
		Payload: gb.buf.Pop(64),
	}
	if hdrOK {
		blk.Head = hdr & 0x3
	}
	return blk, true
}
