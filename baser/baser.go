// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package baser implements a 10GBASE-R physical coding sublayer in
// the manner of IEEE 802.3 Clause 49 for a single 10 Gb/s lane: the
// 64B/66B block codec of the test stand, the self-synchronizing
// scrambler pair, the block-lock state machine with its bit-slip
// protocol, and the gearboxes adapting 66-bit blocks to a 16-bit
// serial word stream.
//
// Everything is expressed as synchronous step functions: one call per
// tick, state mutated exactly once per step, no internal goroutines.
// The hosting system drives the TX and RX pipelines and owns the
// clocking.
package baser // import "github.com/go-lpc/pcs/baser"

// Block is one 64B/66B transmission unit: a 2-bit sync header and a
// 64-bit payload. The sync header is never scrambled.
type Block struct {
	Head    uint8  // HdrData or HdrCtrl
	Payload uint64 // bit 0 is the first payload bit on the wire
}

// HeadValid reports whether the sync header of the block is one of
// the two valid values (01 or 10).
func (blk Block) HeadValid() bool {
	return blk.Head == HdrData || blk.Head == HdrCtrl
}

// lane returns the 8-bit XGMII character in lane k of data.
// Lane 0 is the least significant byte.
func lane(data uint64, k int) uint8 {
	return uint8(data >> uint(8*k))
}

// xgmiiError is the all-lane ERROR frame substituted on decode
// failures.
const xgmiiError uint64 = 0xFEFEFEFEFEFEFEFE

// xgmiiIdle is the all-lane IDLE frame emitted on reset.
const xgmiiIdle uint64 = 0x0707070707070707
