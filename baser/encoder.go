// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package baser

// Encode turns one XGMII transfer (64-bit data word and 8-bit control
// mask) into a 64B/66B block.
//
// The eight lanes are classified against the recognized lane patterns
// in priority order; the first match wins. An input matching no
// pattern is absorbed into an all-error control block and flagged,
// never propagated structurally.
func Encode(data uint64, ctrl uint8) (blk Block, err bool) {
	if ctrl == 0 {
		return Block{Head: HdrData, Payload: data}, false
	}

	switch {
	case ctrl == 0x01 && lane(data, 0) == chStart:
		return ctrlBlock(encStart0(data)), false
	case ctrl == 0x10 && lane(data, 4) == chStart:
		return ctrlBlock(encStart4(data)), false
	}

	if k, ok := termLane(data, ctrl); ok {
		return ctrlBlock(encTerm(data, k)), false
	}

	switch {
	case ctrl == 0x11 && isOS(lane(data, 0)) && isOS(lane(data, 4)):
		return ctrlBlock(encOSOS(data)), false
	case ctrl == 0x11 && isOS(lane(data, 0)) && lane(data, 4) == chStart:
		return ctrlBlock(encOSStart(data)), false
	case ctrl == 0xFF:
		return ctrlBlock(encCtrl(data)), false
	}

	return ctrlBlock(encError()), true
}

func ctrlBlock(payload uint64) Block {
	return Block{Head: HdrCtrl, Payload: payload}
}

// termLane returns the lane carrying a terminate character, if the
// input matches one of the eight terminate patterns: data lanes up to
// the terminate, control lanes after it.
func termLane(data uint64, ctrl uint8) (int, bool) {
	for k := 0; k < 8; k++ {
		if ctrl == uint8(0xFF<<uint(k)) && lane(data, k) == chTerm {
			return k, true
		}
	}
	return 0, false
}

func isOS(ch uint8) bool { return ch == chSeqOS || ch == chSigOS }

// ccode maps an 8-bit XGMII control character to its 7-bit code.
func ccode(ch uint8) uint8 {
	if ch == chIdle {
		return ccIdle
	}
	return ccError // ERROR and any unrecognized character
}

// ocode maps an ordered-set character to its 4-bit O-code.
func ocode(ch uint8) uint8 {
	if ch == chSigOS {
		return ocSig
	}
	return ocSeq
}

// Control payloads place the block type in bits 7:0 and the remaining
// lanes' fields above it, highest lane in the most significant bits,
// zero padding between the lowest field and the block type.

func encStart0(data uint64) uint64 {
	return data&^uint64(0xFF) | btStart0 // D1-D7 keep their lanes; block type replaces lane 0
}

func encStart4(data uint64) uint64 {
	var (
		lo = data & 0xFFFFFFFF     // D0-D3
		hi = data >> 40 & 0xFFFFFF // D5-D7
	)
	return hi<<40 | lo<<8 | btStart4
}

func encTerm(data uint64, k int) uint64 {
	var f uint64
	for j := 0; j < k; j++ {
		f |= uint64(lane(data, j)) << uint(8*j)
	}
	for j := k + 1; j < 8; j++ {
		f |= uint64(ccode(lane(data, j))) << uint(8*k+7*(j-k-1))
	}
	return f<<uint(15-k) | uint64(btTerm[k])
}

func encOSOS(data uint64) uint64 {
	f := uint64(ocode(lane(data, 0)))
	f |= (data >> 8 & 0xFFFFFF) << 4 // D1-D3
	f |= uint64(ocode(lane(data, 4))) << 28
	f |= (data >> 40 & 0xFFFFFF) << 32 // D5-D7
	return f<<8 | btOSOS
}

func encOSStart(data uint64) uint64 {
	f := uint64(ocode(lane(data, 0)))
	f |= (data >> 8 & 0xFFFFFF) << 4   // D1-D3
	f |= (data >> 40 & 0xFFFFFF) << 28 // D5-D7
	return f<<12 | btOSStart
}

func encCtrl(data uint64) uint64 {
	var f uint64
	for k := 0; k < 8; k++ {
		f |= uint64(ccode(lane(data, k))) << uint(7*k)
	}
	return f<<8 | btCtrl
}

// encError is the substitute emitted for unclassifiable inputs: an
// all-control block whose eight 7-bit codes all carry the error code.
func encError() uint64 {
	var f uint64
	for k := 0; k < 8; k++ {
		f |= ccError << uint(7*k)
	}
	return f<<8 | btCtrl
}
