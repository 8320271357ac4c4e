// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package baser

// Decode turns one 64B/66B block back into an XGMII transfer.
//
// An invalid sync header or an unrecognized block type yields the
// all-lane ERROR frame with the error flag set. Out-of-range 7-bit
// control codes decode to ERROR and out-of-range O-codes to the
// sequence ordered set; both mappings are lossy.
func Decode(blk Block) (data uint64, ctrl uint8, err bool) {
	switch blk.Head {
	case HdrData:
		return blk.Payload, 0, false
	case HdrCtrl:
		// dispatch on block type below
	default:
		return xgmiiError, 0xFF, true
	}

	p := blk.Payload
	switch bt := uint8(p); bt {
	case btCtrl:
		return decCtrl(p), 0xFF, false
	case btStart0:
		return p&^uint64(0xFF) | chStart, 0x01, false
	case btStart4:
		return decStart4(p), 0x10, false
	case btOSOS:
		return decOSOS(p), 0x11, false
	case btOSStart:
		return decOSStart(p), 0x11, false
	default:
		for k := 0; k < 8; k++ {
			if bt == btTerm[k] {
				return decTerm(p, k), uint8(0xFF << uint(k)), false
			}
		}
		return xgmiiError, 0xFF, true
	}
}

// cchar maps a 7-bit control code back to its XGMII character.
func cchar(code uint8) uint8 {
	if code == ccIdle {
		return chIdle
	}
	return chError // ERROR and any out-of-range code
}

// ochar maps a 4-bit O-code back to its ordered-set character.
func ochar(code uint8) uint8 {
	if code == ocSig {
		return chSigOS
	}
	return chSeqOS
}

func decCtrl(p uint64) uint64 {
	var data uint64
	for k := 0; k < 8; k++ {
		code := uint8(p >> uint(8+7*k) & 0x7F)
		data |= uint64(cchar(code)) << uint(8*k)
	}
	return data
}

func decStart4(p uint64) uint64 {
	var (
		lo = p >> 8 & 0xFFFFFFFF // D0-D3
		hi = p >> 40 & 0xFFFFFF  // D5-D7
	)
	return hi<<40 | uint64(chStart)<<32 | lo
}

func decTerm(p uint64, k int) uint64 {
	var (
		f    = p >> uint(15-k)
		data = uint64(chTerm) << uint(8*k)
	)
	for j := 0; j < k; j++ {
		data |= (f >> uint(8*j) & 0xFF) << uint(8*j)
	}
	for j := k + 1; j < 8; j++ {
		code := uint8(f >> uint(8*k+7*(j-k-1)) & 0x7F)
		data |= uint64(cchar(code)) << uint(8*j)
	}
	return data
}

func decOSOS(p uint64) uint64 {
	data := uint64(ochar(uint8(p >> 8 & 0xF)))
	data |= (p >> 12 & 0xFFFFFF) << 8 // D1-D3
	data |= uint64(ochar(uint8(p>>36&0xF))) << 32
	data |= (p >> 40 & 0xFFFFFF) << 40 // D5-D7
	return data
}

func decOSStart(p uint64) uint64 {
	data := uint64(ochar(uint8(p >> 12 & 0xF)))
	data |= (p >> 16 & 0xFFFFFF) << 8 // D1-D3
	data |= uint64(chStart) << 32
	data |= (p >> 40 & 0xFFFFFF) << 40 // D5-D7
	return data
}
