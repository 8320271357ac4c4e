// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package baser

// XGMII control characters.
const (
	chIdle  = 0x07 // idle character
	chStart = 0xFB // start-of-packet delimiter
	chTerm  = 0xFD // end-of-packet delimiter
	chError = 0xFE // error propagation character
	chSeqOS = 0x9C // sequence ordered-set character
	chSigOS = 0x5C // signal ordered-set character
)

// Sync headers. 00 and 11 are invalid by construction.
const (
	HdrData = 0x1 // 01: data block
	HdrCtrl = 0x2 // 10: control block
)

// Control block types.
const (
	btCtrl    = 0x1E // C0-C7
	btStart0  = 0x33 // S0 D1-D7
	btStart4  = 0x78 // D0-D3 S4 D5-D7
	btOSOS    = 0x2D // O0 D1-D3 O4 D5-D7
	btOSStart = 0x66 // O0 D1-D3 S4 D5-D7
)

// btTerm[k] is the block type of a terminate in lane k.
var btTerm = [8]uint8{0x87, 0x99, 0xAA, 0xB4, 0xCC, 0xD2, 0xE1, 0xFF}

// 7-bit control codes and 4-bit O-codes.
const (
	ccIdle  = 0x00
	ccError = 0x1E

	ocSeq = 0x0
	ocSig = 0xF
)

// Block sync state machine parameters (IEEE 802.3 figure 49-12).
const (
	lockThreshold = 64   // consecutive valid headers to declare lock
	berWindow     = 8192 // blocks per error-rate window
	berThreshold  = 16   // invalid headers per window to drop lock
)

// SerdesWidth is the width of one serial word, in bits.
const SerdesWidth = 16

// BlockBits is the width of one 64B/66B block, in bits.
const BlockBits = 66

// DefaultLinkUpDwell is the default link-up debounce time of the
// link monitor, in ticks of one serial word. 644531 words of 16 bits
// at 10.3125 Gbaud amount to about 1 ms.
const DefaultLinkUpDwell = 644531
