// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package baser

// Link is a loopback PCS lane: the TX serial word stream is fed
// straight back into the RX pipeline, the software equivalent of a
// transceiver in near-end loopback. It is the harness used by the
// stand-alone daq, the control server and the conformance tests.
type Link struct {
	TX *TX
	RX *RX

	sideHdr bool
}

// NewLink returns a loopback link in its reset state.
func NewLink(opts ...Option) *Link {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Link{
		TX:      NewTX(),
		RX:      NewRX(opts...),
		sideHdr: cfg.sideHdr,
	}
}

// Reset synchronously restores both pipelines to their initial state.
func (lnk *Link) Reset() {
	lnk.TX.Reset()
	lnk.RX.Reset()
}

// Ready reports whether the link accepts one XGMII transfer on the
// next Tick.
func (lnk *Link) Ready() bool { return lnk.TX.Ready() }

// Tick advances the whole lane by one tick: the TX pipeline consumes
// the XGMII transfer when valid is set (callers must honor Ready) and
// whatever serial word it emits is looped into the RX pipeline.
func (lnk *Link) Tick(data uint64, ctrl uint8, valid bool) (TxOut, RxOut) {
	txo := lnk.TX.Step(data, ctrl, valid)
	rxo := lnk.RX.Step(txo.Word, txo.Valid, txo.Header, lnk.sideHdr && txo.Valid)
	return txo, rxo
}

// TickIdle advances the lane by one tick, feeding an all-idle XGMII
// transfer whenever the TX pipeline is ready for one.
func (lnk *Link) TickIdle() (TxOut, RxOut) {
	if lnk.Ready() {
		return lnk.Tick(xgmiiIdle, 0xFF, true)
	}
	return lnk.Tick(0, 0, false)
}
