// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package baser

type config struct {
	dwell   uint64
	sideHdr bool
}

func newConfig() config {
	return config{dwell: DefaultLinkUpDwell}
}

// Option configures a PCS pipeline.
type Option func(*config)

// WithLinkUpDwell sets the link-up debounce time of the link monitor,
// in ticks of one serial word.
func WithLinkUpDwell(n uint64) Option {
	return func(cfg *config) {
		cfg.dwell = n
	}
}

// WithSideChannelHeaders makes the loopback link carry the 2-bit sync
// header out-of-band next to each serial word, as a transceiver with
// an embedded gearbox would.
func WithSideChannelHeaders(enabled bool) Option {
	return func(cfg *config) {
		cfg.sideHdr = enabled
	}
}

// TxOut is the per-tick output of the TX pipeline.
type TxOut struct {
	Word   uint16 // one serial word of the scrambled bit stream
	Header uint8  // sync header of the block the word belongs to
	Valid  bool
	EncErr bool // the XGMII input matched no recognized lane pattern
}

// TX is the transmit pipeline: codec, scrambler and TX gearbox
// composed into one synchronous step function.
type TX struct {
	scr *Scrambler
	gb  *TxGearbox
}

// NewTX returns a TX pipeline in its reset state.
func NewTX() *TX {
	return &TX{
		scr: NewScrambler(),
		gb:  NewTxGearbox(),
	}
}

// Reset restores all TX state to its initial values.
func (tx *TX) Reset() {
	tx.scr.Reset()
	tx.gb.Reset()
}

// Ready reports whether the TX pipeline can accept one XGMII transfer
// on the next Step. This is the sole backpressure mechanism of the
// transmit path.
func (tx *TX) Ready() bool { return tx.gb.Ready() }

// Step advances the pipeline by one tick. When valid is set (the
// caller must have checked Ready), the XGMII transfer is encoded,
// its payload scrambled and the block loaded into the gearbox.
func (tx *TX) Step(data uint64, ctrl uint8, valid bool) TxOut {
	var (
		out TxOut
		blk *Block
	)
	if valid {
		b, encErr := Encode(data, ctrl)
		b.Payload = tx.scr.Scramble(b.Payload)
		blk = &b
		out.EncErr = encErr
	}
	out.Word, out.Header, out.Valid = tx.gb.Step(blk)
	return out
}

// LinkStatus aggregates the RX-side status flags and counters.
type LinkStatus struct {
	Lock   bool
	HiBER  bool
	LinkUp bool

	BERCount      uint32 // saturating, ticks in hi-BER while locked
	ErroredBlocks uint32 // saturating, decode errors while locked
	InvalidHdrs   uint64 // free-running invalid headers while locked
	Slips         uint64 // diagnostic bit-slip count of the gearbox
}

// RxOut is the per-tick output of the RX pipeline.
type RxOut struct {
	Data  uint64 // XGMII data word, valid when Valid is set
	Ctrl  uint8  // XGMII control mask
	Valid bool   // one block was extracted and decoded this tick
	Err   bool   // the decoded block was invalid

	Status LinkStatus
}

// RX is the receive pipeline: RX gearbox, block sync, descrambler and
// codec composed into one synchronous step function. The slip request
// of the block sync is registered and consumed by the gearbox on the
// following tick; the descrambler only advances while lock is held.
type RX struct {
	gb   *RxGearbox
	sync *BlockSync
	dsc  *Descrambler
	mon  *Monitor

	slip bool // registered slip feedback into the gearbox
}

// NewRX returns an RX pipeline in its reset state.
func NewRX(opts ...Option) *RX {
	cfg := newConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &RX{
		gb:   NewRxGearbox(),
		sync: NewBlockSync(),
		dsc:  NewDescrambler(),
		mon:  NewMonitor(cfg.dwell),
	}
}

// Reset restores all RX state to its initial values.
func (rx *RX) Reset() {
	rx.gb.Reset()
	rx.sync.Reset()
	rx.dsc.Reset()
	rx.mon.Reset()
	rx.slip = false
}

// ReadStatus returns the latching-low link status bit and re-arms it
// (see Monitor.ReadStatus).
func (rx *RX) ReadStatus() bool { return rx.mon.ReadStatus() }

// Step advances the pipeline by one tick with one serial word. When
// the transceiver carries sync headers out-of-band, hdrOK marks hdr
// as the header accompanying this word.
func (rx *RX) Step(word uint16, valid bool, hdr uint8, hdrOK bool) RxOut {
	var out RxOut

	blk, ok := rx.gb.Step(word, valid, rx.slip, hdr, hdrOK)
	rx.slip = false

	if ok {
		st := rx.sync.Step(blk.Head)
		rx.slip = st.Slip
		if st.Lock {
			blk.Payload = rx.dsc.Descramble(blk.Payload)
			out.Data, out.Ctrl, out.Err = Decode(blk)
			out.Valid = true
		}
	}

	rx.mon.Step(rx.sync.Lock(), rx.sync.HiBER(), out.Valid && out.Err)

	out.Status = LinkStatus{
		Lock:          rx.sync.Lock(),
		HiBER:         rx.sync.HiBER(),
		LinkUp:        rx.mon.LinkUp(),
		BERCount:      rx.mon.BERCount(),
		ErroredBlocks: rx.mon.ErroredBlocks(),
		InvalidHdrs:   rx.sync.InvalidHeaders(),
		Slips:         rx.gb.Slips(),
	}
	return out
}
