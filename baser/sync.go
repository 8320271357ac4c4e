// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package baser

type syncState uint8

const (
	syncSearching syncState = iota
	syncCounting
	syncTesting
	syncLocked
)

// SyncStatus is the per-block output of the block sync state machine.
// Slip requests a one-bit realignment of the incoming stream; it is
// consumed exactly once by the RX gearbox.
type SyncStatus struct {
	Slip  bool
	Lock  bool
	HiBER bool
}

// BlockSync is the block-lock acquisition and loss state machine of
// IEEE 802.3 clause 49.2.13: acquisition on 64 consecutive valid sync
// headers, then windowed error-rate surveillance. While hunting, every
// invalid header requests a one-bit slip; while locked, invalid
// headers only count against the current window.
type BlockSync struct {
	state    syncState
	nvalid   int // consecutive valid headers while testing
	ninvalid int // invalid headers in the current window
	wcount   int // position in the current window

	lock  bool
	hiBER bool

	errHdr uint64 // free-running invalid-header count while locked
}

// NewBlockSync returns a block sync state machine in its reset state.
func NewBlockSync() *BlockSync {
	return &BlockSync{state: syncSearching}
}

// Reset forces the state machine back to SEARCHING and clears all
// counters and flags.
func (bs *BlockSync) Reset() {
	*bs = BlockSync{state: syncSearching}
}

// Lock reports whether block lock is currently held.
func (bs *BlockSync) Lock() bool { return bs.lock }

// HiBER reports whether the last completed window exceeded the
// error-rate threshold.
func (bs *BlockSync) HiBER() bool { return bs.hiBER }

// InvalidHeaders returns the free-running count of invalid sync
// headers observed while locked, for external BER accounting.
func (bs *BlockSync) InvalidHeaders() uint64 { return bs.errHdr }

// Step consumes the sync header of one received block and returns the
// slip request together with the current lock and error-rate flags.
func (bs *BlockSync) Step(hdr uint8) SyncStatus {
	var (
		out   SyncStatus
		valid = hdr == HdrData || hdr == HdrCtrl
	)

	switch bs.state {
	case syncSearching:
		if !valid {
			out.Slip = true
			break
		}
		bs.state = syncCounting
		fallthrough

	case syncCounting:
		// transient: account for the header that left SEARCHING
		bs.nvalid = 1
		bs.ninvalid = 0
		bs.state = syncTesting

	case syncTesting:
		if !valid {
			out.Slip = true
			bs.state = syncSearching
			break
		}
		bs.nvalid++
		if bs.nvalid >= lockThreshold {
			bs.lock = true
			bs.hiBER = false
			bs.wcount = 0
			bs.ninvalid = 0
			bs.state = syncLocked
		}

	case syncLocked:
		bs.wcount++
		if !valid {
			bs.ninvalid++
			bs.errHdr++
		}
		if bs.wcount >= berWindow {
			if bs.ninvalid >= berThreshold {
				bs.lock = false
				bs.hiBER = true
				bs.state = syncSearching
				break
			}
			bs.hiBER = false
			bs.wcount = 0
			bs.ninvalid = 0
		}
	}

	out.Lock = bs.lock
	out.HiBER = bs.hiBER
	return out
}
