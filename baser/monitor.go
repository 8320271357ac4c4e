// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package baser

import "math"

// Monitor derives the link status of one PCS lane: a debounced
// link-up flag, saturating error counters and a latching-low status
// bit, all driven from the block sync outputs and the decode errors
// of the RX pipeline.
type Monitor struct {
	dwell uint64 // ticks raw status must hold before link-up

	raw    bool
	upFor  uint64
	linkUp bool

	berCnt  uint32 // ticks spent in hi-BER while locked, saturating
	errBlks uint32 // decode errors while locked, saturating

	latched bool // latching-low status, re-armed by ReadStatus
}

// NewMonitor returns a link monitor with the given link-up dwell
// time, expressed in ticks of one serial word.
func NewMonitor(dwell uint64) *Monitor {
	return &Monitor{dwell: dwell}
}

// Reset clears all monitor state.
func (m *Monitor) Reset() {
	*m = Monitor{dwell: m.dwell}
}

// Step advances the monitor by one tick. decErr flags one decode
// error surfaced by the RX pipeline on this tick.
func (m *Monitor) Step(lock, hiBER, decErr bool) {
	if !lock {
		m.berCnt = 0
		m.errBlks = 0
	}
	if lock && hiBER && m.berCnt < math.MaxUint32 {
		m.berCnt++
	}
	if lock && decErr && m.errBlks < math.MaxUint32 {
		m.errBlks++
	}

	m.raw = lock && !hiBER
	if !m.raw {
		m.upFor = 0
		m.linkUp = false
		m.latched = false
		return
	}
	if m.upFor < m.dwell {
		m.upFor++
	}
	m.linkUp = m.upFor >= m.dwell
}

// LinkUp reports the debounced link status: true only after the raw
// status has held continuously for the dwell time, false the instant
// it drops.
func (m *Monitor) LinkUp() bool { return m.linkUp }

// BERCount returns the saturating count of ticks spent with the
// high-error flag raised while locked.
func (m *Monitor) BERCount() uint32 { return m.berCnt }

// ErroredBlocks returns the saturating count of decode errors
// observed while locked.
func (m *Monitor) ErroredBlocks() uint32 { return m.errBlks }

// ReadStatus returns the latching-low status bit and re-arms it: the
// returned value is false if the raw status dropped at any point
// since the previous read, and the bit is reset to the current raw
// status.
func (m *Monitor) ReadStatus() bool {
	v := m.latched
	m.latched = m.raw
	return v
}
