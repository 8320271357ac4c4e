// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sfp reads the identification and diagnostic monitoring data
// of SFP+ optical transceiver modules over their 2-wire interface, as
// laid out by SFF-8472.
package sfp // import "github.com/go-lpc/pcs/sfp"

import (
	"strings"

	"golang.org/x/xerrors"
)

// 2-wire addresses of the two SFF-8472 memory pages.
const (
	AddrA0 = 0x50 // serial ID and base fields
	AddrA2 = 0x51 // diagnostic monitoring
)

// unit scales of the raw diagnostic words.
const (
	temperatureToCelsius = 1 / 256.
	supplyVoltageToVolts = 100e-6
	txBiasCurrentToAmps  = 2e-6
	powerToWatts         = 1e-7
)

// Bus is the 2-wire register access the module is reachable over.
// *smbus.Conn satisfies it.
type Bus interface {
	ReadReg(addr, reg uint8) (uint8, error)
	WriteReg(addr, reg, v uint8) error
}

// Device is one SFP+ module on a 2-wire bus.
type Device struct {
	bus Bus
}

// New returns an SFP+ module accessed through the given bus.
func New(bus Bus) *Device {
	return &Device{bus: bus}
}

// ID is the serial identification block of the A0h page.
type ID struct {
	Identifier uint8 // 0x03 for SFP/SFP+
	Connector  uint8 // 0x07 for LC
	Vendor     string
	OUI        [3]uint8
	Part       string
	Revision   string
	Serial     string
	Date       string
}

// ID reads and decodes the serial identification block, after
// verifying its checksum.
func (dev *Device) ID() (ID, error) {
	var id ID

	raw, err := dev.readN(AddrA0, 0, 96)
	if err != nil {
		return id, xerrors.Errorf("sfp: could not read serial ID block: %w", err)
	}

	var sum uint8
	for _, v := range raw[:63] {
		sum += v
	}
	if sum != raw[63] {
		return id, xerrors.Errorf("sfp: invalid serial ID checksum: got=0x%02X, want=0x%02X", sum, raw[63])
	}

	id.Identifier = raw[0]
	id.Connector = raw[2]
	id.Vendor = str(raw[20:36])
	copy(id.OUI[:], raw[37:40])
	id.Part = str(raw[40:56])
	id.Revision = str(raw[56:60])
	id.Serial = str(raw[68:84])
	id.Date = str(raw[84:92])
	return id, nil
}

// DDM is one snapshot of the diagnostic monitors of the A2h page.
type DDM struct {
	Temperature float64 // C
	Voltage     float64 // V
	TxBias      float64 // A
	TxPower     float64 // W
	RxPower     float64 // W
}

// DDM reads the real-time diagnostic monitors.
func (dev *Device) DDM() (DDM, error) {
	var ddm DDM

	raw, err := dev.readN(AddrA2, 96, 10)
	if err != nil {
		return ddm, xerrors.Errorf("sfp: could not read diagnostics block: %w", err)
	}

	ddm.Temperature = float64(int16(u16(raw[0:2]))) * temperatureToCelsius
	ddm.Voltage = float64(u16(raw[2:4])) * supplyVoltageToVolts
	ddm.TxBias = float64(u16(raw[4:6])) * txBiasCurrentToAmps
	ddm.TxPower = float64(u16(raw[6:8])) * powerToWatts
	ddm.RxPower = float64(u16(raw[8:10])) * powerToWatts
	return ddm, nil
}

// TxDisable drives the soft TX_DISABLE bit of the A2h control
// register.
func (dev *Device) TxDisable(v bool) error {
	const reg = 110
	ctl, err := dev.bus.ReadReg(AddrA2, reg)
	if err != nil {
		return xerrors.Errorf("sfp: could not read control register: %w", err)
	}
	switch {
	case v:
		ctl |= 1 << 6
	default:
		ctl &^= 1 << 6
	}
	err = dev.bus.WriteReg(AddrA2, reg, ctl)
	if err != nil {
		return xerrors.Errorf("sfp: could not write control register: %w", err)
	}
	return nil
}

func (dev *Device) readN(addr, reg uint8, n int) ([]uint8, error) {
	buf := make([]uint8, n)
	for i := range buf {
		v, err := dev.bus.ReadReg(addr, reg+uint8(i))
		if err != nil {
			return nil, xerrors.Errorf("sfp: could not read reg 0x%02X/0x%02X: %w", addr, reg+uint8(i), err)
		}
		buf[i] = v
	}
	return buf, nil
}

func u16(p []uint8) uint16 {
	return uint16(p[0])<<8 | uint16(p[1])
}

func str(p []uint8) string {
	return strings.TrimRight(string(p), " ")
}
