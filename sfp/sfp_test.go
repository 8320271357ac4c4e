// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sfp

import (
	"math"
	"testing"

	"golang.org/x/xerrors"
)

type fakeBus struct {
	a0 [256]uint8
	a2 [256]uint8

	err error
}

func (bus *fakeBus) page(addr uint8) *[256]uint8 {
	switch addr {
	case AddrA0:
		return &bus.a0
	case AddrA2:
		return &bus.a2
	}
	return nil
}

func (bus *fakeBus) ReadReg(addr, reg uint8) (uint8, error) {
	if bus.err != nil {
		return 0, bus.err
	}
	p := bus.page(addr)
	if p == nil {
		return 0, xerrors.Errorf("no device at address 0x%02X", addr)
	}
	return p[reg], nil
}

func (bus *fakeBus) WriteReg(addr, reg, v uint8) error {
	if bus.err != nil {
		return bus.err
	}
	p := bus.page(addr)
	if p == nil {
		return xerrors.Errorf("no device at address 0x%02X", addr)
	}
	p[reg] = v
	return nil
}

func newFakeBus() *fakeBus {
	bus := new(fakeBus)
	bus.a0[0] = 0x03 // SFP/SFP+
	bus.a0[2] = 0x07 // LC
	copy(bus.a0[20:36], "ACME OPTICS     ")
	copy(bus.a0[37:40], []uint8{0x00, 0x17, 0x6A})
	copy(bus.a0[40:56], "AX-8571-10G     ")
	copy(bus.a0[56:60], "A1  ")
	copy(bus.a0[68:84], "S20231407       ")
	copy(bus.a0[84:92], "230712  ")

	var sum uint8
	for _, v := range bus.a0[:63] {
		sum += v
	}
	bus.a0[63] = sum

	// temperature 25.5 C, vcc 3.3 V, bias 6 mA,
	// tx power 0.6 mW, rx power 0.5 mW
	put := func(reg int, v uint16) {
		bus.a2[reg] = uint8(v >> 8)
		bus.a2[reg+1] = uint8(v)
	}
	put(96, 25*256+128)
	put(98, 33000)
	put(100, 3000)
	put(102, 6000)
	put(104, 5000)
	return bus
}

func TestID(t *testing.T) {
	dev := New(newFakeBus())

	id, err := dev.ID()
	if err != nil {
		t.Fatalf("could not read serial ID: %+v", err)
	}

	want := ID{
		Identifier: 0x03,
		Connector:  0x07,
		Vendor:     "ACME OPTICS",
		OUI:        [3]uint8{0x00, 0x17, 0x6A},
		Part:       "AX-8571-10G",
		Revision:   "A1",
		Serial:     "S20231407",
		Date:       "230712",
	}
	if id != want {
		t.Fatalf("invalid serial ID:\ngot = %#v\nwant= %#v", id, want)
	}
}

func TestIDChecksum(t *testing.T) {
	bus := newFakeBus()
	bus.a0[63]++
	dev := New(bus)

	_, err := dev.ID()
	if err == nil {
		t.Fatalf("expected a checksum error")
	}
}

func TestDDM(t *testing.T) {
	dev := New(newFakeBus())

	ddm, err := dev.DDM()
	if err != nil {
		t.Fatalf("could not read diagnostics: %+v", err)
	}

	for _, tc := range []struct {
		name      string
		got, want float64
	}{
		{"temperature", ddm.Temperature, 25.5},
		{"voltage", ddm.Voltage, 3.3},
		{"tx-bias", ddm.TxBias, 6e-3},
		{"tx-power", ddm.TxPower, 0.6e-3},
		{"rx-power", ddm.RxPower, 0.5e-3},
	} {
		if math.Abs(tc.got-tc.want) > 1e-9 {
			t.Fatalf("invalid %s: got=%v, want=%v", tc.name, tc.got, tc.want)
		}
	}
}

func TestTxDisable(t *testing.T) {
	bus := newFakeBus()
	dev := New(bus)

	if err := dev.TxDisable(true); err != nil {
		t.Fatalf("could not disable TX: %+v", err)
	}
	if bus.a2[110]&(1<<6) == 0 {
		t.Fatalf("TX_DISABLE bit not set")
	}
	if err := dev.TxDisable(false); err != nil {
		t.Fatalf("could not enable TX: %+v", err)
	}
	if bus.a2[110]&(1<<6) != 0 {
		t.Fatalf("TX_DISABLE bit not cleared")
	}
}

func TestBusError(t *testing.T) {
	bus := newFakeBus()
	bus.err = xerrors.New("i2c timeout")
	dev := New(bus)

	if _, err := dev.ID(); err == nil {
		t.Fatalf("expected an error on ID read")
	}
	if _, err := dev.DDM(); err == nil {
		t.Fatalf("expected an error on DDM read")
	}
	if err := dev.TxDisable(true); err == nil {
		t.Fatalf("expected an error on TX disable")
	}
}
