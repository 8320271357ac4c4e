// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command pcs-sfp displays the identification and diagnostics of an
// SFP+ module sitting on an I2C/SMBus bus.
package main // import "github.com/go-lpc/pcs/cmd/pcs-sfp"

import (
	"flag"
	"fmt"
	"log"

	"github.com/go-daq/smbus"
	"github.com/go-lpc/pcs/sfp"
)

func main() {
	var (
		bus = flag.Int("bus", 1, "SMBus bus id")
		ddm = flag.Bool("ddm", true, "display diagnostics monitors")
	)

	log.SetPrefix("pcs-sfp: ")
	log.SetFlags(0)

	flag.Parse()

	err := run(*bus, *ddm)
	if err != nil {
		log.Fatalf("could not inspect SFP+ module: %+v", err)
	}
}

func run(bus int, withDDM bool) error {
	conn, err := smbus.Open(bus, sfp.AddrA0)
	if err != nil {
		return fmt.Errorf("could not open SMBus %d: %w", bus, err)
	}
	defer conn.Close()

	dev := sfp.New(conn)

	id, err := dev.ID()
	if err != nil {
		return fmt.Errorf("could not read module ID: %w", err)
	}

	log.Printf("identifier: 0x%02x", id.Identifier)
	log.Printf("connector:  0x%02x", id.Connector)
	log.Printf("vendor:     %q", id.Vendor)
	log.Printf("OUI:        %02x:%02x:%02x", id.OUI[0], id.OUI[1], id.OUI[2])
	log.Printf("part:       %q", id.Part)
	log.Printf("revision:   %q", id.Revision)
	log.Printf("serial:     %q", id.Serial)
	log.Printf("date:       %q", id.Date)

	if !withDDM {
		return nil
	}

	mon, err := dev.DDM()
	if err != nil {
		return fmt.Errorf("could not read module diagnostics: %w", err)
	}

	log.Printf("temperature: %8.3f C", mon.Temperature)
	log.Printf("voltage:     %8.3f V", mon.Voltage)
	log.Printf("tx-bias:     %8.3f mA", mon.TxBias*1e3)
	log.Printf("tx-power:    %8.3f mW", mon.TxPower*1e3)
	log.Printf("rx-power:    %8.3f mW", mon.RxPower*1e3)
	return nil
}
