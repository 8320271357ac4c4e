// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// pcs-dump decodes and displays PCS serial capture files.
//
// Usage: pcs-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> pcs-dump ./pcs_000042.raw
//	=== pcs_000042.raw ===
//	words:          10000000
//	xfers:          2424177
//	lock at word:   268
//	errored blocks: 1
//	xfer data=0x0707070707070707 ctrl=0xff
//	[...]
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-lpc/pcs/baser"
	"go-hep.org/x/hep/hbook"
)

func main() {
	log.SetPrefix("pcs-dump: ")
	log.SetFlags(0)

	var (
		nmax  = flag.Int("n", 10, "max number of XGMII transfers to display per file")
		yoda  = flag.String("yoda", "", "path to optional YODA output file for the BER histogram")
		dwell = flag.Uint64("dwell", baser.DefaultLinkUpDwell, "link-up dwell time (ticks)")
	)

	flag.Usage = func() {
		fmt.Printf(`pcs-dump decodes and displays PCS serial capture files.

Usage: pcs-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> pcs-dump ./pcs_000042.raw
 === pcs_000042.raw ===
 words:          10000000
 xfers:          2424177
 lock at word:   268
 errored blocks: 1
 xfer data=0x0707070707070707 ctrl=0xff
 [...]

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		log.Fatalf("missing path to input capture file")
	}

	berr := hbook.NewH1D(100, 0, 100)

	for _, fname := range flag.Args() {
		err := process(os.Stdout, fname, *nmax, *dwell, berr)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}

	if *yoda != "" {
		err := saveYODA(*yoda, berr)
		if err != nil {
			log.Fatalf("could not save YODA file %q: %+v", *yoda, err)
		}
	}
}

func process(w io.Writer, fname string, nmax int, dwell uint64, berr *hbook.H1D) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	f, err := os.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer f.Close()

	var (
		rr = baser.NewWordReader(f)
		rx = baser.NewRX(baser.WithLinkUpDwell(dwell))

		xfers   uint64
		lockAt  = int64(-1)
		nshown  int
		prevErr uint32
	)

	fmt.Fprintf(wbuf, "=== %s ===\n", fname)

loop:
	for {
		word, err := rr.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break loop
			}
			return fmt.Errorf("could not read serial word: %w", err)
		}

		rxo := rx.Step(word, true, 0, false)
		if lockAt < 0 && rxo.Status.Lock {
			lockAt = int64(rr.Words())
		}
		if !rxo.Valid {
			continue
		}
		xfers++
		if rxo.Status.ErroredBlocks != prevErr {
			berr.Fill(float64(rxo.Status.ErroredBlocks), 1)
			prevErr = rxo.Status.ErroredBlocks
		}
		if nshown < nmax {
			fmt.Fprintf(wbuf, "xfer data=0x%016x ctrl=0x%02x", rxo.Data, rxo.Ctrl)
			if rxo.Err {
				fmt.Fprintf(wbuf, " (invalid)")
			}
			fmt.Fprintf(wbuf, "\n")
			nshown++
		}
	}

	st := rx.Step(0, false, 0, false).Status
	fmt.Fprintf(wbuf, "words:          %d\n", rr.Words())
	fmt.Fprintf(wbuf, "xfers:          %d\n", xfers)
	fmt.Fprintf(wbuf, "lock at word:   %d\n", lockAt)
	fmt.Fprintf(wbuf, "errored blocks: %d\n", st.ErroredBlocks)
	fmt.Fprintf(wbuf, "invalid hdrs:   %d\n", st.InvalidHdrs)
	fmt.Fprintf(wbuf, "slips:          %d\n", st.Slips)

	return nil
}

func saveYODA(fname string, h *hbook.H1D) error {
	raw, err := h.MarshalYODA()
	if err != nil {
		return fmt.Errorf("could not marshal histogram: %w", err)
	}
	err = os.WriteFile(fname, raw, 0644)
	if err != nil {
		return fmt.Errorf("could not write %q: %w", fname, err)
	}
	return nil
}
