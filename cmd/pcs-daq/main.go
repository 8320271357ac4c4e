// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command pcs-daq runs a loopback PCS lane in stand-alone mode,
// recording the transmitted serial word stream to a capture file and
// serving link status snapshots over TCP.
package main // import "github.com/go-lpc/pcs/cmd/pcs-daq"

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-lpc/pcs/baser"
	"github.com/go-lpc/pcs/linkdb"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		runnbr = flag.Int("run", -1, "run number")
		ticks  = flag.Uint64("ticks", 10_000_000, "number of serial ticks to run")
		dwell  = flag.Uint64("dwell", baser.DefaultLinkUpDwell, "link-up dwell time (ticks)")
		addr   = flag.String("status-addr", ":8899", "[address]:port to serve link status on")
		odir   = flag.String("o", ".", "output dir")
		dbname = flag.String("db", "", "monitoring db to archive the end-of-run status to")
	)

	log.SetPrefix("pcs-daq: ")
	log.SetFlags(0)

	flag.Parse()

	log.Printf("run=%d ticks=%d dwell=%d", *runnbr, *ticks, *dwell)

	switch {
	case *runnbr < 0:
		log.Fatalf("invalid run number value")
	case *ticks == 0:
		log.Fatalf("invalid ticks value")
	}

	err := run(uint32(*runnbr), *ticks, *dwell, *addr, *odir, *dbname)
	if err != nil {
		log.Fatalf("could not run pcs-daq: %+v", err)
	}
}

type daq struct {
	lnk *baser.Link
	ww  *baser.WordWriter

	mu sync.Mutex
	st baser.LinkStatus
}

func (daq *daq) status() baser.LinkStatus {
	daq.mu.Lock()
	defer daq.mu.Unlock()
	return daq.st
}

func run(runnbr uint32, ticks, dwell uint64, addr, odir, dbname string) error {
	fname := filepath.Join(odir, fmt.Sprintf("pcs_%06d.raw", runnbr))
	f, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("could not create capture file %q: %w", fname, err)
	}
	defer f.Close()

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not listen on %q: %w", addr, err)
	}
	defer lis.Close()

	daq := &daq{
		lnk: baser.NewLink(baser.WithLinkUpDwell(dwell)),
		ww:  baser.NewWordWriter(f),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		defer cancel()
		return daq.pump(ticks)
	})
	grp.Go(func() error {
		<-ctx.Done()
		return lis.Close()
	})
	grp.Go(func() error {
		return daq.serve(lis)
	})

	err = grp.Wait()
	if err != nil {
		return fmt.Errorf("could not run daq: %w", err)
	}

	st := daq.status()
	log.Printf("words:          %d", daq.ww.Words())
	log.Printf("lock:           %v", st.Lock)
	log.Printf("link-up:        %v", st.LinkUp)
	log.Printf("BER count:      %d", st.BERCount)
	log.Printf("errored blocks: %d", st.ErroredBlocks)
	log.Printf("invalid hdrs:   %d", st.InvalidHdrs)
	log.Printf("slips:          %d", st.Slips)

	err = f.Close()
	if err != nil {
		return fmt.Errorf("could not close capture file %q: %w", fname, err)
	}

	if dbname != "" {
		err = archive(dbname, runnbr, st, ticks)
		if err != nil {
			return fmt.Errorf("could not archive run status: %w", err)
		}
	}

	return nil
}

func (daq *daq) pump(ticks uint64) error {
	for i := uint64(0); i < ticks; i++ {
		txo, rxo := daq.lnk.TickIdle()
		if txo.Valid {
			err := daq.ww.Write(txo.Word)
			if err != nil {
				return fmt.Errorf("could not record serial word: %w", err)
			}
		}
		daq.mu.Lock()
		daq.st = rxo.Status
		daq.mu.Unlock()
	}
	return nil
}

func (daq *daq) serve(lis net.Listener) error {
	for {
		conn, err := lis.Accept()
		if err != nil {
			// listener torn down at end of run
			return nil
		}
		go daq.handle(conn)
	}
}

func (daq *daq) handle(conn net.Conn) {
	defer conn.Close()
	err := json.NewEncoder(conn).Encode(daq.status())
	if err != nil {
		log.Printf("could not encode link status: %+v", err)
	}
}

func archive(dbname string, runnbr uint32, st baser.LinkStatus, ticks uint64) error {
	db, err := linkdb.Open(dbname)
	if err != nil {
		return fmt.Errorf("could not open %q db: %w", dbname, err)
	}
	defer db.Close()

	err = db.AddStatus(context.Background(), runnbr, "lane0", st, ticks)
	if err != nil {
		return fmt.Errorf("could not add status record: %w", err)
	}
	return nil
}
