// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/go-lpc/pcs/linkdb"
	_ "github.com/go-sql-driver/mysql"
)

const (
	dbname = "pcsmon"
)

func main() {
	log.SetPrefix("pcs-sql: ")
	log.SetFlags(0)

	var (
		run  = flag.Int("run", -1, "run to inspect (last run if negative)")
		lane = flag.String("lane", "lane0", "lane to inspect")
	)

	flag.Parse()

	log.Printf("run:  %d", *run)
	log.Printf("lane: %q", *lane)

	db, err := linkdb.Open(dbname)
	if err != nil {
		log.Fatalf("could not open PCS monitoring db: %+v", err)
	}
	defer db.Close()

	err = doQuery(db, *run, *lane)
	if err != nil {
		log.Fatalf("could not do query: %+v", err)
	}
}

func doQuery(db *linkdb.DB, run int, lane string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if run < 0 {
		v, err := db.LastRun(ctx)
		if err != nil {
			return fmt.Errorf("could not get last run value: %w", err)
		}
		run = int(v)
		log.Printf("last run: %d", run)
	}

	sts, err := db.StatusOf(ctx, uint32(run), lane)
	if err != nil {
		return fmt.Errorf("could not get status history of run=%d lane=%q: %w", run, lane, err)
	}

	log.Printf("snapshots: %d", len(sts))
	for _, st := range sts {
		log.Printf(
			"ticks=% 12d lock=%v hi-ber=%v link-up=%v ber-count=%d errored=%d inv-hdrs=%d slips=%d",
			st.Ticks, st.Lock, st.HiBER, st.LinkUp,
			st.BERCount, st.ErroredBlocks, st.InvalidHdrs, st.Slips,
		)
	}

	return nil
}
