// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linkdb

import (
	"context"
	"database/sql/driver"
	"reflect"
	"testing"

	"github.com/go-lpc/pcs/baser"
	"github.com/go-lpc/pcs/internal/fakedb"
)

func init() {
	drvName = "fakedb"
}

func TestOpen(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open linkdb: %+v", err)
	}
	defer db.Close()
}

func TestLastRun(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open linkdb: %+v", err)
	}
	defer db.Close()

	_ = fakedb.Run(context.Background(), fakedb.Rows{
		Names: []string{"run"},
		Values: [][]driver.Value{
			{uint32(42)},
		},
	}, func(ctx context.Context) error {
		run, err := db.LastRun(ctx)
		if err != nil {
			t.Fatalf("could not retrieve last run: %+v", err)
		}

		if got, want := run, uint32(42); got != want {
			t.Fatalf("invalid last run: got=%d, want=%d", got, want)
		}
		return nil
	})
}

func TestAddStatus(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open linkdb: %+v", err)
	}
	defer db.Close()

	st := baser.LinkStatus{
		Lock:          true,
		LinkUp:        true,
		BERCount:      3,
		ErroredBlocks: 1,
		InvalidHdrs:   12,
		Slips:         65,
	}

	_ = fakedb.Run(context.Background(), fakedb.Rows{}, func(ctx context.Context) error {
		err := db.AddStatus(ctx, 42, "lane0", st, 131072)
		if err != nil {
			t.Fatalf("could not archive status: %+v", err)
		}

		execs := fakedb.Execs()
		if got, want := len(execs), 1; got != want {
			t.Fatalf("invalid number of statements: got=%d, want=%d", got, want)
		}
		if got, want := len(execs[0]), 10; got != want {
			t.Fatalf("invalid number of arguments: got=%d, want=%d", got, want)
		}
		if got, want := execs[0][0], driver.Value(int64(42)); got != want {
			t.Fatalf("invalid run argument: got=%v (%T), want=%v", got, got, want)
		}
		if got, want := execs[0][1], driver.Value("lane0"); got != want {
			t.Fatalf("invalid lane argument: got=%v (%T), want=%v", got, got, want)
		}
		return nil
	})
}

func TestStatusOf(t *testing.T) {
	db, err := Open("fakedb")
	if err != nil {
		t.Fatalf("could not open linkdb: %+v", err)
	}
	defer db.Close()

	names := []string{
		"run", "lane",
		"lock_", "hiber", "linkup",
		"bercnt", "errblks", "invhdrs", "slips",
		"ticks",
	}

	_ = fakedb.Run(context.Background(), fakedb.Rows{
		Names: names,
		Values: [][]driver.Value{
			{uint32(42), "lane0", true, false, false, uint32(0), uint32(0), uint64(0), uint64(65), uint64(65536)},
			{uint32(42), "lane0", true, false, true, uint32(3), uint32(1), uint64(12), uint64(65), uint64(131072)},
		},
	}, func(ctx context.Context) error {
		sts, err := db.StatusOf(ctx, 42, "lane0")
		if err != nil {
			t.Fatalf("could not retrieve status history: %+v", err)
		}

		want := []Status{
			{
				Run: 42, Lane: "lane0", Ticks: 65536,
				LinkStatus: baser.LinkStatus{
					Lock:  true,
					Slips: 65,
				},
			},
			{
				Run: 42, Lane: "lane0", Ticks: 131072,
				LinkStatus: baser.LinkStatus{
					Lock:          true,
					LinkUp:        true,
					BERCount:      3,
					ErroredBlocks: 1,
					InvalidHdrs:   12,
					Slips:         65,
				},
			},
		}
		if !reflect.DeepEqual(sts, want) {
			t.Fatalf("invalid status history:\ngot = %#v\nwant= %#v", sts, want)
		}
		return nil
	})
}
