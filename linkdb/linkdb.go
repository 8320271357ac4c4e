// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linkdb holds types to archive and retrieve the link status
// history of PCS lanes from the monitoring database.
package linkdb // import "github.com/go-lpc/pcs/linkdb"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-lpc/pcs/baser"
	_ "github.com/go-sql-driver/mysql"
)

const (
	host = "localhost"
)

var (
	usr = "username"
	pwd = "s3cr3t"

	drvName = "mysql"
)

// DB exposes convenience methods to archive and retrieve link status
// snapshots from the PCS monitoring database.
type DB struct {
	db   *sql.DB
	name string // name of the monitoring database
}

// Open opens a connection to the monitoring database dbname.
func Open(dbname string) (*DB, error) {
	db, err := sql.Open(drvName, dsn(dbname))
	if err != nil {
		return nil, fmt.Errorf("linkdb: could not open %q db: %w", dbname, err)
	}

	err = ping(db, dbname)
	if err != nil {
		return nil, fmt.Errorf("linkdb: could not ping %q db: %w", dbname, err)
	}

	return &DB{db: db, name: dbname}, nil
}

func dsn(db string) string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s", usr, pwd, host, db)
}

func ping(db *sql.DB, dbname string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("linkdb: could not ping %q db: %w", dbname, err)
	}

	return nil
}

func (db *DB) Close() error {
	return db.db.Close()
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// LastRun returns the identifier of the most recent monitoring run.
func (db *DB) LastRun(ctx context.Context) (uint32, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var run uint32
	rows, err := db.db.QueryContext(
		ctx,
		"SELECT run FROM runs ORDER BY datetime DESC LIMIT 1",
	)
	if err != nil {
		return run, fmt.Errorf("linkdb: could not query last run: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		err = rows.Scan(&run)
		if err != nil {
			return run, fmt.Errorf("linkdb: could not get last run value: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return run, fmt.Errorf("linkdb: could not scan db for last run: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return run, fmt.Errorf("linkdb: context error while retrieving last run: %w", err)
	}

	return run, nil
}

// AddStatus archives one link status snapshot under the given run and
// lane.
func (db *DB) AddStatus(ctx context.Context, run uint32, lane string, st baser.LinkStatus, ticks uint64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := db.db.ExecContext(
		ctx,
		`INSERT INTO linkstatus
			(run, lane, lock_, hiber, linkup, bercnt, errblks, invhdrs, slips, ticks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run, lane,
		st.Lock, st.HiBER, st.LinkUp,
		st.BERCount, st.ErroredBlocks, st.InvalidHdrs, st.Slips,
		ticks,
	)
	if err != nil {
		return fmt.Errorf("linkdb: could not archive status for run=%d lane=%q: %w", run, lane, err)
	}

	return nil
}

// Status is one archived link status snapshot.
type Status struct {
	Run   uint32
	Lane  string
	Ticks uint64
	baser.LinkStatus
}

// StatusOf returns the archived status history of the given run and
// lane, oldest snapshot first.
func (db *DB) StatusOf(ctx context.Context, run uint32, lane string) ([]Status, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := db.db.QueryContext(
		ctx,
		`SELECT run, lane, lock_, hiber, linkup, bercnt, errblks, invhdrs, slips, ticks
		FROM linkstatus
		WHERE run = ? AND lane = ?
		ORDER BY ticks ASC`,
		run, lane,
	)
	if err != nil {
		return nil, fmt.Errorf("linkdb: could not query status for run=%d lane=%q: %w", run, lane, err)
	}
	defer rows.Close()

	var sts []Status
	for rows.Next() {
		var st Status
		err = rows.Scan(
			&st.Run, &st.Lane,
			&st.Lock, &st.HiBER, &st.LinkUp,
			&st.BERCount, &st.ErroredBlocks, &st.InvalidHdrs, &st.Slips,
			&st.Ticks,
		)
		if err != nil {
			return nil, fmt.Errorf("linkdb: could not scan status for run=%d lane=%q: %w", run, lane, err)
		}
		sts = append(sts, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("linkdb: could not scan db for status of run=%d lane=%q: %w", run, lane, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("linkdb: context error while retrieving status of run=%d lane=%q: %w", run, lane, err)
	}

	return sts, nil
}
