// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-lpc/pcs/baser"
)

func TestRun(t *testing.T) {
	dir, err := os.MkdirTemp("", "pcs-daq-")
	if err != nil {
		t.Fatalf("could not create tmpdir: %+v", err)
	}
	defer os.RemoveAll(dir)

	addr, err := getTCPPort()
	if err != nil {
		t.Fatalf("could not get TCP port: %+v", err)
	}

	const ticks = 200000
	err = run(42, ticks, 1000, addr, dir, "")
	if err != nil {
		t.Fatalf("could not run daq: %+v", err)
	}

	fname := filepath.Join(dir, "pcs_000042.raw")
	fi, err := os.Stat(fname)
	if err != nil {
		t.Fatalf("could not stat capture file: %+v", err)
	}
	if fi.Size() == 0 {
		t.Fatalf("empty capture file")
	}
	if fi.Size()%2 != 0 {
		t.Fatalf("truncated capture file: %d bytes", fi.Size())
	}
}

func TestStatusPort(t *testing.T) {
	daq := &daq{
		lnk: baser.NewLink(baser.WithLinkUpDwell(1000)),
	}
	for i := 0; i < 100000; i++ {
		_, rxo := daq.lnk.TickIdle()
		daq.st = rxo.Status
	}
	if !daq.st.LinkUp {
		t.Fatalf("link not up after idle warm-up")
	}

	lis, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatalf("could not listen: %+v", err)
	}

	done := make(chan error, 1)
	go func() { done <- daq.serve(lis) }()

	conn, err := net.Dial("tcp", lis.Addr().String())
	if err != nil {
		t.Fatalf("could not dial status port: %+v", err)
	}
	defer conn.Close()

	var st baser.LinkStatus
	err = json.NewDecoder(conn).Decode(&st)
	if err != nil {
		t.Fatalf("could not decode status: %+v", err)
	}
	if st != daq.status() {
		t.Fatalf("invalid status:\ngot = %#v\nwant= %#v", st, daq.status())
	}

	lis.Close()
	if err := <-done; err != nil {
		t.Fatalf("serve failed: %+v", err)
	}
}

func getTCPPort() (string, error) {
	lis, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		return "", err
	}
	defer lis.Close()
	return lis.Addr().String(), nil
}
