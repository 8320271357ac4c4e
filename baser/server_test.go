// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package baser

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/log"
)

func TestStatusFrame(t *testing.T) {
	want := LinkStatus{
		Lock:          true,
		HiBER:         false,
		LinkUp:        true,
		BERCount:      42,
		ErroredBlocks: 7,
		InvalidHdrs:   123456,
		Slips:         65,
	}
	raw := MarshalStatus(want, 987654321)
	if got, want := len(raw), 35; got != want {
		t.Fatalf("invalid status frame length: got=%d, want=%d", got, want)
	}

	st, ticks, err := UnmarshalStatus(raw)
	if err != nil {
		t.Fatalf("could not unmarshal status frame: %+v", err)
	}
	if st != want {
		t.Fatalf("invalid status:\ngot = %#v\nwant= %#v", st, want)
	}
	if got, want := ticks, uint64(987654321); got != want {
		t.Fatalf("invalid ticks: got=%d, want=%d", got, want)
	}

	if _, _, err := UnmarshalStatus(raw[:10]); err == nil {
		t.Fatalf("expected an error on short status frame")
	}
}

func testContext(ctx context.Context) tdaq.Context {
	return tdaq.Context{
		Ctx: ctx,
		Msg: log.NewMsgStream("pcs-test", log.LvlError, new(bytes.Buffer)),
	}
}

func TestServerHandlers(t *testing.T) {
	srv := NewServer("pcs-test", WithLinkUpDwell(64))
	ctx := testContext(context.Background())

	var resp tdaq.Frame
	for _, tc := range []struct {
		name string
		fct  func(tdaq.Context, *tdaq.Frame, tdaq.Frame) error
	}{
		{"/reset", srv.OnReset},
		{"/start", srv.OnStart},
		{"/status-clear", srv.OnStatusClear},
	} {
		if err := tc.fct(ctx, &resp, tdaq.Frame{}); err == nil {
			t.Fatalf("%s on uninitialized lane: expected an error", tc.name)
		}
	}

	if err := srv.OnConfig(ctx, &resp, tdaq.Frame{}); err != nil {
		t.Fatalf("could not /config: %+v", err)
	}
	if err := srv.OnInit(ctx, &resp, tdaq.Frame{}); err != nil {
		t.Fatalf("could not /init: %+v", err)
	}
	if err := srv.OnStart(ctx, &resp, tdaq.Frame{}); err != nil {
		t.Fatalf("could not /start: %+v", err)
	}

	if err := srv.OnStatusClear(ctx, &resp, tdaq.Frame{}); err != nil {
		t.Fatalf("could not /status-clear: %+v", err)
	}
	if got, want := len(resp.Body), 1; got != want {
		t.Fatalf("invalid /status-clear reply length: got=%d, want=%d", got, want)
	}

	if err := srv.OnStop(ctx, &resp, tdaq.Frame{}); err != nil {
		t.Fatalf("could not /stop: %+v", err)
	}
	if err := srv.OnReset(ctx, &resp, tdaq.Frame{}); err != nil {
		t.Fatalf("could not /reset: %+v", err)
	}
	if err := srv.OnQuit(ctx, &resp, tdaq.Frame{}); err != nil {
		t.Fatalf("could not /quit: %+v", err)
	}
}

func TestServerRun(t *testing.T) {
	srv := NewServer("pcs-test", WithLinkUpDwell(64))

	bkg, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx := testContext(bkg)

	var resp tdaq.Frame
	if err := srv.OnInit(ctx, &resp, tdaq.Frame{}); err != nil {
		t.Fatalf("could not /init: %+v", err)
	}
	if err := srv.OnStart(ctx, &resp, tdaq.Frame{}); err != nil {
		t.Fatalf("could not /start: %+v", err)
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Run(ctx) }()

	var dst tdaq.Frame
	if err := srv.Status(ctx, &dst); err != nil {
		t.Fatalf("could not read status output: %+v", err)
	}
	st, ticks, err := UnmarshalStatus(dst.Body)
	if err != nil {
		t.Fatalf("could not unmarshal status frame: %+v", err)
	}
	if !st.Lock {
		t.Fatalf("lane not locked after %d idle ticks", ticks)
	}
	if !st.LinkUp {
		t.Fatalf("link not up after %d idle ticks", ticks)
	}
	if ticks == 0 || ticks%statusEvery != 0 {
		t.Fatalf("invalid tick count: got=%d", ticks)
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("run handler failed: %+v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("run handler did not stop")
	}
}
