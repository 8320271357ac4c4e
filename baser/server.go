// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package baser

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"github.com/go-daq/tdaq"
)

// statusEvery is the number of link ticks between two published
// status snapshots.
const statusEvery = 65536

// Server drives a loopback PCS lane under TDAQ control: /init builds
// the lane, /start begins ticking it with idle traffic, /status-clear
// pulses the latching-low status read and the "/pcs-status" output
// stream publishes periodic LinkStatus snapshots.
type Server struct {
	name string
	opts []Option

	mu    sync.Mutex
	lnk   *Link
	run   bool
	ticks uint64

	data chan []byte
}

// NewServer returns a TDAQ-controlled PCS lane server.
func NewServer(name string, opts ...Option) *Server {
	return &Server{
		name: name,
		opts: opts,
	}
}

func (srv *Server) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	return nil
}

func (srv *Server) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.lnk = NewLink(srv.opts...)
	srv.run = false
	srv.ticks = 0
	srv.data = make(chan []byte, 8)
	return nil
}

func (srv *Server) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.lnk == nil {
		return fmt.Errorf("pcs lane %q not initialized", srv.name)
	}
	srv.lnk.Reset()
	srv.run = false
	srv.ticks = 0
	return nil
}

func (srv *Server) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.lnk == nil {
		return fmt.Errorf("pcs lane %q not initialized", srv.name)
	}
	srv.run = true
	return nil
}

func (srv *Server) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.run = false
	ctx.Msg.Debugf("received /stop command... -> ticks=%d", srv.ticks)
	return nil
}

func (srv *Server) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	return nil
}

// OnStatusClear services the status-read/clear pulse of the
// latching-low status bit and replies with its pre-clear value.
func (srv *Server) OnStatusClear(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.lnk == nil {
		return fmt.Errorf("pcs lane %q not initialized", srv.name)
	}
	v := srv.lnk.RX.ReadStatus()
	ctx.Msg.Infof("latched status: %v", v)
	resp.Body = []byte{b2u8(v)}
	return nil
}

// Status streams LinkStatus snapshots to the "/pcs-status" output.
func (srv *Server) Status(ctx tdaq.Context, dst *tdaq.Frame) error {
	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case data := <-srv.data:
		dst.Body = data
	}
	return nil
}

// Run is the TDAQ run handler: it ticks the lane with idle traffic
// while started and publishes a status snapshot every statusEvery
// ticks.
func (srv *Server) Run(ctx tdaq.Context) error {
	for {
		select {
		case <-ctx.Ctx.Done():
			return nil
		default:
			srv.mu.Lock()
			if srv.lnk == nil || !srv.run {
				srv.mu.Unlock()
				time.Sleep(10 * time.Millisecond)
				continue
			}
			var rxo RxOut
			for i := 0; i < statusEvery; i++ {
				_, rxo = srv.lnk.TickIdle()
			}
			srv.ticks += statusEvery
			raw := MarshalStatus(rxo.Status, srv.ticks)
			srv.mu.Unlock()

			select {
			case srv.data <- raw:
			default:
			}
		}
	}
}

func b2u8(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}

// MarshalStatus packs a LinkStatus snapshot into the wire form of the
// "/pcs-status" stream: three status bytes, the two saturating
// counters, the invalid-header and slip counters and the tick count,
// all little-endian.
func MarshalStatus(st LinkStatus, ticks uint64) []byte {
	buf := new(bytes.Buffer)
	buf.WriteByte(b2u8(st.Lock))
	buf.WriteByte(b2u8(st.HiBER))
	buf.WriteByte(b2u8(st.LinkUp))
	_ = binary.Write(buf, binary.LittleEndian, st.BERCount)
	_ = binary.Write(buf, binary.LittleEndian, st.ErroredBlocks)
	_ = binary.Write(buf, binary.LittleEndian, st.InvalidHdrs)
	_ = binary.Write(buf, binary.LittleEndian, st.Slips)
	_ = binary.Write(buf, binary.LittleEndian, ticks)
	return buf.Bytes()
}

// UnmarshalStatus is the inverse of MarshalStatus.
func UnmarshalStatus(raw []byte) (st LinkStatus, ticks uint64, err error) {
	if len(raw) != 35 {
		return st, 0, fmt.Errorf("baser: invalid status frame length %d", len(raw))
	}
	st.Lock = raw[0] == 1
	st.HiBER = raw[1] == 1
	st.LinkUp = raw[2] == 1
	st.BERCount = binary.LittleEndian.Uint32(raw[3:7])
	st.ErroredBlocks = binary.LittleEndian.Uint32(raw[7:11])
	st.InvalidHdrs = binary.LittleEndian.Uint64(raw[11:19])
	st.Slips = binary.LittleEndian.Uint64(raw[19:27])
	ticks = binary.LittleEndian.Uint64(raw[27:35])
	return st, ticks, nil
}
