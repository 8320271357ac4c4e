// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package baser

import (
	"encoding/binary"
	"io"

	"golang.org/x/xerrors"
)

// WordWriter writes a captured serial word stream to an output
// stream, one little-endian 16-bit word per tick.
type WordWriter struct {
	w   io.Writer
	buf []byte
	err error
	n   uint64
}

// NewWordWriter returns a new WordWriter that writes to w.
func NewWordWriter(w io.Writer) *WordWriter {
	return &WordWriter{
		w:   w,
		buf: make([]byte, 2),
	}
}

// Write appends one serial word to the stream. Once a write failed,
// all subsequent writes are dropped and return the same error.
func (ww *WordWriter) Write(word uint16) error {
	if ww.err != nil {
		return ww.err
	}
	binary.LittleEndian.PutUint16(ww.buf, word)
	_, ww.err = ww.w.Write(ww.buf)
	if ww.err != nil {
		ww.err = xerrors.Errorf("baser: could not write serial word %d: %w", ww.n, ww.err)
		return ww.err
	}
	ww.n++
	return nil
}

// Words returns the number of words written so far.
func (ww *WordWriter) Words() uint64 { return ww.n }

// WordReader reads a captured serial word stream.
type WordReader struct {
	r   io.Reader
	buf []byte
	err error
	n   uint64
}

// NewWordReader returns a new WordReader that reads from r.
func NewWordReader(r io.Reader) *WordReader {
	return &WordReader{
		r:   r,
		buf: make([]byte, 2),
	}
}

// Read returns the next serial word. At the end of the capture it
// returns io.EOF; a truncated trailing word is reported as an error.
func (rr *WordReader) Read() (uint16, error) {
	if rr.err != nil {
		return 0, rr.err
	}
	_, err := io.ReadFull(rr.r, rr.buf)
	switch {
	case err == nil:
		// ok
	case xerrors.Is(err, io.EOF):
		rr.err = io.EOF
		return 0, rr.err
	case xerrors.Is(err, io.ErrUnexpectedEOF):
		rr.err = xerrors.Errorf("baser: truncated serial word %d: %w", rr.n, err)
		return 0, rr.err
	default:
		rr.err = xerrors.Errorf("baser: could not read serial word %d: %w", rr.n, err)
		return 0, rr.err
	}
	rr.n++
	return binary.LittleEndian.Uint16(rr.buf), nil
}

// Words returns the number of words read so far.
func (rr *WordReader) Words() uint64 { return rr.n }
