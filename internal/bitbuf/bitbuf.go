// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bitbuf provides a bit-granular FIFO used by the PCS gearboxes.
//
// Bits are queued least-significant-bit first: bit 0 of a pushed value
// is the oldest of that value's bits and the first one popped back.
package bitbuf // import "github.com/go-lpc/pcs/internal/bitbuf"

import "fmt"

// Buffer is a fixed-capacity ring buffer of bits with an explicit
// fill-level counter.
type Buffer struct {
	w    []uint64
	head int // bit index of the oldest queued bit
	n    int // number of queued bits
}

// New returns a bit buffer with capacity of at least n bits,
// rounded up to a whole number of 64-bit words.
func New(n int) *Buffer {
	if n <= 0 {
		panic(fmt.Errorf("bitbuf: invalid capacity %d", n))
	}
	nw := (n + 63) / 64
	return &Buffer{w: make([]uint64, nw)}
}

// Len returns the number of bits currently queued.
func (b *Buffer) Len() int { return b.n }

// Cap returns the buffer capacity in bits.
func (b *Buffer) Cap() int { return 64 * len(b.w) }

// Reset drops all queued bits.
func (b *Buffer) Reset() {
	b.head = 0
	b.n = 0
}

// Push queues the n low bits of v, bit 0 first.
func (b *Buffer) Push(v uint64, n int) {
	if n < 0 || n > 64 {
		panic(fmt.Errorf("bitbuf: invalid push width %d", n))
	}
	if b.n+n > b.Cap() {
		panic(fmt.Errorf("bitbuf: overflow (fill=%d, push=%d, cap=%d)", b.n, n, b.Cap()))
	}
	m := ^uint64(0)
	if n < 64 {
		m = 1<<uint(n) - 1
	}
	v &= m

	var (
		pos = (b.head + b.n) % b.Cap()
		i   = pos >> 6
		off = uint(pos & 63)
	)
	switch {
	case int(off)+n <= 64:
		b.w[i] = b.w[i]&^(m<<off) | v<<off
	default:
		b.w[i] = b.w[i]&(1<<off-1) | v<<off
		var (
			j  = (i + 1) % len(b.w)
			sm = uint64(1)<<uint(int(off)+n-64) - 1
		)
		b.w[j] = b.w[j]&^sm | v>>(64-off)
	}
	b.n += n
}

// Pop dequeues the n oldest bits and returns them in the n low bits
// of the result, oldest bit at bit 0.
func (b *Buffer) Pop(n int) uint64 {
	if n < 0 || n > 64 {
		panic(fmt.Errorf("bitbuf: invalid pop width %d", n))
	}
	if n > b.n {
		panic(fmt.Errorf("bitbuf: underflow (fill=%d, pop=%d)", b.n, n))
	}

	var (
		i   = b.head >> 6
		off = uint(b.head & 63)
		v   = b.w[i] >> off
	)
	if int(off)+n > 64 {
		j := (i + 1) % len(b.w)
		v |= b.w[j] << (64 - off)
	}
	if n < 64 {
		v &= 1<<uint(n) - 1
	}

	b.head = (b.head + n) % b.Cap()
	b.n -= n
	return v
}

// Slip discards the single oldest queued bit.
// Slip is the realignment primitive of the RX gearbox.
func (b *Buffer) Slip() {
	if b.n == 0 {
		panic(fmt.Errorf("bitbuf: slip on empty buffer"))
	}
	b.head = (b.head + 1) % b.Cap()
	b.n--
}
