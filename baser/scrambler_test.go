// Copyright 2023 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package baser

import (
	"math/rand"
	"testing"
)

func TestScramblerKnownSequence(t *testing.T) {
	// First payloads out of a freshly reset scrambler, computed from
	// the clause 49.2.6 recurrence with the all-ones seed.
	scr := NewScrambler()
	for i, want := range []uint64{
		0x03FFFF8000000000,
		0xFFEFFFFFFFFFC000,
	} {
		if got := scr.Scramble(0); got != want {
			t.Fatalf("block %d: invalid scrambled payload: got=0x%016X, want=0x%016X", i, got, want)
		}
	}
	if got, want := scr.Scramble(0x0102030405060708), uint64(0x5DFE47040D0607F7); got != want {
		t.Fatalf("invalid scrambled payload: got=0x%016X, want=0x%016X", got, want)
	}
}

func TestScramblerRoundTrip(t *testing.T) {
	var (
		scr = NewScrambler()
		dsc = NewDescrambler()
		rnd = rand.New(rand.NewSource(58))
	)
	for i := 0; i < 1000; i++ {
		p := rnd.Uint64()
		if got := dsc.Descramble(scr.Scramble(p)); got != p {
			t.Fatalf("block %d: round trip mismatch: got=0x%016X, want=0x%016X", i, got, p)
		}
	}
}

func TestDescramblerSelfSync(t *testing.T) {
	// The descrambler must converge onto the scrambler's state after
	// one full block of genuine payload, whatever state it starts in.
	var (
		scr = NewScrambler()
		dsc = &Descrambler{state: 0x2A5A5A5A5A5A5A5}
		rnd = rand.New(rand.NewSource(39))
	)
	_ = dsc.Descramble(scr.Scramble(rnd.Uint64())) // warm-up block
	for i := 0; i < 100; i++ {
		p := rnd.Uint64()
		if got := dsc.Descramble(scr.Scramble(p)); got != p {
			t.Fatalf("block %d: not converged: got=0x%016X, want=0x%016X", i, got, p)
		}
	}
}

func TestScramblerReset(t *testing.T) {
	scr := NewScrambler()
	first := scr.Scramble(0xDEADBEEFCAFEBABE)
	scr.Reset()
	if got := scr.Scramble(0xDEADBEEFCAFEBABE); got != first {
		t.Fatalf("reset did not restore the seed: got=0x%016X, want=0x%016X", got, first)
	}
}
