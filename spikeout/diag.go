// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spikeout

import (
	"log"

	"github.com/goki/ki/kit"
)

// DiagKinds are the internal-consistency violations detected while
// generating spikes.  They indicate an error in the spike generation
// algorithm, never in the input, and do not stop the run.
type DiagKinds int32

//go:generate stringer -type=DiagKinds

var KiT_DiagKinds = kit.Enums.AddEnum(DiagKindsN, kit.NotBitFlag, nil)

func (ev DiagKinds) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *DiagKinds) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// DiagEarlySpike means a spike for a previous simulation slot was generated
	DiagEarlySpike DiagKinds = iota

	// DiagNonFinite means the spike time could not be calculated (indeterminate form)
	DiagNonFinite

	DiagKindsN
)

// Diag receives internal-consistency violations from an Output.
// ni is the neuron index, tm the offending spike time and
// [ts, ts+dt) the slot being processed, all in sec.
type Diag interface {
	InternalError(kind DiagKinds, ni int, tm, ts, dt float64)
}

// DiagCounts is the default Diag: it counts violations per kind
// and logs each one unless Quiet.
type DiagCounts struct {
	Counts [DiagKindsN]int
	Quiet  bool
}

func (dc *DiagCounts) InternalError(kind DiagKinds, ni int, tm, ts, dt float64) {
	dc.Counts[kind]++
	if dc.Quiet {
		return
	}
	switch kind {
	case DiagEarlySpike:
		log.Printf("Internal error: a spike for a previous simulation step has been generated. neuron: %d current step [%g,%g) spike time: %gs\n", ni, ts, ts+dt, tm)
	case DiagNonFinite:
		log.Printf("Internal error: spike time could not be calculated (indeterminate form). neuron: %d current step [%g,%g) spike time: %g\n", ni, ts, ts+dt, tm)
	}
}

// Total returns the total number of violations of all kinds
func (dc *DiagCounts) Total() int {
	n := 0
	for _, c := range dc.Counts {
		n += c
	}
	return n
}

// Reset sets all counts back to zero
func (dc *DiagCounts) Reset() {
	dc.Counts = [DiagKindsN]int{}
}
