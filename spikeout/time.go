// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spikeout

import "errors"

// ErrStep is returned when a frame is fed with a slot length that is not > 0
var ErrStep = errors.New("spikeout: slot length must be > 0")

// spikeout.Time contains the timing state and parameters for the output
// stage.  The surrounding simulator works in msec, the spike times in sec.
type Time struct {

	// simulation time in msec of the current frame (start of the current slot)
	SimTime float64

	// length of a simulation slot (time step) in msec, must be > 0
	Step float64 `def:"1" min:"0"`

	// number of frames fed since the last Reset
	Frames int

	// number of slots that were admitted by the recording gate and processed
	Slots int

	// end of the last processed slot in sec -- used to detect gaps between slots
	LastSlotEnd float64
}

// NewTime returns a new Time struct with default parameters
func NewTime() *Time {
	tm := &Time{}
	tm.Defaults()
	return tm
}

// Defaults sets default values
func (tm *Time) Defaults() {
	tm.Step = 1
}

// Reset resets the counters all back to zero.  Step is kept as is.
func (tm *Time) Reset() {
	tm.SimTime = 0
	tm.Frames = 0
	tm.Slots = 0
	tm.LastSlotEnd = 0
}

// SlotStart returns the start of the current slot in sec
func (tm *Time) SlotStart() float64 {
	return tm.SimTime / 1000
}

// SlotLen returns the slot length in sec
func (tm *Time) SlotLen() float64 {
	return tm.Step / 1000
}

// SlotEnd returns the end (exclusive) of the current slot in sec
func (tm *Time) SlotEnd() float64 {
	return tm.SlotStart() + tm.SlotLen()
}
