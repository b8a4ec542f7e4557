// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spikeout

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"unsafe"

	"github.com/c2h5oh/datasize"
	"github.com/goki/mat32"
	"gonum.org/v1/gonum/stat/distuv"
)

// PeriodFloor is the shortest firing period in sec the output will use.
// A zero period would make the slot update divide by zero on the next
// slot, and never leave the spike loop.
const PeriodFloor = 1.0e-6

// TimeTol is the tolerance in sec below which a predicted spike time
// before the slot start is attributed to rounding and moved to the slot start.
const TimeTol = 1.0e-12

// Output converts input frames into ganglion cell spike times, one neuron
// per input pixel.  Each call to Update generates the spikes that fall
// inside the current slot, keeping the firing phase of each neuron
// continuous across slots.
type Output struct {
	Name     string      `desc:"name of this output stage"`
	Params   Params      `view:"inline" desc:"spike output parameters"`
	Time     Time        `view:"inline" desc:"timing state"`
	Shape    mat32.Vec2i `desc:"size of the neuron grid, one neuron per input pixel"`
	Neurons  []Neuron    `desc:"per-neuron spike generation state"`
	Input    []float64   `desc:"input values of the current slot -- nil when the current frame is outside the recording window"`
	Idxs     []int       `view:"-" desc:"admitted neuron indexes, in processing order"`
	Spks     Spikes      `view:"-" desc:"all spikes generated since the last Flush, in time order"`
	SlotSpks Spikes      `view:"-" desc:"spikes generated by the last Update, in time order"`
	Diag     Diag        `view:"-" desc:"receives internal-consistency violations"`
	Src      rand.Source `view:"-" desc:"random source for jitter and phase randomization"`
}

// NewOutput returns a new output stage for an x * y grid with given
// slot length (msec), with default parameters, built and initialized.
// The step is used as given: a step <= 0 makes FeedInput fail with ErrStep.
func NewOutput(x, y int, step float64) *Output {
	out := &Output{}
	out.Defaults()
	out.Time.Step = step
	out.SetSize(x, y)
	return out
}

// Defaults sets default parameters, a logging DiagCounts and seed 1
func (out *Output) Defaults() {
	out.Params.Defaults()
	out.Time.Defaults()
	if out.Diag == nil {
		out.Diag = &DiagCounts{}
	}
	if out.Src == nil {
		out.SetSeed(1)
	}
}

// SetSeed sets a new random source with given seed
func (out *Output) SetSeed(seed uint64) {
	out.Src = rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// NNeurons returns the total number of neurons
func (out *Output) NNeurons() int {
	return int(out.Shape.X) * int(out.Shape.Y)
}

// SetSize sets the grid size, and rebuilds and reinitializes the
// neuron state if it changed.
func (out *Output) SetSize(x, y int) {
	if int(out.Shape.X) == x && int(out.Shape.Y) == y && out.Neurons != nil {
		return
	}
	out.Shape = mat32.Vec2i{X: int32(x), Y: int32(y)}
	out.Build()
}

// Build allocates the neuron state for the current Shape and initializes it
func (out *Output) Build() {
	nn := out.NNeurons()
	out.Neurons = make([]Neuron, nn)
	out.Input = nil
	out.UpdateParams()
	out.InitState()
}

// UpdateParams updates all params given any changes that might have been made
func (out *Output) UpdateParams() {
	out.Params.Update()
	out.Idxs = out.Params.Gate.Indexes(out.NNeurons(), out.Idxs)
}

// SetParam validates and sets one parameter, see Params.Set
func (out *Output) SetParam(id ParamID, val float64) Result {
	rs := out.Params.Set(id, val)
	if rs.OK {
		out.UpdateParams()
	}
	return rs
}

// ApplyParams sets named parameters in order, see Params.Apply
func (out *Output) ApplyParams(vals []ParamValue) Result {
	rs := out.Params.Apply(vals)
	out.UpdateParams()
	return rs
}

// InitState initializes the state of all neurons according to
// FirstSpkDelay, randomizing the phases if RandInit != 0,
// and resets the timing state.  Spikes are not cleared.
func (out *Output) InitState() {
	lastPer, nextSpk := math.Inf(1), 0.0
	if out.Params.FirstSpkDelay != 0 {
		// first spike at FirstSpkDelay * first period
		lastPer, nextSpk = 1, out.Params.FirstSpkDelay
	}
	for ni := range out.Neurons {
		nrn := &out.Neurons[ni]
		nrn.LastPeriod = lastPer
		nrn.NextSpk = nextSpk
	}
	out.Time.Reset()
	if out.Params.RandInit != 0 {
		out.RandomizeState()
	}
}

// RandomizeState sets a random initial phase for every neuron:
// LastPeriod = 1 sec and NextSpk uniform in (1 - RandInit, 1] sec,
// so the first spike comes after a random fraction of the first period.
// RandInit is clamped to [-1, 1], so NextSpk is never negative.
func (out *Output) RandomizeState() {
	const lastPer = 1.0 // only the NextSpk / LastPeriod ratio matters
	ri := math.Max(-1, math.Min(1, out.Params.RandInit))
	ud := distuv.Uniform{Min: 0, Max: 1, Src: out.Src}
	for ni := range out.Neurons {
		nrn := &out.Neurons[ni]
		nrn.LastPeriod = lastPer
		nrn.NextSpk = math.Max(0, (1-ri*ud.Rand())*lastPer)
	}
}

// FeedInput sets the input frame for the slot starting at simTime (msec).
// Frames outside of the recording window are dropped, so the next Update
// generates nothing and leaves all neurons untouched.  A frame of a
// different size rebuilds the neuron state.  isCurrent and port are
// accepted for compatibility with the other retina stages and ignored.
func (out *Output) FeedInput(simTime float64, in *Frame, isCurrent bool, port int) error {
	if !(out.Time.Step > 0) {
		return fmt.Errorf("%w: %v msec", ErrStep, out.Time.Step)
	}
	if err := in.Validate(); err != nil {
		return err
	}
	out.SetSize(int(in.Shape.X), int(in.Shape.Y))
	out.Time.SimTime = simTime
	out.Time.Frames++
	if !out.Params.Gate.Admits(simTime, out.Time.Step) {
		out.Input = nil
		return nil
	}
	if cap(out.Input) >= len(in.Values) {
		out.Input = out.Input[:len(in.Values)]
	} else {
		out.Input = make([]float64, len(in.Values))
	}
	copy(out.Input, in.Values)
	return nil
}

// Update generates the spikes of all admitted neurons for the current
// slot, sorts them and appends them to Spks.
func (out *Output) Update() {
	out.SlotSpks = out.SlotSpks[:0]
	if out.Input == nil {
		return
	}
	ts := out.Time.SlotStart()
	dt := out.Time.SlotLen()
	if out.Params.Gate.HoldPhase {
		out.HoldPhase(ts)
	}
	for _, ni := range out.Idxs {
		out.NeuronSlot(ni, out.Input[ni], ts, dt)
	}
	out.SlotSpks.Sort()
	out.Spks = append(out.Spks, out.SlotSpks...)
	out.Time.Slots++
	out.Time.LastSlotEnd = ts + dt
}

// HoldPhase shifts the predicted spike time of all admitted neurons by
// the gap between the end of the last processed slot and ts, which is
// what a zero input during the gap would have done.
func (out *Output) HoldPhase(ts float64) {
	gap := ts - out.Time.LastSlotEnd
	if gap <= 0 {
		return
	}
	for _, ni := range out.Idxs {
		out.Neurons[ni].NextSpk += gap
	}
}

// Period returns the firing period in sec for input x, with finite
// periods floored at PeriodFloor.
func (out *Output) Period(x float64) float64 {
	per := out.Params.Rate.Period(x, out.Src)
	if per < PeriodFloor {
		per = PeriodFloor
	}
	return per
}

// NeuronSlot generates the spikes of neuron ni for input x in the slot
// [ts, ts+dt) (sec), appending them to SlotSpks and updating its state.
//
// The first spike of the slot is placed by scaling the remaining time to
// the predicted spike of the last input (NextSpk - ts) by the ratio of the
// new period to the last one.  A recent spike thus pushes the next one
// forward, less so if the new period is short, and a constant input
// gives a regular spike train independent of the slot boundaries.
// A zero input keeps LastPeriod and delays NextSpk by dt, postponing the
// calculation to the next slot with non-zero input (otherwise both
// would become +Inf and the next prediction an indeterminate form).
func (out *Output) NeuronSlot(ni int, x, ts, dt float64) {
	nrn := &out.Neurons[ni]
	per := out.Period(x)
	if math.IsInf(per, 1) {
		nrn.NextSpk += dt
		return
	}
	tend := ts + dt
	tspk := ts + (nrn.NextSpk-ts)*per/nrn.LastPeriod
	switch {
	case math.IsNaN(tspk) || math.IsInf(tspk, 0):
		out.Diag.InternalError(DiagNonFinite, ni, tspk, ts, dt)
	case tspk < ts && ts-tspk <= TimeTol:
		tspk = ts
	case tspk < ts:
		out.Diag.InternalError(DiagEarlySpike, ni, tspk, ts, dt)
	}
	nrn.NextSpk = tspk
	nrn.LastPeriod = per

	for tspk < tend {
		out.SlotSpks = append(out.SlotSpks, Spike{Neuron: ni, Time: tspk})
		per = out.Period(x) // differs only with jitter
		if math.IsInf(per, 1) {
			// the rest of the slot is silent
			nrn.NextSpk = tend
			if nrn.LastPeriod == 0 {
				nrn.LastPeriod = nrn.NextSpk - tspk
			}
			break
		}
		tspk += per
		nrn.NextSpk = tspk
		nrn.LastPeriod = per
	}
}

// Step feeds the frame for the slot at simTime (msec) and updates
func (out *Output) Step(simTime float64, in *Frame) error {
	if err := out.FeedInput(simTime, in, true, 0); err != nil {
		return err
	}
	out.Update()
	return nil
}

// Flush returns all spikes generated since the last Flush and clears them
func (out *Output) Flush() Spikes {
	sp := out.Spks
	out.Spks = nil
	return sp
}

// SizeReport returns a string reporting the number of neurons and
// spikes, and the memory used by them.
func (out *Output) SizeReport() string {
	var b strings.Builder
	nn := len(out.Neurons)
	nmem := nn*int(unsafe.Sizeof(Neuron{})) + cap(out.Input)*8 + cap(out.Idxs)*int(unsafe.Sizeof(int(0)))
	ns := len(out.Spks)
	smem := (cap(out.Spks) + cap(out.SlotSpks)) * int(unsafe.Sizeof(Spike{}))
	fmt.Fprintf(&b, "%14s:\t Neurons: %d\t Admitted: %d\t NeurMem: %v\n", out.Name, nn, len(out.Idxs), datasize.ByteSize(nmem).HumanReadable())
	fmt.Fprintf(&b, "%14s:\t Spikes: %d\t SpikeMem: %v\n", "", ns, datasize.ByteSize(smem).HumanReadable())
	return b.String()
}
