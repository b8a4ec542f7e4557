// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spikeout

import (
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"testing"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = 1.0e-9

// newTestOutput returns an output with 1 msec steps and a quiet diag counter
func newTestOutput(x, y int) (*Output, *DiagCounts) {
	out := NewOutput(x, y, 1)
	dc := &DiagCounts{Quiet: true}
	out.Diag = dc
	return out, dc
}

// setRate sets threshold 0.5, gain 100 and longest period 100 msec
func setRate(t *testing.T, out *Output) {
	t.Helper()
	for _, pv := range []struct {
		id  ParamID
		val float64
	}{{InputThreshold, 0.5}, {FreqPerInp, 100}, {LongestSustainedPeriod, 100}} {
		if rs := out.SetParam(pv.id, pv.val); !rs.OK {
			t.Fatalf("SetParam %v: %v", pv.id, rs.Reason)
		}
	}
}

// runConst feeds nslots frames of constant value starting at t0 msec
func runConst(t *testing.T, out *Output, val, t0 float64, nslots int) {
	t.Helper()
	fr := NewFrame(int(out.Shape.X), int(out.Shape.Y))
	fr.SetAll(val)
	for i := 0; i < nslots; i++ {
		if err := out.Step(t0+float64(i)*out.Time.Step, fr); err != nil {
			t.Fatal(err)
		}
	}
}

func TestSteadyStateRate(t *testing.T) {
	out, dc := newTestOutput(1, 1)
	setRate(t, out)
	x := 0.6
	per := out.Params.Rate.DetPeriod(x) // 0.05 sec

	runConst(t, out, x, 0, 2000)
	tms := out.Spks.Neuron(0)
	if len(tms) < 30 {
		t.Fatalf("expected about 40 spikes in 2 sec, got: %d", len(tms))
	}
	if dif := math.Abs(tms[0] - per); dif > difTol {
		t.Errorf("first spike should come after one period: %v, cor: %v", tms[0], per)
	}
	sum := 0.0
	for i := 1; i < len(tms); i++ {
		isi := tms[i] - tms[i-1]
		if dif := math.Abs(isi - per); dif > difTol {
			t.Errorf("isi err: idx: %v, isi: %v, cor isi: %v, dif: %v\n", i, isi, per, dif)
		}
		sum += isi
	}
	if mean := sum / float64(len(tms)-1); math.Abs(mean-per) > difTol {
		t.Errorf("mean isi: %v, cor: %v", mean, per)
	}
	if dc.Total() != 0 {
		t.Errorf("internal errors: %v", dc.Counts)
	}
}

func TestSilenceKeepsPeriod(t *testing.T) {
	out, dc := newTestOutput(1, 1)
	setRate(t, out)
	x1, x2 := 0.6, 1.0
	per1 := out.Params.Rate.DetPeriod(x1)
	per2 := out.Params.Rate.DetPeriod(x2)

	runConst(t, out, x1, 0, 100)
	nrn := &out.Neurons[0]
	if dif := math.Abs(nrn.LastPeriod - per1); dif > difTol {
		t.Fatalf("LastPeriod after firing: %v, cor: %v", nrn.LastPeriod, per1)
	}
	nfire := len(out.Spks)

	fr := NewFrame(1, 1)
	fr.SetAll(0.4) // below threshold
	for i := 0; i < 200; i++ {
		ts := 100 + float64(i)
		if err := out.Step(ts, fr); err != nil {
			t.Fatal(err)
		}
		if len(out.SlotSpks) != 0 {
			t.Errorf("spikes generated for sub-threshold input at %v msec: %v", ts, out.SlotSpks)
		}
		if nrn.LastPeriod != per1 {
			t.Errorf("LastPeriod modified by sub-threshold input at %v msec: %v", ts, nrn.LastPeriod)
		}
	}
	if len(out.Spks) != nfire {
		t.Errorf("spike count changed during silence: %v -> %v", nfire, len(out.Spks))
	}

	runConst(t, out, x2, 300, 200)
	var tms []float64
	for _, tm := range out.Spks.Neuron(0) {
		if tm >= 0.3 {
			tms = append(tms, tm)
		}
	}
	if len(tms) < 3 {
		t.Fatalf("expected spikes after resuming input, got: %v", tms)
	}
	if tms[0] > 0.3+per2+difTol {
		t.Errorf("first spike after resuming too late: %v, slot start 0.3, period %v", tms[0], per2)
	}
	if dif := math.Abs(tms[1] - tms[0] - per2); dif > difTol {
		t.Errorf("first isi after resuming: %v, cor: %v", tms[1]-tms[0], per2)
	}
	for i := 2; i < len(tms); i++ {
		if dif := math.Abs(tms[i] - tms[i-1] - per2); dif > difTol {
			t.Errorf("isi err after resuming: idx: %v, isi: %v, cor: %v", i, tms[i]-tms[i-1], per2)
		}
	}
	if dc.Total() != 0 {
		t.Errorf("internal errors: %v", dc.Counts)
	}
}

func TestSlotContainmentOrder(t *testing.T) {
	out, dc := newTestOutput(8, 8)
	setRate(t, out)
	out.SetParam(SpikeStdDev, -1)
	out.SetParam(MinPeriod, 0.5)
	out.SetSeed(17)
	rnd := rand.New(rand.NewPCG(5, 6))

	fr := NewFrame(8, 8)
	for i := 0; i < 1000; i++ {
		for j := range fr.Values {
			fr.Values[j] = rnd.Float64()*1.2 - 0.2
		}
		tms := float64(i)
		if err := out.Step(tms, fr); err != nil {
			t.Fatal(err)
		}
		ts, te := out.Time.SlotStart(), out.Time.SlotEnd()
		for _, sp := range out.SlotSpks {
			if math.IsNaN(sp.Time) || math.IsInf(sp.Time, 0) || sp.Time < 0 {
				t.Fatalf("invalid spike time: %v", sp)
			}
			if sp.Time < ts || sp.Time >= te {
				t.Fatalf("spike outside of slot [%v, %v): %v", ts, te, sp)
			}
		}
		if !out.SlotSpks.IsSorted() {
			t.Fatalf("slot spikes not sorted at %v msec", tms)
		}
	}
	if len(out.Spks) == 0 {
		t.Fatal("no spikes generated")
	}
	if !out.Spks.IsSorted() {
		t.Error("spikes not sorted by time, neuron")
	}
	if dc.Total() != 0 {
		t.Errorf("internal errors: %v", dc.Counts)
	}
}

func TestSpikesSort(t *testing.T) {
	sp := Spikes{{3, 0.2}, {1, 0.1}, {2, 0.1}, {0, 0.2}, {1, 0.05}}
	sp.Sort()
	cor := Spikes{{1, 0.05}, {1, 0.1}, {2, 0.1}, {0, 0.2}, {3, 0.2}}
	for i := range cor {
		if sp[i] != cor[i] {
			t.Errorf("sort err: idx: %v, spike: %v, cor: %v", i, sp[i], cor[i])
		}
	}
}

func TestRandomInit(t *testing.T) {
	out, _ := newTestOutput(40, 50)
	if rs := out.SetParam(RandomInit, 1); !rs.OK {
		t.Fatal(rs.Reason)
	}
	out.InitState()
	n := len(out.Neurons)
	quart := make([]int, 4)
	sum := 0.0
	for ni := range out.Neurons {
		ph := out.Neurons[ni].Phase(0)
		if ph < 0 || ph > 1 {
			t.Fatalf("initial phase out of range: neuron %v: %v", ni, ph)
		}
		sum += ph
		quart[min(int(ph*4), 3)]++
	}
	if mean := sum / float64(n); math.Abs(mean-0.5) > 0.03 {
		t.Errorf("mean initial phase: %v, expected 0.5", mean)
	}
	for i, q := range quart {
		if q < n/4-100 || q > n/4+100 {
			t.Errorf("initial phase not uniform: quarter %v has %v of %v", i, q, n)
		}
	}
}

func TestRandomInitRate(t *testing.T) {
	rate := func(rndInit float64) float64 {
		out, dc := newTestOutput(10, 10)
		out.SetParam(RandomInit, rndInit)
		out.InitState()
		runConst(t, out, 10, 0, 5000) // 0.1 sec period with defaults
		if dc.Total() != 0 {
			t.Errorf("internal errors: %v", dc.Counts)
		}
		return float64(len(out.Spks)) / (float64(len(out.Neurons)) * 5)
	}
	r0 := rate(0)
	r1 := rate(1)
	if math.Abs(r0-10) > 0.3 || math.Abs(r1-10) > 0.3 {
		t.Errorf("mean rates should be 10 Hz: deterministic init: %v, random init: %v", r0, r1)
	}
}

func TestRandomInitRange(t *testing.T) {
	out, dc := newTestOutput(10, 10)
	if rs := out.SetParam(RandomInit, 2); rs.OK {
		t.Fatal("RandomInit 2 accepted")
	}
	// direct field edits bypass Set and are clamped
	for _, ri := range []float64{2, -3} {
		out.Params.RandInit = ri
		out.InitState()
		for ni := range out.Neurons {
			if ph := out.Neurons[ni].Phase(0); ph < 0 {
				t.Fatalf("RandInit %v: negative initial phase: neuron %v: %v", ri, ni, ph)
			}
		}
		runConst(t, out, 10, 0, 200)
		spks := out.Flush()
		if len(spks) == 0 {
			t.Fatalf("RandInit %v: no spikes", ri)
		}
		for _, sp := range spks {
			if sp.Time < 0 {
				t.Fatalf("RandInit %v: negative spike time: %v", ri, sp)
			}
		}
	}
	if dc.Total() != 0 {
		t.Errorf("internal errors: %v", dc.Counts)
	}
}

func TestSubsampling(t *testing.T) {
	out, dc := newTestOutput(5, 4)
	out.SetParam(FirstInpInd, 2)
	out.SetParam(InpIndInc, 3)
	out.SetParam(TotalInputs, 4)
	out.SetParam(SpikeStdDev, 5)
	cor := map[int]bool{2: true, 5: true, 8: true, 11: true}
	if len(out.Idxs) != len(cor) {
		t.Fatalf("admitted indexes: %v", out.Idxs)
	}

	rnd := rand.New(rand.NewPCG(7, 8))
	fr := NewFrame(5, 4)
	for i := 0; i < 500; i++ {
		for j := range fr.Values {
			fr.Values[j] = 50 + rnd.Float64()*150
		}
		if err := out.Step(float64(i), fr); err != nil {
			t.Fatal(err)
		}
	}
	seen := map[int]bool{}
	for _, sp := range out.Spks {
		if !cor[sp.Neuron] {
			t.Fatalf("spike from neuron outside the subsample: %v", sp)
		}
		seen[sp.Neuron] = true
	}
	for ni := range cor {
		if !seen[ni] {
			t.Errorf("no spikes from admitted neuron %v", ni)
		}
	}
	for ni, nrn := range out.Neurons {
		if !cor[ni] && (nrn.LastPeriod != 1 || nrn.NextSpk != 1) {
			t.Errorf("state of excluded neuron %v modified: %+v", ni, nrn)
		}
	}
	if dc.Total() != 0 {
		t.Errorf("internal errors: %v", dc.Counts)
	}
}

func TestGateIndexes(t *testing.T) {
	gp := GateParams{}
	gp.Defaults()
	if idxs := gp.Indexes(5, nil); len(idxs) != 5 || idxs[4] != 4 {
		t.Errorf("default indexes: %v", idxs)
	}
	gp.IdxInc = 0
	gp.FirstIdx = 3
	if idxs := gp.Indexes(5, nil); len(idxs) != 1 || idxs[0] != 3 {
		t.Errorf("zero increment indexes: %v", idxs)
	}
	gp.IdxInc = AllInputs
	if idxs := gp.Indexes(5, nil); len(idxs) != 1 || idxs[0] != 3 {
		t.Errorf("huge increment indexes: %v", idxs)
	}
	gp.FirstIdx = 7
	if idxs := gp.Indexes(5, nil); len(idxs) != 0 {
		t.Errorf("first index beyond grid: %v", idxs)
	}
	gp.FirstIdx = -1
	gp.IdxInc = 1
	if idxs := gp.Indexes(5, nil); len(idxs) != 0 {
		t.Errorf("negative first index: %v", idxs)
	}
	gp.FirstIdx = 3
	gp.IdxInc = -2
	if idxs := gp.Indexes(5, nil); len(idxs) != 0 {
		t.Errorf("negative increment: %v", idxs)
	}

	// direct struct edits must not index outside the neurons
	out, _ := newTestOutput(3, 3)
	out.Params.Gate.FirstIdx = -1
	out.UpdateParams()
	runConst(t, out, 10, 0, 5)
	if len(out.Idxs) != 0 || len(out.Spks) != 0 {
		t.Errorf("negative first index admitted neurons: %v, spikes: %v", out.Idxs, out.Spks)
	}
}

func TestRecordingWindow(t *testing.T) {
	out, dc := newTestOutput(2, 2)
	out.SetParam(StartTime, 10)
	out.SetParam(EndTime, 20)
	fr := NewFrame(2, 2)
	fr.SetAll(700) // 1.43 msec period

	ini := append([]Neuron(nil), out.Neurons...)
	for i := 0; i < 30; i++ {
		tms := float64(i)
		if err := out.Step(tms, fr); err != nil {
			t.Fatal(err)
		}
		if tms < 10 {
			for ni := range out.Neurons {
				if out.Neurons[ni] != ini[ni] {
					t.Fatalf("gated frame at %v msec modified neuron %v", tms, ni)
				}
			}
		}
	}
	if len(out.Spks) == 0 {
		t.Fatal("no spikes inside the recording window")
	}
	for _, sp := range out.Spks {
		if sp.Time < 0.010 || sp.Time >= 0.020 {
			t.Errorf("spike outside of recording window: %v", sp)
		}
	}
	if out.Time.Slots != 10 || out.Time.Frames != 30 {
		t.Errorf("slots: %v (cor 10), frames: %v (cor 30)", out.Time.Slots, out.Time.Frames)
	}
	if dc.Total() != 0 {
		t.Errorf("internal errors: %v", dc.Counts)
	}
}

func TestHoldPhase(t *testing.T) {
	run := func(hold bool) (Spikes, *DiagCounts) {
		out, dc := newTestOutput(1, 1)
		setRate(t, out)
		out.Params.Gate.HoldPhase = hold
		runConst(t, out, 0.6, 0, 100)
		runConst(t, out, 0.6, 500, 100) // skips 400 msec
		return out.Spks, dc
	}
	per := 0.05
	sp, dc := run(true)
	if dc.Total() != 0 {
		t.Errorf("internal errors with HoldPhase: %v", dc.Counts)
	}
	tms := sp.Neuron(0)
	var before, after []float64
	for _, tm := range tms {
		if tm < 0.5 {
			before = append(before, tm)
		} else {
			after = append(after, tm)
		}
	}
	if len(before) == 0 || len(after) < 2 {
		t.Fatalf("spikes before gap: %v, after gap: %v", before, after)
	}
	// the gap counts as silence: the phase continues after it
	gapIsi := (after[0] - 0.5) + (0.1 - before[len(before)-1])
	if dif := math.Abs(gapIsi - per); dif > difTol {
		t.Errorf("isi across gap without gap time: %v, cor: %v", gapIsi, per)
	}
	for i := 1; i < len(after); i++ {
		if dif := math.Abs(after[i] - after[i-1] - per); dif > difTol {
			t.Errorf("isi err after gap: idx: %v, isi: %v", i, after[i]-after[i-1])
		}
	}

	_, dc = run(false)
	if dc.Counts[DiagEarlySpike] == 0 {
		t.Error("stale state after a gap should generate spikes before the slot start")
	}
}

func TestZeroPeriodFloor(t *testing.T) {
	out, dc := newTestOutput(1, 1)
	out.SetParam(LongestSustainedPeriod, 0)
	runConst(t, out, 1, 0, 1)
	n := len(out.Spks)
	if n < 990 || n > 1000 {
		t.Errorf("spikes in 1 msec at PeriodFloor: %v", n)
	}
	if out.Neurons[0].LastPeriod != PeriodFloor {
		t.Errorf("LastPeriod: %v, cor: %v", out.Neurons[0].LastPeriod, PeriodFloor)
	}
	if dc.Total() != 0 {
		t.Errorf("internal errors: %v", dc.Counts)
	}
}

func TestNoFirstSpkDelay(t *testing.T) {
	out, _ := newTestOutput(1, 1)
	out.Params.FirstSpkDelay = 0
	out.InitState()
	if !math.IsInf(out.Neurons[0].LastPeriod, 1) || out.Neurons[0].NextSpk != 0 {
		t.Fatalf("initial state without delay: %+v", out.Neurons[0])
	}
	runConst(t, out, 0, 0, 5) // silent: threshold 0, infinite longest period
	if len(out.Spks) != 0 {
		t.Fatalf("spikes for zero input: %v", out.Spks)
	}
	runConst(t, out, 10, 5, 1)
	if len(out.Spks) != 1 || out.Spks[0].Time != 0.005 {
		t.Errorf("first spike should be at the slot start 0.005: %v", out.Spks)
	}
}

func TestSetParam(t *testing.T) {
	pr := Params{}
	pr.Defaults()
	nonNeg := []ParamID{MinPeriod, LongestSustainedPeriod, MinPeriodStdDev, StartTime, EndTime, FirstInpInd, InpIndInc, TotalInputs}
	for _, id := range nonNeg {
		prv := pr.Get(id)
		rs := pr.Set(id, -1)
		if rs.OK || rs.Err() == nil {
			t.Errorf("%v: negative value accepted", id)
		}
		if pr.Get(id) != prv {
			t.Errorf("%v: rejected value modified the parameter: %v -> %v", id, prv, pr.Get(id))
		}
	}
	for _, id := range []ParamID{InputThreshold, FreqPerInp, SpikeStdDev, RandomInit} {
		if rs := pr.Set(id, -0.5); !rs.OK {
			t.Errorf("%v: negative value rejected: %v", id, rs.Reason)
		}
		if pr.Get(id) != -0.5 {
			t.Errorf("%v: value not set: %v", id, pr.Get(id))
		}
	}
	for _, v := range []float64{2, -1.5, math.Inf(1)} {
		rs := pr.Set(RandomInit, v)
		if rs.OK || !errors.Is(rs.Err(), ErrRange) {
			t.Errorf("RandomInit %v accepted: %v", v, rs.Reason)
		}
		if pr.RandInit != -0.5 {
			t.Errorf("rejected RandomInit modified the parameter: %v", pr.RandInit)
		}
	}
	if rs := pr.Set(MinPeriod, 3); !rs.OK || pr.Rate.MinPerSec != 0.003 {
		t.Errorf("MinPeriod not set or not updated: %+v", pr.Rate)
	}
	if rs := pr.Set(ParamIDN, 1); rs.OK {
		t.Error("invalid ParamID accepted")
	}
}

func TestApplyParams(t *testing.T) {
	out, _ := newTestOutput(4, 4)
	rs := out.ApplyParams([]ParamValue{
		{"Min_period", 2},
		{"Freq_per_inp", 50},
		{"No_such_param", 1},
		{"Input_threshold", 0.3},
	})
	if rs.OK {
		t.Fatal("batch with unknown parameter reported OK")
	}
	if !errors.Is(rs.Err(), ErrUnknownParam) {
		t.Errorf("unexpected reason: %v", rs.Reason)
	}
	if out.Params.Rate.MinPeriod != 2 || out.Params.Rate.Gain != 50 {
		t.Errorf("parameters before the unknown one not applied: %+v", out.Params.Rate)
	}
	if out.Params.Rate.Thr != 0 {
		t.Errorf("parameter after the unknown one applied: %v", out.Params.Rate.Thr)
	}

	rs = out.ApplyParams([]ParamValue{{"TotalInputs", 3}, {"InpIndInc", 2}})
	if !rs.OK {
		t.Fatal(rs.Reason)
	}
	if len(out.Idxs) != 3 || out.Idxs[2] != 4 {
		t.Errorf("indexes not updated: %v", out.Idxs)
	}
}

func TestParamByName(t *testing.T) {
	names := map[string]ParamID{
		"MinPeriod":                MinPeriod,
		"Longest_sustained_period": LongestSustainedPeriod,
		"Input_threshold":          InputThreshold,
		"Freq_per_inp":             FreqPerInp,
		"Spike_std_dev":            SpikeStdDev,
		"Min_period_std_dev":       MinPeriodStdDev,
		"Start_time":               StartTime,
		"End_time":                 EndTime,
		"Random_init":              RandomInit,
		"First_inp_ind":            FirstInpInd,
		"Inp_ind_inc":              InpIndInc,
		"Total_inputs":             TotalInputs,
	}
	for nm, cor := range names {
		id, err := ParamByName(nm)
		if err != nil || id != cor {
			t.Errorf("ParamByName(%q): %v, %v, cor: %v", nm, id, err, cor)
		}
	}
	if _, err := ParamByName("Gain"); err == nil {
		t.Error("unknown name resolved")
	}
}

func TestFeedInputShape(t *testing.T) {
	out, _ := newTestOutput(2, 2)
	bad := &Frame{Values: make([]float64, 3)}
	bad.Shape.X, bad.Shape.Y = 2, 2
	if err := out.FeedInput(0, bad, true, 0); err == nil {
		t.Error("mismatched frame accepted")
	}
	if err := out.FeedInput(0, NewFrame(3, 5), true, 0); err != nil {
		t.Fatal(err)
	}
	if len(out.Neurons) != 15 || len(out.Idxs) != 15 {
		t.Errorf("neurons not reallocated for new shape: %v, %v", len(out.Neurons), len(out.Idxs))
	}
	if rep := out.SizeReport(); !strings.Contains(rep, "Neurons: 15") {
		t.Errorf("size report: %s", rep)
	}
}

func TestZeroStep(t *testing.T) {
	for _, step := range []float64{0, -1} {
		out := NewOutput(2, 2, step)
		if out.Time.Step != step {
			t.Errorf("step replaced: %v -> %v", step, out.Time.Step)
		}
		err := out.Step(0, NewFrame(2, 2))
		if !errors.Is(err, ErrStep) {
			t.Errorf("step %v: expected ErrStep, got: %v", step, err)
		}
		if out.Time.Frames != 0 || len(out.Spks) != 0 {
			t.Errorf("step %v: rejected frame was processed: %+v", step, out.Time)
		}
	}
}

func TestNeuronVars(t *testing.T) {
	nrn := Neuron{LastPeriod: 0.25, NextSpk: 1.5}
	if v, err := nrn.VarByName("NextSpk"); err != nil || v != 1.5 {
		t.Errorf("NextSpk: %v, %v", v, err)
	}
	if v, err := nrn.VarByName("LastPeriod"); err != nil || v != 0.25 {
		t.Errorf("LastPeriod: %v, %v", v, err)
	}
	if _, err := nrn.VarByName("Vm"); err == nil {
		t.Error("unknown variable accepted")
	}
}
