// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spikeout

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/emer/gcspike/ratecode"
	"github.com/goki/ki/kit"
)

var (
	// ErrUnknownParam is returned for parameter names that are not a ParamID
	ErrUnknownParam = errors.New("spikeout: unknown parameter")

	// ErrNegative is returned when a non-negative parameter is set to a negative value
	ErrNegative = errors.New("spikeout: parameter must not be negative")

	// ErrRange is returned when RandomInit is set outside of [-1, 1]
	ErrRange = errors.New("spikeout: parameter out of range")
)

// spikeout.Params contains all the spike output parameters
type Params struct {
	Rate          ratecode.Params `view:"inline" desc:"input-to-firing-period conversion"`
	Gate          GateParams      `view:"inline" desc:"recording window and pixel subsampling"`
	RandInit      float64         `def:"0" min:"-1" max:"1" desc:"0 = same initial state for all neurons, otherwise the initial phase of each neuron is randomized: NextSpk = (1 - RandInit * U[0,1)) * 1 sec -- values outside [-1, 1] are rejected by Set and clamped by RandomizeState"`
	FirstSpkDelay float64         `def:"1" min:"0" desc:"delay of the first spike as a proportion of the first firing period -- 0 = fire at the start of the first slot with input"`
}

func (pr *Params) Defaults() {
	pr.Rate.Defaults()
	pr.Gate.Defaults()
	pr.RandInit = 0
	pr.FirstSpkDelay = 1
	pr.Update()
}

// Update must be called after any changes to parameters
func (pr *Params) Update() {
	pr.Rate.Update()
	pr.Gate.Update()
}

//////////////////////////////////////////////////////////////////////////////////////
//  ParamID

// ParamID identifies the parameters that can be set individually by name
type ParamID int32

//go:generate stringer -type=ParamID

var KiT_ParamID = kit.Enums.AddEnum(ParamIDN, kit.NotBitFlag, nil)

func (ev ParamID) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ParamID) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The settable parameters.  Periods, std devs and times are in msec.
const (
	// MinPeriod is Rate.MinPeriod (>= 0)
	MinPeriod ParamID = iota

	// LongestSustainedPeriod is Rate.LongestPeriod (>= 0)
	LongestSustainedPeriod

	// InputThreshold is Rate.Thr
	InputThreshold

	// FreqPerInp is Rate.Gain
	FreqPerInp

	// SpikeStdDev is Rate.SpikeStdDev (sign is significant)
	SpikeStdDev

	// MinPeriodStdDev is Rate.MinPeriodStdDev (>= 0)
	MinPeriodStdDev

	// StartTime is Gate.Window.Min (>= 0)
	StartTime

	// EndTime is Gate.Window.Max (>= 0)
	EndTime

	// RandomInit is RandInit (in [-1, 1])
	RandomInit

	// FirstInpInd is Gate.FirstIdx (>= 0)
	FirstInpInd

	// InpIndInc is Gate.IdxInc (>= 0)
	InpIndInc

	// TotalInputs is Gate.NInputs (>= 0)
	TotalInputs

	ParamIDN
)

// ParamByName returns the ParamID for given name.  In addition to the
// ParamID names, names are matched ignoring case and underscores, so
// the classic names such as "Min_period" or "Freq_per_inp" resolve too.
func ParamByName(name string) (ParamID, error) {
	var id ParamID
	if err := id.FromString(name); err == nil {
		return id, nil
	}
	nm := strings.ReplaceAll(name, "_", "")
	for id = 0; id < ParamIDN; id++ {
		if strings.EqualFold(nm, id.String()) {
			return id, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownParam, name)
}

// Result reports the outcome of setting one or more parameters.
// Callers inspect it and continue: a failed set leaves the rejected
// field unchanged.
type Result struct {
	OK     bool
	Reason error
}

// Err returns the reason as an error, nil if OK
func (rs Result) Err() error {
	if rs.OK {
		return nil
	}
	return rs.Reason
}

func okResult() Result {
	return Result{OK: true}
}

func failResult(err error) Result {
	return Result{OK: false, Reason: err}
}

// Get returns the current value of given parameter
func (pr *Params) Get(id ParamID) float64 {
	switch id {
	case MinPeriod:
		return pr.Rate.MinPeriod
	case LongestSustainedPeriod:
		return pr.Rate.LongestPeriod
	case InputThreshold:
		return pr.Rate.Thr
	case FreqPerInp:
		return pr.Rate.Gain
	case SpikeStdDev:
		return pr.Rate.SpikeStdDev
	case MinPeriodStdDev:
		return pr.Rate.MinPeriodStdDev
	case StartTime:
		return pr.Gate.Window.Min
	case EndTime:
		return pr.Gate.Window.Max
	case RandomInit:
		return pr.RandInit
	case FirstInpInd:
		return float64(pr.Gate.FirstIdx)
	case InpIndInc:
		return float64(pr.Gate.IdxInc)
	case TotalInputs:
		return float64(pr.Gate.NInputs)
	}
	return math.NaN()
}

// NonNeg returns true if the parameter rejects negative values
func (id ParamID) NonNeg() bool {
	switch id {
	case InputThreshold, FreqPerInp, SpikeStdDev, RandomInit:
		return false
	}
	return true
}

// Set validates and sets one parameter, calling Update on success.
// Negative values are rejected for non-negative parameters, RandomInit
// must be in [-1, 1], and on failure the previous value is kept.
func (pr *Params) Set(id ParamID, val float64) Result {
	if id < 0 || id >= ParamIDN {
		return failResult(fmt.Errorf("%w: %v", ErrUnknownParam, id))
	}
	if math.IsNaN(val) || (id.NonNeg() && val < 0) {
		return failResult(fmt.Errorf("%w: %v = %v", ErrNegative, id, val))
	}
	if id == RandomInit && (val < -1 || val > 1) {
		return failResult(fmt.Errorf("%w: %v = %v, must be in [-1, 1]", ErrRange, id, val))
	}
	switch id {
	case MinPeriod:
		pr.Rate.MinPeriod = val
	case LongestSustainedPeriod:
		pr.Rate.LongestPeriod = val
	case InputThreshold:
		pr.Rate.Thr = val
	case FreqPerInp:
		pr.Rate.Gain = val
	case SpikeStdDev:
		pr.Rate.SpikeStdDev = val
	case MinPeriodStdDev:
		pr.Rate.MinPeriodStdDev = val
	case StartTime:
		pr.Gate.Window.Min = val
	case EndTime:
		pr.Gate.Window.Max = val
	case RandomInit:
		pr.RandInit = val
	case FirstInpInd:
		pr.Gate.FirstIdx = intParam(val)
	case InpIndInc:
		pr.Gate.IdxInc = intParam(val)
	case TotalInputs:
		pr.Gate.NInputs = intParam(val)
	}
	pr.Update()
	return okResult()
}

// intParam converts a non-negative parameter value to an int,
// saturating at AllInputs.
func intParam(val float64) int {
	if val >= float64(AllInputs) {
		return AllInputs
	}
	return int(val)
}

// ParamValue is one named parameter override
type ParamValue struct {
	Name string
	Val  float64
}

// Apply sets the given named parameters in order, stopping at the first
// unknown name or rejected value.  Parameters applied before the failure
// remain applied.
func (pr *Params) Apply(vals []ParamValue) Result {
	for _, pv := range vals {
		id, err := ParamByName(pv.Name)
		if err != nil {
			return failResult(err)
		}
		if rs := pr.Set(id, pv.Val); !rs.OK {
			return rs
		}
	}
	return okResult()
}

// Values returns the current values of all parameters, in ParamID order,
// so that Apply(Values()) restores them.
func (pr *Params) Values() []ParamValue {
	vals := make([]ParamValue, ParamIDN)
	for id := ParamID(0); id < ParamIDN; id++ {
		vals[id] = ParamValue{Name: id.String(), Val: pr.Get(id)}
	}
	return vals
}
