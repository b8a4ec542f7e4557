// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spikeout

import (
	"fmt"
	"math"
	"unsafe"
)

// spikeout.Neuron holds the spike-time generation state of one ganglion
// cell output (one input pixel).  All times are in seconds.
// All variables accessible via VarByIndex must be float64 and in contiguous order.
type Neuron struct {

	// firing period used for the last spike time prediction: the period of
	// the last non-zero input.  Must never be 0 when read by the slot update.
	// +Inf when the neuron has not been driven yet (and no first-spike delay is used).
	LastPeriod float64

	// predicted time of the next spike if the last non-zero input continued.
	// For a firing neuron this is never before the start of the last slot
	// in which it was updated.
	NextSpk float64
}

var NeuronVars = []string{"LastPeriod", "NextSpk"}

var NeuronVarsMap map[string]int

func init() {
	NeuronVarsMap = make(map[string]int, len(NeuronVars))
	for i, v := range NeuronVars {
		NeuronVarsMap[v] = i
	}
}

func (nrn *Neuron) VarNames() []string {
	return NeuronVars
}

// NeuronVarIndexByName returns the index of the variable in the Neuron, or error
func NeuronVarIndexByName(varNm string) (int, error) {
	i, ok := NeuronVarsMap[varNm]
	if !ok {
		return -1, fmt.Errorf("Neuron VarByName: variable name: %v not valid", varNm)
	}
	return i, nil
}

// VarByIndex returns variable using index (0 = first variable in NeuronVars list)
func (nrn *Neuron) VarByIndex(idx int) float64 {
	fv := (*float64)(unsafe.Add(unsafe.Pointer(nrn), 8*idx))
	return *fv
}

// VarByName returns variable by name, or error
func (nrn *Neuron) VarByName(varNm string) (float64, error) {
	i, err := NeuronVarIndexByName(varNm)
	if err != nil {
		return math.NaN(), err
	}
	return nrn.VarByIndex(i), nil
}

// Phase returns the fraction of the last period remaining before the
// predicted spike, relative to time t (seconds).
func (nrn *Neuron) Phase(t float64) float64 {
	return (nrn.NextSpk - t) / nrn.LastPeriod
}
