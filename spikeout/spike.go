// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spikeout

import (
	"cmp"
	"sort"
)

// Spike is one output spike: the index of the neuron that fired
// (flattened pixel offset, y * width + x) and the spike time in sec.
type Spike struct {
	Neuron int
	Time   float64
}

// CompareSpikes orders spikes by time, then by neuron index
func CompareSpikes(a, b Spike) int {
	if c := cmp.Compare(a.Time, b.Time); c != 0 {
		return c
	}
	return cmp.Compare(a.Neuron, b.Neuron)
}

// Spikes is a list of spikes, kept in time order by the Output
type Spikes []Spike

func (sp Spikes) Len() int           { return len(sp) }
func (sp Spikes) Swap(i, j int)      { sp[i], sp[j] = sp[j], sp[i] }
func (sp Spikes) Less(i, j int) bool { return CompareSpikes(sp[i], sp[j]) < 0 }

// Sort sorts the spikes by time, then neuron index, keeping the
// generation order of identical entries.
func (sp Spikes) Sort() {
	sort.Stable(sp)
}

// IsSorted returns true if the spikes are in time, neuron order
func (sp Spikes) IsSorted() bool {
	return sort.IsSorted(sp)
}

// Neuron returns the spike times of neuron ni, in order
func (sp Spikes) Neuron(ni int) []float64 {
	var tms []float64
	for _, s := range sp {
		if s.Neuron == ni {
			tms = append(tms, s.Time)
		}
	}
	return tms
}

// Counts returns the number of spikes per neuron for n neurons
func (sp Spikes) Counts(n int) []int {
	cnt := make([]int, n)
	for _, s := range sp {
		if s.Neuron >= 0 && s.Neuron < n {
			cnt[s.Neuron]++
		}
	}
	return cnt
}
