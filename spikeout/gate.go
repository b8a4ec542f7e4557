// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spikeout

import (
	"math"

	"github.com/emer/etable/v2/minmax"
)

// AllInputs is the NInputs value that admits every reachable pixel
const AllInputs = math.MaxInt

// GateParams determine which frames and which pixels generate spikes.
type GateParams struct {
	Window    minmax.F64 `desc:"recording window in msec: a frame at time t with step dt generates output only if t >= Min and t + dt <= Max -- default [0, +Inf)"`
	FirstIdx  int        `def:"0" min:"0" desc:"flattened index (y * width + x) of the first pixel to convert into spikes"`
	IdxInc    int        `def:"1" min:"0" desc:"index increment between converted pixels -- 0 converts only FirstIdx"`
	NInputs   int        `min:"0" desc:"maximum number of pixels to convert, starting at FirstIdx -- AllInputs by default"`
	HoldPhase bool       `def:"true" desc:"when an admitted slot starts after the end of the previous admitted slot (gated frames or skipped time), hold the phase of every neuron across the gap, as if the input had been zero -- if false, the stale state is used as is, which can predict spikes before the slot start"`
}

func (gp *GateParams) Defaults() {
	gp.Window.Min = 0
	gp.Window.Max = math.Inf(1)
	gp.FirstIdx = 0
	gp.IdxInc = 1
	gp.NInputs = AllInputs
	gp.HoldPhase = true
}

func (gp *GateParams) Update() {
}

// Admits returns true if the frame at time t (msec) with step dt (msec)
// falls inside the recording window.
func (gp *GateParams) Admits(t, dt float64) bool {
	return t >= gp.Window.Min && t+dt <= gp.Window.Max
}

// Indexes returns the admitted neuron indexes for a grid of n pixels,
// in processing order, reusing idxs if it has capacity.  A negative
// FirstIdx or IdxInc admits nothing.
func (gp *GateParams) Indexes(n int, idxs []int) []int {
	idxs = idxs[:0]
	if gp.FirstIdx < 0 || gp.IdxInc < 0 {
		return idxs
	}
	if gp.IdxInc == 0 {
		if gp.FirstIdx < n && gp.NInputs > 0 {
			idxs = append(idxs, gp.FirstIdx)
		}
		return idxs
	}
	for ni, cnt := gp.FirstIdx, 0; ni < n && cnt < gp.NInputs; cnt++ {
		idxs = append(idxs, ni)
		if gp.IdxInc >= n-ni { // also guards against overflow
			break
		}
		ni += gp.IdxInc
	}
	return idxs
}
