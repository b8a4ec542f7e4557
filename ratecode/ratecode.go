// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package ratecode provides the input-to-firing-period conversion used by
retinal ganglion cell outputs: a thresholded linear frequency response
with an offset frequency (the longest sustained period), saturated at a
(possibly jittered) refractory period.

Periods are returned as computed, with no lower bound other than
MinPeriod: the spikeout package floors them before using them.

When spike jitter is enabled the deterministic period is used as the mean
of a gamma distribution, as observed in rat ganglion cells
(doi:10.1017/S095252380808067X). A negative SpikeStdDev sets the variance
equal to the mean period (Fano factor 1), so spike counts are Poisson.
*/
package ratecode

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// Params are the input-to-period conversion parameters.
// All periods and standard deviations are specified in milliseconds,
// and all returned periods are in seconds.
type Params struct {
	MinPeriod       float64 `def:"0" min:"0" desc:"minimum firing period (refractory period) in msec -- output periods are saturated at this value, so the maximum firing frequency is 1000 / MinPeriod"`
	LongestPeriod   float64 `def:"+Inf" min:"0" desc:"longest sustained firing period in msec, reached when the input is right at threshold -- +Inf means the neuron starts firing from 0 Hz"`
	Thr             float64 `def:"0" desc:"input threshold: minimal sustained input value required for the neuron to generate any output"`
	Gain            float64 `def:"1" desc:"firing frequency (spikes / sec) per input unit above threshold"`
	SpikeStdDev     float64 `def:"0" desc:"standard deviation of the inter-spike intervals in msec -- 0 = deterministic, < 0 = variance equals the mean period (Fano factor 1, Poisson spike counts)"`
	MinPeriodStdDev float64 `def:"0" min:"0" desc:"standard deviation in msec of the Gaussian noise added to MinPeriod on every evaluation -- 0 = hard refractory limit"`

	MaxPerSec    float64 `view:"-" json:"-" xml:"-" desc:"LongestPeriod in seconds"`
	MinPerSec    float64 `view:"-" json:"-" xml:"-" desc:"MinPeriod in seconds"`
	MinPerSigSec float64 `view:"-" json:"-" xml:"-" desc:"MinPeriodStdDev in seconds"`
	SpikeVarSec  float64 `view:"-" json:"-" xml:"-" desc:"(SpikeStdDev / 1000)^2 -- only used when SpikeStdDev > 0"`
}

func (rp *Params) Defaults() {
	rp.MinPeriod = 0
	rp.LongestPeriod = math.Inf(1)
	rp.Thr = 0
	rp.Gain = 1
	rp.SpikeStdDev = 0
	rp.MinPeriodStdDev = 0
	rp.Update()
}

// Update must be called after any changes to parameters
func (rp *Params) Update() {
	rp.MaxPerSec = rp.LongestPeriod / 1000
	rp.MinPerSec = rp.MinPeriod / 1000
	rp.MinPerSigSec = rp.MinPeriodStdDev / 1000
	sd := rp.SpikeStdDev / 1000
	rp.SpikeVarSec = sd * sd
}

// Jittered returns true if periods are drawn from a gamma distribution
func (rp *Params) Jittered() bool {
	return rp.SpikeStdDev != 0
}

// Stochastic returns true if Period consumes random numbers
func (rp *Params) Stochastic() bool {
	return rp.SpikeStdDev != 0 || rp.MinPeriodStdDev > 0
}

// MeanPeriod returns the deterministic firing period in seconds for
// given input value, without jitter or refractory saturation.
// Inputs below threshold (or NaN) return +Inf.
func (rp *Params) MeanPeriod(x float64) float64 {
	if x < rp.Thr || math.IsNaN(x) {
		return math.Inf(1)
	}
	return 1 / ((x-rp.Thr)*rp.Gain + 1/rp.MaxPerSec)
}

// DetPeriod returns the firing period in seconds for given input value
// with jitter disabled: MeanPeriod saturated at the hard MinPeriod.
func (rp *Params) DetPeriod(x float64) float64 {
	per := rp.MeanPeriod(x)
	if per < rp.MinPerSec {
		per = rp.MinPerSec
	}
	return per
}

// MinPeriodSec returns the refractory period in seconds to use for one
// evaluation: a soft limit with Gaussian noise if MinPeriodStdDev > 0.
func (rp *Params) MinPeriodSec(src rand.Source) float64 {
	if rp.MinPeriodStdDev > 0 {
		nd := distuv.Normal{Mu: rp.MinPerSec, Sigma: rp.MinPerSigSec, Src: src}
		return nd.Rand()
	}
	return rp.MinPerSec
}

// GammaParams returns the shape (k) and scale (theta) of the gamma
// distribution with mean per and the configured variance.
func (rp *Params) GammaParams(per float64) (k, theta float64) {
	vr := rp.SpikeVarSec
	if rp.SpikeStdDev < 0 {
		vr = per
	}
	return per * per / vr, vr / per
}

// Period converts an input value into a firing period in seconds
// (+Inf for no firing). src is only read when Stochastic() is true.
// The result is not floored: it can be 0 or arbitrarily small (e.g.,
// with MinPeriod 0 and LongestPeriod 0, or a large gain), so callers that
// step through time by it must apply their own floor, as
// spikeout.Output.Period does with spikeout.PeriodFloor.
func (rp *Params) Period(x float64, src rand.Source) float64 {
	minPer := rp.MinPeriodSec(src)
	per := rp.MeanPeriod(x)
	if rp.Jittered() && per > 0 && !math.IsInf(per, 0) {
		k, theta := rp.GammaParams(per)
		gd := distuv.Gamma{Alpha: k, Beta: 1 / theta, Src: src}
		per = gd.Rand()
	}
	if per < minPer {
		per = minPer
	}
	return per
}
