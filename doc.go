// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package gcspike is the overall repository for the retina ganglion cell
spike output stage implemented in the Go language (golang): the stage that
converts the continuously varying output of a retina model, one value per
pixel, into the spike times of one output neuron per pixel.

This top-level of the repository has no functional code -- everything is organized
into the following sub-repositories:

* ratecode: conversion of an input value into a firing period, with
optional gamma-distributed jitter of the period and a soft refractory period.

* spikeout: the spike output stage itself, which generates the exact spike
times falling inside each simulation slot while keeping the firing phase of
every neuron continuous across slots, plus the recording window and pixel
subsampling.

* spkfile: the plain text output activity file.

* spkdb: a SQLite database of simulation runs and their spikes.

* stim: stimulus schedules (constant, flash, drifting grating, noise) read
from YAML, which generate the input frames.

* examples: these actually compile into runnable programs and provide the starting
point for your own simulations.  examples/retina is the place to start: it runs
the output stage on a stimulus schedule configured by a config.toml file and
saves the spikes.
*/
package gcspike
