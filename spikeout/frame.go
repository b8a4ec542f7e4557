// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spikeout

import (
	"fmt"

	"github.com/goki/mat32"
)

// Frame is one input image of activation values, one per output neuron,
// stored in row-major order: Values[y * Shape.X + x].
type Frame struct {
	Shape  mat32.Vec2i
	Values []float64
}

// NewFrame returns a new zero frame of given size
func NewFrame(x, y int) *Frame {
	fr := &Frame{}
	fr.SetShape(x, y)
	return fr
}

// SetShape sets the size, reallocating Values if needed.
func (fr *Frame) SetShape(x, y int) {
	fr.Shape = mat32.Vec2i{X: int32(x), Y: int32(y)}
	n := x * y
	if cap(fr.Values) >= n {
		fr.Values = fr.Values[:n]
	} else {
		fr.Values = make([]float64, n)
	}
}

// Len returns the number of pixels
func (fr *Frame) Len() int {
	return int(fr.Shape.X) * int(fr.Shape.Y)
}

// Index returns the flattened index of pixel x, y
func (fr *Frame) Index(x, y int) int {
	return y*int(fr.Shape.X) + x
}

// Value returns the value at x, y
func (fr *Frame) Value(x, y int) float64 {
	return fr.Values[fr.Index(x, y)]
}

// Set sets the value at x, y
func (fr *Frame) Set(x, y int, val float64) {
	fr.Values[fr.Index(x, y)] = val
}

// SetAll sets all values to val
func (fr *Frame) SetAll(val float64) {
	for i := range fr.Values {
		fr.Values[i] = val
	}
}

// Validate checks that Values matches Shape
func (fr *Frame) Validate() error {
	if fr.Shape.X < 0 || fr.Shape.Y < 0 || len(fr.Values) != fr.Len() {
		return fmt.Errorf("spikeout.Frame: shape %dx%d does not match %d values", fr.Shape.X, fr.Shape.Y, len(fr.Values))
	}
	return nil
}
