// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package stim generates input frames for the spike output from a stimulus
schedule: a sequence of segments, each showing one pattern for a given
duration.  Schedules are read from YAML:

	size: {x: 16, y: 16}
	step: 1
	segments:
	  - {dur: 100, kind: constant, value: 0}
	  - {dur: 200, kind: flash, value: 80, radius: 4}
	  - {dur: 500, kind: grating, value: 40, contrast: 0.5, period: 8, speed: 40}
	  - {dur: 200, kind: noise, value: 60, seed: 3}

All times are in msec, except speed in pixels / sec.
*/
package stim

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"sort"

	"github.com/emer/gcspike/spikeout"
	"gonum.org/v1/gonum/stat/distuv"
	"gopkg.in/yaml.v3"
)

// Pattern kinds
const (
	// Constant: Value everywhere
	Constant = "constant"

	// Flash: Value inside a centered disk of Radius pixels, Background outside
	Flash = "flash"

	// Grating: drifting sinusoid Background + Value * (1 + Contrast * sin(phase)),
	// with Period pixels along direction Angle (deg), moving at Speed pixels / sec
	Grating = "grating"

	// Noise: uniform random values in [Background, Value), new every frame
	Noise = "noise"
)

// ErrEnded is returned for times at or after the end of the schedule
var ErrEnded = errors.New("stim: time after the end of the schedule")

// Size is the frame size in pixels
type Size struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Segment is one pattern shown for Dur msec
type Segment struct {
	Dur        float64 `yaml:"dur"`
	Kind       string  `yaml:"kind"`
	Value      float64 `yaml:"value"`
	Background float64 `yaml:"background,omitempty"`
	Radius     float64 `yaml:"radius,omitempty"`
	Contrast   float64 `yaml:"contrast,omitempty"`
	Period     float64 `yaml:"period,omitempty"`
	Speed      float64 `yaml:"speed,omitempty"`
	Angle      float64 `yaml:"angle,omitempty"`
	Seed       uint64  `yaml:"seed,omitempty"`
}

// Validate checks the segment parameters
func (sg *Segment) Validate() error {
	if !(sg.Dur > 0) {
		return fmt.Errorf("dur must be > 0, got %v", sg.Dur)
	}
	switch sg.Kind {
	case Constant, Noise:
	case Flash:
		if sg.Radius < 0 {
			return fmt.Errorf("flash radius must be >= 0, got %v", sg.Radius)
		}
	case Grating:
		if !(sg.Period > 0) {
			return fmt.Errorf("grating period must be > 0, got %v", sg.Period)
		}
	default:
		return fmt.Errorf("invalid kind: %q (valid: %s, %s, %s, %s)", sg.Kind, Constant, Flash, Grating, Noise)
	}
	return nil
}

// Schedule is a sequence of stimulus segments
type Schedule struct {
	Size     Size      `yaml:"size"`
	Step     float64   `yaml:"step"`
	Segments []Segment `yaml:"segments"`

	starts []float64 // start time of each segment, plus the end
}

// ConstantSchedule returns a schedule with one constant segment
func ConstantSchedule(x, y int, step, dur, val float64) *Schedule {
	sc := &Schedule{Size: Size{X: x, Y: y}, Step: step,
		Segments: []Segment{{Dur: dur, Kind: Constant, Value: val}}}
	sc.Update()
	return sc
}

// Parse reads a schedule from YAML data
func Parse(data []byte) (*Schedule, error) {
	sc := &Schedule{Step: 1}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("parsing stimulus schedule: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	sc.Update()
	return sc, nil
}

// Load reads a schedule from a YAML file
func Load(fname string) (*Schedule, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, fmt.Errorf("reading stimulus schedule: %w", err)
	}
	return Parse(data)
}

// Validate checks the schedule
func (sc *Schedule) Validate() error {
	if sc.Size.X <= 0 || sc.Size.Y <= 0 {
		return fmt.Errorf("size must be > 0, got %dx%d", sc.Size.X, sc.Size.Y)
	}
	if !(sc.Step > 0) {
		return fmt.Errorf("step must be > 0, got %v", sc.Step)
	}
	if len(sc.Segments) == 0 {
		return errors.New("no segments")
	}
	for i := range sc.Segments {
		if err := sc.Segments[i].Validate(); err != nil {
			return fmt.Errorf("segment %d: %w", i, err)
		}
	}
	return nil
}

// Update must be called after any changes to the segments
func (sc *Schedule) Update() {
	sc.starts = sc.starts[:0]
	st := 0.0
	for _, sg := range sc.Segments {
		sc.starts = append(sc.starts, st)
		st += sg.Dur
	}
	sc.starts = append(sc.starts, st)
}

// Duration returns the total duration in msec
func (sc *Schedule) Duration() float64 {
	if len(sc.starts) == 0 {
		sc.Update()
	}
	return sc.starts[len(sc.starts)-1]
}

// NFrames returns the number of frames of Step msec in the schedule
func (sc *Schedule) NFrames() int {
	return int(math.Ceil(sc.Duration() / sc.Step))
}

// SegmentAt returns the index of the segment showing at time t (msec),
// or -1 if t is outside of the schedule.
func (sc *Schedule) SegmentAt(t float64) int {
	if t < 0 || t >= sc.Duration() {
		return -1
	}
	return sort.Search(len(sc.Segments), func(i int) bool {
		return sc.starts[i+1] > t
	})
}

// Frame fills dst with the stimulus at time t (msec), resizing it to Size
func (sc *Schedule) Frame(t float64, dst *spikeout.Frame) error {
	si := sc.SegmentAt(t)
	if si < 0 {
		return fmt.Errorf("%w: %v msec, duration %v", ErrEnded, t, sc.Duration())
	}
	sg := &sc.Segments[si]
	dst.SetShape(sc.Size.X, sc.Size.Y)
	tseg := (t - sc.starts[si]) / 1000
	switch sg.Kind {
	case Constant:
		dst.SetAll(sg.Value)
	case Flash:
		cx := float64(sc.Size.X-1) / 2
		cy := float64(sc.Size.Y-1) / 2
		r2 := sg.Radius * sg.Radius
		for y := 0; y < sc.Size.Y; y++ {
			for x := 0; x < sc.Size.X; x++ {
				dx, dy := float64(x)-cx, float64(y)-cy
				if dx*dx+dy*dy <= r2 {
					dst.Set(x, y, sg.Value)
				} else {
					dst.Set(x, y, sg.Background)
				}
			}
		}
	case Grating:
		ang := sg.Angle * math.Pi / 180
		ca, sa := math.Cos(ang), math.Sin(ang)
		for y := 0; y < sc.Size.Y; y++ {
			for x := 0; x < sc.Size.X; x++ {
				pos := float64(x)*ca + float64(y)*sa - sg.Speed*tseg
				ph := 2 * math.Pi * pos / sg.Period
				dst.Set(x, y, sg.Background+sg.Value*(1+sg.Contrast*math.Sin(ph)))
			}
		}
	case Noise:
		// seeded by frame time, so a frame does not depend on the call order
		src := rand.NewPCG(sg.Seed, math.Float64bits(t))
		ud := distuv.Uniform{Min: sg.Background, Max: sg.Value, Src: src}
		if sg.Value <= sg.Background {
			dst.SetAll(sg.Background)
			break
		}
		for i := range dst.Values {
			dst.Values[i] = ud.Rand()
		}
	}
	return nil
}
