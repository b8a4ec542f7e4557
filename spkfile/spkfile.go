// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package spkfile reads and writes the plain text output activity file:
two comment lines starting with %, then one spike per line,
the neuron index and the spike time in seconds separated by a space:

	% Output activity file generated by gcspike on Mon Oct 19 10:00:00 2026
	% <neuron index from 0> <spike time in seconds>
	2 0.05
	5 0.05
	2 0.1

Times are written with the shortest representation that parses back to
the same float64, so Open(Save(spikes)) returns identical spikes.
*/
package spkfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/emer/gcspike/spikeout"
)

// Generator is the program name written in the file header
var Generator = "gcspike"

// Comment starts a comment line
const Comment = "%"

// Header returns the header lines for a file generated at now.
// A zero now omits the generation time.
func Header(now time.Time) string {
	var b strings.Builder
	b.WriteString(Comment + " Output activity file generated by " + Generator)
	if !now.IsZero() {
		b.WriteString(" on " + now.Format(time.ANSIC))
	}
	b.WriteString("\n" + Comment + " <neuron index from 0> <spike time in seconds>\n")
	return b.String()
}

// Write writes the header and the spikes, in the given order, to w
func Write(w io.Writer, spks spikeout.Spikes, now time.Time) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Header(now)); err != nil {
		return err
	}
	var line []byte
	for _, sp := range spks {
		line = strconv.AppendInt(line[:0], int64(sp.Neuron), 10)
		line = append(line, ' ')
		line = strconv.AppendFloat(line, sp.Time, 'g', -1, 64)
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Save writes the spikes to file fname, stamped with the current local time
func Save(fname string, spks spikeout.Spikes) error {
	fp, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("spkfile.Save: %w", err)
	}
	if err := Write(fp, spks, time.Now()); err != nil {
		fp.Close()
		return fmt.Errorf("spkfile.Save: %s: %w", fname, err)
	}
	if err := fp.Close(); err != nil {
		return fmt.Errorf("spkfile.Save: %s: %w", fname, err)
	}
	return nil
}

// Read reads spikes from r in file order.  Comment and blank lines
// are skipped, any other line must hold a neuron index and a time.
func Read(r io.Reader) (spikeout.Spikes, error) {
	var spks spikeout.Spikes
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		txt := strings.TrimSpace(sc.Text())
		if txt == "" || strings.HasPrefix(txt, Comment) {
			continue
		}
		flds := strings.Fields(txt)
		if len(flds) != 2 {
			return spks, fmt.Errorf("spkfile.Read: line %d: expected <neuron> <time>, got: %q", ln, txt)
		}
		ni, err := strconv.Atoi(flds[0])
		if err != nil || ni < 0 {
			return spks, fmt.Errorf("spkfile.Read: line %d: invalid neuron index: %q", ln, flds[0])
		}
		tm, err := strconv.ParseFloat(flds[1], 64)
		if err != nil {
			return spks, fmt.Errorf("spkfile.Read: line %d: invalid spike time: %q", ln, flds[1])
		}
		spks = append(spks, spikeout.Spike{Neuron: ni, Time: tm})
	}
	if err := sc.Err(); err != nil {
		return spks, fmt.Errorf("spkfile.Read: %w", err)
	}
	return spks, nil
}

// Open reads the spikes from file fname
func Open(fname string) (spikeout.Spikes, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("spkfile.Open: %w", err)
	}
	defer fp.Close()
	return Read(fp)
}
