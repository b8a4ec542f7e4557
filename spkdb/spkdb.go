// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spkdb stores the output spikes of simulation runs in a SQLite
// database, together with the parameters that produced them.
package spkdb

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/emer/gcspike/spikeout"
	_ "modernc.org/sqlite" // SQLite driver
)

// DB is a spike database
type DB struct {
	db   *sql.DB
	Path string
}

// Run is one saved simulation run
type Run struct {
	ID      int64
	Name    string
	Created time.Time
	Params  []spikeout.ParamValue
	NSpikes int
}

// Open opens the database at path, creating it if needed
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("spkdb.Open: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("spkdb.Open: failed to initialize schema: %w", err)
	}
	return &DB{db: db, Path: path}, nil
}

// Close closes the database
func (sd *DB) Close() error {
	return sd.db.Close()
}

// SaveRun saves the spikes of a run in one transaction, keeping their
// order, and returns the new run id.
func (sd *DB) SaveRun(ctx context.Context, name string, pr *spikeout.Params, spks spikeout.Spikes) (int64, error) {
	tx, err := sd.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `INSERT INTO runs (name, created, params) VALUES (?, ?, ?)`,
		name, time.Now().UTC().Format(time.RFC3339Nano), encodeParams(pr))
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	st, err := tx.PrepareContext(ctx, `INSERT INTO spikes (run_id, seq, neuron, time) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare spike insert: %w", err)
	}
	defer st.Close()
	for i, sp := range spks {
		if _, err := st.ExecContext(ctx, id, i, sp.Neuron, sp.Time); err != nil {
			return 0, fmt.Errorf("failed to insert spike %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}
	return id, nil
}

// LoadRun returns the spikes of run id in saved order
func (sd *DB) LoadRun(ctx context.Context, id int64) (spikeout.Spikes, error) {
	var n int
	if err := sd.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, id).Scan(&n); err != nil {
		return nil, fmt.Errorf("failed to look up run %d: %w", id, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("run %d: %w", id, sql.ErrNoRows)
	}
	rows, err := sd.db.QueryContext(ctx, `SELECT neuron, time FROM spikes WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query spikes: %w", err)
	}
	defer rows.Close()

	var spks spikeout.Spikes
	for rows.Next() {
		var sp spikeout.Spike
		if err := rows.Scan(&sp.Neuron, &sp.Time); err != nil {
			return nil, fmt.Errorf("failed to scan spike: %w", err)
		}
		spks = append(spks, sp)
	}
	return spks, rows.Err()
}

// Runs returns all saved runs, oldest first
func (sd *DB) Runs(ctx context.Context) ([]Run, error) {
	rows, err := sd.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.created, r.params, COUNT(s.seq)
		FROM runs r LEFT JOIN spikes s ON s.run_id = r.id
		GROUP BY r.id ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var rn Run
		var created, params string
		if err := rows.Scan(&rn.ID, &rn.Name, &created, &params, &rn.NSpikes); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if rn.Created, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %d: invalid created time: %w", rn.ID, err)
		}
		if rn.Params, err = decodeParams(params); err != nil {
			return nil, fmt.Errorf("run %d: %w", rn.ID, err)
		}
		runs = append(runs, rn)
	}
	return runs, rows.Err()
}

// DeleteRun deletes run id and its spikes
func (sd *DB) DeleteRun(ctx context.Context, id int64) error {
	if _, err := sd.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete run %d: %w", id, err)
	}
	return nil
}

// encodeParams writes one Name=value line per parameter.
// strconv formatting keeps +Inf, which JSON cannot represent.
func encodeParams(pr *spikeout.Params) string {
	if pr == nil {
		return ""
	}
	var b strings.Builder
	for _, pv := range pr.Values() {
		b.WriteString(pv.Name)
		b.WriteByte('=')
		b.WriteString(strconv.FormatFloat(pv.Val, 'g', -1, 64))
		b.WriteByte('\n')
	}
	return b.String()
}

func decodeParams(txt string) ([]spikeout.ParamValue, error) {
	var vals []spikeout.ParamValue
	for _, ln := range strings.Split(txt, "\n") {
		if ln == "" {
			continue
		}
		nm, vs, ok := strings.Cut(ln, "=")
		if !ok {
			return nil, fmt.Errorf("invalid parameter line: %q", ln)
		}
		val, err := strconv.ParseFloat(vs, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid parameter value: %q: %w", ln, err)
		}
		vals = append(vals, spikeout.ParamValue{Name: nm, Val: val})
	}
	return vals, nil
}
