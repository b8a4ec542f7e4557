// Copyright (c) 2019, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spkdb

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version
const SchemaVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);

-- one row per saved simulation run
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    created TEXT NOT NULL,
    params TEXT NOT NULL  -- Name=value lines, see encodeParams
);

-- spikes of a run in output order (seq)
CREATE TABLE IF NOT EXISTS spikes (
    run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    seq INTEGER NOT NULL,
    neuron INTEGER NOT NULL,
    time REAL NOT NULL,
    PRIMARY KEY (run_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_spikes_neuron ON spikes(run_id, neuron);
`

// InitSchema creates the schema of a new database, or checks the
// version of an existing one.
func InitSchema(ctx context.Context, db *sql.DB) error {
	ver, err := schemaVersion(ctx, db)
	if err != nil {
		// no schema_version table yet
		return createSchema(ctx, db)
	}
	if ver > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", ver, SchemaVersion)
	}
	return nil
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var ver int
	err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&ver)
	return ver, err
}

func createSchema(ctx context.Context, db *sql.DB) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`,
		SchemaVersion); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return tx.Commit()
}
