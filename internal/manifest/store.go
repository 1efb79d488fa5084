// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manifest persists staging outcomes in a SQLite ledger under the
// output root. The ledger answers "what has been staged here, when, and did
// it succeed" without re-walking the output tree.
package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/chai-stage/internal/stage"
)

const (
	manifestDir = "manifest"
	dbFile      = "staging.db"
)

// Status values recorded per complex.
const (
	StatusStaged = "staged"
	StatusFailed = "failed"
)

// Store manages the staging manifest database.
type Store struct {
	db         *sql.DB
	outputRoot string
}

// NewStore opens or creates the manifest database at
// outputRoot/manifest/staging.db, creating the schema if needed.
func NewStore(outputRoot string) (*Store, error) {
	dir := filepath.Join(outputRoot, manifestDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating manifest directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening manifest database: %w", err)
	}

	s := &Store{db: db, outputRoot: outputRoot}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating manifest schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS complexes (
			id TEXT PRIMARY KEY,
			chain_count INTEGER NOT NULL,
			msa_rows INTEGER NOT NULL,
			template_hits INTEGER NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			staged_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chains (
			complex_id TEXT NOT NULL REFERENCES complexes(id),
			chain_id TEXT NOT NULL,
			query_id TEXT NOT NULL,
			sequence_hash TEXT NOT NULL,
			msa_rows INTEGER NOT NULL,
			PRIMARY KEY (complex_id, query_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_chains_complex_id ON chains(complex_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a successful staging outcome, replacing any earlier entry
// for the same identifier.
func (s *Store) Record(ctx context.Context, result *stage.Result) error {
	return s.record(ctx, result.ID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO complexes (id, chain_count, msa_rows, template_hits, status, error, staged_at)
			 VALUES (?, ?, ?, ?, ?, NULL, ?)`,
			result.ID, len(result.Chains), result.MSARows(), result.TemplateHits,
			StatusStaged, now(),
		)
		if err != nil {
			return fmt.Errorf("inserting complex: %w", err)
		}
		for _, c := range result.Chains {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO chains (complex_id, chain_id, query_id, sequence_hash, msa_rows)
				 VALUES (?, ?, ?, ?, ?)`,
				result.ID, c.ChainID, c.QueryID, c.SequenceHash, c.Rows,
			)
			if err != nil {
				return fmt.Errorf("inserting chain %s: %w", c.ChainID, err)
			}
		}
		return nil
	})
}

// RecordFailure stores a failed staging outcome.
func (s *Store) RecordFailure(ctx context.Context, id string, stageErr error) error {
	return s.record(ctx, id, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO complexes (id, chain_count, msa_rows, template_hits, status, error, staged_at)
			 VALUES (?, 0, 0, 0, ?, ?, ?)`,
			id, StatusFailed, stageErr.Error(), now(),
		)
		if err != nil {
			return fmt.Errorf("inserting failure: %w", err)
		}
		return nil
	})
}

// record wraps an upsert for one identifier in a transaction, clearing any
// previous entry first so reruns do not accumulate stale chains.
func (s *Store) record(ctx context.Context, id string, insert func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chains WHERE complex_id = ?`, id); err != nil {
		return fmt.Errorf("deleting old chains: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM complexes WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting old complex: %w", err)
	}
	if err := insert(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
