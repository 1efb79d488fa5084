// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manifest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"
)

// ChainEntry is one staged chain as recorded in the manifest.
type ChainEntry struct {
	ChainID      string `yaml:"chain_id"`
	QueryID      string `yaml:"query_id"`
	SequenceHash string `yaml:"sequence_hash"`
	MSARows      int    `yaml:"msa_rows"`
}

// Entry is one complex as recorded in the manifest.
type Entry struct {
	ID           string       `yaml:"id"`
	ChainCount   int          `yaml:"chain_count"`
	MSARows      int          `yaml:"msa_rows"`
	TemplateHits int          `yaml:"template_hits"`
	Status       string       `yaml:"status"`
	Error        string       `yaml:"error,omitempty"`
	StagedAt     string       `yaml:"staged_at"`
	Chains       []ChainEntry `yaml:"chains,omitempty"`
}

// List returns all recorded complexes ordered by identifier, with their
// chains in chain-letter order.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chain_count, msa_rows, template_hits, status, COALESCE(error, ''), staged_at
		 FROM complexes ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("querying complexes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ChainCount, &e.MSARows, &e.TemplateHits,
			&e.Status, &e.Error, &e.StagedAt); err != nil {
			return nil, fmt.Errorf("scanning complex: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating complexes: %w", err)
	}

	for i := range entries {
		chains, err := s.listChains(ctx, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Chains = chains
	}
	return entries, nil
}

func (s *Store) listChains(ctx context.Context, complexID string) ([]ChainEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT chain_id, query_id, sequence_hash, msa_rows
		 FROM chains WHERE complex_id = ? ORDER BY chain_id`, complexID)
	if err != nil {
		return nil, fmt.Errorf("querying chains for %s: %w", complexID, err)
	}
	defer rows.Close()

	var chains []ChainEntry
	for rows.Next() {
		var c ChainEntry
		if err := rows.Scan(&c.ChainID, &c.QueryID, &c.SequenceHash, &c.MSARows); err != nil {
			return nil, fmt.Errorf("scanning chain: %w", err)
		}
		chains = append(chains, c)
	}
	return chains, rows.Err()
}

// ExportYAML writes all manifest entries to outputRoot/manifest/export.yaml.
func (s *Store) ExportYAML(ctx context.Context) error {
	entries, err := s.List(ctx)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(map[string][]Entry{"complexes": entries})
	if err != nil {
		return fmt.Errorf("marshaling manifest export: %w", err)
	}

	path := filepath.Join(s.outputRoot, manifestDir, "export.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
