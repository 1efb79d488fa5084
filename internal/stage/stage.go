// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package stage drives the per-complex staging pipeline: read the ColabFold
// alignment artifacts for one identifier, reconcile them into per-chain
// alignment tables, translate template hits onto output chain letters, and
// write the staged layout the folding model consumes.
package stage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/chai-stage/internal/a3m"
	"github.com/pdiddy/chai-stage/internal/fasta"
	"github.com/pdiddy/chai-stage/internal/msa"
	"github.com/pdiddy/chai-stage/internal/template"
	"github.com/pdiddy/chai-stage/internal/xref"
	"github.com/pdiddy/chai-stage/pkg/types"
)

// Fixed artifact layout under the ColabFold output directory.
const (
	pairedRelPath = "%s_pairgreedy/pair.a3m"
	unirefRelPath = "%s_env/uniref.a3m"
	envRelPath    = "%s_env/bfd.mgnify30.metaeuk30.smag30.a3m"
	m8RelPath     = "%s_env/pdb70.m8"

	msasDir      = "msas"
	fastaName    = "chai.fasta"
	templateName = "all_template_hits.m8"
)

// ChainOutcome summarizes one staged chain for reporting.
type ChainOutcome struct {
	// QueryID is the upstream identifier the chain was recovered from.
	QueryID string

	// ChainID is the output chain letter.
	ChainID string

	// SequenceHash is the content-addressed basename of the chain's
	// alignment table, without the suffix.
	SequenceHash string

	// Rows is the reconciled alignment row count.
	Rows int
}

// Result summarizes one successfully staged complex.
type Result struct {
	ID           string
	OutputDir    string
	Chains       []ChainOutcome
	TemplateHits int
}

// MSARows returns the total reconciled row count across chains.
func (r *Result) MSARows() int {
	total := 0
	for _, c := range r.Chains {
		total += c.Rows
	}
	return total
}

// Failure records one identifier whose pipeline aborted.
type Failure struct {
	ID  string
	Err error
}

// BatchResult holds the outcome of a staging run.
type BatchResult struct {
	Staged   int
	Failed   int
	Results  []*Result
	Failures []Failure
}

// Total returns the number of identifiers processed.
func (r BatchResult) Total() int {
	return r.Staged + r.Failed
}

// HasFailures reports whether any identifier failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// StageComplex runs the full pipeline for one identifier. All outputs are
// written into a temporary directory under the output root and renamed to
// {output_root}/{id} only when every step succeeded, so a failed identifier
// leaves no partial output behind.
func StageComplex(cfg types.StageConfig, cx types.Complex, w io.Writer) (*Result, error) {
	paired, err := a3m.ReadColabfold(artifactPath(cfg, pairedRelPath, cx.ID))
	if err != nil {
		return nil, err
	}
	uniref, err := a3m.ReadColabfold(artifactPath(cfg, unirefRelPath, cx.ID))
	if err != nil {
		return nil, err
	}
	env, err := a3m.ReadColabfold(artifactPath(cfg, envRelPath, cx.ID))
	if err != nil {
		return nil, err
	}

	if err := msa.CheckPaired(paired); err != nil {
		return nil, annotate(err, cx.ID)
	}
	if err := msa.CheckQuerySets(paired, uniref, env); err != nil {
		return nil, annotate(err, cx.ID)
	}
	fmt.Fprintf(w, "  %s: %d paired alignment rows\n", cx.ID, len(paired.Sets[paired.Queries[0]]))

	hits, err := template.ParseM8(artifactPath(cfg, m8RelPath, cx.ID))
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.OutputRoot, 0o755); err != nil {
		return nil, fmt.Errorf("creating output root %s: %w", cfg.OutputRoot, err)
	}
	tmpDir, err := os.MkdirTemp(cfg.OutputRoot, "."+cx.ID+".staging-")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := os.MkdirAll(filepath.Join(tmpDir, msasDir), 0o755); err != nil {
		return nil, fmt.Errorf("creating msas directory: %w", err)
	}

	// Reconcile each query into its content-addressed alignment table.
	queries := make([]xref.QuerySequence, 0, len(paired.Queries))
	rowCounts := make(map[string]int, len(paired.Queries))
	hashes := make(map[string]string, len(paired.Queries))
	for _, query := range paired.Queries {
		querySeq, rows, err := msa.Merge(query, paired, uniref, env)
		if err != nil {
			return nil, annotate(err, cx.ID)
		}
		basename := msa.ExpectedBasename(querySeq)
		if err := msa.WriteAligned(filepath.Join(tmpDir, msasDir, basename), rows); err != nil {
			return nil, err
		}
		queries = append(queries, xref.QuerySequence{ID: query, Sequence: querySeq})
		rowCounts[query] = len(rows)
		hashes[query] = msa.SequenceHash(querySeq)
	}

	mapping, err := xref.BuildChainMap(queries, cx.Chains)
	if err != nil {
		return nil, annotate(err, cx.ID)
	}

	remapped, err := template.Remap(hits, mapping)
	if err != nil {
		return nil, annotate(err, cx.ID)
	}
	if err := template.WriteM8(filepath.Join(tmpDir, templateName), remapped); err != nil {
		return nil, err
	}

	if err := fasta.WriteFile(filepath.Join(tmpDir, fastaName), cx.Fastas()); err != nil {
		return nil, err
	}

	outDir := filepath.Join(cfg.OutputRoot, cx.ID)
	if err := os.RemoveAll(outDir); err != nil {
		return nil, fmt.Errorf("clearing %s: %w", outDir, err)
	}
	if err := os.Rename(tmpDir, outDir); err != nil {
		return nil, fmt.Errorf("finalizing %s: %w", outDir, err)
	}

	result := &Result{ID: cx.ID, OutputDir: outDir, TemplateHits: len(remapped)}
	for _, q := range queries {
		result.Chains = append(result.Chains, ChainOutcome{
			QueryID:      q.ID,
			ChainID:      mapping[q.ID],
			SequenceHash: hashes[q.ID],
			Rows:         rowCounts[q.ID],
		})
	}
	return result, nil
}

// StageAll processes every complex in order. One identifier's failure is
// recorded and the run continues with the next; the caller decides how to
// surface the collected failures.
func StageAll(cfg types.StageConfig, complexes []types.Complex, w io.Writer) BatchResult {
	var batch BatchResult
	for _, cx := range complexes {
		result, err := StageComplex(cfg, cx, w)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", cx.ID, err)
			batch.Failed++
			batch.Failures = append(batch.Failures, Failure{ID: cx.ID, Err: err})
			continue
		}
		fmt.Fprintf(w, "staged: %s (%d chains, %d alignment rows, %d template hits)\n",
			cx.ID, len(result.Chains), result.MSARows(), result.TemplateHits)
		batch.Staged++
		batch.Results = append(batch.Results, result)
	}
	fmt.Fprintf(w, "\nBatch summary: %d staged, %d failed (total: %d)\n",
		batch.Staged, batch.Failed, batch.Total())
	return batch
}

func artifactPath(cfg types.StageConfig, pattern, id string) string {
	return filepath.Join(cfg.ArtifactRoot, fmt.Sprintf(pattern, id))
}

// annotate stamps the complex identifier onto taxonomy errors that were
// raised below the orchestrator, where the identifier is not known.
func annotate(err error, id string) error {
	switch e := err.(type) {
	case *types.ConsistencyError:
		if e.Identifier == "" {
			e.Identifier = id
		}
		return e
	default:
		return fmt.Errorf("%s: %w", id, err)
	}
}
