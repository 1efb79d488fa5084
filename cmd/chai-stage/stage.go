// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/chai-stage/internal/manifest"
	"github.com/pdiddy/chai-stage/internal/stage"
	"github.com/pdiddy/chai-stage/pkg/types"
)

var stageCmd = &cobra.Command{
	Use:   "stage ARTIFACT_ROOT OUTPUT_ROOT",
	Short: "Convert a ColabFold output directory into staged model inputs",
	Long: `Stage reads the complex table and per-identifier alignment artifacts
under ARTIFACT_ROOT and writes one staged directory per complex under
OUTPUT_ROOT (chai.fasta, msas/, all_template_hits.m8).

A malformed complex table aborts the run. A failure inside one complex
is reported, recorded in the staging manifest, and does not stop the
remaining complexes; the command exits non-zero if anything failed.`,
	Args: cobra.ExactArgs(2),
	RunE: runStage,
}

func init() {
	stageCmd.Flags().String("complex-table", "", "complex table csv (default: the single csv under ARTIFACT_ROOT)")
	stageCmd.Flags().Bool("no-manifest", false, "do not record outcomes in the staging manifest")

	rootCmd.AddCommand(stageCmd)
}

func runStage(cmd *cobra.Command, args []string) error {
	cfg := stageConfig(cmd, args)

	tablePath := cfg.ComplexTable
	if tablePath == "" {
		var err error
		tablePath, err = stage.FindComplexTable(cfg.ArtifactRoot)
		if err != nil {
			return err
		}
	}
	complexes, err := stage.ReadComplexTable(tablePath)
	if err != nil {
		return err
	}

	batch := stage.StageAll(cfg, complexes, os.Stdout)

	if !cfg.NoManifest {
		if err := recordBatch(cfg.OutputRoot, batch); err != nil {
			fmt.Fprintf(os.Stderr, "warning: manifest update failed: %v\n", err)
		}
	}

	if batch.HasFailures() {
		return fmt.Errorf("%d complex(es) failed staging", batch.Failed)
	}
	return nil
}

// recordBatch writes the batch outcome into the staging manifest and
// refreshes the YAML export. Manifest problems never fail the staging run.
func recordBatch(outputRoot string, batch stage.BatchResult) error {
	store, err := manifest.NewStore(outputRoot)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	for _, result := range batch.Results {
		if err := store.Record(ctx, result); err != nil {
			return err
		}
	}
	for _, failure := range batch.Failures {
		if err := store.RecordFailure(ctx, failure.ID, failure.Err); err != nil {
			return err
		}
	}
	return store.ExportYAML(ctx)
}

func stageConfig(cmd *cobra.Command, args []string) types.StageConfig {
	complexTable, _ := cmd.Flags().GetString("complex-table")
	noManifest, _ := cmd.Flags().GetBool("no-manifest")

	return types.StageConfig{
		ArtifactRoot: args[0],
		OutputRoot:   args[1],
		ComplexTable: complexTable,
		NoManifest:   noManifest,
	}
}
