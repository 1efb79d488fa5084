// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/chai-stage/internal/manifest"
)

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Inspect the staging manifest of an output directory",
}

var manifestListCmd = &cobra.Command{
	Use:   "list OUTPUT_ROOT",
	Short: "List recorded staging outcomes",
	Args:  cobra.ExactArgs(1),
	RunE:  runManifestList,
}

var manifestExportCmd = &cobra.Command{
	Use:   "export OUTPUT_ROOT",
	Short: "Write the manifest to OUTPUT_ROOT/manifest/export.yaml",
	Args:  cobra.ExactArgs(1),
	RunE:  runManifestExport,
}

func init() {
	manifestCmd.AddCommand(manifestListCmd)
	manifestCmd.AddCommand(manifestExportCmd)
	rootCmd.AddCommand(manifestCmd)
}

func runManifestList(cmd *cobra.Command, args []string) error {
	store, err := manifest.NewStore(args[0])
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(context.Background())
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No staged complexes recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-12s  %-7s  %-6s  %-9s  %-9s  %-20s  %s\n",
		"ID", "Status", "Chains", "MSA rows", "Templates", "Staged at", "Error")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, e := range entries {
		errMsg := e.Error
		if len(errMsg) > 40 {
			errMsg = errMsg[:37] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-12s  %-7s  %-6d  %-9d  %-9d  %-20s  %s\n",
			e.ID, e.Status, e.ChainCount, e.MSARows, e.TemplateHits, e.StagedAt, errMsg)
	}
	fmt.Fprintf(os.Stdout, "\n%d complexes\n", len(entries))
	return nil
}

func runManifestExport(cmd *cobra.Command, args []string) error {
	store, err := manifest.NewStore(args[0])
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ExportYAML(context.Background()); err != nil {
		return err
	}
	fmt.Printf("Exported to %s/manifest/export.yaml\n", args[0])
	return nil
}
