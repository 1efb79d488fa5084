// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the chai-stage CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the chai-stage CLI.
var rootCmd = &cobra.Command{
	Use:   "chai-stage",
	Short: "Stage ColabFold outputs for Chai-1",
	Long: `chai-stage converts the output directory of a ColabFold run into the
per-complex layout Chai-1 consumes: an input fasta, one content-addressed
alignment table per chain, and a chain-letter-keyed template hit table.

Pairing is taken verbatim from ColabFold; this is not necessarily the
pairing the model's own MSA server would compute.`,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./chai-stage.yaml or ~/.config/chai-stage/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("chai-stage")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "chai-stage"))
		}
	}

	viper.SetEnvPrefix("CHAI_STAGE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
