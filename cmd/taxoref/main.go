// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the taxoref CLI, a resolver that
// finds the original describing publication for taxonomic names.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/taxoref/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the taxoref CLI.
var rootCmd = &cobra.Command{
	Use:   "taxoref",
	Short: "Resolve taxonomic names to their original describing publications",
	Long: `taxoref looks up scientific names across taxonomic registries (GBIF,
ZooBank, WoRMS, a local Paleobiology Database snapshot) and bibliographic
services (CrossRef, the Biodiversity Heritage Library) to find the
publication in which each name was originally described.

Registries often cite modern database compilations instead of the original
description; taxoref detects those mismatches and chases the authority
through the literature instead.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./taxoref.yaml or ~/.config/taxoref/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("taxoref")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "taxoref"))
		}
	}

	viper.SetEnvPrefix("TAXOREF")
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
