package main

import (
	"fmt"
	"os"

	"github.com/matsen/paperindex/internal/config"
	"github.com/matsen/paperindex/internal/store"
	"github.com/spf13/cobra"
)

var (
	initProvider string
	initModel    string
)

func init() {
	initCmd.Flags().StringVar(&initProvider, "provider", config.ProviderHash, "Embedding provider (hash, ollama, openai)")
	initCmd.Flags().StringVar(&initModel, "model", "", "Embedding model (provider default when empty)")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a data directory",
	Long: `Initialize a data directory.

Creates:
  <data-dir>/
  ├── config.yml      # Default config
  └── articles.json   # Empty snapshot`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	dataDir := resolveDataDir()

	if _, err := os.Stat(config.ConfigPath(dataDir)); err == nil {
		exitWithError(ExitError, "%s already contains a pidx data directory", dataDir)
	}

	cfg := config.Defaults()
	if err := cfg.Set("embedding.provider", initProvider); err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	cfg.Embedding.Model = initModel
	if err := cfg.Save(dataDir); err != nil {
		exitWithError(ExitError, "%v", err)
	}

	provider, closer, err := newProvider(cfg, dataDir, os.Getenv)
	if err != nil {
		exitWithError(ExitConfigError, "creating embedding provider: %v", err)
	}
	defer closer()

	if err := store.New(provider, dataDir).Save(); err != nil {
		exitWithError(ExitError, "writing snapshot: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized pidx data directory in %s (provider %s)\n", dataDir, cfg.Embedding.Provider)
	} else {
		outputJSON(StatusResponse{Status: "initialized", Path: dataDir})
	}
	return nil
}
