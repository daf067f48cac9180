package main

import (
	"fmt"

	"github.com/matsen/paperindex/internal/config"
	"github.com/matsen/paperindex/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the keyword catalog from the snapshot",
	Long: `Rebuild the SQLite keyword catalog from the record snapshot.

Use this if the catalog becomes corrupted. 'pidx find' keeps it in sync
on its own otherwise.`,
	Args: cobra.NoArgs,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status   string `json:"status"`
	Articles int    `json:"articles"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()
	defer a.Close()

	if err := ensureDir(a.dataDir); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	db, err := storage.OpenDB(config.CatalogPath(a.dataDir))
	if err != nil {
		exitWithError(ExitError, "opening catalog: %v", err)
	}
	defer db.Close()

	hash, err := storage.SnapshotHash(a.dataDir)
	if err != nil {
		exitWithError(ExitError, "hashing snapshot: %v", err)
	}
	count, err := db.RebuildAt(a.store.Records(), hash)
	if err != nil {
		exitWithError(ExitDataError, "rebuilding catalog: %v", err)
	}

	if humanOutput {
		fmt.Printf("Rebuilt catalog with %d articles\n", count)
	} else {
		outputJSON(RebuildResult{Status: "rebuilt", Articles: count})
	}
	return nil
}
