package main

import (
	"fmt"
	"log/slog"

	"github.com/matsen/paperindex/internal/article"
	"github.com/matsen/paperindex/internal/config"
	"github.com/matsen/paperindex/internal/storage"
	"github.com/spf13/cobra"
)

var findLimit int

func init() {
	findCmd.Flags().IntVar(&findLimit, "limit", DefaultFindLimit, "Maximum results to return")
	rootCmd.AddCommand(findCmd)
}

var findCmd = &cobra.Command{
	Use:   "find <keywords>",
	Short: "Search articles by keyword",
	Long: `Search titles, abstracts, authors and sources by keyword.

Uses the SQLite full-text catalog, which is rebuilt automatically when the
snapshot has changed since the last search.

Examples:
  pidx find vaccine
  pidx find "protein structure"`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func runFind(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()
	defer a.Close()

	db := mustSyncCatalog(a)
	defer db.Close()

	records, err := db.Search(args[0], findLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	// Empty result is not an error
	views := make([]article.Record, 0, len(records))
	for _, r := range records {
		views = append(views, r.Public())
	}

	if humanOutput {
		if len(views) == 0 {
			fmt.Println("No articles found")
		} else {
			fmt.Printf("Found %d articles:\n\n", len(views))
			for i, v := range views {
				printRecordSummary(i+1, v)
				fmt.Println()
			}
		}
	} else {
		outputJSON(views)
	}
	return nil
}

// mustSyncCatalog opens the catalog and rebuilds it if the snapshot changed.
func mustSyncCatalog(a *app) *storage.DB {
	if err := ensureDir(a.dataDir); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	db, err := storage.OpenDB(config.CatalogPath(a.dataDir))
	if err != nil {
		exitWithError(ExitError, "opening catalog: %v", err)
	}

	hash, err := storage.SnapshotHash(a.dataDir)
	if err != nil {
		db.Close()
		exitWithError(ExitError, "hashing snapshot: %v", err)
	}
	rebuilt, err := db.Sync(a.store.Records(), hash)
	if err != nil {
		db.Close()
		exitWithError(ExitError, "syncing catalog: %v", err)
	}
	if rebuilt {
		slog.Debug("rebuilt catalog", "records", a.store.Len())
	}
	return db
}
