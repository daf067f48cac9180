package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/matsen/paperindex/internal/semantic"
	"github.com/matsen/paperindex/internal/storage"
	"github.com/spf13/cobra"
)

var reembedNoProgress bool

func init() {
	reembedCmd.Flags().BoolVar(&reembedNoProgress, "no-progress", false, "Suppress progress output")
	rootCmd.AddCommand(reembedCmd)
}

var reembedCmd = &cobra.Command{
	Use:   "reembed",
	Short: "Recompute every embedding with the active model",
	Long: `Recompute the embedding of every stored article with the configured
provider, rebuild the index and save.

Run this after changing embedding.provider, embedding.model or
embedding.dimensions. Until then search and add report a stale index.
Interrupting leaves the stored embeddings untouched.`,
	Args: cobra.NoArgs,
	RunE: runReembed,
}

// ReembedResult is the response for the reembed command.
type ReembedResult struct {
	Status          string  `json:"status"`
	Embedded        int     `json:"embedded"`
	Blank           int     `json:"blank"`
	Model           string  `json:"model"`
	DurationSeconds float64 `json:"duration_seconds"`
	SnapshotBytes   int64   `json:"snapshot_bytes"`
	Persisted       bool    `json:"persisted"`
}

func runReembed(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	mustBeReady(ctx, a.provider)

	var progress semantic.ProgressReporter
	if !reembedNoProgress {
		if bar := newProgressBar(a.store.Len(), "Embedding"); bar != nil {
			progress = semantic.ProgressFunc(func(current, total int) {
				bar.Set(current)
			})
		}
	}

	stats, err := a.store.Reembed(ctx, progress)
	if err != nil {
		exitWithErr(err, "re-embedding")
	}

	size, err := storage.SnapshotSize(a.dataDir)
	if err != nil {
		size = 0 // Non-fatal
	}

	if humanOutput {
		fmt.Printf("\nRe-embed complete:\n")
		fmt.Printf("  Articles embedded: %d\n", stats.Embedded)
		fmt.Printf("  Without text: %d\n", stats.Blank)
		fmt.Printf("  Time elapsed: %s\n", formatDuration(stats.Duration))
		fmt.Printf("  Snapshot size: %s\n", formatBytes(size))
		fmt.Printf("  Model: %s\n", stats.Model)
		if !stats.Persisted {
			fmt.Println("  Warning: snapshot not saved; see the log for details")
		}
	} else {
		outputJSON(ReembedResult{
			Status:          "complete",
			Embedded:        stats.Embedded,
			Blank:           stats.Blank,
			Model:           stats.Model,
			DurationSeconds: stats.Duration.Seconds(),
			SnapshotBytes:   size,
			Persisted:       stats.Persisted,
		})
	}
	return nil
}
