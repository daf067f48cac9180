package main

import (
	"fmt"

	"github.com/matsen/paperindex/internal/store"
	"github.com/spf13/cobra"
)

var statsTopN int

func init() {
	statsCmd.Flags().IntVar(&statsTopN, "top", 0, "Number of journals to list (default: top_n from config)")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarize the stored articles",
	Long: `Summarize the stored articles: totals, the most frequent journals and the
distribution of publication years. Works on a stale store.`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()
	defer a.Close()

	topN := statsTopN
	if !cmd.Flags().Changed("top") {
		topN = a.cfg.TopN
	}
	if topN < 1 {
		exitWithError(ExitError, "--top must be positive, got %d", topN)
	}

	stats := a.store.Statistics(topN)
	if humanOutput {
		printStatsHuman(stats)
	} else {
		outputJSON(stats)
	}
	return nil
}

func printStatsHuman(s store.Stats) {
	fmt.Printf("Papers:   %d\n", s.TotalPapers)
	fmt.Printf("Journals: %d\n", s.TotalJournals)
	fmt.Printf("Authors:  %d\n", s.TotalAuthors)
	if s.Stale {
		fmt.Println("Index:    stale (run 'pidx reembed')")
	}

	if len(s.TopJournals) > 0 {
		fmt.Println("\nTop journals:")
		for _, j := range s.TopJournals {
			fmt.Printf("  %4d  %s\n", j.Count, j.Source)
		}
	}
	if len(s.YearsDistribution) > 0 {
		fmt.Println("\nYears:")
		for _, y := range s.YearsDistribution {
			fmt.Printf("  %s  %d\n", y.Year, y.Count)
		}
	}
}
