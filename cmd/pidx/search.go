package main

import (
	"context"
	"strings"

	"github.com/matsen/paperindex/internal/article"
	"github.com/matsen/paperindex/internal/query"
	"github.com/spf13/cobra"
)

var (
	searchK            int
	searchAuthor       string
	searchSource       string
	searchPubDateAfter string
)

func init() {
	searchCmd.Flags().IntVarP(&searchK, "k", "k", 0, "Number of results (default: default_k from config)")
	searchCmd.Flags().StringVar(&searchAuthor, "author", "", "Keep results whose authors contain this text")
	searchCmd.Flags().StringVar(&searchSource, "source", "", "Keep results whose source contains this text")
	searchCmd.Flags().StringVar(&searchPubDateAfter, "pub-date-after", "", "Keep results published on or after this date")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find the articles nearest to a query",
	Long: `Find the articles whose embeddings are nearest to the query text.

Results are ordered by ascending squared L2 distance, reported as score.
Filters are applied after ranking; undated articles pass the date filter.

Examples:
  pidx search "mRNA vaccine efficacy"
  pidx search "protein folding" -k 5 --source nature
  pidx search "influenza" --pub-date-after 2022-01-01 --author smith`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")

	a := mustOpenApp()
	defer a.Close()

	k := searchK
	if !cmd.Flags().Changed("k") {
		k = a.cfg.DefaultK
	}

	filters := query.ParseFilters(map[string]string{
		query.KeyAuthor:       searchAuthor,
		query.KeySource:       searchSource,
		query.KeyPubDateAfter: searchPubDateAfter,
	})

	ctx := context.Background()
	engine := a.engine()

	var (
		results []article.Result
		err     error
	)
	if filters.IsEmpty() {
		results, err = engine.Search(ctx, text, k)
	} else {
		results, err = engine.FilteredSearch(ctx, text, filters, k)
	}
	if err != nil {
		exitWithErr(err, "searching")
	}

	// Empty result is not an error
	if results == nil {
		results = []article.Result{}
	}

	if humanOutput {
		printResultsHuman(results)
	} else {
		outputJSON(results)
	}
	return nil
}
