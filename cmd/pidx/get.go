package main

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a single article by ID",
	Long: `Get a single article by its external identifier.

Example:
  pidx get 10.1038/s41586-021-03819-2`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()
	defer a.Close()

	id := args[0]
	rec, ok := a.store.Get(id)
	if !ok {
		exitWithError(ExitError, "article not found: %s", id)
	}

	if humanOutput {
		printRecordDetail(rec.Public())
	} else {
		outputJSON(rec.Public())
	}
	return nil
}
