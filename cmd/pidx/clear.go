package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearYes bool

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "Confirm removing every article")
	rootCmd.AddCommand(clearCmd)
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every article and the snapshot",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

// ClearResult is the response for the clear command.
type ClearResult struct {
	Status  string `json:"status"`
	Removed int    `json:"removed"`
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearYes {
		exitWithError(ExitError, "clear removes every stored article; pass --yes to confirm")
	}

	a := mustOpenApp()
	defer a.Close()

	removed := a.store.Len()
	if err := a.store.Clear(); err != nil {
		exitWithErr(err, "clearing store")
	}

	if humanOutput {
		fmt.Printf("Removed %d articles\n", removed)
	} else {
		outputJSON(ClearResult{Status: "cleared", Removed: removed})
	}
	return nil
}
