package main

import (
	"bufio"
	"fmt"
	"os"

	"github.com/matsen/paperindex/internal/article"
	"github.com/matsen/paperindex/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput     string
	exportEmbeddings bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	exportCmd.Flags().BoolVar(&exportEmbeddings, "embeddings", false, "Include embedding vectors")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export articles as JSONL",
	Long: `Export every stored article as one JSON object per line.

The output can be read back with 'pidx import'. Embeddings are left out
unless --embeddings is given; import always recomputes them.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()
	defer a.Close()

	out := os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			exitWithError(ExitError, "creating output file: %v", err)
		}
		defer f.Close()
		out = f
	}
	w := bufio.NewWriter(out)

	var err error
	if exportEmbeddings {
		err = storage.WriteJSONL(w, a.store.Records())
	} else {
		records := a.store.Records()
		views := make([]article.Record, len(records))
		for i, r := range records {
			views[i] = r.Public()
		}
		err = storage.WriteJSONL(w, views)
	}
	if err == nil {
		err = w.Flush()
	}
	if err != nil {
		exitWithError(ExitError, "writing export: %v", err)
	}

	if exportOutput != "" {
		if humanOutput {
			fmt.Printf("Exported %d articles to %s\n", a.store.Len(), exportOutput)
		} else {
			outputJSON(StatusResponse{Status: "exported", Path: exportOutput})
		}
	}
	return nil
}
