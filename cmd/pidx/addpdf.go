package main

import (
	"context"
	"strings"

	"github.com/matsen/paperindex/internal/article"
	"github.com/matsen/paperindex/internal/pdf"
	"github.com/spf13/cobra"
)

var (
	addPDFID       string
	addPDFMaxPages int
	addPDFSource   string
)

func init() {
	addPDFCmd.Flags().StringVar(&addPDFID, "id", "", "Override the identifier (default: DOI found in the text)")
	addPDFCmd.Flags().StringVar(&addPDFSource, "source", "", "Journal or venue")
	addPDFCmd.Flags().IntVar(&addPDFMaxPages, "pages", pdf.DefaultMaxPages, "Number of leading pages to read")
	rootCmd.AddCommand(addPDFCmd)
}

var addPDFCmd = &cobra.Command{
	Use:   "add-pdf <file.pdf>",
	Short: "Add an article extracted from a PDF",
	Long: `Add an article extracted from a PDF.

The title, abstract and DOI are read heuristically from the first pages.
The DOI, when found, becomes the article id.`,
	Args: cobra.ExactArgs(1),
	RunE: runAddPDF,
}

func runAddPDF(cmd *cobra.Command, args []string) error {
	candidate, err := pdf.ExtractArticle(args[0], addPDFMaxPages)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	if id := strings.TrimSpace(addPDFID); id != "" {
		candidate.ID = id
	}
	if src := strings.TrimSpace(addPDFSource); src != "" {
		candidate.Source = src
	}

	a := mustOpenApp()
	defer a.Close()

	ctx := context.Background()
	mustBeReady(ctx, a.provider)

	res, err := a.store.Add(ctx, []article.Article{candidate})
	if err != nil {
		exitWithAddErr(err, "adding article", res, a.store.Len())
	}

	resp := newAddResponse(res, a.store.Len(), nil)
	if humanOutput {
		printAddHuman(resp)
		if res.Added > 0 {
			printRecordDetail(candidate.Public())
		}
	} else {
		outputJSON(resp)
	}
	return nil
}
