package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/matsen/paperindex/internal/article"
	"github.com/matsen/paperindex/internal/importer"
	"github.com/spf13/cobra"
)

var (
	addID       string
	addTitle    string
	addAbstract string
	addAuthors  string
	addSource   string
	addPubDate  string
	addFile     string
)

func init() {
	addCmd.Flags().StringVar(&addID, "id", "", "External identifier (PMID, DOI, ...); duplicates are skipped")
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "Article title")
	addCmd.Flags().StringVarP(&addAbstract, "abstract", "a", "", "Article abstract")
	addCmd.Flags().StringVar(&addAuthors, "authors", "", "Author list, comma or semicolon separated")
	addCmd.Flags().StringVar(&addSource, "source", "", "Journal or venue")
	addCmd.Flags().StringVar(&addPubDate, "pub-date", "", "Publication date (YYYY, YYYY-MM or YYYY-MM-DD)")
	addCmd.Flags().StringVarP(&addFile, "file", "f", "", "Read a JSON array or object of articles from a file ('-' for stdin)")
	rootCmd.AddCommand(addCmd)
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add articles to the store",
	Long: `Add articles to the store, embedding their title and abstract.

Records whose id is already stored are skipped. Records without an id are
always added.

Examples:
  pidx add --id 123 --title "Vaccine study" --abstract "..." --pub-date 2023-01-15
  pidx add --file articles.json
  cat articles.json | pidx add --file -`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	candidates, parseErrs := addCandidates()
	if len(candidates) == 0 {
		if len(parseErrs) > 0 {
			exitWithError(ExitDataError, "no valid articles: %v", parseErrs[0])
		}
		exitWithError(ExitDataError, "an article needs a title or an abstract")
	}

	a := mustOpenApp()
	defer a.Close()

	ctx := context.Background()
	mustBeReady(ctx, a.provider)

	res, err := a.store.Add(ctx, candidates)
	if err != nil {
		exitWithAddErr(err, "adding articles", res, a.store.Len())
	}

	resp := newAddResponse(res, a.store.Len(), parseErrs)
	if humanOutput {
		printAddHuman(resp)
	} else {
		outputJSON(resp)
	}
	return nil
}

// addCandidates builds candidates from --file or from the field flags.
func addCandidates() ([]article.Article, []error) {
	if addFile != "" {
		if addFile == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				exitWithError(ExitError, "reading stdin: %v", err)
			}
			return importer.Parse(data, importer.DetectFormat("", data))
		}
		candidates, _, errs := importer.ReadFile(addFile, importer.FormatAuto)
		return candidates, errs
	}

	if strings.TrimSpace(addTitle) == "" && strings.TrimSpace(addAbstract) == "" {
		return nil, nil
	}
	authors := article.ParseAuthors(addAuthors)
	if len(authors) == 0 {
		authors = article.Authors{article.UnknownAuthor}
	}
	return []article.Article{{
		ID:       strings.TrimSpace(addID),
		Title:    strings.TrimSpace(addTitle),
		Abstract: strings.TrimSpace(addAbstract),
		Authors:  authors,
		Source:   strings.TrimSpace(addSource),
		PubDate:  article.ParsePubDate(addPubDate),
	}}, nil
}
