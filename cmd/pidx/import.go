package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/matsen/paperindex/internal/importer"
	"github.com/matsen/paperindex/internal/store"
	"github.com/spf13/cobra"
)

var (
	importFormat   string
	importExcludes []string
	importDryRun   bool
)

func init() {
	importCmd.Flags().StringVar(&importFormat, "format", string(importer.FormatAuto), "Input format (auto, json, jsonl, paperpile, s2)")
	importCmd.Flags().StringArrayVar(&importExcludes, "exclude", nil, "Glob of paths to skip (repeatable)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and report without adding")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file-or-glob>...",
	Short: "Import articles from files",
	Long: `Import articles from JSON, JSONL, Paperpile or Semantic Scholar exports.

Arguments may be doublestar globs; quote them so the shell does not expand them.

Examples:
  pidx import articles.json
  pidx import 'exports/**/*.jsonl' --exclude 'exports/old/**'
  pidx import --format paperpile paperpile.json --dry-run`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

// ImportResult is the response for the import command.
type ImportResult struct {
	Files      []ImportFile `json:"files"`
	Parsed     int          `json:"parsed"`
	Added      int          `json:"added"`
	Duplicates int          `json:"duplicates"`
	Persisted  bool         `json:"persisted"`
	Total      int          `json:"total"`
	DryRun     bool         `json:"dry_run,omitempty"`
}

// ImportFile describes one input file.
type ImportFile struct {
	Path   string   `json:"path"`
	Format string   `json:"format"`
	Parsed int      `json:"parsed"`
	Added  int      `json:"added"`
	Errors []string `json:"errors,omitempty"`
}

func runImport(cmd *cobra.Command, args []string) error {
	format, err := importer.ParseFormat(importFormat)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	paths, err := importer.ExpandGlobs(args, importExcludes)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	a := mustOpenApp()
	defer a.Close()

	ctx := context.Background()
	if !importDryRun {
		mustBeReady(ctx, a.provider)
	}

	result := ImportResult{Persisted: true, DryRun: importDryRun}
	bar := newProgressBar(len(paths), "Importing")
	for _, path := range paths {
		candidates, detected, errs := importer.ReadFile(path, format)
		file := ImportFile{Path: path, Format: string(detected), Parsed: len(candidates)}
		for _, e := range errs {
			file.Errors = append(file.Errors, e.Error())
		}
		result.Parsed += len(candidates)

		if !importDryRun && len(candidates) > 0 {
			res, err := a.store.Add(ctx, candidates)
			if err != nil {
				kept := store.AddResult{
					Added:      result.Added + res.Added,
					Duplicates: result.Duplicates + res.Duplicates,
					Persisted:  result.Persisted && (res.Added == 0 || res.Persisted),
				}
				exitWithAddErr(err, fmt.Sprintf("importing %s", path), kept, a.store.Len())
			}
			file.Added = res.Added
			result.Added += res.Added
			result.Duplicates += res.Duplicates
			if res.Added > 0 && !res.Persisted {
				result.Persisted = false
			}
		}
		slog.Debug("imported file", "path", path, "format", detected, "parsed", file.Parsed, "added", file.Added)

		result.Files = append(result.Files, file)
		if bar != nil {
			bar.Add(1)
		}
	}
	result.Total = a.store.Len()

	if result.Parsed == 0 {
		if humanOutput {
			printImportHuman(result)
		} else {
			outputJSON(result)
		}
		exitWithError(ExitDataError, "no valid articles found in %d files", len(paths))
	}

	if humanOutput {
		printImportHuman(result)
	} else {
		outputJSON(result)
	}
	return nil
}

func printImportHuman(r ImportResult) {
	for _, f := range r.Files {
		fmt.Printf("%s (%s): %d parsed, %d added\n", f.Path, f.Format, f.Parsed, f.Added)
		for _, e := range f.Errors {
			fmt.Printf("  - %s\n", e)
		}
	}
	if r.DryRun {
		fmt.Printf("\nDry run: %d articles would be considered\n", r.Parsed)
		return
	}
	fmt.Printf("\nAdded %d articles (%d duplicates), %d total\n", r.Added, r.Duplicates, r.Total)
	if !r.Persisted {
		fmt.Println("warning: some records could not be saved")
	}
}
