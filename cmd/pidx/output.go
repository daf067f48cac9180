package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/matsen/paperindex/internal/article"
	"github.com/matsen/paperindex/internal/config"
	"github.com/matsen/paperindex/internal/embedding"
	"github.com/matsen/paperindex/internal/store"
	"github.com/schollz/progressbar/v3"
)

// Constants for output formatting.
const (
	DefaultFindLimit = 50 // Default limit for keyword search

	SummaryTitleLen = 70 // Title truncation in result summaries
	TextWrapWidth   = 68 // Abstract wrap width in detail views
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// exitWithErr reports err with context and exits with the code matching
// its cause.
func exitWithErr(err error, context string) {
	exitWithError(exitCodeFor(err), "%s: %v", context, err)
}

// exitWithAddErr reports a failed add together with what the store kept
// before the failure.
func exitWithAddErr(err error, context string, res store.AddResult, total int) {
	resp := addErrorResponse(err, context, res, total)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", resp.Error)
		if res.Added > 0 {
			fmt.Fprintf(os.Stderr, "%d records were added before the failure (saved: %t)\n", res.Added, res.Persisted)
		}
	} else {
		outputJSON(resp)
	}
	os.Exit(exitCodeFor(err))
}

func addErrorResponse(err error, context string, res store.AddResult, total int) ErrorResponse {
	partial := newAddResponse(res, total, nil)
	partial.Message = ""
	return ErrorResponse{
		Error:   fmt.Sprintf("%s: %v", context, err),
		Partial: &partial,
	}
}

// exitCodeFor maps an error to the CLI exit code.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, store.ErrIndexStale):
		return ExitIndexStale
	case errors.Is(err, embedding.ErrModelNotFound):
		return ExitModelNotFound
	case errors.Is(err, embedding.ErrUnavailable):
		return ExitUnavailable
	case errors.Is(err, config.ErrUnknownKey):
		return ExitConfigError
	default:
		return ExitError
	}
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error   string       `json:"error"`
	Partial *AddResponse `json:"partial,omitempty"` // Set when an add failed partway
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
}

// AddResponse reports how many candidates were added.
type AddResponse struct {
	Added      int      `json:"added"`
	Duplicates int      `json:"duplicates"`
	Persisted  bool     `json:"persisted"`
	Total      int      `json:"total"`
	Message    string   `json:"message,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

func newAddResponse(res store.AddResult, total int, errs []error) AddResponse {
	resp := AddResponse{
		Added:      res.Added,
		Duplicates: res.Duplicates,
		Persisted:  res.Persisted,
		Total:      total,
	}
	if res.NoNew() {
		resp.Message = "no new records"
	}
	for _, e := range errs {
		resp.Errors = append(resp.Errors, e.Error())
	}
	return resp
}

func printAddHuman(resp AddResponse) {
	if resp.Message != "" {
		fmt.Printf("No new records (%d duplicates)\n", resp.Duplicates)
	} else {
		fmt.Printf("Added %d records (%d duplicates skipped), %d total\n", resp.Added, resp.Duplicates, resp.Total)
	}
	if !resp.Persisted && resp.Added > 0 {
		fmt.Fprintln(os.Stderr, "warning: records were added in memory but could not be saved")
	}
	for _, e := range resp.Errors {
		fmt.Fprintf(os.Stderr, "  skipped: %s\n", e)
	}
}

// printResultsHuman prints ranked search results.
func printResultsHuman(results []article.Result) {
	if len(results) == 0 {
		fmt.Println("No matching articles")
		return
	}
	fmt.Printf("Found %d articles:\n\n", len(results))
	for i, r := range results {
		printRecordSummary(i+1, r.Record)
		fmt.Printf("    distance: %.4f\n\n", r.Score)
	}
}

// printRecordSummary prints a numbered one-article summary.
func printRecordSummary(num int, r article.Record) {
	label := r.ID
	if label == "" {
		label = r.Key
	}
	fmt.Printf("[%d] %s\n", num, label)
	fmt.Printf("    %s\n", truncateString(r.Title, SummaryTitleLen))
	fmt.Printf("    %s\n", formatAuthorsShort(r.Authors, 3))
	if r.Source != "" {
		fmt.Printf("    %s (%s)\n", r.Source, r.PubDate.String())
	} else if !r.PubDate.IsZero() {
		fmt.Printf("    (%s)\n", r.PubDate.String())
	}
}

// printRecordDetail prints every field of a record.
func printRecordDetail(r article.Record) {
	fmt.Printf("%s\n\n", r.Title)
	if r.ID != "" {
		fmt.Printf("ID:       %s\n", r.ID)
	}
	if r.Key != "" {
		fmt.Printf("Key:      %s\n", r.Key)
	}
	fmt.Printf("Authors:  %s\n", r.Authors.String())
	if r.Source != "" {
		fmt.Printf("Source:   %s\n", r.Source)
	}
	if !r.PubDate.IsZero() {
		fmt.Printf("Date:     %s\n", r.PubDate.String())
	}
	if !r.AddedAt.IsZero() {
		fmt.Printf("Added:    %s\n", r.AddedAt.Format(time.RFC3339))
	}
	if r.Abstract != "" {
		fmt.Printf("\nAbstract:\n  %s\n", wrapText(r.Abstract, TextWrapWidth, "  "))
	}
}

// formatAuthorsShort joins up to maxCount authors and appends "et al.".
func formatAuthorsShort(authors article.Authors, maxCount int) string {
	if len(authors) == 0 {
		return article.UnknownAuthor
	}
	var names []string
	for i, a := range authors {
		if i >= maxCount {
			names = append(names, "et al.")
			break
		}
		names = append(names, a)
	}
	return strings.Join(names, ", ")
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}

// wrapText wraps text to the specified width with indentation on subsequent lines.
func wrapText(text string, width int, indent string) string {
	if len(text) <= width {
		return text
	}

	var lines []string
	var currentLine strings.Builder
	for _, word := range strings.Fields(text) {
		if currentLine.Len() == 0 {
			currentLine.WriteString(word)
		} else if currentLine.Len()+1+len(word) <= width {
			currentLine.WriteString(" ")
			currentLine.WriteString(word)
		} else {
			lines = append(lines, currentLine.String())
			currentLine.Reset()
			currentLine.WriteString(word)
		}
	}
	if currentLine.Len() > 0 {
		lines = append(lines, currentLine.String())
	}

	return strings.Join(lines, "\n"+indent)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// formatBytes formats bytes in a human-readable way.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// newProgressBar returns a stderr progress bar for human output, or nil.
func newProgressBar(total int, description string) *progressbar.ProgressBar {
	if !humanOutput || total == 0 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]"+description+"[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(os.Stderr)
		}),
	)
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	return nil
}
