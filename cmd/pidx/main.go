// Package main provides the pidx CLI entry point.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/matsen/paperindex/internal/config"
	"github.com/matsen/paperindex/internal/embedding"
	"github.com/matsen/paperindex/internal/query"
	"github.com/matsen/paperindex/internal/store"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
	dataDirFlag string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra errors (bad flags, missing args) are printed here
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pidx",
	Short: "Embedding-indexed store for scientific articles",
	Long: `pidx stores scientific-article records with text embeddings and
answers nearest-neighbor queries over them.

Records are kept in <data-dir>/articles.json together with their
embeddings. The similarity index is rebuilt in memory on every start.
All commands output JSON by default for easy integration with other tools.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		_ = godotenv.Load()
		setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory (default: $PIDX_DATA_DIR, global config, or ./data)")
	rootCmd.Version = Version
}

func setupLogging() {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// resolveDataDir returns the data directory for this invocation.
func resolveDataDir() string {
	return config.ResolveDataDir(dataDirFlag, os.Getenv)
}

// mustLoadConfig loads and validates the data directory's configuration
// with environment overrides applied, exits on error.
func mustLoadConfig(dataDir string) *config.Config {
	cfg, err := config.Load(dataDir)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}
	return cfg
}

// app bundles what most commands need: the resolved data directory, its
// config, the embedding provider and the loaded store.
type app struct {
	dataDir  string
	cfg      *config.Config
	provider embedding.Provider
	store    *store.Store
	status   store.LoadStatus
	closer   func() error
}

// Close releases the provider's cache file.
func (a *app) Close() {
	if a.closer == nil {
		return
	}
	if err := a.closer(); err != nil {
		slog.Warn("closing embedding cache", "error", err)
	}
}

// engine builds a query engine over the store with the configured overfetch.
func (a *app) engine() *query.Engine {
	return query.NewEngine(a.provider, a.store, query.WithOverfetch(a.cfg.Overfetch))
}

// mustOpenApp loads config, builds the provider and loads the snapshot.
// A snapshot that fails to load is reported as a warning and the store
// starts empty.
func mustOpenApp() *app {
	dataDir := resolveDataDir()
	cfg := mustLoadConfig(dataDir)

	provider, closer, err := newProvider(cfg, dataDir, os.Getenv)
	if err != nil {
		exitWithError(ExitConfigError, "creating embedding provider: %v", err)
	}

	st := store.New(provider, dataDir, store.WithLogger(slog.Default()))
	status, err := st.Load()
	if err != nil {
		switch status {
		case store.LoadStale:
			slog.Warn("stored embeddings do not match the active model", "error", err)
		default:
			slog.Warn("snapshot could not be loaded, starting empty", "error", err)
		}
	}
	slog.Debug("loaded store", "data_dir", dataDir, "status", status.String(), "records", st.Len())

	return &app{
		dataDir:  dataDir,
		cfg:      cfg,
		provider: provider,
		store:    st,
		status:   status,
		closer:   closer,
	}
}

// mustBeReady verifies a remote provider before a command embeds text.
func mustBeReady(ctx context.Context, provider embedding.Provider) {
	if err := checkReady(ctx, provider); err != nil {
		exitWithErr(err, "embedding provider not ready")
	}
}
