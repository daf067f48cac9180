package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/matsen/paperindex/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON HTTP API",
	Long: `Serve the store over HTTP.

Routes:
  GET    /api/health
  GET    /api/search?q=...&k=3&author=&source=&pub_date_after=
  GET    /api/stats?top_n=10
  GET    /api/articles/{id}
  POST   /api/articles        JSON array or object of articles
  POST   /api/articles/pdf    raw PDF body
  DELETE /api/articles`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	a := mustOpenApp()
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := checkReady(ctx, a.provider); err != nil {
		// Search and add report the failure per request
		slog.Warn("embedding provider not ready", "error", err)
	}

	addr := serveAddr
	if addr == "" {
		addr = a.cfg.Server.Addr
	}

	srv := server.New(a.store, a.engine(),
		server.WithLogger(slog.Default()),
		server.WithDefaultK(a.cfg.DefaultK),
		server.WithTopN(a.cfg.TopN),
		server.WithAllowedOrigins(a.cfg.Server.AllowedOrigins),
	)
	if err := srv.ListenAndServe(ctx, addr); err != nil {
		exitWithError(ExitError, "serving: %v", err)
	}
	return nil
}
