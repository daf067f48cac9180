// Package server exposes the store and query engine as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/matsen/paperindex/internal/query"
	"github.com/matsen/paperindex/internal/store"
	"github.com/rs/cors"
)

// Defaults for the HTTP surface.
const (
	DefaultMaxUploadSize = 32 << 20 // 32MB, enough for a typical article PDF
	DefaultMaxBodySize   = 8 << 20
	shutdownTimeout      = 10 * time.Second
)

// Server routes API requests to a store and its query engine.
type Server struct {
	store   *store.Store
	engine  *query.Engine
	router  *mux.Router
	handler http.Handler

	defaultK       int
	topN           int
	allowedOrigins []string
	maxUpload      int64
	logger         *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithDefaultK sets the result count used when a search omits k.
func WithDefaultK(k int) Option {
	return func(s *Server) {
		if k > 0 {
			s.defaultK = k
		}
	}
}

// WithTopN sets the journal count used when a stats request omits top_n.
func WithTopN(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithAllowedOrigins sets the CORS origins. An empty list allows any origin.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithMaxUploadSize caps the PDF upload body.
func WithMaxUploadSize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// New builds a Server with its routes and middleware installed.
func New(st *store.Store, engine *query.Engine, opts ...Option) *Server {
	s := &Server{
		store:     st,
		engine:    engine,
		router:    mux.NewRouter(),
		defaultK:  3,
		topN:      store.DefaultTopN,
		maxUpload: DefaultMaxUploadSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.setupRoutes()
	s.router.Use(s.loggingMiddleware)

	origins := s.allowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.handler = c.Handler(s.router)
	return s
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/search", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	articles := api.PathPrefix("/articles").Subrouter()
	articles.HandleFunc("", s.handleAddArticles).Methods(http.MethodPost)
	articles.HandleFunc("", s.handleClear).Methods(http.MethodDelete)
	articles.HandleFunc("/pdf", s.handleAddPDF).Methods(http.MethodPost)
	articles.HandleFunc("/{id}", s.handleGetArticle).Methods(http.MethodGet)
}

// Handler returns the root handler, CORS included.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving API", "addr", ln.Addr().String(), "records", s.store.Len())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// responseWriter captures the status code for request logging.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start))
	})
}
