package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/matsen/paperindex/internal/article"
	"github.com/matsen/paperindex/internal/embedding"
	"github.com/matsen/paperindex/internal/importer"
	"github.com/matsen/paperindex/internal/pdf"
	"github.com/matsen/paperindex/internal/query"
	"github.com/matsen/paperindex/internal/store"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`

	// Partial reports what an add request kept before it failed.
	Partial *AddResponse `json:"partial,omitempty"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// HealthResponse reports whether the store is usable.
type HealthResponse struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
	Model   string `json:"model"`
	Stale   bool   `json:"stale,omitempty"`
}

// SearchResponse wraps ranked results.
type SearchResponse struct {
	Query   string           `json:"query"`
	K       int              `json:"k"`
	Filters *query.Filters   `json:"filters,omitempty"`
	Results []article.Result `json:"results"`
}

// AddResponse reports the outcome of an add request.
type AddResponse struct {
	Added      int      `json:"added"`
	Duplicates int      `json:"duplicates"`
	Persisted  bool     `json:"persisted"`
	Message    string   `json:"message,omitempty"`
	Skipped    []string `json:"skipped,omitempty"`
}

// StatusResponse is a generic acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.store.Stale() {
		status = "stale"
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  status,
		Records: s.store.Len(),
		Model:   s.store.ModelName(),
		Stale:   s.store.Stale(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	text := strings.TrimSpace(params.Get("q"))
	if text == "" {
		writeError(w, http.StatusBadRequest, "missing_query", "query parameter q is required")
		return
	}

	k := s.defaultK
	if raw := params.Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_k", fmt.Sprintf("k must be an integer, got %q", raw))
			return
		}
		k = n
	}

	filters := query.ParseFilters(map[string]string{
		query.KeyPubDateAfter: params.Get(query.KeyPubDateAfter),
		query.KeyAuthor:       params.Get(query.KeyAuthor),
		query.KeySource:       params.Get(query.KeySource),
	})

	var (
		results []article.Result
		err     error
	)
	resp := SearchResponse{Query: text, K: k}
	if filters.IsEmpty() {
		results, err = s.engine.Search(r.Context(), text, k)
	} else {
		resp.Filters = &filters
		results, err = s.engine.FilteredSearch(r.Context(), text, filters, k)
	}
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	if results == nil {
		results = []article.Result{}
	}
	resp.Results = results
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	topN := s.topN
	if raw := r.URL.Query().Get("top_n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid_top_n", fmt.Sprintf("top_n must be a positive integer, got %q", raw))
			return
		}
		topN = n
	}
	writeJSON(w, http.StatusOK, s.store.Statistics(topN))
}

func (s *Server) handleAddArticles(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, DefaultMaxBodySize))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", err.Error())
		return
	}

	candidates, errs := importer.Parse(data, importer.FormatJSON)
	if len(candidates) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_articles", "no valid articles in request", errorStrings(errs)...)
		return
	}
	s.addCandidates(w, r, candidates, errs)
}

func (s *Server) handleAddPDF(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", err.Error())
		return
	}
	if len(data) == 0 {
		writeError(w, http.StatusBadRequest, "empty_body", "request body must contain a PDF")
		return
	}

	a, err := pdf.ExtractArticleReader(bytes.NewReader(data), int64(len(data)), pdf.DefaultMaxPages)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "pdf_extraction_failed", err.Error())
		return
	}
	if id := strings.TrimSpace(r.URL.Query().Get("id")); id != "" {
		a.ID = id
	}
	s.addCandidates(w, r, []article.Article{a}, nil)
}

func (s *Server) addCandidates(w http.ResponseWriter, r *http.Request, candidates []article.Article, skipped []error) {
	res, err := s.store.Add(r.Context(), candidates)
	resp := AddResponse{
		Added:      res.Added,
		Duplicates: res.Duplicates,
		Persisted:  res.Persisted,
		Skipped:    errorStrings(skipped),
	}
	if err != nil {
		// Records embedded before the failure are kept.
		if res.Added > 0 {
			s.logger.Warn("partial add", "added", res.Added, "error", err)
		}
		status, apiErr := s.storeError(err)
		apiErr.Partial = &resp
		writeJSON(w, status, errorResponse{Error: apiErr})
		return
	}

	if res.NoNew() {
		resp.Message = "no new records"
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Clear(); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: "cleared"})
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	a, ok := s.store.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("no article with id %q", id))
		return
	}
	writeJSON(w, http.StatusOK, a.Public())
}

// writeStoreError maps domain errors onto HTTP statuses.
func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	status, apiErr := s.storeError(err)
	writeJSON(w, status, errorResponse{Error: apiErr})
}

func (s *Server) storeError(err error) (int, APIError) {
	switch {
	case errors.Is(err, query.ErrInvalidK):
		return http.StatusBadRequest, APIError{Code: "invalid_k", Message: err.Error()}
	case errors.Is(err, store.ErrIndexStale):
		return http.StatusConflict, APIError{Code: "index_stale", Message: err.Error()}
	case errors.Is(err, embedding.ErrUnavailable), errors.Is(err, embedding.ErrModelNotFound):
		return http.StatusServiceUnavailable, APIError{Code: "embedder_unavailable", Message: err.Error()}
	default:
		s.logger.Error("request failed", "error", err)
		return http.StatusInternalServerError, APIError{Code: "internal", Message: err.Error()}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, details ...string) {
	writeJSON(w, status, errorResponse{Error: APIError{Code: code, Message: message, Details: details}})
}

func errorStrings(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, err := range errs {
		out[i] = err.Error()
	}
	return out
}
