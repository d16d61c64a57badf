package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"unicode/utf8"

	"textbook-rag/internal/contextutil"
	"textbook-rag/internal/llm"
	"textbook-rag/internal/rag"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 50
)

// SearchHandler handles HTTP requests for the search endpoint.
type SearchHandler struct {
	engine rag.Engine
}

// NewSearchHandler creates a new SearchHandler.
func NewSearchHandler(engine rag.Engine) *SearchHandler {
	return &SearchHandler{
		engine: engine,
	}
}

// SearchResponse represents the search endpoint response.
type SearchResponse struct {
	Results []rag.SearchResult `json:"results"`
	Total   int                `json:"total"`
}

// ServeHTTP handles GET /api/search.
func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	if utf8.RuneCountInString(query) > maxQueryLength {
		writeError(w, http.StatusBadRequest, "q exceeds maximum length of 500 characters")
		return
	}

	limit := defaultSearchLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 || parsed > maxSearchLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = parsed
	}

	chapter := r.URL.Query().Get("chapter")

	results, err := h.engine.Search(ctx, query, limit, chapter)
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "error", err)
		if errors.Is(err, llm.ErrRateLimited) {
			writeError(w, http.StatusServiceUnavailable, "Service is busy. Please try again in a few seconds.")
			return
		}
		if errors.Is(err, llm.ErrUnavailable) {
			writeError(w, http.StatusBadGateway, "Upstream service unavailable")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to search")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(SearchResponse{
		Results: results,
		Total:   len(results),
	}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
