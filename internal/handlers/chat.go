package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"unicode/utf8"

	"textbook-rag/internal/contextutil"
	"textbook-rag/internal/llm"
	"textbook-rag/internal/rag"
)

const (
	maxQueryLength        = 500
	maxSelectedTextLength = 2000
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}

// ChatHandler handles HTTP requests for the chat endpoint.
type ChatHandler struct {
	engine rag.Engine
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(engine rag.Engine) *ChatHandler {
	return &ChatHandler{
		engine: engine,
	}
}

// ServeHTTP handles POST /api/chat.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req rag.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	if utf8.RuneCountInString(req.Query) > maxQueryLength {
		writeError(w, http.StatusBadRequest, "query exceeds maximum length of 500 characters")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if utf8.RuneCountInString(req.SelectedText) > maxSelectedTextLength {
		writeError(w, http.StatusBadRequest, "selected_text exceeds maximum length of 2000 characters")
		return
	}

	resp, err := h.engine.Chat(ctx, req)
	if err != nil {
		h.handleEngineError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handleEngineError maps pipeline errors to HTTP status codes. Rate limits
// that escape the engine (embedding stage) surface as 503 so clients retry.
func (h *ChatHandler) handleEngineError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	logger.ErrorContext(ctx, "chat pipeline error", "error", err)

	if errors.Is(err, llm.ErrRateLimited) {
		writeError(w, http.StatusServiceUnavailable, "The assistant is busy. Please try again in a few seconds.")
		return
	}
	if errors.Is(err, llm.ErrUnavailable) {
		writeError(w, http.StatusBadGateway, "Upstream service unavailable")
		return
	}

	writeError(w, http.StatusInternalServerError, "Failed to process chat request")
}
