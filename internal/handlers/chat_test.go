package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/mock/gomock"

	"textbook-rag/internal/llm"
	"textbook-rag/internal/rag"
	"textbook-rag/internal/rag/mocks"
)

func init() {
	// Set default logger to discard output for cleaner test output
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestChatHandler_Validation(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Validation failures must never reach the engine.
	mockEngine := mocks.NewMockEngine(ctrl)
	handler := NewChatHandler(mockEngine)

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{
			name:       "invalid json",
			body:       "{not json",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing query",
			body:       `{"session_id": "s1"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing session id",
			body:       `{"query": "What is a robot?"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "query too long",
			body:       `{"query": "` + strings.Repeat("q", 501) + `", "session_id": "s1"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "selected text too long",
			body:       `{"query": "What is a robot?", "session_id": "s1", "selected_text": "` + strings.Repeat("s", 2001) + `"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestChatHandler_MethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewChatHandler(mocks.NewMockEngine(ctrl))

	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestChatHandler_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockEngine := mocks.NewMockEngine(ctrl)
	mockEngine.EXPECT().
		Chat(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req rag.ChatRequest) (*rag.ChatResponse, error) {
			if req.Query != "What is a robot?" {
				t.Errorf("engine received query %q", req.Query)
			}
			return &rag.ChatResponse{
				ResponseText:   "A robot is an embodied agent.",
				Sources:        []rag.Citation{},
				Provenance:     rag.Provenance{ChunksRetrieved: 2, ModelUsed: "gpt-4-turbo-preview", Confidence: 0.75},
				ConversationID: req.SessionID,
				Status:         "OK",
			}, nil
		})

	handler := NewChatHandler(mockEngine)

	body := `{"query": "What is a robot?", "session_id": "s1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp rag.ChatResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.ResponseText != "A robot is an embodied agent." {
		t.Errorf("response_text = %q", resp.ResponseText)
	}
	if resp.ConversationID != "s1" {
		t.Errorf("conversation_id = %q, want s1", resp.ConversationID)
	}
}

func TestChatHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		engineErr  error
		wantStatus int
	}{
		{name: "rate limited", engineErr: llm.ErrRateLimited, wantStatus: http.StatusServiceUnavailable},
		{name: "upstream unavailable", engineErr: llm.ErrUnavailable, wantStatus: http.StatusBadGateway},
		{name: "unknown error", engineErr: io.ErrUnexpectedEOF, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockEngine := mocks.NewMockEngine(ctrl)
			mockEngine.EXPECT().
				Chat(gomock.Any(), gomock.Any()).
				Return(nil, tt.engineErr)

			handler := NewChatHandler(mockEngine)

			body := `{"query": "What is a robot?", "session_id": "s1"}`
			req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString(body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
