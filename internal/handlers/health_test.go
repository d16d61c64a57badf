package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/mock/gomock"

	vsmocks "textbook-rag/internal/vectorstore/mocks"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		exists     bool
		checkErr   error
		wantStatus int
		wantHealth string
	}{
		{name: "healthy", exists: true, wantStatus: http.StatusOK, wantHealth: "healthy"},
		{name: "collection missing", exists: false, wantStatus: http.StatusServiceUnavailable, wantHealth: "unhealthy"},
		{name: "store unreachable", checkErr: errors.New("connection refused"), wantStatus: http.StatusServiceUnavailable, wantHealth: "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockStore := vsmocks.NewMockVectorStore(ctrl)
			mockStore.EXPECT().
				CollectionExists(gomock.Any(), "textbook_chunks").
				Return(tt.exists, tt.checkErr)

			handler := NewHealthHandler(mockStore, "textbook_chunks")

			req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var resp HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp.Status != tt.wantHealth {
				t.Errorf("health status = %q, want %q", resp.Status, tt.wantHealth)
			}
		})
	}
}
