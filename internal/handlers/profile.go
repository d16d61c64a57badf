package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"textbook-rag/internal/auth"
	"textbook-rag/internal/contextutil"
	"textbook-rag/internal/storage"
)

var validExperienceLevels = map[string]bool{
	"beginner":     true,
	"intermediate": true,
	"advanced":     true,
}

// ProfileHandler handles HTTP requests for user learning profiles.
type ProfileHandler struct {
	profiles storage.ProfileStore
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profiles storage.ProfileStore) *ProfileHandler {
	return &ProfileHandler{
		profiles: profiles,
	}
}

// ProfileUpdateRequest represents the profile update payload.
type ProfileUpdateRequest struct {
	ExperienceLevel string          `json:"experience_level"`
	Preferences     json.RawMessage `json:"preferences,omitempty"`
}

// ServeHTTP handles GET and PUT on /api/profile. Both require an
// authenticated user in the request context.
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	user := auth.UserFromContext(ctx)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, user.ID)
	case http.MethodPut:
		h.handlePut(w, r, user.ID)
	default:
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleGet returns the user's profile, creating a default one on first
// access.
func (h *ProfileHandler) handleGet(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	record, err := h.profiles.Get(ctx, userID)
	if errors.Is(err, storage.ErrNotFound) {
		record, err = h.profiles.Upsert(ctx, userID, "beginner", "{}")
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to load profile", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(record); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handlePut updates the user's profile.
func (h *ProfileHandler) handlePut(w http.ResponseWriter, r *http.Request, userID string) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req ProfileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !validExperienceLevels[req.ExperienceLevel] {
		writeError(w, http.StatusBadRequest, "experience_level must be beginner, intermediate, or advanced")
		return
	}

	preferences := "{}"
	if len(req.Preferences) > 0 {
		if !json.Valid(req.Preferences) {
			writeError(w, http.StatusBadRequest, "preferences must be a JSON object")
			return
		}
		preferences = string(req.Preferences)
	}

	record, err := h.profiles.Upsert(ctx, userID, req.ExperienceLevel, preferences)
	if err != nil {
		logger.ErrorContext(ctx, "failed to update profile", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(record); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
