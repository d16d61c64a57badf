package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ProfileStore provides access to user learning profiles.
type ProfileStore interface {
	Get(ctx context.Context, userID string) (*ProfileRecord, error)
	Upsert(ctx context.Context, userID, experienceLevel, preferences string) (*ProfileRecord, error)
}

// ProfileRepo is a SQLite-backed ProfileStore.
type ProfileRepo struct {
	db *sql.DB
}

// NewProfileRepo creates a profile repository.
func NewProfileRepo(db *sql.DB) *ProfileRepo {
	return &ProfileRepo{db: db}
}

// Get retrieves a profile by user ID. Returns ErrNotFound if no profile
// exists for the user.
func (r *ProfileRepo) Get(ctx context.Context, userID string) (*ProfileRecord, error) {
	query := `
	SELECT id, user_id, experience_level, preferences, created_at, updated_at
	FROM user_profiles
	WHERE user_id = ?
	`

	var record ProfileRecord
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&record.ID,
		&record.UserID,
		&record.ExperienceLevel,
		&record.Preferences,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &record, nil
}

// Upsert creates or updates a user's profile and returns the stored record.
func (r *ProfileRepo) Upsert(ctx context.Context, userID, experienceLevel, preferences string) (*ProfileRecord, error) {
	query := `
	INSERT INTO user_profiles (id, user_id, experience_level, preferences)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		experience_level = excluded.experience_level,
		preferences = excluded.preferences,
		updated_at = CURRENT_TIMESTAMP
	`

	id := uuid.New().String()
	if _, err := r.db.ExecContext(ctx, query, id, userID, experienceLevel, preferences); err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	return r.Get(ctx, userID)
}
