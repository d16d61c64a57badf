package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// ProfileRecord is a user's learning profile row.
type ProfileRecord struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	ExperienceLevel string    `json:"experience_level"`
	Preferences     string    `json:"preferences"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
