package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnauthenticated is returned when the auth service rejects a token.
var ErrUnauthenticated = errors.New("unauthenticated")

// User is the identity attached to an authenticated request.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Client validates bearer tokens against an external auth service.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates an auth service client. timeout bounds each validation
// call so a slow auth service cannot stall request handling.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type sessionResponse struct {
	User *User `json:"user"`
}

// ValidateToken checks a session token with the auth service and returns the
// associated user. Returns ErrUnauthenticated for rejected tokens and a
// wrapped transport error when the auth service cannot be reached.
func (c *Client) ValidateToken(ctx context.Context, token string) (*User, error) {
	url := fmt.Sprintf("%s/api/auth/session", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth service unreachable: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthenticated
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth service returned status %d", resp.StatusCode)
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}

	if session.User == nil || session.User.ID == "" {
		return nil, ErrUnauthenticated
	}

	return session.User, nil
}

type contextKey string

const userContextKey contextKey = "user"

// WithUser returns a new context carrying the authenticated user.
func WithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext retrieves the authenticated user from the context.
// Returns nil if no user is present.
func UserFromContext(ctx context.Context) *User {
	user, ok := ctx.Value(userContextKey).(*User)
	if !ok {
		return nil
	}
	return user
}
