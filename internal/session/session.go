// Package session keeps server-side admin sessions. A session id is an
// opaque random token; the claims it grants live only in the store.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

const RoleAdmin = "admin"

// Claims is what an authenticated session grants.
type Claims struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == RoleAdmin
}

type Store interface {
	// Create stores claims under a new session id and returns the id.
	Create(ctx context.Context, claims Claims) (string, error)
	// Get returns the claims of a live session or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Claims, error)
	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

// New builds the store named by kind ("memory" or "redis").
func New(ctx context.Context, kind, redisURL string, ttl time.Duration) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(ttl), nil
	case "redis":
		return NewRedisStore(ctx, redisURL, ttl)
	}
	return nil, fmt.Errorf("unknown session store %q", kind)
}
