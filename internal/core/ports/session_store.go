package ports

import (
	"context"
	"time"
)

// SessionStore tracks live login sessions so a logout revokes the token
// before it expires.
type SessionStore interface {
	Save(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	Exists(ctx context.Context, sessionID string) (bool, error)
	Delete(ctx context.Context, sessionID string) error
}

// ChangeTracker records the time of the latest mutation per scope. Deletions
// leave no updated_at behind, so they are only visible through the tracker.
type ChangeTracker interface {
	Touch(ctx context.Context, at time.Time, scopes ...string) error
	Last(ctx context.Context, scope string) (time.Time, error)
}
