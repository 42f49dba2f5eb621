package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is an exported constant or variable used by the session registries.
var ErrNotFound = errors.New("session not found")

// ErrRedisUnavailable is an exported constant or variable used by the session registries.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Registry stores live sessions keyed by token. Implementations must be safe
// for concurrent use.
//
// A registry is pure storage: it honors the expiry stamped on each session
// but never decides whether an account may hold one.
type Registry interface {
	// Put stores a session under its token with the given idle TTL.
	Put(ctx context.Context, s *Session, ttl time.Duration) error

	// Get returns the session for token, or ErrNotFound when the token is
	// unknown or the session has already expired.
	Get(ctx context.Context, token string) (*Session, error)

	// Refresh atomically extends the session's expiry by ttl from now and
	// stamps LastActivity, returning the updated session. Returns
	// ErrNotFound when the token is unknown or expired; an expired session
	// is never revived.
	Refresh(ctx context.Context, token string, ttl time.Duration) (*Session, error)

	// Remove deletes the session. Removing an absent token is not an error.
	Remove(ctx context.Context, token string) error

	// Active returns all sessions that have not expired.
	Active(ctx context.Context) ([]*Session, error)

	// Len returns the number of stored sessions, including any that have
	// expired but not yet been purged.
	Len(ctx context.Context) (int, error)
}
