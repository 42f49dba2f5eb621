package session

// Session defines a public type used by goVault APIs.
//
// Session instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
// The timestamp fields hold Unix seconds; LastActivity advances on every
// successful Refresh, which is what implements the sliding idle timeout.
type Session struct {
	Token    string
	UserID   int64
	Username string
	Role     string

	CreatedAt    int64
	ExpiresAt    int64
	LastActivity int64
}

// Expired reports whether the session is past its expiry at nowUnix.
func (s *Session) Expired(nowUnix int64) bool {
	return nowUnix >= s.ExpiresAt
}

// Clone returns an independent copy of the session.
func (s *Session) Clone() *Session {
	c := *s
	return &c
}
