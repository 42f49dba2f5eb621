package goVault

import "time"

// History action labels written to the login_history table and mirrored
// into audit events.
const (
	// ActionRegister is an exported constant or variable used by the authentication engine.
	ActionRegister = "REGISTER"
	// ActionLoginSuccess is an exported constant or variable used by the authentication engine.
	ActionLoginSuccess = "LOGIN_SUCCESS"
	// ActionLoginFailed is an exported constant or variable used by the authentication engine.
	ActionLoginFailed = "LOGIN_FAILED"
	// ActionLoginBlocked is an exported constant or variable used by the authentication engine.
	ActionLoginBlocked = "LOGIN_BLOCKED"
	// ActionAccountLocked is an exported constant or variable used by the authentication engine.
	ActionAccountLocked = "ACCOUNT_LOCKED"
	// ActionLogout is an exported constant or variable used by the authentication engine.
	ActionLogout = "LOGOUT"
	// ActionPasswordChanged is an exported constant or variable used by the authentication engine.
	ActionPasswordChanged = "PASSWORD_CHANGED"
	// ActionAccountDeactivated is an exported constant or variable used by the authentication engine.
	ActionAccountDeactivated = "ACCOUNT_DEACTIVATED"
	// ActionAccountActivated is an exported constant or variable used by the authentication engine.
	ActionAccountActivated = "ACCOUNT_ACTIVATED"
)

// RoleAdmin and RoleUser are the two built-in account roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// RegisterResult defines a public type used by goVault APIs.
//
// RegisterResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RegisterResult struct {
	UserID   int64
	Username string
	Role     string
}

// LoginResult defines a public type used by goVault APIs.
//
// LoginResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LoginResult struct {
	Token     string
	UserID    int64
	Username  string
	Role      string
	ExpiresAt time.Time
}

// LogoutResult defines a public type used by goVault APIs.
//
// LogoutResult instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type LogoutResult struct {
	Username string
	// Duration is how long the session was alive.
	Duration time.Duration
}

// SessionCheck defines a public type used by goVault APIs.
//
// SessionCheck instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionCheck struct {
	UserID    int64
	Username  string
	Role      string
	ExpiresAt time.Time
}

// SessionInfo describes one live session for administrative views.
type SessionInfo struct {
	Token        string
	UserID       int64
	Username     string
	Role         string
	CreatedAt    time.Time
	ExpiresAt    time.Time
	LastActivity time.Time
}

// HistoryEntry defines a public type used by goVault APIs.
//
// HistoryEntry instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistoryEntry struct {
	UserID    int64
	Username  string
	Action    string
	Success   bool
	Timestamp time.Time
	Detail    string
	ClientIP  string
}

// UserSummary defines a public type used by goVault APIs.
//
// UserSummary instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type UserSummary struct {
	UserID    int64
	Username  string
	Role      string
	IsActive  bool
	CreatedAt time.Time
	LastLogin time.Time
}

// UserProfile defines a public type used by goVault APIs.
//
// UserProfile instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type UserProfile struct {
	UserID      int64
	Username    string
	Email       string
	Role        string
	IsActive    bool
	CreatedAt   time.Time
	LastLogin   time.Time
	AccountAge  time.Duration
	TotalLogins int
}

// FailedAttempt defines a public type used by goVault APIs.
//
// FailedAttempt instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FailedAttempt struct {
	Username  string
	Timestamp time.Time
	Detail    string
	ClientIP  string
}

// FailedAttemptsReport defines a public type used by goVault APIs.
//
// FailedAttemptsReport instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FailedAttemptsReport struct {
	Window   time.Duration
	Total    int
	ByUser   map[string]int
	Attempts []FailedAttempt
}
