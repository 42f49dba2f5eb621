package goVault

import "errors"

var (
	// ErrUsernameTooShort is an exported constant or variable used by the authentication engine.
	ErrUsernameTooShort = errors.New("username too short")
	// ErrPasswordTooShort is an exported constant or variable used by the authentication engine.
	ErrPasswordTooShort = errors.New("password too short")
	// ErrUsernameTaken is an exported constant or variable used by the authentication engine.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials is an exported constant or variable used by the authentication engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound is an exported constant or variable used by the authentication engine.
	ErrUserNotFound = errors.New("user not found")
	// ErrAccountLocked is an exported constant or variable used by the authentication engine.
	ErrAccountLocked = errors.New("account locked")
	// ErrAccountDisabled is an exported constant or variable used by the authentication engine.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrSessionNotFound is an exported constant or variable used by the authentication engine.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is an exported constant or variable used by the authentication engine.
	ErrSessionExpired = errors.New("session expired")
	// ErrUnauthorized is an exported constant or variable used by the authentication engine.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAdminRequired is an exported constant or variable used by the authentication engine.
	ErrAdminRequired = errors.New("admin role required")
	// ErrInvalidRole is an exported constant or variable used by the authentication engine.
	ErrInvalidRole = errors.New("invalid role")
	// ErrEngineClosed is an exported constant or variable used by the authentication engine.
	ErrEngineClosed = errors.New("engine closed")
)
