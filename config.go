package goVault

import (
	"errors"
	"time"
)

// Config defines a public type used by goVault APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Store    StoreConfig
	Session  SessionConfig
	Account  AccountConfig
	Password PasswordConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
	Export   ExportConfig
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig defines a public type used by goVault APIs.
//
// StoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StoreConfig struct {
	// Name is the database name; the data file is Dir/<Name>.json.
	Name string
	// Dir holds the data file and its backups/ subdirectory.
	Dir string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by goVault APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// Timeout is the sliding idle timeout. Every successful validation
	// pushes expiry Timeout into the future.
	Timeout time.Duration
	// RedisPrefix namespaces registry keys when a Redis registry is used.
	RedisPrefix string
}

/*
====================================
ACCOUNT CONFIG
====================================
*/

// AccountConfig defines a public type used by goVault APIs.
//
// AccountConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AccountConfig struct {
	// MaxFailedAttempts is the consecutive-failure threshold that locks an
	// account.
	MaxFailedAttempts int
	// LockoutDuration is how long a locked account rejects logins.
	LockoutDuration time.Duration
	// DefaultRole is assigned when Register is called with an empty role.
	// The very first registered account is always "admin" regardless.
	DefaultRole string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordScheme selects the hashing scheme for newly stored passwords.
type PasswordScheme string

const (
	// SchemeIteratedSHA256 is an exported constant or variable used by the authentication engine.
	SchemeIteratedSHA256 PasswordScheme = "sha256-iterated"
	// SchemeArgon2id is an exported constant or variable used by the authentication engine.
	SchemeArgon2id PasswordScheme = "argon2id"
)

// PasswordConfig defines a public type used by goVault APIs.
//
// PasswordConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PasswordConfig struct {
	// MinLength is the minimum accepted password length in bytes.
	MinLength int
	// Iterations is the round count for the sha256-iterated scheme.
	Iterations int
	// Scheme picks the hash written for new and changed passwords.
	// Verification always dispatches on the stored format, so existing
	// hashes keep working after a scheme switch.
	Scheme PasswordScheme

	// Argon2 parameters, used only when Scheme is argon2id.
	Argon2Memory      uint32
	Argon2Time        uint32
	Argon2Parallelism uint8
	Argon2SaltLength  uint32
	Argon2KeyLength   uint32
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by goVault APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking the auth path when the
	// buffer is full.
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goVault APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
EXPORT CONFIG
====================================
*/

// ExportConfig defines a public type used by goVault APIs.
//
// ExportConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type ExportConfig struct {
	// Enabled turns on registration export through the configured exporter.
	Enabled bool
	// Dir is where the default file exporter writes when no exporter was
	// injected through the builder.
	Dir string
}

// DefaultConfig returns the configuration [New] starts from. Mutate the
// copy and pass it to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Name: "vault",
			Dir:  "data",
		},
		Session: SessionConfig{
			Timeout:     30 * time.Minute,
			RedisPrefix: "gv",
		},
		Account: AccountConfig{
			MaxFailedAttempts: 5,
			LockoutDuration:   5 * time.Minute,
			DefaultRole:       "user",
		},
		Password: PasswordConfig{
			MinLength:  6,
			Iterations: 1000,
			Scheme:     SchemeIteratedSHA256,

			Argon2Memory:      65536,
			Argon2Time:        3,
			Argon2Parallelism: 2,
			Argon2SaltLength:  16,
			Argon2KeyLength:   32,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Export: ExportConfig{
			Enabled: false,
			Dir:     "data",
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All fields are value types; a shallow copy is a full copy.
	return cfg
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
func (c *Config) Validate() error {
	// Store
	if c.Store.Name == "" {
		return errors.New("Store Name must not be empty")
	}
	if c.Store.Dir == "" {
		return errors.New("Store Dir must not be empty")
	}

	// Session
	if c.Session.Timeout <= 0 {
		return errors.New("Session Timeout must be > 0")
	}

	// Account
	if c.Account.MaxFailedAttempts <= 0 {
		return errors.New("Account MaxFailedAttempts must be > 0")
	}
	if c.Account.LockoutDuration <= 0 {
		return errors.New("Account LockoutDuration must be > 0")
	}
	if c.Account.DefaultRole == "" {
		return errors.New("Account DefaultRole must not be empty")
	}

	// Password
	if c.Password.MinLength < 1 {
		return errors.New("Password MinLength must be >= 1")
	}
	switch c.Password.Scheme {
	case SchemeIteratedSHA256:
		if c.Password.Iterations < 1 {
			return errors.New("Password Iterations must be >= 1")
		}
	case SchemeArgon2id:
		if c.Password.Argon2Memory < 8*1024 {
			return errors.New("Password Argon2Memory must be >= 8192 KB")
		}
		if c.Password.Argon2Time < 1 {
			return errors.New("Password Argon2Time must be >= 1")
		}
		if c.Password.Argon2Parallelism < 1 {
			return errors.New("Password Argon2Parallelism must be >= 1")
		}
	default:
		return errors.New("unsupported password scheme")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	// Export
	if c.Export.Enabled && c.Export.Dir == "" {
		return errors.New("Export Dir must not be empty when enabled")
	}

	return nil
}
