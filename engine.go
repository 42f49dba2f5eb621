package goVault

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goVault/export"
	"github.com/MrEthical07/goVault/password"
	"github.com/MrEthical07/goVault/session"
	"github.com/MrEthical07/goVault/store"
	"github.com/google/uuid"
)

const (
	tableUsers    = "users"
	tableHistory  = "login_history"
	tableSessions = "sessions"

	minUsernameLength = 3
)

// Engine is the authentication engine. All methods are safe for concurrent
// use after [Builder.Build]; mutating auth flows are serialized so the
// read-increment-write of failed_attempts cannot lose updates.
type Engine struct {
	config   Config
	db       *store.Database
	registry session.Registry
	iterated *password.Iterated
	argon    *password.Argon2
	exporter export.Exporter
	audit    *auditDispatcher
	metrics  *Metrics

	authMu sync.Mutex
	closed atomic.Bool
	now    func() time.Time
}

func (e *Engine) ensureTables() error {
	tables := []struct {
		name    string
		columns []string
		opts    []store.TableOption
	}{
		{
			name: tableUsers,
			columns: []string{
				"username", "email", "password_hash", "salt", "role",
				"is_active", "failed_attempts", "locked_until",
				"last_login", "total_logins",
			},
			opts: []store.TableOption{store.WithUniqueField("username")},
		},
		{
			name:    tableHistory,
			columns: []string{"user_id", "username", "action", "timestamp", "detail", "ip"},
		},
		{
			name:    tableSessions,
			columns: []string{"token", "user_id", "username", "created_at", "expires_at", "is_active"},
		},
	}

	for _, t := range tables {
		if err := e.db.CreateTable(t.name, t.columns, t.opts...); err != nil {
			if errors.Is(err, store.ErrTableExists) {
				continue
			}
			return err
		}
	}
	return nil
}

// Database exposes the underlying record store for embedders that want
// direct table access, backups, or stats.
func (e *Engine) Database() *store.Database {
	return e.db
}

// Metrics returns the engine's metrics collector.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// MetricsSnapshot returns a point-in-time copy of all counters and
// histograms, for exporters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

// Close flushes the audit dispatcher and marks the engine unusable. Live
// sessions in an in-process registry die with it.
func (e *Engine) Close() {
	if e.closed.Swap(true) {
		return
	}
	e.audit.Close()
}

/*
====================================
REGISTRATION
====================================
*/

// Register creates an account. The first account ever registered is always
// an admin regardless of the requested role; later registrations default to
// Config.Account.DefaultRole. The configured exporter is notified after the
// user row is durable; exporter failures are logged and never undo the
// registration.
func (e *Engine) Register(ctx context.Context, username, password, email, role string) (*RegisterResult, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	if len(username) < minUsernameLength {
		e.metrics.Inc(MetricRegisterInvalid)
		return nil, ErrUsernameTooShort
	}
	if len(password) < e.config.Password.MinLength {
		e.metrics.Inc(MetricRegisterInvalid)
		return nil, ErrPasswordTooShort
	}
	if role == "" {
		role = e.config.Account.DefaultRole
	}
	if role != RoleAdmin && role != RoleUser {
		e.metrics.Inc(MetricRegisterInvalid)
		return nil, ErrInvalidRole
	}

	e.authMu.Lock()
	defer e.authMu.Unlock()

	if len(e.db.Select(tableUsers, nil, store.Limit(1))) == 0 {
		role = RoleAdmin
	}

	hash, salt, err := e.hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := e.now()
	id, err := e.db.Insert(tableUsers, store.Record{
		"username":        username,
		"email":           email,
		"password_hash":   hash,
		"salt":            salt,
		"role":            role,
		"is_active":       true,
		"failed_attempts": 0,
		"locked_until":    0,
		"last_login":      0,
		"total_logins":    0,
	})
	if err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			e.metrics.Inc(MetricRegisterDuplicate)
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	e.recordHistory(ctx, id, username, ActionRegister, true, "role="+role)
	e.emitAudit(ctx, ActionRegister, id, username, true, "")
	e.metrics.Inc(MetricRegisterSuccess)

	if err := e.exporter.NotifyRegistration(export.Registration{
		UserID:       id,
		Username:     username,
		Email:        email,
		Role:         role,
		RegisteredAt: now,
	}); err != nil {
		log.Printf("goVault: registration export for %q failed: %v", username, err)
	}

	return &RegisterResult{UserID: id, Username: username, Role: role}, nil
}

/*
====================================
LOGIN / LOGOUT
====================================
*/

// Login authenticates username/password and mints an opaque session token.
// Unknown users and wrong passwords both come back as ErrInvalidCredentials;
// the failed-attempt counter locks the account at the configured threshold.
func (e *Engine) Login(ctx context.Context, username, pw string) (*LoginResult, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	e.authMu.Lock()
	defer e.authMu.Unlock()

	user, err := e.db.SelectOne(tableUsers, store.Conditions{"username": username})
	if err != nil {
		// No user row to attribute the failure to; the history entry still
		// records the attempted name.
		e.recordHistory(ctx, 0, username, ActionLoginFailed, false, "unknown user")
		e.emitAudit(ctx, ActionLoginFailed, 0, username, false, "unknown user")
		e.metrics.Inc(MetricLoginFailure)
		return nil, ErrInvalidCredentials
	}

	userID := user.ID()
	now := e.now()

	if lockedUntil := user.Int64("locked_until"); lockedUntil > now.Unix() {
		remaining := time.Duration(lockedUntil-now.Unix()) * time.Second
		e.recordHistory(ctx, userID, username, ActionLoginBlocked, false,
			fmt.Sprintf("locked for another %ds", int(remaining.Seconds())))
		e.emitAudit(ctx, ActionLoginBlocked, userID, username, false, "account locked")
		e.metrics.Inc(MetricLoginBlocked)
		return nil, ErrAccountLocked
	}

	if !user.Bool("is_active") {
		e.emitAudit(ctx, ActionLoginBlocked, userID, username, false, "account disabled")
		e.metrics.Inc(MetricLoginBlocked)
		return nil, ErrAccountDisabled
	}

	if !e.verifyPassword(pw, user.String("password_hash"), user.String("salt")) {
		return nil, e.recordFailedLogin(ctx, user, now)
	}

	// Success: counters reset unconditionally, even after a lockout that
	// expired on its own.
	if _, err := e.db.Update(tableUsers, store.Conditions{store.FieldID: userID}, store.Record{
		"failed_attempts": 0,
		"locked_until":    0,
		"last_login":      now.Unix(),
		"total_logins":    user.Int64("total_logins") + 1,
	}); err != nil {
		return nil, err
	}

	token, err := e.newToken(userID)
	if err != nil {
		return nil, err
	}

	expiresAt := now.Add(e.config.Session.Timeout)
	sess := &session.Session{
		Token:        token,
		UserID:       userID,
		Username:     username,
		Role:         user.String("role"),
		CreatedAt:    now.Unix(),
		ExpiresAt:    expiresAt.Unix(),
		LastActivity: now.Unix(),
	}
	if err := e.registry.Put(ctx, sess, e.config.Session.Timeout); err != nil {
		return nil, err
	}

	// Durable mirror of the registry entry. It is the audit trail, never an
	// authority: a token is only valid while the registry says so.
	if _, err := e.db.Insert(tableSessions, store.Record{
		"token":      token,
		"user_id":    userID,
		"username":   username,
		"created_at": now.Unix(),
		"expires_at": expiresAt.Unix(),
		"is_active":  true,
	}); err != nil {
		log.Printf("goVault: session mirror insert failed: %v", err)
	}

	e.recordHistory(ctx, userID, username, ActionLoginSuccess, true, "")
	e.emitAudit(ctx, ActionLoginSuccess, userID, username, true, "")
	e.metrics.Inc(MetricLoginSuccess)

	return &LoginResult{
		Token:     token,
		UserID:    userID,
		Username:  username,
		Role:      user.String("role"),
		ExpiresAt: expiresAt,
	}, nil
}

func (e *Engine) recordFailedLogin(ctx context.Context, user store.Record, now time.Time) error {
	userID := user.ID()
	username := user.String("username")
	attempts := int(user.Int64("failed_attempts")) + 1

	values := store.Record{"failed_attempts": attempts}
	locked := attempts >= e.config.Account.MaxFailedAttempts
	if locked {
		values["locked_until"] = now.Add(e.config.Account.LockoutDuration).Unix()
	}
	if _, err := e.db.Update(tableUsers, store.Conditions{store.FieldID: userID}, values); err != nil {
		return err
	}

	if locked {
		e.recordHistory(ctx, userID, username, ActionAccountLocked, false,
			fmt.Sprintf("locked after %d failed attempts", attempts))
		e.emitAudit(ctx, ActionAccountLocked, userID, username, false, "lockout threshold reached")
		e.metrics.Inc(MetricAccountLocked)
		return ErrAccountLocked
	}

	remaining := e.config.Account.MaxFailedAttempts - attempts
	e.recordHistory(ctx, userID, username, ActionLoginFailed, false,
		fmt.Sprintf("%d attempts remaining", remaining))
	e.emitAudit(ctx, ActionLoginFailed, userID, username, false, "wrong password")
	e.metrics.Inc(MetricLoginFailure)
	return ErrInvalidCredentials
}

// Logout invalidates the session behind token and reports how long it was
// alive. The durable sessions row is flipped inactive.
func (e *Engine) Logout(ctx context.Context, token string) (*LogoutResult, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}

	sess, err := e.registry.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if err := e.registry.Remove(ctx, token); err != nil {
		return nil, err
	}

	if _, err := e.db.Update(tableSessions, store.Conditions{"token": token}, store.Record{
		"is_active": false,
	}); err != nil {
		log.Printf("goVault: session mirror update failed: %v", err)
	}

	duration := e.now().Sub(time.Unix(sess.CreatedAt, 0))
	e.recordHistory(ctx, sess.UserID, sess.Username, ActionLogout, true,
		fmt.Sprintf("session lasted %ds", int(duration.Seconds())))
	e.emitAudit(ctx, ActionLogout, sess.UserID, sess.Username, true, "")
	e.metrics.Inc(MetricLogout)

	return &LogoutResult{Username: sess.Username, Duration: duration}, nil
}

/*
====================================
SESSION VALIDATION
====================================
*/

// ValidateSession checks a token and slides its expiry Timeout into the
// future. The account's is_active flag is re-read from the store on every
// call, so a deactivation takes effect on the very next validation even for
// sessions minted earlier.
func (e *Engine) ValidateSession(ctx context.Context, token string) (*SessionCheck, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	start := e.now()

	sess, err := e.registry.Refresh(ctx, token, e.config.Session.Timeout)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, e.expireOrMissing(ctx, token)
		}
		return nil, err
	}

	user, err := e.db.SelectOne(tableUsers, store.Conditions{store.FieldID: sess.UserID})
	if err != nil || !user.Bool("is_active") {
		_ = e.registry.Remove(ctx, token)
		if _, uerr := e.db.Update(tableSessions, store.Conditions{"token": token}, store.Record{
			"is_active": false,
		}); uerr != nil {
			log.Printf("goVault: session mirror update failed: %v", uerr)
		}
		return nil, ErrAccountDisabled
	}

	e.metrics.Inc(MetricSessionValidated)
	e.metrics.Observe(MetricValidateLatency, e.now().Sub(start))

	return &SessionCheck{
		UserID:    sess.UserID,
		Username:  sess.Username,
		Role:      sess.Role,
		ExpiresAt: time.Unix(sess.ExpiresAt, 0),
	}, nil
}

// expireOrMissing distinguishes a token the registry never knew from one it
// already purged. The durable mirror still carries an active row in the
// latter case; it is flipped inactive here.
func (e *Engine) expireOrMissing(ctx context.Context, token string) error {
	row, err := e.db.SelectOne(tableSessions, store.Conditions{"token": token})
	if err == nil && row.Bool("is_active") {
		if _, uerr := e.db.Update(tableSessions, store.Conditions{"token": token}, store.Record{
			"is_active": false,
		}); uerr != nil {
			log.Printf("goVault: session mirror update failed: %v", uerr)
		}
		e.metrics.Inc(MetricSessionExpired)
		return ErrSessionExpired
	}
	return ErrSessionNotFound
}

// ActiveSessions lists live sessions, newest first. Requires an admin
// session.
func (e *Engine) ActiveSessions(ctx context.Context, adminToken string) ([]SessionInfo, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	if _, err := e.requireAdmin(ctx, adminToken); err != nil {
		return nil, err
	}

	live, err := e.registry.Active(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]SessionInfo, 0, len(live))
	for _, s := range live {
		infos = append(infos, SessionInfo{
			Token:        s.Token,
			UserID:       s.UserID,
			Username:     s.Username,
			Role:         s.Role,
			CreatedAt:    time.Unix(s.CreatedAt, 0),
			ExpiresAt:    time.Unix(s.ExpiresAt, 0),
			LastActivity: time.Unix(s.LastActivity, 0),
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos, nil
}

/*
====================================
INTERNAL HELPERS
====================================
*/

// validate resolves a token to a live session without admin checks. Session
// errors come back in engine vocabulary.
func (e *Engine) validate(ctx context.Context, token string) (*session.Session, error) {
	sess, err := e.registry.Refresh(ctx, token, e.config.Session.Timeout)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, e.expireOrMissing(ctx, token)
		}
		return nil, err
	}
	return sess, nil
}

func (e *Engine) requireAdmin(ctx context.Context, token string) (*session.Session, error) {
	sess, err := e.validate(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess.Role != RoleAdmin {
		return nil, ErrAdminRequired
	}
	return sess, nil
}

func (e *Engine) hashPassword(pw string) (hash, salt string, err error) {
	if e.config.Password.Scheme == SchemeArgon2id {
		h, err := e.argon.Hash(pw)
		return h, "", err
	}

	salt, err = e.iterated.GenerateSalt()
	if err != nil {
		return "", "", err
	}
	return e.iterated.Hash(pw, salt), salt, nil
}

func (e *Engine) verifyPassword(pw, storedHash, salt string) bool {
	if password.IsPHC(storedHash) {
		ok, err := e.argon.Verify(pw, storedHash)
		return err == nil && ok
	}
	return e.iterated.Verify(pw, salt, storedHash)
}

func (e *Engine) newToken(userID int64) (string, error) {
	entropy := make([]byte, 16)
	if _, err := io.ReadFull(rand.Reader, entropy); err != nil {
		return "", err
	}

	sum := sha256.New()
	sum.Write([]byte(strconv.FormatInt(userID, 10)))
	sum.Write([]byte(strconv.FormatInt(e.now().UnixNano(), 10)))
	sum.Write([]byte(hex.EncodeToString(entropy)))
	return hex.EncodeToString(sum.Sum(nil)), nil
}

func (e *Engine) recordHistory(ctx context.Context, userID int64, username, action string, success bool, detail string) {
	now := e.now()
	rec := store.Record{
		"user_id":   userID,
		"username":  username,
		"action":    action,
		"success":   success,
		"timestamp": now.Unix(),
		"detail":    detail,
		"ip":        clientIPFromContext(ctx),
	}
	if userID == 0 {
		rec["user_id"] = nil
	}
	if _, err := e.db.Insert(tableHistory, rec); err != nil {
		log.Printf("goVault: history insert failed: %v", err)
	}
}

func (e *Engine) emitAudit(ctx context.Context, action string, userID int64, username string, success bool, detail string) {
	if e.audit == nil {
		return
	}
	e.audit.Emit(ctx, AuditEvent{
		EventID:   uuid.New().String(),
		Timestamp: e.now(),
		Action:    action,
		UserID:    userID,
		Username:  username,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Detail:    detail,
	})
}
