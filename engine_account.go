package goVault

import (
	"context"
	"time"

	"github.com/MrEthical07/goVault/store"
)

/*
====================================
ACCOUNT MANAGEMENT
====================================
*/

// ChangePassword verifies the current password and replaces it with a new
// hash under the configured scheme. Existing sessions stay valid.
func (e *Engine) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	if len(newPassword) < e.config.Password.MinLength {
		return ErrPasswordTooShort
	}

	e.authMu.Lock()
	defer e.authMu.Unlock()

	user, err := e.db.SelectOne(tableUsers, store.Conditions{"username": username})
	if err != nil {
		return ErrUserNotFound
	}
	if !e.verifyPassword(oldPassword, user.String("password_hash"), user.String("salt")) {
		return ErrInvalidCredentials
	}

	hash, salt, err := e.hashPassword(newPassword)
	if err != nil {
		return err
	}
	if _, err := e.db.Update(tableUsers, store.Conditions{store.FieldID: user.ID()}, store.Record{
		"password_hash": hash,
		"salt":          salt,
	}); err != nil {
		return err
	}

	e.recordHistory(ctx, user.ID(), username, ActionPasswordChanged, true, "")
	e.emitAudit(ctx, ActionPasswordChanged, user.ID(), username, true, "")
	e.metrics.Inc(MetricPasswordChanged)
	return nil
}

// DeactivateUser flips an account inactive. Requires an admin session. The
// target's live sessions die on their next validation, not immediately.
func (e *Engine) DeactivateUser(ctx context.Context, adminToken, username string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	admin, err := e.requireAdmin(ctx, adminToken)
	if err != nil {
		return err
	}

	e.authMu.Lock()
	defer e.authMu.Unlock()

	user, err := e.db.SelectOne(tableUsers, store.Conditions{"username": username})
	if err != nil {
		return ErrUserNotFound
	}
	if _, err := e.db.Update(tableUsers, store.Conditions{store.FieldID: user.ID()}, store.Record{
		"is_active": false,
	}); err != nil {
		return err
	}

	e.recordHistory(ctx, user.ID(), username, ActionAccountDeactivated, true, "by "+admin.Username)
	e.emitAudit(ctx, ActionAccountDeactivated, user.ID(), username, true, "by "+admin.Username)
	e.metrics.Inc(MetricAccountDeactivated)
	return nil
}

// ActivateUser re-enables an account and clears any lockout state. Requires
// an admin session.
func (e *Engine) ActivateUser(ctx context.Context, adminToken, username string) error {
	if e.closed.Load() {
		return ErrEngineClosed
	}
	admin, err := e.requireAdmin(ctx, adminToken)
	if err != nil {
		return err
	}

	e.authMu.Lock()
	defer e.authMu.Unlock()

	user, err := e.db.SelectOne(tableUsers, store.Conditions{"username": username})
	if err != nil {
		return ErrUserNotFound
	}
	if _, err := e.db.Update(tableUsers, store.Conditions{store.FieldID: user.ID()}, store.Record{
		"is_active":       true,
		"failed_attempts": 0,
		"locked_until":    0,
	}); err != nil {
		return err
	}

	e.recordHistory(ctx, user.ID(), username, ActionAccountActivated, true, "by "+admin.Username)
	e.emitAudit(ctx, ActionAccountActivated, user.ID(), username, true, "by "+admin.Username)
	e.metrics.Inc(MetricAccountActivated)
	return nil
}

// ListUsers returns a summary of every account. Requires an admin session.
func (e *Engine) ListUsers(ctx context.Context, adminToken string) ([]UserSummary, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	if _, err := e.requireAdmin(ctx, adminToken); err != nil {
		return nil, err
	}

	rows := e.db.Select(tableUsers, nil)
	users := make([]UserSummary, 0, len(rows))
	for _, r := range rows {
		users = append(users, UserSummary{
			UserID:    r.ID(),
			Username:  r.String("username"),
			Role:      r.String("role"),
			IsActive:  r.Bool("is_active"),
			CreatedAt: time.Unix(r.Int64(store.FieldCreatedAt), 0),
			LastLogin: lastLoginTime(r),
		})
	}
	return users, nil
}

// UserProfile returns the full profile for username. Callers can always
// read their own profile; reading anyone else's requires role admin.
func (e *Engine) UserProfile(ctx context.Context, token, username string) (*UserProfile, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	sess, err := e.validate(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess.Username != username && sess.Role != RoleAdmin {
		return nil, ErrUnauthorized
	}

	user, err := e.db.SelectOne(tableUsers, store.Conditions{"username": username})
	if err != nil {
		return nil, ErrUserNotFound
	}

	created := time.Unix(user.Int64(store.FieldCreatedAt), 0)
	return &UserProfile{
		UserID:      user.ID(),
		Username:    user.String("username"),
		Email:       user.String("email"),
		Role:        user.String("role"),
		IsActive:    user.Bool("is_active"),
		CreatedAt:   created,
		LastLogin:   lastLoginTime(user),
		AccountAge:  e.now().Sub(created),
		TotalLogins: int(user.Int64("total_logins")),
	}, nil
}

func lastLoginTime(r store.Record) time.Time {
	if unix := r.Int64("last_login"); unix > 0 {
		return time.Unix(unix, 0)
	}
	return time.Time{}
}
