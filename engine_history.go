package goVault

import (
	"context"
	"sort"
	"time"

	"github.com/MrEthical07/goVault/store"
)

/*
====================================
HISTORY & REPORTING
====================================
*/

// LoginHistory returns history entries newest first, optionally filtered to
// one username. limit <= 0 selects the default of 50. Requires an admin
// session.
func (e *Engine) LoginHistory(ctx context.Context, adminToken, username string, limit int) ([]HistoryEntry, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	if _, err := e.requireAdmin(ctx, adminToken); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}

	conds := store.Conditions{}
	if username != "" {
		conds["username"] = username
	}

	rows := e.db.Select(tableHistory, conds,
		store.OrderBy("-"+store.FieldID),
		store.Limit(limit),
	)

	entries := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, HistoryEntry{
			UserID:    r.Int64("user_id"),
			Username:  r.String("username"),
			Action:    r.String("action"),
			Success:   r.Bool("success"),
			Timestamp: time.Unix(r.Int64("timestamp"), 0),
			Detail:    r.String("detail"),
			ClientIP:  r.String("ip"),
		})
	}
	return entries, nil
}

// FailedAttempts reports unsuccessful history entries within the window,
// newest first, with per-user totals. This selects on the success flag, so a
// lockout-triggering attempt counts alongside plain failures and blocked
// logins. window <= 0 selects 24 hours. Requires an admin session.
func (e *Engine) FailedAttempts(ctx context.Context, adminToken string, window time.Duration) (*FailedAttemptsReport, error) {
	if e.closed.Load() {
		return nil, ErrEngineClosed
	}
	if _, err := e.requireAdmin(ctx, adminToken); err != nil {
		return nil, err
	}
	if window <= 0 {
		window = 24 * time.Hour
	}

	cutoff := e.now().Add(-window).Unix()
	report := &FailedAttemptsReport{
		Window: window,
		ByUser: map[string]int{},
	}

	rows := e.db.Select(tableHistory, store.Conditions{"success": false},
		store.OrderBy("-timestamp"))
	for _, r := range rows {
		ts := r.Int64("timestamp")
		if ts < cutoff {
			continue
		}
		report.Attempts = append(report.Attempts, FailedAttempt{
			Username:  r.String("username"),
			Timestamp: time.Unix(ts, 0),
			Detail:    r.String("detail"),
			ClientIP:  r.String("ip"),
		})
		report.ByUser[r.String("username")]++
	}

	sort.SliceStable(report.Attempts, func(i, j int) bool {
		return report.Attempts[i].Timestamp.After(report.Attempts[j].Timestamp)
	})
	report.Total = len(report.Attempts)
	return report, nil
}
