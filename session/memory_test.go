package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

func testSession(token string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		Token:        token,
		UserID:       1,
		Username:     "alice",
		Role:         "user",
		CreatedAt:    now.Unix(),
		ExpiresAt:    now.Add(ttl).Unix(),
		LastActivity: now.Unix(),
	}
}

func TestMemoryPutGet(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()

	if err := reg.Put(ctx, testSession("tok1", time.Hour), time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := reg.Get(ctx, "tok1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Username != "alice" || got.UserID != 1 {
		t.Fatalf("got %+v", got)
	}

	if _, err := reg.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()

	if err := reg.Put(ctx, testSession("tok1", time.Hour), time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}

	first, _ := reg.Get(ctx, "tok1")
	first.Role = "admin"

	second, _ := reg.Get(ctx, "tok1")
	if second.Role != "user" {
		t.Fatal("mutating a returned session leaked into the registry")
	}
}

func TestMemoryExpiryLazyPurge(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()

	current := time.Unix(1_700_000_000, 0)
	reg.now = func() time.Time { return current }

	s := &Session{Token: "tok1", ExpiresAt: current.Add(30 * time.Minute).Unix()}
	if err := reg.Put(ctx, s, 30*time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}

	current = current.Add(31 * time.Minute)
	if _, err := reg.Get(ctx, "tok1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after expiry, got %v", err)
	}
	// The expired entry was purged, not just hidden.
	if n, _ := reg.Len(ctx); n != 0 {
		t.Fatalf("len = %d after purge, want 0", n)
	}
}

func TestMemoryRefreshSlides(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()

	current := time.Unix(1_700_000_000, 0)
	reg.now = func() time.Time { return current }

	s := &Session{Token: "tok1", ExpiresAt: current.Add(30 * time.Minute).Unix()}
	if err := reg.Put(ctx, s, 30*time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}

	current = current.Add(20 * time.Minute)
	updated, err := reg.Refresh(ctx, "tok1", 30*time.Minute)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	wantExpiry := current.Add(30 * time.Minute).Unix()
	if updated.ExpiresAt != wantExpiry {
		t.Fatalf("ExpiresAt = %d, want %d", updated.ExpiresAt, wantExpiry)
	}
	if updated.LastActivity != current.Unix() {
		t.Fatalf("LastActivity = %d, want %d", updated.LastActivity, current.Unix())
	}

	// Another 20 minutes is fine now that the window slid.
	current = current.Add(20 * time.Minute)
	if _, err := reg.Get(ctx, "tok1"); err != nil {
		t.Fatalf("Get after slide: %v", err)
	}
}

func TestMemoryRefreshNeverRevives(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()

	current := time.Unix(1_700_000_000, 0)
	reg.now = func() time.Time { return current }

	s := &Session{Token: "tok1", ExpiresAt: current.Add(time.Minute).Unix()}
	if err := reg.Put(ctx, s, time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}

	current = current.Add(2 * time.Minute)
	if _, err := reg.Refresh(ctx, "tok1", time.Hour); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRemoveIdempotent(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()

	if err := reg.Put(ctx, testSession("tok1", time.Hour), time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := reg.Remove(ctx, "tok1"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := reg.Remove(ctx, "tok1"); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
	if _, err := reg.Get(ctx, "tok1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryActiveSkipsExpired(t *testing.T) {
	ctx := context.Background()
	reg := NewMemoryRegistry()

	current := time.Unix(1_700_000_000, 0)
	reg.now = func() time.Time { return current }

	live := &Session{Token: "live", ExpiresAt: current.Add(time.Hour).Unix()}
	dead := &Session{Token: "dead", ExpiresAt: current.Add(time.Minute).Unix()}
	_ = reg.Put(ctx, live, time.Hour)
	_ = reg.Put(ctx, dead, time.Minute)

	current = current.Add(10 * time.Minute)
	active, err := reg.Active(ctx)
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if len(active) != 1 || active[0].Token != "live" {
		t.Fatalf("active = %v", active)
	}
}
