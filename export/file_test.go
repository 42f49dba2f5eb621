package export

import (
	"os"
	"strings"
	"testing"
	"time"
)

func newTestExporter(t *testing.T) *FileExporter {
	t.Helper()
	e, err := NewFileExporter(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileExporter: %v", err)
	}
	return e
}

func reg(id int64, username, role string, at time.Time) Registration {
	return Registration{
		UserID:       id,
		Username:     username,
		Email:        username + "@example.com",
		Role:         role,
		RegisteredAt: at,
	}
}

func TestNotifyRegistrationWritesBothFiles(t *testing.T) {
	e := newTestExporter(t)
	now := time.Now()

	if err := e.NotifyRegistration(reg(1, "alice", "admin", now)); err != nil {
		t.Fatalf("NotifyRegistration: %v", err)
	}

	users, err := os.ReadFile(e.UsersPath())
	if err != nil {
		t.Fatalf("read users file: %v", err)
	}
	for _, want := range []string{"USER #1", "alice", "admin", "alice@example.com"} {
		if !strings.Contains(string(users), want) {
			t.Errorf("users file missing %q", want)
		}
	}

	logData, err := os.ReadFile(e.LogPath())
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(logData), "1 | alice | alice@example.com | admin | ") {
		t.Errorf("log line malformed:\n%s", logData)
	}
}

func TestHeaderWrittenOnce(t *testing.T) {
	e := newTestExporter(t)
	now := time.Now()

	_ = e.NotifyRegistration(reg(1, "alice", "admin", now))
	_ = e.NotifyRegistration(reg(2, "bob", "user", now))

	logData, _ := os.ReadFile(e.LogPath())
	if n := strings.Count(string(logData), "# USER REGISTRATION LOG"); n != 1 {
		t.Fatalf("log header appears %d times, want 1", n)
	}
}

func TestReadAllRoundTrip(t *testing.T) {
	e := newTestExporter(t)
	at := time.Unix(1_700_000_000, 0)

	_ = e.NotifyRegistration(reg(1, "alice", "admin", at))
	_ = e.NotifyRegistration(Registration{UserID: 2, Username: "bob", Role: "user", RegisteredAt: at.Add(time.Minute)})

	regs, err := e.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(regs) != 2 {
		t.Fatalf("got %d entries, want 2", len(regs))
	}
	if regs[0].Username != "alice" || regs[0].UserID != 1 || regs[0].Email != "alice@example.com" {
		t.Errorf("first entry = %+v", regs[0])
	}
	// Empty email survives the dash placeholder.
	if regs[1].Email != "" {
		t.Errorf("expected empty email, got %q", regs[1].Email)
	}
	if !regs[1].RegisteredAt.Equal(at.Add(time.Minute)) {
		t.Errorf("timestamp = %v", regs[1].RegisteredAt)
	}
}

func TestCountAndMissingLog(t *testing.T) {
	e := newTestExporter(t)

	if n, err := e.Count(); err != nil || n != 0 {
		t.Fatalf("Count on empty = %d, %v", n, err)
	}
	_ = e.NotifyRegistration(reg(1, "alice", "user", time.Now()))
	if n, _ := e.Count(); n != 1 {
		t.Fatalf("Count = %d, want 1", n)
	}
}

func TestStats(t *testing.T) {
	e := newTestExporter(t)
	current := time.Unix(1_700_100_000, 0)
	e.now = func() time.Time { return current }

	_ = e.NotifyRegistration(reg(1, "alice", "admin", current.Add(-48*time.Hour)))
	_ = e.NotifyRegistration(reg(2, "bob", "user", current.Add(-2*time.Hour)))
	_ = e.NotifyRegistration(reg(3, "carol", "user", current.Add(-10*time.Minute)))

	s, err := e.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if s.TotalUsers != 3 || s.Admins != 1 || s.RegularUsers != 2 {
		t.Fatalf("split wrong: %+v", s)
	}
	if s.Last24Hours != 2 || s.LastHour != 1 {
		t.Fatalf("windows wrong: %+v", s)
	}
	if !s.FirstRegistration.Equal(current.Add(-48 * time.Hour)) {
		t.Errorf("first = %v", s.FirstRegistration)
	}
	if !s.LastRegistration.Equal(current.Add(-10 * time.Minute)) {
		t.Errorf("last = %v", s.LastRegistration)
	}
	if s.TimeSinceLast != 10*time.Minute {
		t.Errorf("since last = %v", s.TimeSinceLast)
	}
}

func TestStatsEmpty(t *testing.T) {
	e := newTestExporter(t)
	s, err := e.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if s.TotalUsers != 0 {
		t.Fatalf("TotalUsers = %d", s.TotalUsers)
	}
}
