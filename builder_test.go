package goVault

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/MrEthical07/goVault/export"
	"github.com/MrEthical07/goVault/session"
	"github.com/MrEthical07/goVault/store"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	cfg := defaultConfig()
	cfg.Store.Name = "vault_builder_test"
	cfg.Store.Dir = t.TempDir()
	return cfg
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.Timeout = 0

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestBuildIsSingleUse(t *testing.T) {
	b := New().WithConfig(testConfig(t))
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := b.Build(); err == nil {
		t.Fatal("expected error from second Build")
	}
}

func TestBuildUsesInjectedDatabase(t *testing.T) {
	db, err := store.Open("injected", t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	engine, err := New().WithConfig(testConfig(t)).WithDatabase(db).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if engine.Database() != db {
		t.Fatal("expected engine to use the injected database")
	}
}

func TestBuildRegistryPrecedence(t *testing.T) {
	reg := session.NewMemoryRegistry()

	engine, err := New().WithConfig(testConfig(t)).WithRegistry(reg).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if engine.registry != session.Registry(reg) {
		t.Fatal("expected engine to use the injected registry")
	}
}

func TestBuildCreatesTables(t *testing.T) {
	engine, err := New().WithConfig(testConfig(t)).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	tables := engine.Database().ListTables()
	want := map[string]bool{tableUsers: false, tableHistory: false, tableSessions: false}
	for _, name := range tables {
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("expected table %q to exist", name)
		}
	}
}

func TestBuildReopensExistingStore(t *testing.T) {
	cfg := testConfig(t)

	first, err := New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	if _, err := first.Register(context.Background(), "alice", "secret1", "", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	first.Close()

	// A second engine over the same data dir sees the existing users table.
	second, err := New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("second Build failed: %v", err)
	}
	t.Cleanup(second.Close)

	if _, err := second.Login(context.Background(), "alice", "secret1"); err != nil {
		t.Fatalf("Login against reopened store failed: %v", err)
	}
}

func TestBuildWiresFileExporter(t *testing.T) {
	cfg := testConfig(t)
	cfg.Export.Enabled = true
	cfg.Export.Dir = t.TempDir()

	engine, err := New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := engine.Register(context.Background(), "alice", "secret1", "alice@example.com", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	fe, ok := engine.exporter.(*export.FileExporter)
	if !ok {
		t.Fatalf("expected a file exporter, got %T", engine.exporter)
	}
	got, err := fe.Count()
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected 1 exported registration, got %d", got)
	}
}

func TestBuildWiresInjectedExporter(t *testing.T) {
	rec := &recordingExporter{}

	engine, err := New().WithConfig(testConfig(t)).WithExporter(rec).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	if _, err := engine.Register(context.Background(), "alice", "secret1", "alice@example.com", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if len(rec.got) != 1 || rec.got[0].Username != "alice" {
		t.Fatalf("expected exporter notification for alice, got %+v", rec.got)
	}
}

type recordingExporter struct {
	got []export.Registration
}

func (r *recordingExporter) NotifyRegistration(reg export.Registration) error {
	r.got = append(r.got, reg)
	return nil
}

func TestBuildArgon2Scheme(t *testing.T) {
	cfg := testConfig(t)
	cfg.Password.Scheme = SchemeArgon2id

	engine, err := New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)
	ctx := context.Background()

	if _, err := engine.Register(ctx, "alice", "secret1", "", ""); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := engine.Database().SelectOne(tableUsers, store.Conditions{"username": "alice"})
	if err != nil {
		t.Fatalf("SelectOne failed: %v", err)
	}
	if hash := user.String("password_hash"); len(hash) == 0 || hash[0] != '$' {
		t.Fatalf("expected a PHC-formatted hash, got %q", hash)
	}

	if _, err := engine.Login(ctx, "alice", "secret1"); err != nil {
		t.Fatalf("Login with argon2 hash failed: %v", err)
	}
	if _, err := engine.Login(ctx, "alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestStoreFileLandsInConfiguredDir(t *testing.T) {
	cfg := testConfig(t)

	engine, err := New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(engine.Close)

	want := filepath.Join(cfg.Store.Dir, cfg.Store.Name+".json")
	if got := engine.Database().Path(); got != want {
		t.Fatalf("expected data file at %q, got %q", want, got)
	}
}
