package goVault

import (
	"errors"
	"time"

	"github.com/MrEthical07/goVault/export"
	"github.com/MrEthical07/goVault/password"
	"github.com/MrEthical07/goVault/session"
	"github.com/MrEthical07/goVault/store"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goVault APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config

	db       *store.Database
	registry session.Registry
	redis    *redis.Client
	exporter export.Exporter

	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithDatabase injects an already-open record store. When omitted, Build
// opens one from Config.Store.
func (b *Builder) WithDatabase(db *store.Database) *Builder {
	b.db = db
	return b
}

// WithRegistry injects a session registry. Takes precedence over WithRedis.
func (b *Builder) WithRegistry(r session.Registry) *Builder {
	b.registry = r
	return b
}

// WithRedis selects a Redis-backed session registry on the given client.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithExporter injects the registration exporter. When omitted and
// Config.Export.Enabled is set, Build creates a file exporter under
// Config.Export.Dir.
func (b *Builder) WithExporter(e export.Exporter) *Builder {
	b.exporter = e
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- RECORD STORE --------
	db := b.db
	if db == nil {
		opened, err := store.Open(cfg.Store.Name, cfg.Store.Dir)
		if err != nil {
			return nil, err
		}
		db = opened
	}

	// -------- SESSION REGISTRY --------
	registry := b.registry
	if registry == nil {
		if b.redis != nil {
			registry = session.NewRedisRegistry(b.redis, cfg.Session.RedisPrefix)
		} else {
			registry = session.NewMemoryRegistry()
		}
	}

	// -------- PASSWORD SCHEMES --------
	// Both hashers are always constructed: verification dispatches on the
	// stored format, so old hashes survive a scheme switch either way.
	iterated, err := password.NewIterated(cfg.Password.Iterations)
	if err != nil {
		return nil, err
	}
	argon, err := password.NewArgon2(password.Config{
		Memory:      cfg.Password.Argon2Memory,
		Time:        cfg.Password.Argon2Time,
		Parallelism: cfg.Password.Argon2Parallelism,
		SaltLength:  cfg.Password.Argon2SaltLength,
		KeyLength:   cfg.Password.Argon2KeyLength,
	})
	if err != nil {
		return nil, err
	}

	// -------- REGISTRATION EXPORT --------
	exporter := b.exporter
	if exporter == nil {
		if cfg.Export.Enabled {
			fe, err := export.NewFileExporter(cfg.Export.Dir)
			if err != nil {
				return nil, err
			}
			exporter = fe
		} else {
			exporter = export.NoOpExporter{}
		}
	}

	engine := &Engine{
		config:   cfg,
		db:       db,
		registry: registry,
		iterated: iterated,
		argon:    argon,
		exporter: exporter,
		audit:    newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:  NewMetrics(cfg.Metrics),
		now:      time.Now,
	}

	if err := engine.ensureTables(); err != nil {
		return nil, err
	}

	b.built = true

	return engine, nil
}
