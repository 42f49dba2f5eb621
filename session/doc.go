// Package session provides token-indexed session registries and a compact
// binary session encoding for authentication hot paths.
//
// # Registries
//
// A [Registry] maps opaque session tokens to [Session] records with a
// sliding idle timeout. Two implementations ship with the package: the
// in-process [MemoryRegistry] (the default) and the Redis-backed
// [RedisRegistry] for deployments that share sessions across processes.
//
// # Binary encoding
//
// Redis values use a compact versioned binary format. The encoder is
// append-only: new versions add fields but never reinterpret old ones.
//
// # Architecture boundaries
//
// This package owns session storage and expiry bookkeeping. It does NOT
// decide who may log in, verify passwords, or enforce account policy —
// those responsibilities belong to the Engine.
//
// # What this package must NOT do
//
//   - Import goVault or store (no upward imports).
//   - Perform application-level authorization decisions.
//   - Store credentials or password material in [Session] fields.
package session
