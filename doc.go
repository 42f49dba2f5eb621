// Package goVault provides a JSON-file-backed record store with a layered
// authentication engine: salted iterated password hashing, opaque session
// tokens with a sliding idle timeout, failed-attempt lockout, and an audit
// trail persisted alongside the user data.
//
// The package is designed for concurrent embedding: Engine methods are safe
// to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goVault is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (LoginResult, SessionCheck, MetricsSnapshot, etc.).
// Storage lives in store/, session registries in session/, hashing in
// password/, and registration export in export/ — none of which import this
// package back.
//
// # What this package must NOT do
//
//   - Expose store tables, registry internals, or hash formats in its
//     public API.
//   - Perform I/O outside of Engine methods (construction via Builder is
//     allocation-only until Build).
//   - Import any sub-package that re-imports goVault (no import cycles).
//
// # Session model
//
// Tokens are opaque: their only authority is the registry they live in.
// With the default in-process registry every session dies with the process;
// the durable sessions table is an audit mirror, never consulted to revive
// a token.
package goVault
