// Package store provides a JSON-file-persisted, table-oriented record store with
// exact-match queries, auto-incrementing identifiers, and aggregate statistics.
//
// # Persistence discipline
//
// The whole database lives in a single JSON document. Every mutating call
// (CreateTable, DropTable, Insert, and any Update/Delete that changed at least
// one record) rewrites the full document before returning. Reads never touch
// disk after the initial load. Malformed or missing state at startup is logged
// and the store continues empty; it never fails to open because of corruption.
//
// # Architecture boundaries
//
// This package owns tables, records, record metadata, unique constraints, and
// backups. It knows nothing about users, passwords, or sessions — those
// semantics belong to the Engine in the root package.
//
// # What this package must NOT do
//
//   - Import goVault or any sibling package (no upward imports).
//   - Retry failed writes; a persistence failure surfaces once as a *StorageError.
//   - Hand out references into live table state; every returned Record is a deep copy.
package store
