// Package export writes registration records to plain-text files for
// offline inspection and reporting.
//
// # File layout
//
// The [FileExporter] maintains two artifacts under its directory: a
// pretty-printed text file with one block per registration, and an append-only
// pipe-separated log consumed by [FileExporter.ReadAll],
// [FileExporter.Count], and [FileExporter.Stats].
//
// # Architecture boundaries
//
// This package owns the export file formats. It does NOT decide when a
// registration is exported — the Engine calls it — and export failures must
// never fail the registration that triggered them.
//
// # What this package must NOT do
//
//   - Import goVault, store, or session (no upward imports).
//   - Receive or persist password material of any kind.
package export
