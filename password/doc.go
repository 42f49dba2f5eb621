// Package password implements the password hashing schemes used by goVault.
//
// # Schemes
//
// [Iterated] is the default: a salted SHA-256 digest fed back through the
// hash for a configurable number of rounds, stored as separate salt and hex
// digest fields. [Argon2] is the hardened alternative, encoded as a
// self-contained PHC string:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [IsPHC] distinguishes the two stored forms so both can coexist in one
// user table. [Argon2.NeedsUpgrade] supports transparent parameter
// upgrades: if a stored hash was produced with weaker parameters, the
// caller can re-hash on the next successful login.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Password policy (minimum
// length, reuse history) is enforced by the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve passwords — callers supply plaintext and receive hashes.
//   - Import any other goVault package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
