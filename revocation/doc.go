// Package revocation provides the Redis-backed blocklist of revoked session
// token identifiers (jti).
//
// Each entry lives exactly as long as the token it revokes could still be
// presented, so the blocklist never grows beyond the set of live tokens.
//
// # Architecture boundaries
//
// This package stores and looks up identifiers. It does not parse tokens or
// decide what a revoked token means for a request; the Engine guard does.
//
// # What this package must NOT do
//
//   - Keep membership in process memory: several server instances share one store.
//   - Swallow Redis errors as "not revoked"; callers must fail closed.
package revocation
