// Package jwt issues and verifies the bearer session tokens: short-lived
// access tokens and longer-lived refresh tokens, both HS-family JWTs that
// carry the user identity, an absolute expiry, a unique token identifier
// (jti) and a refresh flag.
//
// # Architecture boundaries
//
// The [Manager] is pure computation. It does not consult the revocation
// store and does not enforce the access/refresh distinction; the Engine's
// guard does both after [Manager.Verify] succeeds.
//
// # What this package must NOT do
//
//   - Return partially validated claims: Verify yields nil on any failure.
//   - Accept algorithms other than the configured one (no "none", no downgrade).
package jwt
