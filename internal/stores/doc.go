// Package stores provides Redis-backed, short-lived record stores for
// security-sensitive authentication flows.
//
// # Design
//
// The consumed-envelope ledger remembers which signed envelopes have already
// been redeemed. Keys are the SHA-256 of the envelope so the envelope itself
// never reaches Redis, and each record expires together with the envelope's
// max-age.
//
// # Architecture boundaries
//
// This package owns persistence for transient records. It does NOT decode or
// verify envelopes; the Engine does that before consuming.
//
// # What this package must NOT do
//
//   - Import bloombox or any sibling internal package.
//   - Store plaintext envelopes or secrets.
package stores
