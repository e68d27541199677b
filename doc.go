// Package bloombox is the authentication core of the bloombox subscription
// backend: signup, login, JWT access/refresh tokens with a Redis revocation
// blocklist, role checks against the user directory, and signed links for
// email verification and password reset.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// bloombox is the public surface. It exposes [Engine], [Builder], [Config],
// the sentinel errors and [ErrorInfo]. Token codecs, the revocation store,
// the user directory and the mail queue live in their own packages and are
// wired together here. HTTP adapters live in middleware/ and
// internal/server.
//
// # What this package must NOT do
//
//   - Write HTTP responses; it returns errors and lets [ErrorInfo] map them.
//   - Trust a role carried inside a token; roles are always read from the
//     directory.
//   - Treat a revocation backend failure as "not revoked".
package bloombox
