// Package logging defines the context-aware structured logger used across
// bloombox and its zap-backed implementation.
//
// Call sites pass key/value pairs after the message:
//
//	log.Info(ctx, "user created", "user_uid", u.UID, "role", u.Role)
//
// # What this package must NOT do
//
//   - Log plaintext passwords, bearer tokens, or signed envelopes.
//   - Hold process-wide state: loggers are constructed and injected.
package logging
