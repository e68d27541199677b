// Package middleware adapts the bloombox Engine guards to net/http.
//
// # Guards
//
//   - [RequireAccess] accepts access tokens only.
//   - [RequireRefresh] accepts refresh tokens only.
//   - [RequireRoles] runs the access guard, then the role check.
//
// Each guard reads the Authorization header, calls Engine.Authenticate, and
// injects the verified claims into the request context. Rejections are
// written with [WriteError].
//
// # Request plumbing
//
// [RequestID], [Logger], [Metrics] and [ClientIP] wrap every route.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Make authorization decisions beyond what Engine returns.
package middleware
