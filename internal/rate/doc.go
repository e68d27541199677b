// Package rate provides the Redis-backed fixed-window counters that throttle
// failed logins and refresh-token exchanges.
//
// # Window semantics
//
// A [Window] names a key prefix, a hit budget and a period. [Limiter.Hit]
// runs INCR and the first-hit PEXPIRE as one script, so a counter always
// expires. Prefixes used by the engine:
//   - rl:   failed logins per email
//   - rli:  failed logins per client IP
//   - rr:   access-token exchanges per refresh token jti
//
// # What this package must NOT do
//
//   - Decide whether credentials are valid; callers report outcomes.
//   - Be imported outside the bloombox module.
package rate
