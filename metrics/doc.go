// Package metrics owns the Prometheus collectors for bloombox.
//
// Collectors are registered on a private registry created by [New]; the
// process mounts [Metrics.Handler] at /metrics. Counter names are prefixed
// bloombox_ and end in _total; latency histograms end in _seconds.
//
// Every method is safe on a nil *Metrics, so components can run without
// metrics wired.
//
// # What this package must NOT do
//
//   - Register collectors in the global Prometheus registry.
//   - Label by user identity (email, uid, jti): label sets must stay bounded.
package metrics
