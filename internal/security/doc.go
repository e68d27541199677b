// Package security summarizes the security posture implied by an engine
// configuration. It is pure computation and holds no secrets.
package security
