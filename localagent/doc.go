// Package localagent is the in-process stand-in for the real network
// agent gatewayrelay.Agent abstracts: it turns Agent calls directly into
// calls against a *host.Runtime living in the same process, instead of a
// TLS/HTTP round trip to a replicated host (out of scope, per spec.md).
package localagent
