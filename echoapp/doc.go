// Package echoapp is the demo messageplane.Application wired into
// cmd/wsrelay-demo. It reproduces the original canister.rs sample's
// behaviour: say "ping" the moment a client opens, then echo every
// message back with " ping" appended. The text handling is deliberately
// trivial — it exists to exercise the relay end to end, not to
// demonstrate anything about application design.
package echoapp
