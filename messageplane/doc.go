// Package messageplane implements the Canister Message Plane: per-client
// identity and sequence state, per-gateway outbound queues, the global
// age-ordered delete queue, and the seven client-facing operations
// (Register, GetClientKey, Open, Message, Send, Poll, Close) plus the
// debug Wipe.
//
// A *Plane* value owns all process-wide tables spec.md §4.2 describes.
// It assumes single-threaded, run-to-completion callers, the same
// assumption the source canister's host platform provides natively (see
// host.Runtime, which is where that guarantee is actually enforced for
// this Go port).
package messageplane
