// Package host stands in for the single-threaded, cooperatively-scheduled
// canister runtime that spec.md assumes messageplane.Plane runs inside:
// every call into the canister is guaranteed to complete before the next
// one starts, so Plane itself never needs to synchronize its own state.
//
// Outside that runtime (a Go process, with real goroutines) that guarantee
// has to be provided explicitly. Runtime does it with a single mutex
// around one *messageplane.Plane, giving every exported method the same
// run-to-completion semantics the original canister got for free. One
// Runtime models one deployed canister; a gateway relaying to several
// canisters holds one Runtime per canister (see package localagent).
package host
