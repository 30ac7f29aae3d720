// Package gatewayrelay is the Gateway Relay (GR): it terminates client
// WebSocket connections, forwards their frames to the right canister via
// an Agent, and relays each canister's certified outbound batches back to
// the sessions that asked for them.
//
// Two kinds of long-lived goroutine make up one running relay:
//
//   - a Session per connected socket, reading client frames and writing
//     queued outbound frames;
//   - a Poller per canister currently in use by at least one session,
//     polling that canister's Agent on a fixed interval and fanning
//     delivered messages out to the sessions whose ClientId they name.
//
// The Server runs no goroutine of its own: it is a mutex-guarded value
// that owns the canisterID -> Poller table and the session counter, and is
// the only thing that creates or tears down pollers.
//
// A session never reaches into the poller table directly, and a poller
// never reaches into a session beyond calling deliver: cross-actor
// communication is through Server's attach/detach methods (plain calls
// under the Server's mutex, not channel messages) and Session's deliver
// (a buffered channel). The one piece of mutable state two actors share
// is each Poller's mutex-guarded ClientId -> Session map.
package gatewayrelay
