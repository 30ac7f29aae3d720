package gatewayrelay

import (
	"context"

	"github.com/forestrie/go-ws-relay/wswire"
)

// Agent is the external collaborator spec.md names out of scope as the
// "library-provided agent for host RPC": whatever turns these calls into
// a request against one specific canister. One Agent value always talks
// to exactly one canister, as exactly one gateway identity.
//
// Package localagent provides the in-process implementation wired into
// cmd/wsrelay-demo; tests provide their own.
type Agent interface {
	// Open forwards a client's handshake frame. firstMessageBytes is the
	// CBOR encoding of a wswire.FirstMessage; sig is the client's
	// signature over it.
	Open(ctx context.Context, firstMessageBytes, sig []byte) (bool, error)

	// Message forwards a full wswire.ClientMessage envelope whose Val
	// decodes to a wswire.WebsocketMessage.
	Message(ctx context.Context, envelopeBytes []byte) (bool, error)

	// Poll asks for the next certified batch at or after nonce.
	Poll(ctx context.Context, nonce uint64) (wswire.CertMessages, error)

	// Close notifies the canister that clientID's gateway session ended.
	Close(ctx context.Context, clientID wswire.ClientId) error
}

// AgentFactory produces the Agent responsible for canisterID. Server
// calls it whenever a session names a canisterID that has no running
// Poller, and starts that canister's Poller with the result; the Agent is
// reused by every later session naming the same canisterID while that
// Poller runs. Once the canister's last session detaches, the Poller is
// dropped and the next session naming it causes a new factory call.
type AgentFactory func(canisterID string) (Agent, error)
