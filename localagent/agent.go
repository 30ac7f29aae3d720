package localagent

import (
	"context"

	"github.com/forestrie/go-ws-relay/host"
	"github.com/forestrie/go-ws-relay/messageplane"
	"github.com/forestrie/go-ws-relay/wswire"
)

// Agent binds one *host.Runtime (one canister) to one gateway identity,
// the "caller" string every messageplane.Plane call is made as.
type Agent struct {
	runtime   *host.Runtime
	gatewayID string
}

// New builds an Agent forwarding to runtime as gatewayID.
func New(runtime *host.Runtime, gatewayID string) *Agent {
	return &Agent{runtime: runtime, gatewayID: gatewayID}
}

func (a *Agent) Open(ctx context.Context, firstMessageBytes, sig []byte) (bool, error) {
	return a.runtime.Open(a.gatewayID, firstMessageBytes, sig)
}

func (a *Agent) Message(ctx context.Context, envelopeBytes []byte) (bool, error) {
	return a.runtime.Message(envelopeBytes)
}

func (a *Agent) Poll(ctx context.Context, nonce uint64) (wswire.CertMessages, error) {
	return a.runtime.Poll(a.gatewayID, nonce)
}

func (a *Agent) Close(ctx context.Context, clientID wswire.ClientId) error {
	a.runtime.Close(messageplane.ClientId(clientID))
	return nil
}
