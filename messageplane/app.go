package messageplane

import "github.com/forestrie/go-ws-relay/wswire"

// Sender is the capability Plane gives an Application so it can push
// outbound messages to a client without reaching into Plane's tables
// directly. *Plane satisfies this interface.
type Sender interface {
	Send(clientID ClientId, payload []byte)
}

// Application is the external collaborator spec.md calls the
// "application handler": the on_open/on_message hooks invoked by Open and
// Message once the protocol-level checks (signature, sequence) pass. See
// package echoapp for the demo implementation.
type Application interface {
	OnOpen(clientID ClientId)
	OnMessage(msg wswire.WebsocketMessage)
}
