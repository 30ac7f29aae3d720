package host

import (
	"sync"

	"github.com/forestrie/go-ws-relay/messageplane"
	"github.com/forestrie/go-ws-relay/wswire"
)

// Runtime serializes access to one messageplane.Plane, reproducing the
// run-to-completion guarantee spec.md assumes of the canister execution
// model. Every exported method takes the same lock Plane itself has no
// notion of.
type Runtime struct {
	mu    sync.Mutex
	plane *messageplane.Plane
}

// New wraps plane. plane must not be used directly by any other caller
// once wrapped, or Runtime's serialization guarantee is void.
func New(plane *messageplane.Plane) *Runtime {
	return &Runtime{plane: plane}
}

func (r *Runtime) Register(caller string, publicKeyBytes []byte) (messageplane.ClientId, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plane.Register(caller, publicKeyBytes)
}

func (r *Runtime) GetClientKey(clientID messageplane.ClientId) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plane.GetClientKey(clientID)
}

func (r *Runtime) Open(caller string, firstMessageBytes, sig []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plane.Open(caller, firstMessageBytes, sig)
}

func (r *Runtime) Message(envelopeBytes []byte) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plane.Message(envelopeBytes)
}

func (r *Runtime) Poll(caller string, nonce uint64) (wswire.CertMessages, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plane.Poll(caller, nonce)
}

func (r *Runtime) Close(clientID messageplane.ClientId) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plane.Close(clientID)
}

func (r *Runtime) Wipe() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plane.Wipe()
}

func (r *Runtime) Stats() messageplane.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.plane.Stats()
}
