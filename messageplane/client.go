package messageplane

import "github.com/forestrie/go-ws-relay/wswire"

// ClientId is a process-lifetime-unique client identifier, never reused.
type ClientId = wswire.ClientId

// initialClientId is the first id handed out by Register; spec.md reserves
// 0-15 (matching the source canister's thread_local init value of 16).
const initialClientId ClientId = 16

// initialNonce is the first message nonce handed out by Send.
const initialNonce uint64 = 16

// clientRecord holds everything the plane knows about one client.
// caller, publicKey are set once at Register and never change.
// gateway is set once at Open and never changes thereafter (see the
// redesigned re-open policy in Plane.Open).
type clientRecord struct {
	caller      string
	publicKey   [32]byte
	gateway     string
	gatewaySet  bool
	outboundSeq uint64
	inboundSeq  uint64
}
