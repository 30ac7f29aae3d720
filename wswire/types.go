package wswire

// ClientId identifies a registered client within the message plane.
type ClientId uint64

// WebsocketMessage is the inner payload format, identical in both
// directions. Timestamp is nanoseconds since epoch, host-provided.
type WebsocketMessage struct {
	ClientId    ClientId `cbor:"client_id"`
	SequenceNum uint64   `cbor:"sequence_num"`
	Timestamp   uint64   `cbor:"timestamp"`
	Message     []byte   `cbor:"message"`
}

// EncodedMessage is the serialised outbound unit stored in a gateway queue
// and in the certified map, keyed by Key.
type EncodedMessage struct {
	ClientId ClientId `cbor:"client_id"`
	Key      string   `cbor:"key"`
	Val      []byte   `cbor:"val"`
}

// CertMessages is what a gateway receives from a poll: a batch of messages
// plus the certificate and tree witness covering exactly that batch.
type CertMessages struct {
	Messages []EncodedMessage `cbor:"messages"`
	Cert     []byte           `cbor:"cert"`
	Tree     []byte           `cbor:"tree"`
}

// FirstMessage is the handshake content a client signs and sends as the
// first WebSocket frame: which client id it is, opening which canister.
type FirstMessage struct {
	ClientId   ClientId `cbor:"client_id"`
	CanisterId string   `cbor:"canister_id"`
}

// FirstFrame is the {content, sig} envelope a client's very first
// WebSocket frame arrives in: content is the CBOR encoding of a
// FirstMessage; sig is the client's Ed25519 signature over it. This is a
// distinct wire shape from ClientMessage below — the original source's
// MessageFromClient{content, sig} — not merely a renamed field, so a
// handshake frame and a later message frame are never interchangeable on
// the wire even though both end up signature-checked the same way.
type FirstFrame struct {
	Content []byte `cbor:"content"`
	Sig     []byte `cbor:"sig"`
}

// ClientMessage is the {val, sig} envelope used for every client->canister
// frame after the handshake. val is the CBOR encoding of a
// WebsocketMessage; sig is the client's Ed25519 signature over it.
type ClientMessage struct {
	Val []byte `cbor:"val"`
	Sig []byte `cbor:"sig"`
}

// GatewayFrame is what the gateway forwards to a client socket: one
// message from a batch, plus the batch's shared certificate and witness.
type GatewayFrame struct {
	Key  string `cbor:"key"`
	Val  []byte `cbor:"val"`
	Cert []byte `cbor:"cert"`
	Tree []byte `cbor:"tree"`
}
