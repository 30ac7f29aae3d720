package messageplane

import "errors"

// ErrBadKey is returned by Register when the supplied bytes do not decode
// to a valid Ed25519 public key. spec.md documents this as a trap
// contract: callers must not register with garbage.
var ErrBadKey = errors.New("messageplane: malformed ed25519 public key")

// ErrUnknownClient is returned by GetClientKey (and internally by Open/
// Message) when client_id has no registered key.
var ErrUnknownClient = errors.New("messageplane: unknown client id")

// ErrMalformedEnvelope is returned by Open/Message when the supplied bytes
// fail to CBOR-decode into the expected shape. Unlike ErrBadKey/
// ErrUnknownClient, this is not a trap contract: spec.md's redesigned
// behaviour (open question §9.4) has the RPC boundary fold this into the
// same `false` the protocol already uses for bad signatures and sequence
// mismatches, rather than trapping on malformed input.
var ErrMalformedEnvelope = errors.New("messageplane: malformed envelope")
