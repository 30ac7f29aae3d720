// Package wswire holds the wire types shared by the canister message plane
// and the gateway relay, and the self-describing CBOR codec used to
// serialise them.
//
// Grounded on massifs/cborcodec.go's wrapping of fxamacker/cbor with a
// deterministic EncMode, adapted here to also prepend/strip the CBOR
// self-describe tag (55799) spec.md §6/§9 requires on every payload:
// decoders accept input with or without the tag, matching the source
// serde_cbor library's behaviour.
package wswire

import (
	"github.com/fxamacker/cbor/v2"
)

// selfDescribeTag is the 3-byte encoding of CBOR tag 55799 (major type 6,
// two-byte argument 0xD9F7) — the "this is CBOR" self-describe prefix.
var selfDescribeTag = [3]byte{0xD9, 0xD9, 0xF7}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}
	var err error
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic("wswire: bad encode options: " + err.Error())
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic("wswire: bad decode options: " + err.Error())
	}
}

// Marshal encodes v as self-describing CBOR.
func Marshal(v any) ([]byte, error) {
	body, err := encMode.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(selfDescribeTag)+len(body))
	out = append(out, selfDescribeTag[:]...)
	out = append(out, body...)
	return out, nil
}

// Unmarshal decodes v from data, tolerating a leading self-describe tag.
func Unmarshal(data []byte, v any) error {
	if len(data) >= len(selfDescribeTag) &&
		data[0] == selfDescribeTag[0] && data[1] == selfDescribeTag[1] && data[2] == selfDescribeTag[2] {
		data = data[len(selfDescribeTag):]
	}
	return decMode.Unmarshal(data, v)
}
