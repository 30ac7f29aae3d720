package certmap

import (
	"sort"

	"github.com/forestrie/go-ws-relay/wswire"
)

// WitnessNode is a pruned node of a labelled subtree: exactly one of
// Pruned, Leaf or Fork is set. It is the wire shape of a CMS witness,
// mirroring ic-certified-map's HashTree (Pruned / Leaf / Fork variants;
// the CMS never needs the Empty or Labeled variants since it always
// witnesses under the one fixed label applied at the root).
type WitnessNode struct {
	Pruned []byte       `cbor:"1,keyasint,omitempty"`
	Leaf   *WitnessLeaf `cbor:"2,keyasint,omitempty"`
	Fork   *WitnessFork `cbor:"3,keyasint,omitempty"`
}

// WitnessLeaf reveals one CMS entry in full so a client can recompute its
// leaf hash and match it against EncodedMessage.Val.
type WitnessLeaf struct {
	Key    string `cbor:"key"`
	Digest []byte `cbor:"digest"`
}

// WitnessFork is an interior node with both children present (possibly
// themselves pruned).
type WitnessFork struct {
	Left  *WitnessNode `cbor:"left"`
	Right *WitnessNode `cbor:"right"`
}

// WitnessSingle returns the self-describing CBOR encoding of the labelled
// subtree proving inclusion of key (if present) or its absence (revealing
// the bracketing neighbours, if any).
func (t *Tree) WitnessSingle(key string) ([]byte, error) {
	i, found := t.find(key)
	lo, hi := i, i
	if found {
		hi = i + 1
	} else {
		lo = max(0, i-1)
		hi = min(len(t.entries), i+1)
	}
	node := buildWitness(t.entries, 0, len(t.entries), lo, hi)
	return wswire.Marshal(node)
}

// WitnessRange returns the self-describing CBOR encoding of the labelled
// subtree proving the contiguous set of entries in [first,last].
func (t *Tree) WitnessRange(first, last string) ([]byte, error) {
	lo := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].key >= first })
	hi := sort.Search(len(t.entries), func(i int) bool { return t.entries[i].key > last })
	node := buildWitness(t.entries, 0, len(t.entries), lo, hi)
	return wswire.Marshal(node)
}

// buildWitness recursively prunes the conceptual tree over entries[lo:hi],
// fully revealing every leaf whose index falls in [revealLo,revealHi) and
// collapsing everything else to its hash.
func buildWitness(entries []entry, lo, hi, revealLo, revealHi int) *WitnessNode {
	n := hi - lo
	if n == 0 {
		return &WitnessNode{Pruned: make([]byte, HashBytes)}
	}
	if revealHi <= lo || revealLo >= hi {
		h := rootOf(entries, lo, hi)
		cp := append([]byte(nil), h[:]...)
		return &WitnessNode{Pruned: cp}
	}
	if n == 1 {
		e := entries[lo]
		return &WitnessNode{Leaf: &WitnessLeaf{Key: e.key, Digest: append([]byte(nil), e.digest[:]...)}}
	}
	k := splitPoint(n)
	left := buildWitness(entries, lo, lo+k, revealLo, revealHi)
	right := buildWitness(entries, lo+k, hi, revealLo, revealHi)
	return &WitnessNode{Fork: &WitnessFork{Left: left, Right: right}}
}

// DecodeWitness parses the self-describing CBOR encoding of a WitnessNode.
func DecodeWitness(data []byte) (*WitnessNode, error) {
	var node WitnessNode
	if err := wswire.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	return &node, nil
}

// Reconstruct recomputes the unlabelled tree root this witness proves.
func (n *WitnessNode) Reconstruct() [HashBytes]byte {
	switch {
	case n.Leaf != nil:
		var d [HashBytes]byte
		copy(d[:], n.Leaf.Digest)
		return hashLeaf(n.Leaf.Key, d)
	case n.Fork != nil:
		return hashBranch(n.Fork.Left.Reconstruct(), n.Fork.Right.Reconstruct())
	default:
		var h [HashBytes]byte
		copy(h[:], n.Pruned)
		return h
	}
}

// LabelledRoot recomputes the full certified-data value this witness
// proves, under label.
func (n *WitnessNode) LabelledRoot(label string) [HashBytes]byte {
	return LabelRoot(label, n.Reconstruct())
}

// Lookup finds a revealed leaf by key within the witness, returning its
// digest. Used by clients/tests to verify a specific EncodedMessage.Val
// hashes to the digest the witness proves for EncodedMessage.Key.
func (n *WitnessNode) Lookup(key string) (digest []byte, found bool) {
	switch {
	case n.Leaf != nil:
		if n.Leaf.Key == key {
			return n.Leaf.Digest, true
		}
		return nil, false
	case n.Fork != nil:
		if d, ok := n.Fork.Left.Lookup(key); ok {
			return d, true
		}
		return n.Fork.Right.Lookup(key)
	default:
		return nil, false
	}
}
