package certmap

import "crypto/sha256"

// Domain tags for leaf vs. interior nodes, so a leaf hash can never be
// replayed as a branch hash or vice versa. Mirrors the 0x00/0x01 tagging
// in urkle's hash.go.
const (
	tagLeaf   = 0x00
	tagBranch = 0x01
)

// HashBytes is the fixed digest width used throughout the tree.
const HashBytes = sha256.Size

// hashLeaf computes H(0x00 || len(key) || key || digest).
func hashLeaf(key string, digest [HashBytes]byte) [HashBytes]byte {
	h := sha256.New()
	h.Write([]byte{tagLeaf})
	writeUint32(h, uint32(len(key)))
	h.Write([]byte(key))
	h.Write(digest[:])
	var out [HashBytes]byte
	copy(out[:], h.Sum(nil))
	return out
}

// hashBranch computes H(0x01 || left || right).
func hashBranch(left, right [HashBytes]byte) [HashBytes]byte {
	h := sha256.New()
	h.Write([]byte{tagBranch})
	h.Write(left[:])
	h.Write(right[:])
	var out [HashBytes]byte
	copy(out[:], h.Sum(nil))
	return out
}

// LabelRoot computes H(len(label) || label || root), the certified-data
// value the host publishes for a given CMS root hash under a fixed label.
func LabelRoot(label string, root [HashBytes]byte) [HashBytes]byte {
	h := sha256.New()
	writeUint32(h, uint32(len(label)))
	h.Write([]byte(label))
	h.Write(root[:])
	var out [HashBytes]byte
	copy(out[:], h.Sum(nil))
	return out
}

func writeUint32(w interface{ Write([]byte) (int, error) }, v uint32) {
	var b [4]byte
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
	w.Write(b[:])
}
