// Package certmap implements the Certified Map Store: an ordered,
// insert-and-delete map from string keys to 32-byte digests, with a
// published labelled root hash and single-key / key-range inclusion and
// exclusion witnesses.
//
// The tree shape and the domain-tagged leaf/branch hashing follow
// github.com/forestrie/go-merklelog/urkle's hash.go and proof.go, adapted
// from an append-only uint64-keyed trie to a mutable string-keyed binary
// Merkle tree built on the RFC 6962 canonical split (MTH), since the
// websocket message map needs delete as well as insert.
package certmap
