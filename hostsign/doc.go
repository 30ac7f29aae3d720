// Package hostsign provides the certified-data signing step the CMS
// (package certmap) deliberately does not know about: turning a labelled
// root hash into the host-signed certificate byte string spec.md §4.1
// calls "obtained from the host runtime lazily at witness time".
//
// Grounded on massifs/cose.CoseSign1Message and massifs/rootsigner.go's
// RootSigner: both sign a fixed-size payload (there, a log checkpoint;
// here, a certified-data root) into a COSE_Sign1 message and verify it
// the same way.
package hostsign
