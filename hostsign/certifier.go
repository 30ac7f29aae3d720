package hostsign

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/veraison/go-cose"
)

// ErrRootMismatch is returned by Verify when a certificate is well-formed
// and correctly signed, but signs a different root than expected.
var ErrRootMismatch = errors.New("hostsign: certificate signs a different root")

// Certifier is the host-runtime collaborator a CMS-backed service asks for
// a certificate over its current root hash. In production this call
// crosses into the replicated host platform; ReferenceCertifier below is
// an in-process stand-in suitable for the demo and for tests.
type Certifier interface {
	Certify(root [32]byte) (certificate []byte, err error)
}

// ReferenceCertifier signs roots with a local Ed25519 key using COSE_Sign1,
// standing in for the host platform's own certification of certified-data.
type ReferenceCertifier struct {
	issuer string
	signer cose.Signer
}

// NewReferenceCertifier builds a Certifier identified as issuer, signing
// with priv.
func NewReferenceCertifier(issuer string, priv ed25519.PrivateKey) (*ReferenceCertifier, error) {
	signer, err := cose.NewSigner(cose.AlgorithmEdDSA, priv)
	if err != nil {
		return nil, fmt.Errorf("hostsign: building signer: %w", err)
	}
	return &ReferenceCertifier{issuer: issuer, signer: signer}, nil
}

// Certify signs root, returning a COSE_Sign1 certificate over it.
func (c *ReferenceCertifier) Certify(root [32]byte) ([]byte, error) {
	msg := &cose.Sign1Message{
		Headers: cose.Headers{
			Protected: cose.ProtectedHeader{
				cose.HeaderLabelAlgorithm: cose.AlgorithmEdDSA,
				cose.HeaderLabelKeyID:     []byte(c.issuer),
			},
		},
		Payload: root[:],
	}
	if err := msg.Sign(rand.Reader, nil, c.signer); err != nil {
		return nil, fmt.Errorf("hostsign: signing root: %w", err)
	}
	data, err := msg.MarshalCBOR()
	if err != nil {
		return nil, fmt.Errorf("hostsign: encoding certificate: %w", err)
	}
	return data, nil
}

// Verify checks that certificate is a valid COSE_Sign1 message, signed by
// pub, over exactly root.
func Verify(certificate []byte, pub ed25519.PublicKey, root [32]byte) error {
	msg := &cose.Sign1Message{}
	if err := msg.UnmarshalCBOR(certificate); err != nil {
		return fmt.Errorf("hostsign: decoding certificate: %w", err)
	}
	verifier, err := cose.NewVerifier(cose.AlgorithmEdDSA, pub)
	if err != nil {
		return fmt.Errorf("hostsign: building verifier: %w", err)
	}
	if err := msg.Verify(nil, verifier); err != nil {
		return fmt.Errorf("hostsign: verifying signature: %w", err)
	}
	if string(msg.Payload) != string(root[:]) {
		return ErrRootMismatch
	}
	return nil
}
