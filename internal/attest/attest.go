// Package attest verifies the proofs the external FHE gateway attaches to
// its callbacks. A proof is an ed25519 signature over a SHA3-256 digest
// binding the request id to the delivered payload; the callback transport
// itself is untrusted.
package attest

import (
	"crypto/ed25519"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// Verifier checks a proof against the request it claims to answer. Both
// callback entry points must reject before any state change when Verify
// fails.
type Verifier interface {
	Verify(requestID string, payload []byte, proof []byte) error
}

// Digest computes the signed message: SHA3-256 over the length-prefixed
// request id and payload. Length prefixes keep (id, payload) pairs from
// colliding under concatenation.
func Digest(requestID string, payload []byte) []byte {
	h := sha3.New256()
	var lenBuf [8]byte
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(requestID)))
	h.Write(lenBuf[:])
	h.Write([]byte(requestID))
	binary.BigEndian.PutUint64(lenBuf[:], uint64(len(payload)))
	h.Write(lenBuf[:])
	h.Write(payload)
	return h.Sum(nil)
}

// Ed25519Verifier validates proofs against the gateway's published key.
type Ed25519Verifier struct {
	publicKey ed25519.PublicKey
}

// NewEd25519Verifier parses a hex-encoded ed25519 public key.
func NewEd25519Verifier(hexKey string) (*Ed25519Verifier, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("decode verifier key: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("verifier key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return &Ed25519Verifier{publicKey: ed25519.PublicKey(raw)}, nil
}

func (v *Ed25519Verifier) Verify(requestID string, payload []byte, proof []byte) error {
	if len(proof) != ed25519.SignatureSize {
		return fmt.Errorf("proof must be %d bytes, got %d", ed25519.SignatureSize, len(proof))
	}
	if !ed25519.Verify(v.publicKey, Digest(requestID, payload), proof) {
		return fmt.Errorf("proof does not match request %s", requestID)
	}
	return nil
}

// Signer produces proofs the way the gateway does. Lives here so tests and
// the local gateway simulator share the exact digest construction.
type Signer struct {
	privateKey ed25519.PrivateKey
}

func NewSigner(key ed25519.PrivateKey) *Signer {
	return &Signer{privateKey: key}
}

func (s *Signer) Sign(requestID string, payload []byte) []byte {
	return ed25519.Sign(s.privateKey, Digest(requestID, payload))
}
