package attest

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKeyPair(t *testing.T) (*Ed25519Verifier, *Signer) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	verifier, err := NewEd25519Verifier(hex.EncodeToString(pub))
	require.NoError(t, err)
	return verifier, NewSigner(priv)
}

func TestVerifyRoundTrip(t *testing.T) {
	verifier, signer := newKeyPair(t)
	payload := []byte("result-bytes")

	proof := signer.Sign("req-1", payload)
	require.NoError(t, verifier.Verify("req-1", payload, proof))
}

func TestVerifyRejectsTamperedPayload(t *testing.T) {
	verifier, signer := newKeyPair(t)
	proof := signer.Sign("req-1", []byte("result-bytes"))

	assert.Error(t, verifier.Verify("req-1", []byte("other-bytes"), proof))
}

func TestVerifyRejectsWrongRequest(t *testing.T) {
	verifier, signer := newKeyPair(t)
	payload := []byte("result-bytes")
	proof := signer.Sign("req-1", payload)

	assert.Error(t, verifier.Verify("req-2", payload, proof))
}

func TestVerifyRejectsShortProof(t *testing.T) {
	verifier, _ := newKeyPair(t)
	assert.Error(t, verifier.Verify("req-1", []byte("x"), []byte{1, 2, 3}))
}

func TestDigestLengthPrefixing(t *testing.T) {
	// ("ab", "c") and ("a", "bc") must not collide.
	assert.NotEqual(t, Digest("ab", []byte("c")), Digest("a", []byte("bc")))
}

func TestNewVerifierRejectsBadKeys(t *testing.T) {
	_, err := NewEd25519Verifier("not-hex")
	assert.Error(t, err)

	_, err = NewEd25519Verifier(hex.EncodeToString([]byte("short")))
	assert.Error(t, err)
}
