// Package fhe defines the wire contract between the coordinator core and the
// external homomorphic computation gateway. The core never inspects ciphertext
// contents; everything here is opaque bytes plus a declared type tag.
package fhe

import (
	"errors"
	"fmt"
)

// TypeTag declares the plaintext bit-width a ciphertext encrypts. The
// gateway rejects arithmetic across mismatched tags, so the tag travels with
// every handle.
type TypeTag uint8

const (
	TagBool TypeTag = iota
	TagUint8
	TagUint16
	TagUint32
	TagUint64
)

func (t TypeTag) IsValid() bool {
	return t <= TagUint64
}

func (t TypeTag) String() string {
	switch t {
	case TagBool:
		return "ebool"
	case TagUint8:
		return "euint8"
	case TagUint16:
		return "euint16"
	case TagUint32:
		return "euint32"
	case TagUint64:
		return "euint64"
	}
	return fmt.Sprintf("unknown(%d)", uint8(t))
}

// Ciphertext is an opaque handle to an encrypted value. Data is produced by
// the client-side encryption tooling and is never decrypted in-process.
type Ciphertext struct {
	Tag  TypeTag `json:"tag"`
	Data []byte  `json:"data"`
}

var (
	ErrEmptyCiphertext = errors.New("fhe: empty ciphertext")
	ErrInvalidTag      = errors.New("fhe: invalid type tag")
	ErrShortEncoding   = errors.New("fhe: encoding too short")
)

// Validate rejects handles that could not have come from the encryption
// client: unknown tags or missing payloads.
func (c Ciphertext) Validate() error {
	if !c.Tag.IsValid() {
		return ErrInvalidTag
	}
	if len(c.Data) == 0 {
		return ErrEmptyCiphertext
	}
	return nil
}

// IsZeroValue reports whether the handle is the trivial encryption of zero.
func (c Ciphertext) IsZeroValue() bool {
	return len(c.Data) == 1 && c.Data[0] == 0
}

// TrivialZero returns the gateway-understood trivial encryption of zero for
// the given tag. Used to initialize result slots before a computation lands.
func TrivialZero(tag TypeTag) Ciphertext {
	return Ciphertext{Tag: tag, Data: []byte{0}}
}

// Encode flattens a handle into the gateway wire form: one tag byte followed
// by the raw ciphertext payload.
func (c Ciphertext) Encode() []byte {
	out := make([]byte, 0, len(c.Data)+1)
	out = append(out, byte(c.Tag))
	return append(out, c.Data...)
}

// Decode parses the gateway wire form back into a handle. Result callbacks
// deliver ciphertexts in this encoding.
func Decode(b []byte) (Ciphertext, error) {
	if len(b) < 2 {
		return Ciphertext{}, ErrShortEncoding
	}
	tag := TypeTag(b[0])
	if !tag.IsValid() {
		return Ciphertext{}, ErrInvalidTag
	}
	data := make([]byte, len(b)-1)
	copy(data, b[1:])
	return Ciphertext{Tag: tag, Data: data}, nil
}

// ComputationRequest is posted to the gateway's compute endpoint. Batch order
// is significant and fixed by the coordinator.
type ComputationRequest struct {
	RequestID   string       `json:"request_id"`
	Batch       []Ciphertext `json:"batch"`
	CallbackURL string       `json:"callback_url"`
}

// ComputationResult is the gateway's asynchronous callback payload. Result is
// an encoded Ciphertext; Proof attests to (request_id, result).
type ComputationResult struct {
	RequestID string `json:"request_id"`
	Result    []byte `json:"result"`
	Proof     []byte `json:"proof"`
}

// DecryptionRequest forwards ciphertexts to the gateway's threshold
// decryption endpoint.
type DecryptionRequest struct {
	RequestID   string       `json:"request_id"`
	Ciphertexts []Ciphertext `json:"ciphertexts"`
	CallbackURL string       `json:"callback_url"`
}

// DecryptionResult carries the cleartext back. Proof attests to
// (request_id, cleartext).
type DecryptionResult struct {
	RequestID string `json:"request_id"`
	Cleartext []byte `json:"cleartext"`
	Proof     []byte `json:"proof"`
}
