package query

import (
	"context"

	"medcommons/contracts/fhe"
)

//go:generate mockgen -source=ports.go -destination=mocks/ports_mock.go -package=mocks

// ComputationService dispatches an ordered ciphertext batch to the external
// FHE gateway. The call is fire-and-forget; the answer arrives later on the
// computation callback, identified by requestID.
type ComputationService interface {
	RequestComputation(ctx context.Context, requestID string, batch []fhe.Ciphertext) error
}

// DecryptionService forwards a result ciphertext to the gateway's threshold
// decryption endpoint. The cleartext arrives on the decryption callback.
type DecryptionService interface {
	RequestDecryption(ctx context.Context, requestID string, ciphertext fhe.Ciphertext) error
}
