package query

import (
	"time"

	"medcommons/contracts/fhe"
	id "medcommons/pkg/domain"
)

// ResearchQuery is one researcher's active query. Each requester holds at
// most one; submitting again replaces it. Result starts as the trivial
// encryption of zero and is written exactly once, when the computation
// callback lands.
type ResearchQuery struct {
	Requester   id.ActorID
	Query       fhe.Ciphertext
	Result      fhe.Ciphertext
	SubmittedAt time.Time
	Processed   bool
}

func (q ResearchQuery) clone() ResearchQuery {
	q.Query = cloneCiphertext(q.Query)
	q.Result = cloneCiphertext(q.Result)
	return q
}

func cloneCiphertext(ct fhe.Ciphertext) fhe.Ciphertext {
	if ct.Data == nil {
		return ct
	}
	data := make([]byte, len(ct.Data))
	copy(data, ct.Data)
	ct.Data = data
	return ct
}

// PendingKind distinguishes the two outstanding-request flavors.
type PendingKind string

const (
	KindComputation PendingKind = "computation"
	KindDecryption  PendingKind = "decryption"
)

// PendingRequest is one outstanding external request. It binds the request
// id handed to the gateway to the requester it was issued for, and is
// consumed exactly once by the matching callback.
type PendingRequest struct {
	RequestID string      `json:"request_id"`
	Kind      PendingKind `json:"kind"`
	Requester id.ActorID  `json:"requester"`
	IssuedAt  time.Time   `json:"issued_at"`
}
