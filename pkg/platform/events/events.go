// Package events carries the coordinator's outward-facing notifications.
// Every state change observers care about (record appended, query processed,
// proposal executed, ...) is emitted as an Event and fanned out to the
// configured sinks by a background worker. Delivery is fire-and-forget,
// at-least-once; the emitting operation never fails because a sink is slow.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Type names a notification kind.
type Type string

const (
	TypeParticipantRegistered Type = "participant_registered"
	TypeRecordSubmitted       Type = "record_submitted"
	TypeQuerySubmitted        Type = "query_submitted"
	TypeQueryDiscarded        Type = "query_discarded"
	TypeQueryProcessed        Type = "query_processed"
	TypeResultDecrypted       Type = "result_decrypted"
	TypeProposalCreated       Type = "proposal_created"
	TypeVoteCast              Type = "vote_cast"
	TypeProposalExecuted      Type = "proposal_executed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID `json:"id"`
	Type      Type      `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	// Actor is the identity the event is about (submitter, requester, voter).
	Actor string `json:"actor,omitempty"`
	// Subject carries the relevant id: record id, proposal id, request id.
	Subject string `json:"subject,omitempty"`
	// RequestID is the HTTP correlation id of the operation that emitted the
	// event, when one exists.
	RequestID string `json:"request_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
}
