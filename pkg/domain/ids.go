package domain

import (
	"github.com/google/uuid"

	dErrors "medcommons/pkg/domain-errors"
)

// Typed identifiers keep actor, record, and proposal references from being
// swapped at call sites. Construct via the Parse helpers at trust boundaries;
// direct casting bypasses validation.

// ActorID is the opaque, globally unique reference for a participant
// (patient, hospital, or researcher). It is the account-address equivalent
// carried in access tokens.
type ActorID uuid.UUID

// ParseActorID validates and returns an ActorID.
// Rejects empty strings, malformed UUIDs, and the nil UUID.
func ParseActorID(s string) (ActorID, error) {
	if s == "" {
		return ActorID{}, dErrors.New(dErrors.CodeInvalidInput, "actor id is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return ActorID{}, dErrors.New(dErrors.CodeInvalidInput, "actor id must be a valid UUID")
	}
	if u == uuid.Nil {
		return ActorID{}, dErrors.New(dErrors.CodeInvalidInput, "actor id must not be the nil UUID")
	}
	return ActorID(u), nil
}

func (a ActorID) String() string {
	return uuid.UUID(a).String()
}

func (a ActorID) IsNil() bool {
	return uuid.UUID(a) == uuid.Nil
}

func (a ActorID) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *ActorID) UnmarshalText(b []byte) error {
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return err
	}
	*a = ActorID(u)
	return nil
}

// RecordID identifies an entry in the encrypted record ledger. IDs are
// assigned by the ledger's monotonic sequence, start at 1, and are never
// reused.
type RecordID int64

func (r RecordID) IsValid() bool {
	return r >= 1
}

// ProposalID identifies a governance proposal. Same monotonic-sequence rules
// as RecordID.
type ProposalID int64

func (p ProposalID) IsValid() bool {
	return p >= 1
}
