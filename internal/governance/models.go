package governance

import (
	"time"

	id "medcommons/pkg/domain"
)

// Proposal is a governance motion. Votes only count in favor; a proposal
// with enough support is executed exactly once after its deadline passes.
type Proposal struct {
	ID             id.ProposalID
	Description    string
	Subject        id.ActorID // actor the proposal approves; nil for free-form motions
	VoteCount      int
	VotingDeadline time.Time
	Executed       bool
	Creator        id.ActorID
	CreatedAt      time.Time
}

// Open reports whether the proposal still accepts votes at the given time.
func (p Proposal) Open(now time.Time) bool {
	return now.Before(p.VotingDeadline)
}

// Vote records one actor's ballot on a proposal. Only one vote per
// (proposal, voter) pair is ever stored.
type Vote struct {
	Proposal id.ProposalID
	Voter    id.ActorID
	Support  bool
	CastAt   time.Time
}
