package governance

import (
	"context"

	id "medcommons/pkg/domain"
)

// Store persists proposals and per-voter ballots.
//
// Implementations return sentinel errors for state conflicts:
//   - Find: sentinel.ErrNotFound when the proposal does not exist.
//   - CastVote: sentinel.ErrAlreadyUsed when the voter already voted on
//     the proposal.
//   - MarkExecuted: sentinel.ErrInvalidState when the proposal is already
//     executed.
type Store interface {
	// Create assigns the next proposal id and persists the proposal.
	Create(ctx context.Context, proposal Proposal) (id.ProposalID, error)

	Find(ctx context.Context, proposalID id.ProposalID) (Proposal, error)

	// CastVote stores the ballot and, when it counts in favor, increments
	// the proposal's vote count in the same step.
	CastVote(ctx context.Context, vote Vote) error

	MarkExecuted(ctx context.Context, proposalID id.ProposalID) error

	// ExecutedFor reports whether any executed proposal names the actor as
	// its subject.
	ExecutedFor(ctx context.Context, actor id.ActorID) (bool, error)
}
