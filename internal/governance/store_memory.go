package governance

import (
	"context"
	"sync"

	id "medcommons/pkg/domain"
	"medcommons/pkg/platform/sentinel"
)

// InMemoryStore is the development and test implementation of Store.
type InMemoryStore struct {
	mu        sync.RWMutex
	proposals map[id.ProposalID]Proposal
	votes     map[id.ProposalID]map[id.ActorID]Vote
	nextID    id.ProposalID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		proposals: make(map[id.ProposalID]Proposal),
		votes:     make(map[id.ProposalID]map[id.ActorID]Vote),
		nextID:    1,
	}
}

func (s *InMemoryStore) Create(_ context.Context, proposal Proposal) (id.ProposalID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	proposal.ID = s.nextID
	s.nextID++
	s.proposals[proposal.ID] = proposal
	s.votes[proposal.ID] = make(map[id.ActorID]Vote)
	return proposal.ID, nil
}

func (s *InMemoryStore) Find(_ context.Context, proposalID id.ProposalID) (Proposal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	proposal, ok := s.proposals[proposalID]
	if !ok {
		return Proposal{}, sentinel.ErrNotFound
	}
	return proposal, nil
}

func (s *InMemoryStore) CastVote(_ context.Context, vote Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	proposal, ok := s.proposals[vote.Proposal]
	if !ok {
		return sentinel.ErrNotFound
	}
	ballots := s.votes[vote.Proposal]
	if _, voted := ballots[vote.Voter]; voted {
		return sentinel.ErrAlreadyUsed
	}
	ballots[vote.Voter] = vote
	if vote.Support {
		proposal.VoteCount++
		s.proposals[vote.Proposal] = proposal
	}
	return nil
}

func (s *InMemoryStore) MarkExecuted(_ context.Context, proposalID id.ProposalID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	proposal, ok := s.proposals[proposalID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if proposal.Executed {
		return sentinel.ErrInvalidState
	}
	proposal.Executed = true
	s.proposals[proposalID] = proposal
	return nil
}

func (s *InMemoryStore) ExecutedFor(_ context.Context, actor id.ActorID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, proposal := range s.proposals {
		if proposal.Executed && proposal.Subject == actor {
			return true, nil
		}
	}
	return false, nil
}
