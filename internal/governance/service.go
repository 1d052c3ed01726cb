package governance

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"medcommons/internal/platform/metrics"
	"medcommons/internal/registry"
	id "medcommons/pkg/domain"
	dErrors "medcommons/pkg/domain-errors"
	"medcommons/pkg/platform/events"
	"medcommons/pkg/platform/sentinel"
	"medcommons/pkg/requestcontext"
)

// RoleChecker is the slice of the registry governance needs.
type RoleChecker interface {
	RoleOf(ctx context.Context, actor id.ActorID) (registry.Role, error)
}

// Service runs the proposal lifecycle: create, vote until the deadline,
// execute exactly once after it.
type Service struct {
	store     Store
	roles     RoleChecker
	logger    *slog.Logger
	publisher events.Publisher
	metrics   *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithPublisher(publisher events.Publisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(store Store, roles RoleChecker, opts ...Option) *Service {
	s := &Service{
		store:     store,
		roles:     roles,
		logger:    slog.Default(),
		publisher: events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) requireRegistered(ctx context.Context, actor id.ActorID) error {
	if actor.IsNil() {
		return dErrors.New(dErrors.CodeUnauthorized, "actor is not registered")
	}
	role, err := s.roles.RoleOf(ctx, actor)
	if err != nil {
		return err
	}
	if !role.IsRegistered() {
		return dErrors.New(dErrors.CodeUnauthorized, "actor is not registered")
	}
	return nil
}

// CreateProposal opens a new proposal. The voting window is measured from
// the request clock; subject is optional and names the actor an executed
// proposal approves.
func (s *Service) CreateProposal(ctx context.Context, creator id.ActorID, description string, subject id.ActorID, votingPeriod time.Duration) (id.ProposalID, error) {
	if err := s.requireRegistered(ctx, creator); err != nil {
		return 0, err
	}
	if strings.TrimSpace(description) == "" {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "proposal description is required")
	}
	if votingPeriod <= 0 {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "voting period must be positive")
	}

	now := requestcontext.Now(ctx)
	proposal := Proposal{
		Description:    description,
		Subject:        subject,
		VotingDeadline: now.Add(votingPeriod),
		Creator:        creator,
		CreatedAt:      now,
	}
	proposalID, err := s.store.Create(ctx, proposal)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create proposal")
	}

	s.metrics.IncProposalsCreated()
	s.publisher.Emit(ctx, events.Event{
		Type:    events.TypeProposalCreated,
		Actor:   creator.String(),
		Subject: strconv.FormatInt(int64(proposalID), 10),
	})
	return proposalID, nil
}

// Vote casts the actor's single ballot on an open proposal. Only supporting
// votes move the count; either way the ballot consumes the voter's slot.
func (s *Service) Vote(ctx context.Context, voter id.ActorID, proposalID id.ProposalID, support bool) error {
	if err := s.requireRegistered(ctx, voter); err != nil {
		return err
	}

	proposal, err := s.Proposal(ctx, proposalID)
	if err != nil {
		return err
	}
	if !proposal.Open(requestcontext.Now(ctx)) {
		return dErrors.New(dErrors.CodeVotingClosed, "voting period has ended")
	}

	err = s.store.CastVote(ctx, Vote{
		Proposal: proposalID,
		Voter:    voter,
		Support:  support,
		CastAt:   requestcontext.Now(ctx),
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.New(dErrors.CodeAlreadyVoted, "actor has already voted on this proposal")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "proposal not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to cast vote")
	}

	s.metrics.IncVotesCast()
	s.publisher.Emit(ctx, events.Event{
		Type:    events.TypeVoteCast,
		Actor:   voter.String(),
		Subject: strconv.FormatInt(int64(proposalID), 10),
	})
	return nil
}

// ExecuteProposal finalizes a proposal once its deadline has passed. A
// proposal executes at most once regardless of outcome.
func (s *Service) ExecuteProposal(ctx context.Context, actor id.ActorID, proposalID id.ProposalID) error {
	if err := s.requireRegistered(ctx, actor); err != nil {
		return err
	}

	proposal, err := s.Proposal(ctx, proposalID)
	if err != nil {
		return err
	}
	if proposal.Open(requestcontext.Now(ctx)) {
		return dErrors.New(dErrors.CodeVotingOngoing, "voting period has not ended")
	}

	if err := s.store.MarkExecuted(ctx, proposalID); err != nil {
		if errors.Is(err, sentinel.ErrInvalidState) {
			return dErrors.New(dErrors.CodeAlreadyExecuted, "proposal has already been executed")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to execute proposal")
	}

	s.metrics.IncProposalsExecuted()
	s.publisher.Emit(ctx, events.Event{
		Type:    events.TypeProposalExecuted,
		Actor:   actor.String(),
		Subject: strconv.FormatInt(int64(proposalID), 10),
	})
	return nil
}

// Proposal returns one proposal by id.
func (s *Service) Proposal(ctx context.Context, proposalID id.ProposalID) (Proposal, error) {
	if !proposalID.IsValid() {
		return Proposal{}, dErrors.New(dErrors.CodeInvalidInput, "proposal id must be a positive integer")
	}
	proposal, err := s.store.Find(ctx, proposalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Proposal{}, dErrors.New(dErrors.CodeNotFound, "proposal not found")
		}
		return Proposal{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load proposal")
	}
	return proposal, nil
}

// HasExecutedApproval reports whether any executed proposal names the actor
// as its subject. The coordinator consults it before dispatching
// computations.
func (s *Service) HasExecutedApproval(ctx context.Context, actor id.ActorID) (bool, error) {
	approved, err := s.store.ExecutedFor(ctx, actor)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to check approvals")
	}
	return approved, nil
}
