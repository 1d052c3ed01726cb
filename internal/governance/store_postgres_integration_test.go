//go:build integration

package governance_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"medcommons/internal/governance"
	id "medcommons/pkg/domain"
	"medcommons/pkg/platform/sentinel"
	"medcommons/pkg/testutil/containers"
)

type PostgresGovernanceSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *governance.PostgresStore
}

func TestPostgresGovernanceSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresGovernanceSuite))
}

func (s *PostgresGovernanceSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = governance.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresGovernanceSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "proposal_votes", "proposals"))
}

func (s *PostgresGovernanceSuite) createProposal(subject id.ActorID) id.ProposalID {
	proposalID, err := s.store.Create(context.Background(), governance.Proposal{
		Description:    "approve researcher access",
		Subject:        subject,
		VotingDeadline: time.Now().UTC().Add(time.Hour),
		Creator:        id.ActorID(uuid.New()),
		CreatedAt:      time.Now().UTC(),
	})
	s.Require().NoError(err)
	return proposalID
}

func (s *PostgresGovernanceSuite) TestCreateAndFind() {
	subject := id.ActorID(uuid.New())
	proposalID := s.createProposal(subject)

	proposal, err := s.store.Find(context.Background(), proposalID)
	s.Require().NoError(err)
	s.Equal(proposalID, proposal.ID)
	s.Equal(subject, proposal.Subject)
	s.Zero(proposal.VoteCount)
	s.False(proposal.Executed)
}

func (s *PostgresGovernanceSuite) TestNullSubjectRoundTrips() {
	proposalID := s.createProposal(id.ActorID{})

	proposal, err := s.store.Find(context.Background(), proposalID)
	s.Require().NoError(err)
	s.True(proposal.Subject.IsNil())
}

func (s *PostgresGovernanceSuite) TestOneVotePerActor() {
	ctx := context.Background()
	proposalID := s.createProposal(id.ActorID{})
	voter := id.ActorID(uuid.New())

	s.Require().NoError(s.store.CastVote(ctx, governance.Vote{
		Proposal: proposalID, Voter: voter, Support: true, CastAt: time.Now().UTC(),
	}))

	err := s.store.CastVote(ctx, governance.Vote{
		Proposal: proposalID, Voter: voter, Support: true, CastAt: time.Now().UTC(),
	})
	s.Require().ErrorIs(err, sentinel.ErrAlreadyUsed)

	proposal, err := s.store.Find(ctx, proposalID)
	s.Require().NoError(err)
	s.Equal(1, proposal.VoteCount)
}

func (s *PostgresGovernanceSuite) TestOpposingVoteDoesNotCount() {
	ctx := context.Background()
	proposalID := s.createProposal(id.ActorID{})

	s.Require().NoError(s.store.CastVote(ctx, governance.Vote{
		Proposal: proposalID, Voter: id.ActorID(uuid.New()), Support: false, CastAt: time.Now().UTC(),
	}))

	proposal, err := s.store.Find(ctx, proposalID)
	s.Require().NoError(err)
	s.Zero(proposal.VoteCount)
}

func (s *PostgresGovernanceSuite) TestMarkExecutedOnce() {
	ctx := context.Background()
	proposalID := s.createProposal(id.ActorID{})

	s.Require().NoError(s.store.MarkExecuted(ctx, proposalID))
	s.Require().ErrorIs(s.store.MarkExecuted(ctx, proposalID), sentinel.ErrInvalidState)
}

func (s *PostgresGovernanceSuite) TestExecutedForSubject() {
	ctx := context.Background()
	subject := id.ActorID(uuid.New())
	proposalID := s.createProposal(subject)

	approved, err := s.store.ExecutedFor(ctx, subject)
	s.Require().NoError(err)
	s.False(approved)

	s.Require().NoError(s.store.MarkExecuted(ctx, proposalID))

	approved, err = s.store.ExecutedFor(ctx, subject)
	s.Require().NoError(err)
	s.True(approved)

	other, err := s.store.ExecutedFor(ctx, id.ActorID(uuid.New()))
	s.Require().NoError(err)
	s.False(other)
}
