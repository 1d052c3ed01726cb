package governance

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"medcommons/internal/registry"
	id "medcommons/pkg/domain"
	dErrors "medcommons/pkg/domain-errors"
	"medcommons/pkg/requestcontext"
)

type GovernanceServiceSuite struct {
	suite.Suite
	service    *Service
	registry   *registry.Service
	ctx        context.Context
	now        time.Time
	researcher id.ActorID
	hospital   id.ActorID
}

func (s *GovernanceServiceSuite) SetupTest() {
	s.now = time.Date(2026, time.March, 14, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.registry = registry.NewService(registry.NewInMemoryStore())
	s.service = NewService(NewInMemoryStore(), s.registry)

	s.researcher = id.ActorID(uuid.New())
	s.hospital = id.ActorID(uuid.New())
	s.Require().NoError(s.registry.Register(s.ctx, s.researcher, registry.RoleResearcher))
	s.Require().NoError(s.registry.Register(s.ctx, s.hospital, registry.RoleHospital))
}

func TestGovernanceServiceSuite(t *testing.T) {
	suite.Run(t, new(GovernanceServiceSuite))
}

func (s *GovernanceServiceSuite) at(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func (s *GovernanceServiceSuite) createProposal(subject id.ActorID) id.ProposalID {
	proposalID, err := s.service.CreateProposal(s.ctx, s.hospital, "approve researcher access", subject, time.Hour)
	s.Require().NoError(err)
	return proposalID
}

func (s *GovernanceServiceSuite) TestCreateAssignsSequentialIDs() {
	first := s.createProposal(id.ActorID{})
	second := s.createProposal(id.ActorID{})
	s.Equal(id.ProposalID(1), first)
	s.Equal(id.ProposalID(2), second)
}

func (s *GovernanceServiceSuite) TestCreateSetsDeadlineFromRequestClock() {
	proposalID := s.createProposal(id.ActorID{})

	proposal, err := s.service.Proposal(s.ctx, proposalID)
	s.Require().NoError(err)
	s.Equal(s.now.Add(time.Hour), proposal.VotingDeadline)
	s.Equal(s.now, proposal.CreatedAt)
	s.Zero(proposal.VoteCount)
	s.False(proposal.Executed)
}

func (s *GovernanceServiceSuite) TestCreateRequiresRegistration() {
	_, err := s.service.CreateProposal(s.ctx, id.ActorID(uuid.New()), "anything", id.ActorID{}, time.Hour)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *GovernanceServiceSuite) TestCreateRejectsEmptyDescription() {
	_, err := s.service.CreateProposal(s.ctx, s.hospital, "   ", id.ActorID{}, time.Hour)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *GovernanceServiceSuite) TestOnlySupportingVotesCount() {
	proposalID := s.createProposal(id.ActorID{})

	s.Require().NoError(s.service.Vote(s.ctx, s.researcher, proposalID, true))
	s.Require().NoError(s.service.Vote(s.ctx, s.hospital, proposalID, false))

	proposal, err := s.service.Proposal(s.ctx, proposalID)
	s.Require().NoError(err)
	s.Equal(1, proposal.VoteCount)
}

func (s *GovernanceServiceSuite) TestOneVotePerActor() {
	proposalID := s.createProposal(id.ActorID{})

	s.Require().NoError(s.service.Vote(s.ctx, s.researcher, proposalID, false))

	// A second ballot is rejected even when it flips to support.
	err := s.service.Vote(s.ctx, s.researcher, proposalID, true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyVoted))

	proposal, err := s.service.Proposal(s.ctx, proposalID)
	s.Require().NoError(err)
	s.Zero(proposal.VoteCount)
}

func (s *GovernanceServiceSuite) TestVoteClosesAtDeadline() {
	proposalID := s.createProposal(id.ActorID{})

	atDeadline := s.at(s.now.Add(time.Hour))
	err := s.service.Vote(atDeadline, s.researcher, proposalID, true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeVotingClosed))

	justBefore := s.at(s.now.Add(time.Hour - time.Second))
	s.NoError(s.service.Vote(justBefore, s.researcher, proposalID, true))
}

func (s *GovernanceServiceSuite) TestVoteRequiresRegistration() {
	proposalID := s.createProposal(id.ActorID{})

	err := s.service.Vote(s.ctx, id.ActorID(uuid.New()), proposalID, true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *GovernanceServiceSuite) TestVoteUnknownProposal() {
	err := s.service.Vote(s.ctx, s.researcher, 42, true)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *GovernanceServiceSuite) TestExecuteBeforeDeadlineRejected() {
	proposalID := s.createProposal(id.ActorID{})

	err := s.service.ExecuteProposal(s.ctx, s.hospital, proposalID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeVotingOngoing))
}

func (s *GovernanceServiceSuite) TestExecuteOnceAfterDeadline() {
	proposalID := s.createProposal(id.ActorID{})

	afterDeadline := s.at(s.now.Add(2 * time.Hour))
	s.Require().NoError(s.service.ExecuteProposal(afterDeadline, s.hospital, proposalID))

	proposal, err := s.service.Proposal(s.ctx, proposalID)
	s.Require().NoError(err)
	s.True(proposal.Executed)

	err = s.service.ExecuteProposal(afterDeadline, s.hospital, proposalID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyExecuted))
}

func (s *GovernanceServiceSuite) TestExecuteAtExactDeadlineAllowed() {
	proposalID := s.createProposal(id.ActorID{})

	atDeadline := s.at(s.now.Add(time.Hour))
	s.NoError(s.service.ExecuteProposal(atDeadline, s.hospital, proposalID))
}

func (s *GovernanceServiceSuite) TestExecutedApprovalBindsToSubject() {
	proposalID := s.createProposal(s.researcher)
	s.Require().NoError(s.service.Vote(s.ctx, s.hospital, proposalID, true))

	approved, err := s.service.HasExecutedApproval(s.ctx, s.researcher)
	s.Require().NoError(err)
	s.False(approved, "approval must wait for execution")

	afterDeadline := s.at(s.now.Add(2 * time.Hour))
	s.Require().NoError(s.service.ExecuteProposal(afterDeadline, s.hospital, proposalID))

	approved, err = s.service.HasExecutedApproval(s.ctx, s.researcher)
	s.Require().NoError(err)
	s.True(approved)

	other, err := s.service.HasExecutedApproval(s.ctx, s.hospital)
	s.Require().NoError(err)
	s.False(other, "approval is scoped to the named subject")
}
