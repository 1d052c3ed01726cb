package registry

import (
	"context"
	"testing"

	"github.com/google/uuid"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"medcommons/internal/platform/metrics"
	id "medcommons/pkg/domain"
	dErrors "medcommons/pkg/domain-errors"
)

type RegistryServiceSuite struct {
	suite.Suite
	service *Service
	ctx     context.Context
}

func (s *RegistryServiceSuite) SetupTest() {
	s.service = NewService(NewInMemoryStore())
	s.ctx = context.Background()
}

func TestRegistryServiceSuite(t *testing.T) {
	suite.Run(t, new(RegistryServiceSuite))
}

func (s *RegistryServiceSuite) TestRegisterAssignsRoleOnce() {
	actor := id.ActorID(uuid.New())

	s.Require().NoError(s.service.Register(s.ctx, actor, RoleHospital))

	role, err := s.service.RoleOf(s.ctx, actor)
	s.Require().NoError(err)
	s.Equal(RoleHospital, role)
}

func (s *RegistryServiceSuite) TestSecondRegistrationAlwaysFails() {
	actor := id.ActorID(uuid.New())
	s.Require().NoError(s.service.Register(s.ctx, actor, RolePatient))

	// Same role, different role - both rejected.
	err := s.service.Register(s.ctx, actor, RolePatient)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRegistered))

	err = s.service.Register(s.ctx, actor, RoleResearcher)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeAlreadyRegistered))

	// The original role survives.
	role, err := s.service.RoleOf(s.ctx, actor)
	s.Require().NoError(err)
	s.Equal(RolePatient, role)
}

func (s *RegistryServiceSuite) TestUnregisteredActorIsUnset() {
	role, err := s.service.RoleOf(s.ctx, id.ActorID(uuid.New()))
	s.Require().NoError(err)
	s.Equal(RoleUnset, role)
}

func (s *RegistryServiceSuite) TestRegisterRejectsUnsetRole() {
	err := s.service.Register(s.ctx, id.ActorID(uuid.New()), RoleUnset)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *RegistryServiceSuite) TestRegisterRejectsNilActor() {
	err := s.service.Register(s.ctx, id.ActorID{}, RolePatient)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestRegisterCountsParticipants(t *testing.T) {
	m := metrics.New()
	service := NewService(NewInMemoryStore(), WithMetrics(m))
	ctx := context.Background()

	require.NoError(t, service.Register(ctx, id.ActorID(uuid.New()), RolePatient))
	require.NoError(t, service.Register(ctx, id.ActorID(uuid.New()), RoleResearcher))

	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.ParticipantsRegistered))

	// A rejected registration never counts.
	actor := id.ActorID(uuid.New())
	require.NoError(t, service.Register(ctx, actor, RoleHospital))
	require.Error(t, service.Register(ctx, actor, RoleHospital))
	assert.Equal(t, 3.0, promtestutil.ToFloat64(m.ParticipantsRegistered))
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"patient", "hospital", "researcher"} {
		role, err := ParseRole(valid)
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", valid, err)
		}
		if !role.IsRegistered() {
			t.Fatalf("ParseRole(%q) returned unregistered role", valid)
		}
	}
	for _, invalid := range []string{"", "unset", "admin", "Patient"} {
		if _, err := ParseRole(invalid); err == nil {
			t.Fatalf("ParseRole(%q) should fail", invalid)
		}
	}
}

func TestRoleCapabilities(t *testing.T) {
	cases := []struct {
		role       Role
		submit     bool
		query      bool
		registered bool
	}{
		{RoleUnset, false, false, false},
		{RolePatient, true, false, true},
		{RoleHospital, true, false, true},
		{RoleResearcher, false, true, true},
	}
	for _, tc := range cases {
		if tc.role.CanSubmitRecords() != tc.submit {
			t.Errorf("%s CanSubmitRecords = %v", tc.role, !tc.submit)
		}
		if tc.role.CanQuery() != tc.query {
			t.Errorf("%s CanQuery = %v", tc.role, !tc.query)
		}
		if tc.role.IsRegistered() != tc.registered {
			t.Errorf("%s IsRegistered = %v", tc.role, !tc.registered)
		}
	}
}
