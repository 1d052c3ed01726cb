package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"medcommons/contracts/fhe"
	"medcommons/internal/registry"
	id "medcommons/pkg/domain"
	dErrors "medcommons/pkg/domain-errors"
	"medcommons/pkg/requestcontext"
)

func testFields(seed byte) Fields {
	return Fields{
		Patient:   fhe.Ciphertext{Tag: fhe.TagUint32, Data: []byte{seed, 1}},
		Diagnosis: fhe.Ciphertext{Tag: fhe.TagUint32, Data: []byte{seed, 2}},
		Treatment: fhe.Ciphertext{Tag: fhe.TagUint32, Data: []byte{seed, 3}},
		Outcome:   fhe.Ciphertext{Tag: fhe.TagUint32, Data: []byte{seed, 4}},
	}
}

type LedgerServiceSuite struct {
	suite.Suite
	service  *Service
	registry *registry.Service
	ctx      context.Context
	hospital id.ActorID
}

func (s *LedgerServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.registry = registry.NewService(registry.NewInMemoryStore())
	s.service = NewService(NewInMemoryStore(), s.registry)
	s.hospital = id.ActorID(uuid.New())
	s.Require().NoError(s.registry.Register(s.ctx, s.hospital, registry.RoleHospital))
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceSuite))
}

func (s *LedgerServiceSuite) TestSubmitAssignsSequentialIDs() {
	for want := int64(1); want <= 3; want++ {
		recordID, err := s.service.SubmitRecord(s.ctx, s.hospital, testFields(byte(want)))
		s.Require().NoError(err)
		s.Equal(id.RecordID(want), recordID)
	}

	count, err := s.service.RecordCount(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, count)
}

func (s *LedgerServiceSuite) TestPatientMaySubmit() {
	patient := id.ActorID(uuid.New())
	s.Require().NoError(s.registry.Register(s.ctx, patient, registry.RolePatient))

	_, err := s.service.SubmitRecord(s.ctx, patient, testFields(9))
	s.Require().NoError(err)
}

func (s *LedgerServiceSuite) TestResearcherAndUnregisteredAreRejected() {
	researcher := id.ActorID(uuid.New())
	s.Require().NoError(s.registry.Register(s.ctx, researcher, registry.RoleResearcher))

	_, err := s.service.SubmitRecord(s.ctx, researcher, testFields(9))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.service.SubmitRecord(s.ctx, id.ActorID(uuid.New()), testFields(9))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	count, err := s.service.RecordCount(s.ctx)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *LedgerServiceSuite) TestRecordsAreImmutableCopies() {
	fields := testFields(1)
	recordID, err := s.service.SubmitRecord(s.ctx, s.hospital, fields)
	s.Require().NoError(err)

	first, err := s.service.Record(s.ctx, recordID)
	s.Require().NoError(err)

	// Mutating a snapshot must not bleed into subsequent reads.
	snapshot, err := s.service.Snapshot(s.ctx)
	s.Require().NoError(err)
	snapshot[0].Fields.Patient.Data[0] = 0xFF

	again, err := s.service.Record(s.ctx, recordID)
	s.Require().NoError(err)
	s.Equal(first.Fields.Diagnosis, again.Fields.Diagnosis)
	s.Equal(first.ID, again.ID)
	s.Equal(first.Submitter, again.Submitter)
}

func (s *LedgerServiceSuite) TestSubmitUsesRequestClock() {
	fixed := time.Date(2026, 5, 20, 9, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(s.ctx, fixed)

	recordID, err := s.service.SubmitRecord(ctx, s.hospital, testFields(1))
	s.Require().NoError(err)

	record, err := s.service.Record(s.ctx, recordID)
	s.Require().NoError(err)
	s.Equal(fixed, record.CreatedAt)
}

func (s *LedgerServiceSuite) TestSubmitRejectsMalformedCiphertext() {
	fields := testFields(1)
	fields.Outcome.Data = nil

	_, err := s.service.SubmitRecord(s.ctx, s.hospital, fields)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func (s *LedgerServiceSuite) TestRecordNotFound() {
	_, err := s.service.Record(s.ctx, id.RecordID(99))
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}
