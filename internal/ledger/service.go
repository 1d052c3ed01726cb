package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"medcommons/internal/platform/metrics"
	"medcommons/internal/registry"
	id "medcommons/pkg/domain"
	dErrors "medcommons/pkg/domain-errors"
	"medcommons/pkg/platform/events"
	"medcommons/pkg/platform/sentinel"
	"medcommons/pkg/requestcontext"
)

// RoleChecker is the slice of the registry the ledger needs.
type RoleChecker interface {
	RoleOf(ctx context.Context, actor id.ActorID) (registry.Role, error)
}

// Service guards the append-only encrypted record ledger.
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

// SubmitRecord appends an encrypted record. Only patients and hospitals may
// contribute data; everyone else is rejected before any state changes.
func (s *Service) SubmitRecord(ctx context.Context, submitter id.ActorID, fields Fields) (id.RecordID, error) {
	role, err := s.roles.RoleOf(ctx, submitter)
	if err != nil {
		return 0, err
	}
	if !role.CanSubmitRecords() {
		return 0, dErrors.New(dErrors.CodeUnauthorized, "only patients and hospitals may submit records")
	}
	if err := fields.Validate(); err != nil {
		return 0, err
	}

	record := Record{
		Fields:    fields,
		CreatedAt: requestcontext.Now(ctx),
		Submitter: submitter,
	}
	recordID, err := s.store.Append(ctx, record)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append record")
	}

	s.metrics.IncRecordsSubmitted()
	s.publisher.Emit(ctx, events.Event{
		Type:    events.TypeRecordSubmitted,
		Actor:   submitter.String(),
		Subject: strconv.FormatInt(int64(recordID), 10),
	})
	return recordID, nil
}

// Record returns one ledger entry by id.
func (s *Service) Record(ctx context.Context, recordID id.RecordID) (Record, error) {
	record, err := s.store.Find(ctx, recordID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return Record{}, dErrors.New(dErrors.CodeNotFound, "record not found")
		}
		return Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load record")
	}
	return record, nil
}

// RecordCount returns the current ledger size; the coordinator uses it as
// the batch bound.
func (s *Service) RecordCount(ctx context.Context) (int, error) {
	count, err := s.store.Count(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count records")
	}
	return count, nil
}

// Snapshot returns every record in ascending id order, frozen at call time.
func (s *Service) Snapshot(ctx context.Context) ([]Record, error) {
	records, err := s.store.Snapshot(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to snapshot ledger")
	}
	return records, nil
}
