package query

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"medcommons/contracts/fhe"
	"medcommons/internal/attest"
	"medcommons/internal/ledger"
	"medcommons/internal/platform/metrics"
	"medcommons/internal/registry"
	id "medcommons/pkg/domain"
	dErrors "medcommons/pkg/domain-errors"
	"medcommons/pkg/platform/events"
	"medcommons/pkg/platform/sentinel"
	"medcommons/pkg/requestcontext"
)

// RoleChecker is the slice of the registry the coordinator needs.
type RoleChecker interface {
	RoleOf(ctx context.Context, actor id.ActorID) (registry.Role, error)
}

// Snapshotter freezes the ledger at batch-build time. Records appended
// after the snapshot never join an outstanding computation.
type Snapshotter interface {
	Snapshot(ctx context.Context) ([]ledger.Record, error)
}

// ApprovalChecker gates computation on governance. Installed with
// WithApprovalGate; without it any researcher may compute.
type ApprovalChecker interface {
	HasExecutedApproval(ctx context.Context, actor id.ActorID) (bool, error)
}

// Service coordinates the asynchronous computation protocol: researchers
// submit encrypted queries, the coordinator dispatches frozen ledger batches
// to the external gateway, and proof-carrying callbacks land the results.
type Service struct {
	queries    QueryStore
	pending    PendingStore
	cleartexts CleartextStore
	roles      RoleChecker
	ledger     Snapshotter
	computer   ComputationService
	decryptor  DecryptionService
	verifier   attest.Verifier
	approvals  ApprovalChecker
	logger     *slog.Logger
	publisher  events.Publisher
	metrics    *metrics.Metrics
	tracer     trace.Tracer
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

// WithApprovalGate requires an executed governance proposal naming the
// requester before any computation is dispatched.
func WithApprovalGate(approvals ApprovalChecker) Option {
	return func(s *Service) { s.approvals = approvals }
}

func NewService(
	queries QueryStore,
	pending PendingStore,
	cleartexts CleartextStore,
	roles RoleChecker,
	snapshotter Snapshotter,
	computer ComputationService,
	decryptor DecryptionService,
	verifier attest.Verifier,
	opts ...Option,
) *Service {
	s := &Service{
		queries:    queries,
		pending:    pending,
		cleartexts: cleartexts,
		roles:      roles,
		ledger:     snapshotter,
		computer:   computer,
		decryptor:  decryptor,
		verifier:   verifier,
		logger:     slog.Default(),
		publisher:  events.NopPublisher{},
		tracer:     otel.Tracer("medcommons/query"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) requireResearcher(ctx context.Context, actor id.ActorID) error {
	role, err := s.roles.RoleOf(ctx, actor)
	if err != nil {
		return err
	}
	if !role.CanQuery() {
		return dErrors.New(dErrors.CodeUnauthorized, "only researchers may query")
	}
	return nil
}

// SubmitQuery stores the researcher's encrypted query, replacing any prior
// one. Discarding an unprocessed query is surfaced as its own notification
// so the researcher learns the earlier computation can no longer land.
func (s *Service) SubmitQuery(ctx context.Context, requester id.ActorID, ciphertext fhe.Ciphertext) error {
	if err := s.requireResearcher(ctx, requester); err != nil {
		return err
	}
	if err := ciphertext.Validate(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid query ciphertext")
	}

	prior, err := s.queries.Find(ctx, requester)
	switch {
	case err == nil:
		if !prior.Processed {
			s.metrics.IncQueriesDiscarded()
			s.publisher.Emit(ctx, events.Event{
				Type:  events.TypeQueryDiscarded,
				Actor: requester.String(),
			})
		}
	case errors.Is(err, sentinel.ErrNotFound):
		// first query for this requester
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load query")
	}

	err = s.queries.Save(ctx, ResearchQuery{
		Requester:   requester,
		Query:       ciphertext,
		Result:      fhe.TrivialZero(ciphertext.Tag),
		SubmittedAt: requestcontext.Now(ctx),
		Processed:   false,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save query")
	}

	s.metrics.IncQueriesSubmitted()
	s.publisher.Emit(ctx, events.Event{
		Type:  events.TypeQuerySubmitted,
		Actor: requester.String(),
	})
	return nil
}

// RequestComputation freezes the ledger, builds the ordered batch, records
// the pending entry, and hands the batch to the external computation
// service. The batch layout is fixed: the query ciphertext first, then for
// each record in ascending id order its patient, diagnosis, treatment, and
// outcome ciphertexts.
func (s *Service) RequestComputation(ctx context.Context, requester id.ActorID) (string, error) {
	ctx, span := s.tracer.Start(ctx, "query.RequestComputation")
	defer span.End()

	if err := s.requireResearcher(ctx, requester); err != nil {
		return "", err
	}

	active, err := s.activeQuery(ctx, requester)
	if err != nil {
		return "", err
	}
	if active.Processed {
		return "", dErrors.New(dErrors.CodeAlreadyProcessed, "query has already been processed")
	}

	if s.approvals != nil {
		approved, err := s.approvals.HasExecutedApproval(ctx, requester)
		if err != nil {
			return "", err
		}
		if !approved {
			return "", dErrors.New(dErrors.CodeNotApproved, "no executed governance approval for requester")
		}
	}

	records, err := s.ledger.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	batch := make([]fhe.Ciphertext, 0, 1+4*len(records))
	batch = append(batch, active.Query)
	for _, record := range records {
		batch = append(batch, record.Fields.Ordered()...)
	}

	requestID := uuid.NewString()
	span.SetAttributes(
		attribute.String("fhe.request_id", requestID),
		attribute.Int("fhe.batch_size", len(batch)),
	)

	err = s.pending.Put(ctx, PendingRequest{
		RequestID: requestID,
		Kind:      KindComputation,
		Requester: requester,
		IssuedAt:  requestcontext.Now(ctx),
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to record pending request")
	}

	if err := s.computer.RequestComputation(ctx, requestID, batch); err != nil {
		// The entry is reclaimed so a dispatch failure never strands the
		// requester behind a request that was never sent.
		if _, consumeErr := s.pending.Consume(ctx, requestID); consumeErr != nil {
			s.logger.ErrorContext(ctx, "failed to reclaim pending request after dispatch failure",
				"request_id", requestcontext.RequestID(ctx),
				"fhe_request_id", requestID,
				"error", consumeErr.Error(),
			)
		}
		return "", err
	}

	s.metrics.IncComputationRequests()
	return requestID, nil
}

// OnComputationResult is the computation callback entry point. The pending
// entry and the proof are checked before any state changes; the entry is
// consumed only when the result lands, so a retried delivery after a proof
// failure can still succeed.
func (s *Service) OnComputationResult(ctx context.Context, requestID string, result []byte, proof []byte) error {
	ctx, span := s.tracer.Start(ctx, "query.OnComputationResult",
		trace.WithAttributes(attribute.String("fhe.request_id", requestID)))
	defer span.End()

	pending, err := s.pending.Peek(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnknownRequest, "no pending request for this id")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pending request")
	}
	if pending.Kind != KindComputation {
		return dErrors.New(dErrors.CodeUnknownRequest, "request id does not name a computation")
	}

	if err := s.verifier.Verify(requestID, result, proof); err != nil {
		s.metrics.IncProofFailures()
		s.logger.WarnContext(ctx, "computation callback proof rejected",
			"request_id", requestcontext.RequestID(ctx),
			"fhe_request_id", requestID,
			"error", err.Error(),
		)
		return dErrors.New(dErrors.CodeInvalidProof, "proof does not verify")
	}

	ciphertext, err := fhe.Decode(result)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeBadRequest, "result is not a valid ciphertext")
	}

	if err := s.queries.MarkProcessed(ctx, pending.Requester, ciphertext); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeNoActiveQuery, "requester no longer has an active query")
		case errors.Is(err, sentinel.ErrInvalidState):
			return dErrors.New(dErrors.CodeAlreadyProcessed, "query has already been processed")
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store result")
		}
	}

	if _, err := s.pending.Consume(ctx, requestID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.ErrorContext(ctx, "failed to consume pending request",
			"request_id", requestcontext.RequestID(ctx),
			"fhe_request_id", requestID,
			"error", err.Error(),
		)
	}

	s.metrics.IncQueriesProcessed()
	s.publisher.Emit(ctx, events.Event{
		Type:    events.TypeQueryProcessed,
		Actor:   pending.Requester.String(),
		Subject: requestID,
	})
	return nil
}

// Result returns the requester's processed result ciphertext.
func (s *Service) Result(ctx context.Context, requester id.ActorID) (fhe.Ciphertext, error) {
	if err := s.requireResearcher(ctx, requester); err != nil {
		return fhe.Ciphertext{}, err
	}
	active, err := s.activeQuery(ctx, requester)
	if err != nil {
		return fhe.Ciphertext{}, err
	}
	if !active.Processed {
		return fhe.Ciphertext{}, dErrors.New(dErrors.CodeNotProcessed, "query has not been processed yet")
	}
	return active.Result, nil
}

// RequestDecryption forwards the processed result to the external
// decryption service. The pending entry binds the eventual cleartext to the
// requester who asked, not to whoever reads the callback.
func (s *Service) RequestDecryption(ctx context.Context, requester id.ActorID) (string, error) {
	ctx, span := s.tracer.Start(ctx, "query.RequestDecryption")
	defer span.End()

	result, err := s.Result(ctx, requester)
	if err != nil {
		return "", err
	}

	requestID := uuid.NewString()
	span.SetAttributes(attribute.String("fhe.request_id", requestID))

	err = s.pending.Put(ctx, PendingRequest{
		RequestID: requestID,
		Kind:      KindDecryption,
		Requester: requester,
		IssuedAt:  requestcontext.Now(ctx),
	})
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to record pending request")
	}

	if err := s.decryptor.RequestDecryption(ctx, requestID, result); err != nil {
		if _, consumeErr := s.pending.Consume(ctx, requestID); consumeErr != nil {
			s.logger.ErrorContext(ctx, "failed to reclaim pending request after dispatch failure",
				"request_id", requestcontext.RequestID(ctx),
				"fhe_request_id", requestID,
				"error", consumeErr.Error(),
			)
		}
		return "", err
	}

	s.metrics.IncDecryptionRequests()
	return requestID, nil
}

// OnDecryptionResult is the decryption callback entry point. The cleartext
// is stored for the requester bound at request time only.
func (s *Service) OnDecryptionResult(ctx context.Context, requestID string, cleartext []byte, proof []byte) error {
	ctx, span := s.tracer.Start(ctx, "query.OnDecryptionResult",
		trace.WithAttributes(attribute.String("fhe.request_id", requestID)))
	defer span.End()

	pending, err := s.pending.Peek(ctx, requestID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnknownRequest, "no pending request for this id")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pending request")
	}
	if pending.Kind != KindDecryption {
		return dErrors.New(dErrors.CodeUnknownRequest, "request id does not name a decryption")
	}

	if err := s.verifier.Verify(requestID, cleartext, proof); err != nil {
		s.metrics.IncProofFailures()
		s.logger.WarnContext(ctx, "decryption callback proof rejected",
			"request_id", requestcontext.RequestID(ctx),
			"fhe_request_id", requestID,
			"error", err.Error(),
		)
		return dErrors.New(dErrors.CodeInvalidProof, "proof does not verify")
	}

	if err := s.cleartexts.Put(ctx, pending.Requester, cleartext); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store decrypted result")
	}

	if _, err := s.pending.Consume(ctx, requestID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.ErrorContext(ctx, "failed to consume pending request",
			"request_id", requestcontext.RequestID(ctx),
			"fhe_request_id", requestID,
			"error", err.Error(),
		)
	}

	s.publisher.Emit(ctx, events.Event{
		Type:    events.TypeResultDecrypted,
		Actor:   pending.Requester.String(),
		Subject: requestID,
	})
	return nil
}

// DecryptedResult returns the cleartext for the requester the decryption
// was bound to. There is no cross-requester read path.
func (s *Service) DecryptedResult(ctx context.Context, requester id.ActorID) ([]byte, error) {
	if err := s.requireResearcher(ctx, requester); err != nil {
		return nil, err
	}
	cleartext, err := s.cleartexts.Find(ctx, requester)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no decrypted result for requester")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load decrypted result")
	}
	return cleartext, nil
}

func (s *Service) activeQuery(ctx context.Context, requester id.ActorID) (ResearchQuery, error) {
	active, err := s.queries.Find(ctx, requester)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return ResearchQuery{}, dErrors.New(dErrors.CodeNoActiveQuery, "requester has no active query")
		}
		return ResearchQuery{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load query")
	}
	return active, nil
}
