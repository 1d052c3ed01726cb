package registry

import (
	"context"
	"errors"
	"log/slog"

	"medcommons/internal/platform/metrics"
	id "medcommons/pkg/domain"
	dErrors "medcommons/pkg/domain-errors"
	"medcommons/pkg/platform/events"
	"medcommons/pkg/platform/sentinel"
	"medcommons/pkg/requestcontext"
)

// Service owns the one-time role assignment per identity. Registration is
// sticky: capabilities never change or disappear once granted.
type Service struct {
	store     Store
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

func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		logger:    slog.Default(),
		publisher: events.NopPublisher{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register assigns a permanent role to an actor. A second call for the same
// actor always fails with AlreadyRegistered, regardless of the role argument.
func (s *Service) Register(ctx context.Context, actor id.ActorID, role Role) error {
	if actor.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "actor id is required")
	}
	if !role.IsRegistered() {
		return dErrors.New(dErrors.CodeInvalidInput, "role must be patient, hospital, or researcher")
	}

	participant := Participant{
		Actor:        actor,
		Role:         role,
		RegisteredAt: requestcontext.Now(ctx),
	}
	if err := s.store.Register(ctx, participant); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return dErrors.New(dErrors.CodeAlreadyRegistered, "actor already holds a role")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to register participant")
	}

	s.metrics.IncParticipantsRegistered()
	s.publisher.Emit(ctx, events.Event{
		Type:    events.TypeParticipantRegistered,
		Actor:   actor.String(),
		Subject: string(role),
	})
	return nil
}

// RoleOf looks up an actor's role. Unregistered actors are RoleUnset, never
// an error.
func (s *Service) RoleOf(ctx context.Context, actor id.ActorID) (Role, error) {
	participant, err := s.store.FindByActor(ctx, actor)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return RoleUnset, nil
		}
		return RoleUnset, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up role")
	}
	return participant.Role, nil
}
