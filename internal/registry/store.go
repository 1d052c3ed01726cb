package registry

import (
	"context"

	id "medcommons/pkg/domain"
)

// Store persists role assignments. Implementations must make Register
// first-writer-wins: a second registration for the same actor returns
// sentinel.ErrAlreadyUsed regardless of the role argument.
type Store interface {
	Register(ctx context.Context, participant Participant) error
	FindByActor(ctx context.Context, actor id.ActorID) (Participant, error)
}
