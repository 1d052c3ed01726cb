package registry

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "medcommons/pkg/domain"
	"medcommons/pkg/platform/sentinel"
)

// PostgresStore persists role assignments in PostgreSQL.
//
// Expected schema:
//
//	CREATE TABLE participants (
//	    actor_id      UUID PRIMARY KEY,
//	    role          TEXT NOT NULL,
//	    registered_at TIMESTAMPTZ NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Register(ctx context.Context, participant Participant) error {
	// First-writer-wins: the conflict target is the actor itself, so a
	// re-registration with any role is a no-op we surface as already used.
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO participants (actor_id, role, registered_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (actor_id) DO NOTHING
	`, uuid.UUID(participant.Actor), string(participant.Role), participant.RegisteredAt)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (s *PostgresStore) FindByActor(ctx context.Context, actor id.ActorID) (Participant, error) {
	var (
		roleStr      string
		registeredAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT role, registered_at FROM participants WHERE actor_id = $1`,
		uuid.UUID(actor),
	).Scan(&roleStr, &registeredAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return Participant{}, sentinel.ErrNotFound
		}
		return Participant{}, fmt.Errorf("query participant: %w", err)
	}
	return Participant{
		Actor:        actor,
		Role:         Role(roleStr),
		RegisteredAt: registeredAt.Time,
	}, nil
}
