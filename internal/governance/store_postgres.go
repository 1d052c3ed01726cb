package governance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "medcommons/pkg/domain"
	"medcommons/pkg/platform/sentinel"
)

// PostgresStore persists proposals and ballots.
//
// Schema:
//
//	CREATE TABLE proposals (
//	    id              BIGSERIAL PRIMARY KEY,
//	    description     TEXT NOT NULL,
//	    subject         UUID,
//	    vote_count      INTEGER NOT NULL DEFAULT 0,
//	    voting_deadline TIMESTAMPTZ NOT NULL,
//	    executed        BOOLEAN NOT NULL DEFAULT FALSE,
//	    creator         UUID NOT NULL,
//	    created_at      TIMESTAMPTZ NOT NULL
//	);
//
//	CREATE TABLE proposal_votes (
//	    proposal_id BIGINT NOT NULL REFERENCES proposals (id),
//	    voter       UUID NOT NULL,
//	    support     BOOLEAN NOT NULL,
//	    cast_at     TIMESTAMPTZ NOT NULL,
//	    PRIMARY KEY (proposal_id, voter)
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, proposal Proposal) (id.ProposalID, error) {
	var subject any
	if !proposal.Subject.IsNil() {
		subject = uuid.UUID(proposal.Subject)
	}

	var proposalID int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO proposals (description, subject, voting_deadline, creator, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		proposal.Description, subject, proposal.VotingDeadline,
		uuid.UUID(proposal.Creator), proposal.CreatedAt,
	).Scan(&proposalID)
	if err != nil {
		return 0, fmt.Errorf("insert proposal: %w", err)
	}
	return id.ProposalID(proposalID), nil
}

func (s *PostgresStore) Find(ctx context.Context, proposalID id.ProposalID) (Proposal, error) {
	var (
		proposal Proposal
		rawID    int64
		subject  sql.Null[uuid.UUID]
		creator  uuid.UUID
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, description, subject, vote_count, voting_deadline, executed, creator, created_at
		FROM proposals
		WHERE id = $1`,
		int64(proposalID),
	).Scan(&rawID, &proposal.Description, &subject, &proposal.VoteCount,
		&proposal.VotingDeadline, &proposal.Executed, &creator, &proposal.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Proposal{}, sentinel.ErrNotFound
	}
	if err != nil {
		return Proposal{}, fmt.Errorf("select proposal: %w", err)
	}

	proposal.ID = id.ProposalID(rawID)
	proposal.Creator = id.ActorID(creator)
	if subject.Valid {
		proposal.Subject = id.ActorID(subject.V)
	}
	return proposal, nil
}

func (s *PostgresStore) CastVote(ctx context.Context, vote Vote) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin vote tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO proposal_votes (proposal_id, voter, support, cast_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (proposal_id, voter) DO NOTHING`,
		int64(vote.Proposal), uuid.UUID(vote.Voter), vote.Support, vote.CastAt,
	)
	if err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert vote: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrAlreadyUsed
	}

	if vote.Support {
		if _, err := tx.ExecContext(ctx, `
			UPDATE proposals SET vote_count = vote_count + 1 WHERE id = $1`,
			int64(vote.Proposal),
		); err != nil {
			return fmt.Errorf("increment vote count: %w", err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) MarkExecuted(ctx context.Context, proposalID id.ProposalID) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE proposals SET executed = TRUE
		WHERE id = $1 AND executed = FALSE`,
		int64(proposalID),
	)
	if err != nil {
		return fmt.Errorf("mark proposal executed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark proposal executed: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresStore) ExecutedFor(ctx context.Context, actor id.ActorID) (bool, error) {
	var executed bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM proposals WHERE executed = TRUE AND subject = $1
		)`,
		uuid.UUID(actor),
	).Scan(&executed)
	if err != nil {
		return false, fmt.Errorf("check executed approvals: %w", err)
	}
	return executed, nil
}
