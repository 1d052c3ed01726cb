//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// schema mirrors the table layouts documented on the Postgres stores.
const schema = `
CREATE TABLE IF NOT EXISTS participants (
    actor_id      UUID PRIMARY KEY,
    role          TEXT NOT NULL,
    registered_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS medical_records (
    id           BIGSERIAL PRIMARY KEY,
    patient_ct   BYTEA NOT NULL,
    diagnosis_ct BYTEA NOT NULL,
    treatment_ct BYTEA NOT NULL,
    outcome_ct   BYTEA NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL,
    submitter    UUID NOT NULL
);

CREATE TABLE IF NOT EXISTS proposals (
    id              BIGSERIAL PRIMARY KEY,
    description     TEXT NOT NULL,
    subject         UUID,
    vote_count      INTEGER NOT NULL DEFAULT 0,
    voting_deadline TIMESTAMPTZ NOT NULL,
    executed        BOOLEAN NOT NULL DEFAULT FALSE,
    creator         UUID NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS proposal_votes (
    proposal_id BIGINT NOT NULL REFERENCES proposals (id),
    voter       UUID NOT NULL,
    support     BOOLEAN NOT NULL,
    cast_at     TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (proposal_id, voter)
);

CREATE TABLE IF NOT EXISTS outbox (
    id         UUID PRIMARY KEY,
    event_type TEXT NOT NULL,
    subject    TEXT,
    payload    JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);
`

// PostgresContainer wraps a testcontainers Postgres instance with the
// schema already applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a new Postgres container and applies the
// schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("medcommons"),
		tcpostgres.WithUsername("medcommons"),
		tcpostgres.WithPassword("medcommons"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	// No t.Cleanup here: the container is owned by the singleton Manager and
	// shared across suites. Ryuk reaps it when the test binary exits.

	return &PostgresContainer{Container: container, DSN: dsn, DB: db}
}

// TruncateTables empties the given tables between tests.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(tables, ", "))
	_, err := p.DB.ExecContext(ctx, stmt)
	return err
}
