package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"medcommons/contracts/fhe"
	id "medcommons/pkg/domain"
	"medcommons/pkg/platform/sentinel"
)

// PostgresStore persists ledger records in PostgreSQL. BIGSERIAL provides the
// strictly increasing id sequence; ciphertexts are stored in their wire
// encoding (tag byte + payload).
//
// Expected schema:
//
//	CREATE TABLE medical_records (
//	    id           BIGSERIAL PRIMARY KEY,
//	    patient_ct   BYTEA NOT NULL,
//	    diagnosis_ct BYTEA NOT NULL,
//	    treatment_ct BYTEA NOT NULL,
//	    outcome_ct   BYTEA NOT NULL,
//	    created_at   TIMESTAMPTZ NOT NULL,
//	    submitter    UUID NOT NULL
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, record Record) (id.RecordID, error) {
	var recordID int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO medical_records (patient_ct, diagnosis_ct, treatment_ct, outcome_ct, created_at, submitter)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		record.Fields.Patient.Encode(),
		record.Fields.Diagnosis.Encode(),
		record.Fields.Treatment.Encode(),
		record.Fields.Outcome.Encode(),
		record.CreatedAt,
		uuid.UUID(record.Submitter),
	).Scan(&recordID)
	if err != nil {
		return 0, fmt.Errorf("insert record: %w", err)
	}
	return id.RecordID(recordID), nil
}

func (s *PostgresStore) Find(ctx context.Context, recordID id.RecordID) (Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, patient_ct, diagnosis_ct, treatment_ct, outcome_ct, created_at, submitter
		FROM medical_records WHERE id = $1
	`, int64(recordID))
	record, err := scanRecord(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return Record{}, sentinel.ErrNotFound
		}
		return Record{}, fmt.Errorf("query record: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) Snapshot(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_ct, diagnosis_ct, treatment_ct, outcome_ct, created_at, submitter
		FROM medical_records ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		record, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM medical_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return count, nil
}

func scanRecord(scan func(dest ...any) error) (Record, error) {
	var (
		recordID  int64
		patient   []byte
		diagnosis []byte
		treatment []byte
		outcome   []byte
		createdAt sql.NullTime
		submitter uuid.UUID
	)
	if err := scan(&recordID, &patient, &diagnosis, &treatment, &outcome, &createdAt, &submitter); err != nil {
		return Record{}, err
	}

	fields := Fields{}
	for _, col := range []struct {
		raw []byte
		dst *fhe.Ciphertext
	}{
		{patient, &fields.Patient},
		{diagnosis, &fields.Diagnosis},
		{treatment, &fields.Treatment},
		{outcome, &fields.Outcome},
	} {
		ct, err := fhe.Decode(col.raw)
		if err != nil {
			return Record{}, fmt.Errorf("decode stored ciphertext: %w", err)
		}
		*col.dst = ct
	}

	return Record{
		ID:        id.RecordID(recordID),
		Fields:    fields,
		CreatedAt: createdAt.Time,
		Submitter: id.ActorID(submitter),
	}, nil
}
