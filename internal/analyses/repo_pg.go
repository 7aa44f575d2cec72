package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres. Payloads are stored as JSONB and
// decoded back into their kind-specific type on read.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts an analysis record.
func (r *PGRepo) Create(ctx context.Context, record Record) error {
	const query = `
INSERT INTO analyses (id, user_id, resume_id, application_id, kind, score, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	payload, err := json.Marshal(record.Payload)
	if err != nil {
		return fmt.Errorf("marshal analysis payload: %w", err)
	}

	var applicationID sql.NullString
	if record.ApplicationID != "" {
		applicationID = sql.NullString{String: record.ApplicationID, Valid: true}
	}
	var score sql.NullFloat64
	if record.Score != nil {
		score = sql.NullFloat64{Float64: *record.Score, Valid: true}
	}

	_, err = r.DB.ExecContext(ctx, query,
		record.ID,
		record.UserID,
		record.ResumeID,
		applicationID,
		string(record.Kind),
		score,
		payload,
		record.CreatedAt,
	)
	return err
}

// GetByID returns a record by its ID.
func (r *PGRepo) GetByID(ctx context.Context, recordID string) (Record, error) {
	const query = `
SELECT id, user_id, resume_id, application_id, kind, score, payload, created_at
FROM analyses
WHERE id = $1`
	row := r.DB.QueryRowContext(ctx, query, recordID)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return record, nil
}

// ListByUser returns the user's records, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Record, error) {
	query := `
SELECT id, user_id, resume_id, application_id, kind, score, payload, created_at
FROM analyses
WHERE user_id = $1
ORDER BY created_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ListByResume returns records for one resume, newest first.
func (r *PGRepo) ListByResume(ctx context.Context, resumeID string) ([]Record, error) {
	const query = `
SELECT id, user_id, resume_id, application_id, kind, score, payload, created_at
FROM analyses
WHERE resume_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, resumeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecords(rows)
}

// CountByUserInRange counts records with created_at in [from, to).
func (r *PGRepo) CountByUserInRange(ctx context.Context, userID string, from, to time.Time) (int, error) {
	const query = `
SELECT COUNT(*)
FROM analyses
WHERE user_id = $1 AND created_at >= $2 AND created_at < $3`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, userID, from, to).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var record Record
	var applicationID sql.NullString
	var score sql.NullFloat64
	var kind string
	var payload []byte
	if err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.ResumeID,
		&applicationID,
		&kind,
		&score,
		&payload,
		&record.CreatedAt,
	); err != nil {
		return Record{}, err
	}
	if applicationID.Valid {
		record.ApplicationID = applicationID.String
	}
	if score.Valid {
		v := score.Float64
		record.Score = &v
	}

	record.Kind = Kind(kind)
	decoded, err := DecodePayload(record.Kind, payload)
	if err != nil {
		return Record{}, fmt.Errorf("decode analysis %s: %w", record.ID, err)
	}
	record.Payload = decoded
	return record, nil
}

func collectRecords(rows *sql.Rows) ([]Record, error) {
	out := make([]Record, 0)
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, rows.Err()
}
