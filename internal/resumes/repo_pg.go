package resumes

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new resume.
func (r *PGRepo) Create(ctx context.Context, resume Resume) error {
	const query = `
INSERT INTO resumes (id, user_id, file_name, mime_type, size_bytes, storage_key, extracted_text_key, extracted_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	var extractedKey sql.NullString
	if resume.ExtractedTextKey != "" {
		extractedKey = sql.NullString{String: resume.ExtractedTextKey, Valid: true}
	}
	var extractedAt sql.NullTime
	if resume.ExtractedAt != nil {
		extractedAt = sql.NullTime{Time: *resume.ExtractedAt, Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, query,
		resume.ID,
		resume.UserID,
		resume.FileName,
		resume.MimeType,
		resume.SizeBytes,
		resume.StorageKey,
		extractedKey,
		extractedAt,
		resume.CreatedAt,
	)
	return err
}

// GetOwnedByUser returns the resume if it exists and belongs to the user.
func (r *PGRepo) GetOwnedByUser(ctx context.Context, resumeID, userID string) (Resume, error) {
	const query = `
SELECT id, user_id, file_name, mime_type, size_bytes, storage_key, extracted_text_key, extracted_at, created_at
FROM resumes
WHERE id = $1 AND user_id = $2`
	row := r.DB.QueryRowContext(ctx, query, resumeID, userID)
	resume, err := scanResume(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resume{}, ErrNotFound
		}
		return Resume{}, err
	}
	return resume, nil
}

// ListByUser returns the user's resumes, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	const query = `
SELECT id, user_id, file_name, mime_type, size_bytes, storage_key, extracted_text_key, extracted_at, created_at
FROM resumes
WHERE user_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Resume, 0)
	for rows.Next() {
		resume, err := scanResume(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resume)
	}
	return out, rows.Err()
}

// UpdateExtraction records where the extracted text for a resume lives.
func (r *PGRepo) UpdateExtraction(ctx context.Context, userID, resumeID, extractedTextKey string, extractedAt time.Time) error {
	const query = `
UPDATE resumes SET extracted_text_key = $1, extracted_at = $2
WHERE id = $3 AND user_id = $4`
	res, err := r.DB.ExecContext(ctx, query, extractedTextKey, extractedAt, resumeID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResume(row rowScanner) (Resume, error) {
	var resume Resume
	var extractedKey sql.NullString
	var extractedAt sql.NullTime
	if err := row.Scan(
		&resume.ID,
		&resume.UserID,
		&resume.FileName,
		&resume.MimeType,
		&resume.SizeBytes,
		&resume.StorageKey,
		&extractedKey,
		&extractedAt,
		&resume.CreatedAt,
	); err != nil {
		return Resume{}, err
	}
	if extractedKey.Valid {
		resume.ExtractedTextKey = extractedKey.String
	}
	if extractedAt.Valid {
		at := extractedAt.Time
		resume.ExtractedAt = &at
	}
	return resume, nil
}
