package applications

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new application.
func (r *PGRepo) Create(ctx context.Context, app Application) error {
	const query = `
INSERT INTO applications (id, user_id, company_name, job_title, job_description, job_url, location, status, notes, applied_at, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	var appliedAt sql.NullTime
	if app.AppliedAt != nil {
		appliedAt = sql.NullTime{Time: *app.AppliedAt, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query,
		app.ID,
		app.UserID,
		app.CompanyName,
		app.JobTitle,
		nullableString(app.JobDescription),
		nullableString(app.JobURL),
		nullableString(app.Location),
		string(app.Status),
		nullableString(app.Notes),
		appliedAt,
		app.CreatedAt,
		app.UpdatedAt,
	)
	return err
}

// GetOwnedByUser returns the application if it exists and belongs to the user.
func (r *PGRepo) GetOwnedByUser(ctx context.Context, applicationID, userID string) (Application, error) {
	const query = `
SELECT id, user_id, company_name, job_title, job_description, job_url, location, status, notes, applied_at, created_at, updated_at
FROM applications
WHERE id = $1 AND user_id = $2`
	row := r.DB.QueryRowContext(ctx, query, applicationID, userID)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Application{}, ErrNotFound
		}
		return Application{}, err
	}
	return app, nil
}

// ListByUser returns the user's applications, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	const query = `
SELECT id, user_id, company_name, job_title, job_description, job_url, location, status, notes, applied_at, created_at, updated_at
FROM applications
WHERE user_id = $1
ORDER BY created_at DESC`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Application, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, app)
	}
	return out, rows.Err()
}

// Update replaces mutable fields of an application owned by the user.
func (r *PGRepo) Update(ctx context.Context, app Application) error {
	const query = `
UPDATE applications
SET company_name = $1, job_title = $2, job_description = $3, job_url = $4, location = $5, status = $6, notes = $7, applied_at = $8, updated_at = $9
WHERE id = $10 AND user_id = $11`

	var appliedAt sql.NullTime
	if app.AppliedAt != nil {
		appliedAt = sql.NullTime{Time: *app.AppliedAt, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, query,
		app.CompanyName,
		app.JobTitle,
		nullableString(app.JobDescription),
		nullableString(app.JobURL),
		nullableString(app.Location),
		string(app.Status),
		nullableString(app.Notes),
		appliedAt,
		app.UpdatedAt,
		app.ID,
		app.UserID,
	)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// Delete removes an application owned by the user.
func (r *PGRepo) Delete(ctx context.Context, applicationID, userID string) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE FROM applications WHERE id = $1 AND user_id = $2`, applicationID, userID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (Application, error) {
	var app Application
	var jobDescription, jobURL, location, notes sql.NullString
	var status string
	var appliedAt sql.NullTime
	if err := row.Scan(
		&app.ID,
		&app.UserID,
		&app.CompanyName,
		&app.JobTitle,
		&jobDescription,
		&jobURL,
		&location,
		&status,
		&notes,
		&appliedAt,
		&app.CreatedAt,
		&app.UpdatedAt,
	); err != nil {
		return Application{}, err
	}
	app.JobDescription = jobDescription.String
	app.JobURL = jobURL.String
	app.Location = location.String
	app.Notes = notes.String
	app.Status = Status(status)
	if appliedAt.Valid {
		at := appliedAt.Time
		app.AppliedAt = &at
	}
	return app, nil
}
