package applications

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service contains business logic for job applications.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// CreateInput captures the fields a user supplies when tracking a new application.
type CreateInput struct {
	CompanyName    string
	JobTitle       string
	JobDescription string
	JobURL         string
	Location       string
	Status         Status
	Notes          string
}

// Create records a new application. Status defaults to saved; an applied_at
// timestamp is set when the application starts in the applied status.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (Application, error) {
	if userID == "" {
		return Application{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.CompanyName) == "" || strings.TrimSpace(in.JobTitle) == "" {
		return Application{}, fmt.Errorf("%w: company name and job title are required", ErrInvalidInput)
	}

	status := in.Status
	if status == "" {
		status = StatusSaved
	}
	if !status.Valid() {
		return Application{}, fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}

	now := time.Now().UTC()
	app := Application{
		ID:             uuid.NewString(),
		UserID:         userID,
		CompanyName:    strings.TrimSpace(in.CompanyName),
		JobTitle:       strings.TrimSpace(in.JobTitle),
		JobDescription: in.JobDescription,
		JobURL:         strings.TrimSpace(in.JobURL),
		Location:       strings.TrimSpace(in.Location),
		Status:         status,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if status == StatusApplied {
		app.AppliedAt = &now
	}

	if err := s.Repo.Create(ctx, app); err != nil {
		return Application{}, err
	}
	return app, nil
}

// Get returns an application owned by the user.
func (s *Service) Get(ctx context.Context, userID, applicationID string) (Application, error) {
	if userID == "" || applicationID == "" {
		return Application{}, fmt.Errorf("%w: user id and application id are required", ErrInvalidInput)
	}
	return s.Repo.GetOwnedByUser(ctx, applicationID, userID)
}

// List returns the user's applications, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]Application, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return s.Repo.ListByUser(ctx, userID)
}

// UpdateStatus moves an application along the pipeline, enforcing transitions.
// Returns the updated application and the status it moved from.
func (s *Service) UpdateStatus(ctx context.Context, userID, applicationID string, next Status) (Application, Status, error) {
	if !next.Valid() {
		return Application{}, "", fmt.Errorf("%w: %q", ErrInvalidStatus, next)
	}

	app, err := s.Repo.GetOwnedByUser(ctx, applicationID, userID)
	if err != nil {
		return Application{}, "", err
	}
	prev := app.Status
	if !prev.CanTransitionTo(next) {
		return Application{}, "", fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, prev, next)
	}

	now := time.Now().UTC()
	if next == StatusApplied && app.AppliedAt == nil {
		app.AppliedAt = &now
	}
	app.Status = next
	app.UpdatedAt = now

	if err := s.Repo.Update(ctx, app); err != nil {
		return Application{}, "", err
	}
	return app, prev, nil
}

// UpdateNotes replaces the free-text notes on an application.
func (s *Service) UpdateNotes(ctx context.Context, userID, applicationID, notes string) (Application, error) {
	app, err := s.Repo.GetOwnedByUser(ctx, applicationID, userID)
	if err != nil {
		return Application{}, err
	}
	app.Notes = notes
	app.UpdatedAt = time.Now().UTC()
	if err := s.Repo.Update(ctx, app); err != nil {
		return Application{}, err
	}
	return app, nil
}

// Delete removes an application owned by the user.
func (s *Service) Delete(ctx context.Context, userID, applicationID string) error {
	if userID == "" || applicationID == "" {
		return fmt.Errorf("%w: user id and application id are required", ErrInvalidInput)
	}
	return s.Repo.Delete(ctx, applicationID, userID)
}
