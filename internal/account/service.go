package account

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"jobtrack-backend/internal/analyses"
	"jobtrack-backend/internal/applications"
	"jobtrack-backend/internal/resumes"
)

// Service migrates guest-owned data to an authenticated account after login.
type Service struct {
	DB           *sql.DB
	ResumeRepo   resumes.Repo
	AppRepo      applications.Repo
	AnalysisRepo analyses.Repo
}

// ClaimResult reports how many rows moved to the authenticated user.
type ClaimResult struct {
	MigratedResumes      int `json:"migratedResumes"`
	MigratedApplications int `json:"migratedApplications"`
	MigratedAnalyses     int `json:"migratedAnalyses"`
}

// NewService constructs a Service. db may be nil when memory repos are in use.
func NewService(db *sql.DB, resumeRepo resumes.Repo, appRepo applications.Repo, analysisRepo analyses.Repo) *Service {
	return &Service{DB: db, ResumeRepo: resumeRepo, AppRepo: appRepo, AnalysisRepo: analysisRepo}
}

// ClaimGuest moves everything the guest owns to the authenticated user. With
// Postgres the three updates run in one transaction; memory repos move
// per-repo.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}

	if s.DB != nil {
		return claimWithTx(ctx, s.DB, guestUserID, authedUserID)
	}

	resumeCount, err := claimRepo(ctx, s.ResumeRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	appCount, err := claimRepo(ctx, s.AppRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	analysisCount, err := claimRepo(ctx, s.AnalysisRepo, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}
	return ClaimResult{
		MigratedResumes:      resumeCount,
		MigratedApplications: appCount,
		MigratedAnalyses:     analysisCount,
	}, nil
}

func claimWithTx(ctx context.Context, db *sql.DB, guestUserID, authedUserID string) (ClaimResult, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return ClaimResult{}, err
	}
	defer tx.Rollback()

	var result ClaimResult
	for _, step := range []struct {
		query string
		dst   *int
	}{
		{`UPDATE resumes SET user_id = $1 WHERE user_id = $2`, &result.MigratedResumes},
		{`UPDATE applications SET user_id = $1 WHERE user_id = $2`, &result.MigratedApplications},
		{`UPDATE analyses SET user_id = $1 WHERE user_id = $2`, &result.MigratedAnalyses},
	} {
		res, err := tx.ExecContext(ctx, step.query, authedUserID, guestUserID)
		if err != nil {
			return ClaimResult{}, err
		}
		affected, _ := res.RowsAffected()
		*step.dst = int(affected)
	}

	if err := tx.Commit(); err != nil {
		return ClaimResult{}, err
	}
	return result, nil
}

type guestClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error)
}

func claimRepo(ctx context.Context, repo any, guestUserID, authedUserID string) (int, error) {
	claimer, ok := repo.(guestClaimer)
	if !ok {
		return 0, errors.New("repo does not support claim")
	}
	return claimer.ClaimGuest(ctx, guestUserID, authedUserID)
}
