package analyses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"jobtrack-backend/internal/applications"
	"jobtrack-backend/internal/llm"
	"jobtrack-backend/internal/quota"
	"jobtrack-backend/internal/resumes"
	"jobtrack-backend/internal/shared/metrics"
	"jobtrack-backend/internal/shared/storage/object"
	"jobtrack-backend/internal/shared/telemetry"
)

// ErrShortResumeText is the user-facing message for resumes whose extracted
// text is too small to analyze.
const ErrShortResumeText = "Resume text is too short for meaningful analysis"

// Service orchestrates AI analyses. Every request runs the same pipeline:
// identity, daily quota, resume ownership, content validation, AI call, and
// finally persistence. A record is written only after the AI call succeeds,
// so failed generations never consume quota.
type Service struct {
	Repo    Repo
	Limiter *quota.Limiter
	Resumes resumes.Repo
	Apps    applications.Repo
	Store   object.ObjectStore
	LLM     llm.Client

	// MaxTokens bounds each generation; zero means provider default.
	MaxTokens int
	// MinTextLen is the minimum extracted-text length worth analyzing.
	MinTextLen int

	// Now overrides the clock in tests. Nil means time.Now.
	Now func() time.Time
}

func (s *Service) clock() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// AdHocJob is a pasted job description not tied to a stored application.
type AdHocJob struct {
	JobDescription string
	JobTitle       string
	CompanyName    string
}

// OptimizeTarget narrows optimization advice toward an industry or role.
type OptimizeTarget struct {
	Industry string
	Role     string
}

// AnalyzeResume runs a comprehensive quality score for a resume.
func (s *Service) AnalyzeResume(ctx context.Context, userID, resumeID string) Result {
	now := s.clock()
	text, status, fail := s.prepare(ctx, userID, resumeID, now)
	if fail != nil {
		return *fail
	}

	raw, fail := s.generate(ctx, userID, llm.StructuredRequest{
		Prompt:    llm.ScorePrompt(text),
		Shape:     "comprehensive_score",
		MaxTokens: s.MaxTokens,
	})
	if fail != nil {
		return *fail
	}

	var payload ScorePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return s.badAIOutput(userID, KindComprehensiveScore, err)
	}

	score := payload.OverallScore
	return s.persist(ctx, Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		ResumeID:  resumeID,
		Kind:      KindComprehensiveScore,
		Score:     &score,
		Payload:   payload,
		CreatedAt: now,
	}, status)
}

// MatchJob scores a resume against a stored application's job description.
func (s *Service) MatchJob(ctx context.Context, userID, resumeID, applicationID string) Result {
	now := s.clock()
	text, status, fail := s.prepare(ctx, userID, resumeID, now)
	if fail != nil {
		return *fail
	}

	app, err := s.Apps.GetOwnedByUser(ctx, applicationID, userID)
	if err != nil {
		if errors.Is(err, applications.ErrNotFound) {
			return failureResult(http.StatusNotFound, CodeNotFound, "application not found")
		}
		return failureResult(http.StatusInternalServerError, CodePersistence, "failed to load application")
	}
	if strings.TrimSpace(app.JobDescription) == "" {
		return failureResult(http.StatusUnprocessableEntity, CodeContentEmpty, "application has no job description to match against")
	}

	return s.matchAgainst(ctx, userID, resumeID, applicationID, text, status, now, app.JobDescription, MatchMetadata{
		JobTitle:    app.JobTitle,
		CompanyName: app.CompanyName,
		Source:      MatchSourceApplication,
	})
}

// MatchJobAdHoc scores a resume against a pasted job description.
func (s *Service) MatchJobAdHoc(ctx context.Context, userID, resumeID string, job AdHocJob) Result {
	now := s.clock()
	text, status, fail := s.prepare(ctx, userID, resumeID, now)
	if fail != nil {
		return *fail
	}

	if strings.TrimSpace(job.JobDescription) == "" {
		return failureResult(http.StatusBadRequest, CodeInvalidInput, "jobDescription is required")
	}

	return s.matchAgainst(ctx, userID, resumeID, "", text, status, now, job.JobDescription, MatchMetadata{
		JobTitle:    job.JobTitle,
		CompanyName: job.CompanyName,
		Source:      MatchSourceAdHoc,
	})
}

func (s *Service) matchAgainst(ctx context.Context, userID, resumeID, applicationID, text string, status *quota.Status, now time.Time, jobDescription string, meta MatchMetadata) Result {
	raw, fail := s.generate(ctx, userID, llm.StructuredRequest{
		Prompt:    llm.MatchPrompt(text, jobDescription, meta.JobTitle, meta.CompanyName),
		Shape:     "job_match",
		MaxTokens: s.MaxTokens,
	})
	if fail != nil {
		return *fail
	}

	var payload MatchPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return s.badAIOutput(userID, KindJobMatch, err)
	}
	payload.Metadata = meta

	score := payload.MatchScore
	return s.persist(ctx, Record{
		ID:            uuid.NewString(),
		UserID:        userID,
		ResumeID:      resumeID,
		ApplicationID: applicationID,
		Kind:          KindJobMatch,
		Score:         &score,
		Payload:       payload,
		CreatedAt:     now,
	}, status)
}

// OptimizeResume produces rewrite suggestions for a resume.
func (s *Service) OptimizeResume(ctx context.Context, userID, resumeID string, target OptimizeTarget) Result {
	now := s.clock()
	text, status, fail := s.prepare(ctx, userID, resumeID, now)
	if fail != nil {
		return *fail
	}

	raw, fail := s.generate(ctx, userID, llm.StructuredRequest{
		Prompt:    llm.OptimizePrompt(text, target.Industry, target.Role),
		Shape:     "optimization",
		MaxTokens: s.MaxTokens,
	})
	if fail != nil {
		return *fail
	}

	var payload OptimizationPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return s.badAIOutput(userID, KindOptimization, err)
	}
	payload.TargetIndustry = target.Industry
	payload.TargetRole = target.Role

	return s.persist(ctx, Record{
		ID:        uuid.NewString(),
		UserID:    userID,
		ResumeID:  resumeID,
		Kind:      KindOptimization,
		Payload:   payload,
		CreatedAt: now,
	}, status)
}

// RateLimitStatus reports the user's current daily allowance without running
// an analysis.
func (s *Service) RateLimitStatus(ctx context.Context, userID string) (quota.Status, error) {
	return s.Limiter.CheckAt(ctx, userID, s.clock())
}

// Get returns one record owned by the user.
func (s *Service) Get(ctx context.Context, userID, recordID string) (Record, error) {
	record, err := s.Repo.GetByID(ctx, recordID)
	if err != nil {
		return Record{}, err
	}
	if record.UserID != userID {
		return Record{}, ErrNotFound
	}
	return record, nil
}

// List returns the user's records, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]Record, error) {
	return s.Repo.ListByUser(ctx, userID, limit)
}

// ListForResume returns the user's records for one resume, newest first.
func (s *Service) ListForResume(ctx context.Context, userID, resumeID string) ([]Record, error) {
	if _, err := s.Resumes.GetOwnedByUser(ctx, resumeID, userID); err != nil {
		return nil, err
	}
	return s.Repo.ListByResume(ctx, resumeID)
}

// prepare runs the steps shared by every analysis: identity, quota, resume
// ownership, and content validation. A non-nil Result means the pipeline
// stopped before the AI call.
func (s *Service) prepare(ctx context.Context, userID, resumeID string, now time.Time) (string, *quota.Status, *Result) {
	if userID == "" {
		fail := failureResult(http.StatusUnauthorized, CodeUnauthorized, "authentication required")
		return "", nil, &fail
	}

	metrics.IncAnalysisStarted()

	status, err := s.Limiter.CheckAt(ctx, userID, now)
	if err != nil {
		fail := failureResult(http.StatusInternalServerError, CodePersistence, "failed to check analysis limit")
		return "", nil, &fail
	}
	if !status.Allowed {
		metrics.IncAnalysisRateLimited()
		telemetry.Info("analysis.rate_limited", map[string]any{
			"user_id": userID,
			"count":   status.Count,
			"limit":   status.Limit,
		})
		fail := failureResult(http.StatusTooManyRequests, CodeRateLimited, quota.LimitMessage(status, now))
		fail.RateLimit = &status
		return "", nil, &fail
	}

	resume, err := s.Resumes.GetOwnedByUser(ctx, resumeID, userID)
	if err != nil {
		if errors.Is(err, resumes.ErrNotFound) {
			fail := failureResult(http.StatusNotFound, CodeNotFound, "resume not found")
			return "", nil, &fail
		}
		fail := failureResult(http.StatusInternalServerError, CodePersistence, "failed to load resume")
		return "", nil, &fail
	}

	text, err := resumes.LoadText(ctx, s.Store, resume)
	if err != nil {
		fail := failureResult(http.StatusInternalServerError, CodePersistence, "failed to load resume text")
		return "", nil, &fail
	}
	if len(strings.TrimSpace(text)) < s.MinTextLen {
		fail := failureResult(http.StatusUnprocessableEntity, CodeContentEmpty, ErrShortResumeText)
		return "", nil, &fail
	}

	return text, &status, nil
}

// generate runs the AI call. Failures here terminate the pipeline before any
// record exists, so they never count against the daily limit.
func (s *Service) generate(ctx context.Context, userID string, req llm.StructuredRequest) (json.RawMessage, *Result) {
	startedAt := s.clock()
	raw, err := s.LLM.GenerateStructured(ctx, req)
	metrics.ObserveAnalysisDurationMs(float64(s.clock().Sub(startedAt)) / float64(time.Millisecond))
	if err != nil {
		metrics.IncAnalysisFailed()
		telemetry.Error("analysis.generate_failed", map[string]any{
			"user_id": userID,
			"shape":   req.Shape,
			"error":   err.Error(),
		})
		fail := failureResult(http.StatusBadGateway, CodeAIFailure, "analysis generation failed")
		return nil, &fail
	}
	return raw, nil
}

func (s *Service) badAIOutput(userID string, kind Kind, err error) Result {
	metrics.IncAnalysisFailed()
	telemetry.Error("analysis.decode_failed", map[string]any{
		"user_id": userID,
		"kind":    string(kind),
		"error":   err.Error(),
	})
	return failureResult(http.StatusBadGateway, CodeAIFailure, "analysis output was malformed")
}

func (s *Service) persist(ctx context.Context, record Record, status *quota.Status) Result {
	if err := s.Repo.Create(ctx, record); err != nil {
		metrics.IncAnalysisFailed()
		telemetry.Error("analysis.persist_failed", map[string]any{
			"user_id": record.UserID,
			"kind":    string(record.Kind),
			"error":   err.Error(),
		})
		return failureResult(http.StatusInternalServerError, CodePersistence, "failed to save analysis")
	}

	metrics.IncAnalysisCompleted()
	telemetry.Info("analysis.completed", map[string]any{
		"user_id":   record.UserID,
		"resume_id": record.ResumeID,
		"kind":      string(record.Kind),
	})

	if status != nil {
		used := *status
		used.Count++
		used.Remaining = used.Limit - used.Count
		if used.Remaining < 0 {
			used.Remaining = 0
		}
		used.Allowed = used.Count < used.Limit
		status = &used
	}
	return successResult(record, status)
}
