package analyses

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoCreateInsertsPayloadJSON(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := &PGRepo{DB: db}
	createdAt := time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC)
	score := 82.0

	mock.ExpectExec("INSERT INTO analyses").
		WithArgs("an-1", "user-1", "res-1", nil, "comprehensive_score", score, sqlmock.AnyArg(), createdAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.Create(context.Background(), Record{
		ID:       "an-1",
		UserID:   "user-1",
		ResumeID: "res-1",
		Kind:     KindComprehensiveScore,
		Score:    &score,
		Payload: ScorePayload{
			OverallScore: 82,
			Sections:     []SectionScore{{Name: "Experience", Score: 80}},
			Keywords:     []string{"Go"},
			Suggestions:  []string{"Quantify impact"},
		},
		CreatedAt: createdAt,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoGetByIDDecodesPayload(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := &PGRepo{DB: db}
	createdAt := time.Date(2026, time.March, 10, 14, 0, 0, 0, time.UTC)
	payload := []byte(`{"matchScore": 71, "matchedKeywords": ["Go"], "missingKeywords": [], "suggestions": [], "metadata": {"jobTitle": "Backend Engineer", "source": "application"}}`)

	rows := sqlmock.NewRows([]string{"id", "user_id", "resume_id", "application_id", "kind", "score", "payload", "created_at"}).
		AddRow("an-1", "user-1", "res-1", "app-1", "job_match", 71.0, payload, createdAt)
	mock.ExpectQuery("SELECT (.+) FROM analyses").
		WithArgs("an-1").
		WillReturnRows(rows)

	record, err := repo.GetByID(context.Background(), "an-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	match, ok := record.Payload.(MatchPayload)
	if !ok {
		t.Fatalf("expected MatchPayload, got %T", record.Payload)
	}
	if match.MatchScore != 71 || match.Metadata.JobTitle != "Backend Engineer" {
		t.Fatalf("unexpected payload: %+v", match)
	}
	if record.ApplicationID != "app-1" {
		t.Fatalf("expected application id, got %q", record.ApplicationID)
	}
	if record.Score == nil || *record.Score != 71 {
		t.Fatalf("unexpected score: %v", record.Score)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT (.+) FROM analyses").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "resume_id", "application_id", "kind", "score", "payload", "created_at"}))

	if _, err := repo.GetByID(context.Background(), "missing"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoCountByUserInRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := &PGRepo{DB: db}
	from := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	to := from.Add(24*time.Hour - time.Millisecond)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs("user-1", from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	count, err := repo.CountByUserInRange(context.Background(), "user-1", from, to)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2, got %d", count)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}
