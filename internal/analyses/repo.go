package analyses

import (
	"context"
	"time"
)

// Repo defines persistence operations for analysis records. Records are
// insert-only; CountByUserInRange is the source of truth for the daily
// rate limiter.
type Repo interface {
	Create(ctx context.Context, record Record) error
	GetByID(ctx context.Context, recordID string) (Record, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]Record, error)
	ListByResume(ctx context.Context, resumeID string) ([]Record, error)
	// CountByUserInRange counts records with createdAt in [from, to).
	CountByUserInRange(ctx context.Context, userID string, from, to time.Time) (int, error)
}
