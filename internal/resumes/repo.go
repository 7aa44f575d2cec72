package resumes

import (
	"context"
	"time"
)

// Repo defines persistence operations for resumes.
type Repo interface {
	Create(ctx context.Context, resume Resume) error
	// GetOwnedByUser returns ErrNotFound when the resume does not exist or
	// belongs to a different user.
	GetOwnedByUser(ctx context.Context, resumeID, userID string) (Resume, error)
	ListByUser(ctx context.Context, userID string) ([]Resume, error)
	UpdateExtraction(ctx context.Context, userID, resumeID, extractedTextKey string, extractedAt time.Time) error
}
