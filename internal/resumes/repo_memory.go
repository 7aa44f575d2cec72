package resumes

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores resumes in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Resume
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Resume)}
}

// Create stores the resume.
func (r *MemoryRepo) Create(ctx context.Context, resume Resume) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[resume.ID] = resume
	return nil
}

// GetOwnedByUser returns the resume if it exists and belongs to the user.
func (r *MemoryRepo) GetOwnedByUser(ctx context.Context, resumeID, userID string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	resume, ok := r.byID[resumeID]
	if !ok || resume.UserID != userID {
		return Resume{}, ErrNotFound
	}
	return resume, nil
}

// ListByUser returns the user's resumes, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Resume, 0)
	for _, resume := range r.byID {
		if resume.UserID == userID {
			out = append(out, resume)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ClaimGuest reassigns a guest's resumes to an authenticated user and
// returns how many moved.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for id, resume := range r.byID {
		if resume.UserID == guestUserID {
			resume.UserID = authedUserID
			r.byID[id] = resume
			moved++
		}
	}
	return moved, nil
}

// UpdateExtraction records where the extracted text for a resume lives.
func (r *MemoryRepo) UpdateExtraction(ctx context.Context, userID, resumeID, extractedTextKey string, extractedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	resume, ok := r.byID[resumeID]
	if !ok || resume.UserID != userID {
		return ErrNotFound
	}
	resume.ExtractedTextKey = extractedTextKey
	resume.ExtractedAt = &extractedAt
	r.byID[resumeID] = resume
	return nil
}
