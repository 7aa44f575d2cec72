package analyses

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores analysis records in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Record
	byUser map[string][]Record
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Record),
		byUser: make(map[string][]Record),
	}
}

// Create stores the record.
func (r *MemoryRepo) Create(ctx context.Context, record Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[record.ID] = record
	r.byUser[record.UserID] = append(r.byUser[record.UserID], record)
	return nil
}

// GetByID returns a record by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, recordID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.byID[recordID]
	if !ok {
		return Record{}, ErrNotFound
	}
	return record, nil
}

// ListByUser returns records for a user, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	userRecords := r.byUser[userID]
	r.mu.RUnlock()

	records := make([]Record, len(userRecords))
	copy(records, userRecords)
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

// ListByResume returns records for a resume, newest first.
func (r *MemoryRepo) ListByResume(ctx context.Context, resumeID string) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Record, 0)
	for _, record := range r.byID {
		if record.ResumeID == resumeID {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ClaimGuest reassigns a guest's records to an authenticated user and
// returns how many moved.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := r.byUser[guestUserID]
	for i := range moved {
		moved[i].UserID = authedUserID
		r.byID[moved[i].ID] = moved[i]
	}
	r.byUser[authedUserID] = append(r.byUser[authedUserID], moved...)
	delete(r.byUser, guestUserID)
	return len(moved), nil
}

// CountByUserInRange counts records with createdAt in [from, to).
func (r *MemoryRepo) CountByUserInRange(ctx context.Context, userID string, from, to time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for _, record := range r.byUser[userID] {
		if !record.CreatedAt.Before(from) && record.CreatedAt.Before(to) {
			count++
		}
	}
	return count, nil
}
