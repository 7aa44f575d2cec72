package applications

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo stores applications in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Application
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Application)}
}

// Create stores the application.
func (r *MemoryRepo) Create(ctx context.Context, app Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[app.ID] = app
	return nil
}

// GetOwnedByUser returns the application if it exists and belongs to the user.
func (r *MemoryRepo) GetOwnedByUser(ctx context.Context, applicationID, userID string) (Application, error) {
	if err := ctx.Err(); err != nil {
		return Application{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.byID[applicationID]
	if !ok || app.UserID != userID {
		return Application{}, ErrNotFound
	}
	return app, nil
}

// ListByUser returns the user's applications, newest first.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Application, 0)
	for _, app := range r.byID {
		if app.UserID == userID {
			out = append(out, app)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ClaimGuest reassigns a guest's applications to an authenticated user and
// returns how many moved.
func (r *MemoryRepo) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	moved := 0
	for id, app := range r.byID {
		if app.UserID == guestUserID {
			app.UserID = authedUserID
			r.byID[id] = app
			moved++
		}
	}
	return moved, nil
}

// Update replaces an existing application owned by the same user.
func (r *MemoryRepo) Update(ctx context.Context, app Application) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[app.ID]
	if !ok || existing.UserID != app.UserID {
		return ErrNotFound
	}
	r.byID[app.ID] = app
	return nil
}

// Delete removes an application owned by the user.
func (r *MemoryRepo) Delete(ctx context.Context, applicationID, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.byID[applicationID]
	if !ok || app.UserID != userID {
		return ErrNotFound
	}
	delete(r.byID, applicationID)
	return nil
}
