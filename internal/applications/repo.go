package applications

import "context"

// Repo defines persistence operations for applications.
type Repo interface {
	Create(ctx context.Context, app Application) error
	// GetOwnedByUser returns ErrNotFound when the application does not exist
	// or belongs to a different user.
	GetOwnedByUser(ctx context.Context, applicationID, userID string) (Application, error)
	ListByUser(ctx context.Context, userID string) ([]Application, error)
	Update(ctx context.Context, app Application) error
	Delete(ctx context.Context, applicationID, userID string) error
}
